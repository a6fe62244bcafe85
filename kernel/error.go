// Package kernel contains the types shared by every boot stage package.
package kernel

// Error describes an error raised while the boot stages run. Errors must be
// declared as package-level pointers to Error values: the memory map is
// populated before the Go allocator is available so errors.New and
// fmt.Errorf cannot be used.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
