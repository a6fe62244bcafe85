package bootinfo

import (
	"gopherboot/kernel"
	"unsafe"
)

const (
	// RegionSize is the size in bytes of an encoded MemoryRegion: start
	// frame (8), end frame (8), type (4) and 4 bytes of padding.
	RegionSize = 24

	// HandoffSize is the size in bytes of an encoded MemoryMap: MaxRegions
	// regions followed by the 8-byte region count.
	HandoffSize = MaxRegions*RegionSize + 8
)

// The array lengths below become negative, and the package stops compiling,
// if the Go layout of the handoff types drifts from the constants above.
var (
	_ [RegionSize - unsafe.Sizeof(MemoryRegion{})]byte
	_ [unsafe.Sizeof(MemoryRegion{}) - RegionSize]byte
	_ [HandoffSize - unsafe.Sizeof(MemoryMap{})]byte
	_ [unsafe.Sizeof(MemoryMap{}) - HandoffSize]byte
)

// ErrHandoffSize is returned by Decode when the image length does not match
// HandoffSize.
var ErrHandoffSize = &kernel.Error{Module: "bootinfo", Message: "memory map handoff image has wrong size"}

// Bytes returns the in-memory representation of m. The returned slice aliases
// m; it is the exact image the kernel receives. Multi-byte fields use the
// byte order of the target (little-endian on amd64).
func (m *MemoryMap) Bytes() []byte {
	return (*[HandoffSize]byte)(unsafe.Pointer(m))[:]
}

// FromAddress interprets the handoff image at physAddr as a MemoryMap. The
// caller owns the memory at physAddr and must not modify it afterwards.
func FromAddress(physAddr uintptr) *MemoryMap {
	return (*MemoryMap)(unsafe.Pointer(physAddr))
}

// Decode copies a handoff image into dst and validates it. On error dst is
// reset to an empty map.
func Decode(dst *MemoryMap, image []byte) *kernel.Error {
	if len(image) != HandoffSize {
		dst.Init()
		return ErrHandoffSize
	}

	copy(dst.Bytes(), image)
	if err := dst.Validate(); err != nil {
		dst.Init()
		return err
	}

	return nil
}
