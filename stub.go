package main

import "gopherboot/kernel/kmain"

var multibootInfoPtr uintptr

// main makes a dummy call to the actual boot stage entrypoint. It is
// intentionally defined to prevent the Go compiler from optimizing away the
// boot stage code, which is only reachable from the rt0 code.
//
// A global variable is passed as an argument to Kmain to prevent the compiler
// from inlining the call and removing Kmain from the generated .o file.
func main() {
	kmain.Kmain(multibootInfoPtr)
}
