// Package kmain contains the entrypoint of the boot stage.
package kmain

import (
	"gopherboot/kernel"
	"gopherboot/kernel/bootinfo"
	"gopherboot/kernel/hal/multiboot"
	"gopherboot/kernel/kfmt"
)

var (
	// memoryMap is statically allocated; it is populated before the Go
	// allocator is available.
	memoryMap bootinfo.MemoryMap

	// handoffFn transfers the memory map to the kernel. It is installed by
	// the platform code through SetHandoff.
	handoffFn func(m *bootinfo.MemoryMap)

	// panicFn is replaced by tests.
	panicFn = kfmt.Panic

	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
	errNoHandoff     = &kernel.Error{Module: "kmain", Message: "no kernel handoff installed"}
)

// SetHandoff installs the function that passes the populated memory map to
// the kernel. The function receives the map by pointer but the kernel must
// take it over by value: the boot stage does not touch it afterwards.
func SetHandoff(fn func(m *bootinfo.MemoryMap)) {
	handoffFn = fn
}

// Kmain is invoked by the rt0 code with the address of the multiboot info
// block provided by the boot loader. It builds the physical memory map from
// the firmware memory map and hands it over to the kernel.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	memoryMap.Init()
	bootinfo.DiscoverMultiboot(&memoryMap)
	memoryMap.Print()

	if handoffFn == nil {
		panicFn(errNoHandoff)
		return
	}
	handoffFn(&memoryMap)

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	panicFn(errKmainReturned)
}
