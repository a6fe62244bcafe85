package kfmt

import (
	"gopherboot/kernel"
	"gopherboot/kernel/cpu"
)

var (
	// cpuHaltFn is replaced by tests.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// Panic reports e (if not nil) and halts the CPU. It is the single exit
// point for errors that cannot be recovered from during boot. Panic accepts
// a *kernel.Error, a plain error or a string.
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** boot halted ***")
	Printf("\n-----------------------------------\n")

	cpuHaltFn()
}
