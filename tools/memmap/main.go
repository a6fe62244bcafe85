// Command memmap builds and inspects the memory map handoff images that the
// boot stage passes to the kernel.
//
// Usage:
//
//	memmap [-q] [-v] [-sysfs DIR | -e820 FILE | -i FILE] [-o FILE]
//
// Without a source option the firmware memory map exported by Linux under
// /sys/firmware/memmap is used.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "[memmap] error: %s\n", err.Error())
		os.Exit(1)
	}
}
