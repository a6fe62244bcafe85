// Package pmm describes physical memory in units of page frames.
package pmm

import (
	"gopherboot/kernel/mem"
)

// Frame describes a physical memory page index. Frames are 64 bits wide on
// every architecture so that structures embedding them keep the same layout
// in the boot stage and in the kernel.
type Frame uint64

// Address returns the physical address of the first byte of this Frame.
func (f Frame) Address() uint64 {
	return uint64(f) << mem.PageShift
}

// FrameFromAddress returns the Frame that contains the given physical
// address.
func FrameFromAddress(physAddr uint64) Frame {
	return Frame(physAddr >> mem.PageShift)
}
