package pmm

import (
	"gopherboot/kernel"
	"gopherboot/kernel/mem"
)

// ErrInvalidRange is returned by NewFrameRange when the end address does not
// lie past the start address.
var ErrInvalidRange = &kernel.Error{Module: "pmm", Message: "invalid physical address range"}

// FrameRange is a half-open range of page frames [StartFrame, EndFrame).
//
// FrameRange is part of the boot handoff layout: it is exactly 16 bytes and
// contains no pointers.
type FrameRange struct {
	StartFrame Frame

	// exclusive
	EndFrame Frame
}

// NewFrameRange returns the smallest FrameRange that covers the physical
// byte range [startAddr, endAddr). The start is rounded down and the end is
// rounded up to a page boundary so the offset within the first and last page
// is lost.
//
// An endAddr that is not strictly greater than startAddr (including an
// endAddr of 0) yields ErrInvalidRange.
func NewFrameRange(startAddr, endAddr uint64) (FrameRange, *kernel.Error) {
	if endAddr <= startAddr {
		return FrameRange{}, ErrInvalidRange
	}

	lastByte := endAddr - 1
	return FrameRange{
		StartFrame: FrameFromAddress(startAddr),
		EndFrame:   FrameFromAddress(lastByte) + 1,
	}, nil
}

// IsEmpty returns true if the range contains no frames.
func (r FrameRange) IsEmpty() bool {
	return r.StartFrame == r.EndFrame
}

// StartAddr returns the physical address of the first byte in the range.
func (r FrameRange) StartAddr() uint64 {
	return r.StartFrame.Address()
}

// EndAddr returns the physical address just past the last byte in the range.
func (r FrameRange) EndAddr() uint64 {
	return r.EndFrame.Address()
}

// Frames returns the number of frames in the range.
func (r FrameRange) Frames() uint64 {
	return uint64(r.EndFrame - r.StartFrame)
}

// Size returns the number of bytes covered by the range.
func (r FrameRange) Size() mem.Size {
	return mem.Size(r.Frames()) * mem.PageSize
}

// Less orders ranges by start frame and then by end frame.
func (r FrameRange) Less(other FrameRange) bool {
	if r.StartFrame != other.StartFrame {
		return r.StartFrame < other.StartFrame
	}
	return r.EndFrame < other.EndFrame
}
