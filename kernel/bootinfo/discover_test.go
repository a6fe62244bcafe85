package bootinfo

import (
	"encoding/binary"
	"gopherboot/kernel/hal/multiboot"
	"gopherboot/kernel/mem/pmm"
	"testing"
	"unsafe"
)

func sliceSource(ranges []LegacyRange) LegacyRangeSource {
	return func(visitor LegacyRangeVisitor) {
		for i := range ranges {
			if !visitor(&ranges[i]) {
				return
			}
		}
	}
}

func TestDiscover(t *testing.T) {
	panicArg := mockPanic(t)

	m := NewMemoryMap()
	Discover(&m, sliceSource([]LegacyRange{
		{StartAddr: 0x100000, Len: 0x7ee0000, Type: 1},
		{StartAddr: 0x0, Len: 0x9fc00, Type: 1},
		{StartAddr: 0xf0000, Len: 0x10000, Type: 2},
		{StartAddr: 0x9fc00, Len: 0x400, Type: 2},
	}))

	if *panicArg != nil {
		t.Fatalf("unexpected fatal error: %v", *panicArg)
	}

	exp := []MemoryRegion{
		{Range: pmm.FrameRange{StartFrame: 0x0, EndFrame: 0xa0}, Type: Usable},
		{Range: pmm.FrameRange{StartFrame: 0x9f, EndFrame: 0xa0}, Type: Reserved},
		{Range: pmm.FrameRange{StartFrame: 0xf0, EndFrame: 0x100}, Type: Reserved},
		{Range: pmm.FrameRange{StartFrame: 0x100, EndFrame: 0x7fe0}, Type: Usable},
	}

	got := regions(&m)
	if len(got) != len(exp) {
		t.Fatalf("expected %d regions; got %d", len(exp), len(got))
	}

	for i := range exp {
		if got[i] != exp[i] {
			t.Errorf("[region %d] expected %+v; got %+v", i, exp[i], got[i])
		}
	}
}

func TestDiscoverInvalidDescriptor(t *testing.T) {
	panicArg := mockPanic(t)

	var visited int
	m := NewMemoryMap()
	Discover(&m, func(visitor LegacyRangeVisitor) {
		for _, r := range []LegacyRange{
			{StartAddr: 0x0, Len: 0x1000, Type: 1},
			{StartAddr: 0x1000, Len: 0x1000, Type: 9},
			{StartAddr: 0x2000, Len: 0x1000, Type: 1},
		} {
			r := r
			visited++
			if !visitor(&r) {
				return
			}
		}
	})

	if *panicArg != ErrInvalidRegionType {
		t.Fatalf("expected ErrInvalidRegionType; got %v", *panicArg)
	}

	if visited != 2 {
		t.Fatalf("expected discovery to stop at the malformed descriptor; visited %d", visited)
	}
}

func TestDiscoverTooManyRegions(t *testing.T) {
	panicArg := mockPanic(t)

	ranges := make([]LegacyRange, MaxRegions+1)
	for i := range ranges {
		ranges[i] = LegacyRange{StartAddr: uint64(i) * 0x1000, Len: 0x1000, Type: 1}
	}

	m := NewMemoryMap()
	Discover(&m, sliceSource(ranges))

	if *panicArg != ErrTooManyRegions {
		t.Fatalf("expected ErrTooManyRegions; got %v", *panicArg)
	}

	if m.Len() != MaxRegions {
		t.Fatalf("expected the map to hold %d regions; got %d", MaxRegions, m.Len())
	}
}

func TestDiscoverMultiboot(t *testing.T) {
	panicArg := mockPanic(t)

	entries := []multiboot.MemoryMapEntry{
		{PhysAddress: 0x100000, Length: 0x7ee0000, Type: 1},
		{PhysAddress: 0x0, Length: 0x9fc00, Type: 1},
		{PhysAddress: 0xfffc0000, Length: 0x40000, Type: 2},
	}
	info := buildMultibootInfo(entries)
	multiboot.SetInfoPtr(uintptr(unsafe.Pointer(&info[0])))
	defer multiboot.SetInfoPtr(0)

	m := NewMemoryMap()
	DiscoverMultiboot(&m)

	if *panicArg != nil {
		t.Fatalf("unexpected fatal error: %v", *panicArg)
	}

	if m.Len() != len(entries) {
		t.Fatalf("expected %d regions; got %d", len(entries), m.Len())
	}

	if got := m.Region(0); got.Range.StartAddr() != 0 || got.Type != Usable {
		t.Errorf("expected first region to start at 0; got %+v", got)
	}

	if got := m.Region(2); got.Range.StartAddr() != 0xfffc0000 || got.Type != Reserved {
		t.Errorf("expected last region to be the reserved BIOS area; got %+v", got)
	}
}

// buildMultibootInfo returns an 8-byte aligned multiboot2 info block holding
// a single memory map tag.
func buildMultibootInfo(entries []multiboot.MemoryMapEntry) []uint64 {
	const entrySize = 24
	mmapTagSize := 16 + len(entries)*entrySize
	total := 8 + mmapTagSize + 8

	buf := make([]byte, total)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], uint32(total))
	le.PutUint32(buf[8:], 6) // memory map tag
	le.PutUint32(buf[12:], uint32(mmapTagSize))
	le.PutUint32(buf[16:], entrySize)
	for i, e := range entries {
		off := 24 + i*entrySize
		le.PutUint64(buf[off:], e.PhysAddress)
		le.PutUint64(buf[off+8:], e.Length)
		le.PutUint32(buf[off+16:], e.Type)
	}
	// end tag
	le.PutUint32(buf[total-4:], 8)

	words := make([]uint64, total/8)
	for i := range words {
		words[i] = le.Uint64(buf[i*8:])
	}
	return words
}
