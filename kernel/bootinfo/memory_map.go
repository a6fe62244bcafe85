// Package bootinfo holds the physical memory map that the boot stage builds
// from the firmware tables and hands over to the kernel.
//
// All types in this package are fixed-size and pointer-free: the map is
// populated before the Go allocator exists and it is transferred to the
// kernel as a raw block of bytes.
package bootinfo

import (
	"gopherboot/kernel"
	"gopherboot/kernel/kfmt"
	"gopherboot/kernel/mem"
	"gopherboot/kernel/mem/pmm"
)

// MaxRegions is the capacity of a MemoryMap. Platforms are not expected to
// report more regions; exceeding it halts the boot.
const MaxRegions = 64

var (
	// panicFn is replaced by tests.
	panicFn = kfmt.Panic

	// ErrTooManyRegions is raised by AddRegion on a full map.
	ErrTooManyRegions = &kernel.Error{Module: "bootinfo", Message: "too many memory regions in memory map"}

	// ErrEmptyRegion is raised by AddRegion when asked to store a region
	// without frames or tagged as Empty.
	ErrEmptyRegion = &kernel.Error{Module: "bootinfo", Message: "attempt to add an empty memory region"}

	// ErrRegionIndex is raised by Region for an index outside [0, Len()).
	ErrRegionIndex = &kernel.Error{Module: "bootinfo", Message: "memory region index out of range"}

	// ErrCorruptMap is returned by Validate when the occupied prefix is
	// unsorted or contains placeholders, or when a placeholder slot holds
	// a region.
	ErrCorruptMap = &kernel.Error{Module: "bootinfo", Message: "corrupt memory map"}
)

// MemoryRegion is a FrameRange tagged with a MemoryRegionType.
type MemoryRegion struct {
	Range pmm.FrameRange
	Type  MemoryRegionType

	// keeps the struct size a multiple of 8 without implicit padding
	_ uint32
}

// EmptyRegion returns the placeholder stored in unused MemoryMap slots.
func EmptyRegion() MemoryRegion {
	return MemoryRegion{Type: Empty}
}

// IsEmpty returns true if the region contains no frames.
func (r MemoryRegion) IsEmpty() bool {
	return r.Range.IsEmpty()
}

// MemoryMap is a fixed-capacity list of memory regions kept sorted by start
// frame and then by end frame.
//
// Entries [0, nextEntryIndex) are the discovered regions; the remaining
// entries are Empty placeholders. The map is written by a single discovery
// routine and is read-only once handed to the kernel.
type MemoryMap struct {
	entries [MaxRegions]MemoryRegion

	// uint64 instead of int so the layout is platform independent
	nextEntryIndex uint64
}

// NewMemoryMap returns an empty MemoryMap.
func NewMemoryMap() MemoryMap {
	var m MemoryMap
	m.Init()
	return m
}

// Init resets m to an empty map. It is meant for maps that live in
// statically allocated memory.
func (m *MemoryMap) Init() {
	for i := range m.entries {
		m.entries[i] = EmptyRegion()
	}
	m.nextEntryIndex = 0
}

// AddRegion stores region in the map and restores the sort order. Adding a
// region to a full map or adding an empty region halts the boot.
func (m *MemoryMap) AddRegion(region MemoryRegion) {
	if m.nextEntryIndex >= MaxRegions {
		panicFn(ErrTooManyRegions)
		return
	}

	if region.IsEmpty() || region.Type == Empty {
		panicFn(ErrEmptyRegion)
		return
	}

	m.entries[m.nextEntryIndex] = region
	m.nextEntryIndex++
	m.sort()
}

// sort orders every slot, placeholders included, so that regions come
// first ordered by (start, end) and placeholders last. The occupied count is
// then derived again from the position of the first placeholder.
//
// sort.Slice cannot be used here as it allocates.
func (m *MemoryMap) sort() {
	for i := 1; i < len(m.entries); i++ {
		for j := i; j > 0 && regionLess(&m.entries[j], &m.entries[j-1]); j-- {
			m.entries[j], m.entries[j-1] = m.entries[j-1], m.entries[j]
		}
	}

	m.nextEntryIndex = MaxRegions
	for i := range m.entries {
		if m.entries[i].IsEmpty() {
			m.nextEntryIndex = uint64(i)
			break
		}
	}
}

// regionLess reports whether a sorts before b. Placeholders sort after any
// region.
func regionLess(a, b *MemoryRegion) bool {
	switch {
	case a.IsEmpty():
		return false
	case b.IsEmpty():
		return true
	default:
		return a.Range.Less(b.Range)
	}
}

// Len returns the number of regions in the map.
func (m *MemoryMap) Len() int {
	return int(m.nextEntryIndex)
}

// Region returns a copy of the i-th region. Indices outside [0, Len()) halt
// the boot.
func (m *MemoryMap) Region(i int) MemoryRegion {
	if i < 0 || i >= m.Len() {
		panicFn(ErrRegionIndex)
		return EmptyRegion()
	}

	return m.entries[i]
}

// MemRegionVisitor is invoked by VisitRegions for each region. The visitor
// must return true to continue or false to abort the scan.
type MemRegionVisitor func(region MemoryRegion) bool

// VisitRegions invokes visitor for each region in ascending order.
func (m *MemoryMap) VisitRegions(visitor MemRegionVisitor) {
	for i := 0; i < m.Len(); i++ {
		if !visitor(m.entries[i]) {
			return
		}
	}
}

// UsableMemory returns the total size of the Usable regions.
func (m *MemoryMap) UsableMemory() mem.Size {
	var total mem.Size
	m.VisitRegions(func(region MemoryRegion) bool {
		if region.Type == Usable {
			total += region.Range.Size()
		}
		return true
	})

	return total
}

// Validate checks that m satisfies the handoff invariants: the occupied
// prefix is sorted and only holds non-empty regions with a known type, and
// every slot past it is a placeholder.
func (m *MemoryMap) Validate() *kernel.Error {
	if m.nextEntryIndex > MaxRegions {
		return ErrCorruptMap
	}

	for i := range m.entries {
		region := &m.entries[i]
		if uint64(i) >= m.nextEntryIndex {
			if !region.IsEmpty() {
				return ErrCorruptMap
			}
			continue
		}

		if region.IsEmpty() || region.Type == Empty || !region.Type.Valid() {
			return ErrCorruptMap
		}

		if i > 0 && region.Range.Less(m.entries[i-1].Range) {
			return ErrCorruptMap
		}
	}

	return nil
}

// Print dumps the memory map using kfmt.Printf.
func (m *MemoryMap) Print() {
	kfmt.Printf("[bootinfo] system memory map:\n")
	m.VisitRegions(func(region MemoryRegion) bool {
		kfmt.Printf("\t[0x%10x - 0x%10x), size: %10d, type: %s\n",
			region.Range.StartAddr(),
			region.Range.EndAddr(),
			uint64(region.Range.Size()),
			region.Type.String(),
		)
		return true
	})
	kfmt.Printf("[bootinfo] %d regions, available memory: %dKb\n", m.Len(), uint64(m.UsableMemory()/mem.Kb))
}
