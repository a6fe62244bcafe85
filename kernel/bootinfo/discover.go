package bootinfo

import "gopherboot/kernel/hal/multiboot"

// LegacyRangeVisitor receives firmware descriptors from a LegacyRangeSource.
// It returns false to stop the enumeration.
type LegacyRangeVisitor func(r *LegacyRange) bool

// LegacyRangeSource enumerates the firmware memory map, invoking visitor once
// per descriptor.
type LegacyRangeSource func(visitor LegacyRangeVisitor)

// Discover converts every descriptor produced by source and adds it to m. A
// malformed descriptor or a full map halts the boot.
func Discover(m *MemoryMap, source LegacyRangeSource) {
	source(func(r *LegacyRange) bool {
		region, err := ConvertLegacyRange(*r)
		if err != nil {
			panicFn(err)
			return false
		}

		if m.Len() == MaxRegions {
			panicFn(ErrTooManyRegions)
			return false
		}

		m.AddRegion(region)
		return true
	})
}

// DiscoverMultiboot populates m from the memory map tag of the multiboot
// info block registered with multiboot.SetInfoPtr.
func DiscoverMultiboot(m *MemoryMap) {
	Discover(m, visitMultibootRanges)
}

func visitMultibootRanges(visitor LegacyRangeVisitor) {
	multiboot.VisitMemRegions(func(entry *multiboot.MemoryMapEntry) bool {
		r := LegacyRange{
			StartAddr:          entry.PhysAddress,
			Len:                entry.Length,
			Type:               entry.Type,
			ExtendedAttributes: entry.Reserved,
		}
		return visitor(&r)
	})
}
