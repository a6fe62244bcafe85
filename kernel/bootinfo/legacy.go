package bootinfo

import (
	"gopherboot/kernel"
	"gopherboot/kernel/mem/pmm"
)

// ErrInvalidRegionType is raised when a firmware descriptor carries a type
// code outside the range 1-5.
var ErrInvalidRegionType = &kernel.Error{Module: "bootinfo", Message: "invalid legacy memory region type"}

// LegacyRange is a firmware memory range descriptor in the format returned by
// the BIOS E820 call and reused by multiboot2 memory map tags.
type LegacyRange struct {
	StartAddr uint64
	Len       uint64

	// Type is the firmware type code (1-5).
	Type uint32

	// ExtendedAttributes (ACPI 3.0) carries nothing the memory map
	// models and is ignored.
	ExtendedAttributes uint32
}

// RegionTypeFromCode maps a firmware type code to a MemoryRegionType. It
// returns false for codes outside 1-5.
func RegionTypeFromCode(code uint32) (MemoryRegionType, bool) {
	switch code {
	case 1:
		return Usable, true
	case 2:
		return Reserved, true
	case 3:
		return AcpiReclaimable, true
	case 4:
		return AcpiNvs, true
	case 5:
		return BadMemory, true
	default:
		return Empty, false
	}
}

// ConvertLegacyRange converts a firmware descriptor into a MemoryRegion. It
// returns ErrInvalidRegionType for unknown type codes and
// pmm.ErrInvalidRange for zero-length descriptors or descriptors whose end
// does not fit in 64 bits.
func ConvertLegacyRange(r LegacyRange) (MemoryRegion, *kernel.Error) {
	regionType, ok := RegionTypeFromCode(r.Type)
	if !ok {
		return EmptyRegion(), ErrInvalidRegionType
	}

	// a wrapped end address is always <= StartAddr and is rejected by
	// NewFrameRange
	frames, err := pmm.NewFrameRange(r.StartAddr, r.StartAddr+r.Len)
	if err != nil {
		return EmptyRegion(), err
	}

	return MemoryRegion{Range: frames, Type: regionType}, nil
}

// RegionFromLegacy converts a firmware descriptor into a MemoryRegion and
// halts the boot if the descriptor is malformed.
func RegionFromLegacy(r LegacyRange) MemoryRegion {
	region, err := ConvertLegacyRange(r)
	if err != nil {
		panicFn(err)
		return EmptyRegion()
	}

	return region
}
