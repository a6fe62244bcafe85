package bootinfo

// MemoryRegionType classifies a MemoryRegion. The numeric values are part of
// the handoff layout and must not be reordered.
type MemoryRegionType uint32

const (
	// Usable is free RAM.
	Usable MemoryRegionType = iota

	// InUse is RAM that is already in use.
	InUse

	// Reserved memory must not be touched.
	Reserved

	// AcpiReclaimable holds ACPI tables that may be reused once parsed.
	AcpiReclaimable

	// AcpiNvs must be preserved across sleep states.
	AcpiNvs

	// BadMemory contains faulty RAM.
	BadMemory

	// Kernel holds the kernel image.
	Kernel

	// KernelStack holds the kernel stack.
	KernelStack

	// PageTable holds page tables built by the boot stage.
	PageTable

	// Bootloader is memory used by the boot stage itself.
	Bootloader

	// FrameZero flags the frame at address zero. It is never assigned
	// automatically; callers that want null-page protection tag it.
	FrameZero

	// Empty marks unused memory map slots. It is never attached to a
	// discovered range.
	Empty

	// BootInfo holds the boot information, including this memory map.
	BootInfo

	// Package holds a package supplied by the boot stage.
	Package

	numRegionTypes
)

// Valid returns true if t is one of the defined region types.
func (t MemoryRegionType) Valid() bool {
	return t < numRegionTypes
}

// String implements fmt.Stringer for MemoryRegionType.
func (t MemoryRegionType) String() string {
	switch t {
	case Usable:
		return "usable"
	case InUse:
		return "in use"
	case Reserved:
		return "reserved"
	case AcpiReclaimable:
		return "ACPI (reclaimable)"
	case AcpiNvs:
		return "ACPI NVS"
	case BadMemory:
		return "bad memory"
	case Kernel:
		return "kernel"
	case KernelStack:
		return "kernel stack"
	case PageTable:
		return "page table"
	case Bootloader:
		return "bootloader"
	case FrameZero:
		return "frame zero"
	case Empty:
		return "empty"
	case BootInfo:
		return "boot info"
	case Package:
		return "package"
	default:
		return "unknown"
	}
}
