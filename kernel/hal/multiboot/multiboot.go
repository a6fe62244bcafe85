// Package multiboot walks the boot information block that a multiboot2
// compliant loader leaves in memory and extracts the firmware memory map
// from it.
package multiboot

import "unsafe"

type tagType uint32

// nolint
const (
	tagMbSectionEnd tagType = iota
	tagBootCmdLine
	tagBootLoaderName
	tagModules
	tagBasicMemoryInfo
	tagBiosBootDevice
	tagMemoryMap
)

// infoHeaderSize is the size of the fixed header (total size plus a
// reserved dword) that precedes the first tag.
const infoHeaderSize = 8

// tagHeader describes the header the preceedes each tag.
type tagHeader struct {
	// The type of the tag
	tagType tagType

	// The size of the tag including the header but *not* including any
	// padding. Each tag starts at an 8-byte aligned address.
	size uint32
}

// mmapHeader describes the header for a memory map specification.
type mmapHeader struct {
	// The size of each entry.
	entrySize uint32

	// The version of the entries that follow.
	entryVersion uint32
}

// MemoryMapEntry is a firmware memory map entry as laid out by the boot
// loader. It has the same shape as a BIOS E820 descriptor.
type MemoryMapEntry struct {
	// The physical address for this memory region.
	PhysAddress uint64

	// The length of the memory region.
	Length uint64

	// The firmware type code of this entry. The value is passed through
	// untouched; interpreting it is up to the visitor.
	Type uint32

	// Extended attributes; always zero for multiboot2 loaders.
	Reserved uint32
}

// MemRegionVisitor is invoked by VisitMemRegions for each memory map entry.
// The visitor must return true to continue or false to abort the scan.
type MemRegionVisitor func(entry *MemoryMapEntry) bool

var infoData uintptr

// SetInfoPtr updates the internal multiboot information pointer to the given
// value. This function must be invoked before invoking any other function
// exported by this package.
func SetInfoPtr(ptr uintptr) {
	infoData = ptr
}

// VisitMemRegions invokes visitor for each entry of the memory map tag in
// the order the boot loader listed them. It does nothing if no memory map
// tag is present.
func VisitMemRegions(visitor MemRegionVisitor) {
	curPtr, size := findTagByType(tagMemoryMap)
	if size < uint32(unsafe.Sizeof(mmapHeader{})) {
		return
	}

	hdr := (*mmapHeader)(unsafe.Pointer(curPtr))
	if hdr.entrySize == 0 {
		return
	}

	endPtr := curPtr + uintptr(size)
	curPtr += unsafe.Sizeof(mmapHeader{})

	for ; curPtr+uintptr(hdr.entrySize) <= endPtr; curPtr += uintptr(hdr.entrySize) {
		if !visitor((*MemoryMapEntry)(unsafe.Pointer(curPtr))) {
			return
		}
	}
}

// findTagByType scans the multiboot info data looking for the start of the
// specified tag. It returns a pointer to the tag contents and the content
// length excluding the tag header, or (0, 0) if the tag is not present.
func findTagByType(tagType tagType) (uintptr, uint32) {
	var (
		ptrTagHeader *tagHeader
		hdrSize      = uint32(unsafe.Sizeof(tagHeader{}))
	)

	if infoData == 0 {
		return 0, 0
	}

	curPtr := infoData + infoHeaderSize
	for ptrTagHeader = (*tagHeader)(unsafe.Pointer(curPtr)); ptrTagHeader.tagType != tagMbSectionEnd; ptrTagHeader = (*tagHeader)(unsafe.Pointer(curPtr)) {
		if ptrTagHeader.size < hdrSize {
			// malformed tag; bail out instead of looping forever
			return 0, 0
		}

		if ptrTagHeader.tagType == tagType {
			return curPtr + uintptr(hdrSize), ptrTagHeader.size - hdrSize
		}

		// Tags are aligned at 8-byte aligned addresses
		curPtr += uintptr((ptrTagHeader.size + 7) &^ 7)
	}

	return 0, 0
}
