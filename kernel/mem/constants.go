package mem

const (
	// PageShift is equal to log2(PageSize). Shifting an address right by
	// PageShift yields its frame number and vice-versa.
	PageShift = 12

	// PageSize is the granularity of every physical memory range handed
	// from the boot stage to the kernel. It does not depend on the target
	// architecture as the handoff layout must be identical on both sides.
	PageSize = Size(1 << PageShift)
)
