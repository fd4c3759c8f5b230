package layout

import "math"

// AlignTo rounds offset up to a multiple of align, which must be a power of
// two. Zero align leaves offset unchanged.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// SafeAddU32 adds with overflow detection.
func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}
