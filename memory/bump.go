package memory

import (
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
)

// Bump is an allocator that never reuses memory. Address 0 is never handed
// out, so no allocation aliases the null pointer.
type Bump struct {
	next  uint32
	limit uint32
}

// NewBump allocates from [base, limit). A zero base starts at 8.
func NewBump(base, limit uint32) *Bump {
	if base == 0 {
		base = 8
	}
	return &Bump{next: base, limit: limit}
}

func (b *Bump) Alloc(size, align uint32) (uint32, error) {
	addr := layout.AlignTo(b.next, align)
	end, ok := layout.SafeAddU32(addr, size)
	if !ok || end > b.limit || addr < b.next {
		return 0, errors.OutOfBounds(addr, size, uint64(b.limit))
	}
	b.next = end
	return addr, nil
}

// Used returns the first free address.
func (b *Bump) Used() uint32 {
	return b.next
}
