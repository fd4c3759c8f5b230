package scalar

import "strconv"

// Size is a scalar width in bytes.
type Size uint8

// Bits returns the width in bits.
func (s Size) Bits() uint {
	return uint(s) * 8
}

// Valid reports whether s is a supported integer width.
func (s Size) Valid() bool {
	switch s {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

// Integer is the layout of a fixed-width integer.
type Integer struct {
	Size   Size
	Signed bool
}

var (
	U8   = Integer{Size: 1}
	U16  = Integer{Size: 2}
	U32  = Integer{Size: 4}
	U64  = Integer{Size: 8}
	U128 = Integer{Size: 16}
	I8   = Integer{Size: 1, Signed: true}
	I16  = Integer{Size: 2, Signed: true}
	I32  = Integer{Size: 4, Signed: true}
	I64  = Integer{Size: 8, Signed: true}
	I128 = Integer{Size: 16, Signed: true}
)

// Bits returns the width in bits.
func (i Integer) Bits() uint {
	return i.Size.Bits()
}

// Unsigned returns the unsigned integer of the same width.
func (i Integer) Unsigned() Integer {
	return Integer{Size: i.Size}
}

func (i Integer) String() string {
	prefix := "u"
	if i.Signed {
		prefix = "i"
	}
	return prefix + strconv.Itoa(int(i.Bits()))
}

// SmallestUnsigned returns the narrowest unsigned integer holding v.
func SmallestUnsigned(v uint64) Integer {
	switch {
	case v <= 0xff:
		return U8
	case v <= 0xffff:
		return U16
	case v <= 0xffffffff:
		return U32
	}
	return U64
}
