package scalar

import (
	"fmt"
	"math/big"
)

// Int is a sized integer value. Its bits are always truncated to the width
// of its layout.
type Int struct {
	bits Uint128
	ty   Integer
}

// FromUint128 truncates raw bits to ty.
func FromUint128(bits Uint128, ty Integer) Int {
	return Int{bits: bits.Mask(ty.Bits()), ty: ty}
}

// FromUint64 truncates v to ty.
func FromUint64(v uint64, ty Integer) Int {
	return FromUint128(Uint128From64(v), ty)
}

// FromInt64 sign-extends v and truncates it to ty.
func FromInt64(v int64, ty Integer) Int {
	return FromUint128(Uint128From64(uint64(v)).SignExtend(64), ty)
}

// FromBig takes the two's complement of b truncated to ty.
func FromBig(b *big.Int, ty Integer) Int {
	return FromUint128(Uint128FromBig(b), ty)
}

// Type returns the integer layout of x.
func (x Int) Type() Integer {
	return x.ty
}

// Bits returns the raw bit pattern, zero-extended.
func (x Int) Bits() Uint128 {
	return x.bits
}

// Cast converts x to another integer layout: sign-extend or zero-extend
// according to the source signedness, then truncate.
func (x Int) Cast(to Integer) Int {
	b := x.bits
	if x.ty.Signed {
		b = b.SignExtend(x.ty.Bits())
	}
	return FromUint128(b, to)
}

// Reinterpret keeps the bits but changes the layout. Widths must match.
func (x Int) Reinterpret(to Integer) Int {
	return FromUint128(x.bits, to)
}

// Equal reports whether x and y have the same layout and bits.
func (x Int) Equal(y Int) bool {
	return x.ty == y.ty && x.bits == y.bits
}

func (x Int) IsZero() bool {
	return x.bits.IsZero()
}

// Uint64 returns the unsigned magnitude if it fits in 64 bits.
func (x Int) Uint64() (uint64, bool) {
	return x.bits.Uint64()
}

// Big returns the value interpreted per the signedness of x.
func (x Int) Big() *big.Int {
	if !x.ty.Signed {
		return x.bits.Big()
	}
	b := x.bits.Big()
	if x.bits.Bit(x.ty.Bits() - 1) {
		b.Sub(b, new(big.Int).Lsh(big.NewInt(1), x.ty.Bits()))
	}
	return b
}

// Hex returns the raw bits zero-padded to the width.
func (x Int) Hex() string {
	width := int(x.ty.Size) * 2
	if x.bits.Hi == 0 && width <= 16 {
		return fmt.Sprintf("0x%0*x", width, x.bits.Lo)
	}
	return fmt.Sprintf("0x%0*x%016x", width-16, x.bits.Hi, x.bits.Lo)
}

func (x Int) String() string {
	return fmt.Sprintf("%s_%s", x.Big().String(), x.ty)
}
