package scalar

import (
	"fmt"
	"math/big"
	"math/bits"
)

// Uint128 is a raw 128-bit pattern. Arithmetic on it wraps modulo 2^128.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Uint128From64 widens v.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// MaxUint128 returns the all-ones pattern truncated to width bits.
func MaxUint128(width uint) Uint128 {
	return Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}.Mask(width)
}

func (u Uint128) Add(v Uint128) Uint128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

func (u Uint128) Sub(v Uint128) Uint128 {
	lo, borrow := bits.Sub64(u.Lo, v.Lo, 0)
	hi, _ := bits.Sub64(u.Hi, v.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

// Mask keeps the low width bits.
func (u Uint128) Mask(width uint) Uint128 {
	switch {
	case width >= 128:
		return u
	case width > 64:
		return Uint128{Hi: u.Hi & (1<<(width-64) - 1), Lo: u.Lo}
	case width == 64:
		return Uint128{Lo: u.Lo}
	default:
		return Uint128{Lo: u.Lo & (1<<width - 1)}
	}
}

// SignExtend treats the low width bits as a signed value and extends the
// sign bit through all 128 bits.
func (u Uint128) SignExtend(width uint) Uint128 {
	if width >= 128 || width == 0 {
		return u
	}
	u = u.Mask(width)
	if !u.Bit(width - 1) {
		return u
	}
	return u.Or(MaxUint128(128).Xor(MaxUint128(width)))
}

// Bit reports whether bit i is set.
func (u Uint128) Bit(i uint) bool {
	if i >= 64 {
		return u.Hi>>(i-64)&1 == 1
	}
	return u.Lo>>i&1 == 1
}

func (u Uint128) Or(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi | v.Hi, Lo: u.Lo | v.Lo}
}

func (u Uint128) Xor(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi ^ v.Hi, Lo: u.Lo ^ v.Lo}
}

// Cmp compares u and v as unsigned values.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi < v.Hi:
		return -1
	case u.Hi > v.Hi:
		return 1
	case u.Lo < v.Lo:
		return -1
	case u.Lo > v.Lo:
		return 1
	}
	return 0
}

func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// Uint64 returns the value if it fits in 64 bits.
func (u Uint128) Uint64() (uint64, bool) {
	return u.Lo, u.Hi == 0
}

// Big returns the unsigned value.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

// Uint128FromBig returns the two's complement of b truncated to 128 bits.
func Uint128FromBig(b *big.Int) Uint128 {
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	m := new(big.Int).Mod(b, mod) // Mod is Euclidean: result is non-negative
	lo := new(big.Int).And(m, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(m, 64)
	return Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}
}

func (u Uint128) String() string {
	if u.Hi == 0 {
		return fmt.Sprintf("%#x", u.Lo)
	}
	return fmt.Sprintf("%#x%016x", u.Hi, u.Lo)
}
