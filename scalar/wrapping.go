package scalar

import "github.com/wippyai/tagcodec/errors"

// Wrapping is two's complement machine arithmetic at the operands' declared
// width. Signedness does not change the resulting bits.
type Wrapping struct{}

// Add returns a + b modulo 2^width.
func (Wrapping) Add(a, b Int) (Int, error) {
	if err := sameLayout("add", a, b); err != nil {
		return Int{}, err
	}
	return FromUint128(a.bits.Add(b.bits), a.ty), nil
}

// Sub returns a - b modulo 2^width.
func (Wrapping) Sub(a, b Int) (Int, error) {
	if err := sameLayout("sub", a, b); err != nil {
		return Int{}, err
	}
	return FromUint128(a.bits.Sub(b.bits), a.ty), nil
}

func sameLayout(op string, a, b Int) error {
	if a.ty != b.ty {
		return errors.Bug(errors.PhaseArith, errors.KindInternal,
			"wrapping %s on mismatched operands %s and %s", op, a.ty, b.ty)
	}
	if !a.ty.Size.Valid() {
		return errors.Bug(errors.PhaseArith, errors.KindInternal,
			"wrapping %s on unsupported width %d", op, a.ty.Size)
	}
	return nil
}
