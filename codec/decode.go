package codec

import (
	"math"

	"github.com/wippyai/tagcodec"
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/scalar"
)

// ReadDiscriminant decodes the active variant of the value at p. It never
// returns an uninhabited variant and never modifies memory.
func (c *Codec) ReadDiscriminant(p tagcodec.Place) (layout.VariantIdx, error) {
	v, err := c.readDiscriminant(p)
	if err != nil {
		return 0, c.fail("decode", p.Type, err)
	}
	return v, nil
}

// ReadDiscriminantValue decodes the active variant of the value at p and
// returns its logical discriminant.
func (c *Codec) ReadDiscriminantValue(p tagcodec.Place) (scalar.Int, error) {
	v, err := c.readDiscriminant(p)
	if err != nil {
		return scalar.Int{}, c.fail("decode", p.Type, err)
	}
	d, err := c.discriminantForVariant(p.Type, v)
	if err != nil {
		return scalar.Int{}, c.fail("discriminant", p.Type, err)
	}
	return d, nil
}

func (c *Codec) readDiscriminant(p tagcodec.Place) (layout.VariantIdx, error) {
	t := p.Type
	l, err := c.oracle.LayoutOf(t)
	if err != nil {
		return 0, err
	}

	var idx layout.VariantIdx
	switch vs := l.Variants.(type) {
	case layout.Single:
		if t.IsDeclaredEmpty() {
			return 0, errors.UninhabitedVariantRead(t.String(), uint32(vs.Index))
		}
		idx = vs.Index

	case layout.Multiple:
		tagInt := vs.Tag.Primitive.Integer()
		field, err := c.mem.ProjectField(p, vs.TagField)
		if err != nil {
			return 0, err
		}
		val, err := c.mem.ReadScalar(field)
		if err != nil {
			return 0, err
		}
		if val.Type() != tagInt {
			return 0, errors.TagLayoutMismatch(t.String(), tagInt, val.Type())
		}

		switch enc := vs.Encoding.(type) {
		case layout.Direct:
			idx, err = c.decodeDirect(p, val)
		case layout.Niche:
			idx, err = c.decodeNiche(l, p, enc, val)
		default:
			err = errors.Bug(errors.PhaseDecode, errors.KindInternal, "unknown tag encoding %T", vs.Encoding)
		}
		if err != nil {
			return 0, err
		}

	default:
		return 0, errors.Bug(errors.PhaseDecode, errors.KindInternal, "unknown variants layout %T", l.Variants)
	}

	uninhabited, err := c.oracle.Uninhabited(t, idx)
	if err != nil {
		return 0, err
	}
	if uninhabited {
		return 0, errors.UninhabitedVariantRead(t.String(), uint32(idx))
	}
	return idx, nil
}

// decodeDirect casts the tag to the discriminant type and looks for the
// variant declaring it.
func (c *Codec) decodeDirect(p tagcodec.Place, val scalar.Value) (layout.VariantIdx, error) {
	t := p.Type
	bits, ok := val.TryInt()
	if !ok {
		return 0, errors.InvalidTag(t.String(), val)
	}
	discr := bits.Cast(c.oracle.DiscriminantType(t))

	ds, err := c.oracle.Discriminants(t)
	if err != nil {
		return 0, err
	}
	for _, d := range ds {
		if d.Value.Bits() == discr.Bits() {
			return d.Variant, nil
		}
	}
	return 0, errors.InvalidTag(t.String(), val)
}

// decodeNiche maps tags in [niche_start, niche_start+len) onto the niche
// variants and every other tag onto the untagged variant.
func (c *Codec) decodeNiche(l *layout.Layout, p tagcodec.Place, enc layout.Niche, val scalar.Value) (layout.VariantIdx, error) {
	t := p.Type
	start, end := enc.NicheVariants.Start, enc.NicheVariants.End

	bits, ok := val.TryInt()
	if !ok {
		// Only a non-null pointer is known to differ from a single niche
		// value of zero.
		ptr, _ := val.Pointer()
		if !enc.NicheStart.IsZero() || start != end {
			return 0, errors.InvalidTag(t.String(), val)
		}
		null, err := c.mem.MayBeNull(ptr)
		if err != nil {
			return 0, err
		}
		if null {
			return 0, errors.InvalidTag(t.String(), val)
		}
		return enc.Untagged, nil
	}

	rel, err := c.arith.Sub(bits, scalar.FromUint128(enc.NicheStart, bits.Type()))
	if err != nil {
		return 0, err
	}
	if rel.Bits().Cmp(scalar.Uint128From64(uint64(end-start))) > 0 {
		return enc.Untagged, nil
	}

	r, _ := rel.Bits().Uint64()
	sum := uint64(start) + r
	if sum > math.MaxUint32 {
		return 0, errors.VariantOverflow(errors.PhaseDecode, t.String(), "niche variant index overflows")
	}
	idx := layout.VariantIdx(sum)
	if l.ForVariant(idx) == nil {
		return 0, errors.UndeclaredVariant(errors.PhaseDecode, t.String(), uint32(idx))
	}
	return idx, nil
}
