package codec

import (
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/scalar"
	"github.com/wippyai/tagcodec/types"
)

// DiscriminantForVariant returns the logical discriminant of variant v of t
// in t's discriminant type. Types other than enums have a single variant 0
// whose discriminant is 0.
func (c *Codec) DiscriminantForVariant(t *types.Type, v layout.VariantIdx) (scalar.Int, error) {
	d, err := c.discriminantForVariant(t, v)
	if err != nil {
		return scalar.Int{}, c.fail("discriminant", t, err)
	}
	return d, nil
}

func (c *Codec) discriminantForVariant(t *types.Type, v layout.VariantIdx) (scalar.Int, error) {
	if !t.IsEnum() {
		if v != 0 {
			return scalar.Int{}, errors.UndeclaredVariant(errors.PhaseEncode, t.String(), uint32(v))
		}
		return scalar.FromUint64(0, c.oracle.DiscriminantType(t)), nil
	}

	ds, err := c.oracle.Discriminants(t)
	if err != nil {
		return scalar.Int{}, err
	}
	if int(v) >= len(ds) {
		return scalar.Int{}, errors.UndeclaredVariant(errors.PhaseEncode, t.String(), uint32(v))
	}
	return ds[v].Value, nil
}
