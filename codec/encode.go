package codec

import (
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/scalar"
	"github.com/wippyai/tagcodec/types"
)

// TagForVariant computes the tag that marks variant v of t as active. It
// returns false when the variant is represented implicitly and no tag must
// be stored.
func (c *Codec) TagForVariant(t *types.Type, v layout.VariantIdx) (Tag, bool, error) {
	tag, ok, err := c.tagForVariant(t, v)
	if err != nil {
		return Tag{}, false, c.fail("encode", t, err)
	}
	return tag, ok, nil
}

func (c *Codec) tagForVariant(t *types.Type, v layout.VariantIdx) (Tag, bool, error) {
	l, err := c.oracle.LayoutOf(t)
	if err != nil {
		return Tag{}, false, err
	}

	switch vs := l.Variants.(type) {
	case layout.Single:
		if vs.Index != v {
			return Tag{}, false, errors.New(errors.PhaseEncode, errors.KindUndeclaredVariant).
				Class(errors.ClassBug).
				Type(t.String()).
				Value(uint32(v)).
				Detail("variant %d requested but the layout only has variant %d", v, vs.Index).
				Build()
		}
		return Tag{}, false, nil

	case layout.Multiple:
		if l.ForVariant(v) == nil {
			return Tag{}, false, errors.UndeclaredVariant(errors.PhaseEncode, t.String(), uint32(v))
		}
		tagInt := vs.Tag.Primitive.Integer()

		switch enc := vs.Encoding.(type) {
		case layout.Direct:
			d, err := c.discriminantForVariant(t, v)
			if err != nil {
				return Tag{}, false, err
			}
			return Tag{Value: scalar.FromUint128(d.Bits(), tagInt), Field: vs.TagField}, true, nil

		case layout.Niche:
			if v == enc.Untagged {
				return Tag{}, false, nil
			}
			if v < enc.NicheVariants.Start {
				return Tag{}, false, errors.VariantOverflow(errors.PhaseEncode, t.String(),
					"relative variant index underflows niche range start")
			}
			if v > enc.NicheVariants.End {
				return Tag{}, false, errors.New(errors.PhaseEncode, errors.KindUndeclaredVariant).
					Class(errors.ClassBug).
					Type(t.String()).
					Value(uint32(v)).
					Detail("variant %d is neither untagged nor in niche range %d..=%d",
						v, enc.NicheVariants.Start, enc.NicheVariants.End).
					Build()
			}

			rel := scalar.FromUint64(uint64(v-enc.NicheVariants.Start), tagInt)
			tag, err := c.arith.Add(rel, scalar.FromUint128(enc.NicheStart, tagInt))
			if err != nil {
				return Tag{}, false, err
			}
			return Tag{Value: tag, Field: vs.TagField}, true, nil
		}
	}

	return Tag{}, false, errors.Bug(errors.PhaseEncode, errors.KindInternal,
		"unknown variants layout %T", l.Variants)
}
