package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/tagcodec"
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
)

// WriteDiscriminant marks variant v as active in the value at p. It writes
// exactly the tag field, or nothing when v is represented implicitly; in
// that case the memory must already decode as v.
func (c *Codec) WriteDiscriminant(v layout.VariantIdx, p tagcodec.Place) error {
	if err := c.writeDiscriminant(v, p); err != nil {
		return c.fail("write", p.Type, err)
	}
	return nil
}

func (c *Codec) writeDiscriminant(v layout.VariantIdx, p tagcodec.Place) error {
	t := p.Type
	uninhabited, err := c.oracle.Uninhabited(t, v)
	if err != nil {
		return err
	}
	if uninhabited {
		return errors.UninhabitedVariantWritten(t.String(), uint32(v))
	}

	tag, ok, err := c.tagForVariant(t, v)
	if err != nil {
		return err
	}

	if ok {
		field, err := c.mem.ProjectField(p, tag.Field)
		if err != nil {
			return err
		}
		if err := c.mem.WriteScalar(field, tag.Value); err != nil {
			return err
		}
		c.log.Debug("tag written",
			zap.Stringer("type", t),
			zap.Uint32("variant", uint32(v)),
			zap.String("tag", tag.Value.Hex()),
			zap.Uint32("addr", field.Addr))
		return nil
	}

	got, err := c.readDiscriminant(p)
	if err != nil {
		return err
	}
	if got != v {
		return errors.InvalidNichedVariantWritten(t.String())
	}
	return nil
}
