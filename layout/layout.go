package layout

import (
	"fmt"

	"github.com/wippyai/tagcodec/scalar"
	"github.com/wippyai/tagcodec/types"
)

// VariantIdx is a variant's position in declaration order.
type VariantIdx uint32

// Primitive is the machine representation of a scalar.
type Primitive struct {
	Int     scalar.Integer
	Pointer bool
}

// Integer strips the pointer qualifier.
func (p Primitive) Integer() scalar.Integer {
	return p.Int
}

func (p Primitive) String() string {
	if p.Pointer {
		return "ptr(" + p.Int.String() + ")"
	}
	return p.Int.String()
}

// WrappingRange is an inclusive range of valid bit patterns that may wrap
// around the end of the integer's value space.
type WrappingRange struct {
	Start scalar.Uint128
	End   scalar.Uint128
}

// FullRange covers every pattern of an integer with the given width.
func FullRange(bits uint) WrappingRange {
	return WrappingRange{End: scalar.MaxUint128(bits)}
}

// Contains reports whether x is a valid pattern.
func (r WrappingRange) Contains(x scalar.Uint128) bool {
	if r.Start.Cmp(r.End) <= 0 {
		return r.Start.Cmp(x) <= 0 && x.Cmp(r.End) <= 0
	}
	return r.Start.Cmp(x) <= 0 || x.Cmp(r.End) <= 0
}

// Available is the number of invalid patterns.
func (r WrappingRange) Available(bits uint) scalar.Uint128 {
	return r.Start.Sub(r.End).Sub(scalar.Uint128From64(1)).Mask(bits)
}

// Scalar is a primitive together with its valid range.
type Scalar struct {
	Primitive Primitive
	Valid     WrappingRange
}

// Variants describes how the active variant of a value is determined.
// It is either Single or Multiple.
type Variants interface {
	isVariants()
}

// Single is a layout with exactly one representable variant. Zero-variant
// enums use it too, with Index 0 and an uninhabited layout.
type Single struct {
	Index VariantIdx
}

// Multiple is a layout whose active variant is stored in a tag field.
type Multiple struct {
	Encoding TagEncoding
	Tag      Scalar
	TagField int
}

func (Single) isVariants()   {}
func (Multiple) isVariants() {}

// TagEncoding is either Direct or Niche.
type TagEncoding interface {
	isTagEncoding()
}

// Direct stores the truncated discriminant as the tag.
type Direct struct{}

// Niche maps NicheVariants onto the tag values starting at NicheStart. Every
// other tag value denotes Untagged.
type Niche struct {
	NicheStart    scalar.Uint128
	NicheVariants VariantRange
	Untagged      VariantIdx
}

func (Direct) isTagEncoding() {}
func (Niche) isTagEncoding()  {}

// VariantRange is an inclusive range of variant indices.
type VariantRange struct {
	Start VariantIdx
	End   VariantIdx
}

func (r VariantRange) Contains(v VariantIdx) bool {
	return r.Start <= v && v <= r.End
}

// Len returns the number of variants in the range.
func (r VariantRange) Len() uint32 {
	return uint32(r.End-r.Start) + 1
}

// Field is a field of a layout, at an offset from the start of the value.
type Field struct {
	Type   *types.Type
	Offset uint32
}

// NicheSlot locates the scalar with the most invalid patterns inside a
// layout.
type NicheSlot struct {
	Type   *types.Type
	Scalar Scalar
	Offset uint32
}

// Layout is the memory representation of a type. Immutable once produced.
type Layout struct {
	Variants    Variants
	Scalar      *Scalar
	Niche       *NicheSlot
	Fields      []Field
	PerVariant  []*Layout
	Size        uint32
	Align       uint32
	Uninhabited bool
}

// ForVariant returns the layout of the given variant, or nil if the type
// does not declare it. Non-enum types have a single variant 0.
func (l *Layout) ForVariant(v VariantIdx) *Layout {
	if l.PerVariant == nil {
		if v == 0 {
			return l
		}
		return nil
	}
	if int(v) >= len(l.PerVariant) {
		return nil
	}
	return l.PerVariant[v]
}

// Describe summarizes the variant encoding.
func (l *Layout) Describe() string {
	switch v := l.Variants.(type) {
	case Single:
		if l.Uninhabited {
			return fmt.Sprintf("single(%d, uninhabited)", v.Index)
		}
		return fmt.Sprintf("single(%d)", v.Index)
	case Multiple:
		off := uint32(0)
		if v.TagField < len(l.Fields) {
			off = l.Fields[v.TagField].Offset
		}
		switch enc := v.Encoding.(type) {
		case Direct:
			return fmt.Sprintf("direct(tag %s @%d)", v.Tag.Primitive, off)
		case Niche:
			return fmt.Sprintf("niche(tag %s @%d, variants %d..=%d from %s, untagged %d)",
				v.Tag.Primitive, off, enc.NicheVariants.Start, enc.NicheVariants.End,
				enc.NicheStart, enc.Untagged)
		}
	}
	return "unknown"
}

// Discriminant pairs a variant with its logical discriminant value.
type Discriminant struct {
	Value   scalar.Int
	Variant VariantIdx
}
