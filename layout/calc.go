package layout

import (
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/scalar"
	"github.com/wippyai/tagcodec/types"
)

// Calculator computes and caches layouts for a target. It is safe for
// concurrent use.
type Calculator struct {
	cache  map[*types.Type]*Layout
	discrs map[*types.Type][]Discriminant
	active map[*types.Type]bool
	target Target
	mu     sync.Mutex
}

func NewCalculator(target Target) *Calculator {
	return &Calculator{
		cache:  make(map[*types.Type]*Layout),
		discrs: make(map[*types.Type][]Discriminant),
		active: make(map[*types.Type]bool),
		target: target,
	}
}

func (c *Calculator) Target() Target {
	return c.target
}

// LayoutOf returns the layout of t.
func (c *Calculator) LayoutOf(t *types.Type) (*Layout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layoutOf(t)
}

// DiscriminantType returns the integer type of t's logical discriminant:
// the declared representation, isize for enums without one, and u8 for
// every other type.
func (c *Calculator) DiscriminantType(t *types.Type) scalar.Integer {
	if !t.IsEnum() {
		return scalar.U8
	}
	if t.Repr != types.KindInvalid {
		in, _ := c.integerOf(t.Repr)
		return in
	}
	in, _ := c.integerOf(types.KindIsize)
	return in
}

// Discriminants returns the discriminant of every declared variant of t in
// declaration order. Non-enum types have none.
func (c *Calculator) Discriminants(t *types.Type) ([]Discriminant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discriminants(t)
}

// Uninhabited reports whether variant v of t has no valid values.
func (c *Calculator) Uninhabited(t *types.Type, v VariantIdx) (bool, error) {
	l, err := c.LayoutOf(t)
	if err != nil {
		return false, err
	}
	vl := l.ForVariant(v)
	if vl == nil {
		return false, errors.UndeclaredVariant(errors.PhaseLayout, t.String(), uint32(v))
	}
	return vl.Uninhabited, nil
}

func (c *Calculator) layoutOf(t *types.Type) (*Layout, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseLayout, "nil type")
	}
	if l, ok := c.cache[t]; ok {
		return l, nil
	}
	if c.active[t] {
		return nil, errors.New(errors.PhaseLayout, errors.KindUnsupported).
			Type(t.String()).
			Detail("type %s contains itself", t).
			Build()
	}
	c.active[t] = true
	defer delete(c.active, t)

	var (
		l   *Layout
		err error
	)
	switch {
	case t.Kind.IsScalar():
		l = c.scalarLayout(t)
	case t.Kind == types.KindUnit:
		l = &Layout{Variants: Single{}, Align: 1}
	case t.Kind == types.KindNever:
		l = &Layout{Variants: Single{}, Align: 1, Uninhabited: true}
	case t.Kind == types.KindStruct:
		l, err = c.structLayout(t.Fields, 0, []string{t.String()})
	case t.Kind == types.KindEnum:
		l, err = c.enumLayout(t)
	default:
		err = errors.Unsupported(errors.PhaseLayout, "type kind "+t.Kind.String())
	}
	if err != nil {
		return nil, err
	}

	c.cache[t] = l
	Logger().Debug("layout computed",
		zap.Stringer("type", t),
		zap.Uint32("size", l.Size),
		zap.Uint32("align", l.Align),
		zap.String("variants", l.Describe()))
	return l, nil
}

func (c *Calculator) integerOf(k types.Kind) (scalar.Integer, bool) {
	switch k {
	case types.KindBool, types.KindU8:
		return scalar.U8, true
	case types.KindI8:
		return scalar.I8, true
	case types.KindU16:
		return scalar.U16, true
	case types.KindI16:
		return scalar.I16, true
	case types.KindChar, types.KindU32:
		return scalar.U32, true
	case types.KindI32:
		return scalar.I32, true
	case types.KindU64:
		return scalar.U64, true
	case types.KindI64:
		return scalar.I64, true
	case types.KindU128:
		return scalar.U128, true
	case types.KindI128:
		return scalar.I128, true
	case types.KindUsize, types.KindRef, types.KindRawPtr:
		return scalar.Integer{Size: scalar.Size(c.target.PtrSize)}, true
	case types.KindIsize:
		return scalar.Integer{Size: scalar.Size(c.target.PtrSize), Signed: true}, true
	}
	return scalar.Integer{}, false
}

func (c *Calculator) scalarLayout(t *types.Type) *Layout {
	in, _ := c.integerOf(t.Kind)
	s := Scalar{
		Primitive: Primitive{Int: in, Pointer: t.Kind.IsPointer()},
		Valid:     FullRange(in.Bits()),
	}
	switch t.Kind {
	case types.KindBool:
		s.Valid.End = scalar.Uint128From64(1)
	case types.KindChar:
		s.Valid.End = scalar.Uint128From64(0x10FFFF)
	case types.KindRef:
		s.Valid.Start = scalar.Uint128From64(1)
	}

	size := uint32(in.Size)
	l := &Layout{Variants: Single{}, Scalar: &s, Size: size, Align: size}
	if !s.Valid.Available(in.Bits()).IsZero() {
		l.Niche = &NicheSlot{Type: t, Scalar: s}
	}
	return l
}

// structLayout places fields in order starting at base.
func (c *Calculator) structLayout(fields []*types.Type, base uint32, path []string) (*Layout, error) {
	l := &Layout{Variants: Single{}}
	offset := base
	maxAlign := uint32(1)

	for _, f := range fields {
		fl, err := c.layoutOf(f)
		if err != nil {
			return nil, err
		}

		offset = AlignTo(offset, fl.Align)
		l.Fields = append(l.Fields, Field{Type: f, Offset: offset})

		if fl.Uninhabited {
			l.Uninhabited = true
		}
		if fl.Niche != nil && (l.Niche == nil || nicheAvailable(fl.Niche).Cmp(nicheAvailable(l.Niche)) > 0) {
			n := *fl.Niche
			n.Offset += offset
			l.Niche = &n
		}
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}

		next, ok := SafeAddU32(offset, fl.Size)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseLayout, path, "size overflows u32")
		}
		offset = next
	}

	l.Size = AlignTo(offset, maxAlign)
	l.Align = maxAlign
	return l, nil
}

func nicheAvailable(n *NicheSlot) scalar.Uint128 {
	return n.Scalar.Valid.Available(n.Scalar.Primitive.Int.Bits())
}

func (c *Calculator) discriminants(t *types.Type) ([]Discriminant, error) {
	if !t.IsEnum() {
		return nil, nil
	}
	if ds, ok := c.discrs[t]; ok {
		return ds, nil
	}

	dty := c.DiscriminantType(t)
	out := make([]Discriminant, len(t.Variants))
	var prev scalar.Int
	for i, v := range t.Variants {
		var d scalar.Int
		switch {
		case v.Discr != nil:
			d = scalar.FromBig(v.Discr, dty)
			if d.Big().Cmp(v.Discr) != 0 {
				return nil, errors.InvalidData(errors.PhaseLayout, []string{t.String(), v.Name},
					"discriminant "+v.Discr.String()+" does not fit "+dty.String())
			}
		case i == 0:
			d = scalar.FromUint64(0, dty)
		default:
			next, err := scalar.Wrapping{}.Add(prev, scalar.FromUint64(1, dty))
			if err != nil {
				return nil, err
			}
			d = next
		}
		out[i] = Discriminant{Value: d, Variant: VariantIdx(i)}
		prev = d
	}

	c.discrs[t] = out
	return out, nil
}

func (c *Calculator) enumLayout(t *types.Type) (*Layout, error) {
	discrs, err := c.discriminants(t)
	if err != nil {
		return nil, err
	}

	n := len(t.Variants)
	if n == 0 {
		return &Layout{Variants: Single{}, Align: 1, Uninhabited: true, PerVariant: []*Layout{}}, nil
	}

	vls := make([]*Layout, n)
	for i, v := range t.Variants {
		vl, err := c.structLayout(v.Fields, 0, []string{t.String(), v.Name})
		if err != nil {
			return nil, err
		}
		vl.Variants = Single{Index: VariantIdx(i)}
		vls[i] = vl
	}

	if t.Repr == types.KindInvalid {
		var present []int
		for i, vl := range vls {
			if !absent(vl) {
				present = append(present, i)
			}
		}
		if n == 1 || len(present) <= 1 {
			idx := 0
			if len(present) == 1 {
				idx = present[0]
			}
			return singleLayout(idx, vls), nil
		}
		if l := nicheLayout(vls); l != nil {
			return l, nil
		}
	}
	return c.directLayout(t, discrs, vls)
}

// absent variants are uninhabited and zero-sized, so no value ever has them.
func absent(vl *Layout) bool {
	return vl.Uninhabited && vl.Size == 0
}

func maxAlignOf(vls []*Layout) uint32 {
	align := uint32(1)
	for _, vl := range vls {
		if vl.Align > align {
			align = vl.Align
		}
	}
	return align
}

func allUninhabited(vls []*Layout) bool {
	for _, vl := range vls {
		if !vl.Uninhabited {
			return false
		}
	}
	return true
}

func singleLayout(idx int, vls []*Layout) *Layout {
	l := *vls[idx]
	l.Variants = Single{Index: VariantIdx(idx)}
	l.Align = maxAlignOf(vls)
	l.Size = AlignTo(l.Size, l.Align)
	l.PerVariant = vls
	l.Uninhabited = vls[idx].Uninhabited
	return &l
}

// nicheLayout stores every variant except the largest in invalid patterns
// of the largest variant's niche. It returns nil when that is impossible.
func nicheLayout(vls []*Layout) *Layout {
	largest := 0
	for i, vl := range vls {
		if vl.Size >= vls[largest].Size {
			largest = i
		}
	}

	start, end := -1, -1
	for i, vl := range vls {
		if i == largest {
			continue
		}
		if vl.Size != 0 {
			return nil
		}
		if absent(vl) {
			continue
		}
		if start < 0 {
			start = i
		}
		end = i
	}
	if start < 0 {
		return nil
	}
	variants := VariantRange{Start: VariantIdx(start), End: VariantIdx(end)}
	if variants.Contains(VariantIdx(largest)) {
		return nil
	}

	niche := vls[largest].Niche
	if niche == nil {
		return nil
	}
	bits := niche.Scalar.Primitive.Int.Bits()
	span := scalar.Uint128From64(uint64(end - start))
	if nicheAvailable(niche).Cmp(span) <= 0 {
		return nil
	}

	nicheStart := niche.Scalar.Valid.End.Add(scalar.Uint128From64(1)).Mask(bits)
	tag := Scalar{
		Primitive: niche.Scalar.Primitive,
		Valid: WrappingRange{
			Start: niche.Scalar.Valid.Start,
			End:   nicheStart.Add(span).Mask(bits),
		},
	}

	align := maxAlignOf(vls)
	l := &Layout{
		Variants: Multiple{
			Encoding: Niche{
				NicheStart:    nicheStart,
				NicheVariants: variants,
				Untagged:      VariantIdx(largest),
			},
			Tag:      tag,
			TagField: 0,
		},
		Fields:      []Field{{Type: niche.Type, Offset: niche.Offset}},
		PerVariant:  vls,
		Size:        AlignTo(vls[largest].Size, align),
		Align:       align,
		Uninhabited: allUninhabited(vls),
	}
	if !tag.Valid.Available(bits).IsZero() {
		l.Niche = &NicheSlot{Type: niche.Type, Scalar: tag, Offset: niche.Offset}
	}
	return l
}

// directLayout puts the tag at offset 0 and every payload at the first
// offset after it aligned for all variants.
func (c *Calculator) directLayout(t *types.Type, discrs []Discriminant, vls []*Layout) (*Layout, error) {
	var minD, maxD *big.Int
	for i, d := range discrs {
		if vls[i].Uninhabited {
			continue
		}
		v := d.Value.Big()
		if minD == nil || v.Cmp(minD) < 0 {
			minD = v
		}
		if maxD == nil || v.Cmp(maxD) > 0 {
			maxD = v
		}
	}
	if minD == nil {
		minD, maxD = new(big.Int), new(big.Int)
	}

	var tagInt scalar.Integer
	if t.Repr != types.KindInvalid {
		tagInt, _ = c.integerOf(t.Repr)
	} else {
		tagInt = fitInteger(minD, maxD)
	}

	tagSize := uint32(tagInt.Size)
	align := tagSize
	maxSize := uint32(0)
	for _, vl := range vls {
		if vl.Align > align {
			align = vl.Align
		}
		if vl.Size > maxSize {
			maxSize = vl.Size
		}
	}

	payload := AlignTo(tagSize, align)
	end, ok := SafeAddU32(payload, maxSize)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseLayout, []string{t.String()}, "size overflows u32")
	}
	size := AlignTo(end, align)

	shifted := make([]*Layout, len(vls))
	for i, v := range t.Variants {
		vl, err := c.structLayout(v.Fields, payload, []string{t.String(), v.Name})
		if err != nil {
			return nil, err
		}
		vl.Variants = Single{Index: VariantIdx(i)}
		vl.Size = size
		vl.Align = align
		shifted[i] = vl
	}

	bits := tagInt.Bits()
	tag := Scalar{
		Primitive: Primitive{Int: tagInt},
		Valid: WrappingRange{
			Start: scalar.FromBig(minD, tagInt).Bits(),
			End:   scalar.FromBig(maxD, tagInt).Bits(),
		},
	}
	tagType := IntegerType(tagInt)

	l := &Layout{
		Variants:    Multiple{Encoding: Direct{}, Tag: tag, TagField: 0},
		Fields:      []Field{{Type: tagType, Offset: 0}},
		PerVariant:  shifted,
		Size:        size,
		Align:       align,
		Uninhabited: allUninhabited(vls),
	}
	if !tag.Valid.Available(bits).IsZero() {
		l.Niche = &NicheSlot{Type: tagType, Scalar: tag}
	}
	return l, nil
}

var (
	signedFits   = []scalar.Integer{scalar.I8, scalar.I16, scalar.I32, scalar.I64}
	unsignedFits = []scalar.Integer{scalar.U8, scalar.U16, scalar.U32, scalar.U64}
)

// fitInteger picks the narrowest integer holding [lo, hi]: unsigned when
// lo is non-negative, signed otherwise.
func fitInteger(lo, hi *big.Int) scalar.Integer {
	if lo.Sign() >= 0 {
		for _, in := range unsignedFits {
			if hi.BitLen() <= int(in.Bits()) {
				return in
			}
		}
		return scalar.U128
	}
	for _, in := range signedFits {
		limit := new(big.Int).Lsh(big.NewInt(1), in.Bits()-1)
		minV := new(big.Int).Neg(limit)
		maxV := new(big.Int).Sub(limit, big.NewInt(1))
		if lo.Cmp(minV) >= 0 && hi.Cmp(maxV) <= 0 {
			return in
		}
	}
	return scalar.I128
}

// IntegerType returns the builtin type for a fixed-width integer.
func IntegerType(in scalar.Integer) *types.Type {
	switch in {
	case scalar.U8:
		return types.U8
	case scalar.I8:
		return types.I8
	case scalar.U16:
		return types.U16
	case scalar.I16:
		return types.I16
	case scalar.U32:
		return types.U32
	case scalar.I32:
		return types.I32
	case scalar.U64:
		return types.U64
	case scalar.I64:
		return types.I64
	case scalar.U128:
		return types.U128
	case scalar.I128:
		return types.I128
	}
	return nil
}
