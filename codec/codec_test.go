package codec

import (
	"testing"

	"github.com/wippyai/tagcodec"
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/memory"
	"github.com/wippyai/tagcodec/scalar"
	"github.com/wippyai/tagcodec/types"
)

// overrideOracle serves hand-built layouts for selected types and defers to
// the calculator for everything else.
type overrideOracle struct {
	*layout.Calculator
	layouts map[*types.Type]*layout.Layout
}

func (o overrideOracle) LayoutOf(t *types.Type) (*layout.Layout, error) {
	if l, ok := o.layouts[t]; ok {
		return l, nil
	}
	return o.Calculator.LayoutOf(t)
}

func (o overrideOracle) Uninhabited(t *types.Type, v layout.VariantIdx) (bool, error) {
	l, ok := o.layouts[t]
	if !ok {
		return o.Calculator.Uninhabited(t, v)
	}
	vl := l.ForVariant(v)
	if vl == nil {
		return false, errors.UndeclaredVariant(errors.PhaseLayout, t.String(), uint32(v))
	}
	return vl.Uninhabited, nil
}

// overrideAccessor projects fields of overridden types through their
// hand-built layouts.
type overrideAccessor struct {
	*memory.Machine
	oracle overrideOracle
}

func (a overrideAccessor) ProjectField(p tagcodec.Place, i int) (tagcodec.Place, error) {
	if l, ok := a.oracle.layouts[p.Type]; ok {
		f := l.Fields[i]
		return tagcodec.Place{Type: f.Type, Addr: p.Addr + f.Offset}, nil
	}
	return a.Machine.ProjectField(p, i)
}

type harness struct {
	t       *testing.T
	calc    *layout.Calculator
	mach    *memory.Machine
	mem     Accessor
	codec   *Codec
	oracle  overrideOracle
	reports []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	calc := layout.NewCalculator(layout.DefaultTarget())
	h := &harness{
		t:      t,
		calc:   calc,
		mach:   memory.NewMachine(memory.NewLinear(4096), calc),
		oracle: overrideOracle{Calculator: calc, layouts: make(map[*types.Type]*layout.Layout)},
	}
	h.mem = overrideAccessor{Machine: h.mach, oracle: h.oracle}
	h.codec = New(h.oracle, h.mem, Options{
		Reporter: ReporterFunc(func(op string, _ *types.Type, _ error) {
			h.reports = append(h.reports, op)
		}),
	})
	return h
}

func (h *harness) alloc(ty *types.Type) tagcodec.Place {
	h.t.Helper()
	p, err := h.mach.Allocate(ty)
	if err != nil {
		h.t.Fatalf("Allocate(%s): %v", ty, err)
	}
	return p
}

func (h *harness) tagPlace(p tagcodec.Place) tagcodec.Place {
	h.t.Helper()
	l, err := h.oracle.LayoutOf(p.Type)
	if err != nil {
		h.t.Fatal(err)
	}
	m, ok := l.Variants.(layout.Multiple)
	if !ok {
		h.t.Fatalf("%s has no tag", p.Type)
	}
	f, err := h.mem.ProjectField(p, m.TagField)
	if err != nil {
		h.t.Fatal(err)
	}
	return f
}

func (h *harness) setTag(p tagcodec.Place, bits scalar.Uint128) {
	h.t.Helper()
	f := h.tagPlace(p)
	l, _ := h.calc.LayoutOf(f.Type)
	if err := h.mach.WriteScalar(f, scalar.FromUint128(bits, l.Scalar.Primitive.Int)); err != nil {
		h.t.Fatal(err)
	}
}

func (h *harness) tagBits(p tagcodec.Place) scalar.Uint128 {
	h.t.Helper()
	v, err := h.mach.ReadScalar(h.tagPlace(p))
	if err != nil {
		h.t.Fatal(err)
	}
	i, ok := v.TryInt()
	if !ok {
		h.t.Fatalf("tag is pointer-like: %s", v)
	}
	return i.Bits()
}

func (h *harness) bytes(p tagcodec.Place) []byte {
	h.t.Helper()
	b, err := h.mach.Bytes(p)
	if err != nil {
		h.t.Fatal(err)
	}
	return b
}

func u128(v uint64) scalar.Uint128 {
	return scalar.Uint128From64(v)
}

var (
	optRef     = types.NewEnum("Option<&T>", types.V("None"), types.V("Some", types.Ref))
	optBool    = types.NewEnum("Option<bool>", types.V("None"), types.V("Some", types.Bool))
	optOptBool = types.NewEnum("Option<Option<bool>>", types.V("None"), types.V("Some", optBool))
	sparse     = types.NewEnum("Sparse", types.VD("A", 10), types.VD("B", 20), types.VD("C", 200))
	sign       = types.NewEnum("Sign", types.VD("Neg", -1), types.V("Zero"), types.V("Pos"))
)

func TestRoundTrip(t *testing.T) {
	pointee := func(h *harness, p tagcodec.Place, v layout.VariantIdx) {
		if p.Type != optRef || v != 1 {
			return
		}
		target := h.alloc(types.U32)
		ptr, err := h.mach.PointerTo(target)
		if err != nil {
			h.t.Fatal(err)
		}
		slot, err := h.mach.ProjectVariantField(p, 1, 0)
		if err != nil {
			h.t.Fatal(err)
		}
		if err := h.mach.WritePointer(slot, ptr); err != nil {
			h.t.Fatal(err)
		}
	}

	tys := []*types.Type{
		optRef,
		optBool,
		optOptBool,
		sparse,
		sign,
		types.NewEnum("ABC", types.V("A"), types.V("B"), types.V("C")),
		types.NewReprEnum("R", types.KindU8, types.V("A", types.U8), types.V("B", types.U64)),
		types.NewReprEnum("Wide", types.KindI128, types.VD("Min", -1<<63), types.VD("Max", 1<<62)),
		types.NewEnum("Partial", types.V("A", types.Never), types.V("B", types.U32)),
		types.NewReprEnum("ReprPartial", types.KindU16, types.V("A", types.Never), types.V("B", types.U32)),
		types.NewEnum("Wrap", types.V("W", types.U64)),
		types.NewStruct("Plain", types.U8, types.U16),
	}

	for _, ty := range tys {
		t.Run(ty.Name, func(t *testing.T) {
			h := newHarness(t)
			n := len(ty.Variants)
			if !ty.IsEnum() {
				n = 1
			}
			for i := 0; i < n; i++ {
				v := layout.VariantIdx(i)
				un, err := h.calc.Uninhabited(ty, v)
				if err != nil {
					t.Fatal(err)
				}
				if un {
					continue
				}
				p := h.alloc(ty)
				pointee(h, p, v)
				if err := h.codec.WriteDiscriminant(v, p); err != nil {
					t.Fatalf("write %d: %v", v, err)
				}
				got, err := h.codec.ReadDiscriminant(p)
				if err != nil {
					t.Fatalf("read %d: %v", v, err)
				}
				if got != v {
					t.Errorf("read %d after writing %d", got, v)
				}
			}
		})
	}
}

func TestDirectExactness(t *testing.T) {
	h := newHarness(t)
	want := []uint64{10, 20, 200}

	for i, bits := range want {
		v := layout.VariantIdx(i)
		tag, ok, err := h.codec.TagForVariant(sparse, v)
		if err != nil || !ok {
			t.Fatalf("TagForVariant(%d) = %v, %v", v, ok, err)
		}
		if tag.Value.Type() != scalar.U8 || tag.Value.Bits() != u128(bits) {
			t.Errorf("tag(%d) = %s, want %d_u8", v, tag.Value, bits)
		}

		p := h.alloc(sparse)
		h.setTag(p, u128(bits))
		got, err := h.codec.ReadDiscriminant(p)
		if err != nil || got != v {
			t.Errorf("decode %d = %d, %v; want %d", bits, got, err, v)
		}
	}

	p := h.alloc(sparse)
	h.setTag(p, u128(11))
	_, err := h.codec.ReadDiscriminant(p)
	if errors.KindOf(err) != errors.KindInvalidTag || !errors.IsUB(err) {
		t.Fatalf("err = %v, want invalid tag", err)
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Detail != "enum value has invalid tag: 0x0b" {
		t.Errorf("detail = %q", e.Detail)
	}
}

func TestDirectSignedTruncation(t *testing.T) {
	h := newHarness(t)

	tag, _, err := h.codec.TagForVariant(sign, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tag.Value.Type() != scalar.I8 || tag.Value.Bits() != u128(0xff) {
		t.Errorf("tag = %s, want 0xff as i8", tag.Value)
	}

	p := h.alloc(sign)
	h.setTag(p, u128(0xff))
	got, err := h.codec.ReadDiscriminant(p)
	if err != nil || got != 0 {
		t.Errorf("decode 0xff = %d, %v; want Neg", got, err)
	}

	d, err := h.codec.ReadDiscriminantValue(p)
	if err != nil {
		t.Fatal(err)
	}
	if d.Big().Int64() != -1 || d.Type() != h.calc.DiscriminantType(sign) {
		t.Errorf("discriminant value = %s, want -1_i64", d)
	}
}

func TestNicheCoverage(t *testing.T) {
	h := newHarness(t)
	p := h.alloc(optRef)

	if err := h.mach.Store(p, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}); err != nil {
		t.Fatal(err)
	}
	if err := h.codec.WriteDiscriminant(0, p); err != nil {
		t.Fatal(err)
	}
	for i, b := range h.bytes(p) {
		if b != 0 {
			t.Fatalf("byte %d = %#x after writing None, want 0", i, b)
		}
	}

	for _, bits := range []uint64{1, 0x1000, ^uint64(0)} {
		h.setTag(p, u128(bits))
		got, err := h.codec.ReadDiscriminant(p)
		if err != nil || got != 1 {
			t.Errorf("decode %#x = %d, %v; want Some", bits, got, err)
		}
	}
}

func TestNichedOptionBool(t *testing.T) {
	h := newHarness(t)
	p := h.alloc(optOptBool)

	tests := []struct {
		bits uint64
		want layout.VariantIdx
	}{
		{0, 1}, {1, 1}, {2, 1}, {3, 0},
	}
	for _, tc := range tests {
		h.setTag(p, u128(tc.bits))
		got, err := h.codec.ReadDiscriminant(p)
		if err != nil || got != tc.want {
			t.Errorf("decode %d = %d, %v; want %d", tc.bits, got, err, tc.want)
		}
	}

	inner := tagcodec.Place{Type: optBool, Addr: p.Addr}
	h.setTag(p, u128(2))
	if got, _ := h.codec.ReadDiscriminant(inner); got != 0 {
		t.Errorf("inner decode of 2 = %d, want None", got)
	}
}

func nicheFixture(tagInt scalar.Integer, pointer bool, start scalar.Uint128, variants layout.VariantRange, untagged layout.VariantIdx, n int) *layout.Layout {
	size := uint32(tagInt.Size)
	per := make([]*layout.Layout, n)
	for i := range per {
		per[i] = &layout.Layout{Variants: layout.Single{Index: layout.VariantIdx(i)}, Size: size, Align: size}
	}
	fieldType := layout.IntegerType(tagInt)
	if pointer {
		fieldType = types.Ref
	}
	return &layout.Layout{
		Variants: layout.Multiple{
			Encoding: layout.Niche{NicheStart: start, NicheVariants: variants, Untagged: untagged},
			Tag: layout.Scalar{
				Primitive: layout.Primitive{Int: tagInt, Pointer: pointer},
				Valid:     layout.FullRange(tagInt.Bits()),
			},
			TagField: 0,
		},
		Fields:     []layout.Field{{Type: fieldType, Offset: 0}},
		PerVariant: per,
		Size:       size,
		Align:      size,
	}
}

func TestBoundaryWraparound(t *testing.T) {
	for _, tagInt := range []scalar.Integer{scalar.U8, scalar.U16, scalar.U64, scalar.U128} {
		t.Run(tagInt.String(), func(t *testing.T) {
			h := newHarness(t)
			payload := layout.IntegerType(tagInt)
			ty := types.NewEnum("W", types.V("A"), types.V("B"), types.V("C"), types.V("D", payload))

			maxV := scalar.MaxUint128(tagInt.Bits())
			start := maxV.Sub(u128(1))
			h.oracle.layouts[ty] = nicheFixture(tagInt, false, start, layout.VariantRange{Start: 0, End: 2}, 3, 4)

			p := h.alloc(ty)
			h.setTag(p, u128(7))

			if err := h.codec.WriteDiscriminant(2, p); err != nil {
				t.Fatal(err)
			}
			if bits := h.tagBits(p); !bits.IsZero() {
				t.Errorf("variant 2 stored as %s, want 0", bits)
			}
			if got, err := h.codec.ReadDiscriminant(p); err != nil || got != 2 {
				t.Errorf("decode 0 = %d, %v; want 2", got, err)
			}

			wantTags := []scalar.Uint128{start, maxV}
			for i, want := range wantTags {
				v := layout.VariantIdx(i)
				if err := h.codec.WriteDiscriminant(v, p); err != nil {
					t.Fatal(err)
				}
				if bits := h.tagBits(p); bits != want {
					t.Errorf("variant %d stored as %s, want %s", v, bits, want)
				}
				if got, _ := h.codec.ReadDiscriminant(p); got != v {
					t.Errorf("decode = %d, want %d", got, v)
				}
			}

			for _, bits := range []scalar.Uint128{u128(1), u128(5), start.Sub(u128(1))} {
				h.setTag(p, bits)
				if got, err := h.codec.ReadDiscriminant(p); err != nil || got != 3 {
					t.Errorf("decode %s = %d, %v; want untagged 3", bits, got, err)
				}
			}

			// Implicit write over memory that already encodes D.
			h.setTag(p, u128(1))
			if err := h.codec.WriteDiscriminant(3, p); err != nil {
				t.Errorf("implicit write over D: %v", err)
			}
			if bits := h.tagBits(p); bits != u128(1) {
				t.Errorf("implicit write changed tag to %s", bits)
			}

			// Implicit write over memory that encodes C.
			h.setTag(p, u128(0))
			err := h.codec.WriteDiscriminant(3, p)
			if errors.KindOf(err) != errors.KindInvalidNichedVariantWritten || !errors.IsUB(err) {
				t.Errorf("err = %v, want invalid niched variant written", err)
			}
			if bits := h.tagBits(p); !bits.IsZero() {
				t.Errorf("failed write changed tag to %s", bits)
			}
		})
	}
}

func TestUninhabitedRejection(t *testing.T) {
	h := newHarness(t)
	ty := types.NewReprEnum("R", types.KindU8, types.V("A", types.Never), types.V("B", types.U32))
	p := h.alloc(ty)

	h.setTag(p, u128(0))
	_, err := h.codec.ReadDiscriminant(p)
	if errors.KindOf(err) != errors.KindUninhabitedVariantRead || !errors.IsUB(err) {
		t.Errorf("read err = %v, want uninhabited variant read", err)
	}

	h.setTag(p, u128(1))
	before := h.bytes(p)
	err = h.codec.WriteDiscriminant(0, p)
	if errors.KindOf(err) != errors.KindUninhabitedVariantWritten || !errors.IsUB(err) {
		t.Errorf("write err = %v, want uninhabited variant written", err)
	}
	if string(h.bytes(p)) != string(before) {
		t.Error("rejected write mutated memory")
	}

	absent := types.NewEnum("Partial", types.V("A", types.Never), types.V("B", types.U32))
	ap := h.alloc(absent)
	if err := h.codec.WriteDiscriminant(0, ap); errors.KindOf(err) != errors.KindUninhabitedVariantWritten {
		t.Errorf("absent write err = %v", err)
	}
}

func TestReadIdempotent(t *testing.T) {
	h := newHarness(t)
	for _, ty := range []*types.Type{sparse, optBool, optRef} {
		p := h.alloc(ty)
		before := h.bytes(p)

		first, err1 := h.codec.ReadDiscriminant(p)
		second, err2 := h.codec.ReadDiscriminant(p)
		if first != second || errors.KindOf(err1) != errors.KindOf(err2) {
			t.Errorf("%s: reads differ: %d/%v vs %d/%v", ty, first, err1, second, err2)
		}
		if string(h.bytes(p)) != string(before) {
			t.Errorf("%s: read mutated memory", ty)
		}
	}
}

func TestZeroVariantEnum(t *testing.T) {
	h := newHarness(t)
	void := types.NewEnum("Void")
	p := h.alloc(void)

	for i := 0; i < 2; i++ {
		_, err := h.codec.ReadDiscriminant(p)
		if errors.KindOf(err) != errors.KindUninhabitedVariantRead {
			t.Errorf("err = %v, want uninhabited variant read", err)
		}
	}
	if _, err := h.codec.ReadDiscriminantValue(p); errors.KindOf(err) != errors.KindUninhabitedVariantRead {
		t.Errorf("value err = %v", err)
	}
	if err := h.codec.WriteDiscriminant(0, p); !errors.IsFatal(err) {
		t.Errorf("write err = %v, want undeclared variant bug", err)
	}
}

func TestNonEnumTypes(t *testing.T) {
	h := newHarness(t)
	s := types.NewStruct("S", types.U32)
	p := h.alloc(s)

	if got, err := h.codec.ReadDiscriminant(p); err != nil || got != 0 {
		t.Errorf("decode = %d, %v", got, err)
	}
	d, err := h.codec.ReadDiscriminantValue(p)
	if err != nil || !d.IsZero() || d.Type() != scalar.U8 {
		t.Errorf("discriminant value = %s, %v; want 0_u8", d, err)
	}
	if _, err := h.codec.DiscriminantForVariant(s, 1); errors.KindOf(err) != errors.KindUndeclaredVariant {
		t.Errorf("err = %v, want undeclared variant", err)
	}

	never := h.alloc(types.Never)
	if _, err := h.codec.ReadDiscriminant(never); errors.KindOf(err) != errors.KindUninhabitedVariantRead {
		t.Errorf("never err = %v", err)
	}
}

func TestPointerNiche(t *testing.T) {
	t.Run("non-null pointer is untagged", func(t *testing.T) {
		h := newHarness(t)
		p := h.alloc(optRef)
		target := h.alloc(types.U64)
		ptr, _ := h.mach.PointerTo(target)
		slot, _ := h.mach.ProjectVariantField(p, 1, 0)

		for _, off := range []uint64{0, 8} {
			ptr.Offset = off
			if err := h.mach.WritePointer(slot, ptr); err != nil {
				t.Fatal(err)
			}
			got, err := h.codec.ReadDiscriminant(p)
			if err != nil || got != 1 {
				t.Errorf("offset %d: decode = %d, %v; want Some", off, got, err)
			}
		}
	})

	t.Run("possibly null pointer", func(t *testing.T) {
		h := newHarness(t)
		p := h.alloc(optRef)
		target := h.alloc(types.U8)
		ptr, _ := h.mach.PointerTo(target)
		ptr.Offset = 64
		slot, _ := h.mach.ProjectVariantField(p, 1, 0)
		if err := h.mach.WritePointer(slot, ptr); err != nil {
			t.Fatal(err)
		}

		_, err := h.codec.ReadDiscriminant(p)
		if errors.KindOf(err) != errors.KindInvalidTag {
			t.Fatalf("err = %v, want invalid tag", err)
		}
		var e *errors.Error
		errors.As(err, &e)
		if _, ok := e.Value.(scalar.Value); !ok {
			t.Errorf("invalid tag should cite the pointer value, got %T", e.Value)
		}
	})

	t.Run("partially overwritten pointer", func(t *testing.T) {
		h := newHarness(t)
		p := h.alloc(optRef)
		target := h.alloc(types.U64)
		ptr, _ := h.mach.PointerTo(target)
		slot, _ := h.mach.ProjectVariantField(p, 1, 0)
		if err := h.mach.WritePointer(slot, ptr); err != nil {
			t.Fatal(err)
		}
		low := tagcodec.Place{Type: types.U8, Addr: slot.Addr}
		if err := h.mach.WriteScalar(low, scalar.FromUint64(0x77, scalar.U8)); err != nil {
			t.Fatal(err)
		}

		got, err := h.codec.ReadDiscriminant(p)
		if errors.KindOf(err) != errors.KindInvalidData {
			t.Errorf("decode = %d, %v; want invalid data", got, err)
		}
		if len(h.reports) != 1 {
			t.Errorf("reports = %v, want one", h.reports)
		}
	})

	t.Run("nonzero niche start", func(t *testing.T) {
		h := newHarness(t)
		ty := types.NewEnum("Odd", types.V("A"), types.V("B", types.Ref))
		h.oracle.layouts[ty] = nicheFixture(scalar.U64, true, u128(1), layout.VariantRange{Start: 0, End: 0}, 1, 2)
		h.assertPointerTagRejected(ty)
	})

	t.Run("multi-variant niche", func(t *testing.T) {
		h := newHarness(t)
		ty := types.NewEnum("Two", types.V("A"), types.V("B"), types.V("C", types.Ref))
		h.oracle.layouts[ty] = nicheFixture(scalar.U64, true, u128(0), layout.VariantRange{Start: 0, End: 1}, 2, 3)
		h.assertPointerTagRejected(ty)
	})

	t.Run("direct tag holding a pointer", func(t *testing.T) {
		h := newHarness(t)
		ty := types.NewReprEnum("U", types.KindUsize, types.V("A"), types.V("B"))
		h.assertPointerTagRejected(ty)
	})
}

func (h *harness) assertPointerTagRejected(ty *types.Type) {
	h.t.Helper()
	p := h.alloc(ty)
	target := h.alloc(types.U64)
	ptr, _ := h.mach.PointerTo(target)

	slot := h.tagPlace(p)
	slot.Type = types.Ref
	if err := h.mach.WritePointer(slot, ptr); err != nil {
		h.t.Fatal(err)
	}
	_, err := h.codec.ReadDiscriminant(p)
	if errors.KindOf(err) != errors.KindInvalidTag || !errors.IsUB(err) {
		h.t.Errorf("err = %v, want invalid tag", err)
	}
}

func TestFatalInconsistencies(t *testing.T) {
	t.Run("undeclared variant", func(t *testing.T) {
		h := newHarness(t)
		_, _, err := h.codec.TagForVariant(sparse, 3)
		if !errors.IsFatal(err) || errors.KindOf(err) != errors.KindUndeclaredVariant {
			t.Errorf("err = %v", err)
		}
		if _, err := h.codec.DiscriminantForVariant(sparse, 9); !errors.IsFatal(err) {
			t.Errorf("resolver err = %v", err)
		}
	})

	t.Run("single layout index mismatch", func(t *testing.T) {
		h := newHarness(t)
		wrap := types.NewEnum("Wrap", types.V("W", types.U8))
		_, _, err := h.codec.TagForVariant(wrap, 1)
		if !errors.IsFatal(err) {
			t.Errorf("err = %v, want fatal", err)
		}
		if _, ok, err := h.codec.TagForVariant(wrap, 0); ok || err != nil {
			t.Errorf("sole variant: ok = %v, err = %v", ok, err)
		}
	})

	t.Run("tag layout mismatch", func(t *testing.T) {
		h := newHarness(t)
		ty := types.NewEnum("M", types.V("A"), types.V("B", types.U16))
		l := nicheFixture(scalar.U16, false, u128(0), layout.VariantRange{Start: 0, End: 0}, 1, 2)
		l.Fields[0].Type = types.U8
		h.oracle.layouts[ty] = l

		p := h.alloc(ty)
		_, err := h.codec.ReadDiscriminant(p)
		if !errors.IsFatal(err) || errors.KindOf(err) != errors.KindTagLayoutMismatch {
			t.Errorf("err = %v, want tag layout mismatch", err)
		}
	})

	t.Run("signedness mismatch", func(t *testing.T) {
		h := newHarness(t)
		ty := types.NewEnum("S", types.V("A"), types.V("B", types.U8))
		l := nicheFixture(scalar.U8, false, u128(0), layout.VariantRange{Start: 0, End: 0}, 1, 2)
		l.Fields[0].Type = types.I8
		h.oracle.layouts[ty] = l

		_, err := h.codec.ReadDiscriminant(h.alloc(ty))
		if errors.KindOf(err) != errors.KindTagLayoutMismatch {
			t.Errorf("err = %v, want tag layout mismatch", err)
		}
	})

	t.Run("variant below niche range", func(t *testing.T) {
		h := newHarness(t)
		ty := types.NewEnum("N", types.V("A"), types.V("B"), types.V("C"), types.V("D", types.U8))
		h.oracle.layouts[ty] = nicheFixture(scalar.U8, false, u128(10), layout.VariantRange{Start: 1, End: 2}, 3, 4)

		_, _, err := h.codec.TagForVariant(ty, 0)
		if !errors.IsFatal(err) || errors.KindOf(err) != errors.KindVariantOverflow {
			t.Errorf("err = %v, want variant overflow", err)
		}
	})

	t.Run("decoded variant not declared", func(t *testing.T) {
		h := newHarness(t)
		ty := types.NewEnum("N", types.V("A"), types.V("B"), types.V("C", types.U8))
		h.oracle.layouts[ty] = nicheFixture(scalar.U8, false, u128(0), layout.VariantRange{Start: 0, End: 5}, 2, 3)

		p := h.alloc(ty)
		h.setTag(p, u128(4))
		_, err := h.codec.ReadDiscriminant(p)
		if !errors.IsFatal(err) || errors.KindOf(err) != errors.KindUndeclaredVariant {
			t.Errorf("err = %v, want undeclared variant", err)
		}
	})
}

func TestFailuresReportedOnce(t *testing.T) {
	h := newHarness(t)
	p := h.alloc(optBool)

	// Zeroed memory is Some(false), so claiming Some succeeds.
	if err := h.codec.WriteDiscriminant(1, p); err != nil {
		t.Fatal(err)
	}
	h.reports = nil

	// Tag 2 encodes None; claiming Some must be rejected.
	h.setTag(p, u128(2))
	if err := h.codec.WriteDiscriminant(1, p); errors.KindOf(err) != errors.KindInvalidNichedVariantWritten {
		t.Fatalf("err = %v", err)
	}
	if len(h.reports) != 1 || h.reports[0] != "write" {
		t.Errorf("reports = %v, want one write report", h.reports)
	}

	h.reports = nil
	h.setTag(p, u128(9))
	if _, err := h.codec.ReadDiscriminant(p); err != nil {
		t.Fatalf("9 decodes as Some: %v", err)
	}
	if len(h.reports) != 0 {
		t.Errorf("successful read reported %v", h.reports)
	}
}
