package types

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func TestDiscriminantKind(t *testing.T) {
	tests := []struct {
		cases int
		want  Kind
	}{
		{1, KindU8},
		{256, KindU8},
		{257, KindU16},
		{65536, KindU16},
		{65537, KindU32},
	}
	for _, tc := range tests {
		if got := DiscriminantKind(tc.cases); got != tc.want {
			t.Errorf("DiscriminantKind(%d) = %v, want %v", tc.cases, got, tc.want)
		}
	}
}

func TestFromWITPrimitives(t *testing.T) {
	tests := []struct {
		in   wit.Type
		want *Type
	}{
		{wit.Bool{}, Bool},
		{wit.U8{}, U8},
		{wit.S16{}, I16},
		{wit.U32{}, U32},
		{wit.S64{}, I64},
		{wit.F32{}, U32},
		{wit.Char{}, Char},
	}
	for _, tc := range tests {
		got, err := FromWIT(tc.in)
		if err != nil {
			t.Fatalf("FromWIT(%T): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("FromWIT(%T) = %v, want %v", tc.in, got, tc.want)
		}
	}

	s, err := FromWIT(wit.String{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != KindStruct || len(s.Fields) != 2 {
		t.Errorf("string = %+v, want (ptr, len) struct", s)
	}
}

func TestFromWITVariant(t *testing.T) {
	v := named("shape", &wit.Variant{Cases: []wit.Case{
		{Name: "circle", Type: wit.F32{}},
		{Name: "square", Type: wit.U32{}},
		{Name: "empty"},
	}})

	got, err := FromWIT(v)
	if err != nil {
		t.Fatalf("FromWIT: %v", err)
	}
	if got.Kind != KindEnum || got.Repr != KindU8 {
		t.Errorf("kind/repr = %v/%v, want enum/u8", got.Kind, got.Repr)
	}
	if got.Name != "shape" || len(got.Variants) != 3 {
		t.Fatalf("got %+v", got)
	}
	if len(got.Variants[2].Fields) != 0 {
		t.Error("payload-less case should have no fields")
	}
	if got.Variants[1].Fields[0] != U32 {
		t.Error("square payload should be u32")
	}
}

func TestFromWITEnumOptionResult(t *testing.T) {
	t.Run("enum", func(t *testing.T) {
		e := named("color", &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "green"}}})
		got, err := FromWIT(e)
		if err != nil {
			t.Fatal(err)
		}
		if got.Repr != KindU8 || len(got.Variants) != 2 || got.Variants[1].Name != "green" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("option", func(t *testing.T) {
		o := &wit.TypeDef{Kind: &wit.Option{Type: wit.U64{}}}
		got, err := FromWIT(o)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "option<u64>" || got.Variants[0].Name != "none" || got.Variants[1].Fields[0] != U64 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("result", func(t *testing.T) {
		r := &wit.TypeDef{Kind: &wit.Result{OK: wit.U8{}}}
		got, err := FromWIT(r)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Variants[0].Fields) != 1 || len(got.Variants[1].Fields) != 0 {
			t.Errorf("got %+v", got)
		}
	})
}

func TestFromWITRecordAndAlias(t *testing.T) {
	rec := named("point", &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "y", Type: wit.S32{}},
	}})
	alias := named("coord", rec)

	got, err := FromWIT(alias)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "coord" || got.Kind != KindStruct || len(got.Fields) != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestFromWITSharesTypeDefs(t *testing.T) {
	inner := named("inner", &wit.Enum{Cases: []wit.EnumCase{{Name: "a"}}})
	tuple := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{inner, inner}}}

	got, err := FromWIT(tuple)
	if err != nil {
		t.Fatal(err)
	}
	if got.Fields[0] != got.Fields[1] {
		t.Error("the same TypeDef should convert to the same type")
	}
}

func TestFromWITFlags(t *testing.T) {
	f := named("perms", &wit.Flags{Flags: []wit.Flag{{Name: "r"}, {Name: "w"}, {Name: "x"}}})
	got, err := FromWIT(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindU8 {
		t.Errorf("kind = %v, want u8", got.Kind)
	}
}
