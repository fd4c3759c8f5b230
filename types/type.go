package types

import (
	"math/big"
	"strings"
)

// Type describes a type whose values live in typed memory.
type Type struct {
	Name     string
	Fields   []*Type
	Variants []Variant
	Kind     Kind
	// Repr is the explicit integer representation of an enum's
	// discriminant, or KindInvalid when none was declared.
	Repr Kind
}

// Variant is one declared alternative of an enum.
type Variant struct {
	// Discr is the explicitly assigned discriminant, or nil for the
	// default (previous + 1, starting at 0).
	Discr  *big.Int
	Name   string
	Fields []*Type
}

var (
	Bool   = &Type{Name: "bool", Kind: KindBool}
	Char   = &Type{Name: "char", Kind: KindChar}
	U8     = &Type{Name: "u8", Kind: KindU8}
	I8     = &Type{Name: "i8", Kind: KindI8}
	U16    = &Type{Name: "u16", Kind: KindU16}
	I16    = &Type{Name: "i16", Kind: KindI16}
	U32    = &Type{Name: "u32", Kind: KindU32}
	I32    = &Type{Name: "i32", Kind: KindI32}
	U64    = &Type{Name: "u64", Kind: KindU64}
	I64    = &Type{Name: "i64", Kind: KindI64}
	U128   = &Type{Name: "u128", Kind: KindU128}
	I128   = &Type{Name: "i128", Kind: KindI128}
	Usize  = &Type{Name: "usize", Kind: KindUsize}
	Isize  = &Type{Name: "isize", Kind: KindIsize}
	Ref    = &Type{Name: "ref", Kind: KindRef}
	RawPtr = &Type{Name: "rawptr", Kind: KindRawPtr}
	Unit   = &Type{Name: "unit", Kind: KindUnit}
	Never  = &Type{Name: "never", Kind: KindNever}
)

var builtins = map[Kind]*Type{
	KindBool: Bool, KindChar: Char,
	KindU8: U8, KindI8: I8, KindU16: U16, KindI16: I16,
	KindU32: U32, KindI32: I32, KindU64: U64, KindI64: I64,
	KindU128: U128, KindI128: I128, KindUsize: Usize, KindIsize: Isize,
	KindRef: Ref, KindRawPtr: RawPtr, KindUnit: Unit, KindNever: Never,
}

// Builtin returns the shared type for a builtin kind, or nil for composite
// kinds.
func Builtin(k Kind) *Type {
	return builtins[k]
}

// NewStruct creates a struct type.
func NewStruct(name string, fields ...*Type) *Type {
	return &Type{Name: name, Kind: KindStruct, Fields: fields}
}

// NewEnum creates an enum type with the default discriminant representation.
func NewEnum(name string, variants ...Variant) *Type {
	return &Type{Name: name, Kind: KindEnum, Variants: variants}
}

// NewReprEnum creates an enum whose discriminant uses an explicit integer
// representation.
func NewReprEnum(name string, repr Kind, variants ...Variant) *Type {
	return &Type{Name: name, Kind: KindEnum, Repr: repr, Variants: variants}
}

// V declares a variant with a default discriminant.
func V(name string, fields ...*Type) Variant {
	return Variant{Name: name, Fields: fields}
}

// VD declares a variant with an explicit discriminant.
func VD(name string, discr int64, fields ...*Type) Variant {
	return Variant{Name: name, Discr: big.NewInt(discr), Fields: fields}
}

func (t *Type) IsEnum() bool {
	return t != nil && t.Kind == KindEnum
}

// IsDeclaredEmpty reports whether t is an enum with no variants at all.
func (t *Type) IsDeclaredEmpty() bool {
	return t.IsEnum() && len(t.Variants) == 0
}

func (t *Type) IsScalar() bool {
	return t != nil && t.Kind.IsScalar()
}

// VariantIndex returns the index of the variant called name.
func (t *Type) VariantIndex(name string) (int, bool) {
	for i, v := range t.Variants {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Name != "" {
		return t.Name
	}
	switch t.Kind {
	case KindStruct:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindEnum:
		names := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			names[i] = v.Name
		}
		return "enum{" + strings.Join(names, "|") + "}"
	}
	return t.Kind.String()
}
