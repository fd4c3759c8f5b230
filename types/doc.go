// Package types describes the types whose values live in typed memory.
//
// A Type is a builtin scalar (integers, bool, char, pointers), unit, never,
// a struct, or an enum. Enum variants may carry explicitly assigned
// discriminants and payload fields. Types can be built directly, loaded from
// a YAML table, or converted from WIT component-model types.
//
//	opt := types.NewEnum("Option<&T>", types.V("None"), types.V("Some", types.Ref))
//
// Identity matters: layouts are cached per *Type.
package types
