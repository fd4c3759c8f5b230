package types

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/tagcodec/errors"
)

// DiscriminantKind is the canonical ABI discriminant width for a variant
// with numCases cases: 1 byte for <=256 cases, 2 for <=65536, else 4.
func DiscriminantKind(numCases int) Kind {
	if numCases <= 256 {
		return KindU8
	} else if numCases <= 65536 {
		return KindU16
	}
	return KindU32
}

// FromWIT converts a component-model type. Variants, enums, options and
// results become enums with an explicit canonical ABI repr, so their layouts
// always use a direct tag whose value is the case index.
func FromWIT(t wit.Type) (*Type, error) {
	c := &witConverter{seen: make(map[*wit.TypeDef]*Type)}
	return c.convert(t, nil)
}

// FromWITResolve converts every named type definition of a resolved WIT
// package set into a table.
func FromWITResolve(res *wit.Resolve) (*Table, error) {
	c := &witConverter{seen: make(map[*wit.TypeDef]*Type)}
	tbl := NewTable()
	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		if _, isResource := td.Kind.(*wit.Resource); isResource {
			continue
		}
		t, err := c.convert(td, nil)
		if err != nil {
			return nil, err
		}
		if _, err := tbl.Lookup(t.Name); err == nil {
			continue
		}
		if err := tbl.Add(t); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

type witConverter struct {
	seen map[*wit.TypeDef]*Type
}

func (c *witConverter) convert(t wit.Type, path []string) (*Type, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return Bool, nil
	case wit.U8:
		return U8, nil
	case wit.S8:
		return I8, nil
	case wit.U16:
		return U16, nil
	case wit.S16:
		return I16, nil
	case wit.U32:
		return U32, nil
	case wit.S32:
		return I32, nil
	case wit.U64:
		return U64, nil
	case wit.S64:
		return I64, nil
	// floats only need a carrier of the right width here
	case wit.F32:
		return U32, nil
	case wit.F64:
		return U64, nil
	case wit.Char:
		return Char, nil
	case wit.String:
		return pointerLen("string"), nil
	case *wit.TypeDef:
		return c.convertTypeDef(typ, path)
	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
}

func (c *witConverter) convertTypeDef(td *wit.TypeDef, path []string) (*Type, error) {
	if t, ok := c.seen[td]; ok {
		return t, nil
	}

	name := ""
	if td.Name != nil {
		name = *td.Name
	}
	if name != "" {
		path = append(append([]string{}, path...), name)
	}

	out := &Type{Name: name}
	c.seen[td] = out

	switch kind := td.Kind.(type) {
	case *wit.Record:
		out.Kind = KindStruct
		for _, f := range kind.Fields {
			ft, err := c.convert(f.Type, append(path, f.Name))
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, ft)
		}

	case *wit.Tuple:
		out.Kind = KindStruct
		for i, elem := range kind.Types {
			et, err := c.convert(elem, append(path, fmt.Sprintf("%d", i)))
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, et)
		}

	case *wit.List:
		*out = *pointerLen(name)

	case *wit.Flags:
		out.Kind = flagsKind(len(kind.Flags))
		if out.Kind == KindStruct {
			words := (len(kind.Flags) + 31) / 32
			for i := 0; i < words; i++ {
				out.Fields = append(out.Fields, U32)
			}
		}

	case *wit.Enum:
		out.Kind = KindEnum
		out.Repr = DiscriminantKind(len(kind.Cases))
		for _, cs := range kind.Cases {
			out.Variants = append(out.Variants, V(cs.Name))
		}

	case *wit.Variant:
		out.Kind = KindEnum
		out.Repr = DiscriminantKind(len(kind.Cases))
		for _, cs := range kind.Cases {
			v := V(cs.Name)
			if cs.Type != nil {
				ct, err := c.convert(cs.Type, append(path, cs.Name))
				if err != nil {
					return nil, err
				}
				v.Fields = []*Type{ct}
			}
			out.Variants = append(out.Variants, v)
		}

	case *wit.Option:
		inner, err := c.convert(kind.Type, append(path, "some"))
		if err != nil {
			return nil, err
		}
		out.Kind = KindEnum
		out.Repr = KindU8
		out.Variants = []Variant{V("none"), V("some", inner)}
		if out.Name == "" {
			out.Name = "option<" + inner.String() + ">"
		}

	case *wit.Result:
		out.Kind = KindEnum
		out.Repr = KindU8
		ok, errCase := V("ok"), V("err")
		if kind.OK != nil {
			t, err := c.convert(kind.OK, append(path, "ok"))
			if err != nil {
				return nil, err
			}
			ok.Fields = []*Type{t}
		}
		if kind.Err != nil {
			t, err := c.convert(kind.Err, append(path, "err"))
			if err != nil {
				return nil, err
			}
			errCase.Fields = []*Type{t}
		}
		out.Variants = []Variant{ok, errCase}

	case *wit.Own, *wit.Borrow:
		// handles are i32 indices into a resource table
		out.Kind = KindU32

	case wit.Type:
		inner, err := c.convert(kind, path)
		if err != nil {
			return nil, err
		}
		if name == "" {
			c.seen[td] = inner
			return inner, nil
		}
		*out = *inner
		out.Name = name

	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported TypeDef kind: %T", kind).
			Build()
	}
	return out, nil
}

func pointerLen(name string) *Type {
	return &Type{Name: name, Kind: KindStruct, Fields: []*Type{U32, U32}}
}

func flagsKind(n int) Kind {
	switch {
	case n == 0:
		return KindUnit
	case n <= 8:
		return KindU8
	case n <= 16:
		return KindU16
	case n <= 32:
		return KindU32
	case n <= 64:
		return KindU64
	}
	return KindStruct
}
