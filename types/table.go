package types

import (
	"io"
	"math/big"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/tagcodec/errors"
)

// Table is a named collection of type declarations.
type Table struct {
	types  map[string]*Type
	Target string
	Order  []string
}

type tableDecl struct {
	Target string     `yaml:"target"`
	Types  []typeDecl `yaml:"types"`
}

type typeDecl struct {
	Name     string        `yaml:"name"`
	Kind     string        `yaml:"kind"`
	Repr     string        `yaml:"repr,omitempty"`
	Fields   []string      `yaml:"fields,omitempty"`
	Variants []variantDecl `yaml:"variants,omitempty"`
}

type variantDecl struct {
	Name   string   `yaml:"name"`
	Discr  string   `yaml:"discr,omitempty"`
	Fields []string `yaml:"fields,omitempty"`
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{types: make(map[string]*Type)}
}

// LoadYAML reads a type table. Field types reference builtins by name
// (u8, bool, ref, never, ...) or other declared types, in any order.
func LoadYAML(r io.Reader) (*Table, error) {
	var decl tableDecl
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&decl); err != nil && err != io.EOF {
		return nil, errors.ParseFailed("type table", err)
	}

	tbl := NewTable()
	tbl.Target = decl.Target

	// Declare every name first so fields can reference later types.
	for _, td := range decl.Types {
		if td.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, "type declaration without a name")
		}
		if _, ok := ParseKind(td.Name); ok {
			return nil, errors.InvalidInput(errors.PhaseLoad, "type name "+td.Name+" shadows a builtin")
		}
		if _, dup := tbl.types[td.Name]; dup {
			return nil, errors.InvalidInput(errors.PhaseLoad, "duplicate type "+td.Name)
		}
		tbl.types[td.Name] = &Type{Name: td.Name}
		tbl.Order = append(tbl.Order, td.Name)
	}

	for _, td := range decl.Types {
		if err := tbl.define(td); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func (tbl *Table) define(td typeDecl) error {
	t := tbl.types[td.Name]
	path := []string{td.Name}

	switch td.Kind {
	case "struct":
		t.Kind = KindStruct
		fields, err := tbl.resolveAll(td.Fields, path)
		if err != nil {
			return err
		}
		t.Fields = fields
		if td.Repr != "" || len(td.Variants) > 0 {
			return errors.InvalidData(errors.PhaseLoad, path, "struct cannot declare repr or variants")
		}

	case "enum":
		t.Kind = KindEnum
		if td.Repr != "" {
			k, ok := ParseKind(td.Repr)
			if !ok || !k.IsInteger() {
				return errors.InvalidData(errors.PhaseLoad, path, "repr must be an integer kind, got "+td.Repr)
			}
			t.Repr = k
		}
		if len(td.Fields) > 0 {
			return errors.InvalidData(errors.PhaseLoad, path, "enum fields belong to variants")
		}
		for _, vd := range td.Variants {
			vpath := append(append([]string{}, path...), vd.Name)
			fields, err := tbl.resolveAll(vd.Fields, vpath)
			if err != nil {
				return err
			}
			v := Variant{Name: vd.Name, Fields: fields}
			if vd.Discr != "" {
				d, ok := new(big.Int).SetString(vd.Discr, 0)
				if !ok {
					return errors.InvalidData(errors.PhaseLoad, vpath, "invalid discriminant "+vd.Discr)
				}
				v.Discr = d
			}
			t.Variants = append(t.Variants, v)
		}

	default:
		return errors.InvalidData(errors.PhaseLoad, path, "kind must be struct or enum, got "+td.Kind)
	}
	return nil
}

func (tbl *Table) resolveAll(names []string, path []string) ([]*Type, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]*Type, 0, len(names))
	for _, n := range names {
		t, err := tbl.resolve(n)
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
				Path(path...).
				Detail("field type %q", n).
				Cause(err).
				Build()
		}
		out = append(out, t)
	}
	return out, nil
}

func (tbl *Table) resolve(name string) (*Type, error) {
	if k, ok := ParseKind(name); ok {
		if b := Builtin(k); b != nil {
			return b, nil
		}
	}
	return tbl.Lookup(name)
}

// Add registers a type under its name.
func (tbl *Table) Add(t *Type) error {
	if _, dup := tbl.types[t.Name]; dup {
		return errors.InvalidInput(errors.PhaseLoad, "duplicate type "+t.Name)
	}
	tbl.types[t.Name] = t
	tbl.Order = append(tbl.Order, t.Name)
	return nil
}

// Lookup returns the declared type called name.
func (tbl *Table) Lookup(name string) (*Type, error) {
	t, ok := tbl.types[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "type", name)
	}
	return t, nil
}

// Types returns the declared types in declaration order.
func (tbl *Table) Types() []*Type {
	out := make([]*Type, 0, len(tbl.Order))
	for _, n := range tbl.Order {
		out = append(out, tbl.types[n])
	}
	return out
}
