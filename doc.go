// Package tagcodec encodes and decodes the active variant of tagged unions
// stored in typed memory.
//
// A variant has three representations that must be kept apart: its index in
// declaration order, its logical discriminant, and the tag bits actually
// stored. Layouts store the tag either directly or in the invalid bit
// patterns (the niche) of a field of another variant.
//
// # Architecture Overview
//
//	tagcodec/            Root package with Memory, Allocator and Place
//	├── codec/           Resolver, tag encoder, decoder and writer
//	├── layout/          Layout descriptors, targets and the layout calculator
//	├── memory/          Linear and wazero memories, allocator, typed accessor
//	├── scalar/          Sized integers, pointer-like values, wrapping arithmetic
//	├── types/           Type model, YAML tables and WIT conversion
//	├── errors/          Structured error taxonomy
//	└── cmd/tagcodec/    Command-line tool and interactive explorer
//
// # Quick Start
//
//	calc := layout.NewCalculator(layout.DefaultTarget())
//	m := memory.NewMachine(memory.NewLinear(1<<16), calc)
//	c := codec.NewWithDefaults(calc, m)
//
//	opt := types.NewEnum("Option<&T>", types.V("None"), types.V("Some", types.Ref))
//	p, _ := m.Allocate(opt)
//	if err := c.WriteDiscriminant(0, p); err != nil {
//	    log.Fatal(err)
//	}
//	v, err := c.ReadDiscriminant(p) // 0
//
// # Errors
//
// Failures are *errors.Error values. Class ub marks undefined behaviour in
// the evaluated program; class bug marks an inconsistent layout and should
// abort the current evaluation.
//
// # Thread Safety
//
// A Codec holds only its collaborators. The layout Calculator is safe for
// concurrent use; a memory Machine is not.
package tagcodec
