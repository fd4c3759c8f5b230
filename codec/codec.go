package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/tagcodec"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/scalar"
	"github.com/wippyai/tagcodec/types"
)

// Oracle supplies layouts. *layout.Calculator implements it.
type Oracle interface {
	LayoutOf(t *types.Type) (*layout.Layout, error)
	DiscriminantType(t *types.Type) scalar.Integer
	Discriminants(t *types.Type) ([]layout.Discriminant, error)
	Uninhabited(t *types.Type, v layout.VariantIdx) (bool, error)
}

// Accessor reads and writes typed memory. *memory.Machine implements it.
type Accessor interface {
	ProjectField(p tagcodec.Place, i int) (tagcodec.Place, error)
	ReadScalar(p tagcodec.Place) (scalar.Value, error)
	WriteScalar(p tagcodec.Place, v scalar.Int) error
	MayBeNull(ptr scalar.Pointer) (bool, error)
}

// Arith is wrapping integer arithmetic at the operands' width.
type Arith interface {
	Add(a, b scalar.Int) (scalar.Int, error)
	Sub(a, b scalar.Int) (scalar.Int, error)
}

// Options configures a Codec. Nil fields take defaults.
type Options struct {
	Arith    Arith
	Reporter Reporter
	Logger   *zap.Logger
}

// DefaultOptions returns the default codec configuration.
func DefaultOptions() Options {
	return Options{
		Arith: scalar.Wrapping{},
	}
}

// Codec encodes and decodes the active variant of values in typed memory.
// It keeps no state between calls.
type Codec struct {
	oracle Oracle
	mem    Accessor
	arith  Arith
	report Reporter
	log    *zap.Logger
}

// New creates a Codec over the given layout oracle and memory.
func New(oracle Oracle, mem Accessor, opts Options) *Codec {
	c := &Codec{
		oracle: oracle,
		mem:    mem,
		arith:  opts.Arith,
		report: opts.Reporter,
		log:    opts.Logger,
	}
	if c.arith == nil {
		c.arith = scalar.Wrapping{}
	}
	if c.log == nil {
		c.log = Logger()
	}
	if c.report == nil {
		c.report = LogReporter{Logger: c.log}
	}
	return c
}

// NewWithDefaults creates a Codec with default options.
func NewWithDefaults(oracle Oracle, mem Accessor) *Codec {
	return New(oracle, mem, DefaultOptions())
}

// Tag is a tag value to store in field Field of the tagged layout.
type Tag struct {
	Value scalar.Int
	Field int
}

func (c *Codec) fail(op string, t *types.Type, err error) error {
	c.report.Report(op, t, err)
	return err
}
