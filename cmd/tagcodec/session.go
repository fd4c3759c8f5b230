package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/tagcodec/codec"
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/memory"
	"github.com/wippyai/tagcodec/types"
)

const (
	scratchSize = 64 << 10
	nameWidth   = 20
	labelWidth  = 28
)

// session holds a loaded type table and the layouts computed for it.
type session struct {
	tbl    *types.Table
	calc   *layout.Calculator
	log    *zap.Logger
	source string
}

func loadTable(typesFile, witFile string) (*types.Table, string, error) {
	switch {
	case typesFile != "" && witFile != "":
		return nil, "", fmt.Errorf("use either -types or -wit, not both")
	case typesFile != "":
		f, err := os.Open(typesFile)
		if err != nil {
			return nil, "", fmt.Errorf("open types: %w", err)
		}
		defer f.Close()
		tbl, err := types.LoadYAML(f)
		if err != nil {
			return nil, "", err
		}
		return tbl, typesFile, nil
	case witFile != "":
		f, err := os.Open(witFile)
		if err != nil {
			return nil, "", fmt.Errorf("open wit: %w", err)
		}
		defer f.Close()
		res, err := wit.DecodeJSON(f)
		if err != nil {
			return nil, "", fmt.Errorf("decode wit: %w", err)
		}
		tbl, err := types.FromWITResolve(res)
		if err != nil {
			return nil, "", err
		}
		tbl.Target = "wasm32-unknown-unknown"
		return tbl, witFile, nil
	}
	return nil, "", fmt.Errorf("no type source")
}

// newSession picks the target from triple, then the table, then the default.
func newSession(tbl *types.Table, triple, source string, log *zap.Logger) (*session, error) {
	if triple == "" {
		triple = tbl.Target
	}
	target := layout.DefaultTarget()
	if triple != "" {
		t, err := layout.LookupTarget(triple)
		if err != nil {
			return nil, err
		}
		target = t
	}
	return &session{
		tbl:    tbl,
		calc:   layout.NewCalculator(target),
		log:    log,
		source: source,
	}, nil
}

// scratch returns a fresh machine and a codec over it.
func (s *session) scratch() (*memory.Machine, *codec.Codec) {
	mach := memory.NewMachine(memory.NewLinear(scratchSize), s.calc)
	return mach, codec.New(s.calc, mach, codec.Options{Logger: s.log})
}

// variantOf resolves a variant by name or index. Non-enum types only have
// variant 0.
func variantOf(t *types.Type, name string) (layout.VariantIdx, error) {
	if i, ok := t.VariantIndex(name); ok {
		return layout.VariantIdx(i), nil
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return 0, errors.NotFound(errors.PhaseLoad, "variant", name)
	}
	return layout.VariantIdx(n), nil
}

func variantName(t *types.Type, v layout.VariantIdx) string {
	if int(v) < len(t.Variants) {
		return t.Variants[v].Name
	}
	return strconv.FormatUint(uint64(v), 10)
}

func (s *session) list(w io.Writer) error {
	fmt.Fprintf(w, "Target: %s\n\n", s.calc.Target().Triple)
	for _, t := range s.tbl.Types() {
		l, err := s.calc.LayoutOf(t)
		if err != nil {
			fmt.Fprintf(w, "  %s %v\n", runewidth.FillRight(t.Name, nameWidth), err)
			continue
		}
		fmt.Fprintf(w, "  %s size %-3d align %-2d %s\n",
			runewidth.FillRight(t.Name, nameWidth), l.Size, l.Align, l.Describe())
	}
	return nil
}

// encode writes variant name of type typeName into a zeroed allocation and
// prints the stored tag bytes.
func (s *session) encode(w io.Writer, typeName, name string) error {
	t, err := s.tbl.Lookup(typeName)
	if err != nil {
		return err
	}
	v, err := variantOf(t, name)
	if err != nil {
		return err
	}
	mach, c := s.scratch()

	d, err := c.DiscriminantForVariant(t, v)
	if err != nil {
		return err
	}
	tag, ok, err := c.TagForVariant(t, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s::%s discriminant %s\n", t.Name, variantName(t, v), d)
	if !ok {
		fmt.Fprintln(w, "tag: implicit")
		return nil
	}

	p, err := mach.Allocate(t)
	if err != nil {
		return err
	}
	if err := c.WriteDiscriminant(v, p); err != nil {
		return err
	}
	fp, err := mach.ProjectField(p, tag.Field)
	if err != nil {
		return err
	}
	raw, err := mach.Bytes(fp)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "tag: %s (field %d) bytes %s\n", tag.Value, tag.Field, hex.EncodeToString(raw))
	return nil
}

// decode stores the hex-encoded bytes of a value and reads its variant.
func (s *session) decode(w io.Writer, typeName, data string) error {
	t, err := s.tbl.Lookup(typeName)
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ReplaceAll(data, " ", ""), "0x"))
	if err != nil {
		return errors.ParseFailed("hex value", err)
	}
	mach, c := s.scratch()
	p, err := mach.Allocate(t)
	if err != nil {
		return err
	}
	if err := mach.Store(p, raw); err != nil {
		return err
	}
	v, err := c.ReadDiscriminant(p)
	if err != nil {
		return err
	}
	d, err := c.DiscriminantForVariant(t, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s::%s (variant %d, discriminant %s)\n", t.Name, variantName(t, v), v, d)
	return nil
}

type roundTripResult struct {
	typ      *types.Type
	variant  layout.VariantIdx
	skipped  string
	mismatch error
}

// roundTrip writes then reads every inhabited variant of each named type, or
// of every type when names is empty.
func (s *session) roundTrip(names []string) ([]roundTripResult, error) {
	targets := s.tbl.Types()
	if len(names) > 0 {
		targets = targets[:0:0]
		for _, n := range names {
			t, err := s.tbl.Lookup(n)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
	}

	var out []roundTripResult
	for _, t := range targets {
		n := len(t.Variants)
		if !t.IsEnum() {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, s.roundTripOne(t, layout.VariantIdx(i)))
		}
	}
	return out, nil
}

func (s *session) roundTripOne(t *types.Type, v layout.VariantIdx) roundTripResult {
	r := roundTripResult{typ: t, variant: v}
	dead, err := s.calc.Uninhabited(t, v)
	if err != nil {
		r.mismatch = err
		return r
	}
	if dead {
		r.skipped = "uninhabited"
		return r
	}

	mach, c := s.scratch()
	p, err := mach.Allocate(t)
	if err != nil {
		r.mismatch = err
		return r
	}
	if err := c.WriteDiscriminant(v, p); err != nil {
		if errors.KindOf(err) == errors.KindInvalidNichedVariantWritten {
			r.skipped = "needs payload"
			return r
		}
		r.mismatch = err
		return r
	}
	got, err := c.ReadDiscriminant(p)
	switch {
	case err != nil:
		r.mismatch = err
	case got != v:
		r.mismatch = fmt.Errorf("read back variant %d", got)
	}
	return r
}

func printRoundTrip(w io.Writer, results []roundTripResult) int {
	failed := 0
	for _, r := range results {
		label := r.typ.Name + "::" + variantName(r.typ, r.variant)
		switch {
		case r.mismatch != nil:
			failed++
			fmt.Fprintf(w, "  FAIL %s %v\n", runewidth.FillRight(label, labelWidth), r.mismatch)
		case r.skipped != "":
			fmt.Fprintf(w, "  skip %s %s\n", runewidth.FillRight(label, labelWidth), r.skipped)
		default:
			fmt.Fprintf(w, "  ok   %s\n", label)
		}
	}
	return failed
}

// describeFailure renders a codec failure with its classification.
func describeFailure(err error) string {
	switch errors.ClassOf(err) {
	case errors.ClassUB:
		return "undefined behavior: " + err.Error()
	case errors.ClassBug:
		return "layout inconsistency: " + err.Error()
	}
	return err.Error()
}

