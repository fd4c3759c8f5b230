package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLayout Phase = "layout" // layout computation
	PhaseEncode Phase = "encode" // variant to tag
	PhaseDecode Phase = "decode" // memory to variant
	PhaseWrite  Phase = "write"  // discriminant write
	PhaseMemory Phase = "memory" // scalar access
	PhaseArith  Phase = "arith"  // wrapping arithmetic
	PhaseLoad   Phase = "load"   // type table loading
	PhaseParse  Phase = "parse"  // YAML/WIT/hex parsing
)

// Class separates evaluation errors a program can trigger from bugs in
// upstream layout computation.
type Class string

const (
	// ClassUB is undefined behavior exhibited by the evaluated program.
	// Recoverable; reported to the user by the surrounding evaluator.
	ClassUB Class = "ub"
	// ClassBug is an internal inconsistency. It aborts the current
	// interpretation unit and is never a user diagnostic.
	ClassBug Class = "bug"
	// ClassHost covers collaborator failures such as out of bounds access.
	ClassHost Class = "host"
)

// Kind categorizes the error
type Kind string

const (
	KindUninhabitedVariantWritten   Kind = "uninhabited_variant_written"
	KindUninhabitedVariantRead      Kind = "uninhabited_variant_read"
	KindInvalidTag                  Kind = "invalid_tag"
	KindInvalidNichedVariantWritten Kind = "invalid_niched_variant_written"

	KindTagLayoutMismatch  Kind = "tag_layout_mismatch"
	KindVariantOverflow    Kind = "variant_overflow"
	KindUndeclaredVariant  Kind = "undeclared_variant"
	KindInternal           Kind = "internal"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindInvalidData        Kind = "invalid_data"
	KindUnsupported        Kind = "unsupported"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindScalarSizeMismatch Kind = "scalar_size_mismatch"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Class  Class
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	if e.Class == ClassBug {
		b.WriteString("internal error: ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder. The class defaults to ClassHost.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
			Class: ClassHost,
		},
	}
}

// Class sets the error class
func (b *Builder) Class(c Class) *Builder {
	b.err.Class = c
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the name of the type involved
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Undefined behavior constructors

// UninhabitedVariantWritten reports a write of a variant that has no encoding.
func UninhabitedVariantWritten(typeName string, variant uint32) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindUninhabitedVariantWritten,
		Class:  ClassUB,
		Type:   typeName,
		Detail: fmt.Sprintf("writing discriminant of uninhabited variant %d", variant),
		Value:  variant,
	}
}

// UninhabitedVariantRead reports a read that resolved to an uninhabited variant.
func UninhabitedVariantRead(typeName string, variant uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUninhabitedVariantRead,
		Class:  ClassUB,
		Type:   typeName,
		Detail: fmt.Sprintf("read discriminant of uninhabited variant %d", variant),
		Value:  variant,
	}
}

// InvalidTag reports a tag that encodes no variant. value is the raw tag
// bits or a placeholder for a pointer-like value.
func InvalidTag(typeName string, value fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidTag,
		Class:  ClassUB,
		Type:   typeName,
		Detail: fmt.Sprintf("enum value has invalid tag: %s", value),
		Value:  value,
	}
}

// InvalidNichedVariantWritten reports an implicit variant write whose memory
// does not actually encode that variant.
func InvalidNichedVariantWritten(typeName string) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindInvalidNichedVariantWritten,
		Class:  ClassUB,
		Type:   typeName,
		Detail: "trying to set discriminant to a niched variant, but the value does not match",
	}
}

// Internal inconsistency constructors

// Bug creates an internal fatal error.
func Bug(phase Phase, kind Kind, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Class:  ClassBug,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// TagLayoutMismatch reports a tag field whose layout differs from the tag scalar.
func TagLayoutMismatch(typeName string, want, got fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTagLayoutMismatch,
		Class:  ClassBug,
		Type:   typeName,
		Detail: fmt.Sprintf("tag field has layout %s, expected %s", got, want),
	}
}

// UndeclaredVariant reports a variant index the type does not declare.
func UndeclaredVariant(phase Phase, typeName string, variant uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUndeclaredVariant,
		Class:  ClassBug,
		Type:   typeName,
		Detail: fmt.Sprintf("variant %d is not declared", variant),
		Value:  variant,
	}
}

// VariantOverflow reports overflow while computing a variant index.
func VariantOverflow(phase Phase, typeName string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindVariantOverflow,
		Class:  ClassBug,
		Type:   typeName,
		Detail: detail,
	}
}

// Host constructors

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(addr, size uint32, limit uint64) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindOutOfBounds,
		Class:  ClassHost,
		Detail: fmt.Sprintf("access of %d bytes at %#x out of bounds (memory size %d)", size, addr, limit),
		Value:  addr,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Class:  ClassHost,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Class:  ClassHost,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Class:  ClassHost,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Class:  ClassHost,
		Detail: detail,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Class:  ClassHost,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Class:  ClassHost,
		Detail: detail,
		Cause:  cause,
	}
}

// Classification helpers

// ClassOf returns the class of the first *Error in err's chain, or "" if
// there is none.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsUB reports whether err is an undefined-behavior condition.
func IsUB(err error) bool {
	return ClassOf(err) == ClassUB
}

// IsFatal reports whether err is an internal inconsistency that must abort
// the interpretation unit.
func IsFatal(err error) bool {
	return ClassOf(err) == ClassBug
}

// As is errors.As from the standard library, so callers importing this
// package under the name errors keep access to it.
func As(err error, target any) bool {
	return errors.As(err, target)
}
