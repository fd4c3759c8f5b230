// Package errors provides structured error types for the tagcodec module.
//
// Errors are categorized by Phase (where the error occurred), Kind (error
// category) and Class. The class separates undefined behavior exhibited by
// an evaluated program (ClassUB) from internal inconsistencies in upstream
// layout computation (ClassBug), which must abort the interpretation unit.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMemory, errors.KindScalarSizeMismatch).
//		Type("u16").
//		Detail("scalar of %d bytes written to %d byte place", 4, 2).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidTag("Option<&u8>", bits)
//	err := errors.UninhabitedVariantRead("Never", 0)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
