// Package memory provides linear memories and typed access to them.
//
// Linear is a plain byte slice; Wazero adapts the memory of a wazero module
// instance, and NewWazeroLinear creates a standalone one. Machine layers
// typed places on top: it allocates values, projects fields using layouts
// from a layout.Calculator, and reads and writes scalars in the target's
// byte order.
//
// Pointers written with WritePointer keep their provenance. Reading them
// back yields a pointer-like scalar.Value rather than an integer, which is
// how abstract evaluation sees addresses it cannot observe.
package memory
