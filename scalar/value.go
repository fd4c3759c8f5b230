package scalar

import "fmt"

// AllocID identifies an allocation a pointer-like value is derived from.
type AllocID uint32

// Pointer is a pointer-like value: an allocation plus an offset, with no
// concrete address. It cannot be observed as a plain integer.
type Pointer struct {
	Alloc  AllocID
	Offset uint64
}

func (p Pointer) String() string {
	return fmt.Sprintf("alloc%d+%#x", p.Alloc, p.Offset)
}

// Value is the result of reading a scalar from memory.
type Value struct {
	i     Int
	ptr   Pointer
	isPtr bool
}

// IntValue wraps a plain integer.
func IntValue(i Int) Value {
	return Value{i: i}
}

// PointerValue wraps a pointer-like value read at layout ty.
func PointerValue(p Pointer, ty Integer) Value {
	return Value{ptr: p, isPtr: true, i: Int{ty: ty}}
}

// Type returns the integer layout the value was read at.
func (v Value) Type() Integer {
	return v.i.ty
}

// TryInt returns the plain integer, or false for pointer-like values.
func (v Value) TryInt() (Int, bool) {
	if v.isPtr {
		return Int{}, false
	}
	return v.i, true
}

// Pointer returns the pointer-like value, or false for plain integers.
func (v Value) Pointer() (Pointer, bool) {
	return v.ptr, v.isPtr
}

// IsPointer reports whether v carries provenance.
func (v Value) IsPointer() bool {
	return v.isPtr
}

func (v Value) String() string {
	if v.isPtr {
		return "pointer to " + v.ptr.String()
	}
	return v.i.Hex()
}
