package types

type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindChar
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindUsize
	KindIsize
	KindRef
	KindRawPtr
	KindUnit
	KindNever
	KindStruct
	KindEnum
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindChar:    "char",
	KindU8:      "u8",
	KindI8:      "i8",
	KindU16:     "u16",
	KindI16:     "i16",
	KindU32:     "u32",
	KindI32:     "i32",
	KindU64:     "u64",
	KindI64:     "i64",
	KindU128:    "u128",
	KindI128:    "i128",
	KindUsize:   "usize",
	KindIsize:   "isize",
	KindRef:     "ref",
	KindRawPtr:  "rawptr",
	KindUnit:    "unit",
	KindNever:   "never",
	KindStruct:  "struct",
	KindEnum:    "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a builtin name to its kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// IsInteger reports whether k is a plain integer kind.
func (k Kind) IsInteger() bool {
	return k >= KindU8 && k <= KindIsize
}

func (k Kind) IsSigned() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128, KindIsize:
		return true
	}
	return false
}

func (k Kind) IsPointer() bool {
	return k == KindRef || k == KindRawPtr
}

// IsScalar reports whether a value of kind k is read and written as a single
// scalar.
func (k Kind) IsScalar() bool {
	return k == KindBool || k == KindChar || k.IsInteger() || k.IsPointer()
}

// FixedSize returns the byte width of fixed-size integer kinds. Pointer-sized
// kinds depend on the target and report false.
func (k Kind) FixedSize() (uint32, bool) {
	switch k {
	case KindBool, KindU8, KindI8:
		return 1, true
	case KindU16, KindI16:
		return 2, true
	case KindChar, KindU32, KindI32:
		return 4, true
	case KindU64, KindI64:
		return 8, true
	case KindU128, KindI128:
		return 16, true
	case KindUnit, KindNever:
		return 0, true
	}
	return 0, false
}
