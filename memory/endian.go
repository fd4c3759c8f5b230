package memory

import (
	"github.com/wippyai/tagcodec"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/scalar"
)

// loadUint reads a size-byte unsigned value at addr. Little-endian scalars
// of a machine word size or less use the memory's sized accessors.
func loadUint(mem tagcodec.Memory, addr, size uint32, order layout.Endian) (scalar.Uint128, error) {
	if order == layout.LittleEndian {
		if v, ok, err := loadWord(mem, addr, size); ok || err != nil {
			return scalar.Uint128From64(v), err
		}
	}
	raw, err := mem.Read(addr, size)
	if err != nil {
		return scalar.Uint128{}, err
	}
	return decodeUint(raw, order), nil
}

func loadWord(mem tagcodec.Memory, addr, size uint32) (uint64, bool, error) {
	switch size {
	case 1:
		v, err := mem.ReadU8(addr)
		return uint64(v), true, err
	case 2:
		v, err := mem.ReadU16(addr)
		return uint64(v), true, err
	case 4:
		v, err := mem.ReadU32(addr)
		return uint64(v), true, err
	case 8:
		v, err := mem.ReadU64(addr)
		return v, true, err
	}
	return 0, false, nil
}

// storeUint writes the low size bytes of v at addr.
func storeUint(mem tagcodec.Memory, addr, size uint32, v scalar.Uint128, order layout.Endian) error {
	if order == layout.LittleEndian {
		switch size {
		case 1:
			return mem.WriteU8(addr, uint8(v.Lo))
		case 2:
			return mem.WriteU16(addr, uint16(v.Lo))
		case 4:
			return mem.WriteU32(addr, uint32(v.Lo))
		case 8:
			return mem.WriteU64(addr, v.Lo)
		}
	}
	return mem.Write(addr, encodeUint(v, size, order))
}

// decodeUint assembles up to 16 bytes into an unsigned value.
func decodeUint(b []byte, order layout.Endian) scalar.Uint128 {
	var v scalar.Uint128
	n := len(b)
	for i := 0; i < n; i++ {
		idx := i
		if order == layout.BigEndian {
			idx = n - 1 - i
		}
		if i < 8 {
			v.Lo |= uint64(b[idx]) << (8 * i)
		} else {
			v.Hi |= uint64(b[idx]) << (8 * (i - 8))
		}
	}
	return v
}

// encodeUint lays out the low size bytes of v.
func encodeUint(v scalar.Uint128, size uint32, order layout.Endian) []byte {
	out := make([]byte, size)
	for i := uint32(0); i < size; i++ {
		var b byte
		if i < 8 {
			b = byte(v.Lo >> (8 * i))
		} else {
			b = byte(v.Hi >> (8 * (i - 8)))
		}
		idx := i
		if order == layout.BigEndian {
			idx = size - 1 - i
		}
		out[idx] = b
	}
	return out
}
