package tagcodec

import "github.com/wippyai/tagcodec/types"

// Memory is byte-addressed linear memory. The sized accessors are always
// little endian; other byte orders go through Read and Write.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out regions of linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
}

// Place is a typed location in memory.
type Place struct {
	Type *types.Type
	Addr uint32
}
