package memory

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/tagcodec/errors"
)

// Wazero wraps a wazero memory to implement tagcodec.Memory.
type Wazero struct {
	mem api.Memory
}

// NewWazero adapts an instantiated module's memory.
func NewWazero(mem api.Memory) *Wazero {
	return &Wazero{mem: mem}
}

func (m *Wazero) Size() uint32 {
	return m.mem.Size()
}

func (m *Wazero) oob(offset, length uint32) error {
	return errors.OutOfBounds(offset, length, uint64(m.mem.Size()))
}

func (m *Wazero) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, m.oob(offset, length)
	}
	return data, nil
}

func (m *Wazero) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return m.oob(offset, uint32(len(data)))
	}
	return nil
}

func (m *Wazero) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, m.oob(offset, 1)
	}
	return v, nil
}

func (m *Wazero) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, m.oob(offset, 2)
	}
	return v, nil
}

func (m *Wazero) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.oob(offset, 4)
	}
	return v, nil
}

func (m *Wazero) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.oob(offset, 8)
	}
	return v, nil
}

func (m *Wazero) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return m.oob(offset, 1)
	}
	return nil
}

func (m *Wazero) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return m.oob(offset, 2)
	}
	return nil
}

func (m *Wazero) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return m.oob(offset, 4)
	}
	return nil
}

func (m *Wazero) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return m.oob(offset, 8)
	}
	return nil
}

// WazeroLinear is a wazero runtime hosting a single memory-only module.
type WazeroLinear struct {
	*Wazero
	runtime wazero.Runtime
}

// NewWazeroLinear instantiates a module exporting one memory of the given
// number of 64 KiB pages.
func NewWazeroLinear(ctx context.Context, pages uint32) (*WazeroLinear, error) {
	rt := wazero.NewRuntime(ctx)
	mod, err := rt.Instantiate(ctx, memoryModule(pages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindInternal, err, "instantiate memory module")
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseMemory, "export", "memory")
	}
	Logger().Debug("wazero memory ready", zap.Uint32("pages", pages), zap.Uint32("bytes", mem.Size()))
	return &WazeroLinear{Wazero: NewWazero(mem), runtime: rt}, nil
}

// Close releases the runtime and its memory.
func (w *WazeroLinear) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

// memoryModule encodes (module (memory (export "memory") pages)).
func memoryModule(pages uint32) []byte {
	limits := append([]byte{0x00}, uleb128(pages)...)
	memSec := append([]byte{0x01}, limits...)

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, 0x05)
	out = append(out, uleb128(uint32(len(memSec)))...)
	out = append(out, memSec...)

	export := []byte{0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00}
	out = append(out, 0x07)
	out = append(out, uleb128(uint32(len(export)))...)
	return append(out, export...)
}

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
