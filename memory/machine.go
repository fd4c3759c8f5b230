package memory

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/tagcodec"
	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/scalar"
	"github.com/wippyai/tagcodec/types"
)

type allocation struct {
	base uint32
	size uint32
}

type provenance struct {
	ptr  scalar.Pointer
	size uint32
}

// Machine is typed access to linear memory. It tracks allocations and the
// provenance of pointers stored in memory, so a stored pointer reads back
// as a pointer-like value instead of plain bits. Bytes left over from a
// partially overwritten pointer stay poisoned until they are written again.
// Not safe for concurrent use.
type Machine struct {
	mem    tagcodec.Memory
	alloc  tagcodec.Allocator
	calc   *layout.Calculator
	prov   map[uint32]provenance
	poison map[uint32]struct{}
	allocs []allocation
	order  layout.Endian
}

// NewMachine uses a bump allocator over the whole memory.
func NewMachine(mem tagcodec.Memory, calc *layout.Calculator) *Machine {
	limit := uint32(math.MaxUint32)
	if s, ok := mem.(tagcodec.MemorySizer); ok {
		limit = s.Size()
	}
	return NewMachineWithAllocator(mem, NewBump(0, limit), calc)
}

func NewMachineWithAllocator(mem tagcodec.Memory, alloc tagcodec.Allocator, calc *layout.Calculator) *Machine {
	return &Machine{
		mem:    mem,
		alloc:  alloc,
		calc:   calc,
		prov:   make(map[uint32]provenance),
		poison: make(map[uint32]struct{}),
		order:  calc.Target().Endian,
	}
}

// Allocate reserves zeroed memory for a value of type t.
func (m *Machine) Allocate(t *types.Type) (tagcodec.Place, error) {
	l, err := m.calc.LayoutOf(t)
	if err != nil {
		return tagcodec.Place{}, err
	}
	addr, err := m.alloc.Alloc(l.Size, l.Align)
	if err != nil {
		return tagcodec.Place{}, err
	}
	if l.Size > 0 {
		if err := m.mem.Write(addr, make([]byte, l.Size)); err != nil {
			return tagcodec.Place{}, err
		}
	}
	m.clearProvenance(addr, l.Size)
	m.allocs = append(m.allocs, allocation{base: addr, size: l.Size})

	Logger().Debug("allocated",
		zap.Stringer("type", t),
		zap.Uint32("addr", addr),
		zap.Uint32("size", l.Size),
		zap.Int("alloc", len(m.allocs)))
	return tagcodec.Place{Type: t, Addr: addr}, nil
}

// ProjectField returns field i of p's layout. For enums the fields are
// those of the tagged layout, i.e. the tag.
func (m *Machine) ProjectField(p tagcodec.Place, i int) (tagcodec.Place, error) {
	l, err := m.calc.LayoutOf(p.Type)
	if err != nil {
		return tagcodec.Place{}, err
	}
	return project(p, l, i)
}

// ProjectVariantField returns field i of variant v of an enum place.
func (m *Machine) ProjectVariantField(p tagcodec.Place, v layout.VariantIdx, i int) (tagcodec.Place, error) {
	l, err := m.calc.LayoutOf(p.Type)
	if err != nil {
		return tagcodec.Place{}, err
	}
	vl := l.ForVariant(v)
	if vl == nil {
		return tagcodec.Place{}, errors.New(errors.PhaseMemory, errors.KindNotFound).
			Type(p.Type.String()).
			Value(uint32(v)).
			Detail("no variant %d", v).
			Build()
	}
	return project(p, vl, i)
}

func project(p tagcodec.Place, l *layout.Layout, i int) (tagcodec.Place, error) {
	if i < 0 || i >= len(l.Fields) {
		return tagcodec.Place{}, errors.New(errors.PhaseMemory, errors.KindNotFound).
			Type(p.Type.String()).
			Value(i).
			Detail("no field %d", i).
			Build()
	}
	f := l.Fields[i]
	return tagcodec.Place{Type: f.Type, Addr: p.Addr + f.Offset}, nil
}

func (m *Machine) scalarOf(p tagcodec.Place) (*layout.Scalar, uint32, error) {
	l, err := m.calc.LayoutOf(p.Type)
	if err != nil {
		return nil, 0, err
	}
	if l.Scalar == nil {
		return nil, 0, errors.New(errors.PhaseMemory, errors.KindInvalidInput).
			Type(p.Type.String()).
			Detail("%s is not a scalar", p.Type).
			Build()
	}
	return l.Scalar, l.Size, nil
}

// ReadScalar reads the scalar at p. Bytes written by WritePointer read back
// as a pointer-like value. Reading part of a stored pointer, or any byte of
// a pointer that was partially overwritten, is invalid.
func (m *Machine) ReadScalar(p tagcodec.Place) (scalar.Value, error) {
	s, size, err := m.scalarOf(p)
	if err != nil {
		return scalar.Value{}, err
	}
	if m.poisoned(p.Addr, size) {
		return scalar.Value{}, errors.InvalidData(errors.PhaseMemory, []string{p.Type.String()},
			"read overlaps bytes of a partially overwritten pointer")
	}

	for addr, pv := range m.prov {
		if !overlaps(addr, pv.size, p.Addr, size) {
			continue
		}
		if addr == p.Addr && pv.size == size {
			return scalar.PointerValue(pv.ptr, s.Primitive.Int), nil
		}
		return scalar.Value{}, errors.InvalidData(errors.PhaseMemory, []string{p.Type.String()},
			"read overlaps part of a stored pointer")
	}

	bits, err := loadUint(m.mem, p.Addr, size, m.order)
	if err != nil {
		return scalar.Value{}, err
	}
	return scalar.IntValue(scalar.FromUint128(bits, s.Primitive.Int)), nil
}

// WriteScalar stores v at p. The width of v must equal the size of p's
// type; nothing is written otherwise.
func (m *Machine) WriteScalar(p tagcodec.Place, v scalar.Int) error {
	_, size, err := m.scalarOf(p)
	if err != nil {
		return err
	}
	if uint32(v.Type().Size) != size {
		return errors.New(errors.PhaseMemory, errors.KindScalarSizeMismatch).
			Class(errors.ClassBug).
			Type(p.Type.String()).
			Detail("writing %s into %d-byte %s", v.Type(), size, p.Type).
			Build()
	}
	if err := storeUint(m.mem, p.Addr, size, v.Bits(), m.order); err != nil {
		return err
	}
	m.clearProvenance(p.Addr, size)
	return nil
}

// WritePointer stores ptr at p, which must be pointer sized.
func (m *Machine) WritePointer(p tagcodec.Place, ptr scalar.Pointer) error {
	_, size, err := m.scalarOf(p)
	if err != nil {
		return err
	}
	if size != m.calc.Target().PtrSize {
		return errors.New(errors.PhaseMemory, errors.KindScalarSizeMismatch).
			Class(errors.ClassBug).
			Type(p.Type.String()).
			Detail("pointer written into %d-byte %s", size, p.Type).
			Build()
	}

	var addr uint64
	if a, ok := m.allocation(ptr.Alloc); ok {
		addr = uint64(a.base) + ptr.Offset
	}
	if err := storeUint(m.mem, p.Addr, size, scalar.Uint128From64(addr), m.order); err != nil {
		return err
	}
	m.clearProvenance(p.Addr, size)
	m.prov[p.Addr] = provenance{ptr: ptr, size: size}
	return nil
}

// PointerTo returns a pointer-like value for p, relative to the allocation
// containing it. One past the end of an allocation is allowed.
func (m *Machine) PointerTo(p tagcodec.Place) (scalar.Pointer, error) {
	for i := len(m.allocs) - 1; i >= 0; i-- {
		a := m.allocs[i]
		if a.base <= p.Addr && p.Addr <= a.base+a.size {
			return scalar.Pointer{Alloc: scalar.AllocID(i + 1), Offset: uint64(p.Addr - a.base)}, nil
		}
	}
	return scalar.Pointer{}, errors.New(errors.PhaseMemory, errors.KindNotFound).
		Type(p.Type.String()).
		Value(p.Addr).
		Detail("no allocation contains %#x", p.Addr).
		Build()
}

// MayBeNull reports whether ptr could compare equal to null. Pointers that
// stay within their allocation, one past the end included, never do.
func (m *Machine) MayBeNull(ptr scalar.Pointer) (bool, error) {
	a, ok := m.allocation(ptr.Alloc)
	if !ok {
		return true, nil
	}
	return ptr.Offset > uint64(a.size), nil
}

// Bytes returns a copy of the bytes of the value at p.
func (m *Machine) Bytes(p tagcodec.Place) ([]byte, error) {
	l, err := m.calc.LayoutOf(p.Type)
	if err != nil {
		return nil, err
	}
	raw, err := m.mem.Read(p.Addr, l.Size)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), raw...), nil
}

// Store overwrites the value at p with raw bytes. len(data) must equal the
// size of p's type.
func (m *Machine) Store(p tagcodec.Place, data []byte) error {
	l, err := m.calc.LayoutOf(p.Type)
	if err != nil {
		return err
	}
	if uint32(len(data)) != l.Size {
		return errors.New(errors.PhaseMemory, errors.KindInvalidInput).
			Type(p.Type.String()).
			Detail("storing %d bytes into a %d-byte %s", len(data), l.Size, p.Type).
			Build()
	}
	if err := m.mem.Write(p.Addr, data); err != nil {
		return err
	}
	m.clearProvenance(p.Addr, l.Size)
	return nil
}

func (m *Machine) allocation(id scalar.AllocID) (allocation, bool) {
	if id == 0 || int(id) > len(m.allocs) {
		return allocation{}, false
	}
	return m.allocs[id-1], true
}

// clearProvenance forgets pointers overlapping [addr, addr+size). Bytes of
// such a pointer outside the range become poisoned; bytes inside are clean.
func (m *Machine) clearProvenance(addr, size uint32) {
	end := uint64(addr) + uint64(size)
	for a, pv := range m.prov {
		if !overlaps(a, pv.size, addr, size) {
			continue
		}
		for b := uint64(a); b < uint64(a)+uint64(pv.size); b++ {
			if b < uint64(addr) || b >= end {
				m.poison[uint32(b)] = struct{}{}
			}
		}
		delete(m.prov, a)
	}
	if len(m.poison) == 0 {
		return
	}
	for b := uint64(addr); b < end; b++ {
		delete(m.poison, uint32(b))
	}
}

func (m *Machine) poisoned(addr, size uint32) bool {
	if len(m.poison) == 0 {
		return false
	}
	for b := uint64(addr); b < uint64(addr)+uint64(size); b++ {
		if _, ok := m.poison[uint32(b)]; ok {
			return true
		}
	}
	return false
}

func overlaps(a, as, b, bs uint32) bool {
	return uint64(a) < uint64(b)+uint64(bs) && uint64(b) < uint64(a)+uint64(as)
}
