package mmio

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Region is a contiguous RAM-backed window of the address space.
type Region struct {
	Base uintptr
	Data []byte
}

// contains reports whether [addr, addr+n) lies inside the region.
func (r *Region) contains(addr uintptr, n int) bool {
	return addr >= r.Base && addr+uintptr(n) <= r.Base+uintptr(len(r.Data))
}

// Memory is a Bus backed by ordinary Go memory. It maps one or more
// non-overlapping regions; accesses outside every region panic, as a bus
// fault would on hardware.
type Memory struct {
	regions []*Region
}

// Verify that Memory implements Bus.
var _ Bus = (*Memory)(nil)

// NewMemory creates an empty address space.
func NewMemory() *Memory {
	return &Memory{}
}

// Map adds a zeroed region of size bytes at base.
func (m *Memory) Map(base uintptr, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmio: invalid region size %d", size)
	}
	r := &Region{Base: base, Data: make([]byte, size)}
	for _, other := range m.regions {
		if r.Base < other.Base+uintptr(len(other.Data)) && other.Base < r.Base+uintptr(size) {
			return nil, fmt.Errorf("mmio: region [%#x, %#x) overlaps [%#x, %#x)",
				r.Base, r.Base+uintptr(size), other.Base, other.Base+uintptr(len(other.Data)))
		}
	}
	m.regions = append(m.regions, r)
	sort.Slice(m.regions, func(i, j int) bool { return m.regions[i].Base < m.regions[j].Base })
	return r, nil
}

func (m *Memory) slice(addr uintptr, n int) []byte {
	for _, r := range m.regions {
		if r.contains(addr, n) {
			off := addr - r.Base
			return r.Data[off : off+uintptr(n)]
		}
	}
	panic(fmt.Sprintf("mmio: bus fault at %#x (%d bytes)", addr, n))
}

// Read8 loads one byte.
func (m *Memory) Read8(addr uintptr) uint8 { return m.slice(addr, 1)[0] }

// Write8 stores one byte.
func (m *Memory) Write8(addr uintptr, v uint8) { m.slice(addr, 1)[0] = v }

// Read16 loads a little-endian half-word.
func (m *Memory) Read16(addr uintptr) uint16 {
	return binary.LittleEndian.Uint16(m.slice(addr, 2))
}

// Write16 stores a little-endian half-word.
func (m *Memory) Write16(addr uintptr, v uint16) {
	binary.LittleEndian.PutUint16(m.slice(addr, 2), v)
}

// Read32 loads a little-endian word.
func (m *Memory) Read32(addr uintptr) uint32 {
	return binary.LittleEndian.Uint32(m.slice(addr, 4))
}

// Write32 stores a little-endian word.
func (m *Memory) Write32(addr uintptr, v uint32) {
	binary.LittleEndian.PutUint32(m.slice(addr, 4), v)
}
