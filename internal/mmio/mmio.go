// Package mmio provides volatile register and SRAM access for memory-mapped
// peripherals. All multi-byte accesses are little-endian.
package mmio

// Bus is the narrow contract the DLA driver needs from the platform: volatile
// loads and stores of 8, 16 and 32 bits at physical addresses.
type Bus interface {
	Read8(addr uintptr) uint8
	Write8(addr uintptr, v uint8)
	Read16(addr uintptr) uint16
	Write16(addr uintptr, v uint16)
	Read32(addr uintptr) uint32
	Write32(addr uintptr, v uint32)
}

// Mask sets the given bits of a 32-bit register (read-modify-write).
func Mask(b Bus, addr uintptr, mask uint32) {
	b.Write32(addr, b.Read32(addr)|mask)
}

// Unmask clears the given bits of a 32-bit register.
func Unmask(b Bus, addr uintptr, mask uint32) {
	b.Write32(addr, b.Read32(addr)&^mask)
}

// Toggle flips the given bits of a 32-bit register.
func Toggle(b Bus, addr uintptr, bits uint32) {
	b.Write32(addr, b.Read32(addr)^bits)
}

// WriteField replaces a bit-field of a 32-bit register. The value is masked
// to the field width.
func WriteField(b Bus, addr uintptr, shift, width uint, v uint32) {
	mask := uint32(1)<<width - 1
	r := b.Read32(addr) &^ (mask << shift)
	b.Write32(addr, r|(v&mask)<<shift)
}

// ReadField extracts a bit-field of a 32-bit register.
func ReadField(b Bus, addr uintptr, shift, width uint) uint32 {
	mask := uint32(1)<<width - 1
	return (b.Read32(addr) >> shift) & mask
}
