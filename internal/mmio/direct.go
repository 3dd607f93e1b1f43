package mmio

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Direct is a Bus that dereferences physical addresses. It is only usable on
// bare-metal targets (or with the range mapped into the process), where the
// accelerator's registers and banks are visible at their physical addresses.
//
// Every access is a single 32-bit sync/atomic operation on the aligned word
// holding the address, so the compiler neither caches nor reorders it. Byte
// and half-word writes are a compare-and-swap on that word, which also
// rewrites its other lanes with the values just read. Lanes are little-endian
// and half-words must be 2-byte aligned.
type Direct struct{}

// Verify that Direct implements Bus.
var _ Bus = Direct{}

//nolint:gosec // unsafe pointer conversion is the whole point of this type
func ptr(addr uintptr) unsafe.Pointer { return unsafe.Pointer(addr) } //nolint:govet

// word returns the aligned word containing addr and the bit offset of addr
// inside it.
func word(addr uintptr) (*uint32, uint) {
	return (*uint32)(ptr(addr &^ 3)), uint(addr&3) * 8
}

func updateLane(addr uintptr, mask, v uint32) {
	w, shift := word(addr)
	for {
		old := atomic.LoadUint32(w)
		next := old&^(mask<<shift) | (v&mask)<<shift
		if atomic.CompareAndSwapUint32(w, old, next) {
			return
		}
	}
}

func checkHalf(addr uintptr) {
	if addr&1 != 0 {
		panic(fmt.Sprintf("mmio: unaligned half-word access at %#x", addr))
	}
}

// Read8 loads one byte.
func (Direct) Read8(addr uintptr) uint8 {
	w, shift := word(addr)
	return uint8(atomic.LoadUint32(w) >> shift)
}

// Write8 stores one byte.
func (Direct) Write8(addr uintptr, v uint8) {
	updateLane(addr, 0xFF, uint32(v))
}

// Read16 loads a half-word.
func (Direct) Read16(addr uintptr) uint16 {
	checkHalf(addr)
	w, shift := word(addr)
	return uint16(atomic.LoadUint32(w) >> shift)
}

// Write16 stores a half-word.
func (Direct) Write16(addr uintptr, v uint16) {
	checkHalf(addr)
	updateLane(addr, 0xFFFF, uint32(v))
}

// Read32 loads a word.
func (Direct) Read32(addr uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(ptr(addr)))
}

// Write32 stores a word.
func (Direct) Write32(addr uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(ptr(addr)), v)
}
