package dla

import "math"

// Default Headsail memory map for the DLA block.
const (
	DefaultRegisterBase uintptr = 0xFF70_0000
	DefaultMemoryBase   uintptr = 0xFF71_0000
	DefaultBankSize             = 0x8000 // 32 KiB per SRAM bank
	DefaultBankCount            = 16
)

// MemoryConfig describes where the accelerator's registers and SRAM banks
// live and how the SRAM is partitioned.
type MemoryConfig struct {
	RegisterBase uintptr // Base of the control register window.
	MemoryBase   uintptr // Base of bank 0.
	BankSize     int     // Bytes per bank.
	BankCount    int     // Number of banks; at most 16 (4-bit bank fields).
}

// DefaultMemoryConfig returns the memory map of the Headsail DLA.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		RegisterBase: DefaultRegisterBase,
		MemoryBase:   DefaultMemoryBase,
		BankSize:     DefaultBankSize,
		BankCount:    DefaultBankCount,
	}
}

// TotalSize returns the SRAM size in bytes.
func (m MemoryConfig) TotalSize() int {
	return m.BankSize * m.BankCount
}

// Validate checks that the memory map can be programmed into the bank fields.
func (m MemoryConfig) Validate() error {
	if m.BankSize <= 0 || m.BankSize%4 != 0 {
		return &ConfigError{Field: "bank_size", Details: "must be a positive multiple of 4"}
	}
	if m.BankCount <= 0 || m.BankCount > 1<<FieldInputBank.Width {
		return &ConfigError{Field: "bank_count", Details: "must be between 1 and 16"}
	}
	if uint64(m.BankSize)*uint64(m.BankCount) > math.MaxUint32 {
		return &ConfigError{Field: "bank_size", Details: "SRAM must be addressable by the 32-bit bias register"}
	}
	return nil
}

// bankAddr returns the physical address of the first byte of bank.
func (m MemoryConfig) bankAddr(bank int) uintptr {
	return m.MemoryBase + uintptr(bank*m.BankSize)
}
