package dla

import (
	"fmt"
	"sort"
)

// Bytes per element of each bank role.
const (
	InputElemBytes  = 1 // int8
	KernelElemBytes = 1 // int8
	OutputElemBytes = 4 // widest output width
	BiasElemBytes   = 2 // int16
)

// Region is a byte range of the accelerator SRAM, relative to bank 0.
type Region struct {
	Name  string
	Start int
	Size  int
}

// End returns the first byte past the region.
func (r Region) End() int { return r.Start + r.Size }

// Overlaps reports whether r and other share at least one byte.
func (r Region) Overlaps(other Region) bool {
	return r.Start < other.End() && other.Start < r.End()
}

// Banks is the SRAM partition for one layer.
type Banks struct {
	Input    int    // First bank of the input tensor.
	Kernel   int    // First bank of the kernel tensor.
	Output   int    // First bank of the output tensor.
	BiasAddr uint32 // Byte offset of the bias vector.

	regions [4]Region
}

// Regions returns the input, kernel, output and bias regions in that order.
func (b Banks) Regions() []Region {
	out := make([]Region, len(b.regions))
	copy(out, b.regions[:])
	return out
}

// AllocateBanks partitions the SRAM for tensors of the given element counts.
// Regions are bank aligned and laid out in the order input, kernel, output,
// bias; each takes at least one bank and the bias region takes exactly one.
// The result depends only on the sizes, so two layers sharing the device at
// the same time would collide.
func AllocateBanks(mem MemoryConfig, inputSize, kernelSize, outputSize int) (Banks, error) {
	if err := mem.Validate(); err != nil {
		return Banks{}, err
	}
	total := mem.TotalSize()
	roles := []struct {
		name      string
		n         int
		elemBytes int
	}{
		{"input", inputSize, InputElemBytes},
		{"kernel", kernelSize, KernelElemBytes},
		{"output", outputSize, OutputElemBytes},
		{"bias", mem.BankSize, 1},
	}
	for _, role := range roles {
		if role.n < 0 {
			return Banks{}, &ConfigError{Field: role.name + "_size", Details: fmt.Sprintf("negative size %d", role.n)}
		}
		if role.n > total/role.elemBytes {
			return Banks{}, fmt.Errorf("%w: %s of %d elements exceeds %d-byte SRAM",
				ErrBankOverflow, role.name, role.n, total)
		}
	}

	// bytes is bounded by TotalSize, so the bank count cannot wrap.
	banksFor := func(bytes int) int {
		n := bytes / mem.BankSize
		if bytes%mem.BankSize != 0 {
			n++
		}
		return max(1, n)
	}

	var b Banks
	next := 0
	for i, role := range roles {
		n := banksFor(role.n * role.elemBytes)
		if next+n > mem.BankCount {
			return Banks{}, fmt.Errorf("%w: %s needs banks [%d, %d), only %d banks available",
				ErrBankOverflow, role.name, next, next+n, mem.BankCount)
		}
		b.regions[i] = Region{Name: role.name, Start: next * mem.BankSize, Size: n * mem.BankSize}
		next += n
	}

	b.Input = b.regions[0].Start / mem.BankSize
	b.Kernel = b.regions[1].Start / mem.BankSize
	b.Output = b.regions[2].Start / mem.BankSize
	b.BiasAddr = uint32(b.regions[3].Start) //nolint:gosec // bounded by TotalSize

	if err := ValidateRegions(b.Regions(), mem.TotalSize()); err != nil {
		return Banks{}, err
	}
	return b, nil
}

// ValidateRegions checks for overlapping and out-of-bounds regions.
func ValidateRegions(regions []Region, total int) error {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	for i, r := range sorted {
		if r.Start < 0 || r.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Region:  r.Name,
				Details: fmt.Sprintf("start=%d, size=%d", r.Start, r.Size),
			}
		}
		if r.End() > total {
			return &ValidationError{
				Type:    "out_of_bounds",
				Region:  r.Name,
				Details: fmt.Sprintf("start %d + size %d > sram %d", r.Start, r.Size, total),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if r.End() > next.Start {
				return &ValidationError{
					Type:    "region_overlap",
					Region:  r.Name,
					Region2: next.Name,
					Details: fmt.Sprintf("[%d-%d] and [%d-%d] overlap", r.Start, r.End(), next.Start, next.End()),
				}
			}
		}
	}
	return nil
}
