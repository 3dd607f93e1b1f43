package dla

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallMemory() MemoryConfig {
	return MemoryConfig{
		RegisterBase: 0x1000,
		MemoryBase:   0x10000,
		BankSize:     256,
		BankCount:    8,
	}
}

func TestAllocateBanks(t *testing.T) {
	mem := smallMemory()

	tests := []struct {
		name          string
		in, k, out    int
		wantBanks     [3]int // input, kernel, output
		wantBias      uint32
		wantRegionLen [4]int
	}{
		{"all tiny", 48, 12, 9, [3]int{0, 1, 2}, 3 * 256, [4]int{256, 256, 256, 256}},
		{"empty still takes a bank", 0, 0, 0, [3]int{0, 1, 2}, 3 * 256, [4]int{256, 256, 256, 256}},
		{"input spans banks", 300, 10, 10, [3]int{0, 2, 3}, 4 * 256, [4]int{512, 256, 256, 256}},
		{"output sized in words", 10, 10, 65, [3]int{0, 1, 2}, 4 * 256, [4]int{256, 256, 512, 256}},
		{"exactly full", 256, 256, 5 * 256 / OutputElemBytes, [3]int{0, 1, 2}, 7 * 256, [4]int{256, 256, 1280, 256}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := AllocateBanks(mem, tt.in, tt.k, tt.out)
			require.NoError(t, err)

			assert.Equal(t, tt.wantBanks, [3]int{b.Input, b.Kernel, b.Output})
			assert.Equal(t, tt.wantBias, b.BiasAddr)

			regions := b.Regions()
			require.Len(t, regions, 4)
			for i, r := range regions {
				assert.Equal(t, tt.wantRegionLen[i], r.Size, r.Name)
				assert.Zero(t, r.Start%mem.BankSize, "%s not bank aligned", r.Name)
			}

			// Regions are large enough and pairwise disjoint.
			assert.GreaterOrEqual(t, regions[0].Size, tt.in*InputElemBytes)
			assert.GreaterOrEqual(t, regions[1].Size, tt.k*KernelElemBytes)
			assert.GreaterOrEqual(t, regions[2].Size, tt.out*OutputElemBytes)
			for i := range regions {
				for j := i + 1; j < len(regions); j++ {
					assert.False(t, regions[i].Overlaps(regions[j]), "%s overlaps %s", regions[i].Name, regions[j].Name)
				}
				assert.LessOrEqual(t, regions[i].End(), mem.TotalSize())
			}
		})
	}
}

func TestAllocateBanks_Overflow(t *testing.T) {
	mem := smallMemory()

	// Input alone needs all 8 banks; nothing is left for the rest.
	_, err := AllocateBanks(mem, mem.TotalSize(), 1, 1)
	require.ErrorIs(t, err, ErrBankOverflow)

	// Output of 6 banks plus three single banks is one too many.
	_, err = AllocateBanks(mem, 1, 1, 6*256/OutputElemBytes)
	require.ErrorIs(t, err, ErrBankOverflow)
}

func TestAllocateBanks_HugeSizes(t *testing.T) {
	tests := []struct {
		name                   string
		input, kernel, output int
	}{
		{"max input", math.MaxInt, 1, 1},
		{"max kernel", 1, math.MaxInt, 1},
		{"output bytes wrap", 1, 1, math.MaxInt / 2},
		{"output bytes wrap to positive", 1, 1, math.MaxInt/4 + 1},
		{"one past sram", DefaultMemoryConfig().TotalSize() + 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AllocateBanks(DefaultMemoryConfig(), tt.input, tt.kernel, tt.output)
			require.ErrorIs(t, err, ErrBankOverflow)
		})
	}
}

func TestAllocateBanks_Invalid(t *testing.T) {
	_, err := AllocateBanks(smallMemory(), -1, 1, 1)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "input_size", cfgErr.Field)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = AllocateBanks(MemoryConfig{BankSize: 3, BankCount: 1}, 1, 1, 1)
	assert.ErrorIs(t, err, ErrConfig)

	// 16 GiB of SRAM does not fit the 32-bit bias address.
	_, err = AllocateBanks(MemoryConfig{BankSize: 1 << 30, BankCount: 16}, 1, 1, 1)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidateRegions(t *testing.T) {
	ok := []Region{
		{Name: "b", Start: 100, Size: 50},
		{Name: "a", Start: 0, Size: 100},
	}
	require.NoError(t, ValidateRegions(ok, 150))

	tests := []struct {
		name     string
		regions  []Region
		total    int
		wantType string
	}{
		{"overlap", []Region{{"a", 0, 101}, {"b", 100, 10}}, 1000, "region_overlap"},
		{"out of bounds", []Region{{"a", 900, 200}}, 1000, "out_of_bounds"},
		{"negative", []Region{{"a", -4, 4}}, 1000, "negative_offset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegions(tt.regions, tt.total)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantType, vErr.Type)
		})
	}
}
