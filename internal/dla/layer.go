package dla

import "fmt"

// Padding is the zero padding applied on each side of the input, per axis.
type Padding struct {
	X int
	Y int
}

// Stride is the convolution step per axis.
type Stride struct {
	X int
	Y int
}

// SimdBitMode selects the element width the accelerator uses for its output
// bank.
type SimdBitMode int

// Supported SIMD modes.
const (
	EightBits SimdBitMode = iota
	SixteenBits
	ThirtyTwoBits
)

// Valid reports whether m is a supported mode.
func (m SimdBitMode) Valid() bool {
	return m >= EightBits && m <= ThirtyTwoBits
}

// ElementSize returns the output element width in bytes.
func (m SimdBitMode) ElementSize() int {
	switch m {
	case EightBits:
		return 1
	case SixteenBits:
		return 2
	default:
		return 4
	}
}

// String returns a human-readable name for the mode.
func (m SimdBitMode) String() string {
	switch m {
	case EightBits:
		return "8bit"
	case SixteenBits:
		return "16bit"
	case ThirtyTwoBits:
		return "32bit"
	default:
		return fmt.Sprintf("SimdBitMode(%d)", int(m))
	}
}

// InputSize describes the input feature map.
type InputSize struct {
	Channels int
	Width    int
	Height   int
}

// Len returns the number of input elements.
func (s InputSize) Len() int { return s.Channels * s.Width * s.Height }

// KernelSize describes the kernel bank. SChannels is the number of kernel
// channels processed per pass.
type KernelSize struct {
	SChannels int
	Kernels   int
	Width     int
	Height    int
}

// LayerConfig holds everything programmed into the accelerator for one layer.
// It is built fresh for each layer and consumed by Driver.InitLayer.
type LayerConfig struct {
	InputBank  int
	KernelBank int
	OutputBank int
	BiasAddr   uint32 // Byte offset of the bias vector from bank 0.

	InputSize  InputSize
	KernelSize KernelSize
	Padding    Padding
	Stride     Stride

	BiasEnabled bool
	ReLUEnabled bool
	PPEnabled   bool

	MACClip  uint32 // Right shift applied to MAC results.
	PPClip   uint32 // Right shift applied after post-processing.
	SimdMode SimdBitMode
}

// Validate checks that every value fits its register field and that the
// layer's tensors occupy disjoint ranges inside the SRAM.
func (c *LayerConfig) Validate(mem MemoryConfig) error {
	checks := []struct {
		name  string
		value int
		min   int
		field Field
	}{
		{"input_bank", c.InputBank, 0, FieldInputBank},
		{"kernel_bank", c.KernelBank, 0, FieldKernelBank},
		{"output_bank", c.OutputBank, 0, FieldOutputBank},
		{"input_size.channels", c.InputSize.Channels, 1, FieldInputChannels},
		{"input_size.width", c.InputSize.Width, 1, FieldInputWidth},
		{"input_size.height", c.InputSize.Height, 1, FieldInputHeight},
		{"kernel_size.s_channels", c.KernelSize.SChannels, 1, FieldKernelSChannels},
		{"kernel_size.kernels", c.KernelSize.Kernels, 1, FieldKernelCount},
		{"kernel_size.width", c.KernelSize.Width, 1, FieldKernelWidth},
		{"kernel_size.height", c.KernelSize.Height, 1, FieldKernelHeight},
		{"padding.x", c.Padding.X, 0, FieldPadX},
		{"padding.y", c.Padding.Y, 0, FieldPadY},
		{"stride.x", c.Stride.X, 1, FieldStrideX},
		{"stride.y", c.Stride.Y, 1, FieldStrideY},
		{"mac_clip", int(c.MACClip), 0, FieldMACClip},
		{"pp_clip", int(c.PPClip), 0, FieldPPClip},
	}
	for _, chk := range checks {
		if chk.value < chk.min || chk.value > int(chk.field.Max()) {
			return &ConfigError{
				Field:   chk.name,
				Details: fmt.Sprintf("value %d outside [%d, %d]", chk.value, chk.min, chk.field.Max()),
			}
		}
	}

	for _, bank := range []int{c.InputBank, c.KernelBank, c.OutputBank} {
		if bank >= mem.BankCount {
			return &ConfigError{
				Field:   "banks",
				Details: fmt.Sprintf("bank %d beyond bank count %d", bank, mem.BankCount),
			}
		}
	}
	if c.BiasEnabled && int(c.BiasAddr)+2*c.KernelSize.Kernels > mem.TotalSize() {
		return &ConfigError{
			Field:   "bias_addr",
			Details: fmt.Sprintf("bias vector at %#x does not fit in SRAM", c.BiasAddr),
		}
	}
	if !c.SimdMode.Valid() {
		return &ConfigError{Field: "simd_mode", Details: c.SimdMode.String()}
	}
	if (c.BiasEnabled || c.ReLUEnabled) && !c.PPEnabled {
		return &ConfigError{Field: "pp_enabled", Details: "bias and relu require the post-processing stage"}
	}
	return c.validateRegions(mem)
}

// Regions returns the SRAM byte ranges the layer reads and writes: input,
// kernel and output from their banks, plus the bias vector when enabled.
func (c *LayerConfig) Regions(mem MemoryConfig) ([]Region, error) {
	outW, outH, err := ConvOutputDims(c.InputSize.Width, c.InputSize.Height,
		c.KernelSize.Width, c.KernelSize.Height, &c.Padding, &c.Stride)
	if err != nil {
		return nil, &ConfigError{Field: "geometry", Details: "no output for this input and kernel", Err: err}
	}
	regions := []Region{
		{Name: "input", Start: c.InputBank * mem.BankSize, Size: c.InputSize.Len() * InputElemBytes},
		{Name: "kernel", Start: c.KernelBank * mem.BankSize, Size: c.kernelLen() * KernelElemBytes},
		{Name: "output", Start: c.OutputBank * mem.BankSize, Size: outW * outH * c.KernelSize.Kernels * c.SimdMode.ElementSize()},
	}
	if c.BiasEnabled {
		regions = append(regions, Region{Name: "bias", Start: int(c.BiasAddr), Size: c.KernelSize.Kernels * BiasElemBytes})
	}
	return regions, nil
}

// validateRegions rejects layers whose tensors share SRAM bytes or run past
// its end.
func (c *LayerConfig) validateRegions(mem MemoryConfig) error {
	regions, err := c.Regions(mem)
	if err != nil {
		return err
	}
	if err := ValidateRegions(regions, mem.TotalSize()); err != nil {
		return &ConfigError{Field: "banks", Details: "tensor regions collide", Err: err}
	}
	return nil
}

func (c *LayerConfig) kernelLen() int {
	return c.KernelSize.Kernels * c.InputSize.Channels * c.KernelSize.Width * c.KernelSize.Height
}
