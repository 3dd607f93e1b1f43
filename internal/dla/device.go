package dla

// Device is the handshake contract the layer orchestrator drives. A Device
// runs one layer at a time and has no internal locking: whoever holds it owns
// the accelerator until the layer's output has been read.
type Device interface {
	// InitLayer programs every configuration register for the next layer.
	InitLayer(cfg LayerConfig) error

	// WriteInput, WriteKernel and WriteBias copy host buffers into the banks
	// selected by the current configuration.
	WriteInput(buf []int8) error
	WriteKernel(buf []int8) error
	WriteBias(buf []int16) error

	// KernelDataReady and InputDataReady drive the ready flags. Execution
	// starts once both are asserted.
	KernelDataReady(ready bool) error
	InputDataReady(ready bool) error

	// HandleHandshake samples the completion flag once and acknowledges it
	// when set. It never blocks.
	HandleHandshake() bool

	// ReadOutputI8, ReadOutputI16 and ReadOutputI32 drain n elements of the
	// given width from the output bank.
	ReadOutputI8(n int) ([]int8, error)
	ReadOutputI16(n int) ([]int16, error)
	ReadOutputI32(n int) ([]int32, error)
}

// Output is the set of element types a layer can produce.
type Output interface {
	int8 | int16 | int32
}

// OutputReader reads a layer result of element type T. There is one
// implementation per accelerator output width.
type OutputReader[T Output] interface {
	ReadOutput(dev Device, n int) ([]T, error)
	// SimdMode is the accelerator mode that produces elements of type T.
	SimdMode() SimdBitMode
}

// I8 reads 8-bit outputs.
type I8 struct{}

// ReadOutput implements OutputReader.
func (I8) ReadOutput(dev Device, n int) ([]int8, error) { return dev.ReadOutputI8(n) }

// SimdMode implements OutputReader.
func (I8) SimdMode() SimdBitMode { return EightBits }

// I16 reads 16-bit outputs.
type I16 struct{}

// ReadOutput implements OutputReader.
func (I16) ReadOutput(dev Device, n int) ([]int16, error) { return dev.ReadOutputI16(n) }

// SimdMode implements OutputReader.
func (I16) SimdMode() SimdBitMode { return SixteenBits }

// I32 reads 32-bit outputs.
type I32 struct{}

// ReadOutput implements OutputReader.
func (I32) ReadOutput(dev Device, n int) ([]int32, error) { return dev.ReadOutputI32(n) }

// SimdMode implements OutputReader.
func (I32) SimdMode() SimdBitMode { return ThirtyTwoBits }

// Compile-time checks.
var (
	_ OutputReader[int8]  = I8{}
	_ OutputReader[int16] = I16{}
	_ OutputReader[int32] = I32{}
)

// ReaderFor returns the reader bound to the element type T.
func ReaderFor[T Output]() OutputReader[T] {
	var r any
	switch any(*new(T)).(type) {
	case int8:
		r = I8{}
	case int16:
		r = I16{}
	case int32:
		r = I32{}
	}
	return r.(OutputReader[T])
}
