package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/parallel"
)

func testConfig(latency int) Config {
	return Config{
		Memory: dla.MemoryConfig{
			RegisterBase: 0x1000,
			MemoryBase:   0x10000,
			BankSize:     256,
			BankCount:    8,
		},
		Latency:  latency,
		Parallel: parallel.Sequential(),
	}
}

func newTestSim(t *testing.T, latency int) (*Accelerator, *dla.Driver) {
	t.Helper()
	acc, err := New(testConfig(latency))
	require.NoError(t, err)
	drv, err := dla.NewDriver(acc, acc.cfg.Memory)
	require.NoError(t, err)
	return acc, drv
}

// baseLayer configures one square input and kernel bank in banks 0, 1, 2
// with the bias vector in bank 3.
func baseLayer(channels, size, kernels, kSize int) dla.LayerConfig {
	return dla.LayerConfig{
		InputBank:  0,
		KernelBank: 1,
		OutputBank: 2,
		BiasAddr:   3 * 256,
		InputSize:  dla.InputSize{Channels: channels, Width: size, Height: size},
		KernelSize: dla.KernelSize{SChannels: 1, Kernels: kernels, Width: kSize, Height: kSize},
		Stride:     dla.Stride{X: 1, Y: 1},
		SimdMode:   dla.ThirtyTwoBits,
	}
}

// run drives one layer to completion and returns the number of polls.
func run(t *testing.T, drv *dla.Driver, cfg dla.LayerConfig, input, kernels []int8, bias []int16) int {
	t.Helper()
	require.NoError(t, drv.InitLayer(cfg))
	require.NoError(t, drv.WriteInput(input))
	require.NoError(t, drv.WriteKernel(kernels))
	if bias != nil {
		require.NoError(t, drv.WriteBias(bias))
	}
	require.NoError(t, drv.KernelDataReady(true))
	require.NoError(t, drv.InputDataReady(true))

	polls := 1
	for !drv.HandleHandshake() {
		polls++
		require.Less(t, polls, 1000, "layer never completed")
	}
	return polls
}

func ones(n int) []int8 {
	out := make([]int8, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func TestAccelerator_Conv(t *testing.T) {
	acc, drv := newTestSim(t, 1)

	// 3x3 single-channel ramp, one 2x2 kernel of ones.
	input := []int8{1, 2, 3, 4, 5, 6, 7, 8, 9}
	run(t, drv, baseLayer(1, 3, 1, 2), input, ones(4), nil)
	require.NoError(t, acc.Err())

	out, err := drv.ReadOutputI32(4)
	require.NoError(t, err)
	assert.Equal(t, []int32{12, 16, 24, 28}, out)
	assert.Equal(t, 1, acc.Jobs())
}

func TestAccelerator_MultiChannelHWC(t *testing.T) {
	_, drv := newTestSim(t, 1)

	// 1x1 input with 3 channels; kernel 0 picks channel 2, kernel 1 sums
	// channels 0 and 1 with weights 1 and -1. Kernels are HWKC.
	input := []int8{10, 20, 30}
	kernels := []int8{
		0, 0, 1, // k0
		1, -1, 0, // k1
	}
	run(t, drv, baseLayer(3, 1, 2, 1), input, kernels, nil)

	out, err := drv.ReadOutputI32(2)
	require.NoError(t, err)
	assert.Equal(t, []int32{30, -10}, out)
}

func TestAccelerator_Padding(t *testing.T) {
	_, drv := newTestSim(t, 1)

	cfg := baseLayer(1, 3, 1, 3)
	cfg.Padding = dla.Padding{X: 1, Y: 1}
	run(t, drv, cfg, ones(9), ones(9), nil)

	out, err := drv.ReadOutputI32(9)
	require.NoError(t, err)
	assert.Equal(t, []int32{
		4, 6, 4,
		6, 9, 6,
		4, 6, 4,
	}, out)
}

func TestAccelerator_Stride(t *testing.T) {
	_, drv := newTestSim(t, 1)

	input := make([]int8, 16)
	for i := range input {
		input[i] = int8(i)
	}
	cfg := baseLayer(1, 4, 1, 1)
	cfg.Stride = dla.Stride{X: 2, Y: 2}
	run(t, drv, cfg, input, []int8{1}, nil)

	out, err := drv.ReadOutputI32(4)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 2, 8, 10}, out)
}

func TestAccelerator_PostProcessing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dla.LayerConfig)
		bias   []int16
		want   []int32
	}{
		{
			name: "mac clip",
			mutate: func(c *dla.LayerConfig) {
				c.MACClip = 2
			},
			want: []int32{10, -10},
		},
		{
			name: "bias",
			mutate: func(c *dla.LayerConfig) {
				c.PPEnabled, c.BiasEnabled = true, true
			},
			bias: []int16{-40, 50},
			want: []int32{0, 10},
		},
		{
			name: "relu",
			mutate: func(c *dla.LayerConfig) {
				c.PPEnabled, c.ReLUEnabled = true, true
			},
			want: []int32{40, 0},
		},
		{
			name: "bias relu pp clip",
			mutate: func(c *dla.LayerConfig) {
				c.PPEnabled, c.BiasEnabled, c.ReLUEnabled = true, true, true
				c.PPClip = 3
			},
			bias: []int16{8, 100},
			want: []int32{6, 7},
		},
		{
			name:   "plain",
			mutate: func(*dla.LayerConfig) {},
			want:   []int32{40, -40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, drv := newTestSim(t, 1)

			// One pixel, one channel, two 1x1 kernels: +1 and -1.
			cfg := baseLayer(1, 1, 2, 1)
			tt.mutate(&cfg)
			run(t, drv, cfg, []int8{40}, []int8{1, -1}, tt.bias)

			out, err := drv.ReadOutputI32(2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestAccelerator_Saturation(t *testing.T) {
	_, drv := newTestSim(t, 1)

	// 2x2x4 ones with a 2x2x4 kernel of 100s: 1600.
	kernels := make([]int8, 16)
	for i := range kernels {
		kernels[i] = 100
	}

	cfg := baseLayer(4, 2, 1, 2)
	cfg.SimdMode = dla.EightBits
	run(t, drv, cfg, ones(16), kernels, nil)
	i8, err := drv.ReadOutputI8(1)
	require.NoError(t, err)
	assert.Equal(t, []int8{127}, i8)

	for i := range kernels {
		kernels[i] = -100
	}
	run(t, drv, cfg, ones(16), kernels, nil)
	i8, err = drv.ReadOutputI8(1)
	require.NoError(t, err)
	assert.Equal(t, []int8{-128}, i8)

	cfg.SimdMode = dla.SixteenBits
	run(t, drv, cfg, ones(16), kernels, nil)
	i16, err := drv.ReadOutputI16(1)
	require.NoError(t, err)
	assert.Equal(t, []int16{-1600}, i16)
}

func TestAccelerator_Latency(t *testing.T) {
	acc, drv := newTestSim(t, 5)

	polls := run(t, drv, baseLayer(1, 1, 1, 1), []int8{3}, []int8{2}, nil)
	assert.Equal(t, 5, polls)
	assert.Equal(t, 5, acc.Polls())

	out, err := drv.ReadOutputI32(1)
	require.NoError(t, err)
	assert.Equal(t, []int32{6}, out)

	// Acknowledge cleared the status for the next layer.
	status := acc.cfg.Memory.RegisterBase + dla.RegStatus
	assert.Equal(t, uint32(0), acc.Read32(status))

	run(t, drv, baseLayer(1, 1, 1, 1), []int8{4}, []int8{2}, nil)
	assert.Equal(t, 2, acc.Jobs())
}

func TestAccelerator_ZeroLatencyStillPolls(t *testing.T) {
	acc, drv := newTestSim(t, 0)
	polls := run(t, drv, baseLayer(1, 1, 1, 1), []int8{1}, []int8{1}, nil)
	assert.Equal(t, 1, polls)
	assert.Equal(t, 1, acc.Polls())
}

func TestAccelerator_UnconfiguredStart(t *testing.T) {
	acc, err := New(testConfig(1))
	require.NoError(t, err)

	ctrl := acc.cfg.Memory.RegisterBase + dla.RegCtrl
	acc.Write32(ctrl, dla.CtrlKernelReady|dla.CtrlInputReady)

	assert.Equal(t, 1, acc.Jobs())
	assert.ErrorContains(t, acc.Err(), "not configured")
}

func TestAccelerator_ParallelMatchesSequential(t *testing.T) {
	input := make([]int8, 8*8*2)
	for i := range input {
		input[i] = int8(i%17 - 8)
	}
	kernels := make([]int8, 3*3*4*2)
	for i := range kernels {
		kernels[i] = int8(i%5 - 2)
	}
	cfg := baseLayer(2, 8, 4, 3)
	cfg.Padding = dla.Padding{X: 1, Y: 1}

	results := make([][]int32, 0, 2)
	for _, p := range []parallel.Config{
		parallel.Sequential(),
		{Enabled: true, NumWorkers: 4, MinChunkSize: 8},
	} {
		sc := testConfig(1)
		sc.Parallel = p
		acc, err := New(sc)
		require.NoError(t, err)
		drv, err := dla.NewDriver(acc, sc.Memory)
		require.NoError(t, err)

		run(t, drv, cfg, input, kernels, nil)
		require.NoError(t, acc.Err())
		out, err := drv.ReadOutputI32(8 * 8 * 4)
		require.NoError(t, err)
		results = append(results, out)
	}
	assert.Equal(t, results[0], results[1])
}

func TestNew_InvalidMemory(t *testing.T) {
	cfg := testConfig(1)
	cfg.Memory.BankSize = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, dla.ErrConfig)
}
