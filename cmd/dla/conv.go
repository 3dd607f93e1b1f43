package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/born-ml/dla/backend/sim"
	"github.com/born-ml/dla/dla"
	"github.com/born-ml/dla/tensor"
)

type convFlags struct {
	input   string
	kernel  string
	stride  int
	pad     int
	groups  int
	relu    bool
	bias    bool
	output  string
	latency int
	verbose bool
}

func newConvCmd() *cobra.Command {
	var f convFlags
	cmd := &cobra.Command{
		Use:   "conv",
		Short: "Run a convolution on the simulated accelerator",
		Long: `Run one convolution layer with deterministic data through the driver and
the simulated accelerator, then print the output tensor channel by channel.`,
		Example: `  dla conv --input 4x4x3 --kernel 2x2x1
  dla conv --input 8x8x8 --kernel 3x3x16 --pad 1 --groups 2
  dla conv --input 6x6x2 --kernel 3x3x4 --bias --relu --output int8 --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConv(cmd.OutOrStdout(), cmd.ErrOrStderr(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.input, "input", "4x4x3", "input dimensions as HxWxC")
	fl.StringVar(&f.kernel, "kernel", "2x2x1", "kernel dimensions as HxWxK (depth follows the input)")
	fl.IntVar(&f.stride, "stride", 1, "stride on both axes")
	fl.IntVar(&f.pad, "pad", 0, "zero padding on both axes")
	fl.IntVar(&f.groups, "groups", 1, "split channels and kernels into this many groups")
	fl.BoolVar(&f.relu, "relu", false, "apply ReLU")
	fl.BoolVar(&f.bias, "bias", false, "add one bias per kernel")
	fl.StringVar(&f.output, "output", "int32", "output element type: int8, int16 or int32")
	fl.IntVar(&f.latency, "latency", 4, "status polls the simulator takes per layer")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log driver activity")
	return cmd
}

// parseDims parses "AxBxC" into three positive integers.
func parseDims(s string) (a, b, c int, err error) {
	parts := lo.Map(strings.Split(s, "x"), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("dimensions %q: want three values like 4x4x3", s)
	}
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("dimensions %q: %w", s, err)
		}
		dims = append(dims, d)
	}
	if !lo.EveryBy(dims, func(d int) bool { return d > 0 }) {
		return 0, 0, 0, fmt.Errorf("dimensions %q: values must be positive", s)
	}
	return dims[0], dims[1], dims[2], nil
}

func runConv(stdout, stderr io.Writer, f convFlags) error {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	inH, inW, inC, err := parseDims(f.input)
	if err != nil {
		return fmt.Errorf("--input: %w", err)
	}
	kH, kW, kN, err := parseDims(f.kernel)
	if err != nil {
		return fmt.Errorf("--kernel: %w", err)
	}
	if f.groups > 1 && f.relu {
		return errors.New("--relu cannot be combined with --groups")
	}

	depth := inC
	if f.groups > 1 && inC%f.groups == 0 {
		depth = inC / f.groups
	}
	input, err := demoInput(inC, inH, inW)
	if err != nil {
		return err
	}
	kernels, err := demoKernels(kN, depth, kH, kW)
	if err != nil {
		return err
	}
	var bias []int16
	if f.bias || f.groups > 1 {
		bias = lo.Times(kN, func(k int) int16 { return int16(k*4 - 8) })
	}

	cfg := sim.DefaultConfig()
	cfg.Latency = f.latency
	acc, err := sim.New(cfg)
	if err != nil {
		return err
	}
	dev, err := dla.NewDriver(acc, cfg.Memory)
	if err != nil {
		return err
	}

	opts := []dla.Option{
		dla.WithPadding(dla.Padding{X: f.pad, Y: f.pad}),
		dla.WithStride(dla.Stride{X: f.stride, Y: f.stride}),
		dla.WithLogger(logger),
	}

	switch f.output {
	case "int8":
		err = convAndPrint[int8](stdout, dev, input, kernels, bias, f, opts)
	case "int16":
		err = convAndPrint[int16](stdout, dev, input, kernels, bias, f, opts)
	case "int32":
		err = convAndPrint[int32](stdout, dev, input, kernels, bias, f, opts)
	default:
		return fmt.Errorf("--output: unknown element type %q", f.output)
	}
	if err != nil {
		return err
	}
	logger.Debug("simulator", "jobs", acc.Jobs(), "polls", acc.Polls())
	return nil
}

func convAndPrint[T dla.Output](
	w io.Writer,
	dev dla.Device,
	input *tensor.Tensor3[int8],
	kernels *tensor.Tensor4[int8],
	bias []int16,
	f convFlags,
	opts []dla.Option,
) error {
	var (
		out *tensor.Tensor3[T]
		err error
	)
	switch {
	case f.groups != 1:
		out, err = dla.GroupedConv2D[T](dev, input, kernels, bias, f.groups, opts...)
	case f.bias && f.relu:
		out, err = dla.Conv2DBiasReLU[T](dev, input, kernels, bias, opts...)
	case f.bias:
		out, err = dla.Conv2DBias[T](dev, input, kernels, bias, opts...)
	case f.relu:
		out, err = dla.Conv2DReLU[T](dev, input, kernels, opts...)
	default:
		out, err = dla.Conv2D[T](dev, input, kernels, opts...)
	}
	if err != nil {
		return err
	}
	printTensor(w, out)
	return nil
}

// demoInput fills a C×H×W input with a repeating signed ramp.
func demoInput(c, h, w int) (*tensor.Tensor3[int8], error) {
	t, err := tensor.NewTensor3[int8](c, h, w, tensor.HWC)
	if err != nil {
		return nil, err
	}
	for ci := 0; ci < c; ci++ {
		for hi := 0; hi < h; hi++ {
			for wi := 0; wi < w; wi++ {
				t.Set(ci, hi, wi, int8((ci*7+hi*3+wi)%9-4))
			}
		}
	}
	return t, nil
}

// demoKernels fills a K×C×H×W kernel bank with small signed weights.
func demoKernels(k, c, h, w int) (*tensor.Tensor4[int8], error) {
	t, err := tensor.NewTensor4[int8](k, c, h, w, tensor.KCHW)
	if err != nil {
		return nil, err
	}
	for ki := 0; ki < k; ki++ {
		for ci := 0; ci < c; ci++ {
			for hi := 0; hi < h; hi++ {
				for wi := 0; wi < w; wi++ {
					t.Set(ki, ci, hi, wi, int8((ki+ci+hi+wi)%5-2))
				}
			}
		}
	}
	return t, nil
}

func printTensor[T dla.Output](w io.Writer, t *tensor.Tensor3[T]) {
	fmt.Fprintf(w, "output %dx%dx%d (CxHxW), %s\n", t.Channels(), t.Height(), t.Width(), t.DType())
	for c := 0; c < t.Channels(); c++ {
		fmt.Fprintf(w, "channel %d:\n", c)
		for h := 0; h < t.Height(); h++ {
			row := lo.Times(t.Width(), func(x int) string {
				return fmt.Sprintf("%6d", t.At(c, h, x))
			})
			fmt.Fprintln(w, strings.Join(row, " "))
		}
	}
}
