package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/dla/internal/dla"
	"github.com/born-ml/dla/internal/parallel"
)

// layer is the decoded register state of one job.
type layer struct {
	inW, inH, channels int
	kW, kH, kernels    int
	padX, padY         int
	strideX, strideY   int
	outW, outH         int

	inputStart, kernelStart, outputStart, biasStart int

	macClip, ppClip uint
	pp, relu, bias  bool
	simd            dla.SimdBitMode
}

func (a *Accelerator) decode() (layer, error) {
	bank := a.cfg.Memory.BankSize
	l := layer{
		inW:         a.field(dla.FieldInputWidth),
		inH:         a.field(dla.FieldInputHeight),
		channels:    a.field(dla.FieldInputChannels),
		kW:          a.field(dla.FieldKernelWidth),
		kH:          a.field(dla.FieldKernelHeight),
		kernels:     a.field(dla.FieldKernelCount),
		padX:        a.field(dla.FieldPadX),
		padY:        a.field(dla.FieldPadY),
		strideX:     a.field(dla.FieldStrideX),
		strideY:     a.field(dla.FieldStrideY),
		inputStart:  a.field(dla.FieldInputBank) * bank,
		kernelStart: a.field(dla.FieldKernelBank) * bank,
		outputStart: a.field(dla.FieldOutputBank) * bank,
		biasStart:   int(a.bus.Read32(a.regAddr(dla.RegBiasAddr))),
		macClip:     uint(a.field(dla.FieldMACClip)),
		ppClip:      uint(a.field(dla.FieldPPClip)),
		simd:        dla.SimdBitMode(a.field(dla.FieldSimd)),
	}
	pp := a.bus.Read32(a.regAddr(dla.RegPPCtrl))
	l.pp = pp&dla.PPEnable != 0
	l.relu = l.pp && pp&dla.PPReLU != 0
	l.bias = l.pp && pp&dla.PPBias != 0

	if l.channels == 0 || l.kernels == 0 || l.kW == 0 || l.kH == 0 {
		return layer{}, errors.New("sim: layer not configured")
	}

	var err error
	l.outW, l.outH, err = dla.ConvOutputDims(l.inW, l.inH, l.kW, l.kH,
		&dla.Padding{X: l.padX, Y: l.padY}, &dla.Stride{X: l.strideX, Y: l.strideY})
	if err != nil {
		return layer{}, err
	}
	if !l.simd.Valid() {
		return layer{}, fmt.Errorf("sim: invalid simd mode %d", l.simd)
	}

	total := len(a.sram.Data)
	for _, r := range []struct {
		name        string
		start, size int
	}{
		{"input", l.inputStart, l.inW * l.inH * l.channels},
		{"kernel", l.kernelStart, l.kW * l.kH * l.kernels * l.channels},
		{"output", l.outputStart, l.outW * l.outH * l.kernels * l.simd.ElementSize()},
	} {
		if r.start+r.size > total {
			return layer{}, fmt.Errorf("sim: %s region [%d, %d) exceeds sram", r.name, r.start, r.start+r.size)
		}
	}
	if l.bias && l.biasStart+2*l.kernels > total {
		return layer{}, errors.New("sim: bias region exceeds sram")
	}
	return l, nil
}

// execute runs the decoded layer: input is HWC, kernels are HWKC and the
// output is written HWC in the SIMD element width.
func (a *Accelerator) execute() error {
	l, err := a.decode()
	if err != nil {
		return err
	}
	sram := a.sram.Data

	// Im2col: one row per output pixel, columns ordered (kh, kw, c).
	rows := l.outH * l.outW
	cols := l.kH * l.kW * l.channels
	colBuf := make([]float64, rows*cols)
	parallel.For(a.cfg.Parallel, rows, func(r int) {
		oh, ow := r/l.outW, r%l.outW
		hStart := oh*l.strideY - l.padY
		wStart := ow*l.strideX - l.padX
		idx := r * cols
		for kh := 0; kh < l.kH; kh++ {
			for kw := 0; kw < l.kW; kw++ {
				h, w := hStart+kh, wStart+kw
				inside := h >= 0 && h < l.inH && w >= 0 && w < l.inW
				for c := 0; c < l.channels; c++ {
					if inside {
						colBuf[idx] = float64(int8(sram[l.inputStart+(h*l.inW+w)*l.channels+c]))
					}
					idx++
				}
			}
		}
	})

	// Kernel matrix: one row per kernel, same column order as colBuf.
	kerBuf := make([]float64, l.kernels*cols)
	for kh := 0; kh < l.kH; kh++ {
		for kw := 0; kw < l.kW; kw++ {
			for k := 0; k < l.kernels; k++ {
				for c := 0; c < l.channels; c++ {
					src := l.kernelStart + ((kh*l.kW+kw)*l.kernels+k)*l.channels + c
					kerBuf[k*cols+(kh*l.kW+kw)*l.channels+c] = float64(int8(sram[src]))
				}
			}
		}
	}

	// [rows, cols] x [cols, kernels] -> [rows, kernels], which is HWC.
	colM := mat.NewDense(rows, cols, colBuf)
	kerM := mat.NewDense(l.kernels, cols, kerBuf)
	var prod mat.Dense
	prod.Mul(colM, kerM.T())

	var biases []int64
	if l.bias {
		biases = make([]int64, l.kernels)
		for k := range biases {
			biases[k] = int64(int16(binary.LittleEndian.Uint16(sram[l.biasStart+2*k:])))
		}
	}

	size := l.simd.ElementSize()
	for r := 0; r < rows; r++ {
		for k := 0; k < l.kernels; k++ {
			v := int64(math.Round(prod.At(r, k))) >> l.macClip
			if l.pp {
				if l.bias {
					v += biases[k]
				}
				if l.relu && v < 0 {
					v = 0
				}
				v >>= l.ppClip
			}
			store(sram[l.outputStart+(r*l.kernels+k)*size:], size, v)
		}
	}
	return nil
}

// store saturates v to size bytes and writes it little-endian.
func store(dst []byte, size int, v int64) {
	switch size {
	case 1:
		dst[0] = byte(int8(saturate(v, math.MinInt8, math.MaxInt8)))
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(int16(saturate(v, math.MinInt16, math.MaxInt16))))
	default:
		binary.LittleEndian.PutUint32(dst, uint32(int32(saturate(v, math.MinInt32, math.MaxInt32))))
	}
}

func saturate(v, lo, hi int64) int64 {
	return min(max(v, lo), hi)
}
