package dla

import "fmt"

// ConvOutputDims computes the output width and height of a convolution:
//
//	out = (in + 2*pad - kernel) / stride + 1
//
// A nil padding means no padding, a nil stride means stride 1. Geometries
// that produce an empty output or use a non-positive stride are rejected.
func ConvOutputDims(inW, inH, kW, kH int, padding *Padding, stride *Stride) (w, h int, err error) {
	pad := Padding{}
	if padding != nil {
		pad = *padding
	}
	st := Stride{X: 1, Y: 1}
	if stride != nil {
		st = *stride
	}

	if st.X <= 0 || st.Y <= 0 {
		return 0, 0, fmt.Errorf("%w: stride (%d, %d) must be positive", ErrInvalidGeometry, st.X, st.Y)
	}
	if pad.X < 0 || pad.Y < 0 {
		return 0, 0, fmt.Errorf("%w: negative padding (%d, %d)", ErrInvalidGeometry, pad.X, pad.Y)
	}

	spanW := inW + 2*pad.X - kW
	spanH := inH + 2*pad.Y - kH
	if spanW < 0 || spanH < 0 {
		return 0, 0, fmt.Errorf("%w: kernel %dx%d larger than padded input %dx%d",
			ErrInvalidGeometry, kW, kH, inW+2*pad.X, inH+2*pad.Y)
	}
	return spanW/st.X + 1, spanH/st.Y + 1, nil
}
