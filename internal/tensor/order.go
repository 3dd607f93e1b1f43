package tensor

import (
	"fmt"
	"strings"
)

// Logical axes of a Tensor3.
const (
	axis3C = iota
	axis3H
	axis3W
)

// Logical axes of a Tensor4.
const (
	axis4K = iota
	axis4C
	axis4H
	axis4W
)

// Order3 declares how the (channel, height, width) indices of a Tensor3 map
// to a flat buffer. The name lists axes outermost first, so HWC keeps all
// channels of a pixel adjacent.
type Order3 int

// Supported Tensor3 orders.
const (
	CHW Order3 = iota
	CWH
	HCW
	HWC
	WCH
	WHC
)

var order3Layouts = [...][3]int{
	CHW: {axis3C, axis3H, axis3W},
	CWH: {axis3C, axis3W, axis3H},
	HCW: {axis3H, axis3C, axis3W},
	HWC: {axis3H, axis3W, axis3C},
	WCH: {axis3W, axis3C, axis3H},
	WHC: {axis3W, axis3H, axis3C},
}

var order3Names = [...]string{
	CHW: "CHW",
	CWH: "CWH",
	HCW: "HCW",
	HWC: "HWC",
	WCH: "WCH",
	WHC: "WHC",
}

// Valid reports whether o is one of the declared orders.
func (o Order3) Valid() bool {
	return o >= 0 && int(o) < len(order3Layouts)
}

// String returns the axis sequence, e.g. "HWC".
func (o Order3) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Order3(%d)", int(o))
	}
	return order3Names[o]
}

func (o Order3) layout() []int {
	if !o.Valid() {
		panic(fmt.Errorf("%w: %v", ErrInvalidOrder, o))
	}
	l := order3Layouts[o]
	return l[:]
}

// ParseOrder3 parses an axis sequence such as "hwc".
func ParseOrder3(s string) (Order3, error) {
	up := strings.ToUpper(s)
	for i, name := range order3Names {
		if name == up {
			return Order3(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown 3D order %q", ErrInvalidOrder, s)
}

// Order4 declares how the (kernel, channel, height, width) indices of a
// Tensor4 map to a flat buffer, outermost axis first.
type Order4 int

// Supported Tensor4 orders.
const (
	KCHW Order4 = iota
	KHWC
	HWKC
	HWCK
	CKHW
	CHWK
)

var order4Layouts = [...][4]int{
	KCHW: {axis4K, axis4C, axis4H, axis4W},
	KHWC: {axis4K, axis4H, axis4W, axis4C},
	HWKC: {axis4H, axis4W, axis4K, axis4C},
	HWCK: {axis4H, axis4W, axis4C, axis4K},
	CKHW: {axis4C, axis4K, axis4H, axis4W},
	CHWK: {axis4C, axis4H, axis4W, axis4K},
}

var order4Names = [...]string{
	KCHW: "KCHW",
	KHWC: "KHWC",
	HWKC: "HWKC",
	HWCK: "HWCK",
	CKHW: "CKHW",
	CHWK: "CHWK",
}

// Valid reports whether o is one of the declared orders.
func (o Order4) Valid() bool {
	return o >= 0 && int(o) < len(order4Layouts)
}

// String returns the axis sequence, e.g. "HWKC".
func (o Order4) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Order4(%d)", int(o))
	}
	return order4Names[o]
}

func (o Order4) layout() []int {
	if !o.Valid() {
		panic(fmt.Errorf("%w: %v", ErrInvalidOrder, o))
	}
	l := order4Layouts[o]
	return l[:]
}

// ParseOrder4 parses an axis sequence such as "kchw".
func ParseOrder4(s string) (Order4, error) {
	up := strings.ToUpper(s)
	for i, name := range order4Names {
		if name == up {
			return Order4(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown 4D order %q", ErrInvalidOrder, s)
}
