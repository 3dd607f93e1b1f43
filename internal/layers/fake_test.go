package layers

import (
	"fmt"

	"github.com/born-ml/dla/internal/dla"
)

// recordingDevice is a Device that records every call and completes after a
// fixed number of handshake polls.
type recordingDevice struct {
	calls []string
	cfg   dla.LayerConfig

	input  []int8
	kernel []int8
	bias   []int16

	pollsUntilDone int
	polls          int

	failOn string // call name that returns an error
}

var _ dla.Device = (*recordingDevice)(nil)

func (d *recordingDevice) record(name string) error {
	d.calls = append(d.calls, name)
	if d.failOn == name {
		return fmt.Errorf("%s failed", name)
	}
	return nil
}

func (d *recordingDevice) InitLayer(cfg dla.LayerConfig) error {
	d.cfg = cfg
	d.polls = 0
	return d.record("InitLayer")
}

func (d *recordingDevice) WriteInput(buf []int8) error {
	d.input = append([]int8(nil), buf...)
	return d.record("WriteInput")
}

func (d *recordingDevice) WriteKernel(buf []int8) error {
	d.kernel = append([]int8(nil), buf...)
	return d.record("WriteKernel")
}

func (d *recordingDevice) WriteBias(buf []int16) error {
	d.bias = append([]int16(nil), buf...)
	return d.record("WriteBias")
}

func (d *recordingDevice) KernelDataReady(ready bool) error {
	return d.record(fmt.Sprintf("KernelDataReady(%t)", ready))
}

func (d *recordingDevice) InputDataReady(ready bool) error {
	return d.record(fmt.Sprintf("InputDataReady(%t)", ready))
}

func (d *recordingDevice) HandleHandshake() bool {
	d.calls = append(d.calls, "HandleHandshake")
	d.polls++
	return d.polls >= d.pollsUntilDone
}

func (d *recordingDevice) ReadOutputI8(n int) ([]int8, error) {
	return make([]int8, n), d.record(fmt.Sprintf("ReadOutputI8(%d)", n))
}

func (d *recordingDevice) ReadOutputI16(n int) ([]int16, error) {
	return make([]int16, n), d.record(fmt.Sprintf("ReadOutputI16(%d)", n))
}

func (d *recordingDevice) ReadOutputI32(n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(i)
	}
	return out, d.record(fmt.Sprintf("ReadOutputI32(%d)", n))
}
