package dla

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrBankOverflow    = errors.New("tensors exceed accelerator SRAM capacity")
	ErrInvalidGeometry = errors.New("invalid convolution geometry")
	ErrState           = errors.New("operation not allowed in current device state")
	ErrConfig          = errors.New("invalid layer configuration")
)

// ConfigError reports a layer or tensor parameter the accelerator cannot
// accept. It matches ErrConfig with errors.Is.
type ConfigError struct {
	Field   string // Parameter name (e.g., "kernels", "input_size.width")
	Details string
	Err     error // Underlying cause, if any
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Field, e.Details, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Field, e.Details)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes every ConfigError match ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// CapacityError reports a buffer whose length disagrees with the bank it is
// written to or read from.
type CapacityError struct {
	Region   string // "input", "kernel", "output" or "bias"
	Got      int    // Bytes requested
	Want     int    // Bytes the layer configuration expects, 0 if unconstrained
	Capacity int    // Bytes available in the region
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	if e.Want > 0 && e.Got != e.Want {
		return fmt.Sprintf("%s bank: buffer is %d bytes, layer expects %d", e.Region, e.Got, e.Want)
	}
	return fmt.Sprintf("%s bank: %d bytes exceed capacity %d", e.Region, e.Got, e.Capacity)
}

// GroupError reports a grouped convolution whose channel or kernel counts
// are not evenly divisible by the group count. It matches ErrConfig.
type GroupError struct {
	Groups   int
	Channels int
	Kernels  int
}

// Error implements the error interface.
func (e *GroupError) Error() string {
	return fmt.Sprintf("grouped conv: %d channels and %d kernels cannot be split into %d groups",
		e.Channels, e.Kernels, e.Groups)
}

// Is makes every GroupError match ErrConfig.
func (e *GroupError) Is(target error) bool { return target == ErrConfig }

// ValidationError describes an inconsistent bank layout.
type ValidationError struct {
	Type    string // Type of error (e.g., "region_overlap", "out_of_bounds")
	Region  string // Primary region involved
	Region2 string // Secondary region (for overlap errors)
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Region2 != "" {
		return fmt.Sprintf("%s: regions %q and %q: %s", e.Type, e.Region, e.Region2, e.Details)
	}
	if e.Region != "" {
		return fmt.Sprintf("%s: region %q: %s", e.Type, e.Region, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
