package tov

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned for an EOS or solver configuration which cannot be used.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrBracketing is returned when an interpolation radius is not covered by the profile.
	ErrBracketing = errors.New("interpolation bracketing error")
	// ErrTooFewPoints is returned when a table is too short to be normalized.
	ErrTooFewPoints = errors.New("not enough data points")
	// ErrNonPositiveIsoRadius is returned when normalization meets a non positive isotropic radius.
	ErrNonPositiveIsoRadius = errors.New("non positive isotropic radius")
	// ErrAllocation is returned when the sample table cannot grow any further.
	ErrAllocation = errors.New("sample table allocation failed")
)

// IntegrationError wraps a fatal integration failure with the location it happened at.
type IntegrationError struct {
	Step   int
	Radius float64
	State  [stateDim]float64
	Err    error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at step %d (r=%.6e, P=%.6e, M=%.6e): %s", e.Step, e.Radius, e.State[iPressure], e.State[iMass], e.Err)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}
