package integrator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMethod is returned when a method selector cannot be parsed.
	ErrUnknownMethod = errors.New("unknown integration method")
	// ErrIncompatibleMethod is returned when the adaptive flag disagrees with the method.
	ErrIncompatibleMethod = errors.New("integration method incompatible with step mode")
	// ErrStepFailed is returned when a step cannot be completed.
	ErrStepFailed = errors.New("integration step failed")
)

// Method defines an enum of the explicit Runge-Kutta schemes.
type Method uint8

const (
	// Euler is the first order forward Euler scheme.
	Euler Method = iota + 1
	// Heun is the second order Heun (RK2) scheme.
	Heun
	// RK4 is the classical fourth order Runge-Kutta scheme.
	RK4
	// RKF45 is the embedded Runge-Kutta-Fehlberg 4(5) scheme.
	RKF45
	// CashKarp is the embedded Cash-Karp 4(5) scheme.
	CashKarp
	// DormandPrince5 is the embedded Dormand-Prince 5(4) scheme.
	DormandPrince5
	// DormandPrince8 is the embedded Prince-Dormand 8(7) scheme with 13 stages.
	DormandPrince8
)

func (m Method) String() string {
	switch m {
	case Euler:
		return "Euler"
	case Heun:
		return "RK2"
	case RK4:
		return "RK4"
	case RKF45:
		return "ARKF"
	case CashKarp:
		return "ACK"
	case DormandPrince5:
		return "ADP5"
	case DormandPrince8:
		return "ADP8"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// Adaptive returns whether this method carries an embedded error estimate.
func (m Method) Adaptive() bool {
	switch m {
	case RKF45, CashKarp, DormandPrince5, DormandPrince8:
		return true
	}
	return false
}

// Valid returns whether m is one of the known methods.
func (m Method) Valid() bool {
	return m >= Euler && m <= DormandPrince8
}

// ParseMethod parses a method selector, accepting both the long names and the short
// selectors (e.g. "ARKF").
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "E", "EULER":
		return Euler, nil
	case "RK2", "HEUN":
		return Heun, nil
	case "RK4":
		return RK4, nil
	case "ARKF", "RKF45":
		return RKF45, nil
	case "ACK", "CASHKARP":
		return CashKarp, nil
	case "ADP5", "DP5", "DORMANDPRINCE":
		return DormandPrince5, nil
	case "ADP8", "DP8", "RK8PD":
		return DormandPrince8, nil
	}
	return 0, fmt.Errorf("%w: %q (use one of Euler, RK2, RK4, ARKF, ACK, ADP5, ADP8)", ErrUnknownMethod, s)
}

// CheckMode returns an error if an adaptive method is used without adaptive stepping,
// or a fixed method is used with it.
func CheckMode(m Method, adaptive bool) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownMethod, m)
	}
	if adaptive && !m.Adaptive() {
		return fmt.Errorf("%w: %s has no error estimate for adaptive stepping", ErrIncompatibleMethod, m)
	}
	if !adaptive && m.Adaptive() {
		return fmt.Errorf("%w: %s requires adaptive stepping", ErrIncompatibleMethod, m)
	}
	return nil
}
