package tov

import (
	"fmt"
	"math"
	"strings"
)

// EOSKind defines an enum of the supported equations of state.
type EOSKind uint8

const (
	// SimplePolytropeEOS is a single region polytrope P = K ρ^Γ.
	SimplePolytropeEOS EOSKind = iota + 1
	// PiecewisePolytropeEOS is a multi region polytrope (Read et al. 2008).
	PiecewisePolytropeEOS
	// TabulatedEOS is a cold, beta-equilibrium table.
	TabulatedEOS
)

func (k EOSKind) String() string {
	switch k {
	case SimplePolytropeEOS:
		return "Simple"
	case PiecewisePolytropeEOS:
		return "Piecewise"
	case TabulatedEOS:
		return "Tabulated"
	}
	return fmt.Sprintf("EOSKind(%d)", uint8(k))
}

// ParseEOSKind parses an EOS type name.
func ParseEOSKind(s string) (EOSKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "s":
		return SimplePolytropeEOS, nil
	case "piecewise", "p":
		return PiecewisePolytropeEOS, nil
	case "tabulated", "t":
		return TabulatedEOS, nil
	}
	return 0, fmt.Errorf("%w: EOS type %q must be one of Simple, Piecewise or Tabulated", ErrInvalidConfiguration, s)
}

// EOS is the capability interface to a barotropic equation of state.
// The set of implementations is closed: SimplePolytrope, PiecewisePolytrope and Tabulated.
type EOS interface {
	Kind() EOSKind
	// Validate returns ErrInvalidConfiguration if the parameters cannot be used.
	Validate() error
	// PolytropicParams returns the local polytropic constant and index at baryon density ρ.
	PolytropicParams(ρ float64) (K, Γ float64)
	// ColdEOS returns the cold pressure and specific internal energy at baryon density ρ.
	ColdEOS(ρ float64) (P, ε float64)
	// PressureToDensity returns the baryon density at pressure P. NaN or zero signals vacuum.
	PressureToDensity(P float64) float64
	isEOS()
}

// EOSParams is the flat set of EOS parameters as read from a configuration file.
type EOSParams struct {
	Type             string
	K                float64
	Gammas           []float64
	RhoBounds        []float64
	Table            string // path to a tabulated EOS
	Temperature      float64
	ElectronFraction float64
}

// NewEOS builds the EOS described by p. A simple polytrope declaring anything other than
// exactly one region is rejected, as are unusable parameters of any kind.
func NewEOS(p EOSParams) (EOS, error) {
	kind, err := ParseEOSKind(p.Type)
	if err != nil {
		return nil, err
	}
	switch kind {
	case SimplePolytropeEOS:
		if len(p.Gammas) != 1 {
			return nil, fmt.Errorf("%w: simple polytrope needs exactly one region, got %d (use a piecewise polytrope)", ErrInvalidConfiguration, len(p.Gammas))
		}
		e := &SimplePolytrope{K: p.K, Γ: p.Gammas[0]}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		return e, nil
	case PiecewisePolytropeEOS:
		return NewPiecewisePolytrope(p.K, p.Gammas, p.RhoBounds)
	default:
		tab, err := LoadTabulatedEOS(p.Table)
		if err != nil {
			return nil, err
		}
		tab.Temperature = p.Temperature
		tab.ElectronFraction = p.ElectronFraction
		return tab, nil
	}
}

// densities returns the total energy density and baryon density at pressure P.
// Both are NaN when the EOS reports an undefined density.
func densities(e EOS, P float64) (ρEnergy, ρBaryon float64) {
	ρBaryon = e.PressureToDensity(P)
	if math.IsNaN(ρBaryon) {
		return math.NaN(), math.NaN()
	}
	_, ε := e.ColdEOS(ρBaryon)
	return ρBaryon * (1 + ε), ρBaryon
}

// SimplePolytrope is P = K ρ^Γ with ε = P / ((Γ-1) ρ).
type SimplePolytrope struct {
	K, Γ float64
}

// NewSimplePolytrope returns a validated simple polytrope.
func NewSimplePolytrope(K, Γ float64) (*SimplePolytrope, error) {
	e := &SimplePolytrope{K, Γ}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *SimplePolytrope) isEOS() {}

// Kind implements the EOS interface.
func (e *SimplePolytrope) Kind() EOSKind {
	return SimplePolytropeEOS
}

// Validate implements the EOS interface.
func (e *SimplePolytrope) Validate() error {
	if !(e.K > 0) || !(e.Γ > 1) {
		return fmt.Errorf("%w: simple polytrope requires K > 0 and Γ > 1 (K=%g, Γ=%g)", ErrInvalidConfiguration, e.K, e.Γ)
	}
	return nil
}

// PolytropicParams implements the EOS interface.
func (e *SimplePolytrope) PolytropicParams(ρ float64) (K, Γ float64) {
	return e.K, e.Γ
}

// ColdEOS implements the EOS interface.
func (e *SimplePolytrope) ColdEOS(ρ float64) (P, ε float64) {
	P = e.K * math.Pow(ρ, e.Γ)
	ε = e.K * math.Pow(ρ, e.Γ-1) / (e.Γ - 1)
	return
}

// PressureToDensity implements the EOS interface.
func (e *SimplePolytrope) PressureToDensity(P float64) float64 {
	if P < 0 {
		return math.NaN()
	}
	return math.Pow(P/e.K, 1/e.Γ)
}

// PiecewisePolytrope is a polytrope with one (K_i, Γ_i) per density region. Only the first
// K is free: the others follow from continuity of the pressure at the region boundaries,
// and the energy constants a_i from continuity of ε.
type PiecewisePolytrope struct {
	K0        float64
	Gammas    []float64
	RhoBounds []float64 // upper density bound of every region but the last

	k, a, pBounds []float64
}

// NewPiecewisePolytrope returns a validated piecewise polytrope.
func NewPiecewisePolytrope(K0 float64, gammas, rhoBounds []float64) (*PiecewisePolytrope, error) {
	e := &PiecewisePolytrope{K0: K0, Gammas: gammas, RhoBounds: rhoBounds}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.k = make([]float64, len(gammas))
	e.a = make([]float64, len(gammas))
	e.pBounds = make([]float64, len(rhoBounds))
	e.k[0] = K0
	for i := 1; i < len(gammas); i++ {
		ρi := rhoBounds[i-1]
		e.k[i] = e.k[i-1] * math.Pow(ρi, gammas[i-1]-gammas[i])
		e.a[i] = e.a[i-1] + e.k[i-1]*math.Pow(ρi, gammas[i-1]-1)/(gammas[i-1]-1) - e.k[i]*math.Pow(ρi, gammas[i]-1)/(gammas[i]-1)
	}
	for i, ρi := range rhoBounds {
		e.pBounds[i] = e.k[i] * math.Pow(ρi, gammas[i])
	}
	return e, nil
}

func (e *PiecewisePolytrope) isEOS() {}

// Kind implements the EOS interface.
func (e *PiecewisePolytrope) Kind() EOSKind {
	return PiecewisePolytropeEOS
}

// Regions returns the number of polytropic regions.
func (e *PiecewisePolytrope) Regions() int {
	return len(e.Gammas)
}

// Validate implements the EOS interface.
func (e *PiecewisePolytrope) Validate() error {
	if len(e.Gammas) == 0 {
		return fmt.Errorf("%w: piecewise polytrope needs at least one region", ErrInvalidConfiguration)
	}
	if len(e.RhoBounds) != len(e.Gammas)-1 {
		return fmt.Errorf("%w: %d regions need %d density bounds, got %d", ErrInvalidConfiguration, len(e.Gammas), len(e.Gammas)-1, len(e.RhoBounds))
	}
	if !(e.K0 > 0) {
		return fmt.Errorf("%w: piecewise polytrope requires K > 0 (K=%g)", ErrInvalidConfiguration, e.K0)
	}
	for i, Γ := range e.Gammas {
		if !(Γ > 1) {
			return fmt.Errorf("%w: Γ[%d]=%g must be larger than 1", ErrInvalidConfiguration, i, Γ)
		}
	}
	for i, ρ := range e.RhoBounds {
		if !(ρ > 0) || (i > 0 && ρ <= e.RhoBounds[i-1]) {
			return fmt.Errorf("%w: density bounds must be positive and increasing (bound[%d]=%g)", ErrInvalidConfiguration, i, ρ)
		}
	}
	return nil
}

func (e *PiecewisePolytrope) region(ρ float64) int {
	for i, bound := range e.RhoBounds {
		if ρ < bound {
			return i
		}
	}
	return len(e.Gammas) - 1
}

// PolytropicParams implements the EOS interface.
func (e *PiecewisePolytrope) PolytropicParams(ρ float64) (K, Γ float64) {
	i := e.region(ρ)
	return e.k[i], e.Gammas[i]
}

// ColdEOS implements the EOS interface.
func (e *PiecewisePolytrope) ColdEOS(ρ float64) (P, ε float64) {
	i := e.region(ρ)
	Γ := e.Gammas[i]
	P = e.k[i] * math.Pow(ρ, Γ)
	ε = e.a[i] + e.k[i]*math.Pow(ρ, Γ-1)/(Γ-1)
	return
}

// PressureToDensity implements the EOS interface.
func (e *PiecewisePolytrope) PressureToDensity(P float64) float64 {
	if P < 0 {
		return math.NaN()
	}
	i := len(e.Gammas) - 1
	for j, bound := range e.pBounds {
		if P < bound {
			i = j
			break
		}
	}
	return math.Pow(P/e.k[i], 1/e.Gammas[i])
}
