package tov

import (
	"fmt"
	"math"
)

// Profile is a normalized TOV solution. It is not modified after Normalize returns and
// may be shared between goroutines.
type Profile struct {
	R, RhoEnergy, RhoBaryon, Pressure, Mass []float64
	ExpNu, Exp4Phi, RIso                    []float64

	Surface      int // index of the last row inside the star
	StencilWidth int // number of rows used by the interpolation
	Complete     bool
	Steps        int
}

// surfaceIndex returns the last row with a positive energy density before the first
// row without matter, or the last row when all rows hold matter.
func surfaceIndex(t *Table) int {
	for i := 1; i < t.Len(); i++ {
		if !(t.RhoEnergy[i] > 0) {
			return i - 1
		}
	}
	return t.Len() - 1
}

// Normalize rescales the isotropic radius and the lapse of a raw table so that they match
// the exterior Schwarzschild solution at the surface, and derives the conformal factor.
// The profile takes ownership of the table columns.
func Normalize(t *Table, stencil int) (*Profile, error) {
	n := t.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: cannot normalize a table of %d rows", ErrTooFewPoints, n)
	}
	if stencil < 1 {
		return nil, fmt.Errorf("%w: stencil width %d", ErrInvalidConfiguration, stencil)
	}
	S := surfaceIndex(t)
	if S < 1 {
		return nil, fmt.Errorf("%w: no matter beyond the center", ErrTooFewPoints)
	}
	R, M, rIsoS, νS := t.R[S], t.Mass[S], t.RIso[S], t.Nu[S]
	if rIsoS <= 0 {
		return nil, fmt.Errorf("%w: R_iso=%g at the surface (row %d)", ErrNonPositiveIsoRadius, rIsoS, S)
	}
	if !(R > 2*M) {
		return nil, fmt.Errorf("%w: surface radius %g is within 2M=%g", ErrInvalidConfiguration, R, 2*M)
	}
	normalize := 0.5 * (math.Sqrt(R*(R-2*M)) + R - M) / rIsoS
	lnLapse := math.Log(1 - 2*M/R)

	exp4φ := make([]float64, n)
	for i := 0; i < n; i++ {
		t.RIso[i] *= normalize
		t.Nu[i] = math.Exp(t.Nu[i] - νS + lnLapse)
		if i == 0 {
			continue
		}
		if t.RIso[i] <= 0 {
			return nil, fmt.Errorf("%w: R_iso=%g at row %d (r=%g)", ErrNonPositiveIsoRadius, t.RIso[i], i, t.R[i])
		}
		ratio := t.R[i] / t.RIso[i]
		exp4φ[i] = ratio * ratio
	}
	// The ratio is 0/0 at the center: use its limit.
	exp4φ[0] = exp4φ[1]

	return &Profile{
		R:            t.R,
		RhoEnergy:    t.RhoEnergy,
		RhoBaryon:    t.RhoBaryon,
		Pressure:     t.Pressure,
		Mass:         t.Mass,
		ExpNu:        t.Nu,
		Exp4Phi:      exp4φ,
		RIso:         t.RIso,
		Surface:      S,
		StencilWidth: stencil,
		Complete:     true,
		Steps:        n - 1,
	}, nil
}

// Len returns the number of rows of the profile, including those past the surface.
func (p *Profile) Len() int {
	return len(p.R)
}

// SurfaceRadius returns the Schwarzschild radius of the surface.
func (p *Profile) SurfaceRadius() float64 {
	return p.R[p.Surface]
}

// SurfaceIsoRadius returns the isotropic radius of the surface.
func (p *Profile) SurfaceIsoRadius() float64 {
	return p.RIso[p.Surface]
}

// SurfaceMass returns the gravitational mass of the star.
func (p *Profile) SurfaceMass() float64 {
	return p.Mass[p.Surface]
}
