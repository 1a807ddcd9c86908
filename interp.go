package tov

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Point is a profile evaluated at a given isotropic radius.
type Point struct {
	RSchw, RhoEnergy, RhoBaryon, Pressure, Mass, ExpNu, Exp4Phi float64
}

// Interpolator evaluates a star at any isotropic radius.
type Interpolator interface {
	Interpolate(rIso float64) (Point, error)
	SurfaceRadius() float64
	SurfaceIsoRadius() float64
	SurfaceMass() float64
}

var _ Interpolator = (*Profile)(nil)

// Interpolate returns the profile at the isotropic radius rIso. The profile is even in
// the radius. Beyond the surface the vacuum Schwarzschild solution is returned; inside,
// a Lagrange polynomial through StencilWidth rows which never extend past the surface.
func (p *Profile) Interpolate(rIso float64) (Point, error) {
	r := math.Abs(rIso)
	if math.IsInf(r, 1) {
		return Point{}, fmt.Errorf("%w: r=%g is not a finite radius", ErrBracketing, rIso)
	}
	if r > p.SurfaceIsoRadius() {
		return p.exterior(r), nil
	}
	lo, width, err := p.Stencil(r)
	if err != nil {
		return Point{}, err
	}
	w := lagrangeWeights(p.RIso[lo:lo+width], r)
	at := func(col []float64) float64 {
		return floats.Dot(w, col[lo:lo+width])
	}
	return Point{
		RSchw:     at(p.R),
		RhoEnergy: at(p.RhoEnergy),
		RhoBaryon: at(p.RhoBaryon),
		Pressure:  at(p.Pressure),
		Mass:      at(p.Mass),
		ExpNu:     at(p.ExpNu),
		Exp4Phi:   at(p.Exp4Phi),
	}, nil
}

// exterior returns the vacuum solution at isotropic radius r, which must be positive.
func (p *Profile) exterior(r float64) Point {
	M := p.SurfaceMass()
	rSchw := r + M + M*M/(4*r)
	ratio := rSchw / r
	return Point{
		RSchw:   rSchw,
		Mass:    M,
		ExpNu:   1 - 2*M/rSchw,
		Exp4Phi: ratio * ratio,
	}
}

// Stencil returns the first row and the number of rows used to interpolate at the
// isotropic radius r. The rows are centered on the closest row and lie within [0, Surface].
func (p *Profile) Stencil(r float64) (lo, width int, err error) {
	idx, err := bisect(p.RIso[:p.Surface+1], math.Abs(r))
	if err != nil {
		return 0, 0, err
	}
	width = p.StencilWidth
	if width > p.Surface+1 {
		width = p.Surface + 1
	}
	lo = idx - width/2
	if lo+width-1 > p.Surface {
		lo = p.Surface - width + 1
	}
	if lo < 0 {
		lo = 0
	}
	return lo, width, nil
}

// bisect returns the index of xs closest to x, where xs is strictly increasing and
// brackets x.
func bisect(xs []float64, x float64) (int, error) {
	n := len(xs)
	if n == 0 || math.IsNaN(x) || x < xs[0] || x > xs[n-1] {
		return 0, fmt.Errorf("%w: r=%g outside of the tabulated range", ErrBracketing, x)
	}
	if n == 1 {
		return 0, nil
	}
	lo, hi := 0, n-1
	for iter := 0; hi-lo > 1; iter++ {
		if iter > n {
			return 0, fmt.Errorf("%w: bisection did not converge for r=%g", ErrBracketing, x)
		}
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	if x-xs[lo] <= xs[hi]-x {
		return lo, nil
	}
	return hi, nil
}

// lagrangeWeights returns the weights of the Lagrange polynomial through the nodes xs
// evaluated at x.
func lagrangeWeights(xs []float64, x float64) []float64 {
	w := make([]float64, len(xs))
	for j, xj := range xs {
		w[j] = 1
		for k, xk := range xs {
			if k != j {
				w[j] *= (x - xk) / (xj - xk)
			}
		}
	}
	return w
}
