package integrator

import (
	"fmt"
	"math"
)

const defaultMaxSubsteps = 1000000

// Func is the right hand side of an ODE system: it returns dy/dx at x for state y.
// Implementations must not retain or modify y.
type Func func(x float64, y []float64) []float64

// Config configures a Driver. Zero values are replaced by sensible defaults in NewDriver.
type Config struct {
	Method      Method
	InitialStep float64 // first trial step of an adaptive method
	MinStep     float64 // absolute minimum step of an adaptive method
	MaxStep     float64 // absolute maximum step of an adaptive method (0 = unbounded)
	AbsTol      float64
	RelTol      float64
	Safety      float64 // safety factor on the step adjustment
	MaxAdjust   float64 // largest factor by which a step may grow
	MinAdjust   float64 // smallest factor by which a step may shrink
	MaxSubsteps int     // bound on sub-steps within a single Apply call

	// A step is rejected when its error ratio exceeds UpperTolerance (default 1) and the
	// next step grows only when the ratio is below LowerTolerance (default 0.5).
	UpperTolerance float64
	LowerTolerance float64
	// The relative tolerance applies to YScale*|y| + DYScale*h*|y'|. When both are zero,
	// YScale defaults to 1.
	YScale, DYScale float64
}

// Stats stores the cumulative counters of a Driver.
type Stats struct {
	Steps, Rejected, Evaluations uint64
	LastStep                     float64
}

// Driver advances a state vector with one of the explicit Runge-Kutta methods.
// It is not safe for concurrent use.
type Driver struct {
	cfg   Config
	tab   *tableau
	h     float64
	k     [][]float64
	tmp   []float64
	yNew  []float64
	yErr  []float64
	stats Stats
}

// NewDriver returns a new Driver for a system of dimension dim.
func NewDriver(cfg Config, dim int) (*Driver, error) {
	tab, ok := tableaus[cfg.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, cfg.Method)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid system dimension %d", dim)
	}
	if cfg.Safety <= 0 {
		cfg.Safety = 0.9
	}
	if cfg.MaxAdjust <= 1 {
		cfg.MaxAdjust = 5
	}
	if cfg.MinAdjust <= 0 || cfg.MinAdjust >= 1 {
		cfg.MinAdjust = 0.2
	}
	if cfg.MaxSubsteps <= 0 {
		cfg.MaxSubsteps = defaultMaxSubsteps
	}
	if cfg.UpperTolerance <= 0 {
		cfg.UpperTolerance = 1
	}
	if cfg.LowerTolerance <= 0 {
		cfg.LowerTolerance = 0.5
	}
	if cfg.LowerTolerance > cfg.UpperTolerance {
		return nil, fmt.Errorf("lower error tolerance %g above the upper tolerance %g", cfg.LowerTolerance, cfg.UpperTolerance)
	}
	if cfg.YScale < 0 || cfg.DYScale < 0 {
		return nil, fmt.Errorf("negative error scalers %g and %g", cfg.YScale, cfg.DYScale)
	}
	if cfg.YScale == 0 && cfg.DYScale == 0 {
		cfg.YScale = 1
	}
	if cfg.Method.Adaptive() {
		if cfg.AbsTol <= 0 && cfg.RelTol <= 0 {
			return nil, fmt.Errorf("%w: %s requires a positive error tolerance", ErrIncompatibleMethod, cfg.Method)
		}
		if cfg.InitialStep <= 0 {
			return nil, fmt.Errorf("%w: %s requires a positive initial step", ErrIncompatibleMethod, cfg.Method)
		}
		if cfg.MaxStep > 0 && cfg.MinStep > cfg.MaxStep {
			return nil, fmt.Errorf("min step %g larger than max step %g", cfg.MinStep, cfg.MaxStep)
		}
	}
	d := &Driver{cfg: cfg, tab: tab, h: cfg.InitialStep}
	d.k = make([][]float64, tab.stages())
	d.tmp = make([]float64, dim)
	d.yNew = make([]float64, dim)
	d.yErr = make([]float64, dim)
	return d, nil
}

// Method returns the method of this driver.
func (d *Driver) Method() Method {
	return d.cfg.Method
}

// Stats returns the cumulative counters.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Apply advances y in place from x0 to x1 and returns the reached position.
// A fixed method takes exactly one step of size x1-x0. An adaptive method sub-steps
// with error control and always lands on x1 unless it fails.
func (d *Driver) Apply(f Func, x0, x1 float64, y []float64) (float64, error) {
	if len(y) != len(d.tmp) {
		return x0, fmt.Errorf("state of dimension %d given to a driver of dimension %d", len(y), len(d.tmp))
	}
	if x1 <= x0 {
		return x0, nil
	}
	if !d.cfg.Method.Adaptive() {
		h := x1 - x0
		d.step(f, x0, h, y)
		if !finite(d.yNew) {
			return x0, fmt.Errorf("%w: %s produced a non finite state at x=%g with h=%g", ErrStepFailed, d.cfg.Method, x0, h)
		}
		copy(y, d.yNew)
		d.stats.Steps++
		d.stats.LastStep = h
		return x1, nil
	}

	x := x0
	h := d.clamp(d.h)
	for n := 0; x < x1; n++ {
		if n >= d.cfg.MaxSubsteps {
			return x, fmt.Errorf("%w: no convergence after %d sub-steps between x=%g and x=%g", ErrStepFailed, n, x0, x1)
		}
		hTry := h
		last := false
		if x+hTry >= x1 {
			hTry = x1 - x
			last = true
		}
		d.step(f, x, hTry, y)
		if !finite(d.yNew) {
			if hTry <= d.cfg.MinStep {
				return x, fmt.Errorf("%w: %s produced a non finite state at x=%g with minimum step %g", ErrStepFailed, d.cfg.Method, x, hTry)
			}
			d.stats.Rejected++
			h = d.clamp(hTry * d.cfg.MinAdjust)
			continue
		}
		ratio := d.errorRatio(y, hTry)
		if ratio > d.cfg.UpperTolerance && hTry > d.cfg.MinStep {
			d.stats.Rejected++
			h = d.clamp(hTry * d.shrink(ratio))
			continue
		}
		copy(y, d.yNew)
		if last {
			x = x1
		} else {
			x += hTry
		}
		d.stats.Steps++
		d.stats.LastStep = hTry
		if next := d.clamp(hTry * d.grow(ratio)); !last || next > h {
			h = next
		}
	}
	d.h = h
	return x, nil
}

// step computes one Runge-Kutta step into d.yNew, and the error estimate into d.yErr.
func (d *Driver) step(f Func, x, h float64, y []float64) {
	t := d.tab
	for s := 0; s < t.stages(); s++ {
		copy(d.tmp, y)
		for l, a := range t.a[s] {
			if a == 0 {
				continue
			}
			for i := range d.tmp {
				d.tmp[i] += h * a * d.k[l][i]
			}
		}
		d.k[s] = f(x+t.c[s]*h, d.tmp)
		d.stats.Evaluations++
	}
	for i := range y {
		d.yNew[i] = y[i]
		d.yErr[i] = 0
		for s := 0; s < t.stages(); s++ {
			d.yNew[i] += h * t.b[s] * d.k[s][i]
			if t.bErr != nil {
				d.yErr[i] += h * (t.b[s] - t.bErr[s]) * d.k[s][i]
			}
		}
	}
}

// errorRatio returns the largest ratio of the local error estimate of a step h to the tolerance.
func (d *Driver) errorRatio(y []float64, h float64) float64 {
	ratio := 0.0
	for i, e := range d.yErr {
		scaled := d.cfg.YScale*math.Max(math.Abs(y[i]), math.Abs(d.yNew[i])) + d.cfg.DYScale*h*math.Abs(d.k[0][i])
		scale := d.cfg.AbsTol + d.cfg.RelTol*scaled
		if scale <= 0 {
			continue
		}
		if r := math.Abs(e) / scale; r > ratio {
			ratio = r
		}
	}
	return ratio
}

func (d *Driver) shrink(ratio float64) float64 {
	return math.Max(d.cfg.Safety*math.Pow(ratio, -1/float64(d.tab.order)), d.cfg.MinAdjust)
}

func (d *Driver) grow(ratio float64) float64 {
	if ratio == 0 {
		return d.cfg.MaxAdjust
	}
	if ratio >= d.cfg.LowerTolerance {
		return 1
	}
	fac := d.cfg.Safety * math.Pow(ratio, -1/float64(d.tab.order+1))
	return math.Max(1, math.Min(fac, d.cfg.MaxAdjust))
}

func (d *Driver) clamp(h float64) float64 {
	if d.cfg.MaxStep > 0 && h > d.cfg.MaxStep {
		h = d.cfg.MaxStep
	}
	if h < d.cfg.MinStep {
		h = d.cfg.MinStep
	}
	return h
}

func finite(y []float64) bool {
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
