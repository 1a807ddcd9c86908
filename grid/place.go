package grid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	tov "github.com/dboyer7/NRml-TOV"
)

// ErrTimeLevels is returned for a number of time levels other than 1, 2 or 3.
var ErrTimeLevels = errors.New("unsupported number of time levels")

// tiny keeps the specific internal energy finite in vacuum.
const tiny = 1e-30

// Place evaluates the star on every point of the grid, using up to workers goroutines
// (one per CPU if workers is not positive). Each goroutine fills one z slab.
func Place(ctx context.Context, star tov.Interpolator, g *Grid, workers int) (*Fields, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	f := NewFields(g.Size())
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for k, z := range g.Z {
		k, z := k, z
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j, y := range g.Y {
				for i, x := range g.X {
					r := math.Sqrt(x*x + y*y + z*z)
					pt, err := star.Interpolate(r)
					if err != nil {
						return fmt.Errorf("grid point (%g, %g, %g): %w", x, y, z, err)
					}
					f.set(g.Index(i, j, k), pt)
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// set stores a static, conformally flat star at point i. The shift, extrinsic curvature
// and velocity stay zero.
func (f *Fields) set(i int, pt tov.Point) {
	f.Rho[i] = pt.RhoBaryon
	f.Press[i] = pt.Pressure
	f.Eps[i] = math.Max(pt.RhoEnergy/(pt.RhoBaryon+tiny)-1, 0)
	f.Alp[i] = math.Sqrt(pt.ExpNu)
	f.Gxx[i], f.Gyy[i], f.Gzz[i] = pt.Exp4Phi, pt.Exp4Phi, pt.Exp4Phi
	vx, vy, vz := f.VelX()[i], f.VelY()[i], f.VelZ()[i]
	v2 := f.Gxx[i]*vx*vx + f.Gyy[i]*vy*vy + f.Gzz[i]*vz*vz +
		2*(f.Gxy[i]*vx*vy+f.Gxz[i]*vx*vz+f.Gyz[i]*vy*vz)
	f.WLorentz[i] = 1 / math.Sqrt(1-v2)
}

// TimeLevels returns n time levels, the first being current. Past levels hold copies of
// the evolved variables (density, energy, metric, velocity and Lorentz factor), each
// copied from the level above it.
func TimeLevels(current *Fields, n int) ([]*Fields, error) {
	if n < 1 || n > 3 {
		return nil, fmt.Errorf("%w: %d", ErrTimeLevels, n)
	}
	levels := []*Fields{current}
	for l := 1; l < n; l++ {
		levels = append(levels, levels[l-1].past())
	}
	return levels, nil
}

// past returns a copy of the evolved variables of f.
func (f *Fields) past() *Fields {
	p := &Fields{n: f.n}
	src := f.all()
	for i, c := range p.all() {
		if src[i].evolved && *src[i].data != nil {
			*c.data = append([]float64(nil), *src[i].data...)
		}
	}
	p.Vel = append([]float64(nil), f.Vel...)
	return p
}
