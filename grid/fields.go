package grid

import (
	"gonum.org/v1/gonum/floats"
)

// Fields holds the hydrodynamic and metric variables on every grid point.
type Fields struct {
	Rho, Press, Eps              []float64
	Alp, Betax, Betay, Betaz     []float64
	Gxx, Gxy, Gxz, Gyy, Gyz, Gzz []float64
	Kxx, Kxy, Kxz, Kyy, Kyz, Kzz []float64
	Vel                          []float64 // x, y then z components, each of Len points
	WLorentz                     []float64

	n int
}

// NewFields returns zeroed fields for n grid points.
func NewFields(n int) *Fields {
	f := &Fields{n: n}
	for _, c := range f.all() {
		*c.data = make([]float64, n)
	}
	f.Vel = make([]float64, 3*n)
	return f
}

// Len returns the number of grid points.
func (f *Fields) Len() int {
	return f.n
}

// VelX returns the x component of the velocity.
func (f *Fields) VelX() []float64 {
	return f.Vel[:f.n]
}

// VelY returns the y component of the velocity.
func (f *Fields) VelY() []float64 {
	return f.Vel[f.n : 2*f.n]
}

// VelZ returns the z component of the velocity.
func (f *Fields) VelZ() []float64 {
	return f.Vel[2*f.n:]
}

type column struct {
	name    string
	data    *[]float64
	evolved bool // kept on past time levels
}

// all returns every scalar field. The velocity is handled separately.
func (f *Fields) all() []column {
	return []column{
		{"rho", &f.Rho, true},
		{"press", &f.Press, false},
		{"eps", &f.Eps, true},
		{"alp", &f.Alp, false},
		{"betax", &f.Betax, false},
		{"betay", &f.Betay, false},
		{"betaz", &f.Betaz, false},
		{"gxx", &f.Gxx, true},
		{"gxy", &f.Gxy, true},
		{"gxz", &f.Gxz, true},
		{"gyy", &f.Gyy, true},
		{"gyz", &f.Gyz, true},
		{"gzz", &f.Gzz, true},
		{"kxx", &f.Kxx, false},
		{"kxy", &f.Kxy, false},
		{"kxz", &f.Kxz, false},
		{"kyy", &f.Kyy, false},
		{"kyz", &f.Kyz, false},
		{"kzz", &f.Kzz, false},
		{"w_lorentz", &f.WLorentz, true},
	}
}

// Range is the extent of the values of one field.
type Range struct {
	Name     string
	Min, Max float64
}

// Summary returns the range of every field.
func (f *Fields) Summary() []Range {
	var out []Range
	add := func(name string, data []float64) {
		if len(data) == 0 {
			return
		}
		out = append(out, Range{name, floats.Min(data), floats.Max(data)})
	}
	for _, c := range f.all() {
		add(c.name, *c.data)
	}
	add("velx", f.VelX())
	add("vely", f.VelY())
	add("velz", f.VelZ())
	return out
}
