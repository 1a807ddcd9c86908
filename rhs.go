package tov

import "math"

// Indices of the integrated state vector.
const (
	iPressure = iota
	iNu
	iMass
	iRIso
	stateDim
)

// Derivatives returns dy/dr of the TOV system at Schwarzschild radius r for the state y
// (P, ν, M, R_iso) and the total energy density ρe at that pressure.
// At the origin only the isotropic radius grows, which removes the coordinate singularity.
func Derivatives(r float64, y []float64, ρe float64) (dy [stateDim]float64) {
	if r == 0 {
		dy[iRIso] = 1
		return
	}
	P, M, rIso := y[iPressure], y[iMass], y[iRIso]
	μ := 2 * M / r
	source := 2*M/r + 8*math.Pi*r*r*P
	dy[iPressure] = -(ρe + P) * source / (2 * r * (1 - μ))
	dy[iNu] = source / (r * (1 - μ))
	dy[iMass] = 4 * math.Pi * r * r * ρe
	dy[iRIso] = rIso / (r * math.Sqrt(1-μ))
	return
}

// lengthScale returns |R_iso / (dR_iso/dr)| and whether it is well defined.
func lengthScale(rIso, dRIso float64) (float64, bool) {
	if rIso <= 0 || dRIso == 0 {
		return 0, false
	}
	L := math.Abs(rIso / dRIso)
	if math.IsNaN(L) || math.IsInf(L, 0) {
		return 0, false
	}
	return L, true
}
