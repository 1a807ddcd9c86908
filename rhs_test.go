package tov

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestDerivativesOrigin(t *testing.T) {
	dy := Derivatives(0, []float64{1, 0, 0, 0}, 2)
	if dy != [stateDim]float64{0, 0, 0, 1} {
		t.Fatalf("unexpected derivatives at the origin: %v", dy)
	}
}

func TestDerivatives(t *testing.T) {
	r, P, M, rIso, ρe := 2.0, 1e-3, 0.5, 1.5, 0.01
	dy := Derivatives(r, []float64{P, 0.2, M, rIso}, ρe)
	μ := 2 * M / r
	src := μ + 8*math.Pi*r*r*P
	exp := [stateDim]float64{
		-(ρe + P) * src / (2 * r * (1 - μ)),
		src / (r * (1 - μ)),
		4 * math.Pi * r * r * ρe,
		rIso / (r * math.Sqrt(1-μ)),
	}
	for i := range exp {
		if !scalar.EqualWithinRel(dy[i], exp[i], 1e-14) {
			t.Fatalf("component %d: %e != %e", i, dy[i], exp[i])
		}
	}
	// In vacuum, the mass is constant and the pressure gradient is zero.
	dy = Derivatives(r, []float64{0, 0.2, M, rIso}, 0)
	if dy[iMass] != 0 || dy[iPressure] != 0 {
		t.Fatalf("vacuum derivatives %v", dy)
	}
}

func TestLengthScale(t *testing.T) {
	if _, ok := lengthScale(0, 1); ok {
		t.Fatal("zero isotropic radius has no length scale")
	}
	if _, ok := lengthScale(1, 0); ok {
		t.Fatal("zero derivative has no length scale")
	}
	if L, ok := lengthScale(2, -4); !ok || L != 0.5 {
		t.Fatalf("L=%f ok=%v", L, ok)
	}
	if _, ok := lengthScale(1, math.NaN()); ok {
		t.Fatal("NaN derivative has no length scale")
	}
}
