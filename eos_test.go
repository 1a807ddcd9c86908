package tov

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestSimplePolytrope(t *testing.T) {
	e, err := NewSimplePolytrope(100, 2)
	if err != nil {
		t.Fatal(err)
	}
	P, ε := e.ColdEOS(0.1)
	if !scalar.EqualWithinRel(P, 1, 1e-14) || !scalar.EqualWithinRel(ε, 10, 1e-14) {
		t.Fatalf("P=%f ε=%f", P, ε)
	}
	if ρ := e.PressureToDensity(P); !scalar.EqualWithinRel(ρ, 0.1, 1e-14) {
		t.Fatalf("inverse failed: ρ=%f", ρ)
	}
	if ρ := e.PressureToDensity(-1e-12); !math.IsNaN(ρ) {
		t.Fatalf("negative pressure should give NaN, got %f", ρ)
	}
	if K, Γ := e.PolytropicParams(5); K != 100 || Γ != 2 {
		t.Fatalf("K=%f Γ=%f", K, Γ)
	}
	ρe, ρb := densities(e, P)
	if !scalar.EqualWithinRel(ρb, 0.1, 1e-14) || !scalar.EqualWithinRel(ρe, 0.1*(1+10), 1e-14) {
		t.Fatalf("ρe=%f ρb=%f", ρe, ρb)
	}
	for _, bad := range [][2]float64{{0, 2}, {1, 1}, {-1, 2}, {1, math.NaN()}} {
		if _, err := NewSimplePolytrope(bad[0], bad[1]); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("K=%f Γ=%f should be invalid", bad[0], bad[1])
		}
	}
}

func TestNewEOSRegionCount(t *testing.T) {
	if _, err := NewEOS(EOSParams{Type: "simple", K: 1, Gammas: []float64{2, 3}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("simple polytrope with two regions should fail: %v", err)
	}
	if _, err := NewEOS(EOSParams{Type: "simple", K: 1}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("simple polytrope without region should fail: %v", err)
	}
	if _, err := NewEOS(EOSParams{Type: "piecewise", K: 1, Gammas: []float64{2, 3}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("piecewise polytrope without bounds should fail: %v", err)
	}
	if _, err := NewEOS(EOSParams{Type: "piecewise", K: 1, Gammas: []float64{2, 3, 2.5}, RhoBounds: []float64{1e-3, 1e-4}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("decreasing bounds should fail: %v", err)
	}
	if _, err := NewEOS(EOSParams{Type: "quark"}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("unknown type should fail: %v", err)
	}
	if _, err := NewEOS(EOSParams{Type: "tabulated"}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("tabulated without table should fail: %v", err)
	}
	e, err := NewEOS(EOSParams{Type: "Simple", K: 1, Gammas: []float64{2}})
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind() != SimplePolytropeEOS {
		t.Fatalf("got %s", e.Kind())
	}
}

func TestPiecewiseContinuity(t *testing.T) {
	gammas := []float64{1.3569, 3.005, 2.988}
	bounds := []float64{1e-4, 8e-4}
	e, err := NewPiecewisePolytrope(0.089, gammas, bounds)
	if err != nil {
		t.Fatal(err)
	}
	if e.Regions() != 3 || e.Kind() != PiecewisePolytropeEOS {
		t.Fatalf("unexpected %s with %d regions", e.Kind(), e.Regions())
	}
	for i, ρ := range bounds {
		Pl, εl := e.ColdEOS(ρ * (1 - 1e-12))
		Pr, εr := e.ColdEOS(ρ)
		if !scalar.EqualWithinRel(Pl, Pr, 1e-9) {
			t.Fatalf("pressure discontinuous at bound %d: %e != %e", i, Pl, Pr)
		}
		if !scalar.EqualWithinRel(εl, εr, 1e-9) {
			t.Fatalf("ε discontinuous at bound %d: %e != %e", i, εl, εr)
		}
		if _, Γ := e.PolytropicParams(ρ * 1.01); Γ != gammas[i+1] {
			t.Fatalf("wrong region above bound %d: Γ=%f", i, Γ)
		}
	}
	for _, ρ := range []float64{1e-6, 5e-4, 3e-3} {
		P, _ := e.ColdEOS(ρ)
		if back := e.PressureToDensity(P); !scalar.EqualWithinRel(back, ρ, 1e-12) {
			t.Fatalf("ρ=%e round trips to %e", ρ, back)
		}
	}
	if K, Γ := e.PolytropicParams(1e-6); K != 0.089 || Γ != gammas[0] {
		t.Fatalf("first region K=%f Γ=%f", K, Γ)
	}
	if !math.IsNaN(e.PressureToDensity(-1)) {
		t.Fatal("negative pressure should give NaN")
	}
}

// polytropeTable tabulates P = K ρ^Γ.
func polytropeTable(K, Γ float64, n int) (rho, press, eps []float64) {
	for i := 0; i < n; i++ {
		ρ := 1e-8 * math.Pow(10, 6*float64(i)/float64(n-1))
		rho = append(rho, ρ)
		press = append(press, K*math.Pow(ρ, Γ))
		eps = append(eps, K*math.Pow(ρ, Γ-1)/(Γ-1))
	}
	return
}

func TestTabulatedEOS(t *testing.T) {
	rho, press, eps := polytropeTable(1, 2, 61)
	e, err := NewTabulatedEOS(rho, press, eps)
	if err != nil {
		t.Fatal(err)
	}
	ref, _ := NewSimplePolytrope(1, 2)
	// A pure power law is exact in log-log, and extended exactly past both ends.
	for _, ρ := range []float64{1e-10, 3.3e-7, 1e-4, 5e-2} {
		P, _ := e.ColdEOS(ρ)
		Pref, εref := ref.ColdEOS(ρ)
		if !scalar.EqualWithinRel(P, Pref, 1e-10) {
			t.Fatalf("P(%e)=%e != %e", ρ, P, Pref)
		}
		if back := e.PressureToDensity(P); !scalar.EqualWithinRel(back, ρ, 1e-10) {
			t.Fatalf("ρ(%e) round trips to %e", ρ, back)
		}
		if _, ε := e.ColdEOS(ρ); ρ > rho[0] && ρ < rho[len(rho)-1] && !scalar.EqualWithinRel(ε, εref, 1e-2) {
			t.Fatalf("ε(%e)=%e != %e", ρ, ε, εref)
		}
		if K, Γ := e.PolytropicParams(ρ); !scalar.EqualWithinRel(Γ, 2, 1e-10) || !scalar.EqualWithinRel(K, 1, 1e-8) {
			t.Fatalf("K=%f Γ=%f at %e", K, Γ, ρ)
		}
	}
	if e.PressureToDensity(0) != 0 || e.PressureToDensity(-1) != 0 {
		t.Fatal("non positive pressure should map to zero density")
	}
	if e.Kind() != TabulatedEOS {
		t.Fatalf("got %s", e.Kind())
	}
}

func TestReadTabulatedEOS(t *testing.T) {
	src := `# rho P eps
1e-6 1e-12 1e-6

1e-5 1e-10 1e-5 0.3
1e-4 1e-8 1e-4
`
	e, err := ReadTabulatedEOS(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Rho) != 3 || e.Press[2] != 1e-8 || e.Eps[1] != 1e-5 {
		t.Fatalf("unexpected table %+v", e)
	}
	for _, bad := range []string{
		"1e-6 1e-12\n1e-5 1e-10 0\n",
		"1e-6 1e-12 0\n",
		"1e-5 1e-10 0\n1e-6 1e-12 0\n",
		"1e-6 abc 0\n1e-5 1e-10 0\n",
	} {
		if _, err := ReadTabulatedEOS(strings.NewReader(bad)); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%q should be invalid, got %v", bad, err)
		}
	}
}

func TestParseEOSKind(t *testing.T) {
	for _, k := range []EOSKind{SimplePolytropeEOS, PiecewisePolytropeEOS, TabulatedEOS} {
		if back, err := ParseEOSKind(k.String()); err != nil || back != k {
			t.Fatalf("%s does not round trip", k)
		}
	}
}
