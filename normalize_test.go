package tov

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// syntheticTable returns a table of n rows with matter in the first surface+1 rows.
func syntheticTable(n, surface int) *Table {
	t, _ := NewTable(n)
	for i := 0; i < n; i++ {
		r := 0.1 * float64(i)
		row := Row{R: r, Mass: 0.01 * r * r * r, Nu: 0.05 * r * r, RIso: 0.9 * r}
		if i > surface {
			row.Mass = 0.01 * math.Pow(0.1*float64(surface), 3)
		} else {
			row.Pressure = 1 - r/(0.1*float64(surface+1))
			row.RhoBaryon = row.Pressure
			row.RhoEnergy = 1.1 * row.Pressure
		}
		t.Append(row)
	}
	return t
}

func TestNormalize(t *testing.T) {
	tbl := syntheticTable(12, 8)
	νS, rIsoS := tbl.Nu[8], tbl.RIso[8]
	p, err := Normalize(tbl, 5)
	if err != nil {
		t.Fatal(err)
	}
	if p.Surface != 8 {
		t.Fatalf("surface at %d", p.Surface)
	}
	R, M := p.SurfaceRadius(), p.SurfaceMass()
	if exp := 1 - 2*M/R; !scalar.EqualWithinRel(p.ExpNu[8], exp, 1e-12) {
		t.Fatalf("surface lapse %.15f != %.15f", p.ExpNu[8], exp)
	}
	// The isotropic surface radius is the one of the exterior Schwarzschild solution.
	rIso := p.SurfaceIsoRadius()
	if rSchw := rIso * math.Pow(1+M/(2*rIso), 2); !scalar.EqualWithinRel(rSchw, R, 1e-12) {
		t.Fatalf("exterior radius %.15f != %.15f", rSchw, R)
	}
	scale := rIso / rIsoS
	for i := 1; i < p.Len(); i++ {
		if !scalar.EqualWithinRel(p.RIso[i], 0.9*0.1*float64(i)*scale, 1e-12) {
			t.Fatalf("row %d not rescaled uniformly", i)
		}
		if exp := math.Pow(p.R[i]/p.RIso[i], 2); !scalar.EqualWithinRel(p.Exp4Phi[i], exp, 1e-14) {
			t.Fatalf("row %d: exp4φ=%f != %f", i, p.Exp4Phi[i], exp)
		}
		νi := 0.05 * p.R[i] * p.R[i]
		if exp := math.Exp(νi - νS + math.Log(1-2*M/R)); !scalar.EqualWithinRel(p.ExpNu[i], exp, 1e-12) {
			t.Fatalf("row %d: expν=%f != %f", i, p.ExpNu[i], exp)
		}
	}
	if p.Exp4Phi[0] != p.Exp4Phi[1] || p.RIso[0] != 0 {
		t.Fatalf("center row: exp4φ=%f R_iso=%f", p.Exp4Phi[0], p.RIso[0])
	}
}

func TestNormalizeWithoutVacuumRow(t *testing.T) {
	tbl := syntheticTable(6, 10)
	p, err := Normalize(tbl, 3)
	if err != nil {
		t.Fatal(err)
	}
	if p.Surface != 5 {
		t.Fatalf("surface at %d, expected the last row", p.Surface)
	}
}

func TestNormalizeErrors(t *testing.T) {
	if _, err := Normalize(syntheticTable(1, 0), 3); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected too few points, got %v", err)
	}
	if _, err := Normalize(syntheticTable(5, 0), 3); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected too few points without matter, got %v", err)
	}
	tbl := syntheticTable(10, 7)
	tbl.RIso[3] = 0
	if _, err := Normalize(tbl, 3); !errors.Is(err, ErrNonPositiveIsoRadius) {
		t.Fatalf("expected a non positive isotropic radius, got %v", err)
	}
	tbl = syntheticTable(10, 7)
	tbl.RIso[7] = -1
	if _, err := Normalize(tbl, 3); !errors.Is(err, ErrNonPositiveIsoRadius) {
		t.Fatalf("expected a non positive isotropic radius at the surface, got %v", err)
	}
	if _, err := Normalize(syntheticTable(10, 7), 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected an invalid stencil, got %v", err)
	}
}

func TestNormalizeSolution(t *testing.T) {
	cfg, eos := newtonianConfig()
	p, err := Solve(cfg, eos, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Surface != p.Len()-2 {
		t.Fatalf("surface %d should precede the terminal row %d", p.Surface, p.Len()-1)
	}
	R, M := p.SurfaceRadius(), p.SurfaceMass()
	if !scalar.EqualWithinRel(p.ExpNu[p.Surface], 1-2*M/R, 1e-12) {
		t.Fatalf("surface lapse %.15f != %.15f", p.ExpNu[p.Surface], 1-2*M/R)
	}
	for i := 1; i <= p.Surface; i++ {
		if p.ExpNu[i] < p.ExpNu[i-1] {
			t.Fatalf("lapse decreases outwards at row %d", i)
		}
	}
}
