package tov

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Tabulated is a cold EOS given as rows of (ρ_b, P, ε), interpolated linearly in
// (ln ρ, ln P) and (ln ρ, ε). Outside the table, the end segments are extended as
// polytropes with the local index.
type Tabulated struct {
	Rho, Press, Eps []float64
	// Temperature and ElectronFraction are carried along for the callers and are not
	// used by the cold EOS.
	Temperature      float64
	ElectronFraction float64

	lnρ, lnP []float64

	lnPOfLnρ, lnρOfLnP, εOfLnρ interp.PiecewiseLinear
}

// NewTabulatedEOS returns a validated tabulated EOS. The slices are not copied.
func NewTabulatedEOS(rho, press, eps []float64) (*Tabulated, error) {
	e := &Tabulated{Rho: rho, Press: press, Eps: eps}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.lnρ = make([]float64, len(rho))
	e.lnP = make([]float64, len(rho))
	for i := range rho {
		e.lnρ[i] = math.Log(rho[i])
		e.lnP[i] = math.Log(press[i])
	}
	if err := e.lnPOfLnρ.Fit(e.lnρ, e.lnP); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfiguration, err)
	}
	if err := e.lnρOfLnP.Fit(e.lnP, e.lnρ); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfiguration, err)
	}
	if err := e.εOfLnρ.Fit(e.lnρ, eps); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfiguration, err)
	}
	return e, nil
}

// ReadTabulatedEOS reads a whitespace separated table of `ρ_b P ε` rows. Empty lines
// and lines starting with # are skipped; extra columns are ignored.
func ReadTabulatedEOS(r io.Reader) (*Tabulated, error) {
	var rho, press, eps []float64
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: EOS table line %d has %d columns, need 3", ErrInvalidConfiguration, lineNo, len(fields))
		}
		var vals [3]float64
		for i := range vals {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: EOS table line %d: %s", ErrInvalidConfiguration, lineNo, err)
			}
			vals[i] = v
		}
		rho = append(rho, vals[0])
		press = append(press, vals[1])
		eps = append(eps, vals[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewTabulatedEOS(rho, press, eps)
}

// LoadTabulatedEOS reads a tabulated EOS from a file.
func LoadTabulatedEOS(path string) (*Tabulated, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: tabulated EOS requires a table file", ErrInvalidConfiguration)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTabulatedEOS(f)
}

func (e *Tabulated) isEOS() {}

// Kind implements the EOS interface.
func (e *Tabulated) Kind() EOSKind {
	return TabulatedEOS
}

// Validate implements the EOS interface.
func (e *Tabulated) Validate() error {
	n := len(e.Rho)
	if n < 2 {
		return fmt.Errorf("%w: EOS table needs at least 2 rows, got %d", ErrInvalidConfiguration, n)
	}
	if len(e.Press) != n || len(e.Eps) != n {
		return fmt.Errorf("%w: EOS table columns have different lengths (%d, %d, %d)", ErrInvalidConfiguration, n, len(e.Press), len(e.Eps))
	}
	for i := 0; i < n; i++ {
		if !(e.Rho[i] > 0) || !(e.Press[i] > 0) {
			return fmt.Errorf("%w: EOS table row %d has non positive density or pressure", ErrInvalidConfiguration, i)
		}
		if i > 0 && (e.Rho[i] <= e.Rho[i-1] || e.Press[i] <= e.Press[i-1]) {
			return fmt.Errorf("%w: EOS table is not strictly increasing at row %d", ErrInvalidConfiguration, i)
		}
	}
	return nil
}

// segment returns the index i such that the table segment [i, i+1] holds lnρ,
// clamped to the end segments.
func (e *Tabulated) segment(lnρ float64) int {
	i := sort.SearchFloat64s(e.lnρ, lnρ) - 1
	if i < 0 {
		return 0
	}
	if i > len(e.lnρ)-2 {
		return len(e.lnρ) - 2
	}
	return i
}

// gamma returns the local polytropic index of segment i.
func (e *Tabulated) gamma(i int) float64 {
	return (e.lnP[i+1] - e.lnP[i]) / (e.lnρ[i+1] - e.lnρ[i])
}

// PolytropicParams implements the EOS interface.
func (e *Tabulated) PolytropicParams(ρ float64) (K, Γ float64) {
	if ρ <= 0 {
		Γ = e.gamma(0)
		return e.Press[0] / math.Pow(e.Rho[0], Γ), Γ
	}
	Γ = e.gamma(e.segment(math.Log(ρ)))
	P, _ := e.ColdEOS(ρ)
	return P / math.Pow(ρ, Γ), Γ
}

// ColdEOS implements the EOS interface.
func (e *Tabulated) ColdEOS(ρ float64) (P, ε float64) {
	if ρ <= 0 {
		return 0, 0
	}
	n := len(e.Rho) - 1
	lnρ := math.Log(ρ)
	switch {
	case lnρ < e.lnρ[0]:
		Γ := e.gamma(0)
		x := ρ / e.Rho[0]
		return e.Press[0] * math.Pow(x, Γ), e.Eps[0] * math.Pow(x, Γ-1)
	case lnρ > e.lnρ[n]:
		Γ := e.gamma(n - 1)
		x := ρ / e.Rho[n]
		return e.Press[n] * math.Pow(x, Γ), e.Eps[n] + e.Press[n]/(e.Rho[n]*(Γ-1))*(math.Pow(x, Γ-1)-1)
	}
	return math.Exp(e.lnPOfLnρ.Predict(lnρ)), e.εOfLnρ.Predict(lnρ)
}

// PressureToDensity implements the EOS interface. Non positive pressures map to zero density.
func (e *Tabulated) PressureToDensity(P float64) float64 {
	if P <= 0 {
		return 0
	}
	n := len(e.Press) - 1
	lnP := math.Log(P)
	switch {
	case lnP < e.lnP[0]:
		return e.Rho[0] * math.Pow(P/e.Press[0], 1/e.gamma(0))
	case lnP > e.lnP[n]:
		return e.Rho[n] * math.Pow(P/e.Press[n], 1/e.gamma(n-1))
	}
	return math.Exp(e.lnρOfLnP.Predict(lnP))
}
