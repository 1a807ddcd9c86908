package tov

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// rawColumns is the number of columns of a raw solution file.
const rawColumns = 7

func writeRow(w *bufio.Writer, vals ...float64) error {
	for _, v := range vals {
		if _, err := fmt.Fprintf(w, " %15.14e", v); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// WriteRaw writes one line per table row with the columns r, ρ_e, ρ_b, P, M, ν and R_iso.
// Written before normalization, ν and R_iso are the raw integration variables.
func WriteRaw(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < t.Len(); i++ {
		if err := writeRow(bw, t.R[i], t.RhoEnergy[i], t.RhoBaryon[i], t.Pressure[i], t.Mass[i], t.Nu[i], t.RIso[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteAdjusted writes one line per profile row with the columns r, ρ_e, ρ_b, P, M, expν,
// exp4φ and R_iso.
func WriteAdjusted(w io.Writer, p *Profile) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < p.Len(); i++ {
		if err := writeRow(bw, p.R[i], p.RhoEnergy[i], p.RhoBaryon[i], p.Pressure[i], p.Mass[i], p.ExpNu[i], p.Exp4Phi[i], p.RIso[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRaw reads a table written by WriteRaw.
func ReadRaw(r io.Reader) (*Table, error) {
	t, err := NewTable(0)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	var vals [rawColumns]float64
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != rawColumns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNo, rawColumns, len(fields))
		}
		for i, f := range fields {
			if vals[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		if err := t.Append(Row{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6]}); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	t.Trim()
	return t, nil
}

// writeFile creates path and writes to it with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteRawFile writes the raw table to path.
func WriteRawFile(path string, t *Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteRaw(w, t) })
}

// WriteAdjustedFile writes the normalized profile to path.
func WriteAdjustedFile(path string, p *Profile) error {
	return writeFile(path, func(w io.Writer) error { return WriteAdjusted(w, p) })
}

// ReadRawFile reads a raw table from path.
func ReadRawFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRaw(f)
}
