package tov

import (
	"fmt"
	"math"
)

const (
	// DefaultInitialCapacity is the number of rows a new Table preallocates.
	DefaultInitialCapacity = 1024
	tableGrowth            = 1.5
)

// Row is one sample of the TOV solution.
type Row struct {
	R, RhoEnergy, RhoBaryon, Pressure, Mass, Nu, RIso float64
}

// Table stores the samples of a solution column by column, in increasing r.
// It grows by a factor of 1.5 when full and is trimmed once the integration is done.
type Table struct {
	R, RhoEnergy, RhoBaryon, Pressure, Mass, Nu, RIso []float64
}

// NewTable returns an empty table with room for capacity rows.
func NewTable(capacity int) (*Table, error) {
	if capacity <= 0 {
		capacity = DefaultInitialCapacity
	}
	t := &Table{}
	if err := t.realloc(0, capacity); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) columns() []*[]float64 {
	return []*[]float64{&t.R, &t.RhoEnergy, &t.RhoBaryon, &t.Pressure, &t.Mass, &t.Nu, &t.RIso}
}

// realloc moves the first n rows into fresh columns of the given capacity.
func (t *Table) realloc(n, capacity int) error {
	if capacity < n || capacity > math.MaxInt32 {
		return fmt.Errorf("%w: cannot hold %d rows in a capacity of %d", ErrAllocation, n, capacity)
	}
	for _, col := range t.columns() {
		fresh := make([]float64, n, capacity)
		copy(fresh, (*col)[:n])
		*col = fresh
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.R)
}

// Cap returns the number of rows the table can hold before growing.
func (t *Table) Cap() int {
	return cap(t.R)
}

// Append adds a row at the end of the table.
func (t *Table) Append(row Row) error {
	n := t.Len()
	if n == t.Cap() {
		next := int(float64(n) * tableGrowth)
		if next <= n {
			next = n + 1
		}
		if err := t.realloc(n, next); err != nil {
			return err
		}
	}
	t.R = append(t.R, row.R)
	t.RhoEnergy = append(t.RhoEnergy, row.RhoEnergy)
	t.RhoBaryon = append(t.RhoBaryon, row.RhoBaryon)
	t.Pressure = append(t.Pressure, row.Pressure)
	t.Mass = append(t.Mass, row.Mass)
	t.Nu = append(t.Nu, row.Nu)
	t.RIso = append(t.RIso, row.RIso)
	return nil
}

// Row returns row i.
func (t *Table) Row(i int) Row {
	return Row{t.R[i], t.RhoEnergy[i], t.RhoBaryon[i], t.Pressure[i], t.Mass[i], t.Nu[i], t.RIso[i]}
}

// Trim releases the unused capacity.
func (t *Table) Trim() {
	if t.Len() == t.Cap() {
		return
	}
	// Cannot fail: the capacity equals the length.
	_ = t.realloc(t.Len(), t.Len())
}
