package table

import (
	"fmt"
	"math"
)

// Labelled is a segment-indexed table: rows and columns are both named,
// e.g. statistic x segment or segment x measurement.
type Labelled struct {
	Rows    []string
	Columns []string
	Values  [][]float64 // row-major
}

// NewLabelled allocates a table filled with NaN.
func NewLabelled(rows, cols []string) *Labelled {
	l := &Labelled{
		Rows:    append([]string(nil), rows...),
		Columns: append([]string(nil), cols...),
		Values:  make([][]float64, len(rows)),
	}
	for i := range l.Values {
		l.Values[i] = make([]float64, len(cols))
		for j := range l.Values[i] {
			l.Values[i][j] = math.NaN()
		}
	}
	return l
}

// RowIndex returns the position of a row label or -1.
func (l *Labelled) RowIndex(name string) int {
	for i, r := range l.Rows {
		if r == name {
			return i
		}
	}
	return -1
}

// ColumnIndex returns the position of a column label or -1.
func (l *Labelled) ColumnIndex(name string) int {
	for j, c := range l.Columns {
		if c == name {
			return j
		}
	}
	return -1
}

// Get returns the cell at (row, col).
func (l *Labelled) Get(row, col string) (float64, bool) {
	i, j := l.RowIndex(row), l.ColumnIndex(col)
	if i < 0 || j < 0 {
		return 0, false
	}
	return l.Values[i][j], true
}

// Set writes the cell at (row, col).
func (l *Labelled) Set(row, col string, v float64) error {
	i, j := l.RowIndex(row), l.ColumnIndex(col)
	if i < 0 {
		return fmt.Errorf("row %q: %w", row, ErrColumnNotFound)
	}
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, col)
	}
	l.Values[i][j] = v
	return nil
}

// WithoutRow returns a copy lacking the named row. Absent rows are ignored.
func (l *Labelled) WithoutRow(name string) *Labelled {
	out := &Labelled{Columns: append([]string(nil), l.Columns...)}
	for i, r := range l.Rows {
		if r == name {
			continue
		}
		out.Rows = append(out.Rows, r)
		out.Values = append(out.Values, append([]float64(nil), l.Values[i]...))
	}
	return out
}

// Flatten turns the table into a single row keyed by id with one cell per
// (row, column) pair named "<row>_<column>", row-major order.
func (l *Labelled) Flatten(id string) *Row {
	out := NewRow(id)
	for i, r := range l.Rows {
		for j, c := range l.Columns {
			out.Set(r+"_"+c, Number(l.Values[i][j]))
		}
	}
	return out
}
