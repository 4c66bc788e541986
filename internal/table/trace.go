package table

import (
	"errors"
	"fmt"
	"math"
)

// ErrColumnNotFound is returned when a named channel is not part of a table.
var ErrColumnNotFound = errors.New("column not found")

// Trace is a time-indexed table: one row per sample instant (seconds),
// one column per channel (usually an anatomical segment).
type Trace struct {
	Name    string
	Time    []float64
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// NewTrace returns an empty trace with the given channel names.
func NewTrace(name string, columns []string) *Trace {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Trace{Name: name, Columns: cols}
}

// Len returns the number of samples.
func (t *Trace) Len() int { return len(t.Time) }

// AddRow appends a sample. The value count must match the column count.
func (t *Trace) AddRow(time float64, vals []float64) error {
	if len(vals) != len(t.Columns) {
		return fmt.Errorf("trace %q: row at t=%g has %d values, want %d", t.Name, time, len(vals), len(t.Columns))
	}
	row := make([]float64, len(vals))
	copy(row, vals)
	t.Time = append(t.Time, time)
	t.Values = append(t.Values, row)
	return nil
}

// ColumnIndex returns the position of a channel or -1.
func (t *Trace) ColumnIndex(name string) int {
	for j, c := range t.Columns {
		if c == name {
			return j
		}
	}
	return -1
}

// ColumnAt returns a copy of the j-th channel.
func (t *Trace) ColumnAt(j int) []float64 {
	out := make([]float64, len(t.Values))
	for i, row := range t.Values {
		out[i] = row[j]
	}
	return out
}

// Column returns a copy of the named channel.
func (t *Trace) Column(name string) ([]float64, bool) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, false
	}
	return t.ColumnAt(j), true
}

// Select returns a new trace holding only the named channels, in order.
func (t *Trace) Select(names ...string) (*Trace, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		j := t.ColumnIndex(n)
		if j < 0 {
			return nil, fmt.Errorf("trace %q: %w: %s", t.Name, ErrColumnNotFound, n)
		}
		idx[k] = j
	}
	out := NewTrace(t.Name, names)
	for i, row := range t.Values {
		vals := make([]float64, len(idx))
		for k, j := range idx {
			vals[k] = row[j]
		}
		out.Time = append(out.Time, t.Time[i])
		out.Values = append(out.Values, vals)
	}
	return out, nil
}

// Nearest returns the row whose time is closest to x. Ties resolve to the
// earlier row. It returns -1 for an empty trace.
func (t *Trace) Nearest(x float64) int {
	return NearestIndex(t.Time, x)
}

// NearestIndex returns the index of the element of ts closest to x, the
// first one on ties, or -1 when ts is empty.
func NearestIndex(ts []float64, x float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range ts {
		d := math.Abs(v - x)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// MaxTime returns the largest time index, NaN when empty.
func (t *Trace) MaxTime() float64 {
	if len(t.Time) == 0 {
		return math.NaN()
	}
	m := t.Time[0]
	for _, v := range t.Time[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Window keeps the rows with start <= time <= end and rebases time so the
// first kept instant becomes start-start = 0.
func (t *Trace) Window(start, end float64) *Trace {
	out := NewTrace(t.Name, t.Columns)
	for i, ts := range t.Time {
		if ts < start || ts > end {
			continue
		}
		row := make([]float64, len(t.Values[i]))
		copy(row, t.Values[i])
		out.Time = append(out.Time, ts-start)
		out.Values = append(out.Values, row)
	}
	return out
}

// RowMeans averages the finite values of every row across channels. A row
// without finite values is NaN.
func (t *Trace) RowMeans() []float64 {
	out := make([]float64, len(t.Values))
	for i, row := range t.Values {
		var s float64
		n := 0
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			s += v
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s / float64(n)
	}
	return out
}

// Validate checks that time is non-negative and strictly increasing.
func (t *Trace) Validate() error {
	for i, ts := range t.Time {
		if ts < 0 || math.IsNaN(ts) {
			return fmt.Errorf("trace %q: invalid time %g at row %d", t.Name, ts, i)
		}
		if i > 0 && ts <= t.Time[i-1] {
			return fmt.Errorf("trace %q: time not increasing at row %d (%g after %g)", t.Name, i, ts, t.Time[i-1])
		}
	}
	return nil
}
