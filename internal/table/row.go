package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the content of a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindFlag
	KindText
)

// Value is one cell of a descriptor row.
type Value struct {
	Kind Kind
	Num  float64
	Flag bool
	Text string
}

func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func Flag(b bool) Value      { return Value{Kind: KindFlag, Flag: b} }
func Text(s string) Value    { return Value{Kind: KindText, Text: s} }

// String renders the cell the way the CSV output stores it: NaN becomes an
// empty field and flags are written as True/False.
func (v Value) String() string {
	switch v.Kind {
	case KindFlag:
		if v.Flag {
			return "True"
		}
		return "False"
	case KindText:
		return v.Text
	default:
		if math.IsNaN(v.Num) {
			return ""
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
}

// Float returns the numeric reading of the cell. Flags map to 1/0.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, !math.IsNaN(v.Num)
	case KindFlag:
		if v.Flag {
			return 1, true
		}
		return 0, true
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	}
}

// Equal compares two cells, treating NaN as equal to NaN.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindFlag:
		return v.Flag == o.Flag
	case KindText:
		return v.Text == o.Text
	default:
		if math.IsNaN(v.Num) && math.IsNaN(o.Num) {
			return true
		}
		return v.Num == o.Num
	}
}

// ParseValue is the inverse of Value.String.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Number(math.NaN())
	case "True", "true", "TRUE":
		return Flag(true)
	case "False", "false", "FALSE":
		return Flag(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

// Row is an ordered set of named cells describing one case.
type Row struct {
	ID    string
	names []string
	cells map[string]Value
}

// NewRow returns an empty row keyed by id.
func NewRow(id string) *Row {
	return &Row{ID: id, cells: make(map[string]Value)}
}

// Set stores a cell. Re-setting a name keeps its original position.
func (r *Row) Set(name string, v Value) {
	if _, ok := r.cells[name]; !ok {
		r.names = append(r.names, name)
	}
	r.cells[name] = v
}

func (r *Row) SetNumber(name string, f float64) { r.Set(name, Number(f)) }
func (r *Row) SetFlag(name string, b bool)      { r.Set(name, Flag(b)) }

// Get returns the named cell.
func (r *Row) Get(name string) (Value, bool) {
	v, ok := r.cells[name]
	return v, ok
}

// Names returns the cell names in insertion order.
func (r *Row) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of cells.
func (r *Row) Len() int { return len(r.names) }

// Merge appends every cell of o (overwriting same-named cells in place).
func (r *Row) Merge(o *Row) {
	if o == nil {
		return
	}
	for _, n := range o.names {
		r.Set(n, o.cells[n])
	}
}

// Clone returns a deep copy under a new ID.
func (r *Row) Clone(id string) *Row {
	out := NewRow(id)
	out.Merge(r)
	return out
}

// Equal reports whether both rows carry the same ID and the same cells in
// the same order.
func (r *Row) Equal(o *Row) bool {
	if r.ID != o.ID || len(r.names) != len(o.names) {
		return false
	}
	for i, n := range r.names {
		if o.names[i] != n || !r.cells[n].Equal(o.cells[n]) {
			return false
		}
	}
	return true
}
