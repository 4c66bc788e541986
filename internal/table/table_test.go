package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrace(t *testing.T) *Trace {
	t.Helper()
	tr := NewTrace("strain", []string{"a", "b"})
	require.NoError(t, tr.AddRow(0.0, []float64{0, 0}))
	require.NoError(t, tr.AddRow(0.1, []float64{-4, -2}))
	require.NoError(t, tr.AddRow(0.2, []float64{-8, -6}))
	require.NoError(t, tr.AddRow(0.3, []float64{-2, -1}))
	return tr
}

func TestTraceAddRowRejectsWidthMismatch(t *testing.T) {
	tr := NewTrace("x", []string{"a", "b"})
	assert.Error(t, tr.AddRow(0, []float64{1}))
}

func TestTraceNearestPrefersEarlierOnTie(t *testing.T) {
	tr := newTrace(t)
	assert.Equal(t, 1, tr.Nearest(0.1))
	assert.Equal(t, 2, tr.Nearest(0.19))
	assert.Equal(t, 0, tr.Nearest(0.05))
	assert.Equal(t, -1, NewTrace("e", nil).Nearest(1))
}

func TestTraceWindowRebasesTime(t *testing.T) {
	tr := newTrace(t)
	w := tr.Window(0.1, 0.2)
	require.Equal(t, 2, w.Len())
	assert.InDelta(t, 0.0, w.Time[0], 1e-12)
	assert.InDelta(t, 0.1, w.Time[1], 1e-12)
	assert.Equal(t, []float64{-8, -6}, w.Values[1])
	require.NoError(t, w.Validate())
}

func TestTraceSelectAndColumn(t *testing.T) {
	tr := newTrace(t)
	s, err := tr.Select("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, s.Columns)
	col, ok := s.Column("b")
	require.True(t, ok)
	assert.Equal(t, []float64{0, -2, -6, -1}, col)

	_, err = tr.Select("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestTraceValidate(t *testing.T) {
	tr := NewTrace("x", []string{"a"})
	require.NoError(t, tr.AddRow(0.2, []float64{1}))
	require.NoError(t, tr.AddRow(0.2, []float64{1}))
	assert.Error(t, tr.Validate())
}

func TestTraceRowMeansAndMaxTime(t *testing.T) {
	tr := newTrace(t)
	assert.Equal(t, []float64{0, -3, -7, -1.5}, tr.RowMeans())
	assert.InDelta(t, 0.3, tr.MaxTime(), 1e-12)
	assert.True(t, math.IsNaN(NewTrace("e", nil).MaxTime()))
}

func TestTraceRowMeansSkipsNonFinite(t *testing.T) {
	tr := NewTrace("strain", []string{"a", "b", "c"})
	require.NoError(t, tr.AddRow(0.0, []float64{-4, math.NaN(), -2}))
	require.NoError(t, tr.AddRow(0.1, []float64{math.NaN(), math.NaN(), math.NaN()}))
	require.NoError(t, tr.AddRow(0.2, []float64{math.Inf(-1), -6, -6}))
	m := tr.RowMeans()
	require.Len(t, m, 3)
	assert.Equal(t, -3.0, m[0])
	assert.True(t, math.IsNaN(m[1]))
	assert.Equal(t, -6.0, m[2])
}

func TestLabelledFlattenAndWithoutRow(t *testing.T) {
	l := NewLabelled([]string{"Basal Septal", "Status"}, []string{"Peak", "Time"})
	require.NoError(t, l.Set("Basal Septal", "Peak", -18))
	require.NoError(t, l.Set("Basal Septal", "Time", 0.35))
	l = l.WithoutRow("Status")

	row := l.Flatten("case1")
	assert.Equal(t, []string{"Basal Septal_Peak", "Basal Septal_Time"}, row.Names())
	v, ok := row.Get("Basal Septal_Peak")
	require.True(t, ok)
	assert.Equal(t, -18.0, v.Num)
}

func TestValueStringRoundTrip(t *testing.T) {
	cases := []Value{Number(-12.5), Number(math.NaN()), Flag(true), Flag(false), Text("ABC")}
	for _, v := range cases {
		assert.True(t, v.Equal(ParseValue(v.String())), "value %v", v)
	}
}

func TestRowMergeKeepsOrder(t *testing.T) {
	a := NewRow("x")
	a.SetNumber("one", 1)
	a.SetNumber("two", 2)
	b := NewRow("x")
	b.SetNumber("two", 20)
	b.SetFlag("three", true)
	a.Merge(b)

	assert.Equal(t, []string{"one", "two", "three"}, a.Names())
	v, _ := a.Get("two")
	assert.Equal(t, 20.0, v.Num)

	c := a.Clone("x")
	assert.True(t, a.Equal(c))
	c.SetNumber("one", 5)
	assert.False(t, a.Equal(c))
}
