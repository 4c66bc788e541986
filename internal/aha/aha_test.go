package aha

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// input builds a mean/median table over the 18 vendor segments with the
// given per-segment values (0 when absent), columns carrying a feature
// prefix.
func input(t *testing.T, vals map[string]float64) *table.Labelled {
	t.Helper()
	cols := make([]string, len(Segments18))
	for j, s := range Segments18 {
		cols[j] = "strain_min_" + s
	}
	l := table.NewLabelled([]string{"mean", "median"}, cols)
	for j, s := range Segments18 {
		l.Values[0][j] = vals[s]
		l.Values[1][j] = vals[s]
	}
	return l
}

func get(t *testing.T, l *table.Labelled, row, col string) float64 {
	t.Helper()
	v, ok := l.Get(row, col)
	require.True(t, ok, "%s/%s", row, col)
	return v
}

func TestRemapCopiesRenamedBasalMid(t *testing.T) {
	out, err := Remap(input(t, map[string]float64{
		"Basal Septal":     10,
		"Mid Posterior":    -7.9,
		"Basal Lateral":    3.5,
		"Basal Anterior":   -12.2,
		"Mid Anteroseptal": 4,
	}), Scheme411)
	require.NoError(t, err)
	assert.Equal(t, Segments17, out.Columns)
	assert.Equal(t, 10.0, get(t, out, "mean", "Basal Inferoseptal"))
	assert.Equal(t, 10.0, get(t, out, "median", "Basal Inferoseptal"))
	assert.Equal(t, -7.0, get(t, out, "mean", "Mid Inferolateral"), "truncated toward zero")
	assert.Equal(t, 3.0, get(t, out, "mean", "Basal Anterolateral"))
	assert.Equal(t, -12.0, get(t, out, "mean", "Basal Anterior"))
	assert.Equal(t, 4.0, get(t, out, "mean", "Mid Anteroseptal"))
}

var apicalInputs = map[string]float64{
	"Apical Anteroseptal": -12,
	"Apical Anterior":     -18,
	"Apical Lateral":      -20,
	"Apical Posterior":    -15,
	"Apical Inferior":     -21,
	"Apical Septal":       -17,
}

func TestRemapApical411(t *testing.T) {
	out, err := Remap(input(t, apicalInputs), Scheme411)
	require.NoError(t, err)
	assert.Equal(t, math.Trunc((4*-18.0-12-20)/6), get(t, out, "mean", "Apical Anterior"))
	assert.Equal(t, math.Trunc((4*-20.0-18-15)/6), get(t, out, "mean", "Apical Lateral"))
	assert.Equal(t, math.Trunc((4*-21.0-15-17)/6), get(t, out, "mean", "Apical Inferior"))
	assert.Equal(t, math.Trunc((4*-17.0-21-12)/6), get(t, out, "mean", "Apical Septal"))
	assert.Equal(t, math.Trunc((-12-18-20-15-21-17)/6.0), get(t, out, "mean", Apex))
}

func TestRemapApicalVendor21(t *testing.T) {
	out, err := Remap(input(t, apicalInputs), SchemeVendor21)
	require.NoError(t, err)
	assert.Equal(t, math.Trunc((2*-18.0-12)/3), get(t, out, "mean", "Apical Anterior"))
	assert.Equal(t, math.Trunc((2*-17.0-12)/3), get(t, out, "mean", "Apical Septal"))
	assert.Equal(t, math.Trunc((2*-21.0-15)/3), get(t, out, "mean", "Apical Inferior"))
	assert.Equal(t, math.Trunc((2*-20.0-15)/3), get(t, out, "mean", "Apical Lateral"))
	assert.Equal(t, -17.0, get(t, out, "mean", Apex))
}

func TestRemapDropsUnknownColumns(t *testing.T) {
	in := table.NewLabelled([]string{"mean"}, []string{"Basal Septal", "Heart rate", "basal anterior_strain_min"})
	in.Values[0] = []float64{5, 70, -9}
	out, err := Remap(in, Scheme411)
	require.NoError(t, err)
	assert.Equal(t, 5.0, get(t, out, "mean", "Basal Inferoseptal"))
	assert.Equal(t, -9.0, get(t, out, "mean", "Basal Anterior"))
	assert.True(t, math.IsNaN(get(t, out, "mean", Apex)))
	assert.Equal(t, -1, out.ColumnIndex("Heart rate"))
}

func TestStripFeature(t *testing.T) {
	cases := []struct {
		label string
		want  string
		ok    bool
	}{
		{"Basal Septal", "Basal Septal", true},
		{"ttp_Apical Anterior", "Apical Anterior", true},
		{"Apical Anteroseptal_psi_pct", "Apical Anteroseptal", true},
		{"MID LATERAL", "Mid Lateral", true},
		{"GLOBAL", "", false},
	}
	for _, c := range cases {
		got, ok := StripFeature(c.label)
		assert.Equal(t, c.ok, ok, c.label)
		assert.Equal(t, c.want, got, c.label)
	}
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("4:1:1")
	require.NoError(t, err)
	assert.Equal(t, Scheme411, s)
	s, err = ParseScheme("vendor-2:1")
	require.NoError(t, err)
	assert.Equal(t, SchemeVendor21, s)
	_, err = ParseScheme("3:1")
	assert.Error(t, err)
}
