package dataset

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/echoloom-cli/internal/analysis"
	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/echo/echotest"
	"github.com/KaramelBytes/echoloom-cli/internal/parser"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
	"github.com/KaramelBytes/echoloom-cli/internal/timing"
)

func row(id string, cells map[string]float64, order ...string) *table.Row {
	r := table.NewRow(id)
	for _, n := range order {
		r.SetNumber(n, cells[n])
	}
	return r
}

func TestAddReplacesSameID(t *testing.T) {
	d := New()
	d.Add(row("a", map[string]float64{"x": 1}, "x"))
	d.Add(row("b", map[string]float64{"y": 2}, "y"))
	d.Add(row("a", map[string]float64{"x": 3}, "x"))

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"a", "b"}, d.IDs())
	r, ok := d.Row("a")
	require.True(t, ok)
	v, _ := r.Get("x")
	assert.Equal(t, 3.0, v.Num)
	assert.Equal(t, []string{"x", "y"}, d.Columns())
}

func TestWriteCSVUnionColumns(t *testing.T) {
	d := New()
	d.Add(row("a", map[string]float64{"x": 1, "nan": math.NaN()}, "x", "nan"))
	r := table.NewRow("b")
	r.SetFlag("flag", true)
	d.Add(r)

	var buf bytes.Buffer
	require.NoError(t, d.WriteCSV(&buf))
	want := "ID,x,nan,flag\na,1,,\nb,,,True\n"
	assert.Equal(t, want, buf.String())
}

func TestSaveAndReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d := New()
	r := table.NewRow("ABC0455")
	r.SetNumber("max_gls", -18.5)
	r.SetFlag("Basal Septal_postsys", false)
	r.SetNumber("missing", math.NaN())
	d.Add(r)

	paths, err := d.Save(filepath.Join(dir, "out"), "all_cases.csv", true)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, p := range paths {
		got, err := Read(p)
		require.NoError(t, err, p)
		require.Equal(t, 1, got.Len(), p)
		gr, _ := got.Row("ABC0455")
		v, _ := gr.Get("max_gls")
		assert.Equal(t, -18.5, v.Num, p)
		v, _ = gr.Get("Basal Septal_postsys")
		assert.Equal(t, table.KindFlag, v.Kind, p)
		assert.False(t, v.Flag, p)
	}
}

func TestManifestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	m := NewManifest()
	m.Succeeded(&echo.Case{ID: "a", Source: "a.xml", Kind: echo.KindXML, AVC: 0.3})
	m.Failed("b.xml", echo.Fail("b.xml", echo.StageSegment, echo.Malformed("short")))
	require.NoError(t, m.Save(dir))

	got, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	require.Len(t, got.Cases, 2)
	assert.Equal(t, StatusFailed, got.Cases[1].Status)
	assert.Equal(t, "segment", got.Cases[1].Stage)
	ok, failed := got.Counts()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
}

func TestWriteMeanGlobalTraces(t *testing.T) {
	dir := t.TempDir()
	traces := []analysis.MeanGlobalTrace{
		{View: echo.View2CH, Time: []float64{0, 0.1}, Strain: []float64{0, -5}},
		{View: echo.View4CH, Time: []float64{0}, Strain: []float64{-1}},
	}
	paths, err := WriteMeanGlobalTraces(dir, "ABC0455", traces, false)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "ABC0455_mean_global_traces.csv"), paths[0])
	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, "Time_2CH,global_strain_2CH,Time_4CH,global_strain_4CH", lines[0])
	assert.Equal(t, "0.1,-5,,", lines[2])
}

func TestBuilderSkipsFailingCases(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	good := echotest.WriteXML(t, in, "ABC0455.xml", "PAT-1", 300)
	bad := filepath.Join(in, "broken.xml")
	require.NoError(t, os.WriteFile(bad, []byte(echotest.SpreadsheetML(echotest.ExportRows("X", 300)[:10])), 0o644))
	sv := echotest.WriteSingleView(t, in, "ABC0456_4C.txt")

	opt := Options{Parse: parser.DefaultOptions(), GLSDir: filepath.Join(out, "gls"), SkipErrors: true}
	opt.Parse.Timings = timing.New(map[string]float64{"ABC0456": 300})
	b := NewBuilder(opt)
	require.NoError(t, b.Build([]string{good, bad, sv, good}))

	assert.Equal(t, []string{"ABC0455", "ABC0456_4C"}, b.Dataset.IDs())
	ok, failed := b.Manifest.Counts()
	assert.Equal(t, 3, ok)
	assert.Equal(t, 1, failed)
	assert.FileExists(t, filepath.Join(out, "gls", "ABC0455_mean_global_traces.csv"))
	assert.FileExists(t, filepath.Join(out, "gls", "ABC0456_4C_mean_global_traces.csv"))

	paths, err := b.Save(out, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "all_cases.csv")}, paths)
	assert.FileExists(t, filepath.Join(out, manifestFileName))
}

func TestBuilderStopsWithoutSkip(t *testing.T) {
	in := t.TempDir()
	bad := filepath.Join(in, "broken.xml")
	require.NoError(t, os.WriteFile(bad, []byte("<Workbook>"), 0o644))
	b := NewBuilder(Options{Parse: parser.DefaultOptions()})
	err := b.Build([]string{bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, echo.ErrMalformedExport)
	assert.Equal(t, 0, b.Dataset.Len())
}
