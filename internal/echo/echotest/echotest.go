// Package echotest builds synthetic vendor exports for tests.
package echotest

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// SegmentNames are the 18 vendor segment labels, basal to apical.
var SegmentNames = []string{
	"Basal Anteroseptal", "Basal Anterior", "Basal Lateral", "Basal Posterior", "Basal Inferior", "Basal Septal",
	"Mid Anteroseptal", "Mid Anterior", "Mid Lateral", "Mid Posterior", "Mid Inferior", "Mid Septal",
	"Apical Anteroseptal", "Apical Anterior", "Apical Lateral", "Apical Posterior", "Apical Inferior", "Apical Septal",
}

// Measurements are the Segments table columns of a synthetic export.
var Measurements = []string{"Peak strain", "Work"}

// ViewSegments names the six trace channels of each view.
var ViewSegments = map[string][]string{
	"2CH":   {"Basal Inferior", "Mid Inferior", "Apical Inferior", "Apical Anterior", "Mid Anterior", "Basal Anterior"},
	"4CH":   {"Basal Septal", "Mid Septal", "Apical Septal", "Apical Lateral", "Mid Lateral", "Basal Lateral"},
	"APLAX": {"Basal Posterior", "Mid Posterior", "Apical Posterior", "Apical Anteroseptal", "Mid Anteroseptal", "Basal Anteroseptal"},
}

// Times is the sample grid of every synthetic trace (seconds).
var Times = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5}

// StrainShape is the per-sample strain of the first channel; channel j is
// scaled by 1+j/10. Its minimum is at t=0.3.
var StrainShape = []float64{0, -5, -12, -15, -10, -2}

// GlobalStrain is the global strain trace, minimum -18 at t=0.3.
var GlobalStrain = []float64{0, -6, -14, -18, -12, -3}

// SegmentValue is the Segments table value of segment i, measurement j.
func SegmentValue(i, j int) float64 { return float64((i+1)*10 + j) }

// ExportRows returns the flat rows of a full export with the given
// embedded ID and AVC (milliseconds).
func ExportRows(id string, avcMs float64) [][]string {
	var rows [][]string
	rows = append(rows,
		[]string{"ID", id},
		[]string{"Name", "Anonymous"},
		[]string{"BP", "120", "80"},
		[]string{"HR", "62"},
		[]string{"AVC", num(avcMs)},
		[]string{"EF", "55"},
	)

	rows = append(rows, append([]string{""}, Measurements...))
	for i, s := range SegmentNames {
		r := []string{s}
		for j := range Measurements {
			r = append(r, num(SegmentValue(i, j)))
		}
		rows = append(rows, r)
	}
	status := []string{"Status"}
	for range Measurements {
		status = append(status, "OK")
	}
	rows = append(rows, status)

	// Strain, work and fibre stress share the shape at different scales.
	for _, scale := range []float64{1, 10, 2} {
		for _, view := range []string{"2CH", "4CH", "APLAX"} {
			rows = append(rows, append([]string{"Time"}, ViewSegments[view]...))
			for i, ts := range Times {
				r := []string{num(ts)}
				for j := range ViewSegments[view] {
					r = append(r, num(scale*StrainShape[i]*(1+float64(j)/10)))
				}
				rows = append(rows, r)
			}
		}
	}

	rows = append(rows, []string{"Time", "LVP"})
	for i, ts := range Times {
		rows = append(rows, []string{num(ts), num(float64(10 + 20*i))})
	}

	rows = append(rows, []string{"Time", "Global strain", "", "Time", "Global work", "", "Time", "Global fibre stress"})
	for i, ts := range Times {
		rows = append(rows, []string{
			num(ts), num(GlobalStrain[i]), "",
			num(ts), num(float64(i * 100)), "",
			num(ts), num(float64(i * 2)),
		})
	}
	return rows
}

// SpreadsheetML renders rows as an XML spreadsheet. Empty cells are
// written as empty <Cell/> elements.
func SpreadsheetML(rows [][]string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet" xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">` + "\n")
	sb.WriteString(`<Worksheet ss:Name="Export"><Table>` + "\n")
	for _, r := range rows {
		sb.WriteString("<Row>")
		for _, c := range r {
			if c == "" {
				sb.WriteString("<Cell/>")
				continue
			}
			typ := "String"
			if _, err := strconv.ParseFloat(c, 64); err == nil {
				typ = "Number"
			}
			fmt.Fprintf(&sb, `<Cell><Data ss:Type="%s">%s</Data></Cell>`, typ, html.EscapeString(c))
		}
		sb.WriteString("</Row>\n")
	}
	sb.WriteString("</Table></Worksheet></Workbook>\n")
	return sb.String()
}

// WriteXML writes a synthetic full export to dir/name and returns its path.
func WriteXML(tb testing.TB, dir, name, id string, avcMs float64) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(SpreadsheetML(ExportRows(id, avcMs))), 0o644); err != nil {
		tb.Fatalf("write export: %v", err)
	}
	return p
}

// SingleViewText returns a single-view text export at 50 fps. The cycle
// runs from t=0.02 to t=0.52, with a run-up sample before it and a
// run-down sample after it. The EXTRA column has a gap and is dropped on
// read.
func SingleViewText() string {
	var sb strings.Builder
	sb.WriteString("Patient\tAnonymous\n")
	sb.WriteString("Trace\tLongitudinal strain\n")
	sb.WriteString("FR=  50.0 fps\n")
	sb.WriteString("Time\tYELLOW\tCYAN\tGREEN\tMAGENTA\tBLUE\tRED\tGLOBAL\tEXTRA\n")
	type sample struct {
		t     float64
		v     float64
		g     float64
		extra string
	}
	samples := []sample{
		{0.00, 1, 0.5, "1"},
		{0.02, 0, 0, "1"},
		{0.12, -6, -5, ""},
		{0.22, -14, -13, "1"},
		{0.32, -16, -17, "1"},
		{0.42, -8, -9, "1"},
		{0.52, 0, 0, "1"},
		{0.62, 2, 1, "1"},
	}
	for _, s := range samples {
		vals := []string{num(s.t)}
		for j := 0; j < 6; j++ {
			vals = append(vals, num(s.v*(1+float64(j)/10)))
		}
		vals = append(vals, num(s.g), s.extra)
		sb.WriteString(strings.Join(vals, "\t") + "\n")
	}
	return sb.String()
}

// WriteSingleView writes SingleViewText to dir/name and returns its path.
func WriteSingleView(tb testing.TB, dir, name string) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(SingleViewText()), 0o644); err != nil {
		tb.Fatalf("write export: %v", err)
	}
	return p
}

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
