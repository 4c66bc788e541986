package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// General table keys handled specially.
const (
	keyID   = "ID"
	keyName = "Name"
	keyBP   = "BP"
	keyAVC  = "AVC"
	keySBP  = "SBP"
	keyDBP  = "DBP"
	// statusRow is dropped from the Segments table; its cells are not coerced.
	statusRow = "Status"
)

// general is the parsed General table.
type general struct {
	row   *table.Row
	id    string
	avcMs float64
}

// parseCell converts a trace cell. Empty cells are NaN; any other
// non-number is an error.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseLoose converts a General value; anything unparseable is NaN.
func parseLoose(s string) float64 {
	f, ok := parseCell(s)
	if !ok {
		return math.NaN()
	}
	return f
}

// parseGeneral transposes the key/value rows of the General table into one
// row. BP carries systolic and diastolic readings in its first two values.
func parseGeneral(rt *RawTable) (*general, error) {
	g := &general{row: table.NewRow(""), avcMs: math.NaN()}
	var sbp, dbp float64 = math.NaN(), math.NaN()
	haveAVC := false
	for _, r := range rt.Rows {
		key := field(r, 0)
		if key == "" {
			continue
		}
		switch key {
		case keyID:
			g.id = field(r, 1)
		case keyName:
		case keyBP:
			sbp = parseLoose(field(r, 1))
			dbp = parseLoose(field(r, 2))
		default:
			v := parseLoose(field(r, 1))
			g.row.SetNumber(key, v)
			if key == keyAVC {
				g.avcMs = v
				haveAVC = true
			}
		}
	}
	if !haveAVC || math.IsNaN(g.avcMs) {
		return nil, echo.Malformed("General table has no %s value", keyAVC)
	}
	g.row.SetNumber(keySBP, sbp)
	g.row.SetNumber(keyDBP, dbp)
	g.row.ID = g.id
	return g, nil
}

// parseSegments reads the segment x measurement table. The header is
// ["", measurement...]; each row starts with a segment name. The textual
// Status row is dropped.
func parseSegments(rt *RawTable) (*table.Labelled, error) {
	cols := trimmedHeader(rt.Header[1:])
	var names []string
	var data [][]string
	for _, r := range rt.Rows {
		if name := field(r, 0); name != "" {
			names = append(names, name)
			data = append(data, r)
		}
	}
	out := table.NewLabelled(names, cols)
	for i, r := range data {
		if names[i] == statusRow {
			continue
		}
		for j, c := range cols {
			v, ok := parseCell(field(r, j+1))
			if !ok {
				return nil, echo.Malformed("Segments: %s/%s value %q is not a number", names[i], c, field(r, j+1))
			}
			out.Values[i][j] = v
		}
	}
	return out.WithoutRow(statusRow), nil
}

// trimmedHeader trims every label and drops trailing empty labels.
func trimmedHeader(h []string) []string {
	out := make([]string, len(h))
	last := -1
	for i, s := range h {
		out[i] = strings.TrimSpace(s)
		if out[i] != "" {
			last = i
		}
	}
	return out[:last+1]
}

// isLabelRow reports a row holding only non-numeric labels.
func isLabelRow(row []string) bool {
	seen := false
	for _, s := range row {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return false
		}
		seen = true
	}
	return seen
}

// assembleHeader rebuilds a trace header: label-only rows that directly
// follow the boundary row carry the remaining column names and are
// concatenated onto it.
func assembleHeader(rt *RawTable) ([]string, [][]string) {
	header := append([]string(nil), trimmedHeader(rt.Header)...)
	rows := rt.Rows
	for len(rows) > 0 && isLabelRow(rows[0]) {
		for _, s := range rows[0] {
			if s = strings.TrimSpace(s); s != "" {
				header = append(header, s)
			}
		}
		rows = rows[1:]
	}
	return header, rows
}

// parseTrace reads a time-indexed sub-table with one column per segment.
func parseTrace(rt *RawTable) (*table.Trace, error) {
	header, rows := assembleHeader(rt)
	if len(header) < 2 || header[0] != TimeToken {
		return nil, echo.Malformed("%s: header %v lacks %q and channel columns", rt.Name, header, TimeToken)
	}
	tr := table.NewTrace(rt.Name, header[1:])
	for i, r := range rows {
		ts := field(r, 0)
		if ts == "" {
			continue
		}
		t, ok := parseCell(ts)
		if !ok {
			return nil, echo.Malformed("%s: row %d: time %q is not a number", rt.Name, i+1, ts)
		}
		vals := make([]float64, len(tr.Columns))
		for j := range vals {
			v, ok := parseCell(field(r, j+1))
			if !ok {
				return nil, echo.Malformed("%s: row %d: %s value %q is not a number", rt.Name, i+1, tr.Columns[j], field(r, j+1))
			}
			vals[j] = v
		}
		if err := tr.AddRow(t, vals); err != nil {
			return nil, err
		}
	}
	if err := tr.Validate(); err != nil {
		return nil, echo.Malformed("%v", err)
	}
	return tr, nil
}

// Global Traces column offsets: three (time, value) pairs separated by an
// empty column.
var globalPairs = []struct {
	offset int
	name   string
}{
	{0, "Global strain"},
	{3, "Global work"},
	{6, "Global fibre stress"},
}

// parseGlobal splits the Global Traces table into its three channels, each
// filtered for empty rows and indexed by its own time column.
func parseGlobal(rt *RawTable) (echo.GlobalTraces, error) {
	header, rows := assembleHeader(rt)
	traces := make([]*table.Trace, len(globalPairs))
	for k, p := range globalPairs {
		if field(header, p.offset) != TimeToken {
			return echo.GlobalTraces{}, echo.Malformed("%s: expected %q at column %d, got %q", rt.Name, TimeToken, p.offset+1, field(header, p.offset))
		}
		name := field(header, p.offset+1)
		if name == "" {
			name = p.name
		}
		tr := table.NewTrace(p.name, []string{name})
		for i, r := range rows {
			ts, vs := field(r, p.offset), field(r, p.offset+1)
			if ts == "" || vs == "" {
				continue
			}
			t, okT := parseCell(ts)
			v, okV := parseCell(vs)
			if !okT || !okV {
				return echo.GlobalTraces{}, echo.Malformed("%s: row %d: %q/%q is not numeric", p.name, i+1, ts, vs)
			}
			if err := tr.AddRow(t, []float64{v}); err != nil {
				return echo.GlobalTraces{}, err
			}
		}
		if err := tr.Validate(); err != nil {
			return echo.GlobalTraces{}, echo.Malformed("%v", err)
		}
		traces[k] = tr
	}
	return echo.GlobalTraces{Strain: traces[0], Work: traces[1], FibreStress: traces[2]}, nil
}
