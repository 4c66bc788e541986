package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
)

// TimeToken is the first header field of every time-indexed sub-table.
const TimeToken = "Time"

// ErrTableCount reports an export whose boundary rows do not yield the
// expected number of sub-tables.
var ErrTableCount = errors.New("unexpected number of sub-tables")

// RawTable is one sub-table of a full export: the boundary row that opened
// it and the rows that followed it.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// RawTables maps sub-table names to their raw rows.
type RawTables map[string]*RawTable

// Get returns a sub-table or a malformed-export error naming it.
func (rt RawTables) Get(name string) (*RawTable, error) {
	t, ok := rt[name]
	if !ok || t == nil {
		return nil, echo.Malformed("sub-table %q missing", name)
	}
	return t, nil
}

type boundaryFunc func(row []string) bool

// transition is one state of the export layout: the table it names and the
// kind of boundary row that must open it.
type transition struct {
	name  string
	opens boundaryFunc
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isTimeHeader(row []string) bool { return field(row, 0) == TimeToken }

func isLabelHeader(row []string) bool { return field(row, 0) == "" && field(row, 1) != "" }

// isBoundary reports whether a row opens a new sub-table.
func isBoundary(row []string) bool { return isTimeHeader(row) || isLabelHeader(row) }

// exportLayout is the full-export layout. The first table has no opening
// boundary; every other table is opened by the predicate listed with it.
var exportLayout = buildLayout()

func buildLayout() []transition {
	out := make([]transition, 0, len(echo.TableNames))
	for _, name := range echo.TableNames {
		switch name {
		case echo.TableGeneral:
			out = append(out, transition{name: name})
		case echo.TableSegments:
			out = append(out, transition{name: name, opens: isLabelHeader})
		default:
			out = append(out, transition{name: name, opens: isTimeHeader})
		}
	}
	return out
}

// Segment splits the flat rows of a full export into its named
// sub-tables. Tables are named by position in the layout; a boundary row
// that does not match the expected opener, too many boundaries, or too few
// are malformed exports.
func Segment(rows [][]string) (RawTables, error) {
	return segmentWith(exportLayout, rows)
}

func segmentWith(layout []transition, rows [][]string) (RawTables, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("empty export layout")
	}
	out := make(RawTables, len(layout))
	state := 0
	cur := &RawTable{Name: layout[0].name}
	for i, row := range rows {
		if !isBoundary(row) {
			cur.Rows = append(cur.Rows, row)
			continue
		}
		next := state + 1
		if next >= len(layout) {
			return nil, fmt.Errorf("%w: %w: boundary at row %d after %q", echo.ErrMalformedExport, ErrTableCount, i+1, layout[state].name)
		}
		if !layout[next].opens(row) {
			return nil, echo.Malformed("row %d: boundary %q does not open %q", i+1, field(row, 0), layout[next].name)
		}
		out[cur.Name] = cur
		state = next
		cur = &RawTable{Name: layout[state].name, Header: row}
	}
	out[cur.Name] = cur
	if state != len(layout)-1 {
		return nil, fmt.Errorf("%w: %w: found %d of %d", echo.ErrMalformedExport, ErrTableCount, state+1, len(layout))
	}
	return out, nil
}
