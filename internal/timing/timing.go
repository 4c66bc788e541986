// Package timing reads the companion spreadsheet that lists the aortic
// valve closure time (milliseconds) of every case.
package timing

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
)

// Column headers of the timing spreadsheet.
const (
	ColumnID  = "ID"
	ColumnAVC = "AVC"
)

// Table maps case IDs to AVC times in milliseconds.
type Table struct {
	Source string
	avcMs  map[string]float64
}

// New builds a table from an in-memory map (milliseconds).
func New(avcMs map[string]float64) *Table {
	t := &Table{avcMs: make(map[string]float64, len(avcMs))}
	for k, v := range avcMs {
		t.avcMs[strings.TrimSpace(k)] = v
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.avcMs) }

// Lookup resolves the AVC time of a case in seconds. The timing sheet keys
// cases by the part of the file name before the first underscore
// (ABC0455_4C -> ABC0455); the full ID is tried as a fallback.
func (t *Table) Lookup(caseID string) (float64, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: no timing table loaded for %s", echo.ErrMissingTiming, caseID)
	}
	key := strings.SplitN(caseID, "_", 2)[0]
	if ms, ok := t.avcMs[key]; ok {
		return ms / 1000.0, nil
	}
	if ms, ok := t.avcMs[caseID]; ok {
		return ms / 1000.0, nil
	}
	return 0, fmt.Errorf("%w: %s not in %s", echo.ErrMissingTiming, key, filepath.Base(t.Source))
}

// Load reads an .xlsx (first sheet) or .csv timing file with ID and AVC
// columns.
func Load(path string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv", ".tsv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("timing file %s: %w", filepath.Base(path), echo.ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	t, err := fromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("timing file %s: %w", filepath.Base(path), err)
	}
	t.Source = path
	log.WithFields(log.Fields{"file": filepath.Base(path), "entries": t.Len()}).Debug("loaded valve-closure timings")
	return t, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open timing workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("timing workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read timing sheet: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timing csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read timing csv: %w", err)
	}
	return rows, nil
}

func fromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty timing sheet")
	}
	idCol, avcCol := -1, -1
	for j, h := range rows[0] {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case ColumnID:
			idCol = j
		case ColumnAVC:
			avcCol = j
		}
	}
	if idCol < 0 || avcCol < 0 {
		return nil, fmt.Errorf("header must contain %q and %q columns, got %v", ColumnID, ColumnAVC, rows[0])
	}
	t := &Table{avcMs: map[string]float64{}}
	for i, row := range rows[1:] {
		if idCol >= len(row) || avcCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[idCol])
		raw := strings.TrimSpace(row[avcCol])
		if id == "" || raw == "" {
			continue
		}
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: AVC %q is not a number", i+2, raw)
		}
		t.avcMs[id] = ms
	}
	return t, nil
}
