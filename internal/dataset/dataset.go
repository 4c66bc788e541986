// Package dataset accumulates per-case descriptor rows and persists them as
// the combined CSV/XLSX tables.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/echoloom-cli/internal/table"
	"github.com/KaramelBytes/echoloom-cli/internal/utils"
)

// IDColumn is the header of the case ID column.
const IDColumn = "ID"

// DefaultName is the base name of the combined output files.
const DefaultName = "all_cases"

// Dataset is an ordered set of descriptor rows, one per case ID.
type Dataset struct {
	rows  []*table.Row
	index map[string]int
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// Add stores a row. A row with an ID already present replaces it in place,
// so re-processing a case never duplicates it.
func (d *Dataset) Add(r *table.Row) {
	if r == nil {
		return
	}
	if i, ok := d.index[r.ID]; ok {
		log.WithField("case", r.ID).Debug("replacing existing dataset row")
		d.rows[i] = r
		return
	}
	d.index[r.ID] = len(d.rows)
	d.rows = append(d.rows, r)
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Rows returns the rows in insertion order.
func (d *Dataset) Rows() []*table.Row { return append([]*table.Row(nil), d.rows...) }

// Row returns the row of a case.
func (d *Dataset) Row(id string) (*table.Row, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.rows[i], true
}

// IDs returns the case IDs in insertion order.
func (d *Dataset) IDs() []string {
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.ID
	}
	return out
}

// Columns returns the union of cell names, in first-seen order.
func (d *Dataset) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range d.rows {
		for _, n := range r.Names() {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			cols = append(cols, n)
		}
	}
	return cols
}

// Records renders the dataset as a header plus one string record per row.
// Missing cells are empty.
func (d *Dataset) Records() [][]string {
	cols := d.Columns()
	out := make([][]string, 0, len(d.rows)+1)
	out = append(out, append([]string{IDColumn}, cols...))
	for _, r := range d.rows {
		rec := make([]string, 0, len(cols)+1)
		rec = append(rec, r.ID)
		for _, c := range cols {
			v, ok := r.Get(c)
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, v.String())
		}
		out = append(out, rec)
	}
	return out
}

// WriteCSV writes the dataset as CSV.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(d.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the dataset to the first sheet of a new workbook.
// Numbers and flags keep their cell types; NaN cells are left blank.
func (d *Dataset) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	cols := d.Columns()
	header := make([]interface{}, 0, len(cols)+1)
	header = append(header, IDColumn)
	for _, c := range cols {
		header = append(header, c)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, r := range d.rows {
		vals := make([]interface{}, 0, len(cols)+1)
		vals = append(vals, r.ID)
		for _, c := range cols {
			v, ok := r.Get(c)
			vals = append(vals, cellValue(v, ok))
		}
		if err := setRow(f, sheet, i+2, vals); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func cellValue(v table.Value, ok bool) interface{} {
	if !ok {
		return nil
	}
	switch v.Kind {
	case table.KindFlag:
		return v.Flag
	case table.KindText:
		return v.Text
	default:
		if s := v.String(); s == "" {
			return nil
		}
		return v.Num
	}
}

// Save writes <name>.csv and, when excel is set, <name>.xlsx into dir,
// creating it if needed. It returns the written paths.
func (d *Dataset) Save(dir, name string, excel bool) ([]string, error) {
	if name == "" {
		name = DefaultName
	}
	name = utils.BaseName(name)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := d.WriteCSV(&buf); err != nil {
		return nil, err
	}
	csvPath := filepath.Join(dir, name+".csv")
	if err := utils.SafeWriteFile(csvPath, buf.Bytes()); err != nil {
		return nil, err
	}
	paths := []string{csvPath}
	if excel {
		xlsxPath := filepath.Join(dir, name+".xlsx")
		if err := d.WriteXLSX(xlsxPath); err != nil {
			return paths, err
		}
		paths = append(paths, xlsxPath)
	}
	log.WithFields(log.Fields{"rows": d.Len(), "columns": len(d.Columns()), "dir": dir}).Info("saved dataset")
	return paths, nil
}

// Read loads a dataset written by Save (.csv) or WriteXLSX (.xlsx). The
// first column holds the case IDs.
func Read(path string) (*Dataset, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	return FromRecords(records)
}

// ReadRecords returns the rows of a .csv file or of the first sheet of an
// .xlsx workbook as strings.
func ReadRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("read workbook: %w", err)
		}
		return rows, nil
	default:
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
		}
		defer fh.Close()
		cr := csv.NewReader(fh)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return rows, nil
	}
}

// FromRecords builds a dataset from a header plus string records.
func FromRecords(records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	header := records[0]
	d := New()
	for _, rec := range records[1:] {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		r := table.NewRow(strings.TrimSpace(rec[0]))
		for j := 1; j < len(header); j++ {
			s := ""
			if j < len(rec) {
				s = rec[j]
			}
			r.Set(header[j], table.ParseValue(s))
		}
		d.Add(r)
	}
	return d, nil
}
