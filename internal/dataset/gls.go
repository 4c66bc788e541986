package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/echoloom-cli/internal/analysis"
	"github.com/KaramelBytes/echoloom-cli/internal/utils"
)

// GLSSuffix names the per-case mean global trace files.
const GLSSuffix = "_mean_global_traces"

// glsColumns lays the traces out side by side: Time_<view> and
// global_strain_<view> per view, or Time and GLOBAL for a single view.
func glsColumns(traces []analysis.MeanGlobalTrace) ([]string, [][]float64) {
	var header []string
	var cols [][]float64
	for _, mt := range traces {
		if mt.View == "" {
			header = append(header, "Time", "GLOBAL")
		} else {
			header = append(header, "Time_"+string(mt.View), "global_strain_"+string(mt.View))
		}
		cols = append(cols, mt.Time, mt.Strain)
	}
	return header, cols
}

func glsRows(cols [][]float64) int {
	n := 0
	for _, c := range cols {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

// WriteMeanGlobalTraces writes <caseID>_mean_global_traces.csv (and .xlsx
// when excel is set) into dir. Shorter views are padded with blanks.
func WriteMeanGlobalTraces(dir, caseID string, traces []analysis.MeanGlobalTrace, excel bool) ([]string, error) {
	if len(traces) == 0 {
		return nil, nil
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	header, cols := glsColumns(traces)
	n := glsRows(cols)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	records := [][]string{header}
	for i := 0; i < n; i++ {
		rec := make([]string, len(cols))
		for j, c := range cols {
			if i < len(c) && !math.IsNaN(c[i]) {
				rec[j] = strconv.FormatFloat(c[i], 'g', -1, 64)
			}
		}
		records = append(records, rec)
	}
	if err := cw.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write gls csv: %w", err)
	}
	base := filepath.Join(dir, caseID+GLSSuffix)
	if err := utils.SafeWriteFile(base+".csv", buf.Bytes()); err != nil {
		return nil, err
	}
	paths := []string{base + ".csv"}
	if !excel {
		return paths, nil
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	hdr := make([]interface{}, len(header))
	for j, h := range header {
		hdr[j] = h
	}
	if err := setRow(f, sheet, 1, hdr); err != nil {
		return paths, err
	}
	for i := 0; i < n; i++ {
		vals := make([]interface{}, len(cols))
		for j, c := range cols {
			if i < len(c) && !math.IsNaN(c[i]) {
				vals[j] = c[i]
			}
		}
		if err := setRow(f, sheet, i+2, vals); err != nil {
			return paths, err
		}
	}
	if err := f.SaveAs(base + ".xlsx"); err != nil {
		return paths, fmt.Errorf("save gls workbook: %w", err)
	}
	return append(paths, base+".xlsx"), nil
}
