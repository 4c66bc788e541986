package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// DefaultOutlierThreshold is the robust |z| above which a case is flagged.
const DefaultOutlierThreshold = 3.5

// minOutlierCases is the smallest column size screened for outliers.
const minOutlierCases = 8

// Column kinds of a Report.
const (
	KindNumeric = "numeric"
	KindFlag    = "flag"
	KindText    = "text"
	KindEmpty   = "empty"
)

// Report is a quality summary of a dataset: per-column coverage and
// statistics, with cases whose values are robust outliers.
type Report struct {
	Name             string
	Rows             int
	OutlierThreshold float64
	Cols             []ColumnSummary
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Kind    string
	NonNull int
	Missing int
	// Numeric stats
	Min, Max, Mean, Std float64
	// Flag columns
	True int
	// Outliers (robust Z via MAD)
	OutlierCases    []string
	OutliersMaxAbsZ float64
}

// Profile summarises every column of d. threshold <= 0 uses
// DefaultOutlierThreshold.
func Profile(name string, d *Dataset, threshold float64) (*Report, error) {
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	r := &Report{Name: name, Rows: d.Len(), OutlierThreshold: threshold}
	for _, col := range d.Columns() {
		s, err := profileColumn(d, col, threshold)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", col, err)
		}
		r.Cols = append(r.Cols, s)
	}
	return r, nil
}

func profileColumn(d *Dataset, col string, threshold float64) (ColumnSummary, error) {
	s := ColumnSummary{Name: col}
	var (
		ids   []string
		vals  []float64
		flags int
		texts int
	)
	for _, row := range d.rows {
		v, ok := row.Get(col)
		if !ok || v.String() == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		switch v.Kind {
		case table.KindFlag:
			flags++
			if v.Flag {
				s.True++
			}
		case table.KindNumber:
			ids = append(ids, row.ID)
			vals = append(vals, v.Num)
		default:
			texts++
		}
	}
	switch {
	case s.NonNull == 0:
		s.Kind = KindEmpty
		return s, nil
	case texts > 0:
		s.Kind = KindText
		return s, nil
	case flags > 0 && len(vals) == 0:
		s.Kind = KindFlag
		return s, nil
	}
	s.Kind = KindNumeric
	var err error
	if s.Min, err = stats.Min(vals); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(vals); err != nil {
		return s, err
	}
	if s.Mean, err = stats.Mean(vals); err != nil {
		return s, err
	}
	if s.Std, err = stats.StandardDeviation(vals); err != nil {
		return s, err
	}
	if len(vals) < minOutlierCases {
		return s, nil
	}
	median, err := stats.Median(vals)
	if err != nil {
		return s, err
	}
	mad, err := stats.MedianAbsoluteDeviation(vals)
	if err != nil || mad == 0 {
		return s, nil
	}
	for i, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > threshold {
			s.OutlierCases = append(s.OutlierCases, ids[i])
		}
		if az > s.OutliersMaxAbsZ {
			s.OutliersMaxAbsZ = az
		}
	}
	return s, nil
}

// Markdown renders the report as a compact document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Cases: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	var flagged []ColumnSummary
	for _, c := range r.Cols {
		missPct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", c.Name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		case KindFlag:
			b.WriteString(fmt.Sprintf("; true %d", c.True))
		}
		b.WriteString("\n")
		if len(c.OutlierCases) > 0 {
			flagged = append(flagged, c)
		}
	}
	if len(flagged) > 0 {
		b.WriteString(fmt.Sprintf("\n[OUTLIERS |z|>%.1f]\n", r.OutlierThreshold))
		for _, c := range flagged {
			b.WriteString(fmt.Sprintf("- %s (max |z|≈%.2f): %s\n", c.Name, c.OutliersMaxAbsZ, strings.Join(c.OutlierCases, ", ")))
		}
	}
	return b.String()
}
