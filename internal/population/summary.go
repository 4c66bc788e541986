package population

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/echoloom-cli/internal/aha"
	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// Summary row labels.
const (
	RowMean   = "mean"
	RowMedian = "median"
)

// values collects the finite values of a column over the given cases.
func values(d *dataset.Dataset, ids []string, col string) []float64 {
	var out []float64
	for _, id := range ids {
		r, ok := d.Row(id)
		if !ok {
			continue
		}
		v, ok := r.Get(col)
		if !ok {
			continue
		}
		if f, ok := v.Float(); ok && !math.IsInf(f, 0) {
			out = append(out, f)
		}
	}
	return out
}

// presentColumns keeps the feature columns the dataset carries.
func presentColumns(d *dataset.Dataset, f Feature) []string {
	have := make(map[string]struct{})
	for _, c := range d.Columns() {
		have[c] = struct{}{}
	}
	var out []string
	for _, c := range f.Columns() {
		if _, ok := have[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SegmentSummary computes the mean and median of a feature per vendor
// segment over the given cases. Columns without values are NaN.
func SegmentSummary(d *dataset.Dataset, ids []string, f Feature) (*table.Labelled, error) {
	cols := presentColumns(d, f)
	if len(cols) == 0 {
		return nil, fmt.Errorf("dataset has no %s segment columns", f)
	}
	out := table.NewLabelled([]string{RowMean, RowMedian}, cols)
	for _, c := range cols {
		vals := values(d, ids, c)
		if len(vals) == 0 {
			continue
		}
		mean, err := stats.Mean(vals)
		if err != nil {
			return nil, fmt.Errorf("mean %s: %w", c, err)
		}
		median, err := stats.Median(vals)
		if err != nil {
			return nil, fmt.Errorf("median %s: %w", c, err)
		}
		if err := out.Set(RowMean, c, mean); err != nil {
			return nil, err
		}
		if err := out.Set(RowMedian, c, median); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AHASummary is SegmentSummary remapped to the 17 AHA segments.
func AHASummary(d *dataset.Dataset, ids []string, f Feature, scheme aha.Scheme) (*table.Labelled, error) {
	s, err := SegmentSummary(d, ids, f)
	if err != nil {
		return nil, err
	}
	return aha.Remap(s, scheme)
}
