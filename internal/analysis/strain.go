// Package analysis derives strain descriptors from parsed cases.
package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// Descriptor statistic suffixes, in output order.
const (
	StatStrainAVC = "strain_avc"
	StatStrainMin = "strain_min"
	StatTTP       = "ttp"
	StatTTPRatio  = "ttp_ratio"
	StatPSI       = "psi_pct"
	StatPostSys   = "postsys"
)

// Descriptor holds the strain features of one channel.
type Descriptor struct {
	Channel   string
	AtClosure float64 // strain at the sample nearest valve closure
	Peak      float64 // minimum strain
	TTP       float64 // time of the first minimum (s)
	TTPRatio  float64 // TTP / last sample time
	PSI       float64 // (Peak - AtClosure) / Peak * 100
	PostSys   bool    // TTP strictly after the closure sample
}

// StrainDescriptors computes a Descriptor per channel of a strain trace
// against the valve-closure time avc (seconds). A trace without samples
// yields NaN descriptors.
func StrainDescriptors(tr *table.Trace, avc float64) ([]Descriptor, error) {
	if tr == nil {
		return nil, fmt.Errorf("strain descriptors: nil trace")
	}
	out := make([]Descriptor, len(tr.Columns))
	if tr.Len() == 0 {
		nan := math.NaN()
		for j, name := range tr.Columns {
			out[j] = Descriptor{Channel: name, AtClosure: nan, Peak: nan, TTP: nan, TTPRatio: nan, PSI: nan}
		}
		return out, nil
	}
	ref := tr.Nearest(avc)
	refTime := tr.Time[ref]
	maxTime := tr.MaxTime()

	for j, name := range tr.Columns {
		col := tr.ColumnAt(j)
		k := argMin(col)
		d := Descriptor{Channel: name, AtClosure: col[ref], Peak: math.NaN(), TTP: math.NaN(), TTPRatio: math.NaN()}
		if k >= 0 {
			d.Peak = col[k]
			d.TTP = tr.Time[k]
			if maxTime > 0 {
				d.TTPRatio = d.TTP / maxTime
			}
		}
		d.PSI = PostSystolicIndex(d.Peak, d.AtClosure)
		d.PostSys = d.TTP > refTime
		out[j] = d
	}
	return out, nil
}

// PostSystolicIndex is the percentage by which the at-closure strain falls
// short of the peak. A zero peak gives NaN.
func PostSystolicIndex(peak, atClosure float64) float64 {
	if peak == 0 || math.IsNaN(peak) {
		return math.NaN()
	}
	return (peak - atClosure) / peak * 100
}

// FlattenDescriptors appends <channel>_<stat> cells for every descriptor.
func FlattenDescriptors(row *table.Row, ds []Descriptor) {
	for _, d := range ds {
		row.SetNumber(d.Channel+"_"+StatStrainAVC, d.AtClosure)
		row.SetNumber(d.Channel+"_"+StatStrainMin, d.Peak)
		row.SetNumber(d.Channel+"_"+StatTTP, d.TTP)
		row.SetNumber(d.Channel+"_"+StatTTPRatio, d.TTPRatio)
		row.SetNumber(d.Channel+"_"+StatPSI, d.PSI)
		row.SetFlag(d.Channel+"_"+StatPostSys, d.PostSys)
	}
}

// argMin returns the index of the first minimum, skipping NaN, or -1.
func argMin(vals []float64) int {
	k := -1
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if k < 0 || v < vals[k] {
			k = i
		}
	}
	return k
}
