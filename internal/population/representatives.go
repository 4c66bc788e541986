package population

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
)

// Representative is the case of a group closest to the group median.
type Representative struct {
	Label    string
	ID       string
	Distance float64
}

// Representatives picks, per group, the case whose feature columns lie
// closest (Euclidean, after standardising every column over all grouped
// cases) to the group's per-column median. Columns a case lacks are
// skipped; a case with no usable column is never picked.
func Representatives(d *dataset.Dataset, groups []Group, f Feature) ([]Representative, error) {
	cols := presentColumns(d, f)
	if len(cols) == 0 {
		return nil, fmt.Errorf("dataset has no %s segment columns", f)
	}
	var all []string
	for _, g := range groups {
		all = append(all, g.IDs...)
	}
	sds := make(map[string]float64, len(cols))
	for _, c := range cols {
		vals := values(d, all, c)
		if len(vals) == 0 {
			continue
		}
		sd, err := stats.StandardDeviation(vals)
		if err != nil || sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		sds[c] = sd
	}

	var out []Representative
	for _, g := range groups {
		medians := make(map[string]float64, len(cols))
		for _, c := range cols {
			if vals := values(d, g.IDs, c); len(vals) > 0 {
				medians[c], _ = stats.Median(vals)
			}
		}
		best := Representative{Label: g.Label, Distance: math.Inf(1)}
		for _, id := range g.IDs {
			dist, ok := distance(d, id, cols, medians, sds)
			if ok && dist < best.Distance {
				best.ID, best.Distance = id, dist
			}
		}
		if best.ID == "" {
			continue
		}
		out = append(out, best)
	}
	return out, nil
}

func distance(d *dataset.Dataset, id string, cols []string, medians, sds map[string]float64) (float64, bool) {
	r, ok := d.Row(id)
	if !ok {
		return 0, false
	}
	var sum float64
	used := 0
	for _, c := range cols {
		m, ok := medians[c]
		if !ok {
			continue
		}
		v, ok := r.Get(c)
		if !ok {
			continue
		}
		x, ok := v.Float()
		if !ok {
			continue
		}
		z := (x - m) / sds[c]
		sum += z * z
		used++
	}
	if used == 0 {
		return 0, false
	}
	return math.Sqrt(sum), true
}
