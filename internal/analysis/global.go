package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// SignTolerance is the window (s) within which a peak counts as at closure.
const SignTolerance = 1e-3

// Global descriptor column names.
const (
	ColMaxGLSBeforeAVC = "max_gls_before_avc"
	ColMaxGLS          = "max_gls"
	ColMaxGLSTime      = "max_gls_time"
	ColAVCTime         = "avc_time"
	ColGLSPSI          = "gls_psi"
)

// GlobalDescriptor summarises a whole-cycle global strain trace.
type GlobalDescriptor struct {
	BeforeAVC float64 // minimum over samples at or before the closure sample
	Peak      float64 // overall minimum
	PeakTime  float64 // time of the overall minimum
	AVCTime   float64 // time of the closure sample
}

// GlobalStrain computes the global descriptor of a (time, value) series.
// An empty series yields NaN everywhere.
func GlobalStrain(ts, vals []float64, avc float64) (GlobalDescriptor, error) {
	if len(ts) != len(vals) {
		return GlobalDescriptor{}, fmt.Errorf("global strain: %d times, %d values", len(ts), len(vals))
	}
	g := GlobalDescriptor{AVCTime: math.NaN(), BeforeAVC: math.NaN(), Peak: math.NaN(), PeakTime: math.NaN()}
	if len(ts) == 0 {
		return g, nil
	}
	g.AVCTime = ts[table.NearestIndex(ts, avc)]
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if ts[i] <= g.AVCTime && (math.IsNaN(g.BeforeAVC) || v < g.BeforeAVC) {
			g.BeforeAVC = v
		}
		if math.IsNaN(g.Peak) || v < g.Peak {
			g.Peak, g.PeakTime = v, ts[i]
		}
	}
	return g, nil
}

// Flatten appends the global descriptor cells.
func (g GlobalDescriptor) Flatten(row *table.Row) {
	row.SetNumber(ColMaxGLSBeforeAVC, g.BeforeAVC)
	row.SetNumber(ColMaxGLS, g.Peak)
	row.SetNumber(ColAVCTime, g.AVCTime)
	row.SetNumber(ColMaxGLSTime, g.PeakTime)
}

// PostSystolicSign places the peak of a channel relative to the closure
// sample: -1 before, 0 within SignTolerance, +1 after.
func PostSystolicSign(ts, vals []float64, avcTime float64) int {
	k := argMin(vals)
	if k < 0 {
		return 0
	}
	d := ts[k] - avcTime
	switch {
	case math.Abs(d) < SignTolerance:
		return 0
	case d > 0:
		return 1
	default:
		return -1
	}
}

// SignColumn names the post-systolic sign cell of a channel. The global
// channel is reported as gls_psi.
func SignColumn(channel string) string {
	c := strings.ToLower(channel)
	if c == "global" {
		return ColGLSPSI
	}
	return c + "_psi"
}

// signCell is PostSystolicSign as a cell value, NaN when the channel has
// no finite sample or the closure time is unknown.
func signCell(ts, vals []float64, avcTime float64) float64 {
	if math.IsNaN(avcTime) || argMin(vals) < 0 {
		return math.NaN()
	}
	return float64(PostSystolicSign(ts, vals, avcTime))
}

// FlattenSigns appends <channel>_psi cells for every channel of a trace.
func FlattenSigns(row *table.Row, tr *table.Trace, avcTime float64) {
	for j, name := range tr.Columns {
		row.SetNumber(SignColumn(name), signCell(tr.Time, tr.ColumnAt(j), avcTime))
	}
}
