package analysis

import (
	"math"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// FrameRateColumn names the average frame rate cell of a view.
func FrameRateColumn(v echo.View) string { return "avg_" + string(v) + "_strain_fr" }

// SingleViewFrameRateColumn holds the header frame rate of a text export.
const SingleViewFrameRateColumn = "frame_rate (FPS)"

// AverageFrameRate returns round(1/mean(diff(time))), NaN with fewer than
// two samples.
func AverageFrameRate(ts []float64) float64 {
	if len(ts) < 2 {
		return math.NaN()
	}
	step := (ts[len(ts)-1] - ts[0]) / float64(len(ts)-1)
	if step <= 0 {
		return math.NaN()
	}
	return math.Round(1 / step)
}

// MeanGlobalTrace is the row-wise mean of the segment strains of one view.
type MeanGlobalTrace struct {
	View   echo.View
	Time   []float64
	Strain []float64
}

// MeanGlobalTraces averages the segment strains of every view of a full
// export. A single-view case yields its GLOBAL channel.
func MeanGlobalTraces(c *echo.Case) []MeanGlobalTrace {
	if c.Kind == echo.KindSingleView {
		tr, ok := c.Trace(echo.SingleViewTrace)
		if !ok {
			return nil
		}
		vals, ok := tr.Column(echo.GlobalChannel)
		if !ok {
			vals = tr.RowMeans()
		}
		return []MeanGlobalTrace{{View: "", Time: append([]float64(nil), tr.Time...), Strain: vals}}
	}
	var out []MeanGlobalTrace
	for _, v := range echo.Views {
		tr, ok := c.StrainTrace(v)
		if !ok {
			continue
		}
		out = append(out, MeanGlobalTrace{View: v, Time: append([]float64(nil), tr.Time...), Strain: tr.RowMeans()})
	}
	return out
}

// frameRates appends the per-view average frame rate cells.
func frameRates(row *table.Row, c *echo.Case) {
	for _, v := range echo.Views {
		fr := math.NaN()
		if tr, ok := c.StrainTrace(v); ok {
			fr = AverageFrameRate(tr.Time)
		}
		row.SetNumber(FrameRateColumn(v), fr)
	}
}
