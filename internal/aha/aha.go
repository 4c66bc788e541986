// Package aha converts the vendor 18-segment left-ventricle model to the
// AHA 17-segment model.
package aha

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// Scheme selects the weighting of the apical segments.
type Scheme int

const (
	// Scheme411 weights each apical segment 4:1:1 with its two ring
	// neighbours.
	Scheme411 Scheme = iota
	// SchemeVendor21 weights each apical segment 2:1 with one neighbour.
	SchemeVendor21
)

func (s Scheme) String() string {
	switch s {
	case Scheme411:
		return "4:1:1"
	case SchemeVendor21:
		return "vendor-2:1"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// ParseScheme accepts "4:1:1"/"411" and "vendor-2:1"/"2:1"/"21"/"vendor".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "4:1:1", "411":
		return Scheme411, nil
	case "vendor-2:1", "vendor", "2:1", "21":
		return SchemeVendor21, nil
	}
	return 0, fmt.Errorf("unknown apical scheme %q (use 4:1:1 or vendor-2:1)", s)
}

// Levels and walls of the vendor model.
var (
	levels = []string{"Basal", "Mid", "Apical"}
	walls  = []string{"Anteroseptal", "Anterior", "Lateral", "Posterior", "Inferior", "Septal"}
)

// Segments18 is the closed vendor vocabulary, basal to apical.
var Segments18 = func() []string {
	out := make([]string, 0, len(levels)*len(walls))
	for _, l := range levels {
		for _, w := range walls {
			out = append(out, l+" "+w)
		}
	}
	return out
}()

// Apex is the seventeenth AHA segment.
const Apex = "Apex"

// Segments17 is the closed AHA vocabulary in output order.
var Segments17 = []string{
	"Basal Anteroseptal", "Basal Anterior", "Basal Anterolateral", "Basal Inferolateral", "Basal Inferior", "Basal Inferoseptal",
	"Mid Anteroseptal", "Mid Anterior", "Mid Anterolateral", "Mid Inferolateral", "Mid Inferior", "Mid Inferoseptal",
	"Apical Anterior", "Apical Lateral", "Apical Inferior", "Apical Septal",
	Apex,
}

// renamed maps the basal/mid vendor walls whose AHA name differs.
var renamed = map[string]string{
	"Basal Septal":    "Basal Inferoseptal",
	"Mid Septal":      "Mid Inferoseptal",
	"Basal Posterior": "Basal Inferolateral",
	"Mid Posterior":   "Mid Inferolateral",
	"Basal Lateral":   "Basal Anterolateral",
	"Mid Lateral":     "Mid Anterolateral",
}

// weight is one term of an apical combination.
type weight struct {
	segment string
	w       float64
}

// apical lists, per scheme, the weighted vendor inputs of each apical AHA
// segment. Ring order: Anteroseptal, Anterior, Lateral, Posterior,
// Inferior, Septal.
var apical = map[Scheme]map[string][]weight{
	Scheme411: {
		"Apical Anterior": {{"Apical Anterior", 4}, {"Apical Anteroseptal", 1}, {"Apical Lateral", 1}},
		"Apical Lateral":  {{"Apical Lateral", 4}, {"Apical Anterior", 1}, {"Apical Posterior", 1}},
		"Apical Inferior": {{"Apical Inferior", 4}, {"Apical Posterior", 1}, {"Apical Septal", 1}},
		"Apical Septal":   {{"Apical Septal", 4}, {"Apical Inferior", 1}, {"Apical Anteroseptal", 1}},
	},
	SchemeVendor21: {
		"Apical Anterior": {{"Apical Anterior", 2}, {"Apical Anteroseptal", 1}},
		"Apical Septal":   {{"Apical Septal", 2}, {"Apical Anteroseptal", 1}},
		"Apical Inferior": {{"Apical Inferior", 2}, {"Apical Posterior", 1}},
		"Apical Lateral":  {{"Apical Lateral", 2}, {"Apical Posterior", 1}},
	},
}

// StripFeature returns the vendor segment a column label refers to: the
// label itself, a "<feature>_<segment>" suffix or a "<segment>_<feature>"
// prefix, matched case-insensitively.
func StripFeature(label string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, s := range Segments18 {
		ls := strings.ToLower(s)
		if l == ls || strings.HasSuffix(l, "_"+ls) || strings.HasPrefix(l, ls+"_") {
			return s, true
		}
	}
	return "", false
}

// Remap converts a table whose columns are vendor segments (possibly
// carrying a feature prefix or suffix) into the 17 AHA segments. Rows are
// kept. Basal and mid segments are copied, apical segments combined per
// scheme, and Apex is the mean of the six apical inputs. Every output is
// truncated toward zero. Unknown columns are dropped; a missing input
// yields NaN in the outputs that need it.
func Remap(in *table.Labelled, scheme Scheme) (*table.Labelled, error) {
	weights, ok := apical[scheme]
	if !ok {
		return nil, fmt.Errorf("remap: %v", scheme)
	}
	src := make(map[string]int, len(Segments18))
	for j, c := range in.Columns {
		seg, ok := StripFeature(c)
		if !ok {
			continue
		}
		if _, dup := src[seg]; !dup {
			src[seg] = j
		}
	}

	out := table.NewLabelled(in.Rows, Segments17)
	for i := range in.Rows {
		val := func(seg string) float64 {
			j, ok := src[seg]
			if !ok {
				return math.NaN()
			}
			return in.Values[i][j]
		}
		for k, name := range Segments17 {
			var v float64
			switch {
			case name == Apex:
				var sum float64
				for _, w := range walls {
					sum += val("Apical " + w)
				}
				v = sum / float64(len(walls))
			case weights[name] != nil:
				var sum, total float64
				for _, t := range weights[name] {
					sum += t.w * val(t.segment)
					total += t.w
				}
				v = sum / total
			default:
				v = val(vendorName(name))
			}
			out.Values[i][k] = math.Trunc(v)
		}
	}
	return out, nil
}

// vendorName maps a basal/mid AHA segment back to its vendor name.
func vendorName(aha string) string {
	for v, a := range renamed {
		if a == aha {
			return v
		}
	}
	return aha
}
