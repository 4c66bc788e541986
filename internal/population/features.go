// Package population groups dataset rows by clinical label and summarises
// segment features across cases.
package population

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/echoloom-cli/internal/aha"
	"github.com/KaramelBytes/echoloom-cli/internal/analysis"
)

// Feature is a per-segment descriptor summarised across a population.
type Feature int

const (
	FeatureStrainAVC Feature = iota
	FeatureStrainMin
	FeatureTTP
	FeatureTTPRatio
	FeaturePSI
)

var featureStats = map[Feature]string{
	FeatureStrainAVC: analysis.StatStrainAVC,
	FeatureStrainMin: analysis.StatStrainMin,
	FeatureTTP:       analysis.StatTTP,
	FeatureTTPRatio:  analysis.StatTTPRatio,
	FeaturePSI:       analysis.StatPSI,
}

// featureColumns holds, per feature, the dataset column of every vendor
// segment, in aha.Segments18 order.
var featureColumns = func() map[Feature][]string {
	out := make(map[Feature][]string, len(featureStats))
	for f, stat := range featureStats {
		cols := make([]string, len(aha.Segments18))
		for j, s := range aha.Segments18 {
			cols[j] = s + "_" + stat
		}
		out[f] = cols
	}
	return out
}()

// String returns the descriptor suffix of the feature.
func (f Feature) String() string {
	if s, ok := featureStats[f]; ok {
		return s
	}
	return fmt.Sprintf("Feature(%d)", int(f))
}

// Columns returns the dataset columns of the feature.
func (f Feature) Columns() []string {
	return append([]string(nil), featureColumns[f]...)
}

// ParseFeature resolves a descriptor suffix such as "strain_min".
func ParseFeature(s string) (Feature, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, stat := range featureStats {
		if stat == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown feature %q (use strain_avc, strain_min, ttp, ttp_ratio or psi_pct)", s)
}
