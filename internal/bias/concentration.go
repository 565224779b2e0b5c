package bias

import "github.com/jabbermarky/site-pattern-analyzer/internal/stats"

// ConcentrationMetrics bundles the HHI/Shannon/dominance-ratio view of a
// CMS distribution along with derived risk levels (spec.md §4.7 step 2).
type ConcentrationMetrics struct {
	HHI                float64
	ShannonDiversity   float64
	EffectivePlatforms float64
	DominanceRatio     float64
	ConcentrationRisk  string  // low, medium, high
	DiversityRisk      string  // low, medium, high
	OverallRisk        string
}

// Concentration implements spec.md §4.7 step 2.
func Concentration(buckets map[string]*CMSBucket) ConcentrationMetrics {
	var percentages, proportions []float64
	for _, b := range buckets {
		percentages = append(percentages, b.Percentage)
		proportions = append(proportions, b.Percentage/100)
	}

	hhi := stats.HHI(percentages)
	shannon := stats.ShannonDiversity(proportions)
	effective := stats.EffectiveCount(shannon)
	dominance := stats.DominanceRatio(percentages)

	concentrationRisk := "low"
	switch {
	case hhi > 0.6:
		concentrationRisk = "high"
	case hhi > 0.3:
		concentrationRisk = "medium"
	}

	diversityRisk := "low"
	switch {
	case shannon < 1:
		diversityRisk = "high"
	case shannon < 2:
		diversityRisk = "medium"
	}

	overall := worseRisk(concentrationRisk, diversityRisk)

	return ConcentrationMetrics{
		HHI:                hhi,
		ShannonDiversity:   shannon,
		EffectivePlatforms: effective,
		DominanceRatio:     dominance,
		ConcentrationRisk:  concentrationRisk,
		DiversityRisk:      diversityRisk,
		OverallRisk:        overall,
	}
}

func worseRisk(a, b string) string {
	rank := map[string]int{"low": 0, "medium": 1, "high": 2}
	if rank[a] >= rank[b] {
		return a
	}
	return b
}
