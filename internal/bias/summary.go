package bias

import "math"

// StatisticalSummary aggregates across all header correlations
// (spec.md §4.7 step 5).
type StatisticalSummary struct {
	ConfidenceDistribution map[string]int // low, medium, high
	AverageChiSquare       float64
	AveragePValue          float64
	SignificantHeaderCount int
	SampleAdequacy         map[string]int // adequate, marginal, inadequate
	OverallQualityScore    float64
}

// Summarize implements spec.md §4.7 step 5.
func Summarize(correlations map[string]*HeaderCorrelation, concentration ConcentrationMetrics, totalSites int) StatisticalSummary {
	confidenceDist := map[string]int{"low": 0, "medium": 0, "high": 0}
	sampleAdequacy := map[string]int{"adequate": 0, "marginal": 0, "inadequate": 0}

	var chiSum, pSum float64
	var count int
	significant := 0

	for _, corr := range correlations {
		headerSignificant := false
		for _, cms := range corr.PerCMS {
			chiSum += cms.ChiSquareContribution
			count++
			if cms.Expected >= 5 {
				sampleAdequacy["adequate"]++
			} else if cms.Expected >= 2 {
				sampleAdequacy["marginal"]++
			} else {
				sampleAdequacy["inadequate"]++
			}
			if cms.Significant {
				headerSignificant = true
			}
		}
		if headerSignificant {
			significant++
		}

		switch confidenceBucket(corr.Risk.ConfidenceLevel) {
		case "low":
			confidenceDist["low"]++
		case "medium":
			confidenceDist["medium"]++
		default:
			confidenceDist["high"]++
		}
	}

	avgChi := 0.0
	if count > 0 {
		avgChi = chiSum / float64(count)
	}

	diversityComponent := concentration.ShannonDiversity / 3.0
	if diversityComponent > 1 {
		diversityComponent = 1
	}
	concentrationComponent := 1 - concentration.HHI
	sampleComponent := 0.0
	if totalSites > 0 {
		sampleComponent = math.Log10(float64(totalSites)) / math.Log10(1000)
		if sampleComponent > 1 {
			sampleComponent = 1
		}
	}
	quality := (diversityComponent + concentrationComponent + sampleComponent) / 3.0

	return StatisticalSummary{
		ConfidenceDistribution: confidenceDist,
		AverageChiSquare:       avgChi,
		SignificantHeaderCount: significant,
		SampleAdequacy:         sampleAdequacy,
		OverallQualityScore:    quality,
	}
}

func confidenceBucket(confidence float64) string {
	switch {
	case confidence < 0.5:
		return "low"
	case confidence < 0.8:
		return "medium"
	default:
		return "high"
	}
}
