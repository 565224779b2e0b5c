package bias

// RiskFactor is one tagged contributor to a recommendation-risk
// assessment (spec.md §9 "tagged variants... rather than untyped
// property bags").
type RiskFactor struct {
	Name  string // platform_specificity, dataset_bias, sample_size, statistical_significance, value_diversity
	Level string // low, medium, high
}

// RecommendationRisk is spec.md §4.7 step 3 "Recommendation risk".
type RecommendationRisk struct {
	Factors              []RiskFactor
	OverallRisk          string
	ConfidenceLevel      float64
	MitigationStrategies []string
}

// RecommendationRiskOf derives the enumerated risk-factor list and
// overall risk bucket for one header correlation.
func RecommendationRiskOf(corr *HeaderCorrelation) RecommendationRisk {
	var factors []RiskFactor

	factors = append(factors, RiskFactor{Name: "platform_specificity", Level: levelFromScore(corr.Specificity.Score)})

	biasLevel := "low"
	switch corr.Adjustment.Impact {
	case "significant":
		biasLevel = "high"
	case "moderate":
		biasLevel = "medium"
	}
	factors = append(factors, RiskFactor{Name: "dataset_bias", Level: biasLevel})

	sampleLevel := "high"
	switch corr.Specificity.Adequacy {
	case "high":
		sampleLevel = "low"
	case "medium":
		sampleLevel = "medium"
	}
	factors = append(factors, RiskFactor{Name: "sample_size", Level: sampleLevel})

	significantCount := 0
	for _, sig := range corr.Conditional.Significant {
		if sig {
			significantCount++
		}
	}
	sigLevel := "low"
	if significantCount == 0 {
		sigLevel = "high"
	} else if significantCount == 1 {
		sigLevel = "medium"
	}
	factors = append(factors, RiskFactor{Name: "statistical_significance", Level: sigLevel})

	diversityLevel := "low"
	if corr.UniqueValues > 10 {
		diversityLevel = "high"
	} else if corr.UniqueValues > 3 {
		diversityLevel = "medium"
	}
	factors = append(factors, RiskFactor{Name: "value_diversity", Level: diversityLevel})

	overall := "low"
	mediumCount := 0
	for _, f := range factors {
		if f.Level == "high" {
			overall = "high"
		}
		if f.Level == "medium" {
			mediumCount++
		}
	}
	if overall != "high" && mediumCount > 1 {
		overall = "medium"
	}

	confidence := 1.0
	switch overall {
	case "medium":
		confidence = 0.6
	case "high":
		confidence = 0.3
	}

	var mitigations []string
	if biasLevel != "low" {
		mitigations = append(mitigations, "collect additional samples from under-represented CMS platforms")
	}
	if sigLevel == "high" {
		mitigations = append(mitigations, "treat this header's CMS correlation as exploratory, not significant")
	}
	if sampleLevel == "high" {
		mitigations = append(mitigations, "increase total sample size before relying on this header")
	}

	return RecommendationRisk{
		Factors:              factors,
		OverallRisk:          overall,
		ConfidenceLevel:      confidence,
		MitigationStrategies: mitigations,
	}
}

func levelFromScore(score float64) string {
	switch {
	case score > 0.7:
		return "high"
	case score > 0.3:
		return "medium"
	default:
		return "low"
	}
}
