package bias

import "math"

// PlatformSpecificity is a two-tier specificity score (spec.md §4.7
// step 3 "Platform specificity").
type PlatformSpecificity struct {
	Score    float64
	Method   string  // discriminative, coefficient_variation
	Adequacy string  // high, medium, low
}

var excludedCMSLabels = map[string]struct{}{
	"Unknown":    {},
	"Enterprise": {},
	"CDN":        {},
}

// PlatformSpecificityOf implements spec.md §4.7 step 3's two-tier
// specificity scoring.
func PlatformSpecificityOf(pCMSGivenHeader map[string]float64, occurrences int) PlatformSpecificity {
	adequacy := "low"
	switch {
	case occurrences >= 100:
		adequacy = "high"
	case occurrences >= 30:
		adequacy = "medium"
	}

	if occurrences >= 30 {
		return discriminativeSpecificity(pCMSGivenHeader, occurrences, adequacy)
	}
	return coefficientVariationSpecificity(pCMSGivenHeader, adequacy)
}

func discriminativeSpecificity(pCMSGivenHeader map[string]float64, occurrences int, adequacy string) PlatformSpecificity {
	var topP float64
	for cms, p := range pCMSGivenHeader {
		if _, excluded := excludedCMSLabels[cms]; excluded {
			continue
		}
		if p > topP {
			topP = p
		}
	}
	if topP <= 0.4 {
		return PlatformSpecificity{Score: 0, Method: "discriminative", Adequacy: adequacy}
	}

	concentration := clamp01(topP)
	sampleSize := clamp01(float64(occurrences) / 500.0)
	backgroundContrast := clamp01((topP - 0.4) / 0.6)

	score := 0.5*concentration + 0.3*sampleSize + 0.2*backgroundContrast
	return PlatformSpecificity{Score: clamp01(score), Method: "discriminative", Adequacy: adequacy}
}

func coefficientVariationSpecificity(pCMSGivenHeader map[string]float64, adequacy string) PlatformSpecificity {
	if len(pCMSGivenHeader) == 0 {
		return PlatformSpecificity{Score: 0, Method: "coefficient_variation", Adequacy: adequacy}
	}
	var values []float64
	var sum float64
	for _, p := range pCMSGivenHeader {
		values = append(values, p)
		sum += p
	}
	mean := sum / float64(len(values))
	if mean <= 1e-9 {
		return PlatformSpecificity{Score: 0, Method: "coefficient_variation", Adequacy: adequacy}
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	cv := math.Sqrt(variance) / mean

	score := cv
	if score > 1 {
		score = 1
	}
	return PlatformSpecificity{Score: score, Method: "coefficient_variation", Adequacy: adequacy}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
