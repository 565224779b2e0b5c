package bias

import "sort"

// BiasAdjustment is the raw-vs-equal-weighted frequency comparison
// (spec.md §4.7 step 3 "Bias adjustment").
type BiasAdjustment struct {
	RawFrequency      float64
	AdjustedFrequency float64
	AdjustmentFactor  float64
	Reliability       string   // high, medium, low
	Impact            string   // minimal, moderate, significant
	MajorCMS          []string
}

// adjustmentFactorCap bounds the adjustment factor per spec.md §9
// "do not let adjustment_factor exceed a conservative cap".
const adjustmentFactorCap = 100.0

// BiasAdjustmentOf implements spec.md §4.7 step 3's bias-adjustment
// computation: identify major CMS (non-Unknown, >5% share), compare raw
// vs equal-weighted mean frequency across them.
func BiasAdjustmentOf(buckets map[string]*CMSBucket, pHeaderGivenCMS map[string]float64) BiasAdjustment {
	var major []string
	for cms, b := range buckets {
		if cms == "Unknown" {
			continue
		}
		if b.Percentage > 5 {
			major = append(major, cms)
		}
	}
	sort.Strings(major)

	var rawSum float64
	var rawCount int
	for _, p := range pHeaderGivenCMS {
		rawSum += p
		rawCount++
	}
	raw := 0.0
	if rawCount > 0 {
		raw = rawSum / float64(rawCount)
	}

	adjusted := raw
	if len(major) > 0 {
		var sum float64
		for _, cms := range major {
			sum += pHeaderGivenCMS[cms]
		}
		adjusted = sum / float64(len(major))
	}

	factor := 1.0
	if raw > 1e-9 {
		factor = adjusted / raw
	}
	if factor > adjustmentFactorCap {
		factor = adjustmentFactorCap
	}

	reliability := "low"
	switch {
	case len(major) >= 3:
		reliability = "high"
	case len(major) >= 2:
		reliability = "medium"
	}

	delta := factor - 1.0
	if delta < 0 {
		delta = -delta
	}
	impact := "significant"
	switch {
	case delta < 0.1:
		impact = "minimal"
	case delta < 0.3:
		impact = "moderate"
	}

	return BiasAdjustment{
		RawFrequency:      raw,
		AdjustedFrequency: adjusted,
		AdjustmentFactor:  factor,
		Reliability:       reliability,
		Impact:            impact,
		MajorCMS:          major,
	}
}
