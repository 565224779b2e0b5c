package validation

import (
	"fmt"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/stats"
)

// FrequencyValidation drops patterns below min_occurrences and warns on
// suspiciously rare or suspiciously universal frequencies (spec.md §4.6
// stage 1).
type FrequencyValidation struct{}

func (s *FrequencyValidation) Name() string { return "FrequencyValidation" }

func (s *FrequencyValidation) Run(ctx *Context) StageResult {
	result := StageResult{Stage: s.Name(), Metrics: map[string]float64{}}

	validated := 0
	filtered := 0
	for key, p := range ctx.ValidatedPatterns {
		if p.SiteCount < ctx.MinOccurrences {
			delete(ctx.ValidatedPatterns, key)
			filtered++
			continue
		}
		validated++
		if p.Frequency < 0.01 {
			result.Warnings = append(result.Warnings, Warning{Stage: s.Name(), Severity: SeverityWarning, Message: fmt.Sprintf("%s: frequency %.4f is unusually rare", key, p.Frequency)})
		}
		if p.Frequency > 0.95 {
			result.Warnings = append(result.Warnings, Warning{Stage: s.Name(), Severity: SeverityWarning, Message: fmt.Sprintf("%s: frequency %.4f is suspiciously universal", key, p.Frequency)})
		}
	}

	result.PatternsValidated = validated
	result.PatternsFiltered = filtered
	total := validated + filtered
	score := 1.0
	if total > 0 {
		score = float64(validated) / float64(total)
	}
	result.Score = score
	result.Passed = score >= 0.5
	result.Metrics["validated_ratio"] = score
	return result
}

// SampleSizeValidation errors on too-small datasets and computes power,
// sample adequacy, and statistical reliability (spec.md §4.6 stage 2).
type SampleSizeValidation struct{}

func (s *SampleSizeValidation) Name() string { return "SampleSizeValidation" }

func (s *SampleSizeValidation) Run(ctx *Context) StageResult {
	result := StageResult{Stage: s.Name(), Metrics: map[string]float64{}}

	total := ctx.Dataset.TotalSites
	if total < 5 {
		result.Errors = append(result.Errors, ValidationError{Stage: s.Name(), Message: fmt.Sprintf("total_sites %d below minimum viable sample of 5", total)})
	}

	power := stats.StatisticalPower(total, 0.1)
	result.Metrics["observed_power"] = power.ObservedPower
	result.Metrics["required_sample_size"] = float64(power.RequiredSampleSize)

	adequacy := 1.0
	if power.RequiredSampleSize > 0 {
		adequacy = float64(total) / float64(power.RequiredSampleSize)
		if adequacy > 1 {
			adequacy = 1
		}
	}
	result.Metrics["sample_adequacy"] = adequacy

	reliability := 0.5*power.ObservedPower + 0.5*adequacy
	result.Metrics["statistical_reliability"] = reliability
	ctx.Metrics.SampleAdequacy = adequacy
	ctx.Metrics.StatisticalReliability = reliability

	result.Score = reliability
	result.Passed = result.Score >= 0.5 && len(result.Errors) == 0
	return result
}

// DistributionValidation computes distribution moments and flags
// outliers into FlaggedPatterns (spec.md §4.6 stage 3).
type DistributionValidation struct{}

func (s *DistributionValidation) Name() string { return "DistributionValidation" }

func (s *DistributionValidation) Run(ctx *Context) StageResult {
	result := StageResult{Stage: s.Name(), Metrics: map[string]float64{}}

	freqs := make([]float64, 0, len(ctx.ValidatedPatterns))
	keys := make([]string, 0, len(ctx.ValidatedPatterns))
	for key, p := range ctx.ValidatedPatterns {
		freqs = append(freqs, p.Frequency)
		keys = append(keys, key)
	}

	if len(freqs) == 0 {
		result.Score = 1.0
		result.Passed = true
		return result
	}

	moments := stats.Moments(freqs)
	result.Metrics["skewness"] = moments.Skewness
	result.Metrics["excess_kurtosis"] = moments.ExcessKurtosis

	outliers := stats.DetectOutliers(freqs, 2.5)
	for _, o := range outliers {
		ctx.FlaggedPatterns[keys[o.Index]] = struct{}{}
	}
	result.Metrics["outlier_count"] = float64(len(outliers))

	if moments.Skewness > 2 || moments.Skewness < -2 {
		result.Warnings = append(result.Warnings, Warning{Stage: s.Name(), Severity: SeverityWarning, Message: fmt.Sprintf("extreme skew %.2f in pattern frequency distribution", moments.Skewness)})
	}

	distributionHealth := 1.0
	if len(freqs) > 0 {
		outlierRatio := float64(len(outliers)) / float64(len(freqs))
		distributionHealth = clamp01(1 - outlierRatio)
	}
	ctx.Metrics.DistributionHealth = distributionHealth

	result.Score = distributionHealth
	result.Passed = result.Score >= 0.5
	return result
}

// CorrelationValidation computes CMS balance and warns on imbalance
// (spec.md §4.6 stage 4).
type CorrelationValidation struct{}

func (s *CorrelationValidation) Name() string { return "CorrelationValidation" }

func (s *CorrelationValidation) Run(ctx *Context) StageResult {
	result := StageResult{Stage: s.Name(), Metrics: map[string]float64{}}

	counts := make(map[string]int)
	for _, site := range ctx.Dataset.Sites {
		counts[site.CMSLabel()]++
	}
	total := ctx.Dataset.TotalSites

	maxShare := 0.0
	for _, c := range counts {
		if total == 0 {
			continue
		}
		share := float64(c) / float64(total)
		if share > maxShare {
			maxShare = share
		}
	}
	result.Metrics["max_cms_share"] = maxShare

	if maxShare > 0.8 {
		result.Warnings = append(result.Warnings, Warning{Stage: s.Name(), Severity: SeverityWarning, Message: fmt.Sprintf("CMS distribution imbalanced: top class at %.1f%%", maxShare*100)})
	}

	correlationStrength := clamp01(1 - maxShare)
	result.Metrics["correlation_strength"] = correlationStrength
	ctx.Metrics.CorrelationStrength = correlationStrength

	result.Score = correlationStrength
	result.Passed = result.Score >= 0.5 || total == 0
	return result
}

// SanityValidation runs all six Statistical Kernel sanity checks
// (spec.md §4.6 stage 5).
type SanityValidation struct{}

func (s *SanityValidation) Name() string { return "SanityValidation" }

func (s *SanityValidation) Run(ctx *Context) StageResult {
	result := StageResult{Stage: s.Name(), Metrics: map[string]float64{}}

	correlations := make([]float64, 0, len(ctx.ValidatedPatterns))
	var sample *dataset.PatternRecord
	for _, p := range ctx.ValidatedPatterns {
		correlations = append(correlations, p.Frequency)
		if sample == nil {
			sample = p
		}
	}

	pAGivenB, pB, pBGivenA, pA := 1.0, 1.0, 1.0, 1.0
	frequency, siteCount := 0.0, 0
	if sample != nil {
		frequency = sample.Frequency
		siteCount = sample.SiteCount
	}

	checks := stats.AllSanityChecks(correlations, pAGivenB, pB, pBGivenA, pA, frequency, siteCount, ctx.Dataset.TotalSites)

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
		if !c.Passed {
			result.Warnings = append(result.Warnings, Warning{Stage: s.Name(), Severity: SeverityWarning, Message: c.Name + ": " + c.Message})
		}
	}

	result.Metrics["sanity_checks_passed"] = float64(passed)
	rate := float64(passed) / float64(len(checks))
	result.Metrics["sanity_success_rate"] = rate

	result.Score = rate
	result.Passed = rate >= 0.5
	return result
}

// SignificanceValidation runs a significance test on each pattern and
// flags non-significant ones (spec.md §4.6 stage 6).
type SignificanceValidation struct{}

func (s *SignificanceValidation) Name() string { return "SignificanceValidation" }

func (s *SignificanceValidation) Run(ctx *Context) StageResult {
	result := StageResult{Stage: s.Name(), Metrics: map[string]float64{}}

	total := ctx.Dataset.TotalSites
	var pSum float64
	var significant int
	count := 0

	for _, p := range ctx.ValidatedPatterns {
		pValue, _, _ := stats.BinomialTest(p.SiteCount, total, 0.05)
		pSum += pValue
		count++
		if pValue < 0.05 {
			significant++
		}
	}

	avgP := 0.0
	rate := 0.0
	if count > 0 {
		avgP = pSum / float64(count)
		rate = float64(significant) / float64(count)
	}

	result.Metrics["average_p_value"] = avgP
	result.Metrics["significance_rate"] = rate

	result.Score = rate
	result.Passed = count == 0 || rate >= 0.3
	return result
}

// RecommendationValidation aggregates every recommendation emitted by
// prior stages and warns on low mean confidence (spec.md §4.6 stage 7).
type RecommendationValidation struct{}

func (s *RecommendationValidation) Name() string { return "RecommendationValidation" }

func (s *RecommendationValidation) Run(ctx *Context) StageResult {
	result := StageResult{Stage: s.Name(), Metrics: map[string]float64{}}

	if len(ctx.Recommendations) == 0 {
		result.Score = 1.0
		result.Passed = true
		return result
	}

	var sum float64
	for _, r := range ctx.Recommendations {
		sum += r.Confidence
	}
	mean := sum / float64(len(ctx.Recommendations))
	result.Metrics["mean_recommendation_confidence"] = mean

	if mean < 0.5 {
		result.Warnings = append(result.Warnings, Warning{Stage: s.Name(), Severity: SeverityWarning, Message: fmt.Sprintf("mean recommendation confidence %.2f below 0.5", mean)})
	}

	result.Score = mean
	result.Passed = mean >= 0.5
	return result
}
