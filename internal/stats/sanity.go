package stats

import (
	"fmt"
	"math"
)

// SanityResult is a pass/fail outcome with a human-readable message,
// per spec.md §4.1 "Sanity checks."
type SanityResult struct {
	Name    string
	Passed  bool
	Message string
}

// CorrelationSumCheck verifies that a set of correlations (e.g. per-CMS
// shares of a header's occurrences) sums to 1 within tolerance 0.01.
func CorrelationSumCheck(correlations []float64) SanityResult {
	var sum float64
	for _, c := range correlations {
		sum += c
	}
	ok := math.Abs(sum-1.0) <= 0.01
	return SanityResult{
		Name:    "correlation_sum",
		Passed:  ok,
		Message: msgf(ok, "correlations sum to %.4f (expected 1.0 +/- 0.01)", sum),
	}
}

// CorrelationRangeCheck verifies every correlation lies in [0,1].
func CorrelationRangeCheck(correlations []float64) SanityResult {
	for _, c := range correlations {
		if c < 0 || c > 1 {
			return SanityResult{Name: "correlation_range", Passed: false, Message: "correlation out of [0,1] range"}
		}
	}
	return SanityResult{Name: "correlation_range", Passed: true, Message: "all correlations within [0,1]"}
}

// BayesianConsistencyCheck verifies |P(A|B)P(B) - P(B|A)P(A)| / max(...) < 0.05,
// the symmetric-joint-probability identity P(A,B)=P(A|B)P(B)=P(B|A)P(A).
func BayesianConsistencyCheck(pAGivenB, pB, pBGivenA, pA float64) SanityResult {
	left := pAGivenB * pB
	right := pBGivenA * pA
	denom := math.Max(left, right)
	var ratio float64
	if denom > epsilon {
		ratio = math.Abs(left-right) / denom
	}
	ok := ratio < 0.05
	return SanityResult{
		Name:    "bayesian_consistency",
		Passed:  ok,
		Message: msgf(ok, "Bayesian joint-probability mismatch ratio %.4f (expected < 0.05)", ratio),
	}
}

// FrequencyConsistencyCheck verifies frequency == siteCount/totalSites
// within 1e-3.
func FrequencyConsistencyCheck(frequency float64, siteCount, totalSites int) SanityResult {
	if totalSites == 0 {
		ok := frequency == 0
		return SanityResult{Name: "frequency_consistency", Passed: ok, Message: msgf(ok, "empty dataset, frequency=%.4f", frequency)}
	}
	expected := float64(siteCount) / float64(totalSites)
	ok := math.Abs(frequency-expected) <= 1e-3
	return SanityResult{
		Name:    "frequency_consistency",
		Passed:  ok,
		Message: msgf(ok, "frequency %.6f vs expected %.6f", frequency, expected),
	}
}

// AllSanityChecks runs all six sanity checks used by the Validation
// Pipeline's SanityValidation stage and returns them in a fixed order.
func AllSanityChecks(correlations []float64, pAGivenB, pB, pBGivenA, pA, frequency float64, siteCount, totalSites int) []SanityResult {
	return []SanityResult{
		CorrelationSumCheck(correlations),
		CorrelationRangeCheck(correlations),
		BayesianConsistencyCheck(pAGivenB, pB, pBGivenA, pA),
		FrequencyConsistencyCheck(frequency, siteCount, totalSites),
		nonNegativeProbabilityCheck(pAGivenB, "p_a_given_b"),
		nonNegativeProbabilityCheck(pBGivenA, "p_b_given_a"),
	}
}

func nonNegativeProbabilityCheck(p float64, name string) SanityResult {
	ok := p >= 0 && p <= 1
	return SanityResult{
		Name:    name + "_range",
		Passed:  ok,
		Message: msgf(ok, "%s=%.4f within [0,1]", name, p),
	}
}

func msgf(ok bool, format string, args ...interface{}) string {
	prefix := "OK: "
	if !ok {
		prefix = "FAIL: "
	}
	return prefix + fmt.Sprintf(format, args...)
}
