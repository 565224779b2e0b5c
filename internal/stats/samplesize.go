package stats

import "math"

// zFor95 is the Z critical value used for minimum-sample-size
// calculations at the conventional 95% confidence level.
const zFor95 = 1.96

// MinimumSampleSize computes n = ceil(z^2 * p(1-p) / marginOfError^2)
// with a finite-population correction against populationSize, per
// spec.md §4.1. populationSize<=0 disables the correction.
func MinimumSampleSize(p, marginOfError float64, populationSize int) int {
	if marginOfError <= 0 {
		return 0
	}
	raw := (zFor95 * zFor95 * p * (1 - p)) / (marginOfError * marginOfError)

	if populationSize > 0 {
		raw = raw / (1 + (raw-1)/float64(populationSize))
	}

	n := int(math.Ceil(raw))
	if n < 1 {
		n = 1
	}
	return n
}

// PowerResult reports observed/required sample sizes and whether the
// sample is adequate to detect a minimum detectable frequency.
type PowerResult struct {
	RequiredSampleSize int
	ObservedPower      float64
	Adequate           bool
}

// StatisticalPower computes required = max(30, ceil(20/minDetectableFrequency))
// and observed = min(1, max(0.3, n/required)); adequate iff observed>=0.8,
// per spec.md §4.1.
func StatisticalPower(n int, minDetectableFrequency float64) PowerResult {
	if minDetectableFrequency <= 0 {
		minDetectableFrequency = epsilon
	}
	required := int(math.Ceil(20.0 / minDetectableFrequency))
	if required < 30 {
		required = 30
	}

	observed := float64(n) / float64(required)
	if observed > 1 {
		observed = 1
	}
	if observed < 0.3 {
		observed = 0.3
	}

	return PowerResult{
		RequiredSampleSize: required,
		ObservedPower:      observed,
		Adequate:           observed >= 0.8,
	}
}
