package stats

import "math"

// FisherResult is the outcome of a 2x2 Fisher exact test, approximated
// here by bucketing a normal approximation of the hypergeometric
// p-value rather than computing it exactly (spec.md §9 open question:
// "callers that need strict exactness must escalate to a real
// gamma-function implementation").
type FisherResult struct {
	PValue    float64
	OddsRatio float64
	LogOddsCI [2]float64 // 95% CI on the log-odds ratio
}

// pValueBuckets are the four buckets the normal-approximation Fisher
// test maps into, per spec.md §4.1.
var pValueBuckets = []float64{0.01, 0.05, 0.1, 0.2}

// FisherExact2x2 computes an approximate Fisher exact test for the 2x2
// table [[a,b],[c,d]].
func FisherExact2x2(a, b, c, d float64) FisherResult {
	n := a + b + c + d
	row1 := a + b
	col1 := a + c

	var pValue float64
	if n <= 0 {
		pValue = 1
	} else {
		expected := row1 * col1 / n
		variance := variance2x2(row1, n-row1, col1, n-col1, n)
		var z float64
		if variance > epsilon {
			z = math.Abs(a-expected) / math.Sqrt(variance)
		}
		pValue = bucketZ(z)
	}

	oddsRatio := 1.0
	denom := b * c
	if denom > epsilon {
		oddsRatio = (a * d) / denom
	} else if a*d > 0 {
		oddsRatio = math.Inf(1)
	}

	ciLow, ciHigh := logOddsCI(a, b, c, d, oddsRatio)

	return FisherResult{
		PValue:    pValue,
		OddsRatio: oddsRatio,
		LogOddsCI: [2]float64{ciLow, ciHigh},
	}
}

// variance2x2 is the hypergeometric variance of cell (0,0) given the
// marginal totals, used by the normal approximation.
func variance2x2(row1, row2, col1, col2, n float64) float64 {
	if n <= 1 {
		return 0
	}
	return (row1 * row2 * col1 * col2) / (n * n * (n - 1))
}

func bucketZ(z float64) float64 {
	switch {
	case z >= 2.576:
		return pValueBuckets[0] // 0.01
	case z >= 1.96:
		return pValueBuckets[1] // 0.05
	case z >= 1.645:
		return pValueBuckets[2] // 0.1
	default:
		return pValueBuckets[3] // 0.2
	}
}

// logOddsCI computes a 95% confidence interval on the log-odds ratio
// using SE = sqrt(1/a + 1/b + 1/c + 1/d), clamping any zero cell to 0.5
// (the conventional Haldane-Anscombe correction) to avoid division by
// zero, then exponentiates back to the odds scale.
func logOddsCI(a, b, c, d, oddsRatio float64) (float64, float64) {
	if oddsRatio <= 0 || math.IsInf(oddsRatio, 0) {
		return 0, math.Inf(1)
	}
	ha := haldane(a)
	hb := haldane(b)
	hc := haldane(c)
	hd := haldane(d)
	se := math.Sqrt(1/ha + 1/hb + 1/hc + 1/hd)
	logOR := math.Log(oddsRatio)
	low := math.Exp(logOR - 1.96*se)
	high := math.Exp(logOR + 1.96*se)
	return low, high
}

func haldane(v float64) float64 {
	if v <= 0 {
		return 0.5
	}
	return v
}
