// Package stats implements the Statistical Kernel (C2): pure,
// side-effect-free numeric functions operating on plain arrays and
// tables. Nothing here reads a dataset.Dataset — every caller is
// responsible for reducing its data down to counts first.
package stats

import "math"

// ChiSquareResult is the outcome of a chi-square test of independence.
type ChiSquareResult struct {
	Statistic            float64
	DegreesOfFreedom     int
	PValue               float64
	YatesApplied         bool
	LowExpectedFrequency bool
	Contributions        [][]float64 // per-cell (o-e)^2/e, same shape as the input table
}

// ChiSquare2x2 computes a chi-square statistic for a 2x2 contingency
// table with Yates' continuity correction, per spec.md §4.1.
func ChiSquare2x2(table [2][2]float64) ChiSquareResult {
	rows := [][]float64{
		{table[0][0], table[0][1]},
		{table[1][0], table[1][1]},
	}
	return chiSquare(rows, true)
}

// ChiSquareRxC computes a chi-square statistic for an r x c contingency
// table. Yates' correction only applies to 2x2 tables; for any other
// shape the raw statistic is used.
func ChiSquareRxC(table [][]float64) ChiSquareResult {
	yates := len(table) == 2 && len(table[0]) == 2
	return chiSquare(table, yates)
}

func chiSquare(table [][]float64, yates bool) ChiSquareResult {
	r := len(table)
	if r == 0 {
		return ChiSquareResult{PValue: 1, DegreesOfFreedom: 0}
	}
	c := len(table[0])

	rowTotals := make([]float64, r)
	colTotals := make([]float64, c)
	var n float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := table[i][j]
			rowTotals[i] += v
			colTotals[j] += v
			n += v
		}
	}

	contributions := make([][]float64, r)
	var statistic float64
	lowExpected := false
	for i := 0; i < r; i++ {
		contributions[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			expected := 0.0
			if n > 0 {
				expected = rowTotals[i] * colTotals[j] / n
			}
			if expected < 5 {
				lowExpected = true
			}
			diff := table[i][j] - expected
			if yates {
				diff = math.Abs(diff) - 0.5
				if diff < 0 {
					diff = 0
				}
			}
			var contribution float64
			if expected > epsilon {
				contribution = (diff * diff) / expected
			}
			contributions[i][j] = contribution
			statistic += contribution
		}
	}

	df := (r - 1) * (c - 1)
	if df < 0 {
		df = 0
	}

	return ChiSquareResult{
		Statistic:            statistic,
		DegreesOfFreedom:     df,
		PValue:               chiSquarePValue(statistic, df),
		YatesApplied:         yates,
		LowExpectedFrequency: lowExpected,
		Contributions:        contributions,
	}
}

// criticalValues is a small table of chi-square critical values for
// df in {1..4} at alpha in {0.05, 0.01}, per spec.md §4.1 — this is an
// approximation, not exact inference (§9 open question).
var criticalValues = map[int][2]float64{
	1: {3.841, 6.635},
	2: {5.991, 9.210},
	3: {7.815, 11.345},
	4: {9.488, 13.277},
}

// chiSquarePValue approximates a p-value bucket from a statistic and
// degrees of freedom using the small critical-value table; beyond
// df=4 it applies a conservative linear extension (spec.md §9).
func chiSquarePValue(statistic float64, df int) float64 {
	if df <= 0 {
		return 1
	}
	if df > 4 {
		// Conservative linear extension: scale the df=4 table by df/4
		// and re-check against the scaled thresholds.
		scale := float64(df) / 4.0
		cv := criticalValues[4]
		if statistic >= cv[1]*scale {
			return 0.01
		}
		if statistic >= cv[0]*scale {
			return 0.05
		}
		return 0.2
	}
	cv := criticalValues[df]
	if statistic >= cv[1] {
		return 0.01
	}
	if statistic >= cv[0] {
		return 0.05
	}
	return 0.2
}

// Recommendation buckets a test's actionability, per spec.md §4.1 selector.
type Recommendation string

const (
	RecommendationUse     Recommendation = "use"
	RecommendationCaution Recommendation = "caution"
	RecommendationReject  Recommendation = "reject"
)

// Recommend maps a p-value to the use/caution/reject bucket.
func Recommend(pValue float64) Recommendation {
	switch {
	case pValue <= 0.01:
		return RecommendationUse
	case pValue <= 0.05:
		return RecommendationCaution
	default:
		return RecommendationReject
	}
}

const epsilon = 1e-12
