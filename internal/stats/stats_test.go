package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChiSquare2x2_YatesExampleS4(t *testing.T) {
	// spec.md scenario S4: table [[10,2],[3,15]], n=30.
	result := ChiSquare2x2([2][2]float64{{10, 2}, {3, 15}})

	assert.True(t, result.YatesApplied)
	assert.Equal(t, 1, result.DegreesOfFreedom)
	assert.InDelta(t, 5.2, (10+2)*(10+3)/30.0, 0.001, "expected top-left should be 12*13/30")
	assert.Less(t, result.PValue, 0.05)
	rec := Recommend(result.PValue)
	assert.Contains(t, []Recommendation{RecommendationUse, RecommendationCaution}, rec)
}

func TestChiSquare_ContributionsSumToStatistic(t *testing.T) {
	tables := [][2][2]float64{
		{{10, 2}, {3, 15}},
		{{50, 50}, {50, 50}},
		{{1, 1}, {1, 1}},
	}
	for _, table := range tables {
		result := ChiSquare2x2(table)
		var sum float64
		for _, row := range result.Contributions {
			for _, c := range row {
				sum += c
			}
		}
		assert.InDelta(t, result.Statistic, sum, 1e-9)
	}
}

func TestHHI_ScenarioS5(t *testing.T) {
	assert.InDelta(t, 0.25, HHI([]float64{25, 25, 25, 25}), 1e-9)
	assert.InDelta(t, 1.0, HHI([]float64{100}), 1e-9)
}

func TestHHI_Bounds(t *testing.T) {
	distributions := [][]float64{
		{100}, {50, 50}, {10, 20, 30, 40}, {},
	}
	for _, d := range distributions {
		h := HHI(d)
		assert.GreaterOrEqual(t, h, 0.0)
		assert.LessOrEqual(t, h, 1.0)
	}
}

func TestShannonDiversity_MaximizedByUniform(t *testing.T) {
	uniform := []float64{0.25, 0.25, 0.25, 0.25}
	skewed := []float64{0.7, 0.1, 0.1, 0.1}

	hUniform := ShannonDiversity(uniform)
	hSkewed := ShannonDiversity(skewed)

	assert.Greater(t, hUniform, hSkewed)
	assert.LessOrEqual(t, EffectiveCount(hUniform), float64(len(uniform))+1e-9)
}

func TestDominanceRatio_SinglePlatformConvention(t *testing.T) {
	assert.Equal(t, 1.0, DominanceRatio([]float64{100}))
}

func TestBayesianConsistency(t *testing.T) {
	// P(A|B)=0.4, P(B)=0.5 => P(A,B)=0.2; P(B|A)=0.5, P(A)=0.4 => P(B,A)=0.2 — consistent.
	result := BayesianConsistencyCheck(0.4, 0.5, 0.5, 0.4)
	assert.True(t, result.Passed)

	inconsistent := BayesianConsistencyCheck(0.9, 0.9, 0.1, 0.1)
	assert.False(t, inconsistent.Passed)
}

func TestFrequencyConsistencyCheck(t *testing.T) {
	assert.True(t, FrequencyConsistencyCheck(0.5, 5, 10).Passed)
	assert.False(t, FrequencyConsistencyCheck(0.9, 5, 10).Passed)
}

func TestMoments_SymmetricDistributionHasZeroSkew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	m := Moments(values)
	assert.InDelta(t, 3.0, m.Mean, 1e-9)
	assert.InDelta(t, 0.0, m.Skewness, 1e-9)
}

func TestDetectOutliers(t *testing.T) {
	values := []float64{1, 2, 3, 2, 1, 100, 2, 3, 2, 1}
	outliers := DetectOutliers(values, 0)
	if assert.Len(t, outliers, 1) {
		assert.Equal(t, 5, outliers[0].Index)
	}
}

func TestMinimumSampleSize_FinitePopulationCorrection(t *testing.T) {
	uncorrected := MinimumSampleSize(0.5, 0.05, 0)
	corrected := MinimumSampleSize(0.5, 0.05, 100)
	assert.LessOrEqual(t, corrected, uncorrected)
}

func TestStatisticalPower_AdequacyThreshold(t *testing.T) {
	result := StatisticalPower(200, 0.1)
	assert.True(t, result.Adequate)

	low := StatisticalPower(5, 0.1)
	assert.False(t, low.Adequate)
}

func TestSelectTest_PicksFisherForSmallN(t *testing.T) {
	selected := SelectTest([2][2]float64{{3, 2}, {1, 4}})
	assert.Equal(t, "fisher", selected.Method)
}

func TestSelectTest_PicksChiSquareForLargeWellPopulatedTable(t *testing.T) {
	selected := SelectTest([2][2]float64{{60, 40}, {30, 70}})
	assert.Equal(t, "chi-square", selected.Method)
}

func TestBinomialTest_NormalApproxUsedAboveThresholds(t *testing.T) {
	_, _, usedNormal := BinomialTest(40, 50, 0.5)
	assert.True(t, usedNormal)

	_, _, usedNormalSmallN := BinomialTest(2, 5, 0.5)
	assert.False(t, usedNormalSmallN)
}

func TestFisherExact2x2_OddsRatio(t *testing.T) {
	result := FisherExact2x2(10, 2, 3, 15)
	assert.Greater(t, result.OddsRatio, 1.0)
	assert.False(t, math.IsNaN(result.LogOddsCI[0]))
}
