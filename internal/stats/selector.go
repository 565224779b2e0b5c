package stats

// SelectedTest identifies which test the Selector chose and its result
// in a uniform shape, per spec.md §4.1 "Selector."
type SelectedTest struct {
	Method         string         // "fisher" or "chi-square"
	PValue         float64
	Statistic      float64
	Recommendation Recommendation
}

// SelectTest implements the §4.1 selector: use Fisher's exact test when
// n<=100 or any expected cell count is below 5; otherwise use chi-square.
func SelectTest(table [2][2]float64) SelectedTest {
	n := table[0][0] + table[0][1] + table[1][0] + table[1][1]
	chi := ChiSquare2x2(table)

	if n <= 100 || chi.LowExpectedFrequency {
		fisher := FisherExact2x2(table[0][0], table[0][1], table[1][0], table[1][1])
		return SelectedTest{
			Method:         "fisher",
			PValue:         fisher.PValue,
			Statistic:      fisher.OddsRatio,
			Recommendation: Recommend(fisher.PValue),
		}
	}

	return SelectedTest{
		Method:         "chi-square",
		PValue:         chi.PValue,
		Statistic:      chi.Statistic,
		Recommendation: Recommend(chi.PValue),
	}
}
