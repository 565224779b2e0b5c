package bias

// SensitivityResult is one header's sensitivity score (spec.md §4.7
// step 7 "sensitivity analysis").
type SensitivityResult struct {
	Header      string
	Sensitivity float64
}

// SensitivityAnalysis implements spec.md §4.7 step 7: per-header
// sensitivity = specificity * max P(CMS|header) * HHI.
func SensitivityAnalysis(correlations map[string]*HeaderCorrelation, hhi float64) []SensitivityResult {
	var out []SensitivityResult
	for header, corr := range correlations {
		maxP := 0.0
		for _, p := range corr.Conditional.PCMSGivenHeader {
			if p > maxP {
				maxP = p
			}
		}
		out = append(out, SensitivityResult{
			Header:      header,
			Sensitivity: corr.Specificity.Score * maxP * hhi,
		})
	}
	return out
}
