package stats

import "math"

// BinomialTest tests a single observed proportion (successes out of n)
// against a baseline rate. When n>=30 and expected successes (n*p)>=5 it
// uses a normal (Z) approximation; otherwise it returns a conservative
// p-value in {0.01, 0.5}, per spec.md §4.1.
func BinomialTest(successes, n int, baselineRate float64) (pValue float64, zScore float64, usedNormalApprox bool) {
	if n <= 0 {
		return 1, 0, false
	}
	expected := float64(n) * baselineRate
	observed := float64(successes)

	if n >= 30 && expected >= 5 {
		variance := float64(n) * baselineRate * (1 - baselineRate)
		if variance <= epsilon {
			return 1, 0, true
		}
		z := (observed - expected) / math.Sqrt(variance)
		return twoTailedNormalP(z), z, true
	}

	// Conservative fallback: treat any large deviation from baseline as
	// marginally significant, anything close as not.
	observedRate := observed / float64(n)
	if math.Abs(observedRate-baselineRate) > 3*baselineRate+0.1 {
		return 0.01, 0, false
	}
	return 0.5, 0, false
}

// twoTailedNormalP converts a Z score to a two-tailed p-value using the
// normal CDF approximation in normalCDF.
func twoTailedNormalP(z float64) float64 {
	p := 2 * (1 - normalCDF(math.Abs(z)))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// normalCDF approximates the standard normal cumulative distribution
// function using the Abramowitz & Stegun rational approximation — a
// closed-form stand-in for erf, consistent with the spec's call for
// "Z/normal-CDF approximations" rather than exact inference.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + erf(x/math.Sqrt2))
}

func erf(x float64) float64 {
	// Abramowitz and Stegun formula 7.1.26, max error ~1.5e-7.
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)
	return sign * y
}
