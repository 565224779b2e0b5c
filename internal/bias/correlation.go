package bias

import (
	"math"
	"sort"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/stats"
)

// PerCMSMetrics is one CMS's slice of a header correlation (spec.md
// §4.7 step 3).
type PerCMSMetrics struct {
	CMS                   string
	Observed              int
	Expected              float64
	ChiSquareContribution float64
	Significant           bool
	TopValues             []string
	ValueUniqueness       float64
}

// ConditionalProbabilities carries both directions plus Wilson-score
// intervals and discriminative metrics (spec.md §4.7 step 3).
type ConditionalProbabilities struct {
	PHeaderGivenCMS     map[string]float64
	PCMSGivenHeader     map[string]float64
	WilsonLower         map[string]float64
	WilsonUpper         map[string]float64
	Significant         map[string]bool
	InformationGain     float64
	DiscriminativePower float64
}

// HeaderCorrelation is the full per-header bias record (spec.md §3
// "per-header correlation").
type HeaderCorrelation struct {
	Header           string
	Frequency        float64
	Occurrences      int
	UniqueValues     int
	AvgValuesPerSite float64
	MostCommonValue  string
	PerCMS           map[string]*PerCMSMetrics
	Conditional      ConditionalProbabilities
	Specificity      PlatformSpecificity
	Adjustment       BiasAdjustment
	Risk             RecommendationRisk
}

// HeaderCorrelations implements spec.md §4.7 step 3 for every header
// observed at least minOccurrences times.
func HeaderCorrelations(ds *dataset.Dataset, buckets map[string]*CMSBucket, minOccurrences int) map[string]*HeaderCorrelation {
	headerCMSSites := make(map[string]map[string]map[string]struct{}) // header -> cms -> sites
	headerValueSites := make(map[string]map[string]map[string]struct{}) // header -> value -> sites

	for url, site := range ds.Sites {
		cms := site.CMSLabel()
		for h, values := range site.Headers {
			if headerCMSSites[h] == nil {
				headerCMSSites[h] = make(map[string]map[string]struct{})
			}
			if headerCMSSites[h][cms] == nil {
				headerCMSSites[h][cms] = make(map[string]struct{})
			}
			headerCMSSites[h][cms][url] = struct{}{}

			if headerValueSites[h] == nil {
				headerValueSites[h] = make(map[string]map[string]struct{})
			}
			for v := range values {
				if headerValueSites[h][v] == nil {
					headerValueSites[h][v] = make(map[string]struct{})
				}
				headerValueSites[h][v][url] = struct{}{}
			}
		}
	}

	out := make(map[string]*HeaderCorrelation)
	for header, byCMS := range headerCMSSites {
		totalOccurrences := 0
		allSites := make(map[string]struct{})
		for _, sites := range byCMS {
			for url := range sites {
				allSites[url] = struct{}{}
			}
		}
		totalOccurrences = len(allSites)
		if totalOccurrences < minOccurrences {
			continue
		}

		overallFreq := 0.0
		if ds.TotalSites > 0 {
			overallFreq = float64(totalOccurrences) / float64(ds.TotalSites)
		}

		perCMS := make(map[string]*PerCMSMetrics)
		pHeaderGivenCMS := make(map[string]float64)
		pCMSGivenHeader := make(map[string]float64)
		wilsonLower := make(map[string]float64)
		wilsonUpper := make(map[string]float64)
		significant := make(map[string]bool)

		for cms, bucket := range buckets {
			sitesInCMS := len(bucket.Sites)
			observed := len(byCMS[cms])
			expected := overallFreq * float64(sitesInCMS)

			variance := expected * (1 - overallFreq)
			sig := false
			if variance > 0 {
				z := math.Abs(float64(observed)-expected) / math.Sqrt(variance)
				sig = z > 1.96
			}

			var contribution float64
			if expected > 1e-9 {
				diff := float64(observed) - expected
				contribution = (diff * diff) / expected
			}

			topValues := topValuesForCMS(headerValueSites[header], bucket.Sites, 3)
			uniqueness := valueUniqueness(headerValueSites[header], bucket.Sites)

			perCMS[cms] = &PerCMSMetrics{
				CMS:                   cms,
				Observed:              observed,
				Expected:              expected,
				ChiSquareContribution: contribution,
				Significant:           sig,
				TopValues:             topValues,
				ValueUniqueness:       uniqueness,
			}

			pHGivenC := 0.0
			if sitesInCMS > 0 {
				pHGivenC = float64(observed) / float64(sitesInCMS)
			}
			pHeaderGivenCMS[cms] = pHGivenC

			pCGivenH := 0.0
			if totalOccurrences > 0 {
				pCGivenH = float64(observed) / float64(totalOccurrences)
			}
			pCMSGivenHeader[cms] = pCGivenH

			lower, upper := wilsonScore(observed, sitesInCMS)
			wilsonLower[cms] = lower
			wilsonUpper[cms] = upper
			significant[cms] = sig
		}

		informationGain := computeInformationGain(buckets, byCMS, ds.TotalSites)
		discriminative := discriminativePower(pCMSGivenHeader)

		uniqueValues := len(headerValueSites[header])
		avgValuesPerSite := 0.0
		if totalOccurrences > 0 {
			avgValuesPerSite = float64(uniqueValues) / float64(totalOccurrences)
		}
		mostCommon := mostCommonValue(headerValueSites[header])

		corr := &HeaderCorrelation{
			Header:           header,
			Frequency:        overallFreq,
			Occurrences:      totalOccurrences,
			UniqueValues:     uniqueValues,
			AvgValuesPerSite: avgValuesPerSite,
			MostCommonValue:  mostCommon,
			PerCMS:           perCMS,
			Conditional: ConditionalProbabilities{
				PHeaderGivenCMS:     pHeaderGivenCMS,
				PCMSGivenHeader:     pCMSGivenHeader,
				WilsonLower:         wilsonLower,
				WilsonUpper:         wilsonUpper,
				Significant:         significant,
				InformationGain:     informationGain,
				DiscriminativePower: discriminative,
			},
		}
		corr.Specificity = PlatformSpecificityOf(pCMSGivenHeader, totalOccurrences)
		corr.Adjustment = BiasAdjustmentOf(buckets, pHeaderGivenCMS)
		corr.Risk = RecommendationRiskOf(corr)

		out[header] = corr
	}
	return out
}

func topValuesForCMS(byValue map[string]map[string]struct{}, cmsSites map[string]struct{}, limit int) []string {
	type vc struct {
		value string
		count int
	}
	var counts []vc
	for value, sites := range byValue {
		count := 0
		for url := range sites {
			if _, ok := cmsSites[url]; ok {
				count++
			}
		}
		if count > 0 {
			counts = append(counts, vc{value, count})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].value < counts[j].value
	})
	var out []string
	for i := 0; i < len(counts) && i < limit; i++ {
		out = append(out, counts[i].value)
	}
	return out
}

// valueUniqueness is a normalized Shannon diversity over a header's
// value distribution restricted to one CMS's sites (spec.md §4.7 step 3).
func valueUniqueness(byValue map[string]map[string]struct{}, cmsSites map[string]struct{}) float64 {
	var total int
	counts := make(map[string]int)
	for value, sites := range byValue {
		for url := range sites {
			if _, ok := cmsSites[url]; ok {
				counts[value]++
				total++
			}
		}
	}
	if total == 0 || len(counts) <= 1 {
		return 0
	}
	var proportions []float64
	for _, c := range counts {
		proportions = append(proportions, float64(c)/float64(total))
	}
	h := stats.ShannonDiversity(proportions)
	maxH := math.Log(float64(len(counts)))
	if maxH <= 0 {
		return 0
	}
	return h / maxH
}

func mostCommonValue(byValue map[string]map[string]struct{}) string {
	best := ""
	bestCount := -1
	var values []string
	for v := range byValue {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		count := len(byValue[v])
		if count > bestCount {
			best, bestCount = v, count
		}
	}
	return best
}

// wilsonScore computes the Wilson-score confidence interval for a
// binomial proportion observed/total at the conventional 95% level.
func wilsonScore(observed, total int) (lower, upper float64) {
	if total == 0 {
		return 0, 0
	}
	const z = 1.96
	p := float64(observed) / float64(total)
	n := float64(total)
	denom := 1 + z*z/n
	center := p + z*z/(2*n)
	margin := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))
	lower = (center - margin) / denom
	upper = (center + margin) / denom
	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	return lower, upper
}

// computeInformationGain is H(CMS) - H(CMS|header) (spec.md §4.7 step 3).
func computeInformationGain(buckets map[string]*CMSBucket, byCMS map[string]map[string]struct{}, totalSites int) float64 {
	if totalSites == 0 {
		return 0
	}
	var priors []float64
	for _, b := range buckets {
		priors = append(priors, float64(b.Count)/float64(totalSites))
	}
	hPrior := stats.ShannonDiversity(priors)

	totalWithHeader := 0
	for _, sites := range byCMS {
		totalWithHeader += len(sites)
	}
	if totalWithHeader == 0 {
		return 0
	}
	var posteriors []float64
	for cms := range buckets {
		posteriors = append(posteriors, float64(len(byCMS[cms]))/float64(totalWithHeader))
	}
	hPosterior := stats.ShannonDiversity(posteriors)

	gain := hPrior - hPosterior
	if gain < 0 {
		return 0
	}
	return gain
}

// discriminativePower is max(P)/mean(others) over P(CMS|header).
func discriminativePower(pCMSGivenHeader map[string]float64) float64 {
	if len(pCMSGivenHeader) == 0 {
		return 0
	}
	maxP := 0.0
	var sumOthers float64
	var count int
	for _, p := range pCMSGivenHeader {
		if p > maxP {
			maxP = p
		}
	}
	for _, p := range pCMSGivenHeader {
		if p == maxP {
			continue
		}
		sumOthers += p
		count++
	}
	if count == 0 {
		return maxP / 0.01
	}
	mean := sumOthers / float64(count)
	if mean <= 1e-9 {
		return maxP / 0.01
	}
	return maxP / mean
}
