// Package discovery implements the Pattern Discovery Analyzer (C6):
// prefix/suffix/contains/regex-shape patterns over header names,
// candidate emerging vendors, and semantic anomalies (spec.md §4.5).
package discovery

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/stats"
	"github.com/jabbermarky/site-pattern-analyzer/internal/vendor"
)

// Kind is the shape of a discovered candidate pattern (spec.md §4.5).
type Kind string

const (
	KindPrefix     Kind = "prefix"
	KindSuffix     Kind = "suffix"
	KindContains   Kind = "contains"
	KindRegexShape Kind = "regex_shape"
)

// CandidatePattern is one discovered header-name pattern.
type CandidatePattern struct {
	Kind                   Kind
	Token                  string
	SiteCount              int
	Sites                  map[string]struct{}
	Significant            bool
	PValue                 float64
	Confidence             float64
	InferredVendor         string
	CMSCorrelation         map[string]float64
	ValidationBoostApplied bool
}

// EmergingVendor is a leading token repeated across multiple headers and
// sites that is not present in the Vendor Analyzer's catalog (spec.md §4.5).
type EmergingVendor struct {
	Token     string
	Headers   []string
	SiteCount int
}

// SemanticAnomaly flags a header whose name suggests one category but
// whose co-occurrence neighborhood suggests another (spec.md §4.5).
type SemanticAnomaly struct {
	Header           string
	ExpectedCategory string
	ObservedCategory string
	Confidence       float64
}

// Snapshot is the immutable cross-analyzer payload C6 hands downstream.
type Snapshot struct {
	Patterns          []CandidatePattern
	EmergingVendors   []EmergingVendor
	SemanticAnomalies []SemanticAnomaly
}

// stopTokens are leading tokens that never count as an inferred vendor
// or emerging vendor (spec.md §4.5 "a small stop-list").
var stopTokens = map[string]struct{}{
	"cache":   {},
	"content": {},
	"x":       {},
}

var regexShapes = []*regexp.Regexp{
	regexp.MustCompile(`^x-[a-z]+-[a-z]+$`),
	regexp.MustCompile(`^[a-z]+-[a-z]+-[a-z]+$`),
}

var idLike = regexp.MustCompile(`\d+`)

// Analyzer implements the Pattern Discovery Analyzer (C6).
type Analyzer struct {
	validation *dataset.ValidationMetadata
	catalog    []vendor.Pattern
}

// NewAnalyzer creates a Pattern Discovery Analyzer against the given
// vendor catalog (so discovered tokens already in the catalog are
// excluded from EmergingVendors).
func NewAnalyzer(catalog []vendor.Pattern) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// SetValidationData injects an optional validation context used to
// boost candidate-pattern confidence (spec.md §4.5 "validation boost").
func (a *Analyzer) SetValidationData(v *dataset.ValidationMetadata) {
	a.validation = v
}

// Analyze implements spec.md §4.5.
func (a *Analyzer) Analyze(ds *dataset.Dataset, minOccurrences int) (*Snapshot, error) {
	headers := ds.HeaderNames()

	candidates := make(map[string]*CandidatePattern)
	a.discoverPrefixes(ds, headers, candidates)
	a.discoverSuffixes(ds, headers, candidates)
	a.discoverContains(ds, headers, candidates)
	a.discoverRegexShapes(ds, headers, candidates)

	var patterns []CandidatePattern
	for _, c := range candidates {
		if c.SiteCount < minOccurrences {
			continue
		}
		patterns = append(patterns, *c)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].SiteCount != patterns[j].SiteCount {
			return patterns[i].SiteCount > patterns[j].SiteCount
		}
		return patterns[i].Token < patterns[j].Token
	})

	emerging := a.emergingVendors(headers, ds)
	anomalies := a.semanticAnomalies(ds, headers)

	return &Snapshot{
		Patterns:          patterns,
		EmergingVendors:   emerging,
		SemanticAnomalies: anomalies,
	}, nil
}

func splitTokens(header string) []string {
	return strings.Split(header, "-")
}

func (a *Analyzer) discoverPrefixes(ds *dataset.Dataset, headers []string, out map[string]*CandidatePattern) {
	byToken := make(map[string][]string)
	for _, h := range headers {
		tokens := splitTokens(h)
		if len(tokens) < 2 {
			continue
		}
		byToken[tokens[0]] = append(byToken[tokens[0]], h)
	}
	for token, matched := range byToken {
		if len(matched) < 2 {
			continue
		}
		a.addCandidate(out, ds, KindPrefix, token, matched)
	}
}

func (a *Analyzer) discoverSuffixes(ds *dataset.Dataset, headers []string, out map[string]*CandidatePattern) {
	byToken := make(map[string][]string)
	for _, h := range headers {
		tokens := splitTokens(h)
		if len(tokens) < 2 {
			continue
		}
		last := tokens[len(tokens)-1]
		byToken[last] = append(byToken[last], h)
	}
	for token, matched := range byToken {
		if len(matched) < 2 {
			continue
		}
		a.addCandidate(out, ds, KindSuffix, token, matched)
	}
}

func (a *Analyzer) discoverContains(ds *dataset.Dataset, headers []string, out map[string]*CandidatePattern) {
	byToken := make(map[string][]string)
	for _, h := range headers {
		tokens := splitTokens(h)
		if len(tokens) < 3 {
			continue
		}
		for _, mid := range tokens[1 : len(tokens)-1] {
			byToken[mid] = append(byToken[mid], h)
		}
	}
	for token, matched := range byToken {
		if len(matched) < 2 {
			continue
		}
		a.addCandidate(out, ds, KindContains, token, matched)
	}
}

func (a *Analyzer) discoverRegexShapes(ds *dataset.Dataset, headers []string, out map[string]*CandidatePattern) {
	byShape := make(map[string][]string)
	for _, h := range headers {
		shaped := idLike.ReplaceAllString(h, "#")
		for _, re := range regexShapes {
			if re.MatchString(h) {
				byShape[shaped] = append(byShape[shaped], h)
				break
			}
		}
	}
	for shape, matched := range byShape {
		if len(matched) < 2 {
			continue
		}
		a.addCandidate(out, ds, KindRegexShape, shape, matched)
	}
}

func (a *Analyzer) addCandidate(out map[string]*CandidatePattern, ds *dataset.Dataset, kind Kind, token string, matchedHeaders []string) {
	sites := make(map[string]struct{})
	for _, h := range matchedHeaders {
		for url := range ds.SitesWithHeader(h) {
			sites[url] = struct{}{}
		}
	}
	siteCount := len(sites)
	baselineRate := 0.05
	pValue, _, _ := stats.BinomialTest(siteCount, ds.TotalSites, baselineRate)
	significant := pValue < 0.05

	confidence := clamp01(1 - pValue)

	var inferredVendor string
	if _, skip := stopTokens[token]; !skip && len(token) > 2 {
		inferredVendor = token
	}

	cmsCorrelation := make(map[string]float64)
	byCMS := make(map[string]int)
	cmsTotal := make(map[string]int)
	for url, site := range ds.Sites {
		cms := site.CMSLabel()
		cmsTotal[cms]++
		if _, ok := sites[url]; ok {
			byCMS[cms]++
		}
	}
	for cms, total := range cmsTotal {
		if total == 0 {
			continue
		}
		cmsCorrelation[cms] = float64(byCMS[cms]) / float64(total)
	}

	boostApplied := false
	if a.validation != nil && a.validation.Passed {
		boosted := confidence * 1.1
		if boosted > 1 {
			boosted = 1
		}
		confidence = boosted
		boostApplied = true
	}

	key := string(kind) + ":" + token
	out[key] = &CandidatePattern{
		Kind:                   kind,
		Token:                  token,
		SiteCount:              siteCount,
		Sites:                  sites,
		Significant:            significant,
		PValue:                 pValue,
		Confidence:             confidence,
		InferredVendor:         inferredVendor,
		CMSCorrelation:         cmsCorrelation,
		ValidationBoostApplied: boostApplied,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// emergingVendors implements spec.md §4.5 "Identify emerging vendors":
// leading tokens repeated across multiple headers and sites, absent
// from the Vendor Analyzer's catalog.
func (a *Analyzer) emergingVendors(headers []string, ds *dataset.Dataset) []EmergingVendor {
	known := make(map[string]struct{})
	for _, p := range a.catalog {
		for _, h := range p.Headers {
			for _, tok := range splitTokens(h) {
				known[tok] = struct{}{}
			}
		}
	}

	byToken := make(map[string][]string)
	for _, h := range headers {
		tokens := splitTokens(h)
		if len(tokens) < 2 {
			continue
		}
		lead := tokens[0]
		if _, skip := stopTokens[lead]; skip {
			continue
		}
		if _, isKnown := known[lead]; isKnown {
			continue
		}
		byToken[lead] = append(byToken[lead], h)
	}

	var out []EmergingVendor
	for token, matched := range byToken {
		if len(matched) < 2 {
			continue
		}
		sites := make(map[string]struct{})
		for _, h := range matched {
			for url := range ds.SitesWithHeader(h) {
				sites[url] = struct{}{}
			}
		}
		if len(sites) < 2 {
			continue
		}
		sort.Strings(matched)
		out = append(out, EmergingVendor{Token: token, Headers: matched, SiteCount: len(sites)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// semanticAnomalies implements spec.md §4.5 "Detect semantic anomalies"
// using the same deterministic name-shape classifier idea as C5, cross
// checked against what headers actually co-occur with.
func (a *Analyzer) semanticAnomalies(ds *dataset.Dataset, headers []string) []SemanticAnomaly {
	var out []SemanticAnomaly
	for _, h := range headers {
		expected := expectedCategory(h)
		if expected == "" {
			continue
		}
		observed := observedCategory(ds, h, headers)
		if observed == "" || observed == expected {
			continue
		}
		out = append(out, SemanticAnomaly{
			Header:           h,
			ExpectedCategory: expected,
			ObservedCategory: observed,
			Confidence:       0.6,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Header < out[j].Header })
	return out
}

func expectedCategory(header string) string {
	switch {
	case strings.Contains(header, "security") || strings.Contains(header, "csp"):
		return "security"
	case strings.Contains(header, "cache"):
		return "caching"
	default:
		return ""
	}
}

// observedCategory infers a header's category from the majority
// category of the headers it most frequently co-occurs with.
func observedCategory(ds *dataset.Dataset, header string, universe []string) string {
	sites := ds.SitesWithHeader(header)
	counts := map[string]int{"security": 0, "caching": 0}
	for _, other := range universe {
		if other == header {
			continue
		}
		cat := expectedCategory(other)
		if cat == "" {
			continue
		}
		joint := 0
		for url := range sites {
			if _, ok := ds.Sites[url].Headers[other]; ok {
				joint++
			}
		}
		if joint > 0 {
			counts[cat] += joint
		}
	}
	if counts["security"] == 0 && counts["caching"] == 0 {
		return ""
	}
	if counts["caching"] > counts["security"] {
		return "caching"
	}
	if counts["security"] > counts["caching"] {
		return "security"
	}
	return ""
}
