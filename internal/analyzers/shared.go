// Package analyzers implements the four Per-Domain Frequency Analyzers
// (C3): Headers, MetaTags, Scripts, Semantic. Each turns the dataset
// into a pattern map keyed by a typed fingerprint, sharing one
// aggregation contract (spec.md §4.2) so the "count sites once, by
// cardinality" invariant cannot regress per-analyzer.
package analyzers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

// FrequencyAnalyzer is the common surface every C3 analyzer exposes
// (spec.md §6 "Analyzer surface"). ctx is checked once, at entry; the
// analyzer itself does no blocking I/O.
type FrequencyAnalyzer[A any] interface {
	Name() string
	Analyze(ctx context.Context, ds *dataset.Dataset, opts dataset.Options) (*dataset.AnalysisResult[A], error)
}

// semanticSkipList is the static, case-insensitive skip list applied
// when Options.SemanticFiltering is set (spec.md §4.2 step 5).
var semanticSkipList = map[string]struct{}{
	"viewport":                {},
	"charset":                 {},
	"robots":                  {},
	"googlebot":               {},
	"http-equiv:content-type": {},
}

// fingerprintBucket accumulates the raw per-fingerprint data a single
// traversal of the dataset produces, before filtering.
type fingerprintBucket struct {
	sites      map[string]struct{}
	valueSites map[string]map[string]struct{} // value -> sites carrying that value
	metadata   map[string]interface{}
}

func newBucket() *fingerprintBucket {
	return &fingerprintBucket{
		sites:      make(map[string]struct{}),
		valueSites: make(map[string]map[string]struct{}),
		metadata:   make(map[string]interface{}),
	}
}

func (b *fingerprintBucket) addSite(site, value string) {
	b.sites[site] = struct{}{}
	if value == "" {
		return
	}
	set, ok := b.valueSites[value]
	if !ok {
		set = make(map[string]struct{})
		b.valueSites[value] = set
	}
	set[site] = struct{}{}
}

// aggregate applies the shared contract (spec.md §4.2 steps 2-6) to a
// map of fingerprint -> bucket, producing the final pattern map. Step 1
// (traversal) is the caller's job, since its shape differs slightly
// per analyzer (headers vs meta vs scripts). The returned map is
// unordered; sortPatterns produces the step 7 ordering.
func aggregate(buckets map[string]*fingerprintBucket, totalSites int, opts dataset.Options) map[string]*dataset.PatternRecord {
	patterns := make(map[string]*dataset.PatternRecord, len(buckets))

	for fingerprint, bucket := range buckets {
		// Step 2-3: site_count by cardinality, never by summing
		// per-value occurrence counts.
		siteCount := len(bucket.sites)

		// Step 4: apply the min_occurrences filter.
		if siteCount < opts.MinOccurrences {
			continue
		}

		// Step 5: semantic skip list (case-insensitive).
		if opts.SemanticFiltering && isSkipped(fingerprint) {
			continue
		}

		var frequency float64
		if totalSites > 0 {
			frequency = float64(siteCount) / float64(totalSites)
		}

		record := &dataset.PatternRecord{
			Pattern:   fingerprint,
			SiteCount: siteCount,
			Sites:     bucket.sites,
			Frequency: frequency,
			Metadata:  bucket.metadata,
		}

		// Step 6: attach examples.
		if opts.IncludeExamples {
			record.Examples = renderExamples(fingerprint, bucket.valueSites, opts.MaxExamples)
		}

		patterns[fingerprint] = record
	}

	return patterns
}

func isSkipped(fingerprint string) bool {
	lower := strings.ToLower(fingerprint)
	if _, skipped := semanticSkipList[lower]; skipped {
		return true
	}
	// Scoped fingerprints ("name:viewport") match on their key part.
	if _, key, found := strings.Cut(lower, ":"); found {
		_, skipped := semanticSkipList[key]
		return skipped
	}
	return false
}

// renderExamples formats up to maxExamples distinct values as
// key="value" strings, truncating values to 100 characters.
func renderExamples(key string, valueSites map[string]map[string]struct{}, maxExamples int) []string {
	values := make([]string, 0, len(valueSites))
	for v := range valueSites {
		values = append(values, v)
	}
	sort.Strings(values)

	examples := make([]string, 0, maxExamples)
	seen := make(map[string]struct{})
	for _, v := range values {
		if len(examples) >= maxExamples {
			break
		}
		rendered := renderValue(key, v)
		if _, dup := seen[rendered]; dup {
			continue
		}
		seen[rendered] = struct{}{}
		examples = append(examples, rendered)
	}
	return examples
}

func renderValue(key, value string) string {
	truncated := value
	suffix := `"`
	if len(truncated) > 100 {
		truncated = truncated[:100]
		suffix = `..."`
	}
	return key + `="` + truncated + suffix
}

// sortPatterns orders patterns by descending frequency, then
// descending site_count, then lexicographic fingerprint (spec.md §4.2
// step 7 / §5 "stable sort").
func sortPatterns(patterns map[string]*dataset.PatternRecord) []*dataset.PatternRecord {
	out := make([]*dataset.PatternRecord, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if a.SiteCount != b.SiteCount {
			return a.SiteCount > b.SiteCount
		}
		return a.Pattern < b.Pattern
	})
	return out
}

// buildResult wraps a pattern map into the envelope every analyzer
// returns, honoring the "empty input -> zero patterns, never errors"
// failure mode (spec.md §4.2).
func buildResult[A any](analyzerName string, totalFound int, patterns map[string]*dataset.PatternRecord, totalSites int, opts dataset.Options, specific A) *dataset.AnalysisResult[A] {
	return &dataset.AnalysisResult[A]{
		Patterns:   patterns,
		TotalSites: totalSites,
		Metadata: dataset.ResultMetadata{
			Analyzer:                    analyzerName,
			AnalyzedAt:                  time.Now().UTC(),
			TotalPatternsFound:          totalFound,
			TotalPatternsAfterFiltering: len(patterns),
			Options:                     opts,
		},
		AnalyzerSpecific: specific,
	}
}
