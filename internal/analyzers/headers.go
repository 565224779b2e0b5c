package analyzers

import (
	"context"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

// HeaderSpecific is the analyzer-specific payload for the Header
// frequency analyzer. Headers carry no extra per-run structure beyond
// the shared pattern map, but the type exists so HeaderAnalyzer
// satisfies FrequencyAnalyzer[HeaderSpecific] symmetrically with its
// siblings.
type HeaderSpecific struct{}

// HeaderAnalyzer turns the dataset's response headers into a pattern
// map keyed by lowercased header name.
type HeaderAnalyzer struct{}

// NewHeaderAnalyzer creates a new header frequency analyzer.
func NewHeaderAnalyzer() *HeaderAnalyzer { return &HeaderAnalyzer{} }

// Name returns the stable analyzer identifier (spec.md §6).
func (a *HeaderAnalyzer) Name() string { return "HeaderAnalyzerV2" }

// Analyze implements FrequencyAnalyzer for response headers.
func (a *HeaderAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset, opts dataset.Options) (*dataset.AnalysisResult[HeaderSpecific], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	buckets := make(map[string]*fingerprintBucket)
	for url, site := range ds.Sites {
		for header, values := range site.Headers {
			bucket, ok := buckets[header]
			if !ok {
				bucket = newBucket()
				buckets[header] = bucket
			}
			if len(values) == 0 {
				bucket.addSite(url, "")
				continue
			}
			for value := range values {
				bucket.addSite(url, value)
			}
		}
	}

	patterns := aggregate(buckets, ds.TotalSites, opts)
	return buildResult(a.Name(), len(buckets), patterns, ds.TotalSites, opts, HeaderSpecific{}), nil
}
