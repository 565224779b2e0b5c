package analyzers

import (
	"context"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

// VendorRollup groups the headers attributed to one vendor name by the
// dataset's precomputed semantic metadata.
type VendorRollup struct {
	VendorName string
	Headers    []string
}

// SemanticSpecific is the analyzer-specific payload for the Semantic
// analyzer: per-category distributions and vendor roll-ups, both
// computed using only patterns that survived filtering (spec.md §4.2,
// §9 — the deprecated "count ALL headers" code path is explicitly
// wrong and is not implemented here).
type SemanticSpecific struct {
	CategoryDistribution map[string]int
	VendorRollups        map[string]*VendorRollup
}

// SemanticAnalyzer turns the dataset's headers into a pattern map
// keyed by header name, consuming the dataset's precomputed semantic
// metadata when present (spec.md §4.2 "SemanticAnalyzer").
type SemanticAnalyzer struct{}

// NewSemanticAnalyzer creates a new semantic frequency analyzer.
func NewSemanticAnalyzer() *SemanticAnalyzer { return &SemanticAnalyzer{} }

// Name returns the stable analyzer identifier.
func (a *SemanticAnalyzer) Name() string { return "SemanticAnalyzerV2" }

// Analyze implements FrequencyAnalyzer for headers viewed through the
// semantic metadata lens.
func (a *SemanticAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset, opts dataset.Options) (*dataset.AnalysisResult[SemanticSpecific], error) {
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

	// Invariant (spec.md §4.2, §9): category counts and vendor roll-ups
	// are derived from the filtered pattern set, never from the raw
	// buckets or from the full dataset header set.
	categoryDist := make(map[string]int)
	rollups := make(map[string]*VendorRollup)

	semantic := ds.Metadata.Semantic
	for fingerprint := range patterns {
		if semantic == nil {
			continue
		}
		if category, ok := semantic.Categories[fingerprint]; ok {
			categoryDist[category]++
		}
		if vendorName, ok := semantic.VendorNames[fingerprint]; ok {
			rollup, exists := rollups[vendorName]
			if !exists {
				rollup = &VendorRollup{VendorName: vendorName}
				rollups[vendorName] = rollup
			}
			rollup.Headers = append(rollup.Headers, fingerprint)
		}
	}

	specific := SemanticSpecific{
		CategoryDistribution: categoryDist,
		VendorRollups:        rollups,
	}

	return buildResult(a.Name(), len(buckets), patterns, ds.TotalSites, opts, specific), nil
}
