package analyzers

import (
	"context"
	"strings"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

// MetaTagType classifies a meta-tag fingerprint by its scope prefix.
type MetaTagType string

const (
	MetaTypeName      MetaTagType = "name"
	MetaTypeProperty  MetaTagType = "property"
	MetaTypeHTTPEquiv MetaTagType = "http-equiv"
	MetaTypeUnknown   MetaTagType = "unknown"
)

// MetaSpecific is the analyzer-specific payload for the MetaTag
// analyzer (spec.md §4.2 "MetaAnalyzer specifics").
type MetaSpecific struct {
	OGTags      []string
	TwitterTags []string
	MetaTypes   map[string]MetaTagType
}

// MetaTagAnalyzer turns the dataset's meta tags into a pattern map
// keyed by "{scope}:{key}" fingerprint.
type MetaTagAnalyzer struct{}

// NewMetaTagAnalyzer creates a new meta-tag frequency analyzer.
func NewMetaTagAnalyzer() *MetaTagAnalyzer { return &MetaTagAnalyzer{} }

// Name returns the stable analyzer identifier.
func (a *MetaTagAnalyzer) Name() string { return "MetaAnalyzerV2" }

// Analyze implements FrequencyAnalyzer for meta tags.
//
// The historical "double filtering" bug (spec.md §9) applied
// min_occurrences twice and counted per-occurrence rather than per-site;
// this implementation counts exactly once, by set cardinality, via the
// shared aggregate function — the same code path every other C3
// analyzer uses.
func (a *MetaTagAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset, opts dataset.Options) (*dataset.AnalysisResult[MetaSpecific], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	buckets := make(map[string]*fingerprintBucket)
	valueFrequencies := make(map[string]map[string]int)

	for url, site := range ds.Sites {
		for fingerprint, values := range site.MetaTags {
			bucket, ok := buckets[fingerprint]
			if !ok {
				bucket = newBucket()
				buckets[fingerprint] = bucket
				valueFrequencies[fingerprint] = make(map[string]int)
			}
			if len(values) == 0 {
				bucket.addSite(url, "")
				continue
			}
			// A value appearing multiple times within one site's value
			// set must not double-count that site (spec.md §8); the
			// per-value site set below is still exact, only the
			// value-frequency tally increments once per site per value.
			for value := range values {
				bucket.addSite(url, value)
			}
			for value := range values {
				valueFrequencies[fingerprint][value]++
			}
		}
	}

	patterns := aggregate(buckets, ds.TotalSites, opts)

	metaTypes := make(map[string]MetaTagType, len(patterns))
	var ogTags, twitterTags []string
	for fingerprint, record := range patterns {
		metaTypes[fingerprint] = classifyMetaType(fingerprint)
		if record.Metadata == nil {
			record.Metadata = make(map[string]interface{})
		}
		record.Metadata["valueFrequencies"] = valueFrequencies[fingerprint]

		if strings.Contains(fingerprint, "og:") {
			ogTags = append(ogTags, fingerprint)
		}
		if strings.Contains(fingerprint, "twitter:") {
			twitterTags = append(twitterTags, fingerprint)
		}
	}

	specific := MetaSpecific{
		OGTags:      ogTags,
		TwitterTags: twitterTags,
		MetaTypes:   metaTypes,
	}

	return buildResult(a.Name(), len(buckets), patterns, ds.TotalSites, opts, specific), nil
}

func classifyMetaType(fingerprint string) MetaTagType {
	scope, _, found := strings.Cut(fingerprint, ":")
	if !found {
		return MetaTypeUnknown
	}
	switch scope {
	case "name":
		return MetaTypeName
	case "property":
		return MetaTypeProperty
	case "http-equiv":
		return MetaTypeHTTPEquiv
	default:
		return MetaTypeUnknown
	}
}
