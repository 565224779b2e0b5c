package analyzers

import (
	"context"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

// ScriptSpecific is the analyzer-specific payload for the Script
// frequency analyzer.
type ScriptSpecific struct{}

// ScriptAnalyzer turns the dataset's script URLs into a pattern map
// keyed by the script URL itself.
type ScriptAnalyzer struct{}

// NewScriptAnalyzer creates a new script frequency analyzer.
func NewScriptAnalyzer() *ScriptAnalyzer { return &ScriptAnalyzer{} }

// Name returns the stable analyzer identifier.
func (a *ScriptAnalyzer) Name() string { return "ScriptAnalyzerV2" }

// Analyze implements FrequencyAnalyzer for script URLs.
func (a *ScriptAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset, opts dataset.Options) (*dataset.AnalysisResult[ScriptSpecific], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	buckets := make(map[string]*fingerprintBucket)
	for url, site := range ds.Sites {
		for script := range site.Scripts {
			bucket, ok := buckets[script]
			if !ok {
				bucket = newBucket()
				buckets[script] = bucket
			}
			bucket.addSite(url, script)
		}
	}

	patterns := aggregate(buckets, ds.TotalSites, opts)
	return buildResult(a.Name(), len(buckets), patterns, ds.TotalSites, opts, ScriptSpecific{}), nil
}
