// Package validation implements the Validation Pipeline (C7): seven
// ordered stages sharing a mutable run-scoped context, producing
// per-stage scores, warnings, errors, and a validated-pattern subset
// with an overall quality grade (spec.md §4.6).
package validation

import (
	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

// Severity is a warning's severity tag.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning is a tagged stage warning (spec.md §9 "tagged variants...
// rather than untyped property bags").
type Warning struct {
	Stage    string
	Severity Severity
	Message  string
}

// ValidationError is a stage-level fatal condition. It never aborts
// the pipeline; every stage still runs (spec.md §4.6).
type ValidationError struct {
	Stage   string
	Message string
}

// Recommendation is a stage-emitted recommendation string with a
// confidence value, aggregated in stage 7.
type Recommendation struct {
	Stage      string
	Message    string
	Confidence float64
}

// QualityMetrics are the running accumulators tracked across stages
// (spec.md §4.6).
type QualityMetrics struct {
	DataCompleteness       float64
	StatisticalReliability float64
	PatternConsistency     float64
	CorrelationStrength    float64
	RecommendationAccuracy float64
	SampleAdequacy         float64
	DistributionHealth     float64
}

// Context is the mutable state shared across all seven stages.
type Context struct {
	Dataset *dataset.Dataset

	MinOccurrences int

	// ValidatedPatterns is seeded from C3 frequency-analyzer outputs,
	// keyed "{domain}:{fingerprint}" (spec.md §4.6).
	ValidatedPatterns map[string]*dataset.PatternRecord
	FlaggedPatterns   map[string]struct{}

	QualityScore float64
	Metrics      QualityMetrics

	StageResults    []StageResult
	Warnings        []Warning
	Errors          []ValidationError
	Recommendations []Recommendation
}

// NewContext seeds a Context from the combined pattern map of the
// frequency analyzers (C3), keyed "{domain}:{fingerprint}".
func NewContext(ds *dataset.Dataset, minOccurrences int, seedPatterns map[string]*dataset.PatternRecord) *Context {
	seeded := make(map[string]*dataset.PatternRecord, len(seedPatterns))
	for k, v := range seedPatterns {
		seeded[k] = v
	}
	return &Context{
		Dataset:           ds,
		MinOccurrences:    minOccurrences,
		ValidatedPatterns: seeded,
		FlaggedPatterns:   make(map[string]struct{}),
		QualityScore:      1.0,
	}
}

func (c *Context) warn(stage string, sev Severity, msg string) {
	c.Warnings = append(c.Warnings, Warning{Stage: stage, Severity: sev, Message: msg})
}

func (c *Context) fail(stage, msg string) {
	c.Errors = append(c.Errors, ValidationError{Stage: stage, Message: msg})
}

func (c *Context) recommend(stage, msg string, confidence float64) {
	c.Recommendations = append(c.Recommendations, Recommendation{Stage: stage, Message: msg, Confidence: confidence})
}
