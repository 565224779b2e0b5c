package dataset

import "time"

// PatternRecord is the common output type of every frequency analyzer
// (C3): a fingerprint, the distinct sites that carry it, and derived
// frequency. Invariant: SiteCount == len(Sites); Frequency == SiteCount /
// TotalSites within floating-point tolerance.
type PatternRecord struct {
	Pattern   string
	SiteCount int
	Sites     map[string]struct{}
	Frequency float64
	Examples  []string
	Metadata  map[string]interface{}
}

// ResultMetadata is the envelope metadata attached to every AnalysisResult.
type ResultMetadata struct {
	Analyzer                    string
	AnalyzedAt                  time.Time
	TotalPatternsFound          int
	TotalPatternsAfterFiltering int
	Options                     Options
}

// Options are the recognized analyzer options (spec.md §6).
type Options struct {
	MinOccurrences    int
	IncludeExamples   bool
	MaxExamples       int
	SemanticFiltering bool

	// FocusPlatformDiscrimination excludes infrastructure-only vendors
	// from the Vendor Analyzer's output when true.
	FocusPlatformDiscrimination bool
}

// DefaultOptions returns the typical defaults named in spec.md §4.2.
func DefaultOptions() Options {
	return Options{
		MinOccurrences:  1,
		MaxExamples:     3,
		IncludeExamples: false,
	}
}

// Validate reports an input-constraint violation (§7): a fatal error at
// analyzer entry, never a statistical warning.
func (o Options) Validate() error {
	if o.MinOccurrences < 1 {
		return &ErrInputConstraint{Field: "min_occurrences", Reason: "must be >= 1"}
	}
	if o.IncludeExamples && o.MaxExamples < 1 {
		return &ErrInputConstraint{Field: "max_examples", Reason: "must be >= 1 when include_examples is set"}
	}
	return nil
}

// ErrInputConstraint signals a programmer-level contract violation at
// analyzer entry (spec.md §7). Apart from a cancelled context's
// ctx.Err(), it is the only error the frequency analyzers return from
// Analyze.
type ErrInputConstraint struct {
	Field  string
	Reason string
}

func (e *ErrInputConstraint) Error() string {
	return "invalid option " + e.Field + ": " + e.Reason
}

// AnalysisResult is the generic envelope returned by every frequency
// analyzer, generic over the analyzer-specific payload A.
type AnalysisResult[A any] struct {
	Patterns         map[string]*PatternRecord
	TotalSites       int
	Metadata         ResultMetadata
	AnalyzerSpecific A
}
