// Package orchestrate wires the frequency analyzers (C3), the Vendor,
// Co-occurrence, Pattern Discovery, Validation, Bias, and
// Recommendations stages (C4-C9) into one analysis run (spec.md §5).
//
// Scheduling follows spec.md §5: the independent C3 analyzers
// (Headers/MetaTags/Scripts/Semantic) run in parallel; the Vendor
// analyzer and every later stage then run one after another, each
// starting only after its declared producers have completed
// (happens-before via injected snapshots).
package orchestrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jabbermarky/site-pattern-analyzer/internal/analyzers"
	"github.com/jabbermarky/site-pattern-analyzer/internal/bias"
	"github.com/jabbermarky/site-pattern-analyzer/internal/cooccurrence"
	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/discovery"
	"github.com/jabbermarky/site-pattern-analyzer/internal/recommend"
	"github.com/jabbermarky/site-pattern-analyzer/internal/telemetry"
	"github.com/jabbermarky/site-pattern-analyzer/internal/validation"
	"github.com/jabbermarky/site-pattern-analyzer/internal/vendor"
)

// Report is the full output of one analysis run: every component's
// result, keyed the way the Driver assembled them.
type Report struct {
	RunID                  string
	Headers                *dataset.AnalysisResult[analyzers.HeaderSpecific]
	MetaTags               *dataset.AnalysisResult[analyzers.MetaSpecific]
	Scripts                *dataset.AnalysisResult[analyzers.ScriptSpecific]
	Semantic               *dataset.AnalysisResult[analyzers.SemanticSpecific]
	Vendor                 *vendor.Snapshot
	Cooccurrence           *cooccurrence.Snapshot
	Discovery              *discovery.Snapshot
	Validation             validation.Summary
	Bias                   *bias.Result
	Recommendations        []recommend.Recommendation
	ConfidenceDistribution recommend.ConfidenceDistribution
}

// Options controls a single Driver run. MinOccurrences (raised to 1
// when below it) flows into every stage that accepts a threshold
// (spec.md §6 "options object").
type Options struct {
	MinOccurrences  int
	IncludeExamples bool
	MaxExamples     int
}

func (o Options) toDatasetOptions() dataset.Options {
	opts := dataset.Options{
		MinOccurrences:  o.MinOccurrences,
		IncludeExamples: o.IncludeExamples,
		MaxExamples:     o.MaxExamples,
	}
	if opts.MinOccurrences < 1 {
		opts.MinOccurrences = 1
	}
	if opts.IncludeExamples && opts.MaxExamples < 1 {
		opts.MaxExamples = 3
	}
	return opts
}

// Driver runs the full pipeline against a single Preprocessed Dataset.
type Driver struct{}

// NewDriver creates a Driver. The Driver holds no per-run state; all
// run state lives in the Report it returns.
func NewDriver() *Driver { return &Driver{} }

// Run executes every component in the dependency order spec.md §5
// requires and assembles the combined Report. Cancellation is the
// Driver's concern alone (spec.md §5): ctx is checked between phases,
// not threaded into internal/stats or the C4-C9 analyzers.
func (d *Driver) Run(ctx context.Context, ds *dataset.Dataset, opts Options) (*Report, error) {
	if ds == nil {
		return nil, fmt.Errorf("orchestrate: nil dataset")
	}
	datasetOpts := opts.toDatasetOptions()
	if err := datasetOpts.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrate: invalid options: %w", err)
	}

	report := &Report{RunID: uuid.NewString()}
	telemetry.Debugf("starting analysis run %s over %d sites", report.RunID, ds.TotalSites)

	if err := d.runFrequencyAnalyzers(ctx, ds, datasetOpts, report); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vendorAnalyzer := vendor.NewAnalyzer()
	vendorSnapshot, err := vendorAnalyzer.Analyze(ds)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: vendor analyzer: %w", err)
	}
	report.Vendor = vendorSnapshot
	telemetry.Stage("vendor", len(vendorSnapshot.Detections))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coocAnalyzer := cooccurrence.NewAnalyzer()
	coocAnalyzer.SetVendorData(vendorSnapshot)
	coocSnapshot, err := coocAnalyzer.Analyze(ds, datasetOpts.MinOccurrences)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: cooccurrence analyzer: %w", err)
	}
	report.Cooccurrence = coocSnapshot
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	discoveryAnalyzer := discovery.NewAnalyzer(vendor.Catalog)
	discoverySnapshot, err := discoveryAnalyzer.Analyze(ds, datasetOpts.MinOccurrences)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: discovery analyzer: %w", err)
	}
	report.Discovery = discoverySnapshot
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seedPatterns := combinePatterns(report.Headers, report.MetaTags)
	validationCtx := validation.NewContext(ds, datasetOpts.MinOccurrences, seedPatterns)
	report.Validation = validation.NewPipeline().Run(validationCtx)
	telemetry.Debugf("validation pipeline graded %s (%d/%d stages passed)",
		report.Validation.QualityGrade, report.Validation.PassedStages, report.Validation.TotalStages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	biasAnalyzer := bias.NewAnalyzer()
	biasAnalyzer.SetVendorData(vendorSnapshot)
	biasAnalyzer.SetDiscoveryData(discoverySnapshot)
	biasAnalyzer.SetCooccurrenceData(coocSnapshot)
	if report.Semantic != nil {
		biasAnalyzer.SetSemanticData(report.Semantic.AnalyzerSpecific.CategoryDistribution, report.Semantic.Metadata.TotalPatternsAfterFiltering)
	}
	biasResult, err := biasAnalyzer.Analyze(ds, datasetOpts.MinOccurrences)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: bias analyzer: %w", err)
	}
	report.Bias = biasResult
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	generator := recommend.NewGenerator(datasetOpts.MinOccurrences, semanticLookup{ds})
	recs, dist := generator.Generate(seedPatterns)
	report.Recommendations = recs
	report.ConfidenceDistribution = dist

	return report, nil
}

// runFrequencyAnalyzers runs the four independent C3 analyzers in
// parallel (spec.md §5: "parallelism across independent analyzers...
// is permitted").
func (d *Driver) runFrequencyAnalyzers(ctx context.Context, ds *dataset.Dataset, opts dataset.Options, report *Report) error {
	var wg sync.WaitGroup
	errs := make(chan error, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		result, err := analyzers.NewHeaderAnalyzer().Analyze(ctx, ds, opts)
		if err != nil {
			errs <- fmt.Errorf("header analyzer: %w", err)
			return
		}
		report.Headers = result
	}()
	go func() {
		defer wg.Done()
		result, err := analyzers.NewMetaTagAnalyzer().Analyze(ctx, ds, opts)
		if err != nil {
			errs <- fmt.Errorf("meta tag analyzer: %w", err)
			return
		}
		report.MetaTags = result
	}()
	go func() {
		defer wg.Done()
		result, err := analyzers.NewScriptAnalyzer().Analyze(ctx, ds, opts)
		if err != nil {
			errs <- fmt.Errorf("script analyzer: %w", err)
			return
		}
		report.Scripts = result
	}()
	go func() {
		defer wg.Done()
		result, err := analyzers.NewSemanticAnalyzer().Analyze(ctx, ds, opts)
		if err != nil {
			errs <- fmt.Errorf("semantic analyzer: %w", err)
			return
		}
		report.Semantic = result
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return fmt.Errorf("orchestrate: %w", err)
		}
	}
	return nil
}

// combinePatterns merges the header and meta-tag pattern maps into the
// seed set the Validation Pipeline operates on (spec.md §4.6 "seeded
// from C3 frequency-analyzer outputs").
func combinePatterns(headers *dataset.AnalysisResult[analyzers.HeaderSpecific], metaTags *dataset.AnalysisResult[analyzers.MetaSpecific]) map[string]*dataset.PatternRecord {
	combined := make(map[string]*dataset.PatternRecord)
	if headers != nil {
		for fingerprint, record := range headers.Patterns {
			combined["header:"+fingerprint] = record
		}
	}
	if metaTags != nil {
		for fingerprint, record := range metaTags.Patterns {
			combined["meta:"+fingerprint] = record
		}
	}
	return combined
}

// semanticLookup adapts the dataset's precomputed semantic
// classification block to recommend.SemanticLookup. Seed-pattern keys
// carry a "header:"/"meta:" domain prefix (see combinePatterns); the
// underlying classification block is keyed by the bare fingerprint.
type semanticLookup struct {
	ds *dataset.Dataset
}

func (s semanticLookup) CategoryFor(fingerprint string) (string, float64, bool) {
	if s.ds == nil || s.ds.Metadata.Semantic == nil {
		return "", 0, false
	}
	bare := stripDomainPrefix(fingerprint)
	classification, ok := s.ds.Metadata.Semantic.Classifications[bare]
	if !ok {
		return "", 0, false
	}
	return classification.Category, classification.DiscriminativeScore, true
}

func stripDomainPrefix(fingerprint string) string {
	for _, prefix := range []string{"header:", "meta:"} {
		if len(fingerprint) > len(prefix) && fingerprint[:len(prefix)] == prefix {
			return fingerprint[len(prefix):]
		}
	}
	return fingerprint
}
