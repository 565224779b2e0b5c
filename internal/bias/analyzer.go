package bias

import (
	"github.com/jabbermarky/site-pattern-analyzer/internal/cooccurrence"
	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/discovery"
	"github.com/jabbermarky/site-pattern-analyzer/internal/vendor"
)

// Result is the full Bias Analyzer output (spec.md §4.7).
type Result struct {
	CMSDistribution map[string]*CMSBucket
	Concentration   ConcentrationMetrics
	Correlations    map[string]*HeaderCorrelation
	Warnings        []Warning
	CrossAnalyzer   []*CrossAnalyzerAssessment
	Summary         StatisticalSummary
	Sensitivity     []SensitivityResult
	Visualization   VisualizationData
}

// Analyzer implements the Bias Analyzer (C8), the largest component in
// the pipeline. It consumes optional injected snapshots from the
// Vendor, Pattern Discovery, and Semantic analyzers.
type Analyzer struct {
	vendorSnapshot               *vendor.Snapshot
	discoverySnapshot            *discovery.Snapshot
	coocSnapshot                 *cooccurrence.Snapshot
	semanticCategoryDistribution map[string]int
	semanticTotalPatterns        int
}

// NewAnalyzer creates a Bias Analyzer with no injected context.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// SetVendorData injects the Vendor Analyzer's snapshot (spec.md §4.7,
// §6 injection point).
func (a *Analyzer) SetVendorData(v *vendor.Snapshot) { a.vendorSnapshot = v }

// SetDiscoveryData injects the Pattern Discovery Analyzer's snapshot.
func (a *Analyzer) SetDiscoveryData(d *discovery.Snapshot) { a.discoverySnapshot = d }

// SetCooccurrenceData injects the Co-occurrence Analyzer's snapshot,
// used by the pattern-discovery cross-analyzer assessment.
func (a *Analyzer) SetCooccurrenceData(c *cooccurrence.Snapshot) { a.coocSnapshot = c }

// SetSemanticData injects the Semantic analyzer's category distribution.
func (a *Analyzer) SetSemanticData(categoryDistribution map[string]int, totalPatterns int) {
	a.semanticCategoryDistribution = categoryDistribution
	a.semanticTotalPatterns = totalPatterns
}

// Analyze implements spec.md §4.7 steps 1-8.
func (a *Analyzer) Analyze(ds *dataset.Dataset, minOccurrences int) (*Result, error) {
	buckets := CMSDistribution(ds)
	concentration := Concentration(buckets)
	correlations := HeaderCorrelations(ds, buckets, minOccurrences)

	warnings := Warnings(buckets, concentration, correlations, ds.TotalSites)

	var crossAssessments []*CrossAnalyzerAssessment
	if tech := TechnologyBiasAssessment(a.vendorSnapshot, majorCMSNames(buckets)); tech != nil {
		crossAssessments = append(crossAssessments, tech)
		if w := crossAnalyzerWarning(tech.Metrics["vendor_hhi"]); w != nil {
			warnings = append(warnings, *w)
		}
	}
	if semantic := SemanticBiasAssessment(a.semanticCategoryDistribution, a.semanticTotalPatterns); semantic != nil {
		crossAssessments = append(crossAssessments, semantic)
	}
	if discoveryAssessment := PatternDiscoveryBiasAssessment(a.discoverySnapshot, a.coocSnapshot); discoveryAssessment != nil {
		crossAssessments = append(crossAssessments, discoveryAssessment)
	}

	summary := Summarize(correlations, concentration, ds.TotalSites)
	sensitivity := SensitivityAnalysis(correlations, concentration.HHI)
	visualization := BuildVisualization(buckets, concentration, correlations, warnings, crossAssessments)

	return &Result{
		CMSDistribution: buckets,
		Concentration:   concentration,
		Correlations:    correlations,
		Warnings:        warnings,
		CrossAnalyzer:   crossAssessments,
		Summary:         summary,
		Sensitivity:     sensitivity,
		Visualization:   visualization,
	}, nil
}

func majorCMSNames(buckets map[string]*CMSBucket) []string {
	var major []string
	for cms, b := range buckets {
		if cms != "Unknown" && b.Percentage > 5 {
			major = append(major, cms)
		}
	}
	return major
}
