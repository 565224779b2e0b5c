// Package dataset defines the preprocessed input to the analysis pipeline:
// normalized per-site observations plus optional precomputed metadata
// (semantic classifications, vendor mappings, validation results).
//
// The dataset is immutable input. No analyzer in this module mutates a
// Dataset; every accessor here returns either a copy or a read-only view.
package dataset

import "time"

// SiteObservation is an immutable record of a single previously-crawled
// site: response headers, meta tags, scripts, and a tentative CMS label.
type SiteObservation struct {
	URL           string
	NormalizedURL string

	// CMS is the tentative content-management-system label for this
	// site, or nil if unknown. CMS detection itself is out of scope;
	// this is input.
	CMS        *string
	Confidence float64

	// Headers maps a lowercased header name to the set of raw values
	// observed for it. Lowercasing is an invariant enforced at the
	// Dataset boundary (see Validate).
	Headers map[string]map[string]struct{}

	// MetaTags maps a fingerprint of the form "{name|property|http-equiv}:{key}"
	// to the set of raw values observed for it.
	MetaTags map[string]map[string]struct{}

	Scripts      map[string]struct{}
	Technologies map[string]struct{}

	CapturedAt time.Time

	// PageTypes holds optional per-page-type breakdowns, e.g. "mainpage"
	// vs "robots", each keyed the same way as the top-level observation.
	PageTypes map[string]*PageTypeBreakdown
}

// PageTypeBreakdown is a per-page-type slice of the same observation
// shape as SiteObservation, without CMS/confidence (those are site-level).
type PageTypeBreakdown struct {
	Headers  map[string]map[string]struct{}
	MetaTags map[string]map[string]struct{}
	Scripts  map[string]struct{}
}

// SemanticClassification is a discriminative assessment of a single
// header produced upstream (outside this module) and optionally
// attached to a Dataset as precomputed metadata.
type SemanticClassification struct {
	Category             string
	DiscriminativeScore  float64
	FilterRecommendation string
}

// SemanticMetadata is the optional precomputed semantic block: per
// header, a category, a classification, and an inferred vendor name.
type SemanticMetadata struct {
	Categories      map[string]string
	Classifications map[string]SemanticClassification
	VendorNames     map[string]string
}

// ValidatedPattern is one entry of the optional precomputed validation
// block: a header that has already passed validation upstream, together
// with its site count and site set.
type ValidatedPattern struct {
	SiteCount       int
	Sites           map[string]struct{}
	Confidence      float64
	Significant     bool
	QualityPassedAt float64             // quality score recorded when this pattern passed, for §4.3 step 3 "quality > 0.7"
}

// VendorMetadataEntry is the optional precomputed vendor reuse block
// consumed by the Bias analyzer (§4.7) as a cross-analyzer snapshot
// when the driver did not also run the live Vendor analyzer.
type VendorMetadataEntry struct {
	VendorName string
	Category   string
	Confidence float64
}

// ValidationMetadata is the optional precomputed validation block.
type ValidationMetadata struct {
	ValidatedHeaders map[string]ValidatedPattern
	QualityScore     float64
	Passed           bool
}

// Metadata carries the dataset-level bookkeeping plus the three optional
// precomputed blocks described in spec.md §3.
type Metadata struct {
	PreprocessingVersion string
	GeneratedAt          time.Time

	Semantic   *SemanticMetadata
	Vendor     map[string]VendorMetadataEntry
	Validation *ValidationMetadata
}

// Dataset is the immutable Preprocessed Dataset (C1): a mapping from
// normalized URL to site observation, a total-sites count, and metadata.
type Dataset struct {
	Sites      map[string]*SiteObservation
	TotalSites int
	Metadata   Metadata
}

// New builds a Dataset from a slice of observations, computing TotalSites
// from the number of distinct normalized URLs. Duplicate normalized URLs
// overwrite earlier entries, matching the map-keyed nature of the
// upstream store this module consumes.
func New(sites []*SiteObservation, meta Metadata) *Dataset {
	m := make(map[string]*SiteObservation, len(sites))
	for _, s := range sites {
		m[s.NormalizedURL] = s
	}
	return &Dataset{
		Sites:      m,
		TotalSites: len(m),
		Metadata:   meta,
	}
}
