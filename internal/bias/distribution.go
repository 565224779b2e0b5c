// Package bias implements the Bias Analyzer (C8), the largest component
// in the pipeline: CMS distribution, concentration metrics, per-header
// per-CMS correlations, platform specificity, bias-adjusted frequencies,
// bias warnings, and cross-analyzer bias assessments (spec.md §4.7).
package bias

import (
	"strings"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

// CMSBucket is one CMS distribution bucket (spec.md §4.7 step 1).
type CMSBucket struct {
	CMS            string
	Count          int
	Percentage     float64
	Sites          map[string]struct{}
	MeanConfidence float64
	Technologies   map[string]struct{}
}

// UnknownSubcategory further classifies Unknown-CMS sites (spec.md §4.7
// step 1 "enterprise, cdn, or unknown").
type UnknownSubcategory string

const (
	SubcategoryEnterprise UnknownSubcategory = "enterprise"
	SubcategoryCDN        UnknownSubcategory = "cdn"
	SubcategoryUnknown    UnknownSubcategory = "unknown"
)

var cdnMarkers = []string{"cf-ray", "x-amz-cf-id", "x-served-by", "via"}
var enterpriseSecurityHeaders = []string{"strict-transport-security", "content-security-policy", "x-frame-options"}

// ClassifyUnknownSite implements spec.md §4.7 step 1's deterministic
// rule set for Unknown-CMS sites.
func ClassifyUnknownSite(site *dataset.SiteObservation) UnknownSubcategory {
	enterpriseCount := 0
	for _, h := range enterpriseSecurityHeaders {
		if _, ok := site.Headers[h]; ok {
			enterpriseCount++
		}
	}
	if enterpriseCount >= 2 {
		return SubcategoryEnterprise
	}
	for _, h := range cdnMarkers {
		if _, ok := site.Headers[h]; ok {
			return SubcategoryCDN
		}
	}
	for tech := range site.Technologies {
		if strings.Contains(strings.ToLower(tech), "cdn") {
			return SubcategoryCDN
		}
	}
	return SubcategoryUnknown
}

// CMSDistribution computes spec.md §4.7 step 1: bucket sites by CMS
// label, Unknown defaulting per dataset.SiteObservation.CMSLabel.
func CMSDistribution(ds *dataset.Dataset) map[string]*CMSBucket {
	buckets := make(map[string]*CMSBucket)
	for _, site := range ds.Sites {
		label := site.CMSLabel()
		b, ok := buckets[label]
		if !ok {
			b = &CMSBucket{CMS: label, Sites: make(map[string]struct{}), Technologies: make(map[string]struct{})}
			buckets[label] = b
		}
		b.Count++
		b.Sites[site.NormalizedURL] = struct{}{}
		b.MeanConfidence += site.Confidence
		for t := range site.Technologies {
			b.Technologies[t] = struct{}{}
		}
	}

	total := ds.TotalSites
	for _, b := range buckets {
		if b.Count > 0 {
			b.MeanConfidence /= float64(b.Count)
		}
		if total > 0 {
			b.Percentage = float64(b.Count) / float64(total) * 100
		}
	}
	return buckets
}
