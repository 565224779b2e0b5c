package bias

import (
	"github.com/jabbermarky/site-pattern-analyzer/internal/cooccurrence"
	"github.com/jabbermarky/site-pattern-analyzer/internal/discovery"
	"github.com/jabbermarky/site-pattern-analyzer/internal/stats"
	"github.com/jabbermarky/site-pattern-analyzer/internal/vendor"
)

// CrossAnalyzerAssessment is one injected-snapshot bias view (spec.md
// §4.7 step 6): technology, semantic, or pattern-discovery bias.
type CrossAnalyzerAssessment struct {
	Kind            string             // technology, semantic, pattern_discovery
	OverallLevel    string
	Recommendations []string
	Metrics         map[string]float64
}

// TechnologyBiasAssessment implements spec.md §4.7 step 6 "technology
// bias": the HHI of vendor-category shares among detections, the
// categories holding more than 50% of detections, and a coverage
// reminder naming the major CMS platforms. It does not rank individual
// vendors and does not check which technologies a major CMS lacks.
func TechnologyBiasAssessment(snapshot *vendor.Snapshot, majorCMS []string) *CrossAnalyzerAssessment {
	if snapshot == nil {
		return nil
	}

	categoryPercent := make(map[vendor.Category]float64)
	total := 0
	for _, d := range snapshot.Detections {
		total++
		categoryPercent[d.Vendor.Category]++
	}
	var percentages []float64
	var dominant []string
	for category, count := range categoryPercent {
		pct := 0.0
		if total > 0 {
			pct = count / float64(total) * 100
		}
		percentages = append(percentages, pct)
		if pct > 50 {
			dominant = append(dominant, string(category))
		}
	}
	hhi := stats.HHI(percentages)

	level := "low"
	switch {
	case hhi > 0.6:
		level = "high"
	case hhi > 0.3:
		level = "medium"
	}

	var recs []string
	if len(dominant) > 0 {
		recs = append(recs, "dataset is dominated by vendors in categories: "+joinStrings(dominant))
	}
	if len(majorCMS) > 0 {
		recs = append(recs, "verify vendor coverage across major CMS platforms: "+joinStrings(majorCMS))
	}

	return &CrossAnalyzerAssessment{
		Kind:            "technology",
		OverallLevel:    level,
		Recommendations: recs,
		Metrics:         map[string]float64{"vendor_hhi": hhi},
	}
}

// SemanticBiasAssessment implements spec.md §4.7 step 6 "semantic bias".
func SemanticBiasAssessment(categoryDistribution map[string]int, totalPatterns int) *CrossAnalyzerAssessment {
	if categoryDistribution == nil {
		return nil
	}
	var over, under []string
	expectedShare := 1.0 / float64(maxInt(len(categoryDistribution), 1))
	for category, count := range categoryDistribution {
		share := 0.0
		if totalPatterns > 0 {
			share = float64(count) / float64(totalPatterns)
		}
		if share > expectedShare*1.5 {
			over = append(over, category)
		}
		if share < expectedShare*0.5 {
			under = append(under, category)
		}
	}

	level := "low"
	if len(over) > 0 || len(under) > 0 {
		level = "medium"
	}
	if len(over) > 2 {
		level = "high"
	}

	var recs []string
	if len(over) > 0 {
		recs = append(recs, "over-represented semantic categories: "+joinStrings(over))
	}
	if len(under) > 0 {
		recs = append(recs, "under-represented semantic categories: "+joinStrings(under))
	}

	return &CrossAnalyzerAssessment{
		Kind:            "semantic",
		OverallLevel:    level,
		Recommendations: recs,
		Metrics:         map[string]float64{},
	}
}

// PatternDiscoveryBiasAssessment implements spec.md §4.7 step 6
// "pattern-discovery bias" as discovery completeness only: the share of
// discovered patterns that are statistically significant. Platform and
// category balance are not assessed, and cooc is not read.
func PatternDiscoveryBiasAssessment(snapshot *discovery.Snapshot, cooc *cooccurrence.Snapshot) *CrossAnalyzerAssessment {
	if snapshot == nil {
		return nil
	}

	significant := 0
	for _, p := range snapshot.Patterns {
		if p.Significant {
			significant++
		}
	}
	completeness := 0.0
	if len(snapshot.Patterns) > 0 {
		completeness = float64(significant) / float64(len(snapshot.Patterns))
	}

	level := "low"
	if completeness < 0.3 {
		level = "high"
	} else if completeness < 0.6 {
		level = "medium"
	}

	var recs []string
	if level != "low" {
		recs = append(recs, "most discovered patterns are not statistically significant; collect more data before acting on them")
	}

	return &CrossAnalyzerAssessment{
		Kind:            "pattern_discovery",
		OverallLevel:    level,
		Recommendations: recs,
		Metrics:         map[string]float64{"discovery_completeness": completeness},
	}
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
