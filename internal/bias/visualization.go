package bias

import "sort"

// ConcentrationChartPoint is one slice of the visualization-ready
// concentration chart (spec.md §4.7 step 8).
type ConcentrationChartPoint struct {
	CMS        string
	Percentage float64
}

// RiskMatrixEntry pairs a header with its overall recommendation risk.
type RiskMatrixEntry struct {
	Header string
	Risk   string
}

// CorrelationHeatmapCell is one (header, CMS) cell whose Value is
// P(CMS|header).
type CorrelationHeatmapCell struct {
	Header string
	CMS    string
	Value  float64
}

// SeverityScores buckets the overall severity per category (spec.md
// §4.7 step 8).
type SeverityScores struct {
	Concentration float64
	Statistical   float64
	CrossAnalyzer float64
	Warnings      float64
}

// VisualizationData is the reporting-pass output of spec.md §4.7 step 8.
type VisualizationData struct {
	ConcentrationChart    []ConcentrationChartPoint
	RiskMatrix            []RiskMatrixEntry
	CorrelationHeatmap    []CorrelationHeatmapCell
	Severity              SeverityScores
	ConfidenceAdjustments map[string]float64
}

// BuildVisualization implements spec.md §4.7 step 8.
func BuildVisualization(buckets map[string]*CMSBucket, concentration ConcentrationMetrics, correlations map[string]*HeaderCorrelation, warnings []Warning, crossAssessments []*CrossAnalyzerAssessment) VisualizationData {
	var chart []ConcentrationChartPoint
	for cms, b := range buckets {
		chart = append(chart, ConcentrationChartPoint{CMS: cms, Percentage: b.Percentage})
	}
	sort.Slice(chart, func(i, j int) bool { return chart[i].Percentage > chart[j].Percentage })

	var matrix []RiskMatrixEntry
	var heatmap []CorrelationHeatmapCell
	confidenceAdjustments := make(map[string]float64)

	headers := make([]string, 0, len(correlations))
	for h := range correlations {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	for _, h := range headers {
		corr := correlations[h]
		matrix = append(matrix, RiskMatrixEntry{Header: h, Risk: corr.Risk.OverallRisk})

		cmsNames := make([]string, 0, len(corr.Conditional.PCMSGivenHeader))
		for cms := range corr.Conditional.PCMSGivenHeader {
			cmsNames = append(cmsNames, cms)
		}
		sort.Strings(cmsNames)
		for _, cms := range cmsNames {
			heatmap = append(heatmap, CorrelationHeatmapCell{Header: h, CMS: cms, Value: corr.Conditional.PCMSGivenHeader[cms]})
		}

		adjustment := 0.0
		if corr.Specificity.Score > 0.7 && corr.Risk.OverallRisk == "high" {
			adjustment = -0.3
		}
		if adjustment != 0 {
			confidenceAdjustments[h] = adjustment
		}
	}

	statisticalSeverity := 0.0
	for _, corr := range correlations {
		for _, cms := range corr.PerCMS {
			if cms.Significant {
				statisticalSeverity++
			}
		}
	}
	if len(correlations) > 0 {
		statisticalSeverity /= float64(len(correlations))
	}

	crossSeverity := 0.0
	for _, a := range crossAssessments {
		if a == nil {
			continue
		}
		switch a.OverallLevel {
		case "high":
			crossSeverity += 1
		case "medium":
			crossSeverity += 0.5
		}
	}
	if len(crossAssessments) > 0 {
		crossSeverity /= float64(len(crossAssessments))
	}

	return VisualizationData{
		ConcentrationChart: chart,
		RiskMatrix:         matrix,
		CorrelationHeatmap: heatmap,
		Severity: SeverityScores{
			Concentration: concentration.HHI,
			Statistical:   statisticalSeverity,
			CrossAnalyzer: crossSeverity,
			Warnings:      float64(len(warnings)),
		},
		ConfidenceAdjustments: confidenceAdjustments,
	}
}
