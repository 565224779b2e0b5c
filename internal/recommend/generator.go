// Package recommend implements the Recommendations Generator (C9):
// filter/retain recommendations over the aggregated header result with
// a confidence distribution (spec.md §4.8).
package recommend

import "github.com/jabbermarky/site-pattern-analyzer/internal/dataset"

// Action is the recommended disposition for a header pattern.
type Action string

const (
	ActionFilter Action = "filter"
	ActionRetain Action = "retain"
)

// Level buckets a recommendation's confidence value.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "veryHigh"
)

// Confidence is the recommendation's scored confidence.
type Confidence struct {
	Value float64
	Level Level
}

// Recommendation is one header's filter/retain verdict (spec.md §4.8).
type Recommendation struct {
	Type       string
	Pattern    string
	Action     Action
	Confidence Confidence
	Reasoning  string
}

// ConfidenceDistribution buckets the share of recommendations at each
// confidence level.
type ConfidenceDistribution struct {
	Low      float64
	Medium   float64
	High     float64
	VeryHigh float64
}

// SemanticLookup exposes the per-header semantic category the Semantic
// analyzer (C3) assigned, if any.
type SemanticLookup interface {
	CategoryFor(fingerprint string) (category string, confidence float64, ok bool)
}

// Generator implements the Recommendations Generator (C9).
type Generator struct {
	minOccurrences int
	semantic       SemanticLookup
}

// NewGenerator creates a Recommendations Generator.
func NewGenerator(minOccurrences int, semantic SemanticLookup) *Generator {
	return &Generator{minOccurrences: minOccurrences, semantic: semantic}
}

// Generate implements spec.md §4.8 over the aggregated header patterns.
func (g *Generator) Generate(patterns map[string]*dataset.PatternRecord) ([]Recommendation, ConfidenceDistribution) {
	var out []Recommendation

	for fingerprint, p := range patterns {
		if p.SiteCount < g.minOccurrences {
			continue
		}

		var action Action
		var confidenceValue float64
		var reasoning string

		category, semanticConfidence, hasSemantic := "", 0.0, false
		if g.semantic != nil {
			category, semanticConfidence, hasSemantic = g.semantic.CategoryFor(fingerprint)
		}

		switch {
		case hasSemantic && category == "security":
			action = ActionFilter
			confidenceValue = semanticConfidence
			reasoning = "header is classified as a security-sensitive vendor marker"
		case !hasSemantic && p.Frequency >= 0.2 && p.Frequency <= 0.6:
			action = ActionRetain
			confidenceValue = frequencyConfidence(p.Frequency)
			reasoning = "moderate frequency suggests a discriminative, non-ubiquitous pattern"
		default:
			action = ActionRetain
			if hasSemantic {
				confidenceValue = semanticConfidence
				reasoning = "retained by default policy using semantic classification confidence"
			} else {
				confidenceValue = frequencyConfidence(p.Frequency)
				reasoning = "retained by default policy using frequency-derived confidence"
			}
		}

		out = append(out, Recommendation{
			Type:       "header",
			Pattern:    fingerprint,
			Action:     action,
			Confidence: Confidence{Value: confidenceValue, Level: levelFor(confidenceValue)},
			Reasoning:  reasoning,
		})
	}

	return out, distribution(out)
}

// frequencyConfidence is the deterministic frequency-to-confidence
// mapping used when no semantic confidence is available (spec.md §4.8).
func frequencyConfidence(frequency float64) float64 {
	switch {
	case frequency < 0.05:
		return 0.3
	case frequency < 0.2:
		return 0.5
	case frequency < 0.6:
		return 0.7
	case frequency < 0.9:
		return 0.85
	default:
		return 0.95
	}
}

func levelFor(confidence float64) Level {
	switch {
	case confidence < 0.5:
		return LevelLow
	case confidence < 0.7:
		return LevelMedium
	case confidence < 0.9:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}

// distribution implements spec.md §4.8's "evenly split {0.25 each} on
// empty input" rule.
func distribution(recs []Recommendation) ConfidenceDistribution {
	if len(recs) == 0 {
		return ConfidenceDistribution{Low: 0.25, Medium: 0.25, High: 0.25, VeryHigh: 0.25}
	}

	counts := map[Level]int{}
	for _, r := range recs {
		counts[r.Confidence.Level]++
	}
	total := float64(len(recs))
	return ConfidenceDistribution{
		Low:      float64(counts[LevelLow]) / total,
		Medium:   float64(counts[LevelMedium]) / total,
		High:     float64(counts[LevelHigh]) / total,
		VeryHigh: float64(counts[LevelVeryHigh]) / total,
	}
}
