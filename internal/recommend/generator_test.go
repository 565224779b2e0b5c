package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

type fakeSemantic struct {
	categories map[string]string
	confidence map[string]float64
}

func (f fakeSemantic) CategoryFor(fingerprint string) (string, float64, bool) {
	c, ok := f.categories[fingerprint]
	if !ok {
		return "", 0, false
	}
	return c, f.confidence[fingerprint], true
}

func pattern(count int, frequency float64) *dataset.PatternRecord {
	return &dataset.PatternRecord{SiteCount: count, Frequency: frequency}
}

func TestRecommend_SkipsBelowMinOccurrences(t *testing.T) {
	g := NewGenerator(5, nil)
	recs, _ := g.Generate(map[string]*dataset.PatternRecord{
		"x-rare": pattern(2, 0.1),
	})
	assert.Empty(t, recs)
}

func TestRecommend_SecurityHeaderIsFiltered(t *testing.T) {
	sem := fakeSemantic{
		categories: map[string]string{"x-auth-token": "security"},
		confidence: map[string]float64{"x-auth-token": 0.92},
	}
	g := NewGenerator(1, sem)
	recs, _ := g.Generate(map[string]*dataset.PatternRecord{
		"x-auth-token": pattern(50, 0.5),
	})
	assert.Len(t, recs, 1)
	assert.Equal(t, ActionFilter, recs[0].Action)
	assert.Equal(t, LevelVeryHigh, recs[0].Confidence.Level)
}

func TestRecommend_ModerateFrequencyWithoutSemanticIsRetained(t *testing.T) {
	g := NewGenerator(1, nil)
	recs, _ := g.Generate(map[string]*dataset.PatternRecord{
		"x-cache-status": pattern(40, 0.35),
	})
	assert.Len(t, recs, 1)
	assert.Equal(t, ActionRetain, recs[0].Action)
}

func TestRecommend_EmptyInputYieldsEvenDistribution(t *testing.T) {
	g := NewGenerator(1, nil)
	_, dist := g.Generate(map[string]*dataset.PatternRecord{})
	assert.Equal(t, ConfidenceDistribution{Low: 0.25, Medium: 0.25, High: 0.25, VeryHigh: 0.25}, dist)
}

func TestRecommend_DistributionSumsToOne(t *testing.T) {
	g := NewGenerator(1, nil)
	recs, dist := g.Generate(map[string]*dataset.PatternRecord{
		"a": pattern(10, 0.01),
		"b": pattern(10, 0.3),
		"c": pattern(10, 0.8),
		"d": pattern(10, 0.95),
	})
	assert.Len(t, recs, 4)
	total := dist.Low + dist.Medium + dist.High + dist.VeryHigh
	assert.InDelta(t, 1.0, total, 0.0001)
}
