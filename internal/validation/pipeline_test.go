package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

func buildDataset(n int) *dataset.Dataset {
	var sites []*dataset.SiteObservation
	for i := 0; i < n; i++ {
		cms := "WordPress"
		sites = append(sites, &dataset.SiteObservation{
			NormalizedURL: string(rune('a' + i)),
			CMS:           &cms,
			Confidence:    0.9,
			Headers:       map[string]map[string]struct{}{"server": {"nginx": {}}},
			CapturedAt:    time.Unix(0, 0),
		})
	}
	return dataset.New(sites, dataset.Metadata{})
}

func TestPipeline_RunsExactlySevenStages(t *testing.T) {
	ds := buildDataset(10)
	seed := map[string]*dataset.PatternRecord{
		"header:server": {Pattern: "header:server", SiteCount: 10, Frequency: 1.0},
	}
	ctx := NewContext(ds, 1, seed)

	pipeline := NewPipeline()
	summary := pipeline.Run(ctx)

	require.Len(t, summary.Stages, 7)
	assert.Equal(t, 7, summary.TotalStages)
	assert.Equal(t, summary.PassedStages+summary.FailedStages, 7)
}

func TestPipeline_SmallDatasetFailsSampleSizeStage(t *testing.T) {
	ds := buildDataset(2)
	ctx := NewContext(ds, 1, nil)

	pipeline := NewPipeline()
	summary := pipeline.Run(ctx)

	require.NotEmpty(t, ctx.Errors)
	assert.False(t, summary.OverallPass)
}

func TestPipeline_QualityGradeBucketing(t *testing.T) {
	assert.Equal(t, "A", qualityGrade(0.95))
	assert.Equal(t, "B", qualityGrade(0.85))
	assert.Equal(t, "C", qualityGrade(0.75))
	assert.Equal(t, "D", qualityGrade(0.65))
	assert.Equal(t, "F", qualityGrade(0.2))
}

func TestFrequencyValidation_FiltersBelowMinOccurrences(t *testing.T) {
	ds := buildDataset(10)
	seed := map[string]*dataset.PatternRecord{
		"header:rare":   {Pattern: "header:rare", SiteCount: 1, Frequency: 0.1},
		"header:common": {Pattern: "header:common", SiteCount: 8, Frequency: 0.8},
	}
	ctx := NewContext(ds, 3, seed)

	stage := &FrequencyValidation{}
	result := stage.Run(ctx)

	assert.Equal(t, 1, result.PatternsValidated)
	assert.Equal(t, 1, result.PatternsFiltered)
	_, stillPresent := ctx.ValidatedPatterns["header:rare"]
	assert.False(t, stillPresent)
}
