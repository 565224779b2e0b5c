package bias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

func cmsSite(url, cms string, headers map[string]map[string]struct{}) *dataset.SiteObservation {
	c := cms
	return &dataset.SiteObservation{NormalizedURL: url, CMS: &c, Confidence: 0.9, Headers: headers}
}

// TestBias_ScenarioS5_HHIFourEqualPlatforms reproduces spec.md scenario
// S5: four CMS at 25% each yields HHI = 0.25; one CMS at 100% yields 1.0.
func TestBias_ScenarioS5_HHIFourEqualPlatforms(t *testing.T) {
	var sites []*dataset.SiteObservation
	cmsNames := []string{"A", "B", "C", "D"}
	for _, name := range cmsNames {
		for i := 0; i < 5; i++ {
			sites = append(sites, cmsSite(name+string(rune('0'+i)), name, nil))
		}
	}
	ds := dataset.New(sites, dataset.Metadata{})

	buckets := CMSDistribution(ds)
	concentration := Concentration(buckets)

	assert.InDelta(t, 0.25, concentration.HHI, 0.001)
	assert.NotEqual(t, "high", concentration.ConcentrationRisk)
}

func TestBias_ScenarioS5_SinglePlatformHHIIsOne(t *testing.T) {
	var sites []*dataset.SiteObservation
	for i := 0; i < 10; i++ {
		sites = append(sites, cmsSite(string(rune('a'+i)), "WordPress", nil))
	}
	ds := dataset.New(sites, dataset.Metadata{})

	buckets := CMSDistribution(ds)
	concentration := Concentration(buckets)

	assert.InDelta(t, 1.0, concentration.HHI, 0.001)
	assert.Equal(t, "high", concentration.ConcentrationRisk)
}

// TestBias_ScenarioS6_BiasAdjustment reproduces spec.md scenario S6:
// header present on 100% WordPress, 10% Drupal, 90/10 dataset split.
func TestBias_ScenarioS6_BiasAdjustment(t *testing.T) {
	var sites []*dataset.SiteObservation
	headerPresent := map[string]map[string]struct{}{"x-powered-by-plugin": {"v": {}}}
	for i := 0; i < 90; i++ {
		sites = append(sites, cmsSite("wp"+string(rune(i)), "WordPress", headerPresent))
	}
	sites = append(sites, cmsSite("drupal-present", "Drupal", headerPresent))
	for i := 0; i < 9; i++ {
		sites = append(sites, cmsSite("drupal-absent"+string(rune(i)), "Drupal", nil))
	}

	ds := dataset.New(sites, dataset.Metadata{})
	analyzer := NewAnalyzer()

	result, err := analyzer.Analyze(ds, 1)
	require.NoError(t, err)

	corr, ok := result.Correlations["x-powered-by-plugin"]
	require.True(t, ok)
	assert.InDelta(t, 1.0, corr.Adjustment.AdjustmentFactor, 0.2)
}

func TestBias_Warnings_PlatformDominance(t *testing.T) {
	var sites []*dataset.SiteObservation
	for i := 0; i < 10; i++ {
		sites = append(sites, cmsSite(string(rune('a'+i)), "WordPress", nil))
	}
	ds := dataset.New(sites, dataset.Metadata{})

	buckets := CMSDistribution(ds)
	concentration := Concentration(buckets)
	warnings := Warnings(buckets, concentration, nil, ds.TotalSites)

	var found bool
	for _, w := range warnings {
		if w.Kind == "platform_dominance" {
			found = true
		}
	}
	assert.True(t, found)
}
