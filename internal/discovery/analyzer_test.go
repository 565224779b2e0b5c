package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/vendor"
)

func withHeaders(url string, headers ...string) *dataset.SiteObservation {
	h := make(map[string]map[string]struct{}, len(headers))
	for _, name := range headers {
		h[name] = map[string]struct{}{"v": {}}
	}
	return &dataset.SiteObservation{NormalizedURL: url, Headers: h}
}

func TestDiscovery_PrefixPatternDiscovered(t *testing.T) {
	sites := []*dataset.SiteObservation{
		withHeaders("a", "widget-cache-id", "widget-session-token"),
		withHeaders("b", "widget-cache-id"),
	}
	ds := dataset.New(sites, dataset.Metadata{})
	analyzer := NewAnalyzer(vendor.Catalog)

	snapshot, err := analyzer.Analyze(ds, 1)
	require.NoError(t, err)

	var found bool
	for _, p := range snapshot.Patterns {
		if p.Kind == KindPrefix && p.Token == "widget" {
			found = true
			assert.Equal(t, 2, p.SiteCount)
			assert.Equal(t, "widget", p.InferredVendor)
		}
	}
	assert.True(t, found)
}

func TestDiscovery_MinOccurrencesFiltersRarePatterns(t *testing.T) {
	sites := []*dataset.SiteObservation{
		withHeaders("a", "widget-cache-id"),
	}
	ds := dataset.New(sites, dataset.Metadata{})
	analyzer := NewAnalyzer(vendor.Catalog)

	snapshot, err := analyzer.Analyze(ds, 5)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Patterns)
}

func TestDiscovery_EmergingVendorExcludesKnownCatalogTokens(t *testing.T) {
	sites := []*dataset.SiteObservation{
		withHeaders("a", "cf-ray", "cf-cache-status"),
		withHeaders("b", "cf-ray"),
	}
	ds := dataset.New(sites, dataset.Metadata{})
	analyzer := NewAnalyzer(vendor.Catalog)

	snapshot, err := analyzer.Analyze(ds, 1)
	require.NoError(t, err)

	for _, ev := range snapshot.EmergingVendors {
		assert.NotEqual(t, "cf", ev.Token, "cf is already a known catalog token and must not surface as emerging")
	}
}

func TestDiscovery_ValidationBoostAppliedFlag(t *testing.T) {
	sites := []*dataset.SiteObservation{
		withHeaders("a", "widget-cache-id", "widget-session-token"),
		withHeaders("b", "widget-cache-id"),
	}
	ds := dataset.New(sites, dataset.Metadata{})
	analyzer := NewAnalyzer(vendor.Catalog)
	analyzer.SetValidationData(&dataset.ValidationMetadata{Passed: true})

	snapshot, err := analyzer.Analyze(ds, 1)
	require.NoError(t, err)

	require.NotEmpty(t, snapshot.Patterns)
	assert.True(t, snapshot.Patterns[0].ValidationBoostApplied)
}
