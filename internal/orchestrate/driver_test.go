package orchestrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
)

func site(url, cms string, headers map[string]map[string]struct{}) *dataset.SiteObservation {
	c := cms
	return &dataset.SiteObservation{URL: url, NormalizedURL: url, CMS: &c, Confidence: 0.9, Headers: headers}
}

func buildReportDataset() *dataset.Dataset {
	var sites []*dataset.SiteObservation
	cfHeaders := map[string]map[string]struct{}{
		"cf-ray":       {"abc123": {}},
		"server":       {"cloudflare": {}},
		"x-powered-by": {"express": {}},
	}
	plainHeaders := map[string]map[string]struct{}{
		"content-type": {"text/html": {}},
	}
	for i := 0; i < 20; i++ {
		sites = append(sites, site(idx("cf", i), "WordPress", cfHeaders))
	}
	for i := 0; i < 10; i++ {
		sites = append(sites, site(idx("plain", i), "Drupal", plainHeaders))
	}
	return dataset.New(sites, dataset.Metadata{})
}

func idx(prefix string, i int) string {
	digits := "0123456789"
	return prefix + "-" + string(digits[i%10]) + string(digits[(i/10)%10])
}

func TestDriver_RunProducesFullReport(t *testing.T) {
	ds := buildReportDataset()
	driver := NewDriver()

	report, err := driver.Run(context.Background(), ds, Options{MinOccurrences: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.NotNil(t, report.Headers)
	assert.NotNil(t, report.MetaTags)
	assert.NotNil(t, report.Scripts)
	assert.NotNil(t, report.Semantic)
	assert.NotNil(t, report.Vendor)
	assert.NotNil(t, report.Cooccurrence)
	assert.NotNil(t, report.Discovery)
	assert.NotNil(t, report.Bias)
	assert.Equal(t, 7, report.Validation.TotalStages)

	assert.Contains(t, report.Vendor.Detections, "cf-ray")
}

func TestDriver_RejectsNilDataset(t *testing.T) {
	driver := NewDriver()
	_, err := driver.Run(context.Background(), nil, Options{MinOccurrences: 1})
	assert.Error(t, err)
}

func TestDriver_NormalizesZeroMinOccurrences(t *testing.T) {
	ds := buildReportDataset()
	driver := NewDriver()
	_, err := driver.Run(context.Background(), ds, Options{MinOccurrences: 0})
	assert.NoError(t, err) // MinOccurrences is normalized up to 1, not rejected
}

func TestDriver_RunHonorsCancelledContext(t *testing.T) {
	ds := buildReportDataset()
	driver := NewDriver()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := driver.Run(ctx, ds, Options{MinOccurrences: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
