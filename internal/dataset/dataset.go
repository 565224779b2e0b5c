package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Validate reports an input-constraint violation (§7) if the dataset
// breaks the invariants the rest of the pipeline assumes. It never
// mutates the dataset — lowercase normalization is an invariant the
// upstream producer must already satisfy; this only detects violations.
func (d *Dataset) Validate() error {
	if d == nil {
		return fmt.Errorf("dataset: nil dataset")
	}
	if d.TotalSites != len(d.Sites) {
		return fmt.Errorf("dataset: total_sites=%d does not match %d site records", d.TotalSites, len(d.Sites))
	}
	for url, site := range d.Sites {
		if site.NormalizedURL != url {
			return fmt.Errorf("dataset: site keyed %q carries normalized_url %q", url, site.NormalizedURL)
		}
		for h := range site.Headers {
			if h != strings.ToLower(h) {
				return fmt.Errorf("dataset: header name %q on site %q is not lowercased", h, url)
			}
		}
		if site.Confidence < 0 || site.Confidence > 1 {
			return fmt.Errorf("dataset: site %q confidence %f out of [0,1]", url, site.Confidence)
		}
	}
	return nil
}

// HeaderNames returns the sorted, deduplicated set of lowercased header
// names observed anywhere in the dataset.
func (d *Dataset) HeaderNames() []string {
	seen := make(map[string]struct{})
	for _, site := range d.Sites {
		for h := range site.Headers {
			seen[h] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// SitesWithHeader returns the set of normalized URLs whose observation
// carries at least one value for the given (already-lowercased) header.
func (d *Dataset) SitesWithHeader(header string) map[string]struct{} {
	out := make(map[string]struct{})
	for url, site := range d.Sites {
		if _, ok := site.Headers[header]; ok {
			out[url] = struct{}{}
		}
	}
	return out
}

// HeaderValues returns the set of raw values observed for a header on a
// specific site, or nil if the site never carried it.
func (d *Dataset) HeaderValues(normalizedURL, header string) map[string]struct{} {
	site, ok := d.Sites[normalizedURL]
	if !ok {
		return nil
	}
	return site.Headers[header]
}

// MetaFingerprints returns the sorted, deduplicated set of meta-tag
// fingerprints ("{scope}:{key}") observed anywhere in the dataset.
func (d *Dataset) MetaFingerprints() []string {
	seen := make(map[string]struct{})
	for _, site := range d.Sites {
		for k := range site.MetaTags {
			seen[k] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// CMSLabel returns the site's CMS label, defaulting to "Unknown" when
// the observation carries none — the bucketing convention used by the
// Bias analyzer (§4.7 step 1).
func (s *SiteObservation) CMSLabel() string {
	if s.CMS == nil || *s.CMS == "" {
		return "Unknown"
	}
	return *s.CMS
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
