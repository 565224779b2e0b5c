// Package cooccurrence implements the Co-occurrence Analyzer (C5): header
// pair statistics (joint count, conditional probability, mutual
// information), technology-stack signatures, platform-exclusive
// combinations, and mutual-exclusivity groups (spec.md §4.4).
package cooccurrence

import (
	"math"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/jabbermarky/site-pattern-analyzer/internal/bitset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/vendor"
)

// Category is the deterministic name-shape classification applied to a
// header when no vendor label is available (spec.md §4.4 step 4).
type Category string

const (
	CategorySecurity       Category = "security"
	CategoryCaching        Category = "caching"
	CategoryInfrastructure Category = "infrastructure"
	CategoryCustom         Category = "custom"
)

// PairRecord is one unordered header pair's co-occurrence statistics
// (spec.md §3 "co-occurrence record").
type PairRecord struct {
	Header1           string
	Header2           string
	JointCount        int
	JointFrequency    float64
	ConditionalProb   float64  // P(h2|h1)
	MutualInformation float64
	VendorLabel1      string
	VendorLabel2      string
	Category          Category
}

// StackSignature is a matched fixed technology-stack shape (spec.md §4.4 step 5).
type StackSignature struct {
	Name       string
	Vendor     string
	Category   Category
	Sites      map[string]struct{}
	Confidence float64
}

type stackSignatureDef struct {
	Name        string
	Vendor      string
	Category    Category
	Required    []string
	Optional    []string
	Conflicting []string
}

var stackSignatureCatalog = []stackSignatureDef{
	{
		Name:     "Cloudflare edge caching",
		Vendor:   "Cloudflare",
		Category: CategoryCaching,
		Required: []string{"cf-ray", "cf-cache-status"},
	},
	{
		Name:     "Shopify storefront stack",
		Vendor:   "Shopify",
		Category: CategoryInfrastructure,
		Required: []string{"x-shopid", "x-shopify-stage"},
	},
}

// PlatformCombination is a pairwise header combination specific to one
// CMS platform group (spec.md §4.4 step 6).
type PlatformCombination struct {
	CMS         string
	Header1     string
	Header2     string
	Frequency   float64
	JointCount  int
	Exclusivity float64
}

// ExclusivityGroup is a connected component of mutually-exclusive header
// pairs, size >= 3 (spec.md §4.4 step 7).
type ExclusivityGroup struct {
	Headers            []string
	AverageExclusivity float64
}

// StrongCorrelation is a top-MI, high-conditional-probability pair
// (spec.md §4.4 step 8).
type StrongCorrelation struct {
	Header1           string
	Header2           string
	MutualInformation float64
	ConditionalProb   float64
}

// Snapshot is the immutable cross-analyzer payload C5 hands to
// downstream consumers (e.g. C8).
type Snapshot struct {
	Pairs                map[string]*PairRecord
	Signatures           []StackSignature
	PlatformCombinations []PlatformCombination
	ExclusivityGroups    []ExclusivityGroup
	StrongCorrelations   []StrongCorrelation
}

// Analyzer implements the Co-occurrence Analyzer (C5).
type Analyzer struct {
	vendorSnapshot *vendor.Snapshot
}

// NewAnalyzer creates a Co-occurrence Analyzer with no vendor context.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// SetVendorData injects an optional precomputed Vendor Analyzer snapshot
// (spec.md §4.4 "optional injected vendor snapshot"; §6 injection point).
func (a *Analyzer) SetVendorData(v *vendor.Snapshot) {
	a.vendorSnapshot = v
}

// Analyze implements spec.md §4.4 steps 1-8.
func (a *Analyzer) Analyze(ds *dataset.Dataset, minOccurrences int) (*Snapshot, error) {
	headers := a.headerUniverse(ds)

	arena := bitset.NewArena()
	siteArena := bitset.NewArena()
	for url := range ds.Sites {
		siteArena.IDFor(url)
	}
	n := siteArena.Len()

	headerSets := make(map[string]*bitset.Set, len(headers))
	for _, h := range headers {
		arena.IDFor(h)
		set := bitset.New(n)
		for url := range ds.SitesWithHeader(h) {
			if id, ok := siteArena.ID(url); ok {
				set.Add(id)
			}
		}
		headerSets[h] = set
	}

	pairs := make(map[string]*PairRecord)
	for i := 0; i < len(headers); i++ {
		for j := i + 1; j < len(headers); j++ {
			h1, h2 := headers[i], headers[j]
			s1, s2 := headerSets[h1], headerSets[h2]
			joint := s1.IntersectionCardinality(s2)
			if joint < minOccurrences {
				continue
			}

			f1 := freqOf(s1, n)
			f2 := freqOf(s2, n)
			jointFreq := 0.0
			if n > 0 {
				jointFreq = float64(joint) / float64(n)
			}
			conditional := 0.0
			if s1.Cardinality() > 0 {
				conditional = float64(joint) / float64(s1.Cardinality())
			}
			mi := mutualInformation(jointFreq, f1, f2)

			record := &PairRecord{
				Header1:           h1,
				Header2:           h2,
				JointCount:        joint,
				JointFrequency:    jointFreq,
				ConditionalProb:   conditional,
				MutualInformation: mi,
				Category:          classifyShape(h1, h2),
			}
			a.attachVendorLabels(record)
			pairs[key(h1, h2)] = record
		}
	}

	signatures := a.detectSignatures(ds)
	platforms := a.platformCombinations(ds, minOccurrences)
	groups := a.exclusivityGroups(pairs)
	strong := strongCorrelations(pairs)

	return &Snapshot{
		Pairs:                pairs,
		Signatures:           signatures,
		PlatformCombinations: platforms,
		ExclusivityGroups:    groups,
		StrongCorrelations:   strong,
	}, nil
}

// headerUniverse implements spec.md §4.4 step 1: prefer the dataset's
// validated headers if present, else fall back to extracted header names.
func (a *Analyzer) headerUniverse(ds *dataset.Dataset) []string {
	if ds.Metadata.Validation != nil && len(ds.Metadata.Validation.ValidatedHeaders) > 0 {
		names := make([]string, 0, len(ds.Metadata.Validation.ValidatedHeaders))
		for h := range ds.Metadata.Validation.ValidatedHeaders {
			names = append(names, h)
		}
		sort.Strings(names)
		return names
	}
	return ds.HeaderNames()
}

func freqOf(s *bitset.Set, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(s.Cardinality()) / float64(n)
}

// mutualInformation implements spec.md §4.4 step 3.
func mutualInformation(jointFreq, f1, f2 float64) float64 {
	denom := f1 * f2
	if jointFreq <= 0 || denom <= 1e-12 {
		return 0
	}
	return jointFreq * math.Log(jointFreq/denom)
}

func key(h1, h2 string) string {
	return "cooccurrence:" + h1 + "+" + h2
}

// classifyShape implements spec.md §4.4 step 4's deterministic
// name-shape classifier when no vendor label applies.
func classifyShape(h1, h2 string) Category {
	for _, h := range []string{h1, h2} {
		if strings.Contains(h, "security") || strings.Contains(h, "csp") || h == "strict-transport-security" || strings.Contains(h, "xss") {
			return CategorySecurity
		}
	}
	for _, h := range []string{h1, h2} {
		if strings.Contains(h, "cache") || strings.Contains(h, "age") || strings.Contains(h, "etag") {
			return CategoryCaching
		}
	}
	for _, h := range []string{h1, h2} {
		if strings.Contains(h, "via") || strings.Contains(h, "server") || strings.Contains(h, "x-powered-by") {
			return CategoryInfrastructure
		}
	}
	return CategoryCustom
}

func (a *Analyzer) attachVendorLabels(record *PairRecord) {
	if a.vendorSnapshot == nil {
		return
	}
	if d, ok := a.vendorSnapshot.Detections[record.Header1]; ok {
		record.VendorLabel1 = d.Vendor.Name
	}
	if d, ok := a.vendorSnapshot.Detections[record.Header2]; ok {
		record.VendorLabel2 = d.Vendor.Name
	}
}

// detectSignatures implements spec.md §4.4 step 5.
func (a *Analyzer) detectSignatures(ds *dataset.Dataset) []StackSignature {
	var out []StackSignature
	for _, def := range stackSignatureCatalog {
		sites := make(map[string]struct{})
		for url, site := range ds.Sites {
			if !allPresent(site, def.Required) || anyPresent(site, def.Conflicting) {
				continue
			}
			sites[url] = struct{}{}
		}
		if len(sites) == 0 {
			continue
		}

		var sum float64
		var count int
		for i := 0; i < len(def.Required); i++ {
			for j := i + 1; j < len(def.Required); j++ {
				h1, h2 := def.Required[i], def.Required[j]
				s1 := ds.SitesWithHeader(h1)
				joint := intersectCount(s1, ds.SitesWithHeader(h2))
				if len(s1) == 0 {
					continue
				}
				sum += float64(joint) / float64(len(s1))
				count++
			}
		}
		confidence := 0.6
		if count > 0 {
			confidence = sum / float64(count)
		}

		out = append(out, StackSignature{
			Name:       def.Name,
			Vendor:     def.Vendor,
			Category:   def.Category,
			Sites:      sites,
			Confidence: clamp01(confidence),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func allPresent(site *dataset.SiteObservation, headers []string) bool {
	for _, h := range headers {
		if _, ok := site.Headers[h]; !ok {
			return false
		}
	}
	return true
}

func anyPresent(site *dataset.SiteObservation, headers []string) bool {
	for _, h := range headers {
		if _, ok := site.Headers[h]; ok {
			return true
		}
	}
	return false
}

func intersectCount(a, b map[string]struct{}) int {
	count := 0
	for k := range a {
		if _, ok := b[k]; ok {
			count++
		}
	}
	return count
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// platformCombinations implements spec.md §4.4 step 6.
func (a *Analyzer) platformCombinations(ds *dataset.Dataset, minOccurrences int) []PlatformCombination {
	byCMS := make(map[string][]*dataset.SiteObservation)
	for _, site := range ds.Sites {
		cms := site.CMSLabel()
		byCMS[cms] = append(byCMS[cms], site)
	}

	var out []PlatformCombination
	for cms, sites := range byCMS {
		headerSet := make(map[string]struct{})
		for _, s := range sites {
			for h := range s.Headers {
				headerSet[h] = struct{}{}
			}
		}
		names := make([]string, 0, len(headerSet))
		for h := range headerSet {
			names = append(names, h)
		}
		sort.Strings(names)

		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				h1, h2 := names[i], names[j]
				joint := 0
				for _, s := range sites {
					if hasHeader(s, h1) && hasHeader(s, h2) {
						joint++
					}
				}
				if joint < minOccurrences || len(sites) == 0 {
					continue
				}
				groupFreq := float64(joint) / float64(len(sites))
				if groupFreq < 0.1 {
					continue
				}

				globalJoint := intersectCount(ds.SitesWithHeader(h1), ds.SitesWithHeader(h2))
				exclusivity := 1.0
				if globalJoint > 0 {
					exclusivity = float64(joint) / float64(globalJoint)
				}

				out = append(out, PlatformCombination{
					CMS:         cms,
					Header1:     h1,
					Header2:     h2,
					Frequency:   groupFreq,
					JointCount:  joint,
					Exclusivity: exclusivity,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CMS != out[j].CMS {
			return out[i].CMS < out[j].CMS
		}
		if out[i].Header1 != out[j].Header1 {
			return out[i].Header1 < out[j].Header1
		}
		return out[i].Header2 < out[j].Header2
	})
	return out
}

func hasHeader(site *dataset.SiteObservation, h string) bool {
	_, ok := site.Headers[h]
	return ok
}

// exclusivityGroups implements spec.md §4.4 step 7 using a connected-
// components pass over a graph of mutually-exclusive header pairs.
func (a *Analyzer) exclusivityGroups(pairs map[string]*PairRecord) []ExclusivityGroup {
	g := graph.New(graph.StringHash, graph.Undirected())
	exclusivityOf := make(map[string]float64)

	for _, p := range pairs {
		if p.JointFrequency >= 0.05 || p.ConditionalProb >= 0.1 {
			continue
		}
		_ = g.AddVertex(p.Header1)
		_ = g.AddVertex(p.Header2)
		_ = g.AddEdge(p.Header1, p.Header2)
		exclusivity := 1 - p.ConditionalProb
		exclusivityOf[edgeKey(p.Header1, p.Header2)] = exclusivity
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil
	}
	components := connectedComponents(adjacency)

	var groups []ExclusivityGroup
	for _, comp := range components {
		if len(comp) < 3 {
			continue
		}
		sort.Strings(comp)
		var sum float64
		var count int
		for i := 0; i < len(comp); i++ {
			for j := i + 1; j < len(comp); j++ {
				if ex, ok := exclusivityOf[edgeKey(comp[i], comp[j])]; ok {
					sum += ex
					count++
				}
			}
		}
		avg := 0.0
		if count > 0 {
			avg = sum / float64(count)
		}
		groups = append(groups, ExclusivityGroup{Headers: comp, AverageExclusivity: avg})
	}

	sort.Slice(groups, func(i, j int) bool {
		return strings.Join(groups[i].Headers, ",") < strings.Join(groups[j].Headers, ",")
	})
	return groups
}

// connectedComponents runs a plain BFS over an undirected adjacency map
// (as produced by graph.Graph.AdjacencyMap) to find connected components.
func connectedComponents(adjacency map[string]map[string]graph.Edge[string]) [][]string {
	visited := make(map[string]bool, len(adjacency))
	var components [][]string

	vertices := make([]string, 0, len(adjacency))
	for v := range adjacency {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)

	for _, start := range vertices {
		if visited[start] {
			continue
		}
		queue := []string{start}
		visited[start] = true
		var component []string
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			component = append(component, v)
			neighbors := make([]string, 0, len(adjacency[v]))
			for n := range adjacency[v] {
				neighbors = append(neighbors, n)
			}
			sort.Strings(neighbors)
			for _, n := range neighbors {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

func edgeKey(h1, h2 string) string {
	if h1 < h2 {
		return h1 + "|" + h2
	}
	return h2 + "|" + h1
}

// strongCorrelations implements spec.md §4.4 step 8.
func strongCorrelations(pairs map[string]*PairRecord) []StrongCorrelation {
	var candidates []StrongCorrelation
	for _, p := range pairs {
		if p.MutualInformation > 0.1 && p.ConditionalProb > 0.7 {
			candidates = append(candidates, StrongCorrelation{
				Header1:           p.Header1,
				Header2:           p.Header2,
				MutualInformation: p.MutualInformation,
				ConditionalProb:   p.ConditionalProb,
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].MutualInformation != candidates[j].MutualInformation {
			return candidates[i].MutualInformation > candidates[j].MutualInformation
		}
		return candidates[i].Header1 < candidates[j].Header1
	})
	if len(candidates) > 10 {
		candidates = candidates[:10]
	}
	return candidates
}
