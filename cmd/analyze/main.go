// Command analyze runs the full site-pattern-analyzer pipeline against
// a JSON-encoded dataset and prints a summary report.
//
// Environment variables:
//   - DEBUG: Set to "true" to enable debug logging
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jabbermarky/site-pattern-analyzer/internal/config"
	"github.com/jabbermarky/site-pattern-analyzer/internal/dataset"
	"github.com/jabbermarky/site-pattern-analyzer/internal/orchestrate"
)

func main() {
	if os.Getenv("DEBUG") == "true" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Starting site-pattern-analyzer in debug mode...")
	}

	inputPath := flag.String("input", "", "path to a JSON-encoded dataset (see wireDataset)")
	configPath := flag.String("config", "", "optional path to a JSON config file")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("Usage: analyze -input dataset.json [-config config.json]")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Loaded configuration for run %q (environment=%s)", cfg.Run.Name, cfg.Run.Environment)

	ds, err := loadDataset(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	if err := ds.Validate(); err != nil {
		log.Fatalf("Dataset failed validation: %v", err)
	}
	log.Printf("Loaded dataset: %d sites", ds.TotalSites)

	driver := orchestrate.NewDriver()
	report, err := driver.Run(context.Background(), ds, orchestrate.Options{
		MinOccurrences:  cfg.Thresholds.MinOccurrences,
		IncludeExamples: true,
		MaxExamples:     3,
	})
	if err != nil {
		log.Fatalf("Analysis run failed: %v", err)
	}

	printSummary(report)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

// wireDataset is the JSON-friendly shape operators hand to this
// command. The in-memory dataset.Dataset uses set types
// (map[string]struct{}) that don't round-trip through JSON; this is
// the bridge between the two.
type wireDataset struct {
	Sites []wireSite `json:"sites"`
}

type wireSite struct {
	URL        string              `json:"url"`
	CMS        *string             `json:"cms,omitempty"`
	Confidence float64             `json:"confidence"`
	Headers    map[string][]string `json:"headers,omitempty"`
	MetaTags   map[string][]string `json:"meta_tags,omitempty"`
	Scripts    []string            `json:"scripts,omitempty"`
}

func loadDataset(path string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var wire wireDataset
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	sites := make([]*dataset.SiteObservation, 0, len(wire.Sites))
	for _, ws := range wire.Sites {
		sites = append(sites, &dataset.SiteObservation{
			URL:           ws.URL,
			NormalizedURL: ws.URL,
			CMS:           ws.CMS,
			Confidence:    ws.Confidence,
			Headers:       toValueSets(ws.Headers),
			MetaTags:      toValueSets(ws.MetaTags),
			Scripts:       toSet(ws.Scripts),
		})
	}

	return dataset.New(sites, dataset.Metadata{}), nil
}

func toValueSets(in map[string][]string) map[string]map[string]struct{} {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]struct{}, len(in))
	for key, values := range in {
		out[key] = toSet(values)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	if values == nil {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func printSummary(report *orchestrate.Report) {
	fmt.Printf("Headers observed:    %d patterns\n", len(report.Headers.Patterns))
	fmt.Printf("Meta tags observed:  %d patterns\n", len(report.MetaTags.Patterns))
	fmt.Printf("Scripts observed:    %d patterns\n", len(report.Scripts.Patterns))
	fmt.Printf("Vendor detections:   %d\n", len(report.Vendor.Detections))
	fmt.Printf("Vendor conflicts:    %d\n", len(report.Vendor.Conflicts))
	fmt.Printf("Co-occurring pairs:  %d\n", len(report.Cooccurrence.Pairs))
	fmt.Printf("Discovered patterns: %d\n", len(report.Discovery.Patterns))
	fmt.Printf("Validation grade:    %s (%.2f)\n", report.Validation.QualityGrade, report.Validation.QualityScore)
	fmt.Printf("CMS concentration:   HHI=%.3f risk=%s\n", report.Bias.Concentration.HHI, report.Bias.Concentration.ConcentrationRisk)
	fmt.Printf("Bias warnings:       %d\n", len(report.Bias.Warnings))
	fmt.Printf("Recommendations:     %d (low=%.2f medium=%.2f high=%.2f veryHigh=%.2f)\n",
		len(report.Recommendations),
		report.ConfidenceDistribution.Low,
		report.ConfidenceDistribution.Medium,
		report.ConfidenceDistribution.High,
		report.ConfidenceDistribution.VeryHigh,
	)
}
