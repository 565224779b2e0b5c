// Package config provides configuration management for the site pattern
// analyzer.
//
// Configuration can be loaded from multiple sources (in order of precedence):
// 1. Environment variables (highest priority)
// 2. Configuration file (JSON)
// 3. Default values (lowest priority)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config represents the complete analyzer configuration.
type Config struct {
	// Run settings
	Run RunConfig `json:"run"`

	// Thresholds used across the analyzer pipeline
	Thresholds ThresholdConfig `json:"thresholds"`

	// Feature flags
	Features FeatureFlags `json:"features"`

	// Performance settings
	Performance PerformanceConfig `json:"performance"`

	// Logging settings
	Logging LoggingConfig `json:"logging"`
}

// RunConfig contains run-level configuration.
type RunConfig struct {
	// Name identifies this analysis run (for logging/identification)
	Name string `json:"name"`

	// Environment (development, staging, production)
	Environment string `json:"environment"`
}

// ThresholdConfig contains the statistical thresholds shared by the
// frequency, validation, and bias analyzers.
type ThresholdConfig struct {
	// MinOccurrences is the minimum site count a pattern must reach to
	// be reported by any analyzer.
	MinOccurrences int `json:"min_occurrences"`

	// SignificanceLevel is a significance alpha. It is loaded and
	// validated to lie in (0,1); no analyzer reads it, and the
	// significance tests use their own fixed levels.
	SignificanceLevel float64 `json:"significance_level"`

	// MinSampleSize is a minimum per-CMS bucket size. It is loaded and
	// validated to be >= 1; the Bias analyzer does not read it.
	MinSampleSize int `json:"min_sample_size"`
}

// FeatureFlags holds one on/off flag per pipeline stage. The flags are
// loaded and queryable through IsFeatureEnabled; the Driver does not
// read them and always runs every stage.
type FeatureFlags struct {
	VendorDetection  bool `json:"vendor_detection"`
	Cooccurrence     bool `json:"cooccurrence"`
	PatternDiscovery bool `json:"pattern_discovery"`
	Validation       bool `json:"validation"`
	BiasAnalysis     bool `json:"bias_analysis"`
	Recommendations  bool `json:"recommendations"`
}

// PerformanceConfig contains performance tuning options.
type PerformanceConfig struct {
	// MaxConcurrentAnalyzers is a parallelism limit. It is loaded and
	// validated; the Driver does not read it and always runs the four
	// frequency analyzers concurrently.
	MaxConcurrentAnalyzers int `json:"max_concurrent_analyzers"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level sets the logging level (debug, info, warn, error)
	Level string `json:"level"`

	// Format sets the log format (text, json)
	Format string `json:"format"`

	// EnableTimestamps adds timestamps to log entries
	EnableTimestamps bool `json:"enable_timestamps"`
}

// Default returns the default configuration with all pipeline stages
// enabled.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Name:        "site-pattern-analyzer",
			Environment: "development",
		},
		Thresholds: ThresholdConfig{
			MinOccurrences:    3,
			SignificanceLevel: 0.05,
			MinSampleSize:     30,
		},
		Features: FeatureFlags{
			VendorDetection:  true,
			Cooccurrence:     true,
			PatternDiscovery: true,
			Validation:       true,
			BiasAnalysis:     true,
			Recommendations:  true,
		},
		Performance: PerformanceConfig{
			MaxConcurrentAnalyzers: 4,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			EnableTimestamps: true,
		},
	}
}

// Load loads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := Default()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration from environment variables.
// Environment variables follow the pattern SPA_<SECTION>_<KEY>, e.g.
// SPA_THRESHOLDS_MIN_OCCURRENCES, SPA_FEATURES_BIAS_ANALYSIS.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("SPA_RUN_NAME"); v != "" {
		c.Run.Name = v
	}
	if v := os.Getenv("SPA_RUN_ENVIRONMENT"); v != "" {
		c.Run.Environment = v
	}

	if v := os.Getenv("SPA_THRESHOLDS_MIN_OCCURRENCES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Thresholds.MinOccurrences = n
		}
	}
	if v := os.Getenv("SPA_THRESHOLDS_SIGNIFICANCE_LEVEL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Thresholds.SignificanceLevel = f
		}
	}
	if v := os.Getenv("SPA_THRESHOLDS_MIN_SAMPLE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Thresholds.MinSampleSize = n
		}
	}

	if v := os.Getenv("SPA_FEATURES_VENDOR_DETECTION"); v != "" {
		c.Features.VendorDetection = parseBool(v)
	}
	if v := os.Getenv("SPA_FEATURES_COOCCURRENCE"); v != "" {
		c.Features.Cooccurrence = parseBool(v)
	}
	if v := os.Getenv("SPA_FEATURES_PATTERN_DISCOVERY"); v != "" {
		c.Features.PatternDiscovery = parseBool(v)
	}
	if v := os.Getenv("SPA_FEATURES_VALIDATION"); v != "" {
		c.Features.Validation = parseBool(v)
	}
	if v := os.Getenv("SPA_FEATURES_BIAS_ANALYSIS"); v != "" {
		c.Features.BiasAnalysis = parseBool(v)
	}
	if v := os.Getenv("SPA_FEATURES_RECOMMENDATIONS"); v != "" {
		c.Features.Recommendations = parseBool(v)
	}

	if v := os.Getenv("SPA_PERFORMANCE_MAX_CONCURRENT_ANALYZERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.MaxConcurrentAnalyzers = n
		}
	}

	if v := os.Getenv("SPA_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SPA_LOGGING_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("SPA_LOGGING_ENABLE_TIMESTAMPS"); v != "" {
		c.Logging.EnableTimestamps = parseBool(v)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Run.Name == "" {
		return fmt.Errorf("run.name cannot be empty")
	}
	if c.Run.Environment != "development" && c.Run.Environment != "staging" && c.Run.Environment != "production" {
		return fmt.Errorf("run.environment must be one of: development, staging, production")
	}

	if c.Thresholds.MinOccurrences < 1 {
		return fmt.Errorf("thresholds.min_occurrences must be >= 1")
	}
	if c.Thresholds.SignificanceLevel <= 0 || c.Thresholds.SignificanceLevel >= 1 {
		return fmt.Errorf("thresholds.significance_level must be in (0, 1)")
	}
	if c.Thresholds.MinSampleSize < 1 {
		return fmt.Errorf("thresholds.min_sample_size must be >= 1")
	}

	if c.Performance.MaxConcurrentAnalyzers < 1 {
		return fmt.Errorf("performance.max_concurrent_analyzers must be >= 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json'")
	}

	return nil
}

// IsFeatureEnabled checks if a specific pipeline stage is enabled.
func (c *Config) IsFeatureEnabled(feature string) bool {
	switch strings.ToLower(feature) {
	case "vendor", "vendor_detection":
		return c.Features.VendorDetection
	case "cooccurrence":
		return c.Features.Cooccurrence
	case "discovery", "pattern_discovery":
		return c.Features.PatternDiscovery
	case "validation":
		return c.Features.Validation
	case "bias", "bias_analysis":
		return c.Features.BiasAnalysis
	case "recommendations":
		return c.Features.Recommendations
	default:
		return false
	}
}

// parseBool parses a boolean from string (handles various formats).
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}

// ToJSON serializes the configuration to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
