package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Run.Name != "site-pattern-analyzer" {
		t.Errorf("Expected run name 'site-pattern-analyzer', got '%s'", cfg.Run.Name)
	}
	if cfg.Run.Environment != "development" {
		t.Errorf("Expected environment 'development', got '%s'", cfg.Run.Environment)
	}

	if cfg.Thresholds.MinOccurrences != 3 {
		t.Errorf("Expected MinOccurrences 3, got %d", cfg.Thresholds.MinOccurrences)
	}
	if cfg.Thresholds.SignificanceLevel != 0.05 {
		t.Errorf("Expected SignificanceLevel 0.05, got %v", cfg.Thresholds.SignificanceLevel)
	}

	if !cfg.Features.VendorDetection {
		t.Error("Expected VendorDetection to be enabled")
	}
	if !cfg.Features.BiasAnalysis {
		t.Error("Expected BiasAnalysis to be enabled")
	}

	if cfg.Performance.MaxConcurrentAnalyzers != 4 {
		t.Errorf("Expected MaxConcurrentAnalyzers 4, got %d", cfg.Performance.MaxConcurrentAnalyzers)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected log level 'info', got '%s'", cfg.Logging.Level)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.Run.Name != "site-pattern-analyzer" {
		t.Errorf("Expected default run name, got '%s'", cfg.Run.Name)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)

	_ = os.Setenv("SPA_RUN_NAME", "test-run")
	_ = os.Setenv("SPA_RUN_ENVIRONMENT", "production")
	_ = os.Setenv("SPA_THRESHOLDS_MIN_OCCURRENCES", "10")
	_ = os.Setenv("SPA_FEATURES_VENDOR_DETECTION", "false")
	_ = os.Setenv("SPA_FEATURES_BIAS_ANALYSIS", "true")
	_ = os.Setenv("SPA_PERFORMANCE_MAX_CONCURRENT_ANALYZERS", "8")
	_ = os.Setenv("SPA_LOGGING_LEVEL", "debug")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Run.Name != "test-run" {
		t.Errorf("Expected run name 'test-run', got '%s'", cfg.Run.Name)
	}
	if cfg.Run.Environment != "production" {
		t.Errorf("Expected environment 'production', got '%s'", cfg.Run.Environment)
	}
	if cfg.Thresholds.MinOccurrences != 10 {
		t.Errorf("Expected MinOccurrences 10, got %d", cfg.Thresholds.MinOccurrences)
	}
	if cfg.Features.VendorDetection {
		t.Error("Expected VendorDetection to be disabled")
	}
	if !cfg.Features.BiasAnalysis {
		t.Error("Expected BiasAnalysis to be enabled")
	}
	if cfg.Performance.MaxConcurrentAnalyzers != 8 {
		t.Errorf("Expected MaxConcurrentAnalyzers 8, got %d", cfg.Performance.MaxConcurrentAnalyzers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"run": {
			"name": "file-run",
			"environment": "staging"
		},
		"thresholds": {
			"min_occurrences": 5,
			"significance_level": 0.01,
			"min_sample_size": 50
		},
		"features": {
			"vendor_detection": true,
			"cooccurrence": false,
			"bias_analysis": false
		},
		"performance": {
			"max_concurrent_analyzers": 2
		},
		"logging": {
			"level": "warn",
			"format": "json",
			"enable_timestamps": false
		}
	}`

	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Run.Name != "file-run" {
		t.Errorf("Expected run name 'file-run', got '%s'", cfg.Run.Name)
	}
	if cfg.Run.Environment != "staging" {
		t.Errorf("Expected environment 'staging', got '%s'", cfg.Run.Environment)
	}
	if cfg.Thresholds.MinOccurrences != 5 {
		t.Errorf("Expected MinOccurrences 5, got %d", cfg.Thresholds.MinOccurrences)
	}
	if cfg.Features.Cooccurrence {
		t.Error("Expected Cooccurrence to be disabled")
	}
	if cfg.Features.BiasAnalysis {
		t.Error("Expected BiasAnalysis to be disabled")
	}
	if cfg.Performance.MaxConcurrentAnalyzers != 2 {
		t.Errorf("Expected MaxConcurrentAnalyzers 2, got %d", cfg.Performance.MaxConcurrentAnalyzers)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected log level 'warn', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected log format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"run": {
			"name": "file-run",
			"environment": "staging"
		},
		"features": {
			"vendor_detection": false
		}
	}`

	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	clearEnv(t)
	_ = os.Setenv("SPA_RUN_NAME", "env-run")
	_ = os.Setenv("SPA_FEATURES_VENDOR_DETECTION", "true")
	defer clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Run.Name != "env-run" {
		t.Errorf("Expected run name 'env-run' (env override), got '%s'", cfg.Run.Name)
	}
	if !cfg.Features.VendorDetection {
		t.Error("Expected VendorDetection to be enabled (env override)")
	}
	if cfg.Run.Environment != "staging" {
		t.Errorf("Expected environment 'staging' (from file), got '%s'", cfg.Run.Environment)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid default config",
			cfg:     Default(),
			wantErr: false,
		},
		{
			name: "empty run name",
			cfg: &Config{
				Run:         RunConfig{Name: "", Environment: "development"},
				Thresholds:  ThresholdConfig{MinOccurrences: 1, SignificanceLevel: 0.05, MinSampleSize: 1},
				Performance: PerformanceConfig{MaxConcurrentAnalyzers: 1},
				Logging:     LoggingConfig{Level: "info", Format: "text"},
			},
			wantErr: true,
			errMsg:  "run.name cannot be empty",
		},
		{
			name: "invalid environment",
			cfg: &Config{
				Run:         RunConfig{Name: "test", Environment: "invalid"},
				Thresholds:  ThresholdConfig{MinOccurrences: 1, SignificanceLevel: 0.05, MinSampleSize: 1},
				Performance: PerformanceConfig{MaxConcurrentAnalyzers: 1},
				Logging:     LoggingConfig{Level: "info", Format: "text"},
			},
			wantErr: true,
			errMsg:  "run.environment must be one of",
		},
		{
			name: "invalid significance level",
			cfg: &Config{
				Run:         RunConfig{Name: "test", Environment: "development"},
				Thresholds:  ThresholdConfig{MinOccurrences: 1, SignificanceLevel: 1.5, MinSampleSize: 1},
				Performance: PerformanceConfig{MaxConcurrentAnalyzers: 1},
				Logging:     LoggingConfig{Level: "info", Format: "text"},
			},
			wantErr: true,
			errMsg:  "thresholds.significance_level must be in",
		},
		{
			name: "invalid max concurrent analyzers",
			cfg: &Config{
				Run:         RunConfig{Name: "test", Environment: "development"},
				Thresholds:  ThresholdConfig{MinOccurrences: 1, SignificanceLevel: 0.05, MinSampleSize: 1},
				Performance: PerformanceConfig{MaxConcurrentAnalyzers: 0},
				Logging:     LoggingConfig{Level: "info", Format: "text"},
			},
			wantErr: true,
			errMsg:  "performance.max_concurrent_analyzers must be >= 1",
		},
		{
			name: "invalid log level",
			cfg: &Config{
				Run:         RunConfig{Name: "test", Environment: "development"},
				Thresholds:  ThresholdConfig{MinOccurrences: 1, SignificanceLevel: 0.05, MinSampleSize: 1},
				Performance: PerformanceConfig{MaxConcurrentAnalyzers: 1},
				Logging:     LoggingConfig{Level: "verbose", Format: "text"},
			},
			wantErr: true,
			errMsg:  "logging.level must be one of",
		},
		{
			name: "invalid log format",
			cfg: &Config{
				Run:         RunConfig{Name: "test", Environment: "development"},
				Thresholds:  ThresholdConfig{MinOccurrences: 1, SignificanceLevel: 0.05, MinSampleSize: 1},
				Performance: PerformanceConfig{MaxConcurrentAnalyzers: 1},
				Logging:     LoggingConfig{Level: "info", Format: "xml"},
			},
			wantErr: true,
			errMsg:  "logging.format must be 'text' or 'json'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, should contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestIsFeatureEnabled(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name     string
		feature  string
		expected bool
	}{
		{"vendor", "vendor", true},
		{"vendor alias", "vendor_detection", true},
		{"bias", "bias", true},
		{"bias alias", "bias_analysis", true},
		{"unknown feature", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := cfg.IsFeatureEnabled(tt.feature)
			if enabled != tt.expected {
				t.Errorf("IsFeatureEnabled(%q) = %v, want %v", tt.feature, enabled, tt.expected)
			}
		})
	}

	cfg.Features.VendorDetection = false
	if cfg.IsFeatureEnabled("vendor") {
		t.Error("Expected vendor detection to be disabled")
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"1", true},
		{"yes", true},
		{"YES", true},
		{"on", true},
		{"enabled", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
		{"disabled", false},
		{"", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseBool(tt.input)
			if result != tt.expected {
				t.Errorf("parseBool(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToJSON(t *testing.T) {
	cfg := Default()
	data, err := cfg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("ToJSON() returned empty data")
	}

	jsonStr := string(data)
	if !contains(jsonStr, "run") {
		t.Error("JSON should contain 'run' field")
	}
	if !contains(jsonStr, "features") {
		t.Error("JSON should contain 'features' field")
	}
}

func TestSaveToFile(t *testing.T) {
	cfg := Default()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved-config.json")

	err := cfg.SaveToFile(configPath)
	if err != nil {
		t.Fatalf("SaveToFile() failed: %v", err)
	}

	loadedCfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() after save failed: %v", err)
	}

	if loadedCfg.Run.Name != cfg.Run.Name {
		t.Errorf("Loaded config doesn't match saved config: %s != %s", loadedCfg.Run.Name, cfg.Run.Name)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SPA_RUN_NAME",
		"SPA_RUN_ENVIRONMENT",
		"SPA_THRESHOLDS_MIN_OCCURRENCES",
		"SPA_THRESHOLDS_SIGNIFICANCE_LEVEL",
		"SPA_THRESHOLDS_MIN_SAMPLE_SIZE",
		"SPA_FEATURES_VENDOR_DETECTION",
		"SPA_FEATURES_COOCCURRENCE",
		"SPA_FEATURES_PATTERN_DISCOVERY",
		"SPA_FEATURES_VALIDATION",
		"SPA_FEATURES_BIAS_ANALYSIS",
		"SPA_FEATURES_RECOMMENDATIONS",
		"SPA_PERFORMANCE_MAX_CONCURRENT_ANALYZERS",
		"SPA_LOGGING_LEVEL",
		"SPA_LOGGING_FORMAT",
		"SPA_LOGGING_ENABLE_TIMESTAMPS",
	}

	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func contains(s, substr string) bool {
	if len(s) == 0 || len(substr) == 0 {
		return false
	}
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
