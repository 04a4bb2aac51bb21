package config

import (
	"os"
	"strconv"

	"prmetrics/domain/metrics"
	"prmetrics/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Paths    PathConfig
	Analysis AnalysisConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// PathConfig holds file system paths for the pipeline stages
type PathConfig struct {
	DataDir    string // analysis-ready tables from preprocessing
	ResultsDir string // result tables for the visualization stage
}

// AnalysisConfig holds the statistical comparison settings
type AnalysisConfig struct {
	Alpha      float64
	Correction metrics.CorrectionMethod
	Workers    int
}

// DatabaseConfig holds optional result persistence settings
type DatabaseConfig struct {
	URL     string // empty disables persistence
	Enabled bool
}

// ServerConfig holds the results API server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Paths: PathConfig{
			DataDir:    getEnvOrDefault("DATA_DIR", "data/final"),
			ResultsDir: getEnvOrDefault("RESULTS_DIR", "results/tables"),
		},
		Analysis: AnalysisConfig{
			Alpha:      getEnvFloatOrDefault("ALPHA", 0.05),
			Correction: metrics.CorrectionMethod(getEnvOrDefault("CORRECTION", string(metrics.CorrectionBH))),
			Workers:    getEnvIntOrDefault("WORKERS", 3),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Paths.DataDir == "" {
		return errors.ConfigInvalid("DATA_DIR is required")
	}
	if cfg.Paths.ResultsDir == "" {
		return errors.ConfigInvalid("RESULTS_DIR is required")
	}
	if cfg.Analysis.Alpha <= 0 || cfg.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	switch cfg.Analysis.Correction {
	case metrics.CorrectionBH, metrics.CorrectionBonferroni:
	default:
		return errors.ConfigInvalid("CORRECTION must be \"bh\" or \"bonferroni\"")
	}
	if cfg.Analysis.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be >= 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
