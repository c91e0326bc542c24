package config

import (
	"os"
	"strconv"

	"pyrostat/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Database  DatabaseConfig
	Sampler   SamplerConfig
	Explorer  ExplorerConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data source settings
type DataConfig struct {
	// File is the weather/fire observation table (.xlsx or .csv).
	File string
}

// DatabaseConfig holds the optional run-ledger connection. An empty URL
// disables persistence entirely; fits then stay in-memory.
type DatabaseConfig struct {
	URL string
}

// SamplerConfig holds settings for the external inference engine
type SamplerConfig struct {
	// Binary is the path to the pre-built sampling engine executable.
	Binary     string
	Chains     int
	Iterations int
	Seed       int64
}

// ExplorerConfig holds the Gamma exceedance explorer settings
type ExplorerConfig struct {
	// Threshold is the published maximum mean ROS value (m/min) the
	// explorer measures tail mass against. Fixed for the process lifetime.
	Threshold float64
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			File: getEnvOrDefault("DATA_FILE", ""),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Sampler: SamplerConfig{
			Binary:     getEnvOrDefault("SAMPLER_BIN", ""),
			Chains:     getEnvIntOrDefault("SAMPLER_CHAINS", 4),
			Iterations: getEnvIntOrDefault("SAMPLER_ITERATIONS", 2000),
			Seed:       int64(getEnvIntOrDefault("SAMPLER_SEED", 1)),
		},
		Explorer: ExplorerConfig{
			Threshold: getEnvFloatOrDefault("ROS_THRESHOLD", 15.0),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Explorer.Threshold <= 0 {
		return errors.ConfigInvalid("ROS_THRESHOLD must be positive")
	}
	if config.Sampler.Chains <= 0 {
		return errors.ConfigInvalid("SAMPLER_CHAINS must be positive")
	}
	if config.Sampler.Iterations <= 0 {
		return errors.ConfigInvalid("SAMPLER_ITERATIONS must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
