// Package config provides configuration loading and management for ldctreader.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Loader parameters
	Loader struct {
		// Extension selects projection files by suffix
		Extension string `yaml:"extension"`

		// NumWorkers is the number of projections processed concurrently
		NumWorkers int `yaml:"numWorkers"`

		// Verbose enables per-projection progress logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"loader"`

	// Output parameters
	Output struct {
		// Dir is the directory exported arrays and images are written to
		Dir string `yaml:"dir"`

		// SaveArrays writes proj_data, n_spec and t_spec as raw float32 files
		SaveArrays bool `yaml:"saveArrays"`

		// SaveImages writes a JPEG quick-look of every projection
		SaveImages bool `yaml:"saveImages"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Loader.Extension = ".dcm"
	cfg.Loader.NumWorkers = 1
	cfg.Loader.Verbose = false

	cfg.Output.Dir = "ldct_output"
	cfg.Output.SaveArrays = false
	cfg.Output.SaveImages = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if cfg.Loader.NumWorkers < 1 {
		return nil, fmt.Errorf("loader.numWorkers must be at least 1, got %d", cfg.Loader.NumWorkers)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
