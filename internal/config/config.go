package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tealscan/tealscan/pkg/detectors"
)

// OutputFormat selects how analysis results are rendered
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDot  OutputFormat = "dot"
)

// Config holds all configuration for tealscan
type Config struct {
	// Detectors lists the detector names to run; empty means all
	Detectors []string `yaml:"detectors" env:"TEALSCAN_DETECTORS"`

	// Exclude lists detector names to skip
	Exclude []string `yaml:"exclude" env:"TEALSCAN_EXCLUDE"`

	// Version overrides the #pragma version of analyzed programs (0 = use pragma)
	Version int `yaml:"version" env:"TEALSCAN_VERSION"`

	// Output format: text, json, or dot
	Format OutputFormat `yaml:"format" env:"TEALSCAN_FORMAT"`

	// CacheEnabled toggles the on-disk result cache
	CacheEnabled bool `yaml:"cache_enabled" env:"TEALSCAN_CACHE_ENABLED"`

	// CacheDir is where cached results are stored
	CacheDir string `yaml:"cache_dir" env:"TEALSCAN_CACHE_DIR"`

	// Logging
	Verbose bool `yaml:"verbose" env:"TEALSCAN_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Detectors:    nil,
		Exclude:      nil,
		Version:      0,
		Format:       FormatText,
		CacheEnabled: true,
		CacheDir:     defaultCacheDir(),
		Verbose:      false,
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tealscan/cache"
	}
	return filepath.Join(home, ".tealscan", "cache")
}

// globalConfigFilePath returns the global config file path (~/.tealscan/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tealscan/config.yaml"
	}
	return filepath.Join(home, ".tealscan", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.tealscan.yaml)
func projectConfigFilePath() string {
	return ".tealscan.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.tealscan.yaml)
// 3. Global config (~/.tealscan/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TEALSCAN_DETECTORS"); v != "" {
		cfg.Detectors = splitList(v)
	}
	if v := os.Getenv("TEALSCAN_EXCLUDE"); v != "" {
		cfg.Exclude = splitList(v)
	}
	if v := os.Getenv("TEALSCAN_VERSION"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.Version = i
		}
	}
	if v := os.Getenv("TEALSCAN_FORMAT"); v != "" {
		cfg.Format = OutputFormat(v)
	}
	if v := os.Getenv("TEALSCAN_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("TEALSCAN_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("TEALSCAN_VERBOSE"); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, FormatDot:
		// Valid
	default:
		return fmt.Errorf("invalid format: %s (must be 'text', 'json', or 'dot')", c.Format)
	}

	if c.Version < 0 {
		return fmt.Errorf("version must be non-negative")
	}

	for _, name := range c.Detectors {
		if detectors.Lookup(name) == nil {
			return fmt.Errorf("unknown detector: %s", name)
		}
	}
	for _, name := range c.Exclude {
		if detectors.Lookup(name) == nil {
			return fmt.Errorf("unknown detector in exclude list: %s", name)
		}
	}

	if c.CacheEnabled && c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required when cache_enabled is true")
	}

	return nil
}

// SelectedDetectors resolves the configured detector set: the explicit
// Detectors list (or all registered when empty) minus the Exclude list.
func (c *Config) SelectedDetectors() []detectors.Detector {
	var selected []detectors.Detector
	if len(c.Detectors) == 0 {
		selected = detectors.All()
	} else {
		for _, name := range c.Detectors {
			if d := detectors.Lookup(name); d != nil {
				selected = append(selected, d)
			}
		}
	}

	if len(c.Exclude) == 0 {
		return selected
	}
	excluded := make(map[string]bool, len(c.Exclude))
	for _, name := range c.Exclude {
		excluded[name] = true
	}
	var out []detectors.Detector
	for _, d := range selected {
		if !excluded[d.Name()] {
			out = append(out, d)
		}
	}
	return out
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}
