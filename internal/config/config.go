// Package config loads dadag configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for dadag.
type Config struct {
	// StoreDir is where saved graph baselines live.
	StoreDir string `yaml:"store_dir" env:"DADAG_STORE_DIR"`

	// DefaultFormat is the output format when --format is not given
	// (json, dot, or graphml).
	DefaultFormat string `yaml:"default_format" env:"DADAG_DEFAULT_FORMAT"`

	// Policies are the validation policies run by default.
	Policies []string `yaml:"policies"`

	// Extensions are the file extensions treated as interview files.
	Extensions []string `yaml:"extensions"`

	// Recursive controls whether directory inputs are walked recursively.
	Recursive bool `yaml:"recursive" env:"DADAG_RECURSIVE"`

	// FollowIncludes controls whether include: directives are resolved.
	FollowIncludes bool `yaml:"follow_includes" env:"DADAG_FOLLOW_INCLUDES"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" env:"DADAG_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		StoreDir:       defaultStoreDir(),
		DefaultFormat:  "json",
		Policies:       nil, // nil means every policy
		Extensions:     []string{".yml", ".yaml"},
		Recursive:      true,
		FollowIncludes: true,
		Verbose:        false,
	}
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dadag/store"
	}
	return filepath.Join(home, ".dadag", "store")
}

func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dadag/config.yaml"
	}
	return filepath.Join(home, ".dadag", "config.yaml")
}

func projectConfigFilePath() string {
	return ".dadag/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.dadag/config.yaml)
// 3. Global config (~/.dadag/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{globalConfigFilePath(), projectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path, creating
// parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.DefaultFormat {
	case "json", "dot", "graphml":
	default:
		return fmt.Errorf("invalid default_format %q: must be json, dot, or graphml", c.DefaultFormat)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DADAG_STORE_DIR"); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv("DADAG_DEFAULT_FORMAT"); v != "" {
		cfg.DefaultFormat = v
	}
	if v := os.Getenv("DADAG_RECURSIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Recursive = b
		}
	}
	if v := os.Getenv("DADAG_FOLLOW_INCLUDES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FollowIncludes = b
		}
	}
	if v := os.Getenv("DADAG_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}
}
