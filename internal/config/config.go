// Package config loads CLI-facing OMTSF configuration: merge tuning
// defaults, logging verbosity, and default output format. It does not
// duplicate the core pipelines' own typed configs (merge.Config,
// validation's L2/L3 toggles) — those are set per-invocation from CLI
// flags. This package only supplies the defaults those flags fall back to.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds CLI-facing configuration settings.
type Config struct {
	// GroupSizeLimit is the default merge.Config.GroupSizeLimit.
	GroupSizeLimit int `yaml:"group_size_limit" mapstructure:"group_size_limit"`
	// SameAsThreshold is the default merge.Config.SameAsThreshold, as one
	// of "definite", "probable", "possible".
	SameAsThreshold string `yaml:"same_as_threshold" mapstructure:"same_as_threshold"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// OutputFormat is one of "json", "text".
	OutputFormat string `yaml:"output_format" mapstructure:"output_format"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		GroupSizeLimit:  50,
		SameAsThreshold: "definite",
		LogLevel:        "info",
		OutputFormat:    "json",
	}
}

// Load loads configuration from path, falling back to defaults for
// anything the file and environment leave unset. An empty path searches
// standard locations (".omtsf/config.yaml", "./config.yaml").
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("group_size_limit", cfg.GroupSizeLimit)
	v.SetDefault("same_as_threshold", cfg.SameAsThreshold)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("output_format", cfg.OutputFormat)

	v.SetEnvPrefix("OMTSF")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".omtsf")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".omtsf"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence, same-as-found
// wins (first successful load for a given variable is not overwritten by
// later files, matching godotenv.Load's own semantics).
func loadEnvFiles() {
	envFiles := []string{".env.local", ".env"}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		homeEnvFile := filepath.Join(homeDir, ".omtsf", ".env")
		if _, err := os.Stat(homeEnvFile); err == nil {
			_ = godotenv.Load(homeEnvFile)
		}
	}
}

// applyEnvOverrides applies well-known environment variables that take
// precedence over both the config file and viper's own OMTSF_ prefix
// binding (useful for CI invocations that set plain names).
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OMTSF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OMTSF_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = v
	}
	if v := os.Getenv("OMTSF_SAME_AS_THRESHOLD"); v != "" {
		cfg.SameAsThreshold = v
	}
}

// Save writes the configuration to path as YAML, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
