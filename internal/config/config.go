// Package config loads and saves fortflow configuration: which report
// sections to emit, logging behavior and the analysis cache location.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-project configuration file.
const ConfigFileName = ".fortflow.yaml"

// Config holds all configuration for fortflow
type Config struct {
	// Sections lists the report sections to emit; empty means all.
	Sections []string `yaml:"sections" env:"FFLOW_SECTIONS"`

	// CachePath is where the analysis cache is persisted.
	CachePath string `yaml:"cache_path" env:"FFLOW_CACHE_PATH"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" env:"FFLOW_VERBOSE"`

	// JSONLogs switches log output to JSON entries.
	JSONLogs bool `yaml:"json_logs" env:"FFLOW_JSON_LOGS"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sections:  nil,
		CachePath: filepath.Join(".fortflow", "cache.msgpack"),
		Verbose:   false,
		JSONLogs:  false,
	}
}

// Load reads configuration from the given path, falling back to defaults
// when the file does not exist, then applies FFLOW_* environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault loads ConfigFileName from the current directory.
func LoadDefault() (*Config, error) {
	return Load(ConfigFileName)
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnv overrides fields from FFLOW_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("FFLOW_SECTIONS"); v != "" {
		c.Sections = splitNonEmpty(v)
	}
	if v := os.Getenv("FFLOW_CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("FFLOW_VERBOSE"); v != "" {
		c.Verbose = parseBool(v, c.Verbose)
	}
	if v := os.Getenv("FFLOW_JSON_LOGS"); v != "" {
		c.JSONLogs = parseBool(v, c.JSONLogs)
	}
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
