package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".logspectre.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".logspectre.yml"
)

// FileConfig represents values loaded from a .logspectre.yaml file.
type FileConfig struct {
	Input                 string   `yaml:"input"`
	ExcludeTables         []string `yaml:"exclude_tables"`
	Format                string   `yaml:"format"`
	OutputDir             string   `yaml:"output_dir"`
	Lookback              string   `yaml:"lookback"`
	Timeout               string   `yaml:"timeout"`
	QueryTimeout          string   `yaml:"query_timeout"`
	FrequentQueriesPerDay *float64 `yaml:"frequent_queries_per_day"`
	RareQueriesPerDay     *float64 `yaml:"rare_queries_per_day"`
	AnalyticsPricePerGB   *float64 `yaml:"analytics_price_per_gb"`
	History               string   `yaml:"history"`
	Baseline              string   `yaml:"baseline"`
}

// QueryTimeoutValue returns timeout from timeout/query_timeout fields.
func (fc *FileConfig) QueryTimeoutValue() string {
	if fc == nil {
		return ""
	}
	if timeout := strings.TrimSpace(fc.Timeout); timeout != "" {
		return timeout
	}
	return strings.TrimSpace(fc.QueryTimeout)
}

// Normalize trims and removes empty items from list fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.ExcludeTables = normalizeList(fc.ExcludeTables)
	fc.Input = strings.TrimSpace(fc.Input)
	fc.Format = strings.TrimSpace(fc.Format)
	fc.OutputDir = strings.TrimSpace(fc.OutputDir)
	fc.Lookback = strings.TrimSpace(fc.Lookback)
	fc.Timeout = strings.TrimSpace(fc.Timeout)
	fc.QueryTimeout = strings.TrimSpace(fc.QueryTimeout)
	fc.History = strings.TrimSpace(fc.History)
	fc.Baseline = strings.TrimSpace(fc.Baseline)
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile() (*FileConfig, string, error) {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	if configDir, err := os.UserConfigDir(); err == nil && strings.TrimSpace(configDir) != "" {
		candidates = append(candidates, filepath.Join(configDir, "logspectre", "config.yaml"))
	}

	return LoadFirstExistingFile(candidates)
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.Normalize()
	return cfg, nil
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
