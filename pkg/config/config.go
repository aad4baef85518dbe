package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration
type Config struct {
	// Input settings
	InputPath string

	// Query settings
	QueryTimeout   time.Duration
	LookbackPeriod time.Duration
	Concurrency    int
	RateLimit      int

	// Analysis settings
	ExcludeTables         []string
	FrequentQueriesPerDay float64
	RareQueriesPerDay     float64
	AnalyticsPricePerGB   float64

	// Output settings
	OutputDir string
	Format    string

	// History settings
	HistoryPath string

	// Baseline settings
	BaselinePath   string
	UpdateBaseline bool

	// Server settings
	ServerPort int

	// Operational flags
	Verbose bool
	DryRun  bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		QueryTimeout:          5 * time.Minute,
		LookbackPeriod:        30 * 24 * time.Hour, // 30 days
		Concurrency:           5,
		RateLimit:             10,
		ExcludeTables:         []string{},
		FrequentQueriesPerDay: 5.0,
		RareQueriesPerDay:     1.0,
		AnalyticsPricePerGB:   2.76,
		OutputDir:             "./report",
		Format:                "all",
		HistoryPath:           "",
		BaselinePath:          "",
		UpdateBaseline:        false,
		ServerPort:            8080,
		Verbose:               false,
		DryRun:                false,
	}
}

// LookbackDays returns the lookback window in whole days, at least one.
func (c *Config) LookbackDays() int {
	days := int(c.LookbackPeriod / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

// ParseDuration parses a duration string, accepting a whole-day suffix
// on top of the standard Go units. Examples: "30d", "168h", "5m", "30s".
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return time.Duration(n) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
