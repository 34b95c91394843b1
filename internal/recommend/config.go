// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// MinOverlap is the minimum number of common raters for a pair to have
	// a defined similarity. At least 2; Pearson needs two points.
	// Default: 5.
	MinOverlap int `json:"min_overlap"`

	// Workers is the number of parallel correlation shards.
	// Zero uses runtime.NumCPU().
	Workers int `json:"workers"`

	// MaxTitles caps the correlated titles to the most rated ones, bounding
	// the quadratic cost on large catalogs. Zero means no cap.
	MaxTitles int `json:"max_titles"`

	// Scale is the accepted rating range.
	Scale Scale `json:"scale"`

	// DuplicateTitles selects how movies sharing a title are labeled.
	// Default: disambiguate.
	DuplicateTitles DuplicatePolicy `json:"duplicate_titles"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`

	// Seed is the default seed for title sampling.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the number of rows returned when a request sets no limit.
	// Default: 10.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum number of rows a request may ask for.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled turns on result caching.
	Enabled bool `json:"enabled"`

	// TTL is how long a cached result stays valid.
	// Default: 10m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached results.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MinOverlap:      DefaultMinOverlap,
		Workers:         0,
		MaxTitles:       0,
		Scale:           DefaultScale(),
		DuplicateTitles: DuplicateDisambiguate,
		Limits: LimitsConfig{
			DefaultK: 10,
			MaxK:     100,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        10 * time.Minute,
			MaxEntries: 10000,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MinOverlap < 2 {
		return fmt.Errorf("min_overlap must be at least 2, got %d", c.MinOverlap)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.MaxTitles < 0 {
		return fmt.Errorf("max_titles must be non-negative, got %d", c.MaxTitles)
	}
	if c.Scale.Min > c.Scale.Max {
		return fmt.Errorf("scale min %.2f exceeds max %.2f", c.Scale.Min, c.Scale.Max)
	}
	if !c.DuplicateTitles.Valid() {
		return fmt.Errorf("duplicate_titles must be %q or %q, got %q",
			DuplicateDisambiguate, DuplicateMerge, c.DuplicateTitles)
	}
	if c.Limits.DefaultK <= 0 {
		return fmt.Errorf("limits.default_k must be positive")
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k (%d) must be >= default_k (%d)", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when cache is enabled")
		}
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive when cache is enabled")
		}
	}
	return nil
}

// CorrelateOptions returns the similarity options implied by the config.
func (c *Config) CorrelateOptions() CorrelateOptions {
	return CorrelateOptions{
		MinOverlap: c.MinOverlap,
		Workers:    c.Workers,
		MaxTitles:  c.MaxTitles,
	}
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
