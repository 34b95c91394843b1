// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

// Package config loads Cinecorr configuration.
//
// Sources are layered with koanf, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file: CONFIG_PATH, else the first of DefaultConfigPaths
//  3. Environment variables, optionally seeded from a .env file
//
// Only the environment variables listed in envMappings are read, so
// unrelated variables never leak into the configuration.
//
// Example config.yaml:
//
//	data:
//	  ratings_path: /data/ml-latest-small/ratings.csv
//	  movies_path: /data/ml-latest-small/movies.csv
//	  reader: duckdb
//	recommend:
//	  min_overlap: 10
//	  max_titles: 5000
//	server:
//	  port: 8080
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/recommend"
	"github.com/tomtom215/cinecorr/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig locates the rating data.
type DataConfig struct {
	RatingsPath string `koanf:"ratings_path" validate:"required"`
	MoviesPath  string `koanf:"movies_path" validate:"required"`

	// Reader is csv or duckdb.
	Reader string `koanf:"reader" validate:"oneof=csv duckdb"`

	// RefreshInterval is how often the source files are checked for
	// changes. Zero disables periodic checks.
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"min=0"`

	// BuildTimeout bounds one snapshot build.
	BuildTimeout time.Duration `koanf:"build_timeout" validate:"gt=0"`

	// BreakerFailures consecutive failed loads stop `serve` from reading
	// the files for BreakerCooldown. Zero disables the breaker.
	BreakerFailures int           `koanf:"breaker_failures" validate:"min=0"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown" validate:"min=0"`
}

// RecommendConfig mirrors recommend.Config with koanf tags.
type RecommendConfig struct {
	MinOverlap      int           `koanf:"min_overlap" validate:"min=2"`
	Workers         int           `koanf:"workers" validate:"min=0"`
	MaxTitles       int           `koanf:"max_titles" validate:"min=0"`
	ScaleMin        float64       `koanf:"scale_min"`
	ScaleMax        float64       `koanf:"scale_max"`
	DuplicateTitles string        `koanf:"duplicate_titles" validate:"oneof=disambiguate merge"`
	DefaultLimit    int           `koanf:"default_limit" validate:"min=1"`
	MaxLimit        int           `koanf:"max_limit" validate:"min=1,max=10000"`
	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries" validate:"min=0"`
	Seed            int64         `koanf:"seed"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// APIConfig configures HTTP middleware.
type APIConfig struct {
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow and client IP. Zero disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults. Data paths have no default
// and must come from a file or the environment.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Data: DataConfig{
			Reader:          "csv",
			RefreshInterval: 5 * time.Minute,
			BuildTimeout:    30 * time.Minute,
			BreakerFailures: 3,
			BreakerCooldown: 5 * time.Minute,
		},
		Recommend: RecommendConfig{
			MinOverlap:      engine.MinOverlap,
			Workers:         engine.Workers,
			MaxTitles:       engine.MaxTitles,
			ScaleMin:        engine.Scale.Min,
			ScaleMax:        engine.Scale.Max,
			DuplicateTitles: string(engine.DuplicateTitles),
			DefaultLimit:    engine.Limits.DefaultK,
			MaxLimit:        engine.Limits.MaxK,
			CacheEnabled:    engine.Cache.Enabled,
			CacheTTL:        engine.Cache.TTL,
			CacheMaxEntries: engine.Cache.MaxEntries,
			Seed:            engine.Seed,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks struct rules and the cross-field constraints that tags
// cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if c.Recommend.ScaleMin >= c.Recommend.ScaleMax {
		return fmt.Errorf("recommend.scale_min (%g) must be below scale_max (%g)", c.Recommend.ScaleMin, c.Recommend.ScaleMax)
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("recommend.max_limit (%d) must be >= default_limit (%d)", c.Recommend.MaxLimit, c.Recommend.DefaultLimit)
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// EngineConfig converts the recommend section for recommend.NewEngine.
func (c *Config) EngineConfig() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		MinOverlap:      r.MinOverlap,
		Workers:         r.Workers,
		MaxTitles:       r.MaxTitles,
		Scale:           recommend.Scale{Min: r.ScaleMin, Max: r.ScaleMax},
		DuplicateTitles: recommend.DuplicatePolicy(r.DuplicateTitles),
		Limits: recommend.LimitsConfig{
			DefaultK: r.DefaultLimit,
			MaxK:     r.MaxLimit,
		},
		Cache: recommend.CacheConfig{
			Enabled:    r.CacheEnabled,
			TTL:        r.CacheTTL,
			MaxEntries: r.CacheMaxEntries,
		},
		Seed: r.Seed,
	}
}

// LoggingConfig converts the logging section for logging.Init.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Caller: c.Logging.Caller,
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
