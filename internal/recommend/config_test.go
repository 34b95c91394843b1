// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.MinOverlap != 5 {
		t.Errorf("MinOverlap = %d, want 5", cfg.MinOverlap)
	}
	if cfg.Limits.DefaultK != 10 {
		t.Errorf("Limits.DefaultK = %d, want 10", cfg.Limits.DefaultK)
	}
	if cfg.Scale != DefaultScale() {
		t.Errorf("Scale = %+v, want %+v", cfg.Scale, DefaultScale())
	}
	if cfg.DuplicateTitles != DuplicateDisambiguate {
		t.Errorf("DuplicateTitles = %q, want disambiguate", cfg.DuplicateTitles)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"merge policy", func(c *Config) { c.DuplicateTitles = DuplicateMerge }, false},
		{"cache disabled ignores ttl", func(c *Config) { c.Cache.Enabled = false; c.Cache.TTL = 0 }, false},
		{"zero min overlap", func(c *Config) { c.MinOverlap = 0 }, true},
		{"single rater overlap", func(c *Config) { c.MinOverlap = 1 }, true},
		{"two rater overlap", func(c *Config) { c.MinOverlap = 2 }, false},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"negative max titles", func(c *Config) { c.MaxTitles = -1 }, true},
		{"inverted scale", func(c *Config) { c.Scale = Scale{Min: 5, Max: 1} }, true},
		{"unknown policy", func(c *Config) { c.DuplicateTitles = "first" }, true},
		{"zero default k", func(c *Config) { c.Limits.DefaultK = 0 }, true},
		{"max k below default", func(c *Config) { c.Limits.MaxK = 5 }, true},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"zero cache entries", func(c *Config) { c.Cache.MaxEntries = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_CorrelateOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinOverlap = 7
	cfg.Workers = 3
	cfg.MaxTitles = 1000

	want := CorrelateOptions{MinOverlap: 7, Workers: 3, MaxTitles: 1000}
	if got := cfg.CorrelateOptions(); got != want {
		t.Errorf("CorrelateOptions() = %+v, want %+v", got, want)
	}
}

func TestConfig_String(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.TTL = time.Minute

	var decoded Config
	if err := json.Unmarshal([]byte(cfg.String()), &decoded); err != nil {
		t.Fatalf("String() is not valid JSON: %v", err)
	}
	if decoded.MinOverlap != cfg.MinOverlap || decoded.Cache.TTL != time.Minute {
		t.Errorf("decoded = %+v, want %+v", decoded, cfg)
	}
}
