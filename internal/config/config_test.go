// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cinecorr/internal/recommend"
)

// isolate moves into an empty directory and clears every variable Load
// reads so the host environment cannot leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for name := range envMappings {
		t.Setenv(strings.ToUpper(name), "")
		os.Unsetenv(strings.ToUpper(name))
	}
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DOTENV_PATH", "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_DefaultsWithRequiredPaths(t *testing.T) {
	isolate(t)
	t.Setenv("RATINGS_PATH", "/data/ratings.csv")
	t.Setenv("MOVIES_PATH", "/data/movies.csv")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.Reader != "csv" {
		t.Errorf("Data.Reader = %q, want csv", cfg.Data.Reader)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Recommend.MinOverlap != recommend.DefaultMinOverlap {
		t.Errorf("MinOverlap = %d, want %d", cfg.Recommend.MinOverlap, recommend.DefaultMinOverlap)
	}
	if !reflect.DeepEqual(cfg.API.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.API.CORSOrigins)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.Data.BreakerFailures != 3 || cfg.Data.BreakerCooldown != 5*time.Minute {
		t.Errorf("breaker = %d/%v, want 3/5m", cfg.Data.BreakerFailures, cfg.Data.BreakerCooldown)
	}
}

func TestLoad_MissingPaths(t *testing.T) {
	isolate(t)

	if _, err := Load(""); err == nil {
		t.Fatal("Load() without data paths should fail")
	}
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
data:
  ratings_path: /srv/ratings.csv
  movies_path: /srv/movies.csv
  reader: duckdb
  refresh_interval: 1m
recommend:
  min_overlap: 12
  duplicate_titles: merge
server:
  port: 9090
api:
  cors_origins:
    - https://a.example
    - https://b.example
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.Reader != "duckdb" {
		t.Errorf("Reader = %q, want duckdb", cfg.Data.Reader)
	}
	if cfg.Data.RefreshInterval != time.Minute {
		t.Errorf("RefreshInterval = %v, want 1m", cfg.Data.RefreshInterval)
	}
	if cfg.Recommend.MinOverlap != 12 {
		t.Errorf("MinOverlap = %d, want 12", cfg.Recommend.MinOverlap)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.API.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}

	engine := cfg.EngineConfig()
	if engine.DuplicateTitles != recommend.DuplicateMerge {
		t.Errorf("engine DuplicateTitles = %q, want merge", engine.DuplicateTitles)
	}
	if engine.MinOverlap != 12 {
		t.Errorf("engine MinOverlap = %d, want 12", engine.MinOverlap)
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "elsewhere.yaml")
	writeFile(t, path, "data:\n  ratings_path: r.csv\n  movies_path: m.csv\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.RatingsPath != "r.csv" {
		t.Errorf("RatingsPath = %q, want r.csv", cfg.Data.RatingsPath)
	}
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "data:\n  ratings_path: local.csv\n  movies_path: m.csv\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.RatingsPath != "local.csv" {
		t.Errorf("RatingsPath = %q, want local.csv", cfg.Data.RatingsPath)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "data:\n  ratings_path: r.csv\n  movies_path: m.csv\nserver:\n  port: 9090\n")
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("MIN_OVERLAP", "3")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CORS_ORIGINS", "https://x.example, https://y.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Recommend.MinOverlap != 3 {
		t.Errorf("MinOverlap = %d, want 3", cfg.Recommend.MinOverlap)
	}
	if cfg.Recommend.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.Recommend.CacheTTL)
	}
	want := []string{"https://x.example", "https://y.example"}
	if !reflect.DeepEqual(cfg.API.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	if got := cfg.LoggingConfig().Level; got != "debug" {
		t.Errorf("logging level = %q, want debug", got)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "RATINGS_PATH=dot.csv\nMOVIES_PATH=dotm.csv\nDATA_READER=duckdb\n")
	t.Setenv("DATA_READER", "csv")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.RatingsPath != "dot.csv" {
		t.Errorf("RatingsPath = %q, want dot.csv", cfg.Data.RatingsPath)
	}
	// Variables already present in the environment win over .env.
	if cfg.Data.Reader != "csv" {
		t.Errorf("Reader = %q, want csv", cfg.Data.Reader)
	}
}

func TestLoad_MissingExplicitDotEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DOTENV_PATH", filepath.Join(dir, "absent.env"))

	if _, err := Load(""); err == nil {
		t.Fatal("Load() with missing DOTENV_PATH should fail")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatal("Load() with missing file should fail")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RATINGS_PATH", "data.ratings_path"},
		{"HTTP_PORT", "server.port"},
		{"RANDOM_SEED", "recommend.seed"},
		{"log_format", "logging.format"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaultConfig()
		c.Data.RatingsPath = "r.csv"
		c.Data.MoviesPath = "m.csv"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad reader", func(c *Config) { c.Data.Reader = "parquet" }, true},
		{"zero overlap", func(c *Config) { c.Recommend.MinOverlap = 0 }, true},
		{"overlap of one", func(c *Config) { c.Recommend.MinOverlap = 1 }, true},
		{"negative workers", func(c *Config) { c.Recommend.Workers = -1 }, true},
		{"bad policy", func(c *Config) { c.Recommend.DuplicateTitles = "first" }, true},
		{"inverted scale", func(c *Config) { c.Recommend.ScaleMin, c.Recommend.ScaleMax = 5, 1 }, true},
		{"max below default", func(c *Config) { c.Recommend.MaxLimit = 5; c.Recommend.DefaultLimit = 10 }, true},
		{"cache ttl zero", func(c *Config) { c.Recommend.CacheTTL = 0 }, true},
		{"cache disabled ttl zero", func(c *Config) {
			c.Recommend.CacheEnabled = false
			c.Recommend.CacheTTL = 0
		}, false},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"no refresh", func(c *Config) { c.Data.RefreshInterval = 0 }, false},
		{"no rate limit", func(c *Config) { c.API.RateLimitRequests = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
