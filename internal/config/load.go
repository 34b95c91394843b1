// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinecorr/config.yaml",
}

// DefaultDotEnvPath is loaded when DOTENV_PATH is unset and the file exists.
const DefaultDotEnvPath = ".env"

// envMappings maps lowercase environment variable names to koanf paths.
var envMappings = map[string]string{
	"ratings_path":        "data.ratings_path",
	"movies_path":         "data.movies_path",
	"data_reader":         "data.reader",
	"refresh_interval":    "data.refresh_interval",
	"build_timeout":       "data.build_timeout",
	"breaker_failures":    "data.breaker_failures",
	"breaker_cooldown":    "data.breaker_cooldown",
	"min_overlap":         "recommend.min_overlap",
	"workers":             "recommend.workers",
	"max_titles":          "recommend.max_titles",
	"scale_min":           "recommend.scale_min",
	"scale_max":           "recommend.scale_max",
	"duplicate_titles":    "recommend.duplicate_titles",
	"default_limit":       "recommend.default_limit",
	"max_limit":           "recommend.max_limit",
	"cache_enabled":       "recommend.cache_enabled",
	"cache_ttl":           "recommend.cache_ttl",
	"cache_max_entries":   "recommend.cache_max_entries",
	"random_seed":         "recommend.seed",
	"http_host":           "server.host",
	"http_port":           "server.port",
	"read_timeout":        "server.read_timeout",
	"write_timeout":       "server.write_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "api.cors_origins",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
	"log_caller":          "logging.caller",
}

// sliceFields hold comma-separated lists when set from the environment.
var sliceFields = []string{
	"api.cors_origins",
}

// Load reads configuration from defaults, an optional YAML file and the
// environment. A non-empty path overrides the config file search.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv seeds the environment from DOTENV_PATH or ./.env. Variables
// already set in the environment win. A missing default file is not an
// error; a missing explicit one is.
func loadDotEnv() error {
	path := os.Getenv("DOTENV_PATH")
	explicit := path != ""
	if !explicit {
		path = DefaultDotEnvPath
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns CONFIG_PATH when set, else the first existing
// default path, else "".
func findConfigFile() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps recognised variables to koanf paths and drops the
// rest by returning "".
func envTransformFunc(s string) string {
	return envMappings[strings.ToLower(s)]
}

// processSliceFields splits comma-separated string values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, field := range sliceFields {
		s, ok := k.Get(field).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(field, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", field, err)
		}
	}
	return nil
}
