// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads configuration for the pipelines service.
//
// Values come from three layers, later layers winning:
//
//  1. DefaultConfig()
//  2. a YAML file (optional; a missing file is not an error)
//  3. environment variables (see ApplyEnv)
//
// The merged result is checked with go-playground/validator struct tags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianPipelines/services/pipelines/telemetry"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates the merged configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// configValidate is the shared validator instance for configuration.
var configValidate = validator.New()

// Config is the complete service configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogDir, when set, also writes JSON logs to a daily file there.
	LogDir string `yaml:"log_dir"`

	Server    ServerConfig     `yaml:"server"`
	Limits    LimitsConfig     `yaml:"limits"`
	CORS      CORSConfig       `yaml:"cors"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`

	// MaxBodyBytes caps the request body size.
	MaxBodyBytes int64 `yaml:"max_body_bytes" validate:"gt=0"`
}

// LimitsConfig bounds the size of a submitted pipeline.
type LimitsConfig struct {
	MaxNodes int `yaml:"max_nodes" validate:"gt=0"`
	MaxEdges int `yaml:"max_edges" validate:"gt=0"`
}

// CORSConfig mirrors the browser-facing CORS policy.
type CORSConfig struct {
	AllowOrigins     []string      `yaml:"allow_origins" validate:"min=1"`
	AllowMethods     []string      `yaml:"allow_methods" validate:"min=1"`
	AllowHeaders     []string      `yaml:"allow_headers" validate:"min=1"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age"`
}

// RateLimitConfig configures the global token bucket.
// RequestsPerSecond of 0 disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

// DefaultConfig returns defaults matching the editor's local setup: port
// 8000 and a CORS policy that admits any origin.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
		Limits: LimitsConfig{
			MaxNodes: 10_000,
			MaxEdges: 50_000,
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"*"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             0,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// Load reads path over DefaultConfig, applies environment overrides and
// validates the result.
//
// Description:
//
//	An empty path or a path that does not exist yields the defaults (plus
//	environment). Fields absent from the file keep their default values.
//
// Inputs:
//
//	path - YAML file path. May be empty.
//
// Outputs:
//
//	Config - The merged configuration.
//	error - Non-nil if the file cannot be read or parsed, or validation fails.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadLimits reads only the limits section of path, applies
// PIPELINES_MAX_NODES and PIPELINES_MAX_EDGES, and validates just that
// section. Server, CORS and telemetry settings are ignored, so offline
// checks do not fail on configuration they never use.
func LoadLimits(path string) (LimitsConfig, error) {
	cfg := DefaultConfig()
	if err := readFile(path, &cfg); err != nil {
		return LimitsConfig{}, err
	}
	if err := cfg.Limits.applyEnv(); err != nil {
		return LimitsConfig{}, err
	}
	if err := configValidate.Struct(cfg.Limits); err != nil {
		return LimitsConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg.Limits, nil
}

// readFile unmarshals path over cfg. An empty or missing path is a no-op.
func readFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
//
//   - PIPELINES_PORT
//   - PIPELINES_LOG_LEVEL, PIPELINES_LOG_DIR
//   - PIPELINES_CORS_ORIGINS (comma separated)
//   - PIPELINES_MAX_NODES, PIPELINES_MAX_EDGES
//   - OTEL_TRACES_EXPORTER, OTEL_METRICS_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT
//   - ALEUTIAN_ENV
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("PIPELINES_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PIPELINES_PORT=%q is not an integer", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("PIPELINES_LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("PIPELINES_LOG_DIR"); ok {
		c.LogDir = v
	}
	if v, ok := lookup("PIPELINES_CORS_ORIGINS"); ok {
		c.CORS.AllowOrigins = splitList(v)
	}
	if err := c.Limits.applyEnv(); err != nil {
		return err
	}
	if v, ok := lookup("OTEL_TRACES_EXPORTER"); ok {
		c.Telemetry.TraceExporter = v
	}
	if v, ok := lookup("OTEL_METRICS_EXPORTER"); ok {
		c.Telemetry.MetricExporter = v
	}
	if v, ok := lookup("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		c.Telemetry.OTLPEndpoint = v
	}
	if v, ok := lookup("ALEUTIAN_ENV"); ok {
		c.Telemetry.Environment = v
	}
	return nil
}

func (l *LimitsConfig) applyEnv() error {
	if v, ok := lookup("PIPELINES_MAX_NODES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PIPELINES_MAX_NODES=%q is not an integer", ErrInvalidConfig, v)
		}
		l.MaxNodes = n
	}
	if v, ok := lookup("PIPELINES_MAX_EDGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PIPELINES_MAX_EDGES=%q is not an integer", ErrInvalidConfig, v)
		}
		l.MaxEdges = n
	}
	return nil
}

// Validate checks struct tags on the whole configuration.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// lookup returns a trimmed, non-empty environment value.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
