// Package testsupport provides shared helpers for package tests: temp-dir
// configurations, a synthetic tile grid, and run store fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"tilefetch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.GridPath = filepath.Join(base, "grid.geojson")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Retry.CooldownSeconds = 0
	cfg.Retry.TilePauseSeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithMaxAttempts overrides the retry bound on the test config.
func WithMaxAttempts(attempts int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Retry.MaxAttempts = attempts
	}
}

// WithExpandNeighbors enables neighbor expansion on the test config.
func WithExpandNeighbors() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Geometry.ExpandNeighbors = true
	}
}
