package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize defaults: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Portal.Headless {
		t.Fatalf("default portal should be headless")
	}
	if cfg.Portal.Product != "national" {
		t.Fatalf("default product = %q", cfg.Portal.Product)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatalf("missing file reported as existing")
	}
	if resolved != missing {
		t.Fatalf("resolved path = %s, want %s", resolved, missing)
	}
	if cfg.Retry.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("defaults not applied: %+v", cfg.Retry)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
grid_path = "` + filepath.Join(dir, "grid.geojson") + `"
output_dir = "` + filepath.Join(dir, "out") + `"

[portal]
product = " DSM "
year = "2022"

[conversion]
compression = "lzw"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatalf("existing file reported missing")
	}
	if cfg.Portal.Product != "dsm" {
		t.Fatalf("product not normalized: %q", cfg.Portal.Product)
	}
	if cfg.Portal.Year != "2022" {
		t.Fatalf("year not kept: %q", cfg.Portal.Year)
	}
	if cfg.Conversion.Compression != "LZW" {
		t.Fatalf("compression not upper-cased: %q", cfg.Conversion.Compression)
	}
	if cfg.Paths.GridNameProperty != defaultGridNameProperty {
		t.Fatalf("grid name property default not applied: %q", cfg.Paths.GridNameProperty)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad year",
			content: "[portal]\nyear = \"sometimes\"\n",
			wantErr: "portal.year",
		},
		{
			name:    "zero attempts",
			content: "[retry]\nmax_attempts = 0\n",
			wantErr: "retry.max_attempts",
		},
		{
			name:    "tiny vertex limit",
			content: "[geometry]\nvertex_limit = 2\n",
			wantErr: "geometry.vertex_limit",
		},
		{
			name:    "bad log format",
			content: "[logging]\nformat = \"xml\"\n",
			wantErr: "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestExpandPathResolvesHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/tiles")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "tiles") {
		t.Fatalf("expandPath = %s", got)
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[portal]") {
		t.Fatalf("sample config missing portal section")
	}
	if err := CreateSample(path); err == nil {
		t.Fatalf("expected refusal to overwrite existing config")
	}
}

func TestRunPathsDeriveFromLogDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.LogDir = "/var/lib/tilefetch/logs"
	if got := cfg.RunDBPath(); got != "/var/lib/tilefetch/logs/runs.db" {
		t.Fatalf("RunDBPath = %s", got)
	}
	if got := cfg.RunLockPath(); got != "/var/lib/tilefetch/logs/tilefetch.lock" {
		t.Fatalf("RunLockPath = %s", got)
	}
}
