package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tilefetch/internal/acquire"
	"tilefetch/internal/config"
	"tilefetch/internal/runstore"
)

func TestApplyFetchFlags(t *testing.T) {
	cfg := config.Default()

	applyFetchFlags(&cfg, " dtm ", "2019", "/data/tiles", true, true)
	if cfg.Portal.Product != "dtm" {
		t.Fatalf("product = %q", cfg.Portal.Product)
	}
	if cfg.Portal.Year != "2019" {
		t.Fatalf("year = %q", cfg.Portal.Year)
	}
	if cfg.Paths.OutputDir != "/data/tiles" {
		t.Fatalf("output dir = %q", cfg.Paths.OutputDir)
	}
	if !cfg.Geometry.ExpandNeighbors {
		t.Fatalf("expand flag not applied")
	}
	if cfg.Conversion.Enabled {
		t.Fatalf("no-convert flag not applied")
	}

	kept := cfg.Portal.Product
	applyFetchFlags(&cfg, "", "", "", false, false)
	if cfg.Portal.Product != kept {
		t.Fatalf("empty flags overwrote config values")
	}
}

func TestCountFailed(t *testing.T) {
	results := []acquire.TileResult{
		{Tile: "ST68NW", Status: runstore.StatusCompleted},
		{Tile: "ST68NE", Status: runstore.StatusFailed, Err: errors.New("timeout")},
		{Tile: "ST68SW", Status: runstore.StatusPartial},
	}
	if got := countFailed(results); got != 1 {
		t.Fatalf("countFailed = %d, want 1", got)
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := renderTable(
		[]col{{title: "Tile"}, {title: "Attempts", numeric: true}},
		[][]string{{"ST68NW", "3"}, {"ST68NE"}},
	)
	if !strings.Contains(out, "ST68NW") || !strings.Contains(out, "Attempts") {
		t.Fatalf("table missing content:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	var headerLine, valueLine string
	for _, line := range lines {
		if strings.Contains(line, "Attempts") {
			headerLine = line
		}
		if strings.Contains(line, "ST68NW") {
			valueLine = line
		}
	}
	// The numeric column right-aligns its values under a left-aligned header.
	if strings.Index(valueLine, "3") <= strings.Index(headerLine, "Attempts") {
		t.Fatalf("numeric column not right-aligned:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]col{{title: "Check"}, {title: "Detail"}},
		[][]string{{"portal"}},
	)
	if !strings.Contains(out, "portal") {
		t.Fatalf("table missing padded row:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(data), "[portal]") {
		t.Fatalf("sample config missing portal section")
	}
	if !strings.Contains(buf.String(), target) {
		t.Fatalf("command output does not name the target: %s", buf.String())
	}

	if err := cmd.Execute(); err == nil {
		t.Fatalf("second init without --overwrite should fail")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	want := map[string]bool{"fetch": false, "jobs": false, "grid": false, "preflight": false, "config": false}
	for _, sub := range root.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %s not registered", name)
		}
	}
}
