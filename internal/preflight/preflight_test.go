package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"tilefetch/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := CheckDirectoryAccess("Output directory", dir)
	if !result.Passed {
		t.Fatalf("writable directory failed: %+v", result)
	}

	missing := CheckDirectoryAccess("Output directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Fatalf("missing directory passed: %+v", missing)
	}
	if !strings.Contains(missing.Detail, "does not exist") {
		t.Fatalf("detail does not name the cause: %s", missing.Detail)
	}
}

func TestCheckGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.geojson")
	testsupport.WriteSquareGrid(t, path, "tile_name", [][]string{{"ST68NW", "ST68NE"}}, 1000)

	result := CheckGrid(path, "tile_name")
	if !result.Passed {
		t.Fatalf("valid grid failed: %+v", result)
	}
	if !strings.Contains(result.Detail, "2 tiles") {
		t.Fatalf("detail does not report tile count: %s", result.Detail)
	}

	broken := CheckGrid(filepath.Join(t.TempDir(), "missing.geojson"), "tile_name")
	if broken.Passed {
		t.Fatalf("missing grid passed: %+v", broken)
	}
}

func TestCheckPortal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if result := CheckPortal(context.Background(), server.URL); !result.Passed {
		t.Fatalf("reachable portal failed: %+v", result)
	}
	if result := CheckPortal(context.Background(), ""); result.Passed {
		t.Fatalf("empty url passed")
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	if result := CheckPortal(context.Background(), failing.URL); result.Passed {
		t.Fatalf("5xx portal passed")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	result := CheckFreeSpace(t.TempDir())
	if result.Detail == "" {
		t.Fatalf("free space check produced no detail")
	}
	// Pass or fail depends on the host filesystem; the check must at least
	// resolve and report a figure.
	if !strings.Contains(result.Detail, "GiB") {
		t.Fatalf("detail does not report headroom: %s", result.Detail)
	}
}

func TestRunAllCoversConfiguredChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteSquareGrid(t, cfg.Paths.GridPath, cfg.Paths.GridNameProperty, [][]string{{"ST68NW"}}, 1000)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	cfg.Portal.URL = server.URL

	results := RunAll(context.Background(), cfg)
	if len(results) < 5 {
		t.Fatalf("expected the full check set, got %d: %+v", len(results), results)
	}

	names := map[string]bool{}
	for _, result := range results {
		names[result.Name] = true
	}
	for _, want := range []string{"Tile index", "Output directory", "Scratch directory", "Free space", "Portal"} {
		if !names[want] {
			t.Fatalf("check %q missing from %v", want, names)
		}
	}

	if RunAll(context.Background(), nil) != nil {
		t.Fatalf("nil config should produce no checks")
	}
}
