package acquire_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/flock"

	"tilefetch/internal/acquire"
	"tilefetch/internal/logging"
	"tilefetch/internal/runstore"
	"tilefetch/internal/testsupport"
)

type stubRunner struct {
	results map[string]acquire.TileResult
	order   []string
}

func (s *stubRunner) RunTile(_ context.Context, tile string) acquire.TileResult {
	s.order = append(s.order, tile)
	if result, ok := s.results[tile]; ok {
		return result
	}
	return acquire.TileResult{Tile: tile, Status: runstore.StatusCompleted, Attempts: 1}
}

func TestRunRecordsEveryTileAndSurvivesFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stub := &stubRunner{results: map[string]acquire.TileResult{
		"ST68NW": {Tile: "ST68NW", Status: runstore.StatusFailed, Attempts: 3, Err: errors.New("portal timeout")},
	}}
	runner := acquire.NewRunner(stub, store, "national", cfg.RunLockPath(), 0, logging.NewNop())

	results, err := runner.Run(context.Background(), []string{"ST68NW", "ST68NE", "ST68SW"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if len(stub.order) != 3 || stub.order[0] != "ST68NW" || stub.order[2] != "ST68SW" {
		t.Fatalf("tiles not run in input order: %v", stub.order)
	}

	jobs, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 recorded jobs, got %d", len(jobs))
	}
	byTile := map[string]*runstore.Job{}
	for _, job := range jobs {
		byTile[job.Tile] = job
	}
	if byTile["ST68NW"].Status != runstore.StatusFailed {
		t.Fatalf("failed tile recorded as %s", byTile["ST68NW"].Status)
	}
	if byTile["ST68NW"].Attempts != 3 {
		t.Fatalf("attempts not recorded: %d", byTile["ST68NW"].Attempts)
	}
	if byTile["ST68NW"].ErrorMessage == "" {
		t.Fatalf("error message not recorded")
	}
	if byTile["ST68NE"].Status != runstore.StatusCompleted {
		t.Fatalf("completed tile recorded as %s", byTile["ST68NE"].Status)
	}
}

func TestRunRefusesConcurrentBatches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	held := flock.New(cfg.RunLockPath())
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not pre-acquire lock: %v", err)
	}
	defer held.Unlock()

	runner := acquire.NewRunner(&stubRunner{}, store, "national", cfg.RunLockPath(), 0, logging.NewNop())
	if _, err := runner.Run(context.Background(), []string{"ST68NW"}); err == nil {
		t.Fatalf("expected lock contention error")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := acquire.NewRunner(&stubRunner{}, store, "national", cfg.RunLockPath(), 0, logging.NewNop())
	results, err := runner.Run(ctx, []string{"ST68NW", "ST68NE"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("cancelled run still produced %d results", len(results))
	}
}
