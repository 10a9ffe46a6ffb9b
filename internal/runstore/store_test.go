package runstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"tilefetch/internal/runstore"
)

func openStore(t *testing.T, path string) *runstore.Store {
	t.Helper()
	store, err := runstore.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndListJobs(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "runs.db"))
	ctx := context.Background()

	job, err := store.Create(ctx, "ST68NW", "national")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ID == 0 {
		t.Fatalf("job ID not assigned")
	}
	if job.Status != runstore.StatusPending {
		t.Fatalf("new job status = %s, want pending", job.Status)
	}

	jobs, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Tile != "ST68NW" || jobs[0].Product != "national" {
		t.Fatalf("unexpected job row %+v", jobs[0])
	}
}

func TestUpdatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store := openStore(t, path)
	ctx := context.Background()

	job, err := store.Create(ctx, "ST68NW", "dsm")
	if err != nil {
		t.Fatal(err)
	}
	job.Status = runstore.StatusPartial
	job.Attempts = 2
	job.Downloaded = 1
	job.ErrorMessage = "gdal_translate failed"
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openStore(t, path)
	jobs, err := reopened.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after reopen, got %d", len(jobs))
	}
	got := jobs[0]
	if got.Status != runstore.StatusPartial || got.Attempts != 2 || got.Downloaded != 1 {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.ErrorMessage != "gdal_translate failed" {
		t.Fatalf("error message not persisted: %q", got.ErrorMessage)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Fatalf("timestamps not maintained: %+v", got)
	}
}

func TestSummarizeCountsByStatus(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "runs.db"))
	ctx := context.Background()

	want := map[runstore.Status]int{
		runstore.StatusCompleted: 2,
		runstore.StatusPartial:   1,
		runstore.StatusFailed:    1,
		runstore.StatusPending:   1,
	}
	tiles := []string{"ST68NW", "ST68NE", "ST68SW", "ST68SE", "ST69NW"}
	statuses := []runstore.Status{
		runstore.StatusCompleted,
		runstore.StatusCompleted,
		runstore.StatusPartial,
		runstore.StatusFailed,
		runstore.StatusPending,
	}
	for i, tile := range tiles {
		job, err := store.Create(ctx, tile, "national")
		if err != nil {
			t.Fatal(err)
		}
		if statuses[i] != runstore.StatusPending {
			job.Status = statuses[i]
			if err := store.Update(ctx, job); err != nil {
				t.Fatal(err)
			}
		}
	}

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 5 {
		t.Fatalf("total = %d, want 5", summary.Total)
	}
	if summary.Completed != want[runstore.StatusCompleted] ||
		summary.Partial != want[runstore.StatusPartial] ||
		summary.Failed != want[runstore.StatusFailed] ||
		summary.Pending != want[runstore.StatusPending] {
		t.Fatalf("summary mismatch: %+v", summary)
	}
}

func TestJobHelpers(t *testing.T) {
	job := &runstore.Job{Status: runstore.StatusFetching}
	if job.Terminal() {
		t.Fatalf("fetching job reported terminal")
	}
	job.SetFailed("  portal timeout  ")
	if job.Status != runstore.StatusFailed {
		t.Fatalf("SetFailed status = %s", job.Status)
	}
	if job.ErrorMessage != "portal timeout" {
		t.Fatalf("SetFailed did not trim message: %q", job.ErrorMessage)
	}
	if !job.Terminal() {
		t.Fatalf("failed job should be terminal")
	}

	if runstore.ValidStatus("bogus") {
		t.Fatalf("bogus status accepted")
	}
	if !runstore.ValidStatus(runstore.StatusPartial) {
		t.Fatalf("partial status rejected")
	}
}
