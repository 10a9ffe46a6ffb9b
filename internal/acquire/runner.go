package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"tilefetch/internal/logging"
	"tilefetch/internal/runstore"
)

// TileRunner is the per-tile entry point the batch runner drives. It is an
// interface so batch behaviour can be tested without a real pipeline.
type TileRunner interface {
	RunTile(ctx context.Context, tile string) TileResult
}

// Runner executes a batch of tiles sequentially under an exclusive lock and
// records each outcome in the run store.
type Runner struct {
	supervisor TileRunner
	store      *runstore.Store
	product    string
	lockPath   string
	tilePause  time.Duration
	logger     *slog.Logger
}

// NewRunner builds a batch runner. The lock file guards against concurrent
// runs sharing the scratch and output trees.
func NewRunner(supervisor TileRunner, store *runstore.Store, product, lockPath string, tilePause time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		supervisor: supervisor,
		store:      store,
		product:    product,
		lockPath:   lockPath,
		tilePause:  tilePause,
		logger:     logging.NewComponentLogger(logger, "runner"),
	}
}

// Run acquires every tile in input order. A tile's terminal failure never
// aborts the batch; context cancellation does.
func (r *Runner) Run(ctx context.Context, tiles []string) ([]TileResult, error) {
	lock := flock.New(r.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another run holds the lock at %s", r.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	results := make([]TileResult, 0, len(tiles))
	for i, tile := range tiles {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := r.runOne(ctx, tile)
		results = append(results, result)

		if r.tilePause > 0 && i < len(tiles)-1 {
			if err := sleepContext(ctx, r.tilePause); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, tile string) TileResult {
	job, err := r.store.Create(ctx, tile, r.product)
	if err != nil {
		r.logger.Error("failed to record job", logging.String(logging.FieldTile, tile), logging.Error(err))
	} else {
		job.Status = runstore.StatusFetching
		if err := r.store.Update(ctx, job); err != nil {
			r.logger.Warn("failed to mark job fetching", logging.Error(err))
		}
	}

	result := r.supervisor.RunTile(ctx, tile)

	if job != nil {
		job.Status = result.Status
		job.Attempts = result.Attempts
		job.Downloaded = len(result.Files)
		if result.Err != nil {
			job.ErrorMessage = result.Err.Error()
		}
		if err := r.store.Update(ctx, job); err != nil {
			r.logger.Warn("failed to record result", logging.String(logging.FieldTile, tile), logging.Error(err))
		}
	}

	switch result.Status {
	case runstore.StatusCompleted:
		r.logger.Info("tile completed", logging.String(logging.FieldTile, tile), logging.Int(logging.FieldAttempt, result.Attempts))
	case runstore.StatusPartial:
		r.logger.Warn("tile partial", logging.String(logging.FieldTile, tile), logging.Error(result.Err))
	default:
		r.logger.Error("tile failed", logging.String(logging.FieldTile, tile), logging.Error(result.Err))
	}
	return result
}
