package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"tilefetch/internal/bundle"
	"tilefetch/internal/config"
	"tilefetch/internal/download"
	"tilefetch/internal/logging"
	"tilefetch/internal/portal"
	"tilefetch/internal/raster"
	"tilefetch/internal/runstore"
	"tilefetch/internal/services"
	"tilefetch/internal/services/browser"
	"tilefetch/internal/services/gdal"
	"tilefetch/internal/textutil"
	"tilefetch/internal/tilegrid"
)

// TileResult is the terminal outcome of one tile acquisition.
type TileResult struct {
	Tile     string
	Status   runstore.Status
	Attempts int
	// Files lists the artifacts produced under the tile directory, in the
	// order they were created.
	Files []string
	Err   error
}

// Option configures a supervisor.
type Option func(*Supervisor)

// WithDownloadProgress installs a transfer progress callback.
func WithDownloadProgress(fn func(tile string, update download.ProgressUpdate)) Option {
	return func(s *Supervisor) { s.downloadProgress = fn }
}

// WithConvertProgress installs a conversion progress callback.
func WithConvertProgress(fn func(tile string, update gdal.ProgressUpdate)) Option {
	return func(s *Supervisor) { s.convertProgress = fn }
}

// Supervisor runs the resolve, package, drive, download, process pipeline
// for a single tile with bounded retries.
type Supervisor struct {
	cfg        *config.Config
	grid       *tilegrid.Index
	newSession browser.Factory
	downloader *download.Client
	processor  *raster.Processor
	logger     *slog.Logger

	downloadProgress func(string, download.ProgressUpdate)
	convertProgress  func(string, gdal.ProgressUpdate)

	// sleep is replaced in tests to avoid real cooldowns.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSupervisor wires the pipeline components together.
func NewSupervisor(
	cfg *config.Config,
	grid *tilegrid.Index,
	newSession browser.Factory,
	downloader *download.Client,
	processor *raster.Processor,
	logger *slog.Logger,
	opts ...Option,
) *Supervisor {
	supervisor := &Supervisor{
		cfg:        cfg,
		grid:       grid,
		newSession: newSession,
		downloader: downloader,
		processor:  processor,
		logger:     logging.NewComponentLogger(logger, "acquire"),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(supervisor)
	}
	return supervisor
}

// RunTile acquires one tile, retrying failed attempts after a fixed cooldown
// up to retry.max_attempts. A conversion failure after successful downloads
// is recorded as partial and is not retried.
func (s *Supervisor) RunTile(ctx context.Context, tile string) TileResult {
	ctx = services.WithTile(ctx, tile)
	maxAttempts := s.cfg.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	cooldown := time.Duration(s.cfg.Retry.CooldownSeconds) * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx := services.WithAttempt(ctx, attempt)
		attemptLog := logging.WithContext(attemptCtx, s.logger)
		attemptLog.Info("attempt started",
			logging.String(logging.FieldEventType, "attempt_start"),
		)
		files, err := s.attempt(attemptCtx, tile)
		if err == nil {
			attemptLog.Info("tile acquired",
				logging.String(logging.FieldEventType, "attempt_success"),
				logging.Int("files", len(files)),
			)
			return TileResult{Tile: tile, Status: runstore.StatusCompleted, Attempts: attempt, Files: files}
		}
		if !services.Retryable(err) {
			attemptLog.Warn("tile kept without conversion",
				logging.String(logging.FieldEventType, "attempt_partial"),
				logging.Error(err),
			)
			return TileResult{
				Tile:     tile,
				Status:   services.FailureStatus(err),
				Attempts: attempt,
				Files:    files,
				Err:      err,
			}
		}
		lastErr = err
		attemptLog.Warn("attempt failed",
			logging.String(logging.FieldEventType, "attempt_failure"),
			logging.Error(err),
		)
		if attempt < maxAttempts && cooldown > 0 {
			if err := s.sleep(ctx, cooldown); err != nil {
				lastErr = err
				break
			}
		}
	}
	return TileResult{
		Tile:     tile,
		Status:   services.FailureStatus(lastErr),
		Attempts: maxAttempts,
		Err:      lastErr,
	}
}

// attempt runs one full pipeline pass. The scratch directory and the browser
// session are attempt-scoped and released on every exit path.
func (s *Supervisor) attempt(ctx context.Context, tile string) ([]string, error) {
	geom, err := s.resolveFootprint(tile)
	if err != nil {
		return nil, err
	}

	scratch := filepath.Join(s.cfg.Paths.ScratchDir, "attempt-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, fmt.Errorf("create attempt scratch: %w", err)
	}
	defer os.RemoveAll(scratch)

	bundlePath, err := bundle.Package(geom, scratch, tile)
	if err != nil {
		return nil, err
	}

	links, err := s.discover(services.WithStage(ctx, "portal"), bundlePath, tile)
	if err != nil {
		return nil, err
	}

	tileDir := filepath.Join(s.cfg.Paths.OutputDir, tile)
	files, err := s.fetchAll(services.WithStage(ctx, "download"), tile, tileDir, links)
	if err != nil {
		return files, err
	}

	return s.processAll(services.WithStage(ctx, "convert"), tile, tileDir, files)
}

func (s *Supervisor) resolveFootprint(tile string) (orb.Geometry, error) {
	var geom orb.Geometry
	var err error
	if s.cfg.Geometry.ExpandNeighbors {
		geom, err = s.grid.ExpandToNeighbors(tile)
	} else {
		geom, err = s.grid.Footprint(tile)
	}
	if err != nil {
		return nil, err
	}
	return tilegrid.SimplifyWithin(geom, s.cfg.Geometry.VertexLimit)
}

// discover opens a browser session, walks the portal workflow, and returns
// the matching links. The session never outlives the call.
func (s *Supervisor) discover(ctx context.Context, bundlePath, tile string) ([]portal.CandidateLink, error) {
	auto, err := s.newSession(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "acquire", "session", "open browser session", err)
	}
	defer auto.Close()

	driver := portal.NewDriver(auto, portal.Config{
		URL:         s.cfg.Portal.URL,
		StepTimeout: time.Duration(s.cfg.Portal.StepTimeout) * time.Second,
		Year:        s.cfg.Portal.Year,
	}, logging.WithContext(ctx, s.logger))

	label, err := portal.ProductLabel(s.cfg.Portal.Product)
	if err != nil {
		return nil, err
	}
	return driver.Discover(ctx, bundlePath, label, tile)
}

func (s *Supervisor) fetchAll(ctx context.Context, tile, tileDir string, links []portal.CandidateLink) ([]string, error) {
	files := make([]string, 0, len(links))
	for i, link := range links {
		dest := filepath.Join(tileDir, linkFilename(link, tile, i))
		var progress func(download.ProgressUpdate)
		if s.downloadProgress != nil {
			progress = func(update download.ProgressUpdate) { s.downloadProgress(tile, update) }
		}
		result, err := s.downloader.Fetch(ctx, download.Task{URL: link.URL, Dest: dest}, progress)
		if err != nil {
			return files, err
		}
		files = append(files, result.Path)
	}
	return files, nil
}

// processAll converts each downloaded artifact. The returned file list holds
// the artifacts that ended up in the tile directory: converted rasters, or
// the retained raw raster when conversion failed.
func (s *Supervisor) processAll(ctx context.Context, tile, tileDir string, downloads []string) ([]string, error) {
	var convErr error
	files := make([]string, 0, len(downloads))
	for _, src := range downloads {
		var progress func(gdal.ProgressUpdate)
		if s.convertProgress != nil {
			progress = func(update gdal.ProgressUpdate) { s.convertProgress(tile, update) }
		}
		result, err := s.processor.Process(ctx, src, tileDir, tile, progress)
		if err != nil {
			var conversion *raster.ConversionError
			if errors.As(err, &conversion) {
				if result.RawPath != "" {
					files = append(files, result.RawPath)
				}
				convErr = err
				continue
			}
			return files, err
		}
		if result.COGPath != "" {
			files = append(files, result.COGPath)
		} else if result.RawPath != "" {
			files = append(files, result.RawPath)
		}
	}
	return files, convErr
}

// linkFilename derives a destination name from a candidate link, falling
// back to the label and then to a tile-indexed name.
func linkFilename(link portal.CandidateLink, tile string, index int) string {
	if parsed, err := url.Parse(link.URL); err == nil {
		if base := filepath.Base(parsed.Path); base != "." && base != "/" && base != "" {
			return base
		}
	}
	if label := textutil.SanitizeFileName(link.Label); label != "" {
		return label
	}
	return fmt.Sprintf("%s_%d.zip", tile, index+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
