package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tilefetch/internal/fileutil"
	"tilefetch/internal/logging"
	"tilefetch/internal/services"
	"tilefetch/internal/services/gdal"
)

// ErrNoRaster reports an extraction that yielded no raster payload.
var ErrNoRaster = fmt.Errorf("%w: no raster payload after extraction", services.ErrNotFound)

// rasterExts are the payload extensions recognized inside downloaded
// archives.
var rasterExts = []string{".tif", ".tiff", ".asc"}

// ConversionError reports a failed COG conversion. It is non-fatal to the
// batch: the raw raster is retained and the tile is recorded as partial.
type ConversionError struct {
	Source string
	Cause  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Source, e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// Is lets errors.Is classify this as a failed external conversion.
func (e *ConversionError) Is(target error) bool {
	return target == services.ErrConversion || target == services.ErrExternalTool
}

// Result reports what the post-processor produced.
type Result struct {
	// COGPath is set when a converted raster exists (fresh or pre-existing).
	COGPath string
	// RawPath is set when the raw raster was kept without conversion.
	RawPath string
	// Skipped is true when an existing COG made the job a no-op.
	Skipped bool
}

// Option configures the processor.
type Option func(*Processor)

// WithConversionDisabled keeps raw rasters without running gdal.
func WithConversionDisabled() Option {
	return func(p *Processor) { p.convert = false }
}

// Processor extracts, locates, and converts downloaded rasters.
type Processor struct {
	converter   gdal.Client
	scratchRoot string
	convert     bool
	logger      *slog.Logger
}

// NewProcessor builds a processor whose extraction scratch directories live
// under scratchRoot.
func NewProcessor(converter gdal.Client, scratchRoot string, logger *slog.Logger, opts ...Option) *Processor {
	processor := &Processor{
		converter:   converter,
		scratchRoot: scratchRoot,
		convert:     true,
		logger:      logging.NewComponentLogger(logger, "raster"),
	}
	for _, opt := range opts {
		opt(processor)
	}
	return processor
}

// Process extracts srcPath (archive or bare raster) and converts the located
// raster to tileDir/cog_<TILE>.tif. An existing COG short-circuits. The
// extraction scratch directory is removed regardless of outcome.
func (p *Processor) Process(ctx context.Context, srcPath, tileDir, tile string, progress func(gdal.ProgressUpdate)) (Result, error) {
	cogPath := filepath.Join(tileDir, CogName(tile))
	if fileutil.Exists(cogPath) {
		p.logger.Info("converted raster exists, skipping", logging.String("cog", cogPath))
		return Result{COGPath: cogPath, Skipped: true}, nil
	}

	scratch, err := os.MkdirTemp(p.scratchRoot, "extract-")
	if err != nil {
		return Result{}, fmt.Errorf("create extraction scratch: %w", err)
	}
	defer os.RemoveAll(scratch)

	rasterPath, extracted, err := p.locate(srcPath, scratch)
	if err != nil {
		return Result{}, err
	}

	if !p.convert {
		return p.keepRaw(rasterPath, tileDir, extracted)
	}

	if err := p.converter.Convert(ctx, rasterPath, cogPath, progress); err != nil {
		p.logger.Warn("conversion failed, keeping raw raster",
			logging.String("source", rasterPath),
			logging.Error(err),
		)
		result, keepErr := p.keepRaw(rasterPath, tileDir, extracted)
		if keepErr != nil {
			p.logger.Error("failed to retain raw raster", logging.Error(keepErr))
		}
		return result, &ConversionError{Source: rasterPath, Cause: err}
	}

	p.logger.Info("conversion complete", logging.String("cog", cogPath))
	return Result{COGPath: cogPath}, nil
}

// CogName is the converted filename for a tile.
func CogName(tile string) string {
	return "cog_" + tile + ".tif"
}

// locate resolves srcPath to a raster file, extracting archives into
// scratch. extracted reports whether the raster lives in scratch and must be
// moved out to survive cleanup.
func (p *Processor) locate(srcPath, scratch string) (string, bool, error) {
	if isRaster(srcPath) {
		return srcPath, false, nil
	}
	if strings.EqualFold(filepath.Ext(srcPath), ".zip") {
		if err := extractArchive(srcPath, scratch); err != nil {
			return "", false, fmt.Errorf("extract %s: %w", srcPath, err)
		}
		found, err := findRaster(scratch)
		if err != nil {
			return "", false, err
		}
		return found, true, nil
	}
	// The portal serves bare rasters under link-derived names without an
	// extension; treat anything unrecognized as a raster candidate and let
	// conversion reject junk.
	return srcPath, false, nil
}

func (p *Processor) keepRaw(rasterPath, tileDir string, extracted bool) (Result, error) {
	if !extracted {
		return Result{RawPath: rasterPath}, nil
	}
	kept := filepath.Join(tileDir, filepath.Base(rasterPath))
	if err := fileutil.MoveFile(rasterPath, kept); err != nil {
		return Result{}, fmt.Errorf("retain raw raster: %w", err)
	}
	return Result{RawPath: kept}, nil
}

func isRaster(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range rasterExts {
		if ext == candidate {
			return true
		}
	}
	return false
}

func findRaster(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		if found == "" && isRaster(path) {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan extraction: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("%w in %s", ErrNoRaster, dir)
	}
	return found, nil
}
