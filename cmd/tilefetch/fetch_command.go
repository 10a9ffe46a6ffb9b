package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"tilefetch/internal/acquire"
	"tilefetch/internal/config"
	"tilefetch/internal/download"
	"tilefetch/internal/portal"
	"tilefetch/internal/raster"
	"tilefetch/internal/runstore"
	"tilefetch/internal/services/browser"
	"tilefetch/internal/services/gdal"
	"tilefetch/internal/tilegrid"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var productFlag string
	var yearFlag string
	var outputFlag string
	var expandFlag bool
	var noConvertFlag bool

	cmd := &cobra.Command{
		Use:   "fetch TILE...",
		Short: "Acquire one or more survey tiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyFetchFlags(cfg, productFlag, yearFlag, outputFlag, expandFlag, noConvertFlag)
			if _, err := portal.ProductLabel(cfg.Portal.Product); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			return runFetch(cmd, ctx, cfg, args)
		},
	}

	cmd.Flags().StringVarP(&productFlag, "product", "p", "", "Product to request (dsm, dtm, point_cloud, national)")
	cmd.Flags().StringVarP(&yearFlag, "year", "y", "", "Survey year policy: latest, all, or a specific year")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output root directory")
	cmd.Flags().BoolVar(&expandFlag, "expand-neighbors", false, "Request the tile together with its touching neighbors")
	cmd.Flags().BoolVar(&noConvertFlag, "no-convert", false, "Keep raw rasters without COG conversion")
	return cmd
}

func applyFetchFlags(cfg *config.Config, product, year, output string, expand, noConvert bool) {
	if strings.TrimSpace(product) != "" {
		cfg.Portal.Product = strings.TrimSpace(product)
	}
	if strings.TrimSpace(year) != "" {
		cfg.Portal.Year = strings.TrimSpace(year)
	}
	if strings.TrimSpace(output) != "" {
		cfg.Paths.OutputDir = strings.TrimSpace(output)
	}
	if expand {
		cfg.Geometry.ExpandNeighbors = true
	}
	if noConvert {
		cfg.Conversion.Enabled = false
	}
}

func runFetch(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, tiles []string) error {
	logger, err := ctx.newLogger()
	if err != nil {
		return err
	}

	grid, err := ctx.loadGrid()
	if err != nil {
		return fmt.Errorf("load tile index: %w", err)
	}

	store, err := runstore.Open(cfg.RunDBPath())
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := acquire.NewRunner(
		newSupervisor(cfg, grid, logger),
		store,
		cfg.Portal.Product,
		cfg.RunLockPath(),
		time.Duration(cfg.Retry.TilePauseSeconds)*time.Second,
		logger,
	)

	results, runErr := runner.Run(runCtx, tiles)
	printFetchSummary(cmd, results)
	if runErr != nil {
		return runErr
	}
	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d tiles failed", failed, len(results))
	}
	return nil
}

func newSupervisor(cfg *config.Config, grid *tilegrid.Index, logger *slog.Logger) *acquire.Supervisor {
	factory := browser.Factory(func(ctx context.Context) (browser.Automator, error) {
		return browser.New(ctx,
			browser.WithHeadless(cfg.Portal.Headless),
			browser.WithBinary(cfg.Portal.BrowserBinary),
		)
	})

	downloader := download.NewClient(logger,
		download.WithTimeout(time.Duration(cfg.Download.Timeout)*time.Second),
	)

	converter := gdal.NewCLI(
		gdal.WithBinary(cfg.Conversion.GDALBinary),
		gdal.WithBlockSize(cfg.Conversion.BlockSize),
		gdal.WithCompression(cfg.Conversion.Compression),
	)

	var processorOpts []raster.Option
	if !cfg.Conversion.Enabled {
		processorOpts = append(processorOpts, raster.WithConversionDisabled())
	}
	processor := raster.NewProcessor(converter, cfg.Paths.ScratchDir, logger, processorOpts...)

	downloadHook, convertHook := progressHooks()
	opts := []acquire.Option{}
	if downloadHook != nil {
		opts = append(opts, acquire.WithDownloadProgress(downloadHook))
	}
	if convertHook != nil {
		opts = append(opts, acquire.WithConvertProgress(convertHook))
	}
	return acquire.NewSupervisor(cfg, grid, factory, downloader, processor, logger, opts...)
}

func countFailed(results []acquire.TileResult) int {
	failed := 0
	for _, result := range results {
		if result.Status == runstore.StatusFailed {
			failed++
		}
	}
	return failed
}

func printFetchSummary(cmd *cobra.Command, results []acquire.TileResult) {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			result.Tile,
			string(result.Status),
			fmt.Sprintf("%d", result.Attempts),
			fmt.Sprintf("%d", len(result.Files)),
			detail,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]col{
			{title: "Tile"},
			{title: "Status"},
			{title: "Attempts", numeric: true},
			{title: "Files", numeric: true},
			{title: "Detail"},
		},
		rows,
	))
}

// progressHooks wires terminal progress bars into the supervisor when stderr
// is a TTY. Non-interactive runs rely on the structured logs.
func progressHooks() (func(string, download.ProgressUpdate), func(string, gdal.ProgressUpdate)) {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return nil, nil
	}

	var (
		downloadBar  *progressbar.ProgressBar
		downloadTile string
	)
	downloadHook := func(tile string, update download.ProgressUpdate) {
		if downloadBar == nil || downloadTile != tile {
			downloadBar = progressbar.NewOptions64(update.Total,
				progressbar.OptionSetDescription("download "+tile),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionClearOnFinish(),
			)
			downloadTile = tile
		}
		_ = downloadBar.Set64(update.Received)
	}

	var (
		convertBar  *progressbar.ProgressBar
		convertTile string
	)
	convertHook := func(tile string, update gdal.ProgressUpdate) {
		if convertBar == nil || convertTile != tile {
			convertBar = progressbar.NewOptions(100,
				progressbar.OptionSetDescription("convert "+tile),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
			convertTile = tile
		}
		_ = convertBar.Set(int(update.Percent))
	}
	return downloadHook, convertHook
}
