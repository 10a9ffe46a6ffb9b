package portal

import (
	"context"
	"log/slog"
	"time"

	"tilefetch/internal/logging"
	"tilefetch/internal/services/browser"
)

// CandidateLink is one results-list entry whose label matched the requested
// tile. Links are consumed immediately by the download orchestrator; they
// may carry session-scoped tokens and do not outlive the attempt.
type CandidateLink struct {
	Label string
	URL   string
}

// Config holds the driver's workflow parameters.
type Config struct {
	// URL is the portal entry point.
	URL string
	// StepTimeout bounds each precondition wait.
	StepTimeout time.Duration
	// Year selects which year options to scan: "latest", "all", or a
	// specific year.
	Year string
}

// Driver executes the portal workflow against one automation session.
type Driver struct {
	auto   browser.Automator
	cfg    Config
	logger *slog.Logger
	state  State
}

// NewDriver wraps an open automation session.
func NewDriver(auto browser.Automator, cfg Config, logger *slog.Logger) *Driver {
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 300 * time.Second
	}
	if cfg.Year == "" {
		cfg.Year = "latest"
	}
	return &Driver{
		auto:   auto,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "portal-driver"),
	}
}

// State returns the driver's current workflow position.
func (d *Driver) State() State { return d.state }

// Discover runs the full selection workflow for one uploaded footprint and
// returns every link whose label matches tile. The session is left where the
// workflow ended; callers close it with the attempt.
func (d *Driver) Discover(ctx context.Context, bundlePath, productLabel, tile string) ([]CandidateLink, error) {
	d.state = StateStarted
	if err := d.auto.Navigate(ctx, d.cfg.URL); err != nil {
		return nil, &TimeoutError{Precondition: "portal reachable", State: d.state, Cause: err}
	}

	if err := d.wait(ctx, precondModePicker, selModePicker); err != nil {
		return nil, err
	}
	if err := d.auto.SelectByValue(ctx, selModePicker, uploadModeValue); err != nil {
		return nil, &TimeoutError{Precondition: precondModePicker, State: d.state, Cause: err}
	}
	d.advance(StateUploadModeSelected)

	if err := d.wait(ctx, precondUploadInput, selUploadInput); err != nil {
		return nil, err
	}
	if err := d.auto.Upload(ctx, selUploadInput, bundlePath); err != nil {
		return nil, &TimeoutError{Precondition: precondUploadInput, State: d.state, Cause: err}
	}
	d.advance(StateBundleUploaded)

	if err := d.wait(ctx, precondTileSelector, selTileSelector); err != nil {
		return nil, err
	}
	if err := d.auto.Click(ctx, selTileSelector); err != nil {
		return nil, &TimeoutError{Precondition: precondTileSelector, State: d.state, Cause: err}
	}
	d.advance(StateSelectorTriggered)

	if err := d.wait(ctx, precondProductPicker, selProductPicker); err != nil {
		return nil, err
	}
	if err := d.auto.SelectByText(ctx, selProductPicker, productLabel); err != nil {
		return nil, &TimeoutError{Precondition: precondProductPicker, State: d.state, Cause: err}
	}
	d.advance(StateProductSelected)

	return d.scanYears(ctx, tile)
}

// scanYears walks the year options in presented order and short-circuits on
// the first year with at least one matching label. Matches are tracked with
// an explicit flag; loop completion alone never decides exhaustion.
func (d *Driver) scanYears(ctx context.Context, tile string) ([]CandidateLink, error) {
	if err := d.wait(ctx, precondYearPicker, selYearPicker); err != nil {
		return nil, err
	}
	options, err := d.auto.Options(ctx, selYearPicker)
	if err != nil {
		return nil, &TimeoutError{Precondition: precondYearPicker, State: d.state, Cause: err}
	}
	years := d.yearsToScan(options)
	d.logger.Debug("year options resolved",
		logging.Int("offered", len(options)),
		logging.Int("scanning", len(years)),
		logging.String("policy", d.cfg.Year),
	)

	d.advance(StateYearIterating)
	matched := false
	var links []CandidateLink
	for _, year := range years {
		if err := d.auto.SelectByText(ctx, selYearPicker, year); err != nil {
			return nil, &TimeoutError{Precondition: precondYearPicker, State: d.state, Cause: err}
		}
		if err := d.wait(ctx, precondTileLinks, selTileLinks); err != nil {
			return nil, err
		}
		d.advance(StateTilesListed)

		listed, err := d.auto.Links(ctx, selTileLinks)
		if err != nil {
			return nil, &TimeoutError{Precondition: precondTileLinks, State: d.state, Cause: err}
		}
		for _, link := range listed {
			if MatchesTile(link.Label, tile) {
				links = append(links, CandidateLink{Label: link.Label, URL: link.URL})
			}
		}
		if len(links) > 0 {
			matched = true
			d.logger.Info("tile listings matched",
				logging.String("year", year),
				logging.Int("links", len(links)),
			)
			break
		}
		d.logger.Debug("no matching listing for year", logging.String("year", year))
		d.state = StateYearIterating
	}

	if !matched {
		d.advance(StateExhausted)
		return nil, &NoMatchError{Tile: tile, YearsScanned: len(years)}
	}
	d.advance(StateMatched)
	return links, nil
}

func (d *Driver) yearsToScan(options []browser.SelectOption) []string {
	var offered []string
	for _, option := range options {
		if option.Text != "" {
			offered = append(offered, option.Text)
		}
	}
	switch d.cfg.Year {
	case "all":
		return offered
	case "latest":
		if len(offered) > 0 {
			return offered[:1]
		}
		return nil
	default:
		for _, year := range offered {
			if year == d.cfg.Year {
				return []string{year}
			}
		}
		return nil
	}
}

func (d *Driver) wait(ctx context.Context, precondition, selector string) error {
	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.StepTimeout)
	defer cancel()
	if err := d.auto.WaitVisible(waitCtx, selector); err != nil {
		return &TimeoutError{Precondition: precondition, State: d.state, Cause: err}
	}
	return nil
}

func (d *Driver) advance(next State) {
	d.state = next
	d.logger.Debug("workflow state", logging.String("state", next.String()))
}
