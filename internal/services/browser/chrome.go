package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Option configures the Chrome session.
type Option func(*chromeConfig)

type chromeConfig struct {
	headless bool
	binary   string
	width    int
	height   int
}

// WithHeadless toggles headless operation.
func WithHeadless(headless bool) Option {
	return func(c *chromeConfig) { c.headless = headless }
}

// WithBinary overrides the Chrome executable path.
func WithBinary(binary string) Option {
	return func(c *chromeConfig) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithWindowSize overrides the default 1920x1080 window.
func WithWindowSize(width, height int) Option {
	return func(c *chromeConfig) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// Chrome drives a dedicated Chrome process through the DevTools protocol.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// New launches a Chrome process and attaches a fresh automation session.
// The caller must Close the session to release the process.
func New(ctx context.Context, opts ...Option) (*Chrome, error) {
	cfg := chromeConfig{headless: true, width: 1920, height: 1080}
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", cfg.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.width, cfg.height),
	)
	if cfg.binary != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.binary))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Start the process eagerly so session setup failures surface here, not
	// on the first workflow step.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Chrome{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

// Close tears down the session and the underlying browser process.
func (c *Chrome) Close() error {
	err := chromedp.Cancel(c.ctx)
	c.cancel()
	c.allocCancel()
	return err
}

// run executes actions on the browser context while honoring the caller's
// deadline and cancellation.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(runCtx, deadline)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

func (c *Chrome) WaitVisible(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (c *Chrome) SelectByValue(ctx context.Context, selector, value string) error {
	return c.run(ctx, selectExpr(selector, "value", value))
}

func (c *Chrome) SelectByText(ctx context.Context, selector, text string) error {
	return c.run(ctx, selectExpr(selector, "text", text))
}

// selectExpr picks a select option by value or visible text and fires the
// change event the portal's scripts listen for.
func selectExpr(selector, mode, want string) chromedp.Action {
	expr := fmt.Sprintf(`(() => {
		const control = document.querySelector(%q);
		if (!control) return false;
		for (const option of control.options) {
			const key = %q === "value" ? option.value : option.text.trim();
			if (key === %q) {
				control.value = option.value;
				control.dispatchEvent(new Event("change", {bubbles: true}));
				return true;
			}
		}
		return false;
	})()`, selector, mode, want)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var selected bool
		if err := chromedp.Evaluate(expr, &selected).Do(ctx); err != nil {
			return err
		}
		if !selected {
			return fmt.Errorf("option %q not present in %s", want, selector)
		}
		return nil
	})
}

func (c *Chrome) Upload(ctx context.Context, selector, path string) error {
	return c.run(ctx, chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery))
}

func (c *Chrome) Options(ctx context.Context, selector string) ([]SelectOption, error) {
	expr := fmt.Sprintf(`Array.from((document.querySelector(%q) || {options: []}).options)
		.map(o => ({value: o.value, text: o.text.trim()}))`, selector)
	var options []SelectOption
	if err := c.run(ctx, chromedp.Evaluate(expr, &options)); err != nil {
		return nil, err
	}
	return options, nil
}

func (c *Chrome) Links(ctx context.Context, selector string) ([]Link, error) {
	expr := fmt.Sprintf(`Array.from(document.querySelectorAll(%q))
		.map(a => ({label: a.textContent.trim(), url: a.href}))`, selector)
	var links []Link
	if err := c.run(ctx, chromedp.Evaluate(expr, &links)); err != nil {
		return nil, err
	}
	return links, nil
}

var _ Automator = (*Chrome)(nil)
