package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tilefetch/internal/logging"
	"tilefetch/internal/services"
)

// Task names one transfer: a discovered link and where it lands.
type Task struct {
	URL  string
	Dest string
}

// Result reports how a task finished.
type Result struct {
	Path    string
	Bytes   int64
	Skipped bool
}

// ProgressUpdate reports transfer progress. Total is -1 when the server
// declares no content length.
type ProgressUpdate struct {
	Received int64
	Total    int64
}

// Error carries the failed URL and the HTTP status or transport reason.
type Error struct {
	URL    string
	Status int
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("download %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("download %s: %s", e.URL, e.Reason)
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return services.ErrTransient
}

// Is lets errors.Is match the transient marker alongside the cause chain.
func (e *Error) Is(target error) bool { return target == services.ErrTransient }

// Option configures the client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds a whole transfer. Zero means no bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// Client performs sequential streamed downloads.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient constructs a download client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{},
		logger:     logging.NewComponentLogger(logger, "download"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Fetch streams task.URL to task.Dest. An existing destination returns a
// skipped result with zero network requests. The body lands in a .part file
// renamed into place on success, so a torn transfer never looks complete.
func (c *Client) Fetch(ctx context.Context, task Task, progress func(ProgressUpdate)) (Result, error) {
	if info, err := os.Stat(task.Dest); err == nil && !info.IsDir() {
		c.logger.Info("destination exists, skipping",
			logging.String("dest", task.Dest),
			logging.Int64("bytes", info.Size()),
		)
		return Result{Path: task.Dest, Bytes: info.Size(), Skipped: true}, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return Result{}, &Error{URL: task.URL, Reason: "build request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &Error{URL: task.URL, Reason: "transport failure", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &Error{URL: task.URL, Status: resp.StatusCode}
	}

	if dir := filepath.Dir(task.Dest); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create destination directory: %w", err)
		}
	}

	partPath := task.Dest + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return Result{}, fmt.Errorf("create %s: %w", partPath, err)
	}

	written, err := io.Copy(out, newProgressReader(resp.Body, resp.ContentLength, progress))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(partPath)
		return Result{}, &Error{URL: task.URL, Reason: "stream body", Cause: err}
	}
	if err := os.Rename(partPath, task.Dest); err != nil {
		_ = os.Remove(partPath)
		return Result{}, fmt.Errorf("finalize %s: %w", task.Dest, err)
	}

	c.logger.Info("download complete",
		logging.String("dest", task.Dest),
		logging.Int64("bytes", written),
	)
	return Result{Path: task.Dest, Bytes: written}, nil
}

type progressReader struct {
	inner    io.Reader
	total    int64
	received int64
	report   func(ProgressUpdate)
}

func newProgressReader(inner io.Reader, total int64, report func(ProgressUpdate)) io.Reader {
	if report == nil {
		return inner
	}
	if total <= 0 {
		total = -1
	}
	return &progressReader{inner: inner, total: total, report: report}
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.received += int64(n)
		r.report(ProgressUpdate{Received: r.received, Total: r.total})
	}
	return n, err
}
