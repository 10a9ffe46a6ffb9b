package gdal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures gdal_translate progress ticks.
type ProgressUpdate struct {
	Percent float64
}

// Client defines raster conversion behaviour.
type Client interface {
	Convert(ctx context.Context, inputPath, outputPath string, progress func(ProgressUpdate)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithBlockSize overrides the internal tile block size.
func WithBlockSize(size int) Option {
	return func(c *CLI) {
		if size > 0 {
			c.blockSize = size
		}
	}
}

// WithCompression overrides the COG compression profile.
func WithCompression(compression string) Option {
	return func(c *CLI) {
		if compression != "" {
			c.compression = compression
		}
	}
}

// CLI wraps the gdal_translate command-line converter.
type CLI struct {
	binary      string
	blockSize   int
	compression string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "gdal_translate", blockSize: 512, compression: "DEFLATE"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert runs gdal_translate with the COG driver, streaming the monitor
// output for progress ticks.
func (c *CLI) Convert(ctx context.Context, inputPath, outputPath string, progress func(ProgressUpdate)) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-of", "COG",
		"-co", "COMPRESS=" + c.compression,
		"-co", fmt.Sprintf("BLOCKSIZE=%d", c.blockSize),
		"-co", "OVERVIEWS=AUTO",
		inputPath, outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	// The monitor prints "0...10...20 ... 100 - done."; every numeric token
	// is a percentage tick.
	scanner := bufio.NewScanner(stdout)
	scanner.Split(scanTicks)
	for scanner.Scan() {
		token := scanner.Text()
		percent, err := strconv.Atoi(token)
		if err != nil || percent < 0 || percent > 100 {
			continue
		}
		if progress != nil {
			progress(ProgressUpdate{Percent: float64(percent)})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s output: %w", c.binary, err)
	}

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%s failed: %s: %w", c.binary, detail, err)
		}
		return fmt.Errorf("%s failed: %w", c.binary, err)
	}
	return nil
}

// scanTicks splits the monitor stream into runs of digits.
func scanTicks(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && !isDigit(data[start]) {
		start++
	}
	end := start
	for end < len(data) && isDigit(data[end]) {
		end++
	}
	if end < len(data) || (atEOF && end > start) {
		return end, data[start:end], nil
	}
	if atEOF {
		return len(data), nil, bufio.ErrFinalToken
	}
	return start, nil, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

var _ Client = (*CLI)(nil)
