package services

import (
	"errors"
	"fmt"
	"strings"

	"tilefetch/internal/runstore"
)

var (
	ErrExternalTool = errors.New("external tool error")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrTimeout      = errors.New("timeout")
	ErrTransient    = errors.New("transient failure")
	ErrNoMatch      = errors.New("no match")
	ErrConversion   = errors.New("conversion error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps an attempt error to the run-store status the batch
// runner should persist once retries are exhausted. Conversion failures keep
// the downloaded raster, so the tile is partial rather than failed.
func FailureStatus(err error) runstore.Status {
	if errors.Is(err, ErrConversion) {
		return runstore.StatusPartial
	}
	return runstore.StatusFailed
}

// Retryable reports whether the retry supervisor should start a fresh
// attempt after this error. Everything is retried up to the bound except
// conversion failures, where the expensive transfer already succeeded.
func Retryable(err error) bool {
	return !errors.Is(err, ErrConversion)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
