package services

import "context"

type contextKey string

const (
	tileKey    contextKey = "tile"
	stageKey   contextKey = "stage"
	attemptKey contextKey = "attempt"
)

// WithTile annotates context with the tile name being processed.
func WithTile(ctx context.Context, tile string) context.Context {
	if tile == "" {
		return ctx
	}
	return context.WithValue(ctx, tileKey, tile)
}

// TileFromContext extracts the tile name if present.
func TileFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(tileKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAttempt annotates context with the 1-based attempt number.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	if attempt <= 0 {
		return ctx
	}
	return context.WithValue(ctx, attemptKey, attempt)
}

// AttemptFromContext extracts the attempt number if present.
func AttemptFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(attemptKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}
