package runstore

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a tile acquisition job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFetching  Status = "fetching"
	StatusCompleted Status = "completed"
	// StatusPartial marks tiles whose download succeeded but whose
	// conversion failed; the raw raster is kept without a COG.
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusCompleted,
	StatusPartial,
	StatusFailed,
}

// ValidStatus reports whether value is a known job status.
func ValidStatus(value Status) bool {
	for _, status := range allStatuses {
		if status == value {
			return true
		}
	}
	return false
}

// Job represents one tile's acquisition record.
type Job struct {
	ID           int64
	Tile         string
	Product      string
	Status       Status
	Attempts     int
	Downloaded   int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetFailed marks the job failed with a trimmed error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = strings.TrimSpace(message)
}

// Terminal reports whether the job reached a final state.
func (j *Job) Terminal() bool {
	switch j.Status {
	case StatusCompleted, StatusPartial, StatusFailed:
		return true
	default:
		return false
	}
}

// Summary describes aggregated job counts per lifecycle state.
type Summary struct {
	Total     int
	Pending   int
	Fetching  int
	Completed int
	Partial   int
	Failed    int
}
