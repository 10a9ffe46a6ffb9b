package portal

import (
	"errors"
	"fmt"

	"tilefetch/internal/services"
)

// TimeoutError reports a workflow precondition that did not hold within the
// step timeout.
type TimeoutError struct {
	Precondition string
	State        State
	Cause        error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("portal workflow timeout in state %s: %s", e.State, e.Precondition)
}

func (e *TimeoutError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return services.ErrTimeout
}

// Is lets errors.Is match both the concrete type and the timeout marker.
func (e *TimeoutError) Is(target error) bool {
	return target == services.ErrTimeout || errors.Is(e.Cause, target)
}

// NoMatchError reports that no year's results list contained a label
// matching the requested tile.
type NoMatchError struct {
	Tile         string
	YearsScanned int
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no portal listing matched tile %q across %d year(s)", e.Tile, e.YearsScanned)
}

func (e *NoMatchError) Unwrap() error { return services.ErrNoMatch }
