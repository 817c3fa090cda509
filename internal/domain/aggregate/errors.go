package aggregate

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvariantViolation marks a canonical score keyed outside the
	// rubric. This is a configuration or mapping defect, not a data
	// defect, and aborts the run rather than being papered over.
	ErrInvariantViolation = errors.New("aggregation invariant violation")
)
