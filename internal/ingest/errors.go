package ingest

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrMalformedAssessment marks one unreadable or invalid assessment
	// record. Never fatal for the run; the record is excluded and the
	// exclusion recorded.
	ErrMalformedAssessment = errors.New("malformed assessment")

	// ErrInputDir marks an input directory that cannot be read at all.
	ErrInputDir = errors.New("input directory unavailable")
)
