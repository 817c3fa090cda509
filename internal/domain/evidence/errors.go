package evidence

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrPathNotFound marks a cited path that does not exist in the
	// snapshot. Resolution maps it to invalid.
	ErrPathNotFound = errors.New("path not found in snapshot")

	// ErrSnapshotRoot marks a snapshot root that cannot be opened at all.
	ErrSnapshotRoot = errors.New("snapshot root unavailable")
)
