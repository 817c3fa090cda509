package rubric

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidRubric marks a rubric whose weights or keys fail validation.
	// Always a configuration defect, fatal before any assessment is processed.
	ErrInvalidRubric = errors.New("invalid rubric")

	// ErrInvalidMapping marks a mapping table that is malformed at load
	// time, e.g. a label mapped globally to two canonical keys.
	ErrInvalidMapping = errors.New("invalid mapping table")

	// ErrAmbiguousMapping marks a label that resolves to more than one
	// canonical key for a particular assessor. Fatal for that single
	// assessment only.
	ErrAmbiguousMapping = errors.New("ambiguous category mapping")
)
