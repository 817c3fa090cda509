package app

import "errors"

// ErrNoAssessments means every considered record was excluded before
// aggregation; no consensus can be computed.
var ErrNoAssessments = errors.New("no valid assessments")
