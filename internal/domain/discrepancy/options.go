package discrepancy

import (
	"github.com/okian/concord/pkg/logger"
)

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithMaxScore sets the top of the scoring range (the bottom is 0). The
// derived contested and high-confidence defaults scale with it.
func WithMaxScore(maxScore float64) Option {
	return func(d *Detector) {
		if maxScore > 0 {
			d.maxScore = maxScore
		}
	}
}

// WithVarianceThreshold overrides the contested variance threshold.
func WithVarianceThreshold(v float64) Option {
	return func(d *Detector) {
		if v > 0 {
			d.varianceThreshold = v
		}
	}
}

// WithHighConfidenceThreshold overrides the absolute consensus score at
// or above which a category counts as high-confidence.
func WithHighConfidenceThreshold(v float64) Option {
	return func(d *Detector) {
		if v > 0 {
			d.highThreshold = v
		}
	}
}

// WithSimilarityThreshold sets the Jaccard similarity at or above which
// two finding descriptions cluster together.
func WithSimilarityThreshold(v float64) Option {
	return func(d *Detector) {
		if v > 0 && v <= 1 {
			d.similarity = v
		}
	}
}

// WithLogger sets a custom logger for the detector.
func WithLogger(log logger.Logger) Option {
	return func(d *Detector) {
		if log != nil {
			d.log = log
		}
	}
}
