// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer optional file and environment on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// WorkerCount bounds concurrent citation resolutions (and open
	// file handles against the snapshot).
	WorkerCount int `koanf:"worker_count"`

	// CitationTimeoutMS is the hard per-citation resolution timeout.
	CitationTimeoutMS int `koanf:"citation_timeout_ms"`

	// MaxScore is the top of the scoring range; scores live in
	// [0, MaxScore].
	MaxScore float64 `koanf:"max_score"`

	// ContestedVariance flags a category as contested when the sample
	// variance of contributed scores exceeds it. Zero derives the
	// default from MaxScore.
	ContestedVariance float64 `koanf:"contested_variance"`

	// ConfidenceThreshold is the absolute consensus score at or above
	// which a category counts as high-confidence. Zero derives
	// 80% of MaxScore.
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`

	// SimilarityThreshold is the Jaccard similarity at or above which
	// two finding descriptions merge into one cluster.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// AssessorWeights maps assessor ids to aggregation weights.
	AssessorWeights map[string]float64 `koanf:"assessor_weights"`

	// DefaultAssessorWeight is used for assessors not listed above.
	DefaultAssessorWeight float64 `koanf:"default_assessor_weight"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		WorkerCount:           runtime.NumCPU(),
		CitationTimeoutMS:     2000,
		MaxScore:              5,
		SimilarityThreshold:   0.5,
		AssessorWeights:       map[string]float64{},
		DefaultAssessorWeight: 1.0,
	}
}
