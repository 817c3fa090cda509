// Package model contains domain models passed between layers.
package model

import "time"

// Severity classifies how serious a finding is.
type Severity string

// Known severity levels, ordered from least to most serious.
const (
	SeverityInfo     Severity = "informational"
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// SeverityRank returns a numeric rank for ordering (higher = more severe).
// Unknown severities rank below informational.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Actionable reports whether a severity is major or critical. Only
// actionable findings count toward issue yield and false-confidence flags.
func (s Severity) Actionable() bool {
	return s == SeverityMajor || s == SeverityCritical
}

// KnownSeverity reports whether s is one of the defined levels.
func KnownSeverity(s Severity) bool {
	return SeverityRank(s) > 0
}

// Validity is the derived verification state of a citation. It is never
// set by the ingesting assessor.
type Validity string

const (
	// ValidityValid means the cited location exists and the quoted text
	// was confirmed in the snapshot.
	ValidityValid Validity = "valid"
	// ValidityInvalid means the cited path or line range does not exist
	// in the snapshot.
	ValidityInvalid Validity = "invalid"
	// ValidityUnknown means the claim could not be confirmed or denied:
	// no snapshot, no quoted text, an I/O failure, or a timeout.
	ValidityUnknown Validity = "unknown"
)

// LineRange is an inclusive 1-based line span.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Citation is a claimed evidence location backing a finding.
type Citation struct {
	Path  string    `json:"path"`
	Lines LineRange `json:"lines"`
	Quote string    `json:"quote,omitempty"`

	// Validity is computed by the evidence validator, never ingested.
	Validity Validity `json:"validity,omitempty"`
}

// Finding is one discrete observation inside an assessment. Category is
// an assessor-local label until normalization re-keys it onto the
// canonical rubric.
type Finding struct {
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Category    string    `json:"category"`
	Citation    *Citation `json:"citation,omitempty"`
}

// Assessment is one assessor's full evaluation of one artifact snapshot.
// Immutable once ingested.
type Assessment struct {
	SourceID       string             `json:"source_id"`
	Cost           float64            `json:"cost"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Findings       []Finding          `json:"findings"`
	Timestamp      time.Time          `json:"timestamp"`
}

// RubricCategory is one canonical scoring dimension. Weights across the
// whole rubric sum to 1 within a small epsilon.
type RubricCategory struct {
	Key    string  `json:"key" koanf:"key"`
	Weight float64 `json:"weight" koanf:"weight"`
}

// CanonicalAssessment is an Assessment whose scores and finding
// categories have been re-keyed onto the canonical rubric. A canonical
// key absent from Scores is an abstention, never a zero.
type CanonicalAssessment struct {
	SourceID  string
	Cost      float64
	Scores    map[string]float64
	Findings  []Finding
	Warnings  []string
	Timestamp time.Time
}

// Abstained reports whether the assessor left the given canonical
// category unrated.
func (c CanonicalAssessment) Abstained(key string) bool {
	_, ok := c.Scores[key]
	return !ok
}

// Exclusion records one assessment dropped from a run, so a
// reduced-confidence report is never mistaken for a complete one.
type Exclusion struct {
	SourceID string `json:"source_id,omitempty"`
	File     string `json:"file,omitempty"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}
