// Package report assembles the outputs of every pipeline stage into one
// consensus report. Synthesis is pure: the same inputs always produce
// the same report, byte for byte once encoded.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/okian/concord/internal/domain/aggregate"
	"github.com/okian/concord/internal/domain/costquality"
	"github.com/okian/concord/internal/domain/discrepancy"
	"github.com/okian/concord/internal/domain/model"
)

// Provenance records how many assessments the report rests on and what
// was dropped on the way. A report computed from 3 of 5 records says so.
type Provenance struct {
	AssessmentsConsidered int               `json:"assessments_considered"`
	AssessmentsIncluded   int               `json:"assessments_included"`
	Exclusions            []model.Exclusion `json:"exclusions,omitempty"`
	Warnings              []string          `json:"warnings,omitempty"`
}

// ConsensusReport is the single artifact a run produces.
type ConsensusReport struct {
	Scores      aggregate.Result         `json:"scores"`
	Discrepancy discrepancy.Result       `json:"discrepancy"`
	Efficiency  []costquality.Efficiency `json:"efficiency,omitempty"`
	Provenance  Provenance               `json:"provenance"`
}

// Inputs collects the per-stage outputs synthesis merges.
type Inputs struct {
	Considered  int
	Canonical   []model.CanonicalAssessment
	Scores      aggregate.Result
	Discrepancy discrepancy.Result
	Efficiency  []costquality.Efficiency
	Exclusions  []model.Exclusion
}

// Synthesize merges stage outputs into a report. Warnings gathered
// during normalization and exclusions from every stage are sorted so
// input order cannot leak into the output.
func Synthesize(in Inputs) *ConsensusReport {
	var warnings []string
	for _, ca := range in.Canonical {
		warnings = append(warnings, ca.Warnings...)
	}
	sort.Strings(warnings)

	exclusions := make([]model.Exclusion, len(in.Exclusions))
	copy(exclusions, in.Exclusions)
	sort.Slice(exclusions, func(i, j int) bool {
		a, b := exclusions[i], exclusions[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.SourceID < b.SourceID
	})

	return &ConsensusReport{
		Scores:      in.Scores,
		Discrepancy: in.Discrepancy,
		Efficiency:  in.Efficiency,
		Provenance: Provenance{
			AssessmentsConsidered: in.Considered,
			AssessmentsIncluded:   len(in.Canonical),
			Exclusions:            exclusions,
			Warnings:              warnings,
		},
	}
}

// Encode renders the report as indented JSON. Struct fields encode in
// declaration order and every slice is pre-sorted upstream, so the
// bytes are stable across runs.
func (r *ConsensusReport) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}
