// Package costquality correlates each assessor's declared cost with its
// verified-finding yield to rank cost-effectiveness. Only findings that
// survived evidence validation count: raw finding volume is not a
// quality proxy.
package costquality

import (
	"sort"

	"github.com/okian/concord/internal/domain/model"
)

// Efficiency is one assessor's cost-effectiveness record.
type Efficiency struct {
	SourceID string  `json:"source_id"`
	Cost     float64 `json:"cost"`
	// IssueYield counts findings with validity=valid and severity
	// major or critical.
	IssueYield int `json:"issue_yield"`
	// CostPerValidIssue is cost / max(yield, 1). Meaningless when
	// NoYield is set; ranking then falls back to last place.
	CostPerValidIssue float64 `json:"cost_per_valid_issue"`
	NoYield           bool    `json:"no_yield"`
	Rank              int     `json:"rank"`
}

// Rank orders assessors by ascending cost per valid issue. Assessors
// with zero verified major/critical findings carry a no-yield marker and
// always rank last, whatever their cost — including zero.
func Rank(cas []model.CanonicalAssessment) []Efficiency {
	out := make([]Efficiency, 0, len(cas))
	for _, ca := range cas {
		e := Efficiency{
			SourceID: ca.SourceID,
			Cost:     ca.Cost,
		}
		for _, f := range ca.Findings {
			if !f.Severity.Actionable() {
				continue
			}
			if f.Citation == nil || f.Citation.Validity != model.ValidityValid {
				continue
			}
			e.IssueYield++
		}
		if e.IssueYield == 0 {
			e.NoYield = true
			e.CostPerValidIssue = ca.Cost
		} else {
			e.CostPerValidIssue = ca.Cost / float64(e.IssueYield)
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.NoYield != b.NoYield {
			return !a.NoYield
		}
		if a.CostPerValidIssue != b.CostPerValidIssue {
			return a.CostPerValidIssue < b.CostPerValidIssue
		}
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		return a.SourceID < b.SourceID
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
