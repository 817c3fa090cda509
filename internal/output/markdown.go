package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/okian/concord/internal/report"
)

// MarkdownWriter renders a review-friendly markdown summary of the
// report, sections ordered from headline score down to provenance.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, r *report.ConsensusReport) error {
	fmt.Fprintf(w, "## Assessment Consensus\n\n")

	if r.Scores.Overall != nil {
		fmt.Fprintf(w, "**Overall: %.2f** (from %d of %d assessments)\n\n",
			*r.Scores.Overall,
			r.Provenance.AssessmentsIncluded,
			r.Provenance.AssessmentsConsidered)
	} else {
		fmt.Fprintf(w, "**Overall: no rated categories** (from %d of %d assessments)\n\n",
			r.Provenance.AssessmentsIncluded,
			r.Provenance.AssessmentsConsidered)
	}

	fmt.Fprintf(w, "| Category | Consensus | Spread | Flags |\n")
	fmt.Fprintf(w, "|----------|-----------|--------|-------|\n")
	for _, c := range r.Scores.Categories {
		score := "insufficient data"
		if c.Consensus != nil {
			score = fmt.Sprintf("%.2f", *c.Consensus)
		}
		spread, flags := "-", ""
		if s := r.Discrepancy.Signal(c.Key); s != nil {
			spread = fmt.Sprintf("var %.2f", s.Variance)
			if s.Contested {
				flags = ":warning: contested"
			}
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n", c.Key, score, spread, flags)
	}
	fmt.Fprintln(w)

	if len(r.Discrepancy.FalseConfidence) > 0 {
		fmt.Fprintf(w, "### False confidence\n\n")
		for _, fc := range r.Discrepancy.FalseConfidence {
			fmt.Fprintf(w, "- **%s** scored %.2f despite a verified %s finding from %s: %s",
				fc.Category, fc.Consensus, fc.Finding.Severity, fc.ReportedBy, fc.Finding.Description)
			if len(fc.Inflators) > 0 {
				fmt.Fprintf(w, " (high scores from %s)", strings.Join(fc.Inflators, ", "))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if len(r.Discrepancy.Clusters) > 0 {
		fmt.Fprintf(w, "### Findings\n\n")
		for _, c := range r.Discrepancy.Clusters {
			fmt.Fprintf(w, "<details>\n<summary>%s [%s, %s] — corroborated by %d</summary>\n\n",
				c.Representative.Description, c.Severity, c.Category, c.Corroboration)
			for _, mem := range c.Members {
				fmt.Fprintf(w, "- %s: %s", mem.SourceID, mem.Finding.Description)
				if cit := mem.Finding.Citation; cit != nil {
					fmt.Fprintf(w, " (`%s:%d-%d`, %s)", cit.Path, cit.Lines.Start, cit.Lines.End, cit.Validity)
				}
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "\n</details>\n\n")
		}
	}

	if len(r.Efficiency) > 0 {
		fmt.Fprintf(w, "### Cost efficiency\n\n")
		fmt.Fprintf(w, "| Rank | Assessor | Cost | Verified issues | Cost/issue |\n")
		fmt.Fprintf(w, "|------|----------|------|-----------------|------------|\n")
		for _, e := range r.Efficiency {
			perIssue := fmt.Sprintf("%.4f", e.CostPerValidIssue)
			if e.NoYield {
				perIssue = "no yield"
			}
			fmt.Fprintf(w, "| %d | %s | %.4f | %d | %s |\n", e.Rank, e.SourceID, e.Cost, e.IssueYield, perIssue)
		}
		fmt.Fprintln(w)
	}

	if len(r.Provenance.Exclusions) > 0 {
		fmt.Fprintf(w, "### Excluded assessments\n\n")
		for _, ex := range r.Provenance.Exclusions {
			ref := ex.SourceID
			if ref == "" {
				ref = ex.File
			}
			fmt.Fprintf(w, "- %s (%s): %s\n", ref, ex.Stage, ex.Reason)
		}
		fmt.Fprintln(w)
	}

	if len(r.Provenance.Warnings) > 0 {
		fmt.Fprintf(w, "<details>\n<summary>%d normalization warnings</summary>\n\n", len(r.Provenance.Warnings))
		for _, warn := range r.Provenance.Warnings {
			fmt.Fprintf(w, "- %s\n", warn)
		}
		fmt.Fprintf(w, "\n</details>\n")
	}

	return nil
}
