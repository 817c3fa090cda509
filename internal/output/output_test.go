package output

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/concord/internal/domain/aggregate"
	"github.com/okian/concord/internal/domain/costquality"
	"github.com/okian/concord/internal/domain/discrepancy"
	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/internal/report"
)

func sampleReport() *report.ConsensusReport {
	security, overall := 4.33, 4.13
	return report.Synthesize(report.Inputs{
		Considered: 3,
		Canonical: []model.CanonicalAssessment{
			{SourceID: "a1"}, {SourceID: "a2"},
		},
		Scores: aggregate.Result{
			Categories: []aggregate.CategoryConsensus{
				{Key: "correctness", InsufficientData: true},
				{Key: "security", Consensus: &security},
			},
			Overall: &overall,
		},
		Discrepancy: discrepancy.Result{
			Signals: []discrepancy.CategorySignal{
				{Key: "security", Variance: 3.0, Contributors: 3, Contested: true},
			},
			FalseConfidence: []discrepancy.FalseConfidenceFlag{
				{
					Category:   "security",
					Consensus:  4.33,
					Finding:    model.Finding{Description: "sql injection in login", Severity: model.SeverityCritical, Category: "security"},
					ReportedBy: "a3",
					Inflators:  []string{"a1", "a2"},
				},
			},
		},
		Efficiency: []costquality.Efficiency{
			{SourceID: "a1", Cost: 0.15, IssueYield: 3, CostPerValidIssue: 0.05, Rank: 1},
			{SourceID: "a2", Cost: 8.80, NoYield: true, CostPerValidIssue: 8.80, Rank: 2},
		},
		Exclusions: []model.Exclusion{
			{File: "bad.json", Stage: "ingest", Reason: "missing cost"},
		},
	})
}

func TestGetWriter(t *testing.T) {
	Convey("Given a format name", t, func() {
		Convey("json and markdown resolve", func() {
			for _, format := range []string{"json", "markdown"} {
				w, err := GetWriter(format)
				So(err, ShouldBeNil)
				So(w, ShouldNotBeNil)
			}
		})

		Convey("anything else is rejected", func() {
			_, err := GetWriter("sarif")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestJSONWriter(t *testing.T) {
	Convey("Given a synthesized report", t, func() {
		var buf bytes.Buffer
		err := (&JSONWriter{}).Write(&buf, sampleReport())

		Convey("Then the output round-trips as JSON", func() {
			So(err, ShouldBeNil)

			var parsed report.ConsensusReport
			So(json.Unmarshal(buf.Bytes(), &parsed), ShouldBeNil)
			So(parsed.Provenance.AssessmentsConsidered, ShouldEqual, 3)
			So(parsed.Scores.Categories, ShouldHaveLength, 2)
			So(*parsed.Scores.Overall, ShouldAlmostEqual, 4.13, 1e-9)
		})
	})
}

func TestMarkdownWriter(t *testing.T) {
	Convey("Given a synthesized report", t, func() {
		var buf bytes.Buffer
		err := (&MarkdownWriter{}).Write(&buf, sampleReport())
		So(err, ShouldBeNil)
		md := buf.String()

		Convey("Then the headline names the inclusion ratio", func() {
			So(md, ShouldContainSubstring, "from 2 of 3 assessments")
		})

		Convey("Then contested categories and unrated ones are visible", func() {
			So(md, ShouldContainSubstring, "contested")
			So(md, ShouldContainSubstring, "insufficient data")
		})

		Convey("Then the false-confidence section names the offender and inflators", func() {
			So(md, ShouldContainSubstring, "sql injection in login")
			So(md, ShouldContainSubstring, "from a3")
			So(md, ShouldContainSubstring, "a1, a2")
		})

		Convey("Then the efficiency table marks no-yield assessors", func() {
			So(md, ShouldContainSubstring, "no yield")
		})

		Convey("Then exclusions are listed", func() {
			So(md, ShouldContainSubstring, "bad.json (ingest): missing cost")
		})
	})
}
