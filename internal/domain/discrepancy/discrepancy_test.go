package discrepancy_test

import (
	"context"
	"testing"

	"github.com/okian/concord/internal/domain/aggregate"
	"github.com/okian/concord/internal/domain/discrepancy"
	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/internal/domain/rubric"
	. "github.com/smartystreets/goconvey/convey"
)

func securityRubric() rubric.Rubric {
	return rubric.Rubric{Categories: []model.RubricCategory{
		{Key: "security", Weight: 0.6},
		{Key: "correctness", Weight: 0.4},
	}}
}

func validCitation() *model.Citation {
	return &model.Citation{
		Path:     "auth/login.go",
		Lines:    model.LineRange{Start: 4, End: 4},
		Quote:    "SELECT * FROM users",
		Validity: model.ValidityValid,
	}
}

func TestContestedSignals(t *testing.T) {
	Convey("Given a detector with a 0-5 scoring range", t, func() {
		d := discrepancy.NewDetector(discrepancy.WithMaxScore(5))
		g := aggregate.NewAggregator(securityRubric())
		ctx := context.Background()

		Convey("When assessors score 5, 5 and 2 in security", func() {
			cas := []model.CanonicalAssessment{
				{SourceID: "a1", Scores: map[string]float64{"security": 5}},
				{SourceID: "a2", Scores: map[string]float64{"security": 5}},
				{SourceID: "a3", Scores: map[string]float64{"security": 2}},
			}
			agg, err := g.Aggregate(cas)
			So(err, ShouldBeNil)

			res := d.Detect(ctx, cas, agg)
			sig := res.Signal("security")

			Convey("Then the category is contested with variance 3", func() {
				So(sig, ShouldNotBeNil)
				So(sig.Variance, ShouldAlmostEqual, 3, 1e-9)
				So(sig.Contested, ShouldBeTrue)
			})
		})

		Convey("When assessors broadly agree", func() {
			cas := []model.CanonicalAssessment{
				{SourceID: "a1", Scores: map[string]float64{"security": 4}},
				{SourceID: "a2", Scores: map[string]float64{"security": 5}},
			}
			agg, err := g.Aggregate(cas)
			So(err, ShouldBeNil)

			res := d.Detect(ctx, cas, agg)
			So(res.Signal("security").Contested, ShouldBeFalse)
		})

		Convey("When only one assessor contributed", func() {
			cas := []model.CanonicalAssessment{
				{SourceID: "a1", Scores: map[string]float64{"security": 5}},
			}
			agg, err := g.Aggregate(cas)
			So(err, ShouldBeNil)

			res := d.Detect(ctx, cas, agg)

			Convey("Then contested is always false: no signal to disagree with", func() {
				So(res.Signal("security").Contested, ShouldBeFalse)
				So(res.Signal("security").Contributors, ShouldEqual, 1)
			})
		})
	})
}

func TestFalseConfidence(t *testing.T) {
	Convey("Given a detector with default thresholds over 0-5", t, func() {
		d := discrepancy.NewDetector(discrepancy.WithMaxScore(5))
		g := aggregate.NewAggregator(securityRubric())
		ctx := context.Background()

		Convey("When a high consensus masks a verified critical finding", func() {
			cas := []model.CanonicalAssessment{
				{SourceID: "a1", Scores: map[string]float64{"security": 5}},
				{SourceID: "a2", Scores: map[string]float64{"security": 5}},
				{
					SourceID: "a3",
					Scores:   map[string]float64{"security": 2},
					Findings: []model.Finding{{
						Description: "SQL injection in login handler",
						Severity:    model.SeverityCritical,
						Category:    "security",
						Citation:    validCitation(),
					}},
				},
			}
			agg, err := g.Aggregate(cas)
			So(err, ShouldBeNil)

			res := d.Detect(ctx, cas, agg)

			Convey("Then security is flagged naming the inflating assessors", func() {
				So(res.FalseConfidence, ShouldHaveLength, 1)
				fc := res.FalseConfidence[0]
				So(fc.Category, ShouldEqual, "security")
				So(fc.ReportedBy, ShouldEqual, "a3")
				So(fc.Inflators, ShouldResemble, []string{"a1", "a2"})
				So(fc.Finding.Severity, ShouldEqual, model.SeverityCritical)
			})
		})

		Convey("When the only evidence is unknown or invalid", func() {
			for _, validity := range []model.Validity{model.ValidityUnknown, model.ValidityInvalid} {
				cas := []model.CanonicalAssessment{
					{SourceID: "a1", Scores: map[string]float64{"security": 5}},
					{
						SourceID: "a2",
						Scores:   map[string]float64{"security": 5},
						Findings: []model.Finding{{
							Description: "possible injection",
							Severity:    model.SeverityCritical,
							Category:    "security",
							Citation: &model.Citation{
								Path:     "auth/login.go",
								Lines:    model.LineRange{Start: 4},
								Validity: validity,
							},
						}},
					},
				}
				agg, err := g.Aggregate(cas)
				So(err, ShouldBeNil)

				res := d.Detect(ctx, cas, agg)

				Convey("Then no flag fires for validity="+string(validity), func() {
					So(res.FalseConfidence, ShouldBeEmpty)
				})
			}
		})

		Convey("When the verified finding is only minor", func() {
			cas := []model.CanonicalAssessment{
				{SourceID: "a1", Scores: map[string]float64{"security": 5}},
				{
					SourceID: "a2",
					Scores:   map[string]float64{"security": 5},
					Findings: []model.Finding{{
						Description: "variable shadowing",
						Severity:    model.SeverityMinor,
						Category:    "security",
						Citation:    validCitation(),
					}},
				},
			}
			agg, err := g.Aggregate(cas)
			So(err, ShouldBeNil)

			res := d.Detect(ctx, cas, agg)
			So(res.FalseConfidence, ShouldBeEmpty)
		})

		Convey("When the consensus is below the threshold", func() {
			cas := []model.CanonicalAssessment{
				{SourceID: "a1", Scores: map[string]float64{"security": 3}},
				{
					SourceID: "a2",
					Scores:   map[string]float64{"security": 3},
					Findings: []model.Finding{{
						Description: "SQL injection",
						Severity:    model.SeverityCritical,
						Category:    "security",
						Citation:    validCitation(),
					}},
				},
			}
			agg, err := g.Aggregate(cas)
			So(err, ShouldBeNil)

			res := d.Detect(ctx, cas, agg)
			So(res.FalseConfidence, ShouldBeEmpty)
		})
	})
}
