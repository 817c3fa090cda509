package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/concord/internal/domain/aggregate"
	"github.com/okian/concord/internal/domain/model"
)

func TestSynthesize(t *testing.T) {
	Convey("Given stage outputs in arbitrary order", t, func() {
		canonical := []model.CanonicalAssessment{
			{SourceID: "b", Warnings: []string{"assessor b: score label \"Style\" dropped: no mapping entry"}},
			{SourceID: "a", Warnings: []string{"assessor a: score label \"Vibes\" dropped: no mapping entry"}},
		}
		exclusions := []model.Exclusion{
			{File: "z.json", Stage: "normalize", Reason: "ambiguous"},
			{File: "a.json", Stage: "ingest", Reason: "missing cost"},
			{File: "m.json", Stage: "ingest", Reason: "bad json"},
		}
		overall := 3.5
		scores := aggregate.Result{Overall: &overall}

		r := Synthesize(Inputs{
			Considered:  5,
			Canonical:   canonical,
			Scores:      scores,
			Exclusions:  exclusions,
		})

		Convey("Then provenance counts both sides of the cut", func() {
			So(r.Provenance.AssessmentsConsidered, ShouldEqual, 5)
			So(r.Provenance.AssessmentsIncluded, ShouldEqual, 2)
		})

		Convey("Then warnings and exclusions come out sorted", func() {
			So(r.Provenance.Warnings[0], ShouldStartWith, "assessor a:")
			So(r.Provenance.Warnings[1], ShouldStartWith, "assessor b:")

			So(r.Provenance.Exclusions[0].File, ShouldEqual, "a.json")
			So(r.Provenance.Exclusions[1].File, ShouldEqual, "m.json")
			So(r.Provenance.Exclusions[2].Stage, ShouldEqual, "normalize")
		})

		Convey("Then the input slice is not reordered in place", func() {
			So(exclusions[0].File, ShouldEqual, "z.json")
		})

		Convey("Then encoding is byte-stable", func() {
			first, err := r.Encode()
			So(err, ShouldBeNil)
			second, err := r.Encode()
			So(err, ShouldBeNil)
			So(cmp.Diff(string(first), string(second)), ShouldBeEmpty)
			So(string(first), ShouldContainSubstring, `"assessments_considered": 5`)
		})
	})
}
