package rubric_test

import (
	"errors"
	"testing"

	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/internal/domain/rubric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRubricValidate(t *testing.T) {
	Convey("Given a well-formed rubric", t, func() {
		r := rubric.Rubric{Categories: []model.RubricCategory{
			{Key: "security", Weight: 0.4},
			{Key: "correctness", Weight: 0.35},
			{Key: "maintainability", Weight: 0.25},
		}}

		Convey("Then validation passes", func() {
			So(r.Validate(), ShouldBeNil)
		})

		Convey("And lookups behave", func() {
			So(r.Has("security"), ShouldBeTrue)
			So(r.Has("style"), ShouldBeFalse)
			So(r.Weight("correctness"), ShouldEqual, 0.35)
			So(r.Weight("style"), ShouldEqual, 0)
			So(r.Keys(), ShouldResemble, []string{"correctness", "maintainability", "security"})
		})
	})

	Convey("Given rubrics violating invariants", t, func() {
		Convey("When weights do not sum to 1", func() {
			r := rubric.Rubric{Categories: []model.RubricCategory{
				{Key: "a", Weight: 0.5},
				{Key: "b", Weight: 0.6},
			}}
			So(errors.Is(r.Validate(), rubric.ErrInvalidRubric), ShouldBeTrue)
		})

		Convey("When a sum is off by less than epsilon", func() {
			r := rubric.Rubric{Categories: []model.RubricCategory{
				{Key: "a", Weight: 0.5},
				{Key: "b", Weight: 0.5 + 1e-9},
			}}
			So(r.Validate(), ShouldBeNil)
		})

		Convey("When a key is duplicated", func() {
			r := rubric.Rubric{Categories: []model.RubricCategory{
				{Key: "a", Weight: 0.5},
				{Key: "a", Weight: 0.5},
			}}
			So(errors.Is(r.Validate(), rubric.ErrInvalidRubric), ShouldBeTrue)
		})

		Convey("When a key is empty", func() {
			r := rubric.Rubric{Categories: []model.RubricCategory{
				{Key: "", Weight: 1},
			}}
			So(errors.Is(r.Validate(), rubric.ErrInvalidRubric), ShouldBeTrue)
		})

		Convey("When a weight is negative", func() {
			r := rubric.Rubric{Categories: []model.RubricCategory{
				{Key: "a", Weight: -0.5},
				{Key: "b", Weight: 1.5},
			}}
			So(errors.Is(r.Validate(), rubric.ErrInvalidRubric), ShouldBeTrue)
		})

		Convey("When the rubric is empty", func() {
			r := rubric.Rubric{}
			So(errors.Is(r.Validate(), rubric.ErrInvalidRubric), ShouldBeTrue)
		})
	})
}

func TestMapping(t *testing.T) {
	Convey("Given mapping entries", t, func() {
		Convey("When two global entries disagree on a label", func() {
			_, err := rubric.NewMapping([]rubric.MappingEntry{
				{From: "Security", To: "security"},
				{From: "Security", To: "correctness"},
			})
			So(errors.Is(err, rubric.ErrInvalidMapping), ShouldBeTrue)
		})

		Convey("When an entry has an empty side", func() {
			_, err := rubric.NewMapping([]rubric.MappingEntry{
				{From: "Security", To: ""},
			})
			So(errors.Is(err, rubric.ErrInvalidMapping), ShouldBeTrue)
		})

		Convey("When many labels map to one key", func() {
			m, err := rubric.NewMapping([]rubric.MappingEntry{
				{From: "Security", To: "security"},
				{From: "AppSec", To: "security"},
			})
			So(err, ShouldBeNil)

			key, ok, rerr := m.Resolve("a1", "AppSec")
			So(rerr, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(key, ShouldEqual, "security")
			So(m.Targets(), ShouldResemble, []string{"security"})
		})

		Convey("When no entry applies", func() {
			m, err := rubric.NewMapping([]rubric.MappingEntry{
				{From: "Security", To: "security"},
			})
			So(err, ShouldBeNil)

			_, ok, rerr := m.Resolve("a1", "Vibes")
			So(rerr, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When a scoped entry conflicts with a global one", func() {
			m, err := rubric.NewMapping([]rubric.MappingEntry{
				{From: "Quality", To: "correctness"},
				{From: "Quality", To: "maintainability", Source: "a2"},
			})
			So(err, ShouldBeNil)

			Convey("Then the untouched assessor resolves cleanly", func() {
				key, ok, rerr := m.Resolve("a1", "Quality")
				So(rerr, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(key, ShouldEqual, "correctness")
			})

			Convey("And the scoped assessor hits the ambiguity", func() {
				_, _, rerr := m.Resolve("a2", "Quality")
				So(errors.Is(rerr, rubric.ErrAmbiguousMapping), ShouldBeTrue)
			})
		})
	})
}
