package cli

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/concord/internal/config"
)

func TestGenerateAssessment(t *testing.T) {
	Convey("Given generated assessments", t, func() {
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			a := generateAssessment(i)

			So(seen[a.SourceID], ShouldBeFalse)
			seen[a.SourceID] = true
			So(a.Cost, ShouldBeGreaterThanOrEqualTo, 0)

			for label, score := range a.CategoryScores {
				So(score, ShouldBeBetweenOrEqual, 0, 5)
				So(label, ShouldNotBeEmpty)
			}
			for _, f := range a.Findings {
				So(f.Description, ShouldNotBeEmpty)
				So(f.Category, ShouldNotBeEmpty)
			}
		}
	})
}

func TestFixtureConfigsLoad(t *testing.T) {
	Convey("Given the embedded fixture rubric and mapping", t, func() {
		dir := t.TempDir()
		rubricPath := filepath.Join(dir, "rubric.yaml")
		mappingPath := filepath.Join(dir, "mapping.yaml")
		So(os.WriteFile(rubricPath, []byte(fixtureRubric), 0o600), ShouldBeNil)
		So(os.WriteFile(mappingPath, []byte(fixtureMapping), 0o600), ShouldBeNil)

		Convey("Then they pass the same validation the run command applies", func() {
			r, err := config.LoadRubric(rubricPath)
			So(err, ShouldBeNil)
			So(r.Keys(), ShouldResemble, []string{"correctness", "maintainability", "performance", "security"})

			m, err := config.LoadMapping(mappingPath, r)
			So(err, ShouldBeNil)
			So(m.Targets(), ShouldContain, "maintainability")
		})
	})
}
