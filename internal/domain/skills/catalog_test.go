package skills_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/formcheck/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the embedded catalog", t, func() {
		c := skills.Default()

		Convey("Then it should contain every supported skill", func() {
			So(c.Len(), ShouldEqual, 14)
			for _, id := range []string{
				"elbow_lever", "planche_lean", "tuck_planche", "advanced_tuck_planche",
				"straddle_planche", "full_planche", "tuck_front_lever",
				"advanced_tuck_front_lever", "straddle_front_lever", "full_front_lever",
				"tuck_back_lever", "advanced_tuck_back_lever", "straddle_back_lever",
				"full_back_lever",
			} {
				_, ok := c.Lookup(id)
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then tuck planche should keep its ranges in order", func() {
			s, ok := c.Lookup("tuck_planche")
			So(ok, ShouldBeTrue)
			So(s.Name, ShouldEqual, "Tuck Planche")
			So(s.Family, ShouldEqual, "planche")
			So(len(s.Checks), ShouldEqual, 4)
			So(s.Checks[0].Name, ShouldEqual, "Shoulder Angle")
			So(s.Checks[0].Range, ShouldResemble, skills.Range{Min: 30, Max: 60})
			So(s.Checks[1].Name, ShouldEqual, "Elbow Angle")
			So(s.Checks[1].Points, ShouldResemble, [3]skills.Landmark{skills.LeftShoulder, skills.LeftElbow, skills.LeftWrist})
			So(s.Checks[3].Range, ShouldResemble, skills.Range{Min: 30, Max: 60})
		})

		Convey("Then straddle variants should measure leg abduction at the mid hip", func() {
			s, _ := c.Lookup("straddle_planche")
			last := s.Checks[len(s.Checks)-1]
			So(last.Name, ShouldEqual, "Leg Abduction")
			So(last.Points[1], ShouldEqual, skills.MidHip)
		})

		Convey("When mutating a looked up skill", func() {
			s, _ := c.Lookup("full_planche")
			s.Checks[0].Range.Min = 0

			Convey("Then the catalog should be unaffected", func() {
				again, _ := c.Lookup("full_planche")
				So(again.Checks[0].Range.Min, ShouldEqual, 50)
			})
		})

		Convey("When looking up an unknown skill", func() {
			_, ok := c.Lookup("one_arm_handstand")

			Convey("Then it should not be found", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When walking a progression", func() {
			next, ok := c.Next("tuck_planche")
			So(ok, ShouldBeTrue)
			So(next.ID, ShouldEqual, "advanced_tuck_planche")

			_, ok = c.Next("full_planche")
			So(ok, ShouldBeFalse)

			next, ok = c.Next("straddle_back_lever")
			So(ok, ShouldBeTrue)
			So(next.ID, ShouldEqual, "full_back_lever")
		})

		Convey("When asking which skills open a progression", func() {
			So(c.Entry("planche_lean"), ShouldBeTrue)
			So(c.Entry("elbow_lever"), ShouldBeTrue)
			So(c.Entry("tuck_front_lever"), ShouldBeTrue)
			So(c.Entry("tuck_planche"), ShouldBeFalse)
			So(c.Entry("full_back_lever"), ShouldBeFalse)
			So(c.Entry("unknown"), ShouldBeFalse)
		})
	})
}

func TestRange(t *testing.T) {
	Convey("Given a range", t, func() {
		r := skills.Range{Min: 175, Max: 180}

		Convey("Then both bounds should be inclusive", func() {
			So(r.Contains(175), ShouldBeTrue)
			So(r.Contains(180), ShouldBeTrue)
			So(r.Contains(174.999), ShouldBeFalse)
			So(r.Contains(180.001), ShouldBeFalse)
		})

		Convey("Then it should render without trailing zeros", func() {
			So(r.String(), ShouldEqual, "175-180")
			So(skills.Range{Min: 12.5, Max: 30}.String(), ShouldEqual, "12.5-30")
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given catalog YAML", t, func() {
		Convey("When it is valid", func() {
			c, err := skills.Parse([]byte(`
skills:
  - id: l_sit
    name: L-Sit
    checks:
      - name: Hip Angle
        points: [left_shoulder, LEFT_HIP, LEFT_KNEE]
        min: 80
        max: 100
`))
			So(err, ShouldBeNil)

			Convey("Then defaults should be applied", func() {
				s, ok := c.Lookup("l_sit")
				So(ok, ShouldBeTrue)
				So(s.Level, ShouldEqual, skills.LevelBeginner)
				So(s.Family, ShouldEqual, "l_sit")
				So(s.Checks[0].Points[0], ShouldEqual, skills.LeftShoulder)
			})
		})

		cases := map[string]string{
			"an empty document": `skills: []`,
			"an uppercase id": `
skills:
  - id: Tuck
    checks:
      - {name: A, points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE], min: 0, max: 10}`,
			"two landmarks": `
skills:
  - id: tuck
    checks:
      - {name: A, points: [LEFT_HIP, LEFT_KNEE], min: 0, max: 10}`,
			"an unknown landmark": `
skills:
  - id: tuck
    checks:
      - {name: A, points: [LEFT_HIP, NOSE, LEFT_ANKLE], min: 0, max: 10}`,
			"an inverted range": `
skills:
  - id: tuck
    checks:
      - {name: A, points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE], min: 40, max: 10}`,
			"a range above 180": `
skills:
  - id: tuck
    checks:
      - {name: A, points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE], min: 170, max: 190}`,
			"duplicate check names": `
skills:
  - id: tuck
    checks:
      - {name: A, points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE], min: 0, max: 10}
      - {name: A, points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE], min: 0, max: 10}`,
			"duplicate skill ids": `
skills:
  - id: tuck
    checks:
      - {name: A, points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE], min: 0, max: 10}
  - id: tuck
    checks:
      - {name: A, points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE], min: 0, max: 10}`,
			"a skill without checks": `
skills:
  - id: tuck
    checks: []`,
		}
		for name, doc := range cases {
			Convey("When it has "+name, func() {
				c, err := skills.Parse([]byte(doc))

				Convey("Then it should be rejected", func() {
					So(c, ShouldBeNil)
					So(errors.Is(err, skills.ErrInvalidCatalog), ShouldBeTrue)
				})
			})
		}

		Convey("When it is not YAML", func() {
			_, err := skills.Parse([]byte("skills: [unterminated"))

			Convey("Then it should fail to load", func() {
				So(errors.Is(err, skills.ErrLoadCatalog), ShouldBeTrue)
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a catalog file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		err := os.WriteFile(path, []byte(`
skills:
  - id: tuck_planche
    name: Tuck Planche
    family: planche
    level: intermediate
    checks:
      - name: Knee Angle
        points: [LEFT_HIP, LEFT_KNEE, LEFT_ANKLE]
        min: 20
        max: 50
`), 0o600)
		So(err, ShouldBeNil)

		Convey("When loading it", func() {
			c, err := skills.Load(context.Background(), path)

			Convey("Then the overridden ranges should be used", func() {
				So(err, ShouldBeNil)
				s, ok := c.Lookup("tuck_planche")
				So(ok, ShouldBeTrue)
				So(s.Checks[0].Range, ShouldResemble, skills.Range{Min: 20, Max: 50})
			})
		})

		Convey("When the file does not exist", func() {
			_, err := skills.Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))

			Convey("Then it should return a load error", func() {
				So(errors.Is(err, skills.ErrLoadCatalog), ShouldBeTrue)
			})
		})
	})
}
