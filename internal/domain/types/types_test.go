package types_test

import (
	"fmt"
	"testing"

	"github.com/okian/cardwatch/internal/domain/compliance"
	"github.com/okian/cardwatch/internal/domain/rules"
	"github.com/okian/cardwatch/internal/domain/scoring"
	types "github.com/okian/cardwatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummarize(t *testing.T) {
	Convey("Given a report where printable evidence was accepted", t, func() {
		rep := compliance.Report{
			ExpectedCount:   3,
			ServedCount:     1,
			PrintableCount:  2,
			EffectiveServed: 2,
			UnservedCount:   1,
		}

		Convey("When summarizing", func() {
			sum := types.Summarize(rep)

			Convey("Then served is the effective count", func() {
				So(sum.Expected, ShouldEqual, 3)
				So(sum.Served, ShouldEqual, 2)
				So(sum.Unserved, ShouldEqual, 1)
				So(sum.FullyCompliant, ShouldBeFalse)
			})
		})
	})
}

func TestNewPlayerRow(t *testing.T) {
	Convey("Given a player score and report", t, func() {
		s := scoring.Score{
			Name:    "Jo Park",
			Score:   8.5,
			Tier:    scoring.HighRisk,
			Yellows: 4,
			Reds:    1,
			Buckets: map[scoring.Bucket]scoring.Tally{scoring.HardRed: {Count: 1, Weight: 4.5}},
		}
		rep := compliance.Report{
			Status:         rules.ClassifyYellowCount(4),
			ExpectedCount:  2,
			FullyCompliant: false,
			UnservedCount:  2,
		}

		Convey("When building the row", func() {
			row := types.NewPlayerRow(1, "Harbour United", s, rep)

			Convey("Then it carries score, status and compliance", func() {
				So(row.Rank, ShouldEqual, 1)
				So(row.Player, ShouldEqual, "Jo Park")
				So(row.Team, ShouldEqual, "Harbour United")
				So(row.Tier, ShouldEqual, scoring.HighRisk)
				So(row.Status, ShouldEqual, rules.TierWarning72)
				So(row.Triggered, ShouldBeFalse)
				So(row.NextThresholdDelta, ShouldEqual, 1)
				So(row.Breakdown[scoring.HardRed].Weight, ShouldEqual, 4.5)
				So(row.Compliance.Unserved, ShouldEqual, 2)
			})
		})
	})
}

func TestNewPlayerRowTriggered(t *testing.T) {
	Convey("Given reports across the yellow bands", t, func() {
		s := scoring.Score{Name: "Jo Park"}
		cases := map[int]bool{0: false, 2: false, 3: true, 4: false, 5: true, 6: false, 7: true, 9: true}

		for count, want := range cases {
			Convey(fmt.Sprintf("Then %d yellows marks triggered=%t", count, want), func() {
				rep := compliance.Report{Status: rules.ClassifyYellowCount(count)}
				So(types.NewPlayerRow(1, "", s, rep).Triggered, ShouldEqual, want)
			})
		}
	})
}

func TestNewTeamRow(t *testing.T) {
	Convey("Given a team score", t, func() {
		s := scoring.Score{Name: "Harbour United", Score: 1.4, Tier: scoring.Elevated, GamesPlayed: 5, Yellows: 5}

		Convey("Then the row mirrors it", func() {
			row := types.NewTeamRow(3, s)
			So(row.Rank, ShouldEqual, 3)
			So(row.Team, ShouldEqual, "Harbour United")
			So(row.Score, ShouldEqual, 1.4)
			So(row.GamesPlayed, ShouldEqual, 5)
			So(row.Yellows, ShouldEqual, 5)
		})
	})
}
