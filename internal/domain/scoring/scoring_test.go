package scoring_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/scoring"
)

func yellow(reason string) model.CardEvent {
	return model.CardEvent{Player: "P", Team: "Eastside", Type: model.Yellow, Reason: reason}
}

func red(reason string) model.CardEvent {
	return model.CardEvent{Player: "P", Team: "Eastside", Type: model.Red, Reason: reason}
}

func bench(c model.CardEvent) model.CardEvent {
	c.Player = model.BenchPlayer
	c.IsBench = true
	return c
}

func sumBuckets(s scoring.Score) float64 {
	var total float64
	for _, t := range s.Buckets {
		total += t.Weight
	}
	return total
}

func TestScoreTeam(t *testing.T) {
	Convey("Given three procedural and two behavioural yellows over five games", t, func() {
		cards := []model.CardEvent{
			yellow("Delay of restart"),
			yellow("Failure to respect distance"),
			yellow("Entering the field without permission"),
			yellow("Unsporting behaviour"),
			yellow("Unsporting behavior - simulation"),
		}

		Convey("When scoring the team", func() {
			s := scoring.ScoreTeam("Eastside", cards, 5)

			Convey("Then the score is 1.40 and elevated", func() {
				So(s.TotalWeight, ShouldAlmostEqual, 7.0, 1e-9)
				So(s.Score, ShouldEqual, 1.40)
				So(s.Tier, ShouldEqual, scoring.Elevated)
				So(s.Buckets[scoring.ProceduralYellow].Count, ShouldEqual, 3)
				So(s.Buckets[scoring.BehaviouralYellow].Count, ShouldEqual, 2)
				So(s.Yellows, ShouldEqual, 5)
			})
		})
	})

	Convey("Given violent conduct, abuse, a bench yellow and two dissents over five games", t, func() {
		cards := []model.CardEvent{
			red("Violent Conduct"),
			red("Abuse of an Official"),
			bench(yellow("Delay of restart")),
			yellow("Dissent by word"),
			yellow("Dissent by action"),
		}

		Convey("When scoring the team", func() {
			s := scoring.ScoreTeam("Eastside", cards, 5)

			Convey("Then the score is 4.50 and high-risk", func() {
				So(s.TotalWeight, ShouldAlmostEqual, 22.5, 1e-9)
				So(s.Score, ShouldEqual, 4.50)
				So(s.Tier, ShouldEqual, scoring.HighRisk)
				So(s.Buckets[scoring.HardRed].Weight, ShouldAlmostEqual, 16.0, 1e-9)
				So(s.Buckets[scoring.BenchYellow].Weight, ShouldAlmostEqual, 1.5, 1e-9)
				So(s.Categories[model.ViolentConduct].Count, ShouldEqual, 1)
				So(s.Reds, ShouldEqual, 2)
			})

			Convey("And the breakdown sums back to the total", func() {
				So(sumBuckets(s), ShouldAlmostEqual, s.TotalWeight, 1e-9)
				So(math.Abs(float64(s.GamesPlayed)*s.Score-s.TotalWeight), ShouldBeLessThanOrEqualTo, 0.005*5)
			})
		})
	})

	Convey("Given a team with cards but no games recorded", t, func() {
		s := scoring.ScoreTeam("Ghost", []model.CardEvent{red("")}, 0)

		Convey("Then it divides by one", func() {
			So(s.Score, ShouldEqual, 4.0)
			So(s.Tier, ShouldEqual, scoring.HighRisk)
		})
	})

	Convey("Given no cards", t, func() {
		s := scoring.ScoreTeam("Quiet", nil, 10)

		Convey("Then the team is clean", func() {
			So(s.Score, ShouldEqual, 0)
			So(s.Tier, ShouldEqual, scoring.Clean)
		})
	})
}

func TestScorePlayer(t *testing.T) {
	Convey("Given a player's cards", t, func() {
		cards := []model.CardEvent{yellow("Dissent"), yellow("Persistent infringement"), red("Second caution")}

		Convey("Then the score is the raw total rounded to one place", func() {
			s := scoring.ScorePlayer("P", cards)
			So(s.Score, ShouldEqual, 7.0)
			So(s.Tier, ShouldEqual, scoring.ModerateRisk)
			So(s.Buckets[scoring.SoftRed].Count, ShouldEqual, 1)
		})
	})
}

func TestBucketOf(t *testing.T) {
	Convey("Given cards of each kind", t, func() {
		So(scoring.BucketOf(yellow("Delay")), ShouldEqual, scoring.ProceduralYellow)
		So(scoring.BucketOf(yellow("no reason given")), ShouldEqual, scoring.ProceduralYellow)
		So(scoring.BucketOf(yellow("Persistent infringement")), ShouldEqual, scoring.BehaviouralYellow)
		So(scoring.BucketOf(red("Two yellow cards")), ShouldEqual, scoring.SoftRed)
		So(scoring.BucketOf(red("DOGSO")), ShouldEqual, scoring.HardRed)
		So(scoring.BucketOf(red("")), ShouldEqual, scoring.HardRed)
		So(scoring.BucketOf(bench(yellow("Dissent"))), ShouldEqual, scoring.BenchYellow)
		So(scoring.BucketOf(bench(red("Second caution"))), ShouldEqual, scoring.BenchRed)
	})
}

func TestTiers(t *testing.T) {
	Convey("Given team scores at the boundaries", t, func() {
		So(scoring.TeamTier(2.51), ShouldEqual, scoring.HighRisk)
		So(scoring.TeamTier(2.5), ShouldEqual, scoring.Elevated)
		So(scoring.TeamTier(1.0), ShouldEqual, scoring.Elevated)
		So(scoring.TeamTier(0.99), ShouldEqual, scoring.Clean)
	})

	Convey("Given player scores at the boundaries", t, func() {
		So(scoring.PlayerTier(7.1), ShouldEqual, scoring.HighRisk)
		So(scoring.PlayerTier(7.0), ShouldEqual, scoring.ModerateRisk)
		So(scoring.PlayerTier(3.0), ShouldEqual, scoring.ModerateRisk)
		So(scoring.PlayerTier(2.9), ShouldEqual, scoring.LowRisk)
	})
}

func TestRound(t *testing.T) {
	Convey("Given halfway values", t, func() {
		So(scoring.Round(1.005, 2), ShouldEqual, 1.01)
		So(scoring.Round(2.25, 1), ShouldEqual, 2.3)
		So(scoring.Round(-2.25, 1), ShouldEqual, -2.3)
		So(scoring.Round(7.0/3.0, 2), ShouldEqual, 2.33)
	})
}

func TestDivisionAverage(t *testing.T) {
	Convey("Given teams in a division", t, func() {
		teams := []scoring.TeamWeight{
			{Team: "A", Weight: 10, GamesPlayed: 5},
			{Team: "B", Weight: 3, GamesPlayed: 3},
			{Team: "C", Weight: 4, GamesPlayed: 0},
		}

		Convey("Then the average is the mean per-game score", func() {
			So(scoring.DivisionAverage(teams), ShouldEqual, 2.33)
		})

		Convey("And no teams averages to zero", func() {
			So(scoring.DivisionAverage(nil), ShouldEqual, 0)
		})
	})
}

func TestRanking(t *testing.T) {
	Convey("Given unsorted scores with ties", t, func() {
		scores := []scoring.Score{
			{Name: "Cole", Score: 3.5},
			{Name: "Abe", Score: 9.0},
			{Name: "Bea", Score: 3.5},
			{Name: "Dee", Score: 1.0},
		}

		Convey("When sorting", func() {
			scoring.Sort(scores)

			Convey("Then ties break by ascending name", func() {
				names := []string{scores[0].Name, scores[1].Name, scores[2].Name, scores[3].Name}
				So(names, ShouldResemble, []string{"Abe", "Bea", "Cole", "Dee"})
			})

			Convey("And equal scores share a dense rank", func() {
				So(scoring.DenseRanks(scores), ShouldResemble, []int{1, 2, 2, 3})
			})
		})

		Convey("And an empty slice has no ranks", func() {
			So(scoring.DenseRanks(nil), ShouldBeEmpty)
		})
	})
}
