// Package scoring aggregates severity weights into player and team discipline
// scores and buckets them into risk tiers.
package scoring

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/severity"
)

// Rounding precision per score kind.
const (
	playerPlaces = 1
	teamPlaces   = 2
)

// Risk-tier thresholds.
const (
	teamHighRisk   = 2.5
	teamElevated   = 1.0
	playerHighRisk = 7.0
	playerModerate = 3.0
)

// Base weights at or below these split a colour into its lighter bucket.
const (
	proceduralCeiling = 1.0
	softRedCeiling    = 3.0
)

// RiskTier is the coarse band a score falls in.
type RiskTier string

// Risk tiers. Teams use high/elevated/clean, players high/moderate/low.
const (
	HighRisk     RiskTier = "high-risk"
	Elevated     RiskTier = "elevated"
	Clean        RiskTier = "clean"
	ModerateRisk RiskTier = "moderate-risk"
	LowRisk      RiskTier = "low-risk"
)

// Bucket is one of the six severity buckets.
type Bucket string

// Severity buckets. Bench cards never share a bucket with player cards.
const (
	ProceduralYellow  Bucket = "procedural_yellow"
	BehaviouralYellow Bucket = "behavioural_yellow"
	SoftRed           Bucket = "soft_red"
	HardRed           Bucket = "hard_red"
	BenchYellow       Bucket = "bench_yellow"
	BenchRed          Bucket = "bench_red"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{ProceduralYellow, BehaviouralYellow, SoftRed, HardRed, BenchYellow, BenchRed}

// Tally counts cards and their summed weight.
type Tally struct {
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

func (t Tally) add(w float64) Tally {
	return Tally{Count: t.Count + 1, Weight: t.Weight + w}
}

// Score is a severity score with its breakdown.
type Score struct {
	Name        string                   `json:"name"`
	TotalWeight float64                  `json:"total_weight"`
	Score       float64                  `json:"score"`
	GamesPlayed int                      `json:"games_played,omitempty"`
	Tier        RiskTier                 `json:"tier"`
	Yellows     int                      `json:"yellows"`
	Reds        int                      `json:"reds"`
	Buckets     map[Bucket]Tally         `json:"buckets"`
	Categories  map[model.Category]Tally `json:"categories"`
}

// BucketOf places a card in its severity bucket.
func BucketOf(c model.CardEvent) Bucket {
	base := severity.BaseWeight(severity.CategoryOf(c))
	switch {
	case c.IsRed() && c.IsBench:
		return BenchRed
	case c.IsRed() && base <= softRedCeiling:
		return SoftRed
	case c.IsRed():
		return HardRed
	case c.IsBench:
		return BenchYellow
	case base <= proceduralCeiling:
		return ProceduralYellow
	default:
		return BehaviouralYellow
	}
}

// Aggregate sums the weight of every card into the total, its bucket and its
// category. Card order does not matter.
func Aggregate(name string, cards []model.CardEvent) Score {
	s := Score{
		Name:       name,
		Buckets:    make(map[Bucket]Tally, len(Buckets)),
		Categories: make(map[model.Category]Tally),
	}
	for _, c := range cards {
		w := severity.Weight(c)
		s.TotalWeight += w
		b := BucketOf(c)
		s.Buckets[b] = s.Buckets[b].add(w)
		cat := severity.CategoryOf(c)
		s.Categories[cat] = s.Categories[cat].add(w)
		if c.IsRed() {
			s.Reds++
		} else {
			s.Yellows++
		}
	}
	return s
}

// ScorePlayer is the raw weighted total, unnormalised, rounded to one place.
func ScorePlayer(name string, cards []model.CardEvent) Score {
	s := Aggregate(name, cards)
	s.Score = Round(s.TotalWeight, playerPlaces)
	s.Tier = PlayerTier(s.Score)
	return s
}

// ScoreTeam normalises the weighted total by games played (at least one) and
// rounds to two places.
func ScoreTeam(name string, cards []model.CardEvent, gamesPlayed int) Score {
	s := Aggregate(name, cards)
	s.GamesPlayed = gamesPlayed
	s.Score = Round(PerGame(s.TotalWeight, gamesPlayed), teamPlaces)
	s.Tier = TeamTier(s.Score)
	return s
}

// PerGame divides weight by max(gamesPlayed, 1).
func PerGame(weight float64, gamesPlayed int) float64 {
	return weight / float64(max(gamesPlayed, 1))
}

// TeamTier buckets a rounded team score.
func TeamTier(score float64) RiskTier {
	switch {
	case score > teamHighRisk:
		return HighRisk
	case score >= teamElevated:
		return Elevated
	default:
		return Clean
	}
}

// PlayerTier buckets a rounded player score.
func PlayerTier(score float64) RiskTier {
	switch {
	case score > playerHighRisk:
		return HighRisk
	case score >= playerModerate:
		return ModerateRisk
	default:
		return LowRisk
	}
}

// Round rounds half away from zero on the shortest decimal form of x.
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// TeamWeight is one team's bulk-aggregated weight.
type TeamWeight struct {
	Team        string  `json:"team"`
	Weight      float64 `json:"weight"`
	GamesPlayed int     `json:"games_played"`
}

// DivisionAverage is the mean per-game score across teams, rounded to two
// places. No teams yields zero.
func DivisionAverage(teams []TeamWeight) float64 {
	if len(teams) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, t := range teams {
		sum = sum.Add(decimal.NewFromFloat(PerGame(t.Weight, t.GamesPlayed)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(teams)))).Round(teamPlaces).InexactFloat64()
}

// Sort orders scores by score descending, then name ascending.
func Sort(scores []Score) {
	slices.SortStableFunc(scores, func(a, b Score) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})
}

// DenseRanks returns ranks for already sorted scores. Equal scores share a
// rank and the next distinct score takes the following rank.
func DenseRanks(scores []Score) []int {
	ranks := make([]int, len(scores))
	rank := 0
	for i := range scores {
		if i == 0 || scores[i].Score != scores[i-1].Score {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}
