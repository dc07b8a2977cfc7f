// Package rules implements the league's suspension triggers: yellow-card
// accumulation (rules 7.1 to 7.3) and the automatic red-card suspension.
package rules

import (
	"slices"

	"github.com/hashicorp/go-set/v2"

	"github.com/okian/cardwatch/internal/domain/model"
)

// RuleID names the rule a suspension was triggered under.
type RuleID string

// Suspension rules. Thresholds are fixed by the league and not configurable.
const (
	Rule71      RuleID = "7.1"
	Rule72      RuleID = "7.2"
	Rule73      RuleID = "7.3"
	RuleRedCard RuleID = "Red Card"
)

// Accumulation thresholds.
const (
	firstThreshold  = 3
	secondThreshold = 5
	thirdThreshold  = 7
)

// Trigger is a single point at which a suspension became owed.
type Trigger struct {
	Event    model.CardEvent `json:"event"`
	Rule     RuleID          `json:"rule"`
	Sequence int             `json:"sequence"` // 1-based position among qualifying yellows or reds
}

// RuleForYellow returns the rule the k-th qualifying yellow triggers, if any.
func RuleForYellow(k int) (RuleID, bool) {
	switch {
	case k == firstThreshold:
		return Rule71, true
	case k == secondThreshold:
		return Rule72, true
	case k >= thirdThreshold:
		return Rule73, true
	default:
		return "", false
	}
}

// ExpectedYellowTriggers is the closed form of the accumulation fold for n
// qualifying yellows.
func ExpectedYellowTriggers(n int) int {
	switch {
	case n < firstThreshold:
		return 0
	case n < secondThreshold:
		return 1
	case n < thirdThreshold:
		return 2
	default:
		return 2 + (n - thirdThreshold + 1) // one per card from the 7th
	}
}

// QualifyingYellows returns the yellows that count toward accumulation: all
// yellow cards except those from a game in which the same player was also
// sent off. Bench cards never accumulate. Output is chronological.
func QualifyingYellows(cards []model.CardEvent) []model.CardEvent {
	ejections := set.New[ejectionKey](0)
	for _, c := range cards {
		if c.IsRed() {
			ejections.Insert(ejectionKey{player: c.Player, game: c.GameID})
		}
	}
	out := make([]model.CardEvent, 0, len(cards))
	for _, c := range cards {
		if !c.IsYellow() || c.IsBench {
			continue
		}
		if ejections.Contains(ejectionKey{player: c.Player, game: c.GameID}) {
			continue
		}
		out = append(out, c)
	}
	return model.SortChronological(out)
}

// Reds returns the player's red cards in chronological order.
func Reds(cards []model.CardEvent) []model.CardEvent {
	out := make([]model.CardEvent, 0, len(cards))
	for _, c := range cards {
		if c.IsRed() && !c.IsBench {
			out = append(out, c)
		}
	}
	return model.SortChronological(out)
}

type ejectionKey struct {
	player string
	game   int64
}

// Evaluation is the outcome of replaying one player's history.
type Evaluation struct {
	YellowTriggers []Trigger `json:"yellow_triggers"`
	RedTriggers    []Trigger `json:"red_triggers"`
	Qualifying     int       `json:"qualifying_yellows"`
}

// ExpectedCount is the number of suspensions owed across both rule families.
func (e Evaluation) ExpectedCount() int {
	return len(e.YellowTriggers) + len(e.RedTriggers)
}

// Triggers merges both families chronologically; on the same game a yellow
// trigger sorts before a red one.
func (e Evaluation) Triggers() []Trigger {
	out := make([]Trigger, 0, e.ExpectedCount())
	out = append(out, e.YellowTriggers...)
	out = append(out, e.RedTriggers...)
	slices.SortStableFunc(out, func(a, b Trigger) int {
		return model.Chronological(a.Event, b.Event)
	})
	return out
}

// Evaluate replays qualifying yellows and reds through the trigger rules.
// Inputs are re-sorted chronologically so the result depends only on the set
// of cards; nil or empty input yields no triggers.
func Evaluate(yellows, reds []model.CardEvent) Evaluation {
	ys := model.SortChronological(yellows)
	return Evaluation{
		YellowTriggers: foldYellows(ys),
		RedTriggers:    foldReds(model.SortChronological(reds)),
		Qualifying:     len(ys),
	}
}

// foldYellows is a left fold over the ordered sequence; the accumulator is
// the running count, so the k-th card is only reached after all before it.
func foldYellows(ys []model.CardEvent) []Trigger {
	var out []Trigger
	for i, y := range ys {
		k := i + 1
		if rule, ok := RuleForYellow(k); ok {
			out = append(out, Trigger{Event: y, Rule: rule, Sequence: k})
		}
	}
	return out
}

func foldReds(rs []model.CardEvent) []Trigger {
	out := make([]Trigger, 0, len(rs))
	for i, r := range rs {
		out = append(out, Trigger{Event: r, Rule: RuleRedCard, Sequence: i + 1})
	}
	return out
}
