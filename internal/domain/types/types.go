// Package types contains the ranking rows returned to the presentation layer
package types

import (
	"github.com/okian/cardwatch/internal/domain/compliance"
	"github.com/okian/cardwatch/internal/domain/rules"
	"github.com/okian/cardwatch/internal/domain/scoring"
)

// ComplianceSummary is the short form of a compliance report shown in rankings
type ComplianceSummary struct {
	Expected       int  `json:"expected"`
	Served         int  `json:"served"`
	Unserved       int  `json:"unserved"`
	FullyCompliant bool `json:"fully_compliant"`
}

// Summarize shortens a report. Served is the effective count under the
// report's policy.
func Summarize(rep compliance.Report) ComplianceSummary {
	return ComplianceSummary{
		Expected:       rep.ExpectedCount,
		Served:         rep.EffectiveServed,
		Unserved:       rep.UnservedCount,
		FullyCompliant: rep.FullyCompliant,
	}
}

// PlayerRow is one row of the player danger ranking
type PlayerRow struct {
	Rank               int                              `json:"rank"`
	Player             string                           `json:"player"`
	Team               string                           `json:"team"`
	Score              float64                          `json:"score"`
	Tier               scoring.RiskTier                 `json:"tier"`
	Yellows            int                              `json:"yellows"`
	Reds               int                              `json:"reds"`
	Status             rules.Tier                       `json:"status"`
	Triggered          bool                             `json:"suspension_triggered"`
	NextThresholdDelta int                              `json:"next_threshold_delta"`
	Breakdown          map[scoring.Bucket]scoring.Tally `json:"breakdown"`
	Compliance         ComplianceSummary                `json:"compliance"`
}

// TeamRow is one row of the team discipline ranking
type TeamRow struct {
	Rank        int                              `json:"rank"`
	Team        string                           `json:"team"`
	Score       float64                          `json:"score"`
	Tier        scoring.RiskTier                 `json:"tier"`
	GamesPlayed int                              `json:"games_played"`
	Yellows     int                              `json:"yellows"`
	Reds        int                              `json:"reds"`
	Breakdown   map[scoring.Bucket]scoring.Tally `json:"breakdown"`
}

// NewPlayerRow builds a row from a player score and its compliance report.
// Status follows the report's qualifying-yellow count.
func NewPlayerRow(rank int, team string, s scoring.Score, rep compliance.Report) PlayerRow {
	return PlayerRow{
		Rank:               rank,
		Player:             s.Name,
		Team:               team,
		Score:              s.Score,
		Tier:               s.Tier,
		Yellows:            s.Yellows,
		Reds:               s.Reds,
		Status:             rep.Status.Tier,
		Triggered:          rep.Status.Tier.Triggered(),
		NextThresholdDelta: rep.Status.NextThresholdDelta,
		Breakdown:          s.Buckets,
		Compliance:         Summarize(rep),
	}
}

// NewTeamRow builds a row from a team score.
func NewTeamRow(rank int, s scoring.Score) TeamRow {
	return TeamRow{
		Rank:        rank,
		Team:        s.Name,
		Score:       s.Score,
		Tier:        s.Tier,
		GamesPlayed: s.GamesPlayed,
		Yellows:     s.Yellows,
		Reds:        s.Reds,
		Breakdown:   s.Buckets,
	}
}

// TeamScore is a team's per-game score, compared with its division when one
// was requested.
type TeamScore struct {
	scoring.Score
	Division          string   `json:"division,omitempty"`
	DivisionAverage   *float64 `json:"division_average,omitempty"`
	VsDivisionAverage *float64 `json:"vs_division_average,omitempty"`
}
