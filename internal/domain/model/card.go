// Package model contains domain models passed between layers.
package model

import (
	"cmp"
	"slices"
	"time"
)

// CardType is the colour of a misconduct card.
type CardType string

// Card types as recorded on gamesheets.
const (
	Yellow CardType = "Yellow"
	Red    CardType = "Red"
)

// BenchPlayer is the player name gamesheets use for cards issued to a bench.
const BenchPlayer = "Bench Penalty"

// CardEvent is one misconduct record. Immutable once read from the store.
type CardEvent struct {
	ID           string    `json:"id"`
	Player       string    `json:"player"` // BenchPlayer for bench cards
	Team         string    `json:"team"`
	Division     string    `json:"division"`
	DivisionType string    `json:"division_type,omitempty"` // e.g. "mens", "womens", "coed"
	GameID       int64     `json:"game_id"`
	GameDate     time.Time `json:"game_date"`
	Type         CardType  `json:"card_type"`
	Reason       string    `json:"reason"`   // free text from the gamesheet
	Category     Category  `json:"category"` // classified once at read time
	IsBench      bool      `json:"is_bench"`
}

// IsYellow reports whether the card is a caution.
func (c CardEvent) IsYellow() bool { return c.Type == Yellow }

// IsRed reports whether the card is a sending-off.
func (c CardEvent) IsRed() bool { return c.Type == Red }

// SuspensionKind distinguishes authoritative and gamesheet-derived evidence.
type SuspensionKind string

// Suspension record kinds.
const (
	Served    SuspensionKind = "served"
	Printable SuspensionKind = "printable"
)

// SuspensionRecord is evidence that a player sat out a game.
type SuspensionRecord struct {
	ID       string         `json:"id"`
	Player   string         `json:"player"`
	Team     string         `json:"team"`
	Division string         `json:"division"`
	GameID   int64          `json:"game_id"`
	GameDate time.Time      `json:"game_date"`
	Kind     SuspensionKind `json:"kind"`
}

// Game is a scheduled league fixture.
type Game struct {
	ID           int64
	Division     string
	DivisionType string
	Number       string
	Date         time.Time
	HomeTeam     string
	AwayTeam     string
}

// Involves reports whether team played in the game.
func (g Game) Involves(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// Chronological orders cards by game date, ties broken by game id.
func Chronological(a, b CardEvent) int {
	if c := a.GameDate.Compare(b.GameDate); c != 0 {
		return c
	}
	return cmp.Compare(a.GameID, b.GameID)
}

// SortChronological returns a chronologically ordered copy of cards.
// The input slice is left untouched.
func SortChronological(cards []CardEvent) []CardEvent {
	out := slices.Clone(cards)
	slices.SortStableFunc(out, Chronological)
	return out
}
