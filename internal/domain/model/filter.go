package model

import "strings"

// Mode selects how yellow accumulation is scoped for a player.
type Mode string

// Evaluation modes.
const (
	Combined    Mode = "combined"
	PerDivision Mode = "per_division"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == Combined || m == PerDivision
}

// Scope is the evaluation scope for one player.
type Scope struct {
	Mode     Mode
	Division string // only used with PerDivision
}

// Divisional reports whether records must be restricted to one division.
// An empty division key degrades to combined.
func (s Scope) Divisional() bool {
	return s.Mode == PerDivision && s.Division != ""
}

// Filter narrows card sets for scoring and rankings. Zero value matches all.
type Filter struct {
	Division     string
	DivisionType string
	Team         string // case-insensitive substring
	MinYellows   *int
	MaxYellows   *int
}

// Matches reports whether a card falls inside the division and team filters.
// Yellow bounds apply to aggregated rows, not single cards.
func (f Filter) Matches(c CardEvent) bool {
	if f.Division != "" && c.Division != f.Division {
		return false
	}
	if f.DivisionType != "" && c.DivisionType != f.DivisionType {
		return false
	}
	if f.Team != "" && !strings.Contains(strings.ToLower(c.Team), strings.ToLower(f.Team)) {
		return false
	}
	return true
}

// YellowsInRange applies the optional yellow-count bounds.
func (f Filter) YellowsInRange(n int) bool {
	if f.MinYellows != nil && n < *f.MinYellows {
		return false
	}
	if f.MaxYellows != nil && n > *f.MaxYellows {
		return false
	}
	return true
}

// Subject picks whose cards a card set holds. Both empty means the whole
// league; Player and Team are exact names.
type Subject struct {
	Player string
	Team   string
}

// ForPlayer scopes a card set to one player.
func ForPlayer(name string) Subject { return Subject{Player: name} }

// ForTeam scopes a card set to one team.
func ForTeam(name string) Subject { return Subject{Team: name} }

// Matches reports whether the card belongs to the subject.
func (s Subject) Matches(c CardEvent) bool {
	if s.Player != "" && c.Player != s.Player {
		return false
	}
	if s.Team != "" && c.Team != s.Team {
		return false
	}
	return true
}
