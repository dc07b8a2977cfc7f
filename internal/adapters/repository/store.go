// Package repository provides the event store adapters the engine reads card
// history and suspension records from.
package repository

import (
	"context"

	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/scoring"
)

// Stats summarises what a store holds.
type Stats struct {
	Divisions int `json:"divisions"`
	Games     int `json:"games"`
	Cards     int `json:"cards"`
	Players   int `json:"players"`
	Teams     int `json:"teams"`
	Served    int `json:"served"`
	Printable int `json:"printable"`
}

// Store is the read-only event store contract. Every card returned carries
// its classified category. Scoped methods restrict cards and records to the
// scope's division when the scope is divisional.
type Store interface {
	// QualifyingYellows returns the player's yellows, oldest first, excluding
	// games in which the same player also received a red.
	QualifyingYellows(ctx context.Context, player string, scope model.Scope) ([]model.CardEvent, error)
	// Reds returns the player's red cards, oldest first.
	Reds(ctx context.Context, player string, scope model.Scope) ([]model.CardEvent, error)
	// ServedSuspensions returns authoritative service records.
	ServedSuspensions(ctx context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error)
	// PrintableSuspensions returns gamesheet-derived service records.
	PrintableSuspensions(ctx context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error)

	// CardSet returns every card for the subject that passes the filter,
	// oldest first. Yellow-count bounds in the filter are not applied here.
	CardSet(ctx context.Context, subject model.Subject, f model.Filter) ([]model.CardEvent, error)
	// GamesPlayed counts games the team appeared in, optionally in one division.
	GamesPlayed(ctx context.Context, team, division string) (int, error)
	// TeamWeights aggregates severity weight per team for cards passing the
	// filter, with games played in the filter's division.
	TeamWeights(ctx context.Context, f model.Filter) ([]scoring.TeamWeight, error)

	// Stats reports store counts.
	Stats(ctx context.Context) (Stats, error)
	// Close releases the store.
	Close() error
}
