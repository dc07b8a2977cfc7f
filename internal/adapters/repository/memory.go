package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v2"

	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/rules"
	"github.com/okian/cardwatch/internal/domain/scoring"
	"github.com/okian/cardwatch/internal/domain/severity"
)

type division struct {
	name  string
	kind  string
	level int
}

// MemoryStore is an in-process Store seeded from a fixture. Reads take a
// shared lock and copy out, so callers always see a consistent snapshot.
type MemoryStore struct {
	mu          sync.RWMutex
	divisions   map[string]division
	games       map[int64]model.Game
	cards       []model.CardEvent
	suspensions []model.SuspensionRecord
	closed      bool
	opts        options
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		divisions: make(map[string]division),
		games:     make(map[int64]model.Game),
		opts:      newOptions(opts),
	}
}

// NewMemoryStoreFromFile loads a YAML fixture into a new store.
func NewMemoryStoreFromFile(path string, opts ...Option) (*MemoryStore, error) {
	fx, err := LoadFixture(path)
	if err != nil {
		return nil, err
	}
	s := NewMemoryStore(opts...)
	if err := s.Load(fx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load appends a validated fixture. Every card and record gets a fresh id.
func (s *MemoryStore) Load(fx *Fixture) error {
	if err := fx.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range fx.Divisions {
		s.divisions[d.Name] = division{name: d.Name, kind: d.Type, level: d.Level}
	}
	for _, g := range fx.Games {
		date, _ := parseDate(g.Date, time.Time{}) // validated
		s.games[g.ID] = model.Game{
			ID:           g.ID,
			Division:     g.Division,
			DivisionType: s.divisions[g.Division].kind,
			Number:       g.Number,
			Date:         date,
			HomeTeam:     g.Home,
			AwayTeam:     g.Away,
		}
	}
	for _, c := range fx.Cards {
		t, _ := parseCardType(c.Type)
		g := s.games[c.Game]
		s.cards = append(s.cards, model.CardEvent{
			ID:           uuid.NewString(),
			Player:       c.Player,
			Team:         c.Team,
			Division:     g.Division,
			DivisionType: g.DivisionType,
			GameID:       g.ID,
			GameDate:     g.Date,
			Type:         t,
			Reason:       c.Reason,
			Category:     severity.Classify(t, c.Reason),
			IsBench:      c.Player == model.BenchPlayer,
		})
	}
	for _, r := range fx.Suspensions {
		kind, _ := parseKind(r.Kind)
		g := s.games[r.Game]
		s.suspensions = append(s.suspensions, model.SuspensionRecord{
			ID:       uuid.NewString(),
			Player:   r.Player,
			Team:     r.Team,
			Division: g.Division,
			GameID:   g.ID,
			GameDate: g.Date,
			Kind:     kind,
		})
	}
	return nil
}

// Close marks the store closed; later reads report ErrStoreUnavailable.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) check(op string) error {
	if s.closed {
		return errors.Wrap(ErrStoreUnavailable, op)
	}
	return nil
}

func inScope(division string, scope model.Scope) bool {
	return !scope.Divisional() || division == scope.Division
}

func (s *MemoryStore) playerCards(player string, scope model.Scope) []model.CardEvent {
	var out []model.CardEvent
	for _, c := range s.cards {
		if c.Player == player && inScope(c.Division, scope) {
			out = append(out, c)
		}
	}
	return out
}

// QualifyingYellows implements Store.
func (s *MemoryStore) QualifyingYellows(_ context.Context, player string, scope model.Scope) ([]model.CardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("qualifying yellows"); err != nil {
		return nil, err
	}
	return rules.QualifyingYellows(s.playerCards(player, scope)), nil
}

// Reds implements Store.
func (s *MemoryStore) Reds(_ context.Context, player string, scope model.Scope) ([]model.CardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("reds"); err != nil {
		return nil, err
	}
	return rules.Reds(s.playerCards(player, scope)), nil
}

// ServedSuspensions implements Store.
func (s *MemoryStore) ServedSuspensions(_ context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error) {
	return s.records(player, scope, model.Served)
}

// PrintableSuspensions implements Store.
func (s *MemoryStore) PrintableSuspensions(_ context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error) {
	return s.records(player, scope, model.Printable)
}

func (s *MemoryStore) records(player string, scope model.Scope, kind model.SuspensionKind) ([]model.SuspensionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(string(kind) + " suspensions"); err != nil {
		return nil, err
	}
	var out []model.SuspensionRecord
	for _, r := range s.suspensions {
		if r.Kind == kind && r.Player == player && inScope(r.Division, scope) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b model.SuspensionRecord) int { return a.GameDate.Compare(b.GameDate) })
	return out, nil
}

// CardSet implements Store.
func (s *MemoryStore) CardSet(_ context.Context, subject model.Subject, f model.Filter) ([]model.CardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("card set"); err != nil {
		return nil, err
	}
	var out []model.CardEvent
	for _, c := range s.cards {
		if subject.Matches(c) && f.Matches(c) {
			out = append(out, c)
		}
	}
	return model.SortChronological(out), nil
}

// GamesPlayed implements Store.
func (s *MemoryStore) GamesPlayed(_ context.Context, team, division string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("games played"); err != nil {
		return 0, err
	}
	return s.gamesPlayed(team, division), nil
}

func (s *MemoryStore) gamesPlayed(team, division string) int {
	n := 0
	for _, g := range s.games {
		if g.Involves(team) && (division == "" || g.Division == division) {
			n++
		}
	}
	return n
}

// TeamWeights implements Store.
func (s *MemoryStore) TeamWeights(_ context.Context, f model.Filter) ([]scoring.TeamWeight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("team weights"); err != nil {
		return nil, err
	}
	byTeam := make(map[string]float64)
	for _, c := range s.cards {
		if f.Matches(c) {
			byTeam[c.Team] += severity.Weight(c)
		}
	}
	out := make([]scoring.TeamWeight, 0, len(byTeam))
	for team, w := range byTeam {
		out = append(out, scoring.TeamWeight{Team: team, Weight: w, GamesPlayed: s.gamesPlayed(team, f.Division)})
	}
	slices.SortFunc(out, func(a, b scoring.TeamWeight) int { return strings.Compare(a.Team, b.Team) })
	return out, nil
}

// Stats implements Store.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("stats"); err != nil {
		return Stats{}, err
	}
	players := set.New[string](len(s.cards))
	teams := set.New[string](0)
	for _, c := range s.cards {
		if !c.IsBench {
			players.Insert(c.Player)
		}
		teams.Insert(c.Team)
	}
	st := Stats{
		Divisions: len(s.divisions),
		Games:     len(s.games),
		Cards:     len(s.cards),
		Players:   players.Size(),
		Teams:     teams.Size(),
	}
	for _, r := range s.suspensions {
		if r.Kind == model.Printable {
			st.Printable++
		} else {
			st.Served++
		}
	}
	return st, nil
}
