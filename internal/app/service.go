// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cardwatch/internal/adapters/repository"
	"github.com/okian/cardwatch/internal/domain/compliance"
	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/rules"
	"github.com/okian/cardwatch/internal/domain/scoring"
	"github.com/okian/cardwatch/internal/domain/types"
	"github.com/okian/cardwatch/pkg/logger"
	"github.com/okian/cardwatch/pkg/metrics"
)

// Ranking kinds used as metric labels.
const (
	rankingPlayers = "players"
	rankingTeams   = "teams"
)

// Service implements the API dependencies for the disciplinary engine.
// It keeps no mutable state after New and is safe for concurrent use.
type Service struct {
	store      repository.Store
	reconciler *compliance.Reconciler

	// Configuration
	policy      compliance.Policy
	concurrency int
	maxLimit    int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPolicy sets the reconciliation policy.
func WithPolicy(p compliance.Policy) Option {
	return func(s *Service) {
		if p.Name != "" {
			s.policy = p
		}
	}
}

// WithRankingConcurrency bounds the per-player reconciliations run in
// parallel while building the player ranking.
func WithRankingConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxRankingLimit caps ranking sizes.
func WithMaxRankingLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// New constructs a Service reading from store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		policy:      compliance.DefaultPolicy,
		concurrency: runtime.NumCPU() * 2,
		maxLimit:    500,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = compliance.NewReconciler(store,
		compliance.WithPolicy(s.policy),
		compliance.WithLogger(s.logger.Named("compliance")),
	)
	return s
}

// Policy returns the reconciliation policy in effect.
func (s *Service) Policy() compliance.Policy { return s.policy }

// EvaluateCompliance reconciles the player's owed and served suspensions.
func (s *Service) EvaluateCompliance(ctx context.Context, player string, scope model.Scope) (compliance.Report, error) {
	rep, err := s.reconciler.Reconcile(ctx, player, scope)
	if err != nil {
		s.warn(ctx, "compliance evaluation failed", err, logger.String("player", player))
		return compliance.Report{}, err
	}
	metrics.RecordEvaluation("compliance")
	for _, t := range rep.Triggers {
		metrics.RecordTrigger(string(t.Rule))
	}
	metrics.RecordUnserved(rep.UnservedCount)
	return rep, nil
}

// ClassifyYellowCount maps a qualifying-yellow count to its status tier.
func (s *Service) ClassifyYellowCount(count int) (rules.Status, error) {
	if count < 0 {
		return rules.Status{}, errors.Wrapf(ErrNegativeCount, "got %d", count)
	}
	metrics.RecordEvaluation("status")
	return rules.ClassifyYellowCount(count), nil
}

// ScorePlayer returns the player's cumulative severity score.
func (s *Service) ScorePlayer(ctx context.Context, player string) (scoring.Score, error) {
	cards, err := s.store.CardSet(ctx, model.ForPlayer(player), model.Filter{})
	if err != nil {
		s.warn(ctx, "player card set failed", err, logger.String("player", player))
		return scoring.Score{}, err
	}
	metrics.RecordEvaluation("player_score")
	return scoring.ScorePlayer(player, cards), nil
}

// ScoreTeam returns the team's score normalised by games played, optionally
// restricted to one division.
func (s *Service) ScoreTeam(ctx context.Context, team, division string) (types.TeamScore, error) {
	cards, err := s.store.CardSet(ctx, model.ForTeam(team), model.Filter{Division: division})
	if err != nil {
		s.warn(ctx, "team card set failed", err, logger.String("team", team))
		return types.TeamScore{}, err
	}
	gp, err := s.store.GamesPlayed(ctx, team, division)
	if err != nil {
		s.warn(ctx, "games played failed", err, logger.String("team", team))
		return types.TeamScore{}, err
	}
	metrics.RecordEvaluation("team_score")

	out := types.TeamScore{Score: scoring.ScoreTeam(team, cards, gp), Division: division}
	if division == "" {
		return out, nil
	}
	avg, err := s.DivisionAverage(ctx, division)
	if err != nil {
		return types.TeamScore{}, err
	}
	vs := scoring.Round(out.Score.Score-avg, 2)
	out.DivisionAverage = &avg
	out.VsDivisionAverage = &vs
	return out, nil
}

// DivisionAverage is the mean per-game team score within a division.
func (s *Service) DivisionAverage(ctx context.Context, division string) (float64, error) {
	weights, err := s.store.TeamWeights(ctx, model.Filter{Division: division})
	if err != nil {
		s.warn(ctx, "team weights failed", err, logger.String("division", division))
		return 0, err
	}
	return scoring.DivisionAverage(weights), nil
}

// RankPlayersByDanger ranks players by cumulative severity. Bench cards are
// left out; yellow bounds apply to qualifying yellows in the filter's scope.
func (s *Service) RankPlayersByDanger(ctx context.Context, f model.Filter, limit int) ([]types.PlayerRow, error) {
	limit, err := s.clampLimit(limit)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.CardSet(ctx, model.Subject{}, f)
	if err != nil {
		s.warn(ctx, "league card set failed", err)
		return nil, err
	}

	var names []string
	byPlayer := make(map[string][]model.CardEvent)
	for _, c := range cards {
		if c.IsBench {
			continue
		}
		if _, ok := byPlayer[c.Player]; !ok {
			names = append(names, c.Player)
		}
		byPlayer[c.Player] = append(byPlayer[c.Player], c)
	}

	scope := model.Scope{Mode: model.Combined}
	if f.Division != "" {
		scope = model.Scope{Mode: model.PerDivision, Division: f.Division}
	}
	reports := make([]compliance.Report, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			rep, err := s.reconciler.Reconcile(gctx, name, scope)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.warn(ctx, "player ranking failed", err)
		return nil, err
	}

	scores := make([]scoring.Score, 0, len(names))
	byName := make(map[string]compliance.Report, len(names))
	for i, name := range names {
		if !f.YellowsInRange(reports[i].QualifyingYellows) {
			continue
		}
		byName[name] = reports[i]
		scores = append(scores, scoring.ScorePlayer(name, byPlayer[name]))
	}
	scoring.Sort(scores)
	ranks := scoring.DenseRanks(scores)

	rows := make([]types.PlayerRow, 0, min(limit, len(scores)))
	for i, sc := range scores[:min(limit, len(scores))] {
		own := byPlayer[sc.Name]
		rows = append(rows, types.NewPlayerRow(ranks[i], own[len(own)-1].Team, sc, byName[sc.Name]))
	}
	metrics.RecordEvaluation("player_ranking")
	metrics.UpdateRankingSize(rankingPlayers, len(rows))
	s.logger.Debug(ctx, "ranked players", logger.Int("rows", len(rows)), logger.Int("candidates", len(names)))
	return rows, nil
}

// RankTeamsByDiscipline ranks teams by per-game severity. Bench cards count
// against their team; yellow bounds apply to the team's yellow cards.
func (s *Service) RankTeamsByDiscipline(ctx context.Context, f model.Filter, limit int) ([]types.TeamRow, error) {
	limit, err := s.clampLimit(limit)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.CardSet(ctx, model.Subject{}, f)
	if err != nil {
		s.warn(ctx, "league card set failed", err)
		return nil, err
	}

	var teams []string
	byTeam := make(map[string][]model.CardEvent)
	for _, c := range cards {
		if _, ok := byTeam[c.Team]; !ok {
			teams = append(teams, c.Team)
		}
		byTeam[c.Team] = append(byTeam[c.Team], c)
	}

	scores := make([]scoring.Score, 0, len(teams))
	for _, team := range teams {
		gp, err := s.store.GamesPlayed(ctx, team, f.Division)
		if err != nil {
			s.warn(ctx, "games played failed", err, logger.String("team", team))
			return nil, err
		}
		sc := scoring.ScoreTeam(team, byTeam[team], gp)
		if !f.YellowsInRange(sc.Yellows) {
			continue
		}
		scores = append(scores, sc)
	}
	scoring.Sort(scores)
	ranks := scoring.DenseRanks(scores)

	rows := make([]types.TeamRow, 0, min(limit, len(scores)))
	for i, sc := range scores[:min(limit, len(scores))] {
		rows = append(rows, types.NewTeamRow(ranks[i], sc))
	}
	metrics.RecordEvaluation("team_ranking")
	metrics.UpdateRankingSize(rankingTeams, len(rows))
	s.logger.Debug(ctx, "ranked teams", logger.Int("rows", len(rows)))
	return rows, nil
}

// Stats returns store counts.
func (s *Service) Stats(ctx context.Context) (repository.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		s.warn(ctx, "stats failed", err)
		return repository.Stats{}, err
	}
	return st, nil
}

// clampLimit turns a requested ranking size into an effective one. Zero
// means the configured maximum.
func (s *Service) clampLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, errors.Wrapf(ErrInvalidLimit, "got %d", limit)
	case limit == 0 || limit > s.maxLimit:
		return s.maxLimit, nil
	default:
		return limit, nil
	}
}

func (s *Service) warn(ctx context.Context, msg string, err error, fields ...logger.Field) {
	s.logger.Warn(ctx, msg, append(fields, logger.Error(err))...)
}
