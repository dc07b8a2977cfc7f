// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/cardwatch/internal/adapters/repository"
	"github.com/okian/cardwatch/internal/domain/compliance"
	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/rules"
	"github.com/okian/cardwatch/internal/domain/scoring"
	"github.com/okian/cardwatch/internal/domain/types"
	"github.com/okian/cardwatch/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlayerDependencies
	TeamDependencies
	RankingDependencies
	StatusDependencies
	StatsProvider
}

// PlayerDependencies are the per-player reads.
type PlayerDependencies interface {
	EvaluateCompliance(ctx context.Context, player string, scope model.Scope) (compliance.Report, error)
	ScorePlayer(ctx context.Context, player string) (scoring.Score, error)
}

// TeamDependencies are the per-team reads.
type TeamDependencies interface {
	ScoreTeam(ctx context.Context, team, division string) (types.TeamScore, error)
}

// RankingDependencies build the ranked tables.
type RankingDependencies interface {
	RankPlayersByDanger(ctx context.Context, f model.Filter, limit int) ([]types.PlayerRow, error)
	RankTeamsByDiscipline(ctx context.Context, f model.Filter, limit int) ([]types.TeamRow, error)
}

// StatusDependencies classify a yellow count.
type StatusDependencies interface {
	ClassifyYellowCount(count int) (rules.Status, error)
}

// StatsProvider reports store counts.
type StatsProvider interface {
	Stats(ctx context.Context) (repository.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playerHandler  *PlayerHandler
	teamHandler    *TeamHandler
	rankingHandler *RankingHandler
	statusHandler  *StatusHandler

	log logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		playerHandler:  NewPlayerHandler(deps),
		teamHandler:    NewTeamHandler(deps),
		rankingHandler: NewRankingHandler(deps),
		statusHandler:  NewStatusHandler(deps),
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /players/{name}/compliance", s.wrap(s.playerHandler.HandleCompliance, "player_compliance"))
	mux.HandleFunc("GET /players/{name}/score", s.wrap(s.playerHandler.HandleScore, "player_score"))
	mux.HandleFunc("GET /teams/{name}/score", s.wrap(s.teamHandler.HandleScore, "team_score"))
	mux.HandleFunc("GET /rankings/players", s.wrap(s.rankingHandler.HandlePlayers, "rankings_players"))
	mux.HandleFunc("GET /rankings/teams", s.wrap(s.rankingHandler.HandleTeams, "rankings_teams"))
	mux.HandleFunc("GET /status", s.wrap(s.statusHandler.HandleStatus, "status"))
}

func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return MetricsMiddleware(LoggingMiddleware(next, endpoint, s.log), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError && err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
