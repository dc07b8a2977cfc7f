package api

import "net/http"

// RankingHandler serves the player and team rankings.
type RankingHandler struct {
	deps RankingDependencies
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies) *RankingHandler {
	return &RankingHandler{deps: deps}
}

// HandlePlayers handles GET /rankings/players.
func (h *RankingHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseFilter(q)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := parseLimit(q)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := h.deps.RankPlayersByDanger(r.Context(), f, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleTeams handles GET /rankings/teams.
func (h *RankingHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseFilter(q)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := parseLimit(q)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := h.deps.RankTeamsByDiscipline(r.Context(), f, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
