package api

import (
	"net/http"
	"strings"
)

// TeamHandler serves per-team scores.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleScore handles GET /teams/{name}/score?division=.
func (h *TeamHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r)
	if !ok {
		return
	}
	division := strings.TrimSpace(r.URL.Query().Get("division"))
	sc, err := h.deps.ScoreTeam(r.Context(), name, division)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}
