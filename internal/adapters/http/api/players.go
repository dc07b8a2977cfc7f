package api

import (
	"net/http"
	"strings"
)

// PlayerHandler serves per-player compliance and scores.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

// HandleCompliance handles GET /players/{name}/compliance?mode=&division=.
func (h *PlayerHandler) HandleCompliance(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r)
	if !ok {
		return
	}
	rep, err := h.deps.EvaluateCompliance(r.Context(), name, parseScope(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleScore handles GET /players/{name}/score.
func (h *PlayerHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r)
	if !ok {
		return
	}
	sc, err := h.deps.ScorePlayer(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// pathName extracts the {name} segment, writing 400 when it is blank.
func pathName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeError(w, badRequest("missing name"))
		return "", false
	}
	return name, true
}
