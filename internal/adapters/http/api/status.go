package api

import (
	"net/http"

	"github.com/okian/cardwatch/internal/domain/rules"
)

// StatusHandler classifies a yellow count.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

type statusResponse struct {
	Yellows int `json:"yellows"`
	rules.Status
}

// HandleStatus handles GET /status?yellows=N.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	n, err := optionalInt(r.URL.Query(), "yellows")
	if err != nil {
		writeError(w, err)
		return
	}
	if n == nil {
		writeError(w, badRequest("missing yellows"))
		return
	}
	st, err := h.deps.ClassifyYellowCount(*n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Yellows: *n, Status: st})
}
