package api

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/okian/cardwatch/internal/adapters/repository"
	service "github.com/okian/cardwatch/internal/app"
	"github.com/okian/cardwatch/internal/domain/compliance"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrServe      = errors.New("http serve failed")
)

// errorStatus maps an error to its HTTP status and response code. Caller
// input errors are 400, stored games with unreadable dates 422, store outages
// 503, anything else 500.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, compliance.ErrInvalidMode),
		errors.Is(err, service.ErrNegativeCount),
		errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrUndatedGame):
		return http.StatusUnprocessableEntity, "undated_game"
	case errors.Is(err, repository.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func badRequest(format string, args ...any) error {
	return errors.Wrapf(ErrBadRequest, format, args...)
}
