package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/cardwatch/internal/domain/model"
)

// optionalInt parses key when present. Empty values are absent.
func optionalInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badRequest("%s must be an integer", key)
	}
	return &n, nil
}

// parseFilter reads ranking filters from the query string.
func parseFilter(q url.Values) (model.Filter, error) {
	f := model.Filter{
		Division:     strings.TrimSpace(q.Get("division")),
		DivisionType: strings.TrimSpace(q.Get("division_type")),
		Team:         strings.TrimSpace(q.Get("team")),
	}
	var err error
	if f.MinYellows, err = optionalInt(q, "min_yellows"); err != nil {
		return model.Filter{}, err
	}
	if f.MaxYellows, err = optionalInt(q, "max_yellows"); err != nil {
		return model.Filter{}, err
	}
	if f.MinYellows != nil && f.MaxYellows != nil && *f.MinYellows > *f.MaxYellows {
		return model.Filter{}, badRequest("min_yellows exceeds max_yellows")
	}
	return f, nil
}

// parseLimit reads limit; absent means the server maximum.
func parseLimit(q url.Values) (int, error) {
	n, err := optionalInt(q, "limit")
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

// parseScope reads mode and division for compliance requests.
func parseScope(q url.Values) model.Scope {
	return model.Scope{
		Mode:     model.Mode(strings.ToLower(strings.TrimSpace(q.Get("mode")))),
		Division: strings.TrimSpace(q.Get("division")),
	}
}
