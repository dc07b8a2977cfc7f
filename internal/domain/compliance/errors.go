package compliance

import "github.com/cockroachdb/errors"

// Sentinel kinds for reconciliation input errors.
var (
	ErrUnknownPolicy = errors.New("unknown reconcile policy")
	ErrInvalidMode   = errors.New("invalid evaluation mode")
)
