package repository

import "github.com/cockroachdb/errors"

// Sentinel kinds for store errors.
var (
	// ErrStoreUnavailable marks any failure to reach or read the backing
	// store. It is the only store error callers should abort on.
	ErrStoreUnavailable = errors.New("event store unavailable")
	ErrInvalidFixture   = errors.New("invalid fixture")
	ErrUnknownDriver    = errors.New("unknown store driver")
	// ErrUndatedGame marks an accumulation read that hit a game date in no
	// known form. Those cards cannot be ordered, so no trigger is assigned.
	ErrUndatedGame = errors.New("game date not understood")
)

// unavailable wraps err with the operation name and marks it as
// ErrStoreUnavailable, keeping the driver cause in the chain.
func unavailable(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, op), ErrStoreUnavailable)
}
