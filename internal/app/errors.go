package service

import "github.com/cockroachdb/errors"

// Caller input errors. The HTTP layer maps these to 400.
var (
	ErrNegativeCount = errors.New("yellow count must not be negative")
	ErrInvalidLimit  = errors.New("limit must not be negative")
)
