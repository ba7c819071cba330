package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrIncompleteBook     = errors.New("market book is missing selections")
	ErrAmbiguousMatch     = errors.New("quote group resolves to multiple matches")
	ErrRatingsUnavailable = errors.New("ratings provider unavailable")
	ErrSourceTimeout      = errors.New("odds source timed out")
)
