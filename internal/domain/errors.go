package domain

import "errors"

var (
	// ErrUnavailable indicates the ledger endpoint could not serve the
	// request; the caller may retry with backoff
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrReorg indicates the block recorded in the cursor is no longer on
	// the canonical chain
	ErrReorg = errors.New("chain reorganization detected")

	// ErrRejected indicates an event that matched the mint signature but
	// failed structural or semantic validation
	ErrRejected = errors.New("event rejected")
)
