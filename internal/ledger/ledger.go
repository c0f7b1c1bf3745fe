// Package ledger defines the read interface against the blockchain that the
// sync pipeline polls for mint events.
package ledger

import (
	"context"

	"github.com/feral-file/mint-sync/internal/domain"
)

// PollResult is one batch of ledger events starting after a cursor.
type PollResult struct {
	// Events not yet covered by the requesting cursor, ordered by
	// (block, index) ascending.
	Events []domain.RawEvent

	// Next is the cursor to persist once every event in the batch has been
	// applied. It advances even when Events is empty so quiet ranges are
	// not re-scanned.
	Next domain.Cursor
}

// Ledger reads mint events from a chain endpoint.
//
//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Ledger=MockLedger
type Ledger interface {
	// Poll returns the events after cur, up to the implementation's range
	// cap. It returns domain.ErrReorg when the block recorded in cur is no
	// longer canonical, and domain.ErrUnavailable for transient endpoint
	// failures.
	Poll(ctx context.Context, cur domain.Cursor) (*PollResult, error)

	// Close releases the underlying connection
	Close()
}
