// Package poller drives the sync pipeline: it polls the ledger for mint
// events, decodes them, applies them through the projector, and advances the
// durable cursor only behind fully-applied events.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/mint-sync/internal/adapter"
	"github.com/feral-file/mint-sync/internal/decoder"
	"github.com/feral-file/mint-sync/internal/domain"
	"github.com/feral-file/mint-sync/internal/ledger"
	"github.com/feral-file/mint-sync/internal/logger"
	"github.com/feral-file/mint-sync/internal/projector"
	"github.com/feral-file/mint-sync/internal/store"
)

// Poller owns the poll-decode-apply loop for one event source.
type Poller struct {
	ledger        ledger.Ledger
	projector     *projector.Projector
	store         store.Store
	clock         adapter.Clock
	source        string
	interval      time.Duration
	maxBackoff    time.Duration
	storeTimeout  time.Duration
	finalityDepth uint64
}

// NewPoller creates a poller. source keys the durable cursor (one per
// ledger). interval is the steady-state poll period; maxBackoff caps the
// retry interval while the ledger is unavailable; storeTimeout bounds each
// cursor store call; finalityDepth is how many blocks the cursor rolls back
// when a reorg is detected.
func NewPoller(
	l ledger.Ledger,
	p *projector.Projector,
	s store.Store,
	clock adapter.Clock,
	source string,
	interval time.Duration,
	maxBackoff time.Duration,
	storeTimeout time.Duration,
	finalityDepth uint64,
) *Poller {
	if interval == 0 {
		interval = 5 * time.Second
	}
	if maxBackoff == 0 {
		maxBackoff = 60 * time.Second
	}
	if storeTimeout == 0 {
		storeTimeout = 10 * time.Second
	}
	return &Poller{
		ledger:        l,
		projector:     p,
		store:         s,
		clock:         clock,
		source:        source,
		interval:      interval,
		maxBackoff:    maxBackoff,
		storeTimeout:  storeTimeout,
		finalityDepth: finalityDepth,
	}
}

// getCursor loads the durable cursor under the store deadline
func (p *Poller) getCursor(ctx context.Context) (domain.Cursor, error) {
	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	return p.store.GetCursor(ctx, p.source)
}

// setCursor persists the durable cursor under the store deadline; a hung
// write surfaces as a store error instead of wedging the poll loop
func (p *Poller) setCursor(ctx context.Context, cur domain.Cursor) error {
	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	return p.store.SetCursor(ctx, p.source, cur)
}

// Run polls until ctx is cancelled. Ledger unavailability is retried with
// exponential backoff and never terminates the loop; store failures abort the
// current batch and are retried on the next cycle from the last durable
// cursor.
func (p *Poller) Run(ctx context.Context) error {
	cur, err := p.getCursor(ctx)
	if err != nil {
		return fmt.Errorf("load sync cursor: %w", err)
	}

	logger.InfoCtx(ctx, "Sync poller started",
		zap.String("source", p.source),
		zap.String("cursor", cur.String()),
	)

	for {
		next, err := p.syncWithRetry(ctx, cur)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ErrorCtx(ctx, err,
				zap.String("source", p.source),
				zap.String("cursor", cur.String()),
			)
		} else {
			cur = next
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(p.interval):
		}
	}
}

// syncWithRetry runs one sync cycle, retrying with backoff while the ledger
// is unavailable. Other failures are returned to the caller immediately.
func (p *Poller) syncWithRetry(ctx context.Context, cur domain.Cursor) (domain.Cursor, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = p.maxBackoff
	b.MaxElapsedTime = 0 // retry until cancelled

	next := cur
	operation := func() error {
		var err error
		next, err = p.Sync(ctx, cur)
		if err != nil && !errors.Is(err, domain.ErrUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "Ledger unavailable, retrying poll",
			zap.Error(err),
			zap.String("source", p.source),
			zap.Duration("next_retry_in", wait),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return cur, err
	}
	return next, nil
}

// Sync runs one poll cycle from cur and returns the new durable cursor. The
// cursor is persisted after each applied event and again at the end of the
// batch, so a crash at any point resumes behind a fully-applied prefix.
func (p *Poller) Sync(ctx context.Context, cur domain.Cursor) (domain.Cursor, error) {
	res, err := p.ledger.Poll(ctx, cur)
	if err != nil {
		if errors.Is(err, domain.ErrReorg) {
			return p.rollback(ctx, cur)
		}
		return cur, err
	}

	batch := make([]projector.BatchEvent, 0, len(res.Events))
	for _, ev := range res.Events {
		mint, err := decoder.Decode(ev)
		if err != nil {
			if errors.Is(err, domain.ErrRejected) {
				// malformed events are skipped, never halt the batch
				logger.WarnCtx(ctx, "Rejected ledger event",
					zap.Error(err),
					zap.Uint64("block", ev.Block),
					zap.Uint32("index", ev.Index),
					zap.String("tx_hash", ev.TxHash),
				)
				continue
			}
			return cur, err
		}
		batch = append(batch, projector.BatchEvent{Event: mint, Position: ev.Position()})
	}

	// the advance callback persists the durable cursor after each commit
	err = p.projector.ApplyBatch(ctx, batch, func(pos domain.Cursor) error {
		if err := p.setCursor(ctx, pos); err != nil {
			return err
		}
		cur = pos
		return nil
	})
	if err != nil {
		return cur, err
	}

	if res.Next != cur && !res.Next.IsZero() {
		if err := p.setCursor(ctx, res.Next); err != nil {
			return cur, fmt.Errorf("persist batch cursor: %w", err)
		}
		cur = res.Next
	}

	return cur, nil
}

// rollback moves the cursor back by the finality depth after a reorg. The
// rolled-back cursor carries no block hash, which skips the canonical check
// on the next poll; re-delivered events are absorbed by the projector's
// idempotency.
func (p *Poller) rollback(ctx context.Context, cur domain.Cursor) (domain.Cursor, error) {
	rolled := domain.Cursor{}
	if cur.Block > p.finalityDepth {
		rolled = domain.Cursor{
			Block: cur.Block - p.finalityDepth,
			Index: domain.IndexEndOfBlock,
		}
	}

	logger.WarnCtx(ctx, "Reorg detected, rolling cursor back",
		zap.String("source", p.source),
		zap.String("from", cur.String()),
		zap.String("to", rolled.String()),
	)

	if err := p.setCursor(ctx, rolled); err != nil {
		return cur, fmt.Errorf("persist rolled-back cursor: %w", err)
	}
	return rolled, nil
}
