// Package projector applies decoded mint events to the metadata store and
// owner-profile aggregate exactly once.
package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/mint-sync/internal/domain"
	"github.com/feral-file/mint-sync/internal/logger"
	"github.com/feral-file/mint-sync/internal/store"
	"github.com/feral-file/mint-sync/internal/store/schema"
)

// Outcome is the result of applying one mint event
type Outcome int

const (
	// OutcomeApplied means the event's projection was written by this call
	OutcomeApplied Outcome = iota
	// OutcomeAlreadyApplied means the token id was projected earlier;
	// expected during replay, not an error
	OutcomeAlreadyApplied
)

// BatchEvent pairs a decoded mint event with its ledger position
type BatchEvent struct {
	Event    *domain.MintEvent
	Position domain.Cursor
}

// Attribute is one entry of an item's ordered trait list
type Attribute struct {
	TraitType string `json:"traitType"`
	Value     string `json:"value"`
}

// Projector turns mint events into item rows and profile updates
type Projector struct {
	store        store.Store
	mediaBaseURL string
	storeTimeout time.Duration
}

// NewProjector creates a projector. mediaBaseURL is the prefix items' image
// references are derived from; storeTimeout bounds each store call.
func NewProjector(s store.Store, mediaBaseURL string, storeTimeout time.Duration) *Projector {
	if storeTimeout == 0 {
		storeTimeout = 10 * time.Second
	}
	return &Projector{
		store:        s,
		mediaBaseURL: mediaBaseURL,
		storeTimeout: storeTimeout,
	}
}

// Apply projects one mint event. Safe to call again with the same event:
// the store's token id gate turns the replay into OutcomeAlreadyApplied.
func (p *Projector) Apply(ctx context.Context, ev *domain.MintEvent) (Outcome, error) {
	item, err := p.buildItem(ev)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	applied, err := p.store.ApplyMint(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("apply mint for token %d: %w", ev.TokenID, err)
	}
	if !applied {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeApplied, nil
}

// ApplyBatch applies events in ledger order, invoking advance with each
// event's position only after its apply committed. The first failure aborts
// the rest of the batch; already-applied prefixes never re-run their profile
// updates, so retrying the same batch is safe.
func (p *Projector) ApplyBatch(ctx context.Context, events []BatchEvent, advance func(domain.Cursor) error) error {
	for _, be := range events {
		outcome, err := p.Apply(ctx, be.Event)
		if err != nil {
			return fmt.Errorf("batch aborted at block %d index %d: %w",
				be.Position.Block, be.Position.Index, err)
		}

		if outcome == OutcomeAlreadyApplied {
			logger.DebugCtx(ctx, "Mint already projected",
				zap.Uint64("token_id", be.Event.TokenID),
			)
		} else {
			logger.InfoCtx(ctx, "Mint projected",
				zap.Uint64("token_id", be.Event.TokenID),
				zap.String("creator", be.Event.Creator),
				zap.Uint64("block", be.Event.Block),
			)
		}

		if err := advance(be.Position); err != nil {
			return fmt.Errorf("advance cursor past block %d index %d: %w",
				be.Position.Block, be.Position.Index, err)
		}
	}
	return nil
}

func (p *Projector) buildItem(ev *domain.MintEvent) (*schema.Item, error) {
	attributes, err := json.Marshal([]Attribute{
		{TraitType: "Coolness Factor", Value: strconv.Itoa(int(ev.CoolnessFactor))},
		{TraitType: "Creator", Value: ev.Creator},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal attributes for token %d: %w", ev.TokenID, err)
	}

	var imageRef string
	if p.mediaBaseURL != "" {
		imageRef = fmt.Sprintf("%s/%d.png", p.mediaBaseURL, ev.TokenID)
	}

	return &schema.Item{
		TokenID:        ev.TokenID,
		Name:           ev.Name,
		ImageRef:       imageRef,
		Attributes:     datatypes.JSON(attributes),
		CoolnessFactor: ev.CoolnessFactor,
		Creator:        ev.Creator,
		Block:          ev.Block,
		BlockIndex:     ev.Index,
		TxHash:         ev.TxHash,
	}, nil
}
