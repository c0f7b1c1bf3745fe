package store

import (
	"context"

	"github.com/feral-file/mint-sync/internal/domain"
	"github.com/feral-file/mint-sync/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetCursor retrieves the last durable sync cursor for a source.
	// Returns the zero cursor when no cursor has been persisted yet.
	GetCursor(ctx context.Context, source string) (domain.Cursor, error)
	// SetCursor persists the sync cursor for a source
	SetCursor(ctx context.Context, source string, cur domain.Cursor) error

	// ApplyMint creates the item and folds it into its creator's profile in
	// one transaction. It reports applied=false without touching the profile
	// when an item with the same token id already exists; the insert is the
	// sole idempotency gate and is race-free.
	ApplyMint(ctx context.Context, item *schema.Item) (applied bool, err error)

	// GetItem retrieves an item by token id, nil when absent
	GetItem(ctx context.Context, tokenID uint64) (*schema.Item, error)
	// GetProfile retrieves a profile by normalized owner key, nil when absent
	GetProfile(ctx context.Context, ownerKey string) (*schema.Profile, error)

	// CreatePendingItem records a legacy direct-write submission
	CreatePendingItem(ctx context.Context, item *schema.PendingItem) error
	// GetPendingItem retrieves a pending item by its ULID, nil when absent
	GetPendingItem(ctx context.Context, id string) (*schema.PendingItem, error)
}
