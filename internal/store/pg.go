package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/mint-sync/internal/domain"
	"github.com/feral-file/mint-sync/internal/store/schema"
)

const cursorKeyPrefix = "sync_cursor:"

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults: 20 open, 5 idle,
// 5m max lifetime, 10m max idle time.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetCursor retrieves the last durable sync cursor for a source
func (s *pgStore) GetCursor(ctx context.Context, source string) (domain.Cursor, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", cursorKeyPrefix+source).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Cursor{}, nil
		}
		return domain.Cursor{}, fmt.Errorf("failed to get sync cursor: %w", err)
	}

	cur, err := domain.ParseCursor(kv.Value)
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("failed to parse sync cursor: %w", err)
	}
	return cur, nil
}

// SetCursor persists the sync cursor for a source
func (s *pgStore) SetCursor(ctx context.Context, source string, cur domain.Cursor) error {
	kv := schema.KeyValueStore{
		Key:   cursorKeyPrefix + source,
		Value: cur.String(),
	}
	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set sync cursor: %w", err)
	}
	return nil
}

// ApplyMint creates the item and updates its creator's profile in a single
// transaction. The item insert uses ON CONFLICT DO NOTHING on token_id: when
// the row already exists the whole call is a no-op, which makes replay after
// a crash or a reorg-driven re-poll safe.
func (s *pgStore) ApplyMint(ctx context.Context, item *schema.Item) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			DoNothing: true,
		}).Create(item)
		if res.Error != nil {
			return fmt.Errorf("failed to create item: %w", res.Error)
		}

		// Zero rows affected means the token id was already projected;
		// the profile was updated by the apply that won.
		if res.RowsAffected == 0 {
			return nil
		}

		var profile schema.Profile
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_key = ?", item.Creator).
			First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lazily create the profile; a concurrent creator resolves on
			// the primary key, after which the locked read sees the row.
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "owner_key"}},
				DoNothing: true,
			}).Create(&schema.Profile{OwnerKey: item.Creator}).Error; err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("owner_key = ?", item.Creator).
				First(&profile).Error; err != nil {
				return fmt.Errorf("failed to get profile: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}

		profile.OwnedTokenIDs = append(profile.OwnedTokenIDs, item.TokenID)
		profile.TotalCoolness += uint64(item.CoolnessFactor)

		if err := tx.Save(&profile).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// GetItem retrieves an item by its token id
func (s *pgStore) GetItem(ctx context.Context, tokenID uint64) (*schema.Item, error) {
	var item schema.Item
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// GetProfile retrieves a profile by its normalized owner key
func (s *pgStore) GetProfile(ctx context.Context, ownerKey string) (*schema.Profile, error) {
	var profile schema.Profile
	err := s.db.WithContext(ctx).Where("owner_key = ?", ownerKey).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// CreatePendingItem records a legacy direct-write submission
func (s *pgStore) CreatePendingItem(ctx context.Context, item *schema.PendingItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create pending item: %w", err)
	}
	return nil
}

// GetPendingItem retrieves a pending item by its ULID
func (s *pgStore) GetPendingItem(ctx context.Context, id string) (*schema.PendingItem, error) {
	var item schema.PendingItem
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending item: %w", err)
	}
	return &item, nil
}
