package schema

import "time"

// PendingItem represents the pending_items table - items recorded through the
// legacy direct-write path before their on-chain mint confirms. Pending items
// live in their own id space (ULID) and never collide with ledger token ids;
// the mint event remains the sole source of truth for the items table.
type PendingItem struct {
	// ID is a ULID assigned at submission time
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Name is the requested display name
	Name string `gorm:"column:name;not null;type:text"`
	// Description is free-form text supplied by the submitter
	Description string `gorm:"column:description;not null;default:'';type:text"`
	// CoolnessFactor is the requested coolness, between 1 and 100
	CoolnessFactor uint8 `gorm:"column:coolness_factor;not null"`
	// Creator is the EIP-55 normalized submitting address
	Creator   string    `gorm:"column:creator;not null;type:text;index:idx_pending_items_creator"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the PendingItem model
func (PendingItem) TableName() string {
	return "pending_items"
}
