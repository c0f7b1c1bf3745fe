package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Item represents the items table - the projected metadata of one minted
// token. Created exactly once per token id and never deleted; core fields are
// write-once.
type Item struct {
	// TokenID is the ledger-assigned token identifier, unique and never reused
	TokenID uint64 `gorm:"column:token_id;primaryKey"`
	// Name is the display name carried by the mint event
	Name string `gorm:"column:name;not null;type:text"`
	// Description is free-form text, empty for event-sourced items
	Description string `gorm:"column:description;not null;default:'';type:text"`
	// ImageRef points at the rendered media for this token
	ImageRef string `gorm:"column:image_ref;not null;default:'';type:text"`
	// Attributes is the ordered trait list as a JSON array
	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb"`
	// CoolnessFactor is the mint's coolness, between 1 and 100
	CoolnessFactor uint8 `gorm:"column:coolness_factor;not null"`
	// Creator is the EIP-55 normalized minting address
	Creator string `gorm:"column:creator;not null;type:text;index:idx_items_creator"`
	// Block and BlockIndex record the ledger position of the mint event
	Block      uint64 `gorm:"column:block;not null"`
	BlockIndex uint32 `gorm:"column:block_index;not null"`
	// TxHash is the transaction that emitted the mint event
	TxHash string `gorm:"column:tx_hash;not null;default:'';type:text"`
	// CreatedAt is the timestamp when this record was projected
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "items"
}
