package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Profile represents the profiles table - the per-owner aggregate derived
// from applied mint events. Lazily created on the first event referencing an
// owner. TotalCoolness always equals the sum of CoolnessFactor over the items
// in OwnedTokenIDs once an apply has committed.
type Profile struct {
	// OwnerKey is the EIP-55 normalized wallet address
	OwnerKey string `gorm:"column:owner_key;primaryKey;type:text"`
	// DisplayName is an optional human-readable name, empty until set
	DisplayName string `gorm:"column:display_name;not null;default:'';type:text"`
	// OwnedTokenIDs is the set of token ids minted by this owner
	OwnedTokenIDs datatypes.JSONSlice[uint64] `gorm:"column:owned_token_ids;type:jsonb"`
	// TotalCoolness is the running sum of coolness over owned items
	TotalCoolness uint64    `gorm:"column:total_coolness;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}
