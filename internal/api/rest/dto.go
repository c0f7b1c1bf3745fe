package rest

import (
	"encoding/json"
	"time"

	"github.com/feral-file/mint-sync/internal/store/schema"
)

// Item is the external representation of a projected item
type Item struct {
	TokenID        uint64          `json:"tokenId"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ImageRef       string          `json:"imageRef"`
	Attributes     json.RawMessage `json:"attributes"`
	CoolnessFactor uint8           `json:"coolnessFactor"`
	Creator        string          `json:"creator"`
	Block          uint64          `json:"block"`
	TxHash         string          `json:"txHash,omitempty"`
}

// Profile is the external representation of an owner profile
type Profile struct {
	OwnerKey      string   `json:"ownerKey"`
	DisplayName   string   `json:"displayName"`
	OwnedTokenIDs []uint64 `json:"ownedTokenIds"`
	TotalCoolness uint64   `json:"totalCoolness"`
}

// CreateItemRequest is the legacy direct-write submission payload
type CreateItemRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	CoolnessFactor uint8  `json:"coolnessFactor" binding:"required,min=1,max=100"`
	Creator        string `json:"creator" binding:"required"`
}

// PendingItem is the external representation of a recorded submission
type PendingItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CoolnessFactor uint8     `json:"coolnessFactor"`
	Creator        string    `json:"creator"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toItem(item *schema.Item) Item {
	attributes := json.RawMessage(item.Attributes)
	if len(attributes) == 0 {
		attributes = json.RawMessage("[]")
	}
	return Item{
		TokenID:        item.TokenID,
		Name:           item.Name,
		Description:    item.Description,
		ImageRef:       item.ImageRef,
		Attributes:     attributes,
		CoolnessFactor: item.CoolnessFactor,
		Creator:        item.Creator,
		Block:          item.Block,
		TxHash:         item.TxHash,
	}
}

func toProfile(profile *schema.Profile) Profile {
	owned := make([]uint64, len(profile.OwnedTokenIDs))
	copy(owned, profile.OwnedTokenIDs)
	return Profile{
		OwnerKey:      profile.OwnerKey,
		DisplayName:   profile.DisplayName,
		OwnedTokenIDs: owned,
		TotalCoolness: profile.TotalCoolness,
	}
}

func toPendingItem(item *schema.PendingItem) PendingItem {
	return PendingItem{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		CoolnessFactor: item.CoolnessFactor,
		Creator:        item.Creator,
		CreatedAt:      item.CreatedAt,
	}
}
