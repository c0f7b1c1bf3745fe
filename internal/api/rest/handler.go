package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/mint-sync/internal/domain"
	"github.com/feral-file/mint-sync/internal/store"
	"github.com/feral-file/mint-sync/internal/store/schema"
)

// Handler serves the read-only query surface plus the legacy direct-write
// submission path.
type Handler struct {
	store store.Store
}

// NewHandler creates a new REST handler
func NewHandler(s store.Store) *Handler {
	return &Handler{store: s}
}

// HealthCheck reports service liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetItem returns a projected item by its token id
func (h *Handler) GetItem(c *gin.Context) {
	tokenID, err := strconv.ParseUint(c.Param("token_id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid token id", c.Param("token_id"))
		return
	}

	item, err := h.store.GetItem(c.Request.Context(), tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to get item", zap.Uint64("token_id", tokenID))
		return
	}
	if item == nil {
		respondNotFound(c, "Item not found")
		return
	}

	c.JSON(http.StatusOK, toItem(item))
}

// GetProfile returns an owner profile by wallet address. Lookups are
// case-insensitive: the address is normalized before querying.
func (h *Handler) GetProfile(c *gin.Context) {
	owner := c.Param("owner")
	if !domain.IsValidAddress(owner) {
		respondBadRequest(c, "Invalid owner address", owner)
		return
	}
	ownerKey := domain.NormalizeAddress(owner)

	profile, err := h.store.GetProfile(c.Request.Context(), ownerKey)
	if err != nil {
		respondInternalError(c, err, "Failed to get profile", zap.String("owner_key", ownerKey))
		return
	}
	if profile == nil {
		respondNotFound(c, "Profile not found")
		return
	}

	c.JSON(http.StatusOK, toProfile(profile))
}

// CreateItem records a legacy direct-write submission before its on-chain
// mint confirms. The recorded row lives in the pending id space; the ledger
// event remains the source of truth for projected items.
func (h *Handler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if !domain.IsValidAddress(req.Creator) {
		respondValidationError(c, "creator must be a valid address")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondValidationError(c, "name must not be blank")
		return
	}

	pending := &schema.PendingItem{
		ID:             ulid.Make().String(),
		Name:           name,
		Description:    req.Description,
		CoolnessFactor: req.CoolnessFactor,
		Creator:        domain.NormalizeAddress(req.Creator),
	}

	if err := h.store.CreatePendingItem(c.Request.Context(), pending); err != nil {
		respondInternalError(c, err, "Failed to record item", zap.String("pending_id", pending.ID))
		return
	}

	c.JSON(http.StatusCreated, toPendingItem(pending))
}

// GetPendingItem returns a recorded submission by its ULID
func (h *Handler) GetPendingItem(c *gin.Context) {
	id := c.Param("id")
	if _, err := ulid.Parse(id); err != nil {
		respondBadRequest(c, "Invalid pending item id", id)
		return
	}

	pending, err := h.store.GetPendingItem(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get pending item", zap.String("pending_id", id))
		return
	}
	if pending == nil {
		respondNotFound(c, "Pending item not found")
		return
	}

	c.JSON(http.StatusOK, toPendingItem(pending))
}
