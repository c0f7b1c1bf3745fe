package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/mint-sync/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler *Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Read endpoints (public)
		v1.GET("/items/:token_id", handler.GetItem)
		v1.GET("/profiles/:owner", handler.GetProfile)

		// Legacy direct-write path (requires authentication)
		v1.POST("/items", middleware.Auth(authCfg), handler.CreateItem)
		v1.GET("/items/pending/:id", middleware.Auth(authCfg), handler.GetPendingItem)
	}
}
