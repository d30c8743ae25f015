// Package api exposes the engine operations over HTTP using Gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ATKuehn/supersearch/config"
	"github.com/ATKuehn/supersearch/internal/metrics"
	"github.com/ATKuehn/supersearch/services"
)

// API holds dependencies for API handlers, primarily the engine service.
type API struct {
	engine services.EngineService
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.EngineService) *API {
	return &API{engine: engine}
}

// SetupRoutes defines all the API routes and middleware for the engine.
// m may be nil when metrics are disabled; the /metrics endpoint is then
// not registered.
func SetupRoutes(router *gin.Engine, engine services.EngineService, cfg *config.Config, m *metrics.Metrics) {
	apiHandler := NewAPI(engine)

	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(RequestSizeLimitMiddleware(cfg.Server.MaxRequestBytes))
	router.Use(RateLimitMiddleware(cfg.Server.RateLimit, cfg.Server.RateBurst))
	if m != nil {
		router.Use(MetricsMiddleware(m))
	}

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Search and document routes
	router.POST("/search", apiHandler.SearchHandler)
	router.GET("/documents", apiHandler.GetDocumentHandler) // document IDs are paths, so they travel in ?id=

	// Indexing and snapshot routes
	router.POST("/index", apiHandler.IndexDirectoryHandler)
	indexRoutes := router.Group("/indexes")
	{
		indexRoutes.POST("/save", apiHandler.SaveIndexesHandler) // Persist all three indexes
		indexRoutes.POST("/load", apiHandler.LoadIndexesHandler) // Replace in-memory indexes from disk
	}

	// Stats and metrics routes
	router.GET("/stats", apiHandler.GetStatsHandler)
	if m != nil && cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
}

// HealthCheckHandler reports service liveness.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetStatsHandler returns current index and store sizes.
func (api *API) GetStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Stats())
}
