// Package api wires the engine's HTTP surface: router, handlers, and
// middleware.
package api

import (
	"github.com/gin-gonic/gin"

	"kpiauditor/internal/api/handler"
	"kpiauditor/internal/api/middleware"
	"kpiauditor/internal/engine"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	store *engine.Store,
	runner *engine.Runner,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(cors))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	auditHandler := handler.NewAuditHandler(store, runner)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API routes
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", healthHandler.Health)

		// Audit lifecycle
		apiGroup.POST("/audit/start", auditHandler.StartAudit)
		apiGroup.GET("/audit/:id", auditHandler.GetAudit)
		apiGroup.POST("/audit/:id/cancel", auditHandler.CancelAudit)
		apiGroup.DELETE("/audit/:id", auditHandler.DeleteAudit)

		// History
		apiGroup.GET("/audits", auditHandler.ListAudits)

		// Schema
		apiGroup.GET("/kpis", auditHandler.ListKPIs)
	}

	return r
}
