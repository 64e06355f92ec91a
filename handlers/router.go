package handlers

import (
	"saasanalytics/config"
	"saasanalytics/core"
	"saasanalytics/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with middleware and all API routes.
func NewRouter(cfg *config.Config, h *Handler, errLog *core.ErrorLogger, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(requestID())
	r.Use(requestLogger(log.Named("access")))
	r.Use(requestMetrics())
	r.Use(recovery(log, errLog))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
	}))

	r.GET("/", h.Root)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.POST("/query", h.Query)
		api.POST("/generate-data", h.GenerateData)
		api.POST("/initialize-database", h.InitializeDatabase)

		api.GET("/health", h.HealthCheck)

		// Error log routes
		api.GET("/error-logs", h.GetErrorLogs)
		api.DELETE("/error-logs", h.ClearErrorLogs)
	}

	return r
}
