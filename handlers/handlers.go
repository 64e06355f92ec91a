package handlers

import (
	"context"
	"net/http"
	"saasanalytics/core"
	"saasanalytics/database"
	"saasanalytics/models"
	"saasanalytics/service"
	"saasanalytics/version"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rootMessage = "SaaS Analytics Assistant API is running!"

// Store is the part of the database the HTTP layer needs.
type Store interface {
	Session(ctx context.Context) *gorm.DB
	Ping(ctx context.Context) bool
	Dialect() string
}

// Handler serves the API. It holds no per-request state.
type Handler struct {
	store    Store
	services *service.Services
	errors   *core.ErrorLogger
	log      *zap.Logger
}

// New constructs the API handler.
func New(store Store, services *service.Services, errLog *core.ErrorLogger, log *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		services: services,
		errors:   errLog,
		log:      log.Named("http"),
	}
}

// Root is the liveness endpoint
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": rootMessage})
}

// Query answers a natural-language question. Failures after validation are
// reported in the envelope with status 200.
func (h *Handler) Query(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.record(c, "api.query", core.Validation("bind_query", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	ctx := c.Request.Context()
	result, err := h.services.Analytics.Analyze(ctx, h.store.Session(ctx), req.Normalize())
	if err != nil {
		h.record(c, "api.query", err)
		c.JSON(http.StatusOK, models.Failed(err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.Succeeded(result))
}

// GenerateData adds a batch of sample data, whether or not data exists.
func (h *Handler) GenerateData(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.services.Data.GenerateSampleData(ctx, h.store.Session(ctx))
	if err != nil {
		h.record(c, "api.generate_data", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "generated": summary})
}

// InitializeDatabase seeds sample data only when the store has no users.
func (h *Handler) InitializeDatabase(c *gin.Context) {
	ctx := c.Request.Context()
	res, err := h.services.Data.InitializeDatabase(ctx, h.store.Session(ctx))
	if err != nil {
		h.record(c, "api.initialize_database", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	if res.AlreadyInitialized {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Database already initialized",
			"user_count": res.UserCount,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Database initialized successfully",
		"generated": res.Generated,
	})
}

// HealthCheck health endpoint
func (h *Handler) HealthCheck(c *gin.Context) {
	dbHealthy := h.store.Ping(c.Request.Context())

	health := gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().Unix(),
		"db_healthy":    dbHealthy,
		"dialect":       h.store.Dialect(),
		"cache_enabled": h.services.Analytics.CacheEnabled(),
		"version":       version.GetFullVersion(),
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	generatedAt, ok, err := database.GetSetting(h.store.Session(c.Request.Context()), models.SettingSampleDataGeneratedAt)
	if err != nil {
		h.log.Warn("failed to read sample data timestamp", zap.Error(err))
	}
	if ok {
		health["sample_data_generated_at"] = generatedAt
	}

	c.JSON(http.StatusOK, health)
}

// GetErrorLogs returns recent error logs, newest first
func (h *Handler) GetErrorLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.errors.Recent())
}

// ClearErrorLogs wipes error logs
func (h *Handler) ClearErrorLogs(c *gin.Context) {
	h.errors.Clear()
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Error logs cleared"})
}

// record keeps err in the error ring buffer and logs it with its kind.
func (h *Handler) record(c *gin.Context, source string, err error) {
	h.errors.Record(source, err)

	kind := core.KindOf(err)
	fields := []zap.Field{
		zap.String("source", source),
		zap.String("error_kind", string(kind)),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	}
	if kind == core.KindValidation {
		h.log.Info("request rejected", fields...)
		return
	}
	h.log.Error("request failed", append(fields, zap.String("op", core.Describe(err)))...)
}
