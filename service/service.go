package service

import (
	"saasanalytics/config"
	"saasanalytics/llm"

	"go.uber.org/zap"
)

// Services is the service container handed to the HTTP layer.
type Services struct {
	Analytics *AnalyticsService
	Data      *DataGenerator
}

// NewServices wires all services.
func NewServices(cfg *config.Config, schema SchemaSource, model llm.Model, cache SQLCache, log *zap.Logger) *Services {
	return &Services{
		Analytics: NewAnalyticsService(cfg, schema, model, cache, log),
		Data:      NewDataGenerator(cfg, log),
	}
}
