package main

import (
	"fmt"
	"os"
	"saasanalytics/config"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the process logger from LOG_LEVEL, LOG_FORMAT and LOG_FILE.
// json selects the production encoder; anything else the development one.
// When a log file is configured it is rotated first and added as an extra sink.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = zapcore.DebugLevel
	case "WARN", "WARNING":
		level = zapcore.WarnLevel
	case "ERROR":
		level = zapcore.ErrorLevel
	}

	var zcfg zap.Config
	if cfg.LogFormat == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.LogFilePath != "" {
		if err := rotateLogFile(cfg.LogFilePath); err != nil {
			return nil, err
		}
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.LogFilePath)
		zcfg.ErrorOutputPaths = append(zcfg.ErrorOutputPaths, cfg.LogFilePath)
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log.With(zap.String("env", cfg.Environment)), nil
}

// rotateLogFile keeps a single history file: path is moved to path.1,
// replacing any older history.
func rotateLogFile(path string) error {
	// Remove existing history to keep only one backup
	_ = os.Remove(path + ".1")

	// Rotate current log to .1 if present
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".1"); err != nil {
			return fmt.Errorf("failed to rotate existing log: %w", err)
		}
	}
	return nil
}
