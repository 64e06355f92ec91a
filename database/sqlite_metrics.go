package database

import (
	"context"
	"errors"
	"saasanalytics/metrics"
	"strings"
)

func classifySQLiteError(err error) (busy bool, locked bool) {
	if err == nil {
		return false, false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, false
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy timeout") {
		busy = true
	}
	if strings.Contains(msg, "sqlite_locked") || strings.Contains(msg, "database table is locked") {
		locked = true
	}

	return busy, locked
}

func recordStoreError(err error) {
	busy, locked := classifySQLiteError(err)
	if busy {
		metrics.StoreErrors.WithLabelValues("busy").Inc()
	}
	if locked {
		metrics.StoreErrors.WithLabelValues("locked").Inc()
	}
}
