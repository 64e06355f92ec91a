package core

import (
	"encoding/json"
	"errors"
	"saasanalytics/models"
	"sync"
	"time"
)

const defaultMaxErrorLogs = 100

// ErrorLogger keeps the most recent failures in memory so they can be
// inspected over the API without shipping logs anywhere.
type ErrorLogger struct {
	logs      []*models.ErrorLog
	mu        sync.RWMutex
	maxLogs   int
	idCounter int
}

// NewErrorLogger returns a logger that retains at most maxLogs entries.
func NewErrorLogger(maxLogs int) *ErrorLogger {
	if maxLogs <= 0 {
		maxLogs = defaultMaxErrorLogs
	}
	return &ErrorLogger{
		logs:    make([]*models.ErrorLog, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

// Record stores err under source. The error's kind and context are captured.
func (e *ErrorLogger) Record(source string, err error) {
	if err == nil {
		return
	}

	level := "ERROR"
	kind := KindOf(err)
	if kind == KindValidation {
		level = "WARN"
	}

	contextJSON := ""
	if ctx := ContextOf(err); len(ctx) > 0 {
		if data, jerr := json.Marshal(ctx); jerr == nil {
			contextJSON = string(data)
		}
	}

	detail := ""
	if inner := errors.Unwrap(err); inner != nil {
		detail = inner.Error()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.logs) >= e.maxLogs {
		e.logs = e.logs[1:]
	}

	e.idCounter++
	e.logs = append(e.logs, &models.ErrorLog{
		ID:        e.idCounter,
		Timestamp: time.Now(),
		Level:     level,
		Source:    source,
		Kind:      string(kind),
		Message:   err.Error(),
		Detail:    detail,
		Context:   contextJSON,
	})
}

// Recent returns the retained entries, newest first.
func (e *ErrorLogger) Recent() []*models.ErrorLog {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := len(e.logs)
	result := make([]*models.ErrorLog, total)
	for i := 0; i < total; i++ {
		result[i] = e.logs[total-1-i]
	}
	return result
}

// Clear removes all entries.
func (e *ErrorLogger) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = make([]*models.ErrorLog, 0, e.maxLogs)
	e.idCounter = 0
}
