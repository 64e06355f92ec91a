package service

import (
	"context"
	"path/filepath"
	"saasanalytics/config"
	"saasanalytics/database"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseURL:          "sqlite:///" + filepath.Join(t.TempDir(), "analytics.db"),
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  5000,
		SQLiteJournalMode:    "WAL",
		SQLiteSynchronous:    "NORMAL",
		SQLiteForeignKeys:    true,
		SQLiteMaxOpenConns:   1,
		SQLiteMaxIdleConns:   1,
		ModelTimeout:         5 * time.Second,
		QueryTimeout:         5 * time.Second,
		MaxInsightRows:       50,
		SQLGuard:             true,
		SampleUsers:          10,
	}
}

func openTestStore(t *testing.T, cfg *config.Config) *database.Store {
	t.Helper()
	store, err := database.Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, store.CreateTables(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// scriptedModel answers SQL prompts with sql and insight prompts with insight.
type scriptedModel struct {
	mu         sync.Mutex
	sql        string
	sqlErr     error
	insight    string
	insightErr error
	prompts    []string
	sqlCalls   int
}

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)

	if strings.HasSuffix(prompt, "SQL query:") {
		m.sqlCalls++
		return m.sql, m.sqlErr
	}
	return m.insight, m.insightErr
}

func (m *scriptedModel) sqlCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sqlCalls
}
