package service

import (
	"context"
	"errors"
	"saasanalytics/core"
	"saasanalytics/database"
	"saasanalytics/models"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type analyticsFixture struct {
	svc   *AnalyticsService
	model *scriptedModel
	store *database.Store
	ctx   context.Context
}

func (f *analyticsFixture) session() *gorm.DB {
	return f.store.Session(f.ctx)
}

func newAnalyticsFixture(t *testing.T, cache SQLCache) (*analyticsFixture, func() int64) {
	t.Helper()
	cfg := testConfig(t)
	store := openTestStore(t, cfg)
	log := zaptest.NewLogger(t)

	gen := NewDataGenerator(cfg, log)
	_, err := gen.GenerateSampleData(context.Background(), store.Session(context.Background()))
	require.NoError(t, err)

	model := &scriptedModel{insight: "Ten users signed up."}
	svc := NewAnalyticsService(cfg, store, model, cache, log)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	countUsers := func() int64 {
		var n int64
		require.NoError(t, store.Session(context.Background()).Model(&models.User{}).Count(&n).Error)
		return n
	}
	return &analyticsFixture{svc: svc, model: model, store: store, ctx: context.Background()}, countUsers
}

func TestAnalyze_MetricResult(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sql = "```sql\nSELECT COUNT(*) AS total_users FROM users\n```"

	result, err := f.svc.Analyze(f.ctx, f.session(), "How many users do we have?")
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) AS total_users FROM users", result.SQLQuery)
	assert.Equal(t, models.ResultTypeMetric, result.Type)
	assert.Equal(t, 1, result.RowCount)
	assert.Len(t, result.Data, result.RowCount)
	assert.EqualValues(t, 10, result.Data[0]["total_users"])
	assert.Equal(t, "Ten users signed up.", result.Insights)
}

func TestAnalyze_EmptyResultIsTable(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sql = "SELECT name FROM users WHERE plan = 'does-not-exist'"
	f.model.insight = "No matching data was found."

	result, err := f.svc.Analyze(f.ctx, f.session(), "Who is on the imaginary plan?")
	require.NoError(t, err)

	assert.Equal(t, models.ResultTypeTable, result.Type)
	assert.Equal(t, 0, result.RowCount)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}

func TestAnalyze_MultiColumnSingleRowIsTable(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sql = "SELECT COUNT(*) AS users, SUM(mrr) AS mrr FROM subscriptions"

	result, err := f.svc.Analyze(f.ctx, f.session(), "users and revenue")
	require.NoError(t, err)
	assert.Equal(t, models.ResultTypeTable, result.Type)
	assert.Equal(t, 1, result.RowCount)
}

func TestAnalyze_BlankQuestion(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)

	_, err := f.svc.Analyze(f.ctx, f.session(), "   ")
	require.Error(t, err)
	assert.Equal(t, core.KindValidation, core.KindOf(err))
	assert.Empty(t, f.model.prompts, "model must not be called")
}

func TestAnalyze_ModelFailure(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sqlErr = errors.New("quota exceeded")

	_, err := f.svc.Analyze(f.ctx, f.session(), "How many users?")
	require.Error(t, err)
	assert.Equal(t, core.KindUpstreamModel, core.KindOf(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAnalyze_EmptyModelAnswer(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sql = "```sql\n```"

	_, err := f.svc.Analyze(f.ctx, f.session(), "How many users?")
	require.Error(t, err)
	assert.Equal(t, core.KindUpstreamModel, core.KindOf(err))
}

func TestAnalyze_InvalidSQL(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sql = "SELECT nope FROM missing_table"

	_, err := f.svc.Analyze(f.ctx, f.session(), "Something impossible")
	require.Error(t, err)
	assert.Equal(t, core.KindQueryExecution, core.KindOf(err))
	assert.Equal(t, "SELECT nope FROM missing_table", core.ContextOf(err)["sql"])
	assert.Len(t, f.model.prompts, 1, "insights are not requested after a failed query")
}

func TestAnalyze_InsightFailure(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sql = "SELECT COUNT(*) FROM users"
	f.model.insightErr = context.DeadlineExceeded

	_, err := f.svc.Analyze(f.ctx, f.session(), "How many users?")
	require.Error(t, err)
	assert.Equal(t, core.KindUpstreamModel, core.KindOf(err))
}

func TestExecuteQuery_GuardBlocksWrites(t *testing.T) {
	f, countUsers := newAnalyticsFixture(t, nil)

	_, err := f.svc.ExecuteQuery(f.ctx, f.session(), "DELETE FROM users")
	require.Error(t, err)
	assert.Equal(t, core.KindQueryExecution, core.KindOf(err))
	assert.Equal(t, int64(10), countUsers())
}

func TestExecuteQuery_ReadOnlyCTEWithStringFunctions(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)

	outcome, err := f.svc.ExecuteQuery(f.ctx, f.session(),
		"WITH t AS (SELECT REPLACE(name, ' ', '_') AS n FROM users) SELECT n FROM t")
	require.NoError(t, err)
	assert.Equal(t, 10, outcome.RowCount)
	assert.NotContains(t, outcome.Data[0]["n"], " ")

	// the connection is writable again once the query is done
	require.NoError(t, database.SetSetting(f.session(), "after_query", "ok"))
}

func TestExecuteQuery_GuardDisabled(t *testing.T) {
	f, countUsers := newAnalyticsFixture(t, nil)
	f.svc.cfg.SQLGuard = false

	outcome, err := f.svc.ExecuteQuery(f.ctx, f.session(), "DELETE FROM events")
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.RowCount)
	assert.Equal(t, int64(10), countUsers())
}

func TestGenerateSQLQuery_Prompt(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.model.sql = "SELECT 1"

	_, err := f.svc.GenerateSQLQuery(f.ctx, "What is our MRR?")
	require.NoError(t, err)
	require.Len(t, f.model.prompts, 1)

	prompt := f.model.prompts[0]
	assert.Contains(t, prompt, "SQLite")
	assert.Contains(t, prompt, "2025-06-01")
	assert.Contains(t, prompt, "Table users:")
	assert.Contains(t, prompt, "Table subscriptions:")
	assert.Contains(t, prompt, "monthly recurring revenue")
	assert.Contains(t, prompt, `"What is our MRR?"`)
	assert.NotContains(t, prompt, "app_settings")
}

func TestGenerateInsights_CapsRows(t *testing.T) {
	f, _ := newAnalyticsFixture(t, nil)
	f.svc.cfg.MaxInsightRows = 2

	outcome := &QueryOutcome{
		Data:     []map[string]any{{"n": 1}, {"n": 2}, {"n": 3}},
		Columns:  []string{"n"},
		Type:     models.ResultTypeTable,
		RowCount: 3,
	}
	insight, err := f.svc.GenerateInsights(f.ctx, "numbers", outcome)
	require.NoError(t, err)
	assert.Equal(t, "Ten users signed up.", insight)

	prompt := f.model.prompts[0]
	assert.Contains(t, prompt, "first 2 of 3 rows")
	assert.Contains(t, prompt, `[{"n":1},{"n":2}]`)
}

func TestAnalyze_CacheHitSkipsSQLGeneration(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	f, _ := newAnalyticsFixture(t, cache)
	f.model.sql = "SELECT COUNT(*) AS total FROM users"

	first, err := f.svc.Analyze(f.ctx, f.session(), "How many users?")
	require.NoError(t, err)
	require.Equal(t, 1, f.model.sqlCallCount())

	second, err := f.svc.Analyze(f.ctx, f.session(), "how many   USERS?")
	require.NoError(t, err)
	assert.Equal(t, 1, f.model.sqlCallCount(), "cached SQL is reused")
	assert.Equal(t, first.SQLQuery, second.SQLQuery)
	assert.True(t, f.svc.CacheEnabled())
}

func TestAnalyze_FailedSQLIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	f, _ := newAnalyticsFixture(t, cache)
	f.model.sql = "SELECT broken FROM nowhere"

	_, err = f.svc.Analyze(f.ctx, f.session(), "broken question")
	require.Error(t, err)
	assert.Empty(t, mr.Keys())
}
