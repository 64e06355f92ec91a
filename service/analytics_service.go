package service

import (
	"context"
	"encoding/json"
	"errors"
	"saasanalytics/config"
	"saasanalytics/core"
	"saasanalytics/database"
	"saasanalytics/llm"
	"saasanalytics/metrics"
	"saasanalytics/models"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaSource describes the tables generated SQL may query.
type SchemaSource interface {
	DescribeSchema(ctx context.Context) ([]database.TableSchema, error)
	Dialect() string
}

// QueryOutcome is the materialized result of one SQL statement.
type QueryOutcome struct {
	Data     []map[string]any `json:"data"`
	Columns  []string         `json:"columns"`
	Type     string           `json:"type"`
	RowCount int              `json:"row_count"`
}

// AnalyticsService turns a question into SQL, runs it and explains the result.
type AnalyticsService struct {
	schema SchemaSource
	model  llm.Model
	cache  SQLCache
	cfg    *config.Config
	log    *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewAnalyticsService constructs the analytics service. A nil cache disables caching.
func NewAnalyticsService(cfg *config.Config, schema SchemaSource, model llm.Model, cache SQLCache, log *zap.Logger) *AnalyticsService {
	if cache == nil {
		cache = NopCache{}
	}
	return &AnalyticsService{
		schema: schema,
		model:  model,
		cache:  cache,
		cfg:    cfg,
		log:    log.Named("analytics"),
		tracer: otel.Tracer("saasanalytics/service"),
		now:    time.Now,
	}
}

// GenerateSQLQuery asks the model for a query answering question.
func (s *AnalyticsService) GenerateSQLQuery(ctx context.Context, question string) (string, error) {
	const op = "generate_sql"

	question = strings.TrimSpace(question)
	if question == "" {
		return "", core.Validation(op, "question must not be empty")
	}

	ctx, span := s.tracer.Start(ctx, "analytics.generate_sql")
	defer span.End()

	tables, err := s.schema.DescribeSchema(ctx)
	if err != nil {
		return "", endSpan(span, core.Internal(op, err))
	}

	prompt := buildSQLPrompt(question, s.schema.Dialect(), tables, s.now())
	text, err := s.callModel(ctx, "sql", prompt)
	if err != nil {
		return "", endSpan(span, core.UpstreamModel(op, err))
	}

	sqlText := cleanSQL(text)
	if sqlText == "" {
		return "", endSpan(span, core.UpstreamModel(op, llm.ErrEmptyResponse))
	}

	span.SetAttributes(attribute.Int("sql.length", len(sqlText)))
	return sqlText, nil
}

// ExecuteQuery runs sqlText on db and materializes every row.
// The rows are closed before returning, also on failure.
func (s *AnalyticsService) ExecuteQuery(ctx context.Context, db *gorm.DB, sqlText string) (*QueryOutcome, error) {
	const op = "execute_query"

	ctx, span := s.tracer.Start(ctx, "analytics.execute_query")
	defer span.End()

	if s.cfg.SQLGuard {
		if err := guardStatement(sqlText); err != nil {
			return nil, endSpan(span, core.QueryExecution(op, sqlText, err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	var data []map[string]any
	var columns []string
	run := func(tx *gorm.DB) error {
		rows, err := tx.Raw(sqlText).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		data, columns, err = scanRows(rows)
		return err
	}

	var err error
	if s.cfg.SQLGuard {
		err = readOnly(ctx, db, s.schema.Dialect(), run)
	} else {
		err = run(db.WithContext(ctx))
	}
	if err != nil {
		return nil, endSpan(span, core.QueryExecution(op, sqlText, err))
	}

	metrics.QueryRows.Observe(float64(len(data)))
	span.SetAttributes(attribute.Int("sql.rows", len(data)))

	return &QueryOutcome{
		Data:     data,
		Columns:  columns,
		Type:     resultType(data, columns),
		RowCount: len(data),
	}, nil
}

// GenerateInsights asks the model for a short business summary of outcome.
func (s *AnalyticsService) GenerateInsights(ctx context.Context, question string, outcome *QueryOutcome) (string, error) {
	const op = "generate_insights"

	ctx, span := s.tracer.Start(ctx, "analytics.generate_insights")
	defer span.End()

	rows := outcome.Data
	if limit := s.cfg.MaxInsightRows; limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return "", endSpan(span, core.Internal(op, err))
	}

	prompt := buildInsightPrompt(strings.TrimSpace(question), string(encoded), outcome.RowCount, len(rows))
	text, err := s.callModel(ctx, "insights", prompt)
	if err != nil {
		return "", endSpan(span, core.UpstreamModel(op, err))
	}
	return strings.TrimSpace(text), nil
}

// Analyze runs the full pipeline: question to SQL, SQL to rows, rows to insight.
func (s *AnalyticsService) Analyze(ctx context.Context, db *gorm.DB, question string) (result *models.QueryResult, err error) {
	question = strings.TrimSpace(question)

	ctx, span := s.tracer.Start(ctx, "analytics.analyze")
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			kind := core.KindOf(err)
			metrics.Queries.WithLabelValues("failure").Inc()
			metrics.QueryFailures.WithLabelValues(string(kind)).Inc()
			span.SetStatus(codes.Error, string(kind))
			s.log.Warn("question failed",
				zap.String("question", question),
				zap.String("error_kind", string(kind)),
				zap.Error(err),
				zap.Duration("elapsed", time.Since(start)),
			)
			return
		}
		metrics.Queries.WithLabelValues("success").Inc()
		s.log.Info("question answered",
			zap.String("question", question),
			zap.String("type", result.Type),
			zap.Int("rows", result.RowCount),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	if question == "" {
		return nil, core.Validation("analyze", "question must not be empty")
	}

	key := cacheKey(s.schema.Dialect(), question)
	sqlText, cached := s.cachedSQL(ctx, key)
	if !cached {
		sqlText, err = s.GenerateSQLQuery(ctx, question)
		if err != nil {
			return nil, err
		}
	}
	span.SetAttributes(attribute.Bool("sql.cached", cached))

	outcome, err := s.ExecuteQuery(ctx, db, sqlText)
	if err != nil {
		if cached {
			if derr := s.cache.Delete(ctx, key); derr != nil {
				s.log.Warn("sql cache delete failed", zap.Error(derr))
			}
		}
		return nil, err
	}
	if !cached && s.cache.Enabled() {
		if serr := s.cache.Set(ctx, key, sqlText); serr != nil {
			s.log.Warn("sql cache write failed", zap.Error(serr))
		}
	}

	insights, err := s.GenerateInsights(ctx, question, outcome)
	if err != nil {
		return nil, err
	}

	return &models.QueryResult{
		SQLQuery: sqlText,
		Data:     outcome.Data,
		Type:     outcome.Type,
		Insights: insights,
		RowCount: outcome.RowCount,
	}, nil
}

// CacheEnabled reports whether generated SQL is cached.
func (s *AnalyticsService) CacheEnabled() bool {
	return s.cache.Enabled()
}

func (s *AnalyticsService) cachedSQL(ctx context.Context, key string) (string, bool) {
	if !s.cache.Enabled() {
		return "", false
	}
	sqlText, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.SQLCacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("sql cache read failed", zap.Error(err))
		return "", false
	case !ok:
		metrics.SQLCacheLookups.WithLabelValues("miss").Inc()
		return "", false
	default:
		metrics.SQLCacheLookups.WithLabelValues("hit").Inc()
		return sqlText, true
	}
}

func (s *AnalyticsService) callModel(ctx context.Context, stage, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.model.Generate(ctx, prompt)
	metrics.ModelCallDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("model call timed out", zap.String("stage", stage), zap.Duration("timeout", s.cfg.ModelTimeout))
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func endSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(core.KindOf(err)))
	return err
}
