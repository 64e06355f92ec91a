package database

import (
	"context"
	"fmt"
	"saasanalytics/config"
	"saasanalytics/models"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SQL dialects reported by Dialect.
const (
	DialectSQLite   = "SQLite"
	DialectPostgres = "PostgreSQL"
)

// Store owns the connection pool to the relational store. Handlers never
// share a session: each request obtains its own through Session.
type Store struct {
	db     *gorm.DB
	driver string
	log    *zap.Logger
}

// Open connects to cfg.DatabaseURL, applies pool settings and, for SQLite,
// the configured PRAGMAs. It does not create tables; see CreateTables.
func Open(cfg *config.Config, log *zap.Logger) (*Store, error) {
	driver, dsn, err := parseDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case driverSQLite:
		dialector = sqlite.Open(buildSQLiteDSN(dsn, cfg))
	case driverPostgres:
		// Use lib/pq through database/sql instead of the default pgx pool.
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, cfg.LogLevel == "DEBUG"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	store, err := newStore(db, driver, cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info("database opened",
		zap.String("driver", driver),
		zap.String("dialect", store.Dialect()),
	)
	return store, nil
}

func newStore(db *gorm.DB, driver string, cfg *config.Config, log *zap.Logger) (*Store, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	pool := currentPoolConfig(driver, cfg)
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	// Apply PRAGMAs again as a best-effort startup initialization (useful for existing DB files).
	// Connection URL parameters ensure PRAGMAs are applied for new connections too.
	if driver == driverSQLite && cfg.SQLitePragmasEnabled {
		if cfg.SQLiteBusyTimeoutMS > 0 {
			db.Exec("PRAGMA busy_timeout = ?", cfg.SQLiteBusyTimeoutMS)
		}
		if journalMode := normalizeSQLiteJournalMode(cfg.SQLiteJournalMode); journalMode != "" {
			db.Exec("PRAGMA journal_mode = " + journalMode)
		}
		if synchronous := normalizeSQLiteSynchronous(cfg.SQLiteSynchronous); synchronous != "" {
			db.Exec("PRAGMA synchronous = " + synchronous)
		}
		if cfg.SQLiteForeignKeys {
			db.Exec("PRAGMA foreign_keys = ON")
		} else {
			db.Exec("PRAGMA foreign_keys = OFF")
		}
	}

	return &Store{db: db, driver: driver, log: log}, nil
}

// CreateTables creates any missing tables and columns. Safe to call repeatedly.
func (s *Store) CreateTables(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	s.log.Info("database tables ready")
	return nil
}

// Session returns a fresh session bound to ctx. Connections go back to the
// pool after each statement and are abandoned when ctx is canceled, so a
// session never outlives the request that created it.
func (s *Store) Session(ctx context.Context) *gorm.DB {
	return s.db.Session(&gorm.Session{NewDB: true, Context: ctx})
}

// Dialect names the SQL dialect generated queries must be written in.
func (s *Store) Dialect() string {
	if s.driver == driverPostgres {
		return DialectPostgres
	}
	return DialectSQLite
}

// Ping reports whether the store answers within a short deadline.
func (s *Store) Ping(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx) == nil
}

// Close closes the database connection and releases resources
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	s.log.Info("closing database connection")
	return sqlDB.Close()
}
