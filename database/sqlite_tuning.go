package database

import (
	"fmt"
	"net/url"
	"saasanalytics/config"
	"strings"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

type poolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// parseDatabaseURL splits DATABASE_URL into a driver name and the DSN that
// driver expects. "sqlite:///./app.db" and bare paths select SQLite;
// postgres:// and postgresql:// URLs are passed through unchanged.
func parseDatabaseURL(raw string) (driver, dsn string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("empty database URL")
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return driverPostgres, raw, nil
	case strings.HasPrefix(lower, "sqlite:///"):
		path := raw[len("sqlite:///"):]
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL %q has no path", raw)
		}
		return driverSQLite, path, nil
	case strings.HasPrefix(lower, "sqlite://"):
		path := raw[len("sqlite://"):]
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL %q has no path", raw)
		}
		return driverSQLite, path, nil
	case strings.Contains(raw, "://"):
		scheme, _, _ := strings.Cut(raw, "://")
		return "", "", fmt.Errorf("unsupported database scheme %q", scheme)
	default:
		return driverSQLite, raw, nil
	}
}

// sanitizePoolConfig normalizes a poolConfig, enforcing sensible bounds on its fields.
// It ensures maxOpenConns is at least 1, clamps maxIdleConns to the range [0, maxOpenConns],
// and forces maxIdleSec and maxLifeSec to be at least 0.
func sanitizePoolConfig(cfg poolConfig) poolConfig {
	if cfg.maxOpenConns < 1 {
		cfg.maxOpenConns = 1
	}
	if cfg.maxIdleConns < 0 {
		cfg.maxIdleConns = 0
	}
	if cfg.maxIdleConns > cfg.maxOpenConns {
		cfg.maxIdleConns = cfg.maxOpenConns
	}
	if cfg.maxIdleSec < 0 {
		cfg.maxIdleSec = 0
	}
	if cfg.maxLifeSec < 0 {
		cfg.maxLifeSec = 0
	}
	return cfg
}

// buildSQLiteDSN constructs a SQLite DSN from dbPath and settings.
// If settings.SQLitePragmasEnabled is true, it appends SQLite PRAGMA parameters
// (busy_timeout, journal_mode, synchronous, foreign_keys) to the query portion,
// preserving any existing query parameters.
func buildSQLiteDSN(dbPath string, settings *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")

	query, _ := url.ParseQuery(rawQuery)

	if settings.SQLitePragmasEnabled {
		if settings.SQLiteBusyTimeoutMS > 0 {
			query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
		}
		if journalMode := normalizeSQLiteJournalMode(settings.SQLiteJournalMode); journalMode != "" {
			query.Add("_pragma", fmt.Sprintf("journal_mode(%s)", journalMode))
		}
		if synchronous := normalizeSQLiteSynchronous(settings.SQLiteSynchronous); synchronous != "" {
			query.Add("_pragma", fmt.Sprintf("synchronous(%s)", synchronous))
		}
		if settings.SQLiteForeignKeys {
			query.Add("_pragma", "foreign_keys(1)")
		} else {
			query.Add("_pragma", "foreign_keys(0)")
		}
	}

	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// currentPoolConfig picks the pool settings for driver from settings and
// enforces sane bounds. SQLite keeps its own knobs since it is usually
// limited to a single writer connection.
func currentPoolConfig(driver string, settings *config.Config) poolConfig {
	if driver == driverSQLite {
		return sanitizePoolConfig(poolConfig{
			maxOpenConns: settings.SQLiteMaxOpenConns,
			maxIdleConns: settings.SQLiteMaxIdleConns,
			maxIdleSec:   settings.SQLiteConnMaxIdleSec,
			maxLifeSec:   settings.SQLiteConnMaxLifeSec,
		})
	}
	return sanitizePoolConfig(poolConfig{
		maxOpenConns: settings.DBMaxOpenConns,
		maxIdleConns: settings.DBMaxIdleConns,
		maxLifeSec:   settings.DBConnMaxLifetimeSecond,
	})
}

// normalizeSQLiteJournalMode converts the input to an accepted uppercase SQLite journal mode or returns an empty string if the value is invalid.
// Accepted modes: "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF".
func normalizeSQLiteJournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	default:
		return ""
	}
}

// normalizeSQLiteSynchronous normalizes and validates a SQLite `synchronous` pragma value.
func normalizeSQLiteSynchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA":
		return value
	case "0", "1", "2", "3":
		return value
	default:
		return ""
	}
}
