package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default origins: local development plus Vercel preview deployments.
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8000",
	"https://*.vercel.app",
}

// Config holds the runtime configuration. It is built once by Load and is
// treated as read-only afterwards; components receive it by pointer.
type Config struct {
	Environment string
	Port        int
	LogLevel    string
	LogFormat   string
	LogFilePath string

	GeminiAPIKey   string
	GeminiModel    string
	ModelTimeout   time.Duration
	QueryTimeout   time.Duration
	MaxInsightRows int
	SQLGuard       bool

	DatabaseURL             string
	SQLitePragmasEnabled    bool
	SQLiteBusyTimeoutMS     int
	SQLiteJournalMode       string
	SQLiteSynchronous       string
	SQLiteForeignKeys       bool
	SQLiteMaxOpenConns      int
	SQLiteMaxIdleConns      int
	SQLiteConnMaxIdleSec    int
	SQLiteConnMaxLifeSec    int
	DBMaxOpenConns          int
	DBMaxIdleConns          int
	DBConnMaxLifetimeSecond int

	RedisURL    string
	SQLCacheTTL time.Duration

	SampleUsers int

	FrontendURL      string
	CORSExtraOrigins []string

	CLIMode     bool
	CLIServer   string
	ShowVersion bool
}

// AllowedOrigins returns the CORS allow-list: the default origins,
// FRONTEND_URL when set, and any CORS_EXTRA_ORIGINS entries.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(defaultOrigins)+1+len(c.CORSExtraOrigins))
	origins = append(origins, defaultOrigins...)
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	origins = append(origins, c.CORSExtraOrigins...)
	return origins
}

// Load reads .env (when present), the process environment, and the given
// command-line arguments, in increasing order of precedence.
// It returns flag.ErrHelp when -help was requested.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetInt("PORT"),
		LogLevel:    strings.ToUpper(v.GetString("LOG_LEVEL")),
		LogFormat:   strings.ToLower(v.GetString("LOG_FORMAT")),
		LogFilePath: v.GetString("LOG_FILE"),

		GeminiAPIKey:   strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:    v.GetString("GEMINI_MODEL"),
		ModelTimeout:   v.GetDuration("MODEL_TIMEOUT"),
		QueryTimeout:   v.GetDuration("QUERY_TIMEOUT"),
		MaxInsightRows: v.GetInt("MAX_INSIGHT_ROWS"),
		SQLGuard:       v.GetBool("SQL_GUARD_ENABLED"),

		DatabaseURL:             v.GetString("DATABASE_URL"),
		SQLitePragmasEnabled:    v.GetBool("SQLITE_PRAGMAS_ENABLED"),
		SQLiteBusyTimeoutMS:     v.GetInt("SQLITE_BUSY_TIMEOUT_MS"),
		SQLiteJournalMode:       v.GetString("SQLITE_JOURNAL_MODE"),
		SQLiteSynchronous:       v.GetString("SQLITE_SYNCHRONOUS"),
		SQLiteForeignKeys:       v.GetBool("SQLITE_FOREIGN_KEYS"),
		SQLiteMaxOpenConns:      v.GetInt("SQLITE_MAX_OPEN_CONNS"),
		SQLiteMaxIdleConns:      v.GetInt("SQLITE_MAX_IDLE_CONNS"),
		SQLiteConnMaxIdleSec:    v.GetInt("SQLITE_CONN_MAX_IDLE_SECONDS"),
		SQLiteConnMaxLifeSec:    v.GetInt("SQLITE_CONN_MAX_LIFETIME_SECONDS"),
		DBMaxOpenConns:          v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:          v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetimeSecond: v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS"),

		RedisURL:    v.GetString("REDIS_URL"),
		SQLCacheTTL: v.GetDuration("SQL_CACHE_TTL"),

		SampleUsers: v.GetInt("SAMPLE_USERS"),

		FrontendURL:      strings.TrimSpace(v.GetString("FRONTEND_URL")),
		CORSExtraOrigins: splitList(v.GetString("CORS_EXTRA_ORIGINS")),

		CLIMode:   v.GetBool("CLI_MODE"),
		CLIServer: v.GetString("CLI_SERVER"),
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", 8000)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("MODEL_TIMEOUT", "60s")
	v.SetDefault("QUERY_TIMEOUT", "30s")
	v.SetDefault("MAX_INSIGHT_ROWS", 50)
	v.SetDefault("SQL_GUARD_ENABLED", true)

	v.SetDefault("DATABASE_URL", "sqlite:///./saas_analytics.db")
	v.SetDefault("SQLITE_PRAGMAS_ENABLED", true)
	v.SetDefault("SQLITE_BUSY_TIMEOUT_MS", 5000)
	v.SetDefault("SQLITE_JOURNAL_MODE", "WAL")
	v.SetDefault("SQLITE_SYNCHRONOUS", "NORMAL")
	v.SetDefault("SQLITE_FOREIGN_KEYS", true)
	v.SetDefault("SQLITE_MAX_OPEN_CONNS", 1)
	v.SetDefault("SQLITE_MAX_IDLE_CONNS", 1)
	v.SetDefault("SQLITE_CONN_MAX_IDLE_SECONDS", 300)
	v.SetDefault("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 1800)

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SQL_CACHE_TTL", "1h")

	v.SetDefault("SAMPLE_USERS", 100)

	v.SetDefault("FRONTEND_URL", "")
	v.SetDefault("CORS_EXTRA_ORIGINS", "")

	v.SetDefault("CLI_MODE", false)
	v.SetDefault("CLI_SERVER", "http://localhost:8000")
}

// parseFlags applies command-line overrides on top of the environment values.
func (c *Config) parseFlags(args []string) error {
	name := "saas-analytics"
	if len(os.Args) > 0 {
		name = os.Args[0]
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "SaaS Analytics Assistant API\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", name)
		fmt.Fprintln(out, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  GEMINI_API_KEY                    API key for the Gemini language model")
		fmt.Fprintln(out, "  GEMINI_MODEL                      Gemini model name (default gemini-1.5-flash)")
		fmt.Fprintln(out, "  DATABASE_URL                      sqlite:///path or postgres:// URL (default sqlite:///./saas_analytics.db)")
		fmt.Fprintln(out, "  ENVIRONMENT                       Deployment environment name (default development)")
		fmt.Fprintln(out, "  FRONTEND_URL                      Extra origin allowed by CORS")
		fmt.Fprintln(out, "  CORS_EXTRA_ORIGINS                Comma separated extra CORS origins (wildcards allowed)")
		fmt.Fprintln(out, "  PORT                              HTTP server port (default 8000)")
		fmt.Fprintln(out, "  LOG_LEVEL                         DEBUG, INFO, WARN, ERROR (default INFO)")
		fmt.Fprintln(out, "  LOG_FORMAT                        console or json (default console)")
		fmt.Fprintln(out, "  LOG_FILE                          Also write logs to this file")
		fmt.Fprintln(out, "  MODEL_TIMEOUT                     Deadline for each language model call (default 60s)")
		fmt.Fprintln(out, "  QUERY_TIMEOUT                     Deadline for generated SQL execution (default 30s)")
		fmt.Fprintln(out, "  MAX_INSIGHT_ROWS                  Rows sent to the model for insights (default 50)")
		fmt.Fprintln(out, "  SQL_GUARD_ENABLED                 Only allow single SELECT/WITH statements (default true)")
		fmt.Fprintln(out, "  REDIS_URL                         Enable the question->SQL cache (redis://host:port/db)")
		fmt.Fprintln(out, "  SQL_CACHE_TTL                     Cache entry lifetime (default 1h)")
		fmt.Fprintln(out, "  SAMPLE_USERS                      Users created per sample data run (default 100)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED            Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE               SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS                SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS               Enable SQLite foreign_keys (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS             SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS             SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  DB_MAX_OPEN_CONNS                 PostgreSQL MaxOpenConns (default 10)")
		fmt.Fprintln(out, "  DB_MAX_IDLE_CONNS                 PostgreSQL MaxIdleConns (default 5)")
	}

	port := fs.Int("port", c.Port, "HTTP server port (overrides PORT)")
	db := fs.String("db", c.DatabaseURL, "Database URL (overrides DATABASE_URL)")
	logLevel := fs.String("log-level", c.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFormat := fs.String("log-format", c.LogFormat, "Log format: console or json (overrides LOG_FORMAT)")
	logFile := fs.String("log-file", c.LogFilePath, "Log file path (overrides LOG_FILE)")
	model := fs.String("model", c.GeminiModel, "Gemini model name (overrides GEMINI_MODEL)")
	sqlGuard := fs.Bool("sql-guard", c.SQLGuard, "Only execute single SELECT/WITH statements (overrides SQL_GUARD_ENABLED)")
	sampleUsers := fs.Int("sample-users", c.SampleUsers, "Users created per sample data run (overrides SAMPLE_USERS)")
	cliMode := fs.Bool("cli", c.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := fs.String("server", c.CLIServer, "Server URL for CLI mode")
	showVersion := fs.Bool("version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	c.Port = *port
	c.DatabaseURL = *db
	c.LogLevel = strings.ToUpper(*logLevel)
	c.LogFormat = strings.ToLower(*logFormat)
	c.LogFilePath = *logFile
	c.GeminiModel = *model
	c.SQLGuard = *sqlGuard
	c.SampleUsers = *sampleUsers
	c.CLIMode = *cliMode
	c.CLIServer = *cliServer
	c.ShowVersion = *showVersion
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive")
	}
	if c.MaxInsightRows <= 0 {
		c.MaxInsightRows = 50
	}
	if c.SampleUsers <= 0 {
		return fmt.Errorf("SAMPLE_USERS must be positive")
	}
	for _, origin := range c.AllowedOrigins() {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("origin %q must start with http:// or https://", origin)
		}
		if strings.Count(origin, "*") > 1 {
			return fmt.Errorf("origin %q has more than one wildcard", origin)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
