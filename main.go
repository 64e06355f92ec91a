package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"saasanalytics/cli"
	"saasanalytics/config"
	"saasanalytics/core"
	"saasanalytics/database"
	"saasanalytics/handlers"
	"saasanalytics/llm"
	"saasanalytics/service"
	"saasanalytics/version"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load .env, environment variables and CLI flags
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.ShowVersion {
		fmt.Println(version.GetBuildInfo())
		return
	}

	// Check if CLI mode is requested
	if cfg.CLIMode {
		mainCLI(cfg)
		return
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("system starting up",
		zap.String("version", version.GetFullVersion()),
		zap.String("environment", cfg.Environment),
	)
	ctx := context.Background()

	store, err := database.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("error closing database", zap.Error(err))
		}
	}()
	if err := store.CreateTables(ctx); err != nil {
		return err
	}

	var model llm.Model = llm.Unconfigured{}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; /api/query will fail until it is configured")
	} else {
		gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			return err
		}
		defer gemini.Close()
		model = gemini
	}

	var cache service.SQLCache = service.NopCache{}
	if cfg.RedisURL != "" {
		redisCache, err := service.NewRedisCache(ctx, cfg.RedisURL, cfg.SQLCacheTTL)
		if err != nil {
			logger.Warn("sql cache disabled", zap.Error(err))
		} else {
			defer redisCache.Close()
			cache = redisCache
			logger.Info("sql cache enabled", zap.Duration("ttl", cfg.SQLCacheTTL))
		}
	}

	errLog := core.NewErrorLogger(100)
	services := service.NewServices(cfg, store, model, cache, logger)

	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	// Disable Gin color logs; requests are logged through zap
	gin.DisableConsoleColor()

	r := handlers.NewRouter(cfg, handlers.New(store, services, errLog, logger), errLog, logger)

	listener, err := core.ListenTCP("0.0.0.0", cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", listener.Addr().String()), zap.String("dialect", store.Dialect()))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for OS interrupt or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("system shutting down")

	// Gracefully shut down HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// mainCLI entrypoint for CLI (HTTP client mode)
func mainCLI(cfg *config.Config) {
	// CLI mode skips the database; it only talks to a running server
	serverURL := cfg.CLIServer

	fmt.Printf("SaaS Analytics CLI - Connecting to %s\n", serverURL)

	cliInstance, err := cli.NewCLIHttp(serverURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the API server is running:")
		fmt.Println("     ./saas-analytics")
		fmt.Println("  2. Or specify a different server:")
		fmt.Printf("     ./saas-analytics -cli -server http://your-server:8000\n")
		os.Exit(1)
	}

	// Start CLI loop (readline handles Ctrl+C automatically)
	cliInstance.Start()
}
