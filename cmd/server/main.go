/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave policy engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Build the zap logger
  3. Initialize the SQLite store and the ledger
  4. Assemble the evaluation engine and email drafter
  5. Configure the HTTP router
  6. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (optional; defaults + env vars apply without it)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with defaults (data/leave.db, port 8080)
  ./server

  # Run with a config file
  ./server -config=./config.yaml

ENVIRONMENT:
  OPENAI_API_KEY  enables LLM email drafting (template fallback otherwise)
  LEAVE_DB_PATH   overrides database.path
  LEAVE_PORT      overrides server.port

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration schema
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/draft"
	"github.com/warp/leave-engine/engine"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/logging"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "YAML config path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Store and ledger
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	ldg := ledger.New(store)

	// Config-declared blackout windows are persisted once at startup; the
	// engine reads the calendar from the store so API edits take effect
	// without a restart.
	ctx := context.Background()
	for _, b := range cfg.BlackoutPeriods() {
		if err := store.SaveBlackout(ctx, b); err != nil {
			logger.Fatal("failed to load configured blackout period", zap.Error(err))
		}
	}

	eng := engine.New(ldg, store, logger)

	var drafter draft.Drafter = draft.TemplateDrafter{}
	if cfg.OpenAI.APIKey != "" {
		drafter = draft.NewOpenAIDrafter(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)
		logger.Info("email drafting: LLM-backed", zap.String("model", cfg.OpenAI.Model))
	} else {
		logger.Info("email drafting: templates (no OPENAI_API_KEY)")
	}

	handler := api.NewHandler(store, ldg, eng, drafter, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Addr()),
			zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
