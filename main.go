package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/auth"
	"github.com/asksql/asksql-engine/pkg/config"
	"github.com/asksql/asksql-engine/pkg/database"
	"github.com/asksql/asksql-engine/pkg/datasource"
	"github.com/asksql/asksql-engine/pkg/handlers"
	"github.com/asksql/asksql-engine/pkg/llm"
	"github.com/asksql/asksql-engine/pkg/logging"
	"github.com/asksql/asksql-engine/pkg/middleware"
	"github.com/asksql/asksql-engine/pkg/repositories"
	"github.com/asksql/asksql-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)

	ctx := context.Background()

	// Engine store, which holds query history.
	db, err := database.NewConnection(ctx, cfg.Database.ConnectionString(), &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	// Datasource the generated SQL runs against. Falls back to the engine
	// store when no dedicated URL is configured.
	datasourceURL := cfg.Datasource.URL
	if datasourceURL == "" {
		datasourceURL = cfg.Database.ConnectionString()
		logger.Info("No datasource URL configured, querying the engine database")
	}

	executor, err := datasource.NewExecutor(ctx, datasourceURL,
		cfg.Datasource.QueryTimeout(), cfg.Datasource.MaxRows,
		logger.Named("datasource"))
	if err != nil {
		logger.Fatal("Failed to connect to datasource", zap.Error(err))
	}
	defer executor.Close()

	llmClient, err := llm.NewFromConfig(&cfg.LLM, logger.Named("llm"))
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	historyRepo := repositories.NewHistoryRepository(db)
	schemaSvc := services.NewSchemaService(
		datasource.NewSchemaDiscoverer(executor.Pool()),
		logger.Named("schema"))
	historySvc := services.NewHistoryService(historyRepo, logger.Named("history"))
	querySvc := services.NewQueryService(
		llmClient, executor, historyRepo, schemaSvc,
		services.NewAliasMapper(cfg.Aliases),
		services.QueryConfig{
			LLMTimeout:  cfg.LLM.Timeout(),
			Temperature: cfg.LLM.Temperature,
		},
		logger.Named("query"))

	authMiddleware := auth.NewMiddleware(cfg.Auth.EnableVerification, cfg.Auth.JWTSecret, logger.Named("auth"))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(querySvc, logger.Named("handlers")).RegisterRoutes(mux, authMiddleware)
	handlers.NewHistoryHandler(historySvc, logger.Named("handlers")).RegisterRoutes(mux, authMiddleware)
	handlers.NewSchemaHandler(schemaSvc, logger.Named("handlers")).RegisterRoutes(mux, authMiddleware)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger.Named("http"))(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting asksql-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}
