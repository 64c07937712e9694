package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/config"
	"github.com/evidentia-io/evidentia-ledger/pkg/database"
	"github.com/evidentia-io/evidentia-ledger/pkg/engines"
	"github.com/evidentia-io/evidentia-ledger/pkg/handlers"
	"github.com/evidentia-io/evidentia-ledger/pkg/logging"
	"github.com/evidentia-io/evidentia-ledger/pkg/middleware"
	"github.com/evidentia-io/evidentia-ledger/pkg/repositories"
	"github.com/evidentia-io/evidentia-ledger/pkg/services"
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
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", cfg.Database.Database),
		zap.String("database_host", cfg.Database.Host),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("engine_registry", cfg.Engines.RegistryPath))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run over a database/sql handle borrowed from the pool.
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured; dataset version existence cache disabled")
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	gate, err := engines.LoadStaticGate(cfg.Engines.RegistryPath)
	if err != nil {
		logger.Fatal("Failed to load engine registry", zap.Error(err))
	}

	// Repositories read their connection scope from the request context.
	datasetVersionRepo := repositories.NewDatasetVersionRepository()
	rawRecordRepo := repositories.NewRawRecordRepository()
	normalizedRecordRepo := repositories.NewNormalizedRecordRepository()
	evidenceRepo := repositories.NewEvidenceRepository()
	findingRepo := repositories.NewFindingRepository()
	linkRepo := repositories.NewLinkRepository()
	reviewRepo := repositories.NewReviewRepository()

	guard := services.NewImmutabilityGuard(rawRecordRepo, evidenceRepo, findingRepo, linkRepo, logger)
	versionService := services.NewDatasetVersionService(datasetVersionRepo, redisClient, logger)
	recordService := services.NewRecordService(versionService, guard, rawRecordRepo, normalizedRecordRepo, logger)
	ledgerService := services.NewLedgerService(versionService, guard, evidenceRepo, findingRepo, logger)
	reviewService := services.NewReviewService(findingRepo, reviewRepo, logger)

	runner := engines.NewRunner(gate, versionService, recordService, ledgerService, logger)
	registered := []engines.Engine{engines.NewCoverageEngine()}

	mux := http.NewServeMux()
	scope := database.WithScopeContext(db, logger)

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDatasetVersionHandler(versionService, logger).RegisterRoutes(mux, scope)
	handlers.NewRecordHandler(recordService, logger).RegisterRoutes(mux, scope)
	handlers.NewLedgerHandler(ledgerService, logger).RegisterRoutes(mux, scope)
	handlers.NewReviewHandler(reviewService, logger).RegisterRoutes(mux, scope)
	handlers.NewEngineHandler(runner, registered, logger).RegisterRoutes(mux, scope)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting evidentia-ledger",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
