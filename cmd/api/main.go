package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/storesense/notify-core/internal/audit"
	"github.com/storesense/notify-core/internal/config"
	"github.com/storesense/notify-core/internal/dispatch"
	"github.com/storesense/notify-core/internal/handler"
	"github.com/storesense/notify-core/internal/infra/postgresql"
	"github.com/storesense/notify-core/internal/infra/postgresql/migrations"
	infraredis "github.com/storesense/notify-core/internal/infra/redis"
	"github.com/storesense/notify-core/internal/observability"
	"github.com/storesense/notify-core/internal/phone"
	"github.com/storesense/notify-core/internal/provider"
	"github.com/storesense/notify-core/internal/repository"
	"github.com/storesense/notify-core/internal/tenant"
	"github.com/storesense/notify-core/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	configRepo := repository.NewGormTenantConfigRepo(db)
	logRepo := repository.NewGormMessageLogRepo(db)

	configStore, err := tenant.NewStore(configRepo, cfg.ConfigLoadTimeout, logger)
	if err != nil {
		logger.Fatal("tenant config store init failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	auditSink, err := audit.NewRepoSink(logRepo)
	if err != nil {
		logger.Fatal("audit sink init failed", zap.Error(err))
	}
	auditRecorder, err := audit.NewBoundedRecorder(auditSink, cfg.AuditWriteTimeout, logger, metrics)
	if err != nil {
		logger.Fatal("audit recorder init failed", zap.Error(err))
	}

	providerClient := resty.New().SetTimeout(cfg.ProviderTimeout)
	registry, err := provider.NewRegistry(
		provider.NewHubtelAdapter(cfg.HubtelBaseURL, providerClient, logger),
		provider.NewMNotifyAdapter(cfg.MNotifyBaseURL, providerClient, logger),
		provider.NewMetaWhatsAppAdapter(cfg.WhatsAppBaseURL, providerClient, logger),
	)
	if err != nil {
		logger.Fatal("provider registry init failed", zap.Error(err))
	}

	orchestrator, err := dispatch.NewOrchestrator(
		phone.DefaultPlan(cfg.CountryPrefix),
		registry,
		configStore,
		auditRecorder,
		logger,
	)
	if err != nil {
		logger.Fatal("dispatch orchestrator init failed", zap.Error(err))
	}
	orchestrator.SetMetrics(metrics)

	if cfg.RateLimitPerMinute > 0 {
		limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute)
		if err != nil {
			logger.Fatal("rate limiter init failed", zap.Error(err))
		}
		orchestrator.SetRateLimiter(limiter)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(observability.CorrelationMiddleware())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterDispatchRoutes(app, orchestrator); err != nil {
		logger.Fatal("dispatch routes init failed", zap.Error(err))
	}
	if err := handler.RegisterTenantRoutes(app, configStore, registry); err != nil {
		logger.Fatal("tenant routes init failed", zap.Error(err))
	}
	if err := handler.RegisterMessageLogRoutes(app, logRepo); err != nil {
		logger.Fatal("message log routes init failed", zap.Error(err))
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutdown signal received")
		_ = app.Shutdown()
	}()

	logger.Info("notify-core api started", zap.Int("port", cfg.APIPort))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
