package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/horizoncoop/coopadmin-backend/api/routes"
	"github.com/horizoncoop/coopadmin-backend/internal/accounts"
	"github.com/horizoncoop/coopadmin-backend/internal/branches"
	"github.com/horizoncoop/coopadmin-backend/internal/receipts"
	"github.com/horizoncoop/coopadmin-backend/internal/tags"
	"github.com/horizoncoop/coopadmin-backend/internal/vouchers"
	"github.com/horizoncoop/coopadmin-backend/pkg/config"
	"github.com/horizoncoop/coopadmin-backend/pkg/db"
	"github.com/horizoncoop/coopadmin-backend/pkg/logger"
	"github.com/horizoncoop/coopadmin-backend/pkg/metrics"
	"github.com/horizoncoop/coopadmin-backend/pkg/migrate"
	"github.com/horizoncoop/coopadmin-backend/pkg/outbox"
	"github.com/horizoncoop/coopadmin-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	voucherMetrics := metrics.NewVoucherMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	settingsRepo := receipts.NewSettingsRepository(dbClient.DB())
	allocator, err := receipts.NewAllocator(settingsRepo, cfg.Receipts, voucherMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipt allocator", err)
		os.Exit(1)
	}

	voucherService, err := vouchers.NewService(
		vouchers.NewRepository(dbClient.DB()),
		dbClient,
		accounts.NewRepository(dbClient.DB()),
		allocator,
		outboxService,
		voucherMetrics,
		logg,
		cfg.Receipts.AllocateRetry,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create vouchers service", err)
		os.Exit(1)
	}

	tagService, err := tags.NewService(tags.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tags service", err)
		os.Exit(1)
	}

	branchService, err := branches.NewService(branches.NewRepository(dbClient.DB()), settingsRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create branches service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, voucherService, tagService, branchService),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
