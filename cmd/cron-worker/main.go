package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dferrantino/quotehub-backend/internal/catalog"
	"github.com/dferrantino/quotehub-backend/internal/cron"
	"github.com/dferrantino/quotehub-backend/internal/notifications"
	"github.com/dferrantino/quotehub-backend/internal/parties"
	"github.com/dferrantino/quotehub-backend/internal/pricing"
	"github.com/dferrantino/quotehub-backend/internal/rfq"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/dferrantino/quotehub-backend/pkg/metrics"
	"github.com/dferrantino/quotehub-backend/pkg/migrate"
	"github.com/dferrantino/quotehub-backend/pkg/outbox"
	"github.com/dferrantino/quotehub-backend/pkg/redis"
)

const lockKeyFormat = "qh:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	partiesRepo := parties.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	pricingRepo := pricing.NewRepository(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)

	pricingService, err := pricing.NewService(pricingRepo, dbClient, catalogRepo, partiesRepo, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	rfqService, err := rfq.NewService(rfq.NewRepository(dbClient.DB()), dbClient, outboxService, partiesRepo, catalogRepo, pricingService)
	if err != nil {
		logg.Error(context.Background(), "failed to create rfq service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewRFQExpiryJob(cron.RFQExpiryJobParams{
		Logger:  logg,
		Sweeper: rfqService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rfq expiry job", err)
		os.Exit(1)
	}

	notificationCleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(dbClient.DB()),
		Retention:  cfg.Cron.NotificationRetention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	outboxRetentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
		Retention:  cfg.Cron.OutboxRetention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(expiryJob, notificationCleanupJob, outboxRetentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.ExpirySweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
