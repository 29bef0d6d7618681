package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/dferrantino/quotehub-backend/internal/notifications"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/dferrantino/quotehub-backend/pkg/migrate"
	"github.com/dferrantino/quotehub-backend/pkg/outbox/idempotency"
	"github.com/dferrantino/quotehub-backend/pkg/pubsub"
	"github.com/dferrantino/quotehub-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "notification-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "notification-worker"

	logg = logger.New(logger.Options{
		ServiceName: "notification-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.QuoteSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "quote subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Outbox.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	consumer, err := notifications.NewConsumer(notificationsRepo, subscription, manager, logg)
	requireResource(ctx, logg, "notification consumer", err)

	service, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	requireResource(ctx, logg, "worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "notification worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "notification worker failed", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "notification worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
