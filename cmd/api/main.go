package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dferrantino/quotehub-backend/api/routes"
	"github.com/dferrantino/quotehub-backend/internal/auth"
	"github.com/dferrantino/quotehub-backend/internal/catalog"
	"github.com/dferrantino/quotehub-backend/internal/notifications"
	"github.com/dferrantino/quotehub-backend/internal/parties"
	"github.com/dferrantino/quotehub-backend/internal/pricing"
	"github.com/dferrantino/quotehub-backend/internal/rfq"
	"github.com/dferrantino/quotehub-backend/internal/users"
	"github.com/dferrantino/quotehub-backend/pkg/auth/session"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/dferrantino/quotehub-backend/pkg/migrate"
	"github.com/dferrantino/quotehub-backend/pkg/outbox"
	"github.com/dferrantino/quotehub-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	partiesRepo := parties.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	pricingRepo := pricing.NewRepository(dbClient.DB())
	rfqRepo := rfq.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        usersRepo,
		MembershipsRepo: partiesRepo,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	switchService, err := auth.NewSwitchPartyService(auth.SwitchPartyServiceParams{
		PartiesRepo:    partiesRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create switch party service", err)
		os.Exit(1)
	}

	partyService, err := parties.NewService(partiesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create party service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, partiesRepo, partiesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricingRepo, dbClient, catalogRepo, partiesRepo, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	rfqService, err := rfq.NewService(rfqRepo, dbClient, outboxService, partiesRepo, catalogRepo, pricingService)
	if err != nil {
		logg.Error(context.Background(), "failed to create rfq service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			registerService,
			switchService,
			partyService,
			partiesRepo,
			catalogService,
			pricingService,
			rfqService,
			notificationsService,
			metricsRegistry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
