package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/PSM90/fuorid20-arena-market/api/routes"
	"github.com/PSM90/fuorid20-arena-market/internal/activity"
	"github.com/PSM90/fuorid20-arena-market/internal/actors"
	"github.com/PSM90/fuorid20-arena-market/internal/catalog"
	"github.com/PSM90/fuorid20-arena-market/internal/players"
	"github.com/PSM90/fuorid20-arena-market/internal/settings"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	"github.com/PSM90/fuorid20-arena-market/internal/transactions"
	"github.com/PSM90/fuorid20-arena-market/pkg/auth/session"
	"github.com/PSM90/fuorid20-arena-market/pkg/config"
	"github.com/PSM90/fuorid20-arena-market/pkg/db"
	"github.com/PSM90/fuorid20-arena-market/pkg/events"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
	"github.com/PSM90/fuorid20-arena-market/pkg/metrics"
	"github.com/PSM90/fuorid20-arena-market/pkg/migrate"
	"github.com/PSM90/fuorid20-arena-market/pkg/redis"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	playersRepo := players.NewRepository(dbClient.DB())
	playersService, err := players.NewService(players.ServiceParams{
		Repo:           playersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create players service", err)
		os.Exit(1)
	}

	actorsService, err := actors.NewService(actors.NewRepository(dbClient.DB()), playersRepo)
	if err != nil {
		logg.Error(ctx, "failed to create actors service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create settings service", err)
		os.Exit(1)
	}

	shopService, err := shop.NewService(settingsService, shop.NewReservationRepository(dbClient.DB()), catalogService)
	if err != nil {
		logg.Error(ctx, "failed to create shop service", err)
		os.Exit(1)
	}

	activityService, err := activity.NewService(activity.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create activity service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	shopMetrics := metrics.NewShopMetrics(registry)

	transport, err := events.NewRedisTransport(redisClient, cfg.Events.Channel)
	if err != nil {
		logg.Error(ctx, "failed to create event transport", err)
		os.Exit(1)
	}
	bus, err := events.NewBus(events.BusParams{
		SessionID: session.NewAccessID(),
		Transport: transport,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create event bus", err)
		os.Exit(1)
	}

	engine, err := transactions.NewEngine(transactions.Params{
		Tx:       dbClient,
		Shop:     shopService,
		Catalog:  catalogService,
		Actors:   actorsService,
		Activity: activityService,
		Settings: settingsService,
		Bus:      bus,
		Metrics:  shopMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create transaction engine", err)
		os.Exit(1)
	}

	if _, err := events.NewRelay(bus, engine, logg); err != nil {
		logg.Error(ctx, "failed to create event relay", err)
		os.Exit(1)
	}

	go func() {
		if err := bus.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "event bus stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Gatherer: registry,
			Players:  playersService,
			Actors:   actorsService,
			Catalog:  catalogService,
			Shop:     shopService,
			Settings: settingsService,
			Activity: activityService,
			Engine:   engine,
			Bus:      bus,
		}),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(startCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server stopped")
}
