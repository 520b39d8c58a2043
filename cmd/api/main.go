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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/eggtrade-backend/api/controllers"
	"github.com/angelmondragon/eggtrade-backend/api/routes"
	"github.com/angelmondragon/eggtrade-backend/internal/catalog"
	"github.com/angelmondragon/eggtrade-backend/internal/customers"
	"github.com/angelmondragon/eggtrade-backend/internal/expenses"
	"github.com/angelmondragon/eggtrade-backend/internal/inventory"
	"github.com/angelmondragon/eggtrade-backend/internal/pricing"
	"github.com/angelmondragon/eggtrade-backend/internal/sales"
	"github.com/angelmondragon/eggtrade-backend/pkg/config"
	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/instance"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	"github.com/angelmondragon/eggtrade-backend/pkg/metrics"
	"github.com/angelmondragon/eggtrade-backend/pkg/migrate"
	"github.com/angelmondragon/eggtrade-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"instance": instance.GetID()},
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	// both stay untyped nil when redis is off so health and idempotency skip it
	var redisPinger controllers.Pinger
	var idempotencyStore redis.IdempotencyStore
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		redisPinger = redisClient
		idempotencyStore = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, idempotency replay disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pricingMetrics := metrics.NewPricingMetrics(registry)

	services, err := buildServices(cfg, logg, dbClient, loc, pricingMetrics)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, registry, dbClient, redisPinger, idempotencyStore, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": loc.String(),
		"strict":   cfg.Pricing.Strict,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case serr := <-serveErr:
		if errors.Is(serr, http.ErrServerClosed) {
			return nil
		}
		return serr
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, loc *time.Location, pricingMetrics *metrics.PricingMetrics) (routes.Services, error) {
	conn := dbClient.DB()
	pricingRepo := pricing.NewRepository(conn)

	engine, err := pricing.NewEngine(pricing.EngineConfig{
		Loader:   pricingRepo,
		Location: loc,
		Strict:   cfg.Pricing.Strict,
		Metrics:  pricingMetrics,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	pricingService, err := pricing.NewService(dbClient, pricingRepo, engine)
	if err != nil {
		return routes.Services{}, err
	}

	salesService, err := sales.NewService(sales.ServiceParams{
		Repo:    sales.NewRepository(conn),
		Tx:      dbClient,
		Pricing: engine,
		Metrics: pricingMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	customersService, err := customers.NewService(customers.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:     inventory.NewRepository(conn),
		Tx:       dbClient,
		Location: loc,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	expensesService, err := expenses.NewService(expenses.NewRepository(conn), loc)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Sales:     salesService,
		Pricing:   pricingService,
		Catalog:   catalogService,
		Customers: customersService,
		Inventory: inventoryService,
		Expenses:  expensesService,
	}, nil
}
