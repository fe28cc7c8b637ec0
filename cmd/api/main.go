package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dvpgiftcenter/giftshop-backend/api/routes"
	"github.com/dvpgiftcenter/giftshop-backend/internal/catalog"
	"github.com/dvpgiftcenter/giftshop-backend/internal/identity"
	"github.com/dvpgiftcenter/giftshop-backend/internal/inventory"
	"github.com/dvpgiftcenter/giftshop-backend/internal/receipts"
	"github.com/dvpgiftcenter/giftshop-backend/internal/sales"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/config"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/metrics"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/migrate"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/redis"
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
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	salesMetrics := metrics.NewSalesMetrics(registry)

	identityRepo := identity.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	salesRepo := sales.NewRepository(dbClient.DB())
	receiptsRepo := receipts.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())

	identityService, err := identity.NewService(identityRepo, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(dbClient, salesRepo, catalogRepo, identityRepo, cfg.Sales, salesMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	receiptsService, err := receipts.NewService(receiptsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			identityService,
			catalogService,
			salesService,
			receiptsService,
			inventoryRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
