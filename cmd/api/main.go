package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stockroomhq/stockroom-backend/api/routes"
	"github.com/stockroomhq/stockroom-backend/internal/admins"
	"github.com/stockroomhq/stockroom-backend/internal/auth"
	"github.com/stockroomhq/stockroom-backend/internal/catalog"
	"github.com/stockroomhq/stockroom-backend/internal/customers"
	"github.com/stockroomhq/stockroom-backend/internal/drafts"
	"github.com/stockroomhq/stockroom-backend/internal/invoices"
	"github.com/stockroomhq/stockroom-backend/internal/labels"
	"github.com/stockroomhq/stockroom-backend/internal/products"
	"github.com/stockroomhq/stockroom-backend/internal/reports"
	"github.com/stockroomhq/stockroom-backend/internal/sequence"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/migrate"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
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

	svcs, err := buildServices(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, httpMetrics, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client) (routes.Services, error) {
	conn := dbClient.DB()

	generator, err := sequence.NewGenerator(sequence.NewGormStore())
	if err != nil {
		return routes.Services{}, err
	}

	adminRepo := admins.NewRepository(conn)

	adminService, err := admins.NewService(adminRepo, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	authService, err := auth.NewService(adminRepo, cfg.JWT)
	if err != nil {
		return routes.Services{}, err
	}
	customerService, err := customers.NewService(customers.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	draftService, err := drafts.NewService(drafts.NewRepository(conn), dbClient, generator, customerService)
	if err != nil {
		return routes.Services{}, err
	}
	invoiceService, err := invoices.NewService(invoices.NewRepository(conn), dbClient, generator)
	if err != nil {
		return routes.Services{}, err
	}
	reportService, err := reports.NewService(reports.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	labelService, err := labels.NewService(productRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authService,
		Admins:    adminService,
		Customers: customerService,
		Catalog:   catalogService,
		Products:  productService,
		Drafts:    draftService,
		Invoices:  invoiceService,
		Reports:   reportService,
		Labels:    labelService,
	}, nil
}
