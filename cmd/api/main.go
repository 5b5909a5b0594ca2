package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Abhinav0406/dineplus-backend/api/routes"
	"github.com/Abhinav0406/dineplus-backend/internal/feedback"
	"github.com/Abhinav0406/dineplus-backend/internal/menu"
	"github.com/Abhinav0406/dineplus-backend/internal/orders"
	"github.com/Abhinav0406/dineplus-backend/internal/staging"
	"github.com/Abhinav0406/dineplus-backend/internal/tables"
	"github.com/Abhinav0406/dineplus-backend/pkg/config"
	"github.com/Abhinav0406/dineplus-backend/pkg/db"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
	"github.com/Abhinav0406/dineplus-backend/pkg/metrics"
	"github.com/Abhinav0406/dineplus-backend/pkg/migrate"
	"github.com/Abhinav0406/dineplus-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ordersRepo := orders.NewRepository(dbClient.DB())
	tablesRepo := tables.NewRepository(dbClient.DB())
	menuRepo := menu.NewRepository(dbClient.DB())
	feedbackRepo := feedback.NewRepository(dbClient.DB())

	tablesService, err := tables.NewService(tables.Params{
		Repo:   tablesRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tables service", err)
		os.Exit(1)
	}

	menuService, err := menu.NewService(menu.Params{
		Repo:   menuRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create menu service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.Params{
		Repo:   ordersRepo,
		Menu:   menuRepo,
		Tables: tablesRepo,
		Tx:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	stagingService, err := staging.NewService(staging.Params{
		Repo:    ordersRepo,
		Menu:    menuRepo,
		Tables:  tablesRepo,
		Tx:      dbClient,
		Cache:   staging.NewRedisSessionCache(redisClient, cfg.Staging),
		Metrics: metrics.NewStagingMetrics(prometheus.DefaultRegisterer),
		Cfg:     cfg.Staging,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create staging service", err)
		os.Exit(1)
	}

	feedbackService, err := feedback.NewService(feedback.Params{
		Repo:   feedbackRepo,
		Orders: ordersRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create feedback service", err)
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
			stagingService,
			ordersService,
			tablesService,
			menuService,
			feedbackService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
