package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Abhinav0406/dineplus-backend/internal/cron"
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
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

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

	ttlJob, err := cron.NewStagedSessionTTLJob(cron.StagedSessionTTLJobParams{
		Logger:     logg,
		Orders:     ordersRepo,
		Staging:    stagingService,
		SessionTTL: cfg.Cron.SessionTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create staged session ttl job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.CronLockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(ttlJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
