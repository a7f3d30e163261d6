package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/cashbook-dev/cashbook/internal/accounts"
	"github.com/cashbook-dev/cashbook/internal/app"
	"github.com/cashbook-dev/cashbook/internal/balances"
	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/fxrates"
	"github.com/cashbook-dev/cashbook/internal/observability"
	"github.com/cashbook-dev/cashbook/internal/platform/cache"
	"github.com/cashbook-dev/cashbook/internal/platform/db"
	"github.com/cashbook-dev/cashbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	commodityService := commodities.NewService(commodities.NewRepository(pool), cfg.BaseCurrency)
	accountService := accounts.NewService(accounts.NewRepository(pool))
	rateCache := fxrates.NewCache(redisClient, cfg.RateCacheTTL)
	rateService := fxrates.NewService(fxrates.NewRepository(pool), rateCache)
	balanceService := balances.NewService(accountService, commodityService, balances.NewRepository(pool), rateService.LookupFunc())

	metrics := observability.NewMetrics()
	warmupJob := jobs.NewBalancesWarmupJob(balanceService, logger, metrics, cfg.WarmupRoots)

	warmupTask, err := jobs.NewBalancesWarmupTask(jobs.BalancesWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBalancesWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
