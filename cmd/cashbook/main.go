package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cashbook-dev/cashbook/internal/accounts"
	"github.com/cashbook-dev/cashbook/internal/app"
	"github.com/cashbook-dev/cashbook/internal/balances"
	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/fxrates"
	"github.com/cashbook-dev/cashbook/internal/ledger"
	"github.com/cashbook-dev/cashbook/internal/observability"
	"github.com/cashbook-dev/cashbook/internal/platform/cache"
	"github.com/cashbook-dev/cashbook/internal/platform/db"
	"github.com/cashbook-dev/cashbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	commodityRepo := commodities.NewRepository(pool)
	commodityService := commodities.NewService(commodityRepo, cfg.BaseCurrency)
	commoditiesHandler := commodities.NewHandler(logger, commodityService)

	accountRepo := accounts.NewRepository(pool)
	accountService := accounts.NewService(accountRepo)
	accountsHandler := accounts.NewHandler(logger, accountService)

	metrics := observability.NewMetrics()

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, cfg.BaseCurrency)
	ledgerHandler := ledger.NewHandler(logger, ledgerService).WithMetrics(metrics)

	rateRepo := fxrates.NewRepository(pool)
	rateCache := fxrates.NewCache(redisClient, cfg.RateCacheTTL)
	rateService := fxrates.NewService(rateRepo, rateCache)
	ratesHandler := fxrates.NewHandler(logger, rateService)

	balanceRepo := balances.NewRepository(pool)
	balanceService := balances.NewService(accountService, commodityService, balanceRepo, rateService.LookupFunc())
	balancesHandler := balances.NewHandler(logger, balanceService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Pool:               pool,
		LedgerHandler:      ledgerHandler,
		AccountsHandler:    accountsHandler,
		CommoditiesHandler: commoditiesHandler,
		BalancesHandler:    balancesHandler,
		RatesHandler:       ratesHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
