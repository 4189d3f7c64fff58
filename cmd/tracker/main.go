package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tracker/internal/amqp"
	"tracker/internal/cache"
	"tracker/internal/cli"
	apphttp "tracker/internal/http"
	"tracker/internal/log"
	"tracker/internal/middleware/ratelimit"
	"tracker/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()
	logger.Info("Starting tracker", log.FieldOperation, log.OpStartup, "backend", cfg.DataBackend, "port", cfg.Port)

	store := cli.MustOpenStore(context.Background(), logger, cfg)

	// Messaging is optional: without a broker transactions are still saved,
	// only the spreadsheet export and queued alerts are skipped.
	var (
		publisher  amqp.Publisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPEnabled() {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSyncQueue, cfg.AMQPAlertQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without messaging", log.FieldError, err)
		} else {
			amqpClient, publisher = c, c
		}
	}

	budgets := services.NewBudgetService(store.Store, logger)
	svc := apphttp.Services{
		Transactions: services.NewTransactionService(store.Store, publisher, logger),
		Budgets:      budgets,
		Analytics:    services.NewAnalyticsService(store.Store, budgets, logger),
	}
	if cfg.AuthEnabled() {
		svc.Auth = services.NewAuthService(store.Store, cfg.JWTSecret, cfg.TokenTTL, logger)
	} else {
		logger.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if amqpClient != nil {
		if err := amqpClient.RegisterMetrics(reg); err != nil {
			logger.Warn("Failed to register AMQP metrics", log.FieldError, err)
		}
	}

	caches := cache.NewManager(logger)
	caches.StartCleanup(5 * time.Minute)

	rl := ratelimit.DefaultConfig()
	rl.RequestsPerMinute = cfg.RateLimitPerMinute

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:    logger,
		Registry:  reg,
		RateLimit: rl,
		Cache:     caches,
		Ready:     store.Store.Ping,

		TrustedProxies: cfg.TrustedProxyCIDRs(),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("Store close error", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
