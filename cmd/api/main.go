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

	"github.com/angelmondragon/importops-backend/api/controllers"
	"github.com/angelmondragon/importops-backend/api/routes"
	"github.com/angelmondragon/importops-backend/internal/dispatch"
	"github.com/angelmondragon/importops-backend/internal/ledger"
	"github.com/angelmondragon/importops-backend/internal/parties"
	"github.com/angelmondragon/importops-backend/internal/payments"
	"github.com/angelmondragon/importops-backend/pkg/config"
	"github.com/angelmondragon/importops-backend/pkg/db"
	"github.com/angelmondragon/importops-backend/pkg/env"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	"github.com/angelmondragon/importops-backend/pkg/metrics"
	"github.com/angelmondragon/importops-backend/pkg/migrate"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
	"github.com/angelmondragon/importops-backend/pkg/redis"
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
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Env:         cfg.App.Env,
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
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dispatchMetrics := metrics.NewDispatchMetrics(registry)

	conn := dbClient.DB()
	outboxRepo := outbox.NewRepository(conn)
	outboxService := outbox.NewService(outboxRepo, logg)
	deadLetters, err := outbox.NewDeadLetters(dbClient, outboxRepo, outbox.NewDLQRepository(conn), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dead letter service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(conn), parties.NewRepository(conn), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Ledger:  ledgerService,
		Tx:      dbClient,
		Outbox:  outboxService,
		Locks:   redisClient,
		Config:  cfg.Payments,
		Metrics: dispatchMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	dispatchService, err := dispatch.NewService(dispatch.ServiceParams{
		Repo:     dispatch.NewRepository(conn),
		Tx:       dbClient,
		Outbox:   outboxService,
		Ledger:   ledgerService,
		Payments: paymentService,
		Metrics:  dispatchMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"db_driver": cfg.DB.Driver,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Health: map[string]controllers.Pinger{
				"db":    dbClient,
				"redis": redisClient,
			},
			Idempotency: redisClient,
			Metrics:     registry,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
		}, routes.Services{
			Dispatch:    dispatchService,
			Ledger:      ledgerService,
			Payments:    paymentService,
			DeadLetters: deadLetters,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	<-stop
	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
