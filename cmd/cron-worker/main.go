package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/internal/cron"
	"github.com/rmoralesdev/brickvest-backend/internal/eligibility"
	"github.com/rmoralesdev/brickvest-backend/internal/fees"
	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/internal/investments"
	"github.com/rmoralesdev/brickvest-backend/pkg/config"
	"github.com/rmoralesdev/brickvest-backend/pkg/db"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
	"github.com/rmoralesdev/brickvest-backend/pkg/metrics"
	"github.com/rmoralesdev/brickvest-backend/pkg/migrate"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox"
	"github.com/rmoralesdev/brickvest-backend/pkg/redis"
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

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
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

	gormDB := dbClient.DB()

	inventoryService, err := inventory.NewService(inventory.NewRepository(gormDB))
	exitOnError(logg, "inventory service", err)
	feePolicy, err := fees.NewConfigPolicy(cfg.Fees)
	exitOnError(logg, "fee policy", err)
	feeService, err := fees.NewService(inventoryService, feePolicy)
	exitOnError(logg, "fee service", err)
	eligibilityService, err := eligibility.NewService(eligibility.NewRepository(gormDB))
	exitOnError(logg, "eligibility service", err)
	activityService, err := activity.NewService(activity.NewRepository(gormDB))
	exitOnError(logg, "activity service", err)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	investmentService, err := investments.NewService(
		investments.NewRepository(gormDB),
		dbClient,
		inventoryService,
		eligibilityService,
		feeService,
		feePolicy,
		activityService,
		outboxService,
		nil,
		cfg.Reservation,
		logg,
	)
	exitOnError(logg, "investment service", err)

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.Cron.LockKey, cfg.App.Env), cfg.Cron.LockTTL)
	exitOnError(logg, "cron lock", err)

	expiryJob, err := cron.NewReservationExpiryJob(cron.ReservationExpiryJobParams{
		Logger:      logg,
		Investments: investmentService,
		Metrics:     metricsCollector,
	})
	exitOnError(logg, "reservation expiry job", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	exitOnError(logg, "cron service", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	go serveMetrics(ctx, logg, cfg.Cron.MetricsPort)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}

func lockKey(base, env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("%s:%s", base, env)
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
