package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rmoralesdev/brickvest-backend/api/routes"
	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/internal/certificates"
	"github.com/rmoralesdev/brickvest-backend/internal/distributions"
	"github.com/rmoralesdev/brickvest-backend/internal/documents"
	"github.com/rmoralesdev/brickvest-backend/internal/eligibility"
	"github.com/rmoralesdev/brickvest-backend/internal/fees"
	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/internal/investments"
	"github.com/rmoralesdev/brickvest-backend/internal/ledger"
	"github.com/rmoralesdev/brickvest-backend/pkg/config"
	"github.com/rmoralesdev/brickvest-backend/pkg/db"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
	"github.com/rmoralesdev/brickvest-backend/pkg/migrate"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox"
	"github.com/rmoralesdev/brickvest-backend/pkg/redis"
	"github.com/rmoralesdev/brickvest-backend/pkg/storage/gcs"
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

	// Certificate issuance is best effort; the API still serves without a
	// configured bucket.
	var issuer certificates.Issuer
	if cfg.GCS.CertificateBucket != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		issuer, err = certificates.NewGCSIssuer(gcsClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create certificate issuer", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "certificate bucket not configured; issuance disabled")
	}

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
		issuer,
		cfg.Reservation,
		logg,
	)
	exitOnError(logg, "investment service", err)

	documentService, err := documents.NewService(documents.NewRepository(gormDB), dbClient, activityService)
	exitOnError(logg, "document service", err)

	distributionService, err := distributions.NewService(
		distributions.NewRepository(gormDB),
		dbClient,
		[]distributions.OwnershipSource{distributions.NewLegacySource(), distributions.NewTransactionSource()},
		activityService,
		outboxService,
	)
	exitOnError(logg, "distribution service", err)

	ledgerService, err := ledger.NewService(ledger.NewRepository(gormDB), logg)
	exitOnError(logg, "ledger service", err)

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
			inventoryService,
			feeService,
			investmentService,
			activityService,
			documentService,
			distributionService,
			ledgerService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
