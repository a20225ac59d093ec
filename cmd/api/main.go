package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mealora/mealora-backend/api/routes"
	"github.com/mealora/mealora-backend/internal/bankaccounts"
	"github.com/mealora/mealora-backend/internal/fees"
	"github.com/mealora/mealora-backend/internal/merchants"
	"github.com/mealora/mealora-backend/internal/notifications"
	"github.com/mealora/mealora-backend/internal/payments"
	"github.com/mealora/mealora-backend/internal/payouts"
	stripewebhook "github.com/mealora/mealora-backend/internal/webhooks/stripe"
	"github.com/mealora/mealora-backend/pkg/config"
	"github.com/mealora/mealora-backend/pkg/db"
	"github.com/mealora/mealora-backend/pkg/logger"
	"github.com/mealora/mealora-backend/pkg/metrics"
	"github.com/mealora/mealora-backend/pkg/migrate"
	"github.com/mealora/mealora-backend/pkg/pubsub"
	"github.com/mealora/mealora-backend/pkg/redis"
	pkgstripe "github.com/mealora/mealora-backend/pkg/stripe"
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

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	// The notification sink is optional; the API degrades to DB-only
	// notifications when Pub/Sub is not configured.
	var notificationPublisher notifications.Publisher
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to initialize pubsub", err)
			os.Exit(1)
		}
		notificationPublisher, err = notifications.NewPubSubPublisher(pubsubClient)
		if err != nil {
			logg.Error(context.Background(), "failed to wire notification publisher", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	payoutMetrics := metrics.NewPayoutMetrics(registry)

	notificationService, err := notifications.NewService(notifications.ServiceParams{
		Repo:      notifications.NewRepository(dbClient.DB()),
		Publisher: notificationPublisher,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	merchantService, err := merchants.NewService(merchants.ServiceParams{
		Repo:                 merchants.NewRepository(dbClient.DB()),
		Stripe:               merchants.NewStripeClient(stripeClient),
		Logger:               logg,
		CallTimeout:          stripeClient.CallTimeout(),
		OnboardingReturnURL:  cfg.Stripe.OnboardingReturnURL,
		OnboardingRefreshURL: cfg.Stripe.OnboardingRefreshURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create merchant service", err)
		os.Exit(1)
	}

	feeCalculator, err := fees.NewCalculator(cfg.Payments.PlatformFeePercent)
	if err != nil {
		logg.Error(context.Background(), "failed to create fee calculator", err)
		os.Exit(1)
	}

	paymentRepo := payments.NewRepository(dbClient.DB())
	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:        paymentRepo,
		Merchants:   merchantService,
		Fees:        feeCalculator,
		Stripe:      payments.NewStripeClient(stripeClient),
		Notifier:    notificationService,
		Tx:          dbClient,
		Logger:      logg,
		Currency:    cfg.Payments.Currency,
		CallTimeout: stripeClient.CallTimeout(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	bankService, err := bankaccounts.NewService(bankaccounts.ServiceParams{
		Repo:   bankaccounts.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bank account service", err)
		os.Exit(1)
	}

	payoutService, err := payouts.NewService(payouts.ServiceParams{
		Repo:        payouts.NewRepository(dbClient.DB()),
		Earnings:    paymentRepo,
		Banks:       bankService,
		Merchants:   merchantService,
		Stripe:      payouts.NewStripeClient(stripeClient),
		Notifier:    notificationService,
		Metrics:     payoutMetrics,
		Logger:      logg,
		Currency:    cfg.Payments.Currency,
		CallTimeout: stripeClient.CallTimeout(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Payments:  paymentService,
		Merchants: merchantService,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Payments:      paymentService,
		Merchants:     merchantService,
		BankAccounts:  bankService,
		Payouts:       payoutService,
		Notifications: notificationService,
		StripeClient:  stripeClient,
		WebhookSvc:    webhookService,
		WebhookGuard:  webhookGuard,
		Metrics:       registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	instance := os.Getenv("DYNO")
	if instance == "" {
		instance = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
