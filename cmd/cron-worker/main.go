package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mealora/mealora-backend/internal/bankaccounts"
	"github.com/mealora/mealora-backend/internal/cron"
	"github.com/mealora/mealora-backend/internal/merchants"
	"github.com/mealora/mealora-backend/internal/notifications"
	"github.com/mealora/mealora-backend/internal/payments"
	"github.com/mealora/mealora-backend/internal/payouts"
	"github.com/mealora/mealora-backend/pkg/config"
	"github.com/mealora/mealora-backend/pkg/db"
	"github.com/mealora/mealora-backend/pkg/logger"
	"github.com/mealora/mealora-backend/pkg/metrics"
	"github.com/mealora/mealora-backend/pkg/migrate"
	"github.com/mealora/mealora-backend/pkg/pubsub"
	"github.com/mealora/mealora-backend/pkg/redis"
	pkgstripe "github.com/mealora/mealora-backend/pkg/stripe"
)

const lockKeyFormat = "mealora:cron-worker:lock:%s"

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

	bankService, err := bankaccounts.NewService(bankaccounts.ServiceParams{
		Repo:   bankaccounts.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bank account service", err)
		os.Exit(1)
	}

	payoutMetrics := metrics.NewPayoutMetrics(prometheus.DefaultRegisterer)
	payoutService, err := payouts.NewService(payouts.ServiceParams{
		Repo:        payouts.NewRepository(dbClient.DB()),
		Earnings:    payments.NewRepository(dbClient.DB()),
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

	sweepJob, err := cron.NewPayoutSweepJob(payoutService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout sweep job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Payouts.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	registry.Register(sweepJob)

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Payouts.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
