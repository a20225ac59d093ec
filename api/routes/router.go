package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mealora/mealora-backend/api/controllers"
	webhookcontrollers "github.com/mealora/mealora-backend/api/controllers/webhooks"
	"github.com/mealora/mealora-backend/api/middleware"
	"github.com/mealora/mealora-backend/internal/bankaccounts"
	"github.com/mealora/mealora-backend/internal/merchants"
	"github.com/mealora/mealora-backend/internal/notifications"
	"github.com/mealora/mealora-backend/internal/payments"
	"github.com/mealora/mealora-backend/internal/payouts"
	stripewebhook "github.com/mealora/mealora-backend/internal/webhooks/stripe"
	"github.com/mealora/mealora-backend/pkg/config"
	"github.com/mealora/mealora-backend/pkg/db"
	"github.com/mealora/mealora-backend/pkg/enums"
	"github.com/mealora/mealora-backend/pkg/logger"
	"github.com/mealora/mealora-backend/pkg/redis"
	pkgstripe "github.com/mealora/mealora-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Payments      payments.Service
	Merchants     merchants.Service
	BankAccounts  bankaccounts.Service
	Payouts       payouts.Service
	Notifications notifications.Service
	StripeClient  *pkgstripe.Client
	WebhookSvc    *stripewebhook.Service
	WebhookGuard  *stripewebhook.IdempotencyGuard
	Metrics       prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.WebhookSvc, p.StripeClient, p.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		// Customers pay; intent routes resolve the order from the URL.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor(enums.ActorTypeCustomer, logg))
			r.Route("/orders/{orderId}/payment-intent", func(r chi.Router) {
				r.Post("/", controllers.CreatePaymentIntent(p.Payments, logg))
				r.Get("/", controllers.GetPaymentIntentStatus(p.Payments, logg))
				r.Post("/confirm", controllers.ConfirmPaymentIntent(p.Payments, logg))
			})
			r.Post("/orders/{orderId}/refund", controllers.RefundPayment(p.Payments, logg))
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(p.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			})
		})

		// Restaurant surface; identity comes from the token binding.
		r.Route("/restaurant", func(r chi.Router) {
			r.Use(middleware.RequireRestaurant(logg))

			r.Post("/orders/{orderId}/refund", controllers.RefundPayment(p.Payments, logg))

			r.Route("/merchant-account", func(r chi.Router) {
				r.Post("/", controllers.CreateMerchantAccount(p.Merchants, logg))
				r.Get("/", controllers.GetMerchantAccount(p.Merchants, logg))
				r.Post("/onboarding-link", controllers.StartMerchantOnboarding(p.Merchants, logg))
				r.Post("/refresh", controllers.RefreshMerchantStatus(p.Merchants, logg))
			})

			r.Route("/bank-account", func(r chi.Router) {
				r.Put("/", controllers.UpsertBankAccount(p.BankAccounts, logg))
				r.Get("/", controllers.GetBankAccount(p.BankAccounts, logg))
				r.Delete("/", controllers.DeactivateBankAccount(p.BankAccounts, logg))
			})

			r.Route("/payouts", func(r chi.Router) {
				r.Get("/earnings", controllers.GetPendingEarnings(p.Payouts, logg))
				r.Put("/schedule", controllers.ConfigurePayoutSchedule(p.Payouts, logg))
				r.Get("/schedule", controllers.GetPayoutSchedule(p.Payouts, logg))
				r.Post("/trigger", controllers.TriggerPayout(p.Payouts, logg))
				r.Get("/history", controllers.PayoutHistory(p.Payouts, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(p.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			})
		})
	})

	return r
}
