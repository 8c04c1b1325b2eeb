package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/busybiz/busybiz-backend/api/controllers"
	webhookcontrollers "github.com/busybiz/busybiz-backend/api/controllers/webhooks"
	"github.com/busybiz/busybiz-backend/api/middleware"
	"github.com/busybiz/busybiz-backend/internal/billing"
	checkoutsvc "github.com/busybiz/busybiz-backend/internal/checkout"
	"github.com/busybiz/busybiz-backend/internal/contact"
	stripewebhook "github.com/busybiz/busybiz-backend/internal/webhooks/stripe"
	"github.com/busybiz/busybiz-backend/pkg/config"
	"github.com/busybiz/busybiz-backend/pkg/logger"
	"github.com/busybiz/busybiz-backend/pkg/metrics"
	pkgredis "github.com/busybiz/busybiz-backend/pkg/redis"
	pkgstripe "github.com/busybiz/busybiz-backend/pkg/stripe"
)

type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics

	DBPinger    pkgredis.Pinger
	RedisPinger pkgredis.Pinger

	CheckoutService      checkoutsvc.Service
	ContactService       contact.Service
	BillingService       billing.Service
	StripeClient         *pkgstripe.Client
	StripeWebhookService *stripewebhook.Service
	StripeWebhookGuard   *stripewebhook.IdempotencyGuard
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, params.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(map[string]pkgredis.Pinger{
			"postgres": params.DBPinger,
			"redis":    params.RedisPinger,
		}, logg))
	})

	if params.HTTPMetrics != nil {
		r.Method(http.MethodGet, "/metrics", params.HTTPMetrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts())
		r.Post("/contact", controllers.SendContactMessage(params.ContactService, logg))

		r.With(middleware.OptionalAuth(cfg.JWT, logg)).
			Post("/checkout/sessions", controllers.CreateCheckoutSession(params.CheckoutService, logg))

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/orders", controllers.MyOrders(params.BillingService, logg))
			r.Get("/subscription", controllers.MySubscription(params.BillingService, logg))
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(params.StripeWebhookService, params.StripeClient, params.StripeWebhookGuard, logg))
		})
	})

	return r
}
