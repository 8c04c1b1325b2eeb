package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/busybiz/busybiz-backend/api/routes"
	"github.com/busybiz/busybiz-backend/internal/billing"
	"github.com/busybiz/busybiz-backend/internal/checkout"
	"github.com/busybiz/busybiz-backend/internal/contact"
	"github.com/busybiz/busybiz-backend/internal/customers"
	stripewebhook "github.com/busybiz/busybiz-backend/internal/webhooks/stripe"
	"github.com/busybiz/busybiz-backend/pkg/config"
	"github.com/busybiz/busybiz-backend/pkg/db"
	"github.com/busybiz/busybiz-backend/pkg/logger"
	"github.com/busybiz/busybiz-backend/pkg/metrics"
	"github.com/busybiz/busybiz-backend/pkg/migrate"
	"github.com/busybiz/busybiz-backend/pkg/redis"
	pkgstripe "github.com/busybiz/busybiz-backend/pkg/stripe"
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

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	customersRepo := customers.NewRepository(dbClient.DB())
	billingRepo := billing.NewRepository(dbClient.DB())

	customersService, err := customers.NewService(customers.ServiceParams{
		Repo:   customersRepo,
		Stripe: customers.NewStripeClient(stripeClient),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Customers: customersService,
		Stripe:    checkout.NewStripeClient(stripeClient),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:          billingRepo,
		CustomersRepo: customersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	contactService, err := contact.NewService(contact.ServiceParams{
		Mailer: contact.NewResendMailer(cfg.Resend.APIKey),
		Config: cfg.Resend,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		BillingRepo:   billingRepo,
		CustomersRepo: customersRepo,
		StripeClient:  stripewebhook.NewStripeClient(stripeClient),
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:               cfg,
			Logger:               logg,
			HTTPMetrics:          metrics.NewHTTPMetrics(),
			DBPinger:             dbClient,
			RedisPinger:          redisClient,
			CheckoutService:      checkoutService,
			ContactService:       contactService,
			BillingService:       billingService,
			StripeClient:         stripeClient,
			StripeWebhookService: webhookService,
			StripeWebhookGuard:   webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
