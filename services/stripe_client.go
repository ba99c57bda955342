package services

import (
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

// SessionCreator creates Stripe Checkout Sessions.
type SessionCreator interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// WebhookParser verifies and decodes Stripe webhook payloads.
type WebhookParser interface {
	WebhookConfigured() bool
	ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeService is the only code that talks to Stripe. It uses its own
// session client rather than the package-level stripe.Key.
type StripeService struct {
	sessions   session.Client
	webhookKey string
}

func NewStripeService(secretKey, webhookKey string, backend stripe.Backend) *StripeService {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeService{
		sessions:   session.Client{B: backend, Key: secretKey},
		webhookKey: webhookKey,
	}
}

// NewStripeBackend returns an API backend that logs through zap. A non-empty
// baseURL points it at another host, e.g. stripe-mock.
func NewStripeBackend(baseURL string, logger *zap.Logger) stripe.Backend {
	cfg := &stripe.BackendConfig{
		LeveledLogger: logger.Sugar(),
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}
	return stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
}

func (s *StripeService) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return s.sessions.New(params)
}

func (s *StripeService) WebhookConfigured() bool {
	return s.webhookKey != ""
}

// ParseWebhook checks the Stripe-Signature header against the exact payload
// bytes and decodes the event. Events from a different API version than the
// library's are accepted; only the fields we read matter.
func (s *StripeService) ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
