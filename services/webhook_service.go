package services

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	apperrors "github.com/MissDaze/Sassclub/errors"
	"github.com/MissDaze/Sassclub/logger"
	"github.com/MissDaze/Sassclub/models"
	aws_pkg "github.com/MissDaze/Sassclub/pkg/aws"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// EventKind is the set of webhook events this service reacts to.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCheckoutSessionCompleted
	EventPaymentIntentSucceeded
)

// KindOf maps a Stripe event type onto an EventKind.
func KindOf(t stripe.EventType) EventKind {
	switch t {
	case stripe.EventTypeCheckoutSessionCompleted:
		return EventCheckoutSessionCompleted
	case stripe.EventTypePaymentIntentSucceeded:
		return EventPaymentIntentSucceeded
	default:
		return EventUnknown
	}
}

func (k EventKind) String() string {
	switch k {
	case EventCheckoutSessionCompleted:
		return "checkout.session.completed"
	case EventPaymentIntentSucceeded:
		return "payment_intent.succeeded"
	default:
		return "unknown"
	}
}

// WebhookOutcome says what happened to an acknowledged delivery.
type WebhookOutcome int

const (
	// OutcomeUnverified means no webhook secret is configured; the delivery was
	// acknowledged without being read.
	OutcomeUnverified WebhookOutcome = iota
	OutcomeDispatched
)

// WebhookService verifies Stripe deliveries and dispatches them by kind.
type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error)
}

type webhookServiceImpl struct {
	parser  WebhookParser
	metrics Metrics
	logger  *zap.Logger
}

func NewWebhookService(parser WebhookParser, metrics Metrics, logger *zap.Logger) WebhookService {
	return &webhookServiceImpl{parser: parser, metrics: metrics, logger: logger}
}

// maxReasonLen bounds how much of a verification error reaches the logs.
const maxReasonLen = 200

// HandleEvent verifies payload against signature and dispatches it. Only a
// failed verification is an error; every verified event is acknowledged,
// including kinds we do not handle. Redeliveries are dispatched again.
func (s *webhookServiceImpl) HandleEvent(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	log := logger.For(ctx, s.logger)

	if !s.parser.WebhookConfigured() {
		log.Warn("Stripe webhook secret not configured, acknowledging without verification",
			zap.Int("payload_bytes", len(payload)),
		)
		return OutcomeUnverified, nil
	}

	event, err := s.parser.ParseWebhook(payload, signature)
	if err != nil {
		log.Warn("Stripe webhook signature verification failed", zap.String("reason", truncate(err.Error(), maxReasonLen)))
		s.metrics.Count(aws_pkg.MetricWebhookVerificationFailed, nil)
		return 0, apperrors.Verification(err)
	}

	kind := KindOf(event.Type)
	log = log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
	)
	log.Info("Processing Stripe webhook")

	switch kind {
	case EventCheckoutSessionCompleted:
		s.handleCheckoutCompleted(log, event)
	case EventPaymentIntentSucceeded:
		s.handlePaymentIntentSucceeded(log, event)
	default:
		log.Info("Unhandled webhook event type")
		s.metrics.Count(aws_pkg.MetricWebhookEventsUnhandled, map[string]string{"EventType": string(event.Type)})
	}

	return OutcomeDispatched, nil
}

func (s *webhookServiceImpl) handleCheckoutCompleted(log *zap.Logger, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := decodeEventObject(event, &sess); err != nil {
		log.Error("Failed to unmarshal checkout session", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("session_id", sess.ID),
		zap.Int64("amount_total", sess.AmountTotal),
		zap.String("currency", string(sess.Currency)),
		zap.String("product", sess.Metadata[models.MetaProduct]),
		zap.String("size", sess.Metadata[models.MetaSize]),
		zap.String("order_type", sess.Metadata[models.MetaOrderType]),
	}
	if cd := sess.CustomerDetails; cd != nil {
		fields = append(fields, zap.String("customer_email", cd.Email), zap.String("customer_name", cd.Name))
	}
	log.Info("Checkout session completed", fields...)

	s.metrics.Count(aws_pkg.MetricCheckoutSessionsCompleted, map[string]string{"Product": sess.Metadata[models.MetaProduct]})
}

func (s *webhookServiceImpl) handlePaymentIntentSucceeded(log *zap.Logger, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := decodeEventObject(event, &pi); err != nil {
		log.Error("Failed to unmarshal payment intent", zap.Error(err))
		return
	}

	log.Info("Payment intent succeeded",
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", pi.Amount),
		zap.String("currency", string(pi.Currency)),
	)
	s.metrics.Count(aws_pkg.MetricPaymentSucceeded, nil)
}

func decodeEventObject(event stripe.Event, v interface{}) error {
	if event.Data == nil {
		return errMissingEventData
	}
	return json.Unmarshal(event.Data.Raw, v)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
