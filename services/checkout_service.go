package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/MissDaze/Sassclub/catalog"
	"github.com/MissDaze/Sassclub/config"
	apperrors "github.com/MissDaze/Sassclub/errors"
	"github.com/MissDaze/Sassclub/logger"
	"github.com/MissDaze/Sassclub/models"
	aws_pkg "github.com/MissDaze/Sassclub/pkg/aws"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// CheckoutService turns storefront orders into Stripe Checkout Sessions.
type CheckoutService interface {
	CreateSession(ctx context.Context, order *models.OrderRequest) (string, error)
}

type checkoutServiceImpl struct {
	stripe  SessionCreator
	catalog *catalog.Catalog
	cfg     *config.Config
	metrics Metrics
	logger  *zap.Logger
}

func NewCheckoutService(
	creator SessionCreator,
	cat *catalog.Catalog,
	cfg *config.Config,
	metrics Metrics,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		stripe:  creator,
		catalog: cat,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateSession validates the order, creates a single-item pre-order session
// and returns its id. Stripe is never called without an API key.
func (s *checkoutServiceImpl) CreateSession(ctx context.Context, order *models.OrderRequest) (string, error) {
	log := logger.For(ctx, s.logger)

	if !s.cfg.StripeConfigured() {
		log.Error("Checkout requested but Stripe is not configured")
		return "", apperrors.Configuration("payment provider not configured")
	}

	product, ok := s.catalog.Lookup(order.Product)
	if !ok {
		return "", apperrors.Validation("unknown product")
	}
	if order.Price <= 0 {
		return "", apperrors.Validation("price must be a positive integer")
	}
	if s.cfg.StrictPricing && order.Price != product.Price {
		log.Warn("Rejected checkout with non-catalog price",
			zap.String("product", product.ID),
			zap.Int64("price", order.Price),
			zap.Int64("catalog_price", product.Price),
		)
		return "", apperrors.Validation("price does not match catalog price")
	}

	params := newSessionParams(s.cfg, product, order)
	params.Context = ctx

	sess, err := s.stripe.CreateCheckoutSession(params)
	if err == nil && (sess == nil || sess.ID == "") {
		err = errors.New("stripe returned no session id")
	}
	if err != nil {
		log.Error("Failed to create Stripe checkout session",
			zap.String("product", product.ID),
			zap.String("size", order.Size),
			zap.Error(err),
		)
		s.metrics.Count(aws_pkg.MetricCheckoutSessionsFailed, map[string]string{"Product": product.ID})
		return "", apperrors.Provider(providerMessage(err), err)
	}

	log.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("product", product.ID),
		zap.String("size", order.Size),
		zap.Int64("amount", order.Price),
	)
	s.metrics.Count(aws_pkg.MetricCheckoutSessionsCreated, map[string]string{"Product": product.ID})

	return sess.ID, nil
}

// newSessionParams builds the Stripe request for one pre-order item. The
// caller-declared price is forwarded as the unit amount.
func newSessionParams(cfg *config.Config, product catalog.Product, order *models.OrderRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(models.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%s - Size %s", product.Name, order.Size)),
						Description: stripe.String(models.PreOrderNote),
					},
					UnitAmount: stripe.Int64(order.Price),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(cfg.SuccessURL()),
		CancelURL:  stripe.String(cfg.CancelURL()),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(models.ShippingCountries),
		},
	}
	params.AddMetadata(models.MetaProduct, order.Product)
	params.AddMetadata(models.MetaSize, order.Size)
	params.AddMetadata(models.MetaOrderType, models.OrderTypePreOrder)
	params.AddMetadata(models.MetaDeliveryDate, models.DeliveryEstimate)
	return params
}

// providerMessage extracts the human readable part of a Stripe error.
func providerMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
