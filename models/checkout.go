package models

// OrderRequest is the body of POST /api/create-checkout-session.
// Price is in cents.
type OrderRequest struct {
	Product string `json:"product" binding:"required"`
	Size    string `json:"size" binding:"required,max=16"`
	Price   int64  `json:"price" binding:"required,gt=0"`
}

// CheckoutSessionResponse carries the Stripe session id back to the browser,
// which hands it to Stripe.js for the redirect.
type CheckoutSessionResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	StripeConfigured bool   `json:"stripeConfigured"`
	PublishableKey   string `json:"publishableKey,omitempty"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

// Fixed values attached to every pre-order session.
const (
	Currency          = "usd"
	OrderTypePreOrder = "pre-order"
	DeliveryEstimate  = "4-6 weeks"
	PreOrderNote      = "Pre-order - Estimated delivery in " + DeliveryEstimate
)

// ShippingCountries lists the countries we ship to.
var ShippingCountries = []string{"US", "CA", "GB", "AU"}

// Metadata keys set on the Stripe session and read back from webhook events.
const (
	MetaProduct      = "product"
	MetaSize         = "size"
	MetaOrderType    = "orderType"
	MetaDeliveryDate = "deliveryDate"
)
