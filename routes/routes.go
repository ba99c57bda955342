package routes

import (
	"github.com/MissDaze/Sassclub/controllers"

	"github.com/gin-gonic/gin"
)

// Handlers groups the controllers mounted by RegisterStorefrontRoutes.
type Handlers struct {
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
	Health   *controllers.HealthController
	Static   *controllers.StaticController
}

// RegisterStorefrontRoutes sets up the API and the static site. apiMiddleware
// applies to browser-facing API routes; the Stripe webhook is mounted outside
// that group so rate limits and CORS never reject provider deliveries.
func RegisterStorefrontRoutes(r *gin.Engine, h Handlers, apiMiddleware ...gin.HandlerFunc) {
	r.POST("/api/webhook", h.Webhook.StripeWebhook)

	api := r.Group("/api")
	api.Use(apiMiddleware...)
	api.GET("/health", h.Health.Health)
	api.POST("/create-checkout-session", h.Checkout.CreateCheckoutSession)

	r.NoRoute(h.Static.Serve)
}
