package controllers

import (
	"errors"
	"io"
	"net/http"

	apperrors "github.com/MissDaze/Sassclub/errors"
	"github.com/MissDaze/Sassclub/models"
	"github.com/MissDaze/Sassclub/services"

	"github.com/gin-gonic/gin"
)

// MaxWebhookBodyBytes is the largest webhook body accepted.
const MaxWebhookBodyBytes = 65536

// SignatureHeader is where Stripe puts the webhook signature.
const SignatureHeader = "Stripe-Signature"

// WebhookController receives Stripe webhook deliveries.
type WebhookController struct {
	webhooks services.WebhookService
}

func NewWebhookController(webhooks services.WebhookService) *WebhookController {
	return &WebhookController{webhooks: webhooks}
}

// StripeWebhook handles POST /api/webhook. The body is read as raw bytes and
// handed over untouched, since the signature covers the exact payload.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(apperrors.New(http.StatusRequestEntityTooLarge, apperrors.KindValidation, "request body too large", err))
			return
		}
		_ = c.Error(apperrors.Validation("could not read request body"))
		return
	}

	if _, err := wc.webhooks.HandleEvent(c.Request.Context(), payload, c.GetHeader(SignatureHeader)); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.WebhookAck{Received: true})
}
