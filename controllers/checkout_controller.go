package controllers

import (
	"errors"
	"net/http"

	"github.com/MissDaze/Sassclub/catalog"
	apperrors "github.com/MissDaze/Sassclub/errors"
	"github.com/MissDaze/Sassclub/models"
	"github.com/MissDaze/Sassclub/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CheckoutController handles checkout session requests from the storefront.
type CheckoutController struct {
	checkout services.CheckoutService
	catalog  *catalog.Catalog
}

// NewCheckoutController creates a CheckoutController that rejects products
// missing from cat before the service is called.
func NewCheckoutController(checkout services.CheckoutService, cat *catalog.Catalog) *CheckoutController {
	return &CheckoutController{checkout: checkout, catalog: cat}
}

// CreateCheckoutSession handles POST /api/create-checkout-session.
func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(bindingMessage(err)))
		return
	}
	if !cc.catalog.Has(req.Product) {
		_ = c.Error(apperrors.Validation("unknown product"))
		return
	}

	id, err := cc.checkout.CreateSession(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.CheckoutSessionResponse{ID: id})
}

// bindingMessage turns a binding failure into a message fit for the client.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Product":
		return "product is required"
	case "Size":
		if fe.Tag() == "max" {
			return "size is too long"
		}
		return "size is required"
	case "Price":
		return "price must be a positive integer"
	}
	return "invalid request body"
}
