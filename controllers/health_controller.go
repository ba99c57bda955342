package controllers

import (
	"net/http"

	"github.com/MissDaze/Sassclub/config"
	"github.com/MissDaze/Sassclub/models"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	cfg *config.Config
}

func NewHealthController(cfg *config.Config) *HealthController {
	return &HealthController{cfg: cfg}
}

// Health handles GET /api/health.
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "ok",
		StripeConfigured: hc.cfg.StripeConfigured(),
		PublishableKey:   hc.cfg.StripePublishableKey,
	})
}
