package routes

import (
	"time"

	apperrors "github.com/MissDaze/Sassclub/errors"
	"github.com/MissDaze/Sassclub/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineOptions configures the middleware stack around the storefront routes.
type EngineOptions struct {
	Logger         *zap.Logger
	Metrics        middleware.MetricsRecorder
	ServiceName    string
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
	RequestTimeout time.Duration
	HSTS           bool
}

// NewEngine builds the gin engine with the full middleware stack and routes.
func NewEngine(opts EngineOptions, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(opts.Logger),
		middleware.MetricsMiddleware(opts.Metrics, opts.ServiceName),
		middleware.SecurityHeaders(opts.HSTS),
		apperrors.ErrorMiddleware(),
	)

	api := []gin.HandlerFunc{
		middleware.NoStore(),
		middleware.CORSMiddleware(opts.AllowedOrigins),
	}
	if opts.RateLimiter != nil {
		api = append(api, opts.RateLimiter.Middleware())
	}
	if opts.RequestTimeout > 0 {
		api = append(api, middleware.RequestTimeout(opts.RequestTimeout))
	}

	RegisterStorefrontRoutes(r, h, api...)
	return r
}
