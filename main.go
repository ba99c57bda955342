package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MissDaze/Sassclub/catalog"
	"github.com/MissDaze/Sassclub/config"
	"github.com/MissDaze/Sassclub/controllers"
	"github.com/MissDaze/Sassclub/logger"
	"github.com/MissDaze/Sassclub/middleware"
	aws_pkg "github.com/MissDaze/Sassclub/pkg/aws"
	"github.com/MissDaze/Sassclub/routes"
	"github.com/MissDaze/Sassclub/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const serviceName = "storefront"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("[Storefront] ⚠️ Failed to read .env:", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[Storefront] ❌ Failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- AWS (optional) ---
	var awsCfg *sdkaws.Config
	if cfg.UseAWSSecrets || cfg.CloudWatchEnabled {
		c, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			log.Println("[Storefront] ⚠️ AWS config unavailable, continuing without AWS:", err)
		} else {
			awsCfg = &c
		}
	}

	// --- Logger ---
	var sink io.Writer
	if awsCfg != nil && cfg.CloudWatchEnabled {
		cw, err := aws_pkg.NewLogStream(ctx, *awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			log.Println("[Storefront] ⚠️ CloudWatch Logs disabled:", err)
		} else {
			sink = cw
		}
	}
	zl, err := logger.New(cfg.Env, sink)
	if err != nil {
		log.Fatal("[Storefront] ❌ Failed to initialize logger:", err)
	}
	defer zl.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Secrets Manager override ---
	if cfg.UseAWSSecrets && awsCfg != nil {
		if err := cfg.ApplySecretsOverride(ctx, aws_pkg.NewSecretsClient(*awsCfg)); err != nil {
			zl.Warn("Secrets Manager override failed, using environment values", zap.Error(err))
		}
	}
	if !cfg.StripeConfigured() {
		zl.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}
	if !cfg.WebhookConfigured() {
		zl.Warn("STRIPE_WEBHOOK_SECRET not set, webhooks are accepted unverified")
	}

	// --- Metrics ---
	var metricsClient *aws_pkg.MetricsClient
	var metrics services.Metrics = services.NopMetrics{}
	if awsCfg != nil && cfg.CloudWatchEnabled {
		metricsClient = aws_pkg.NewMetricsClient(*awsCfg, cfg.CloudWatchNamespace, true)
		metrics = services.NewCloudWatchMetrics(metricsClient, zl)
	}

	// --- Dependency injection ---
	cat := catalog.Default()
	stripeSvc := services.NewStripeService(
		cfg.StripeSecretKey,
		cfg.StripeWebhookSecret,
		services.NewStripeBackend(cfg.StripeAPIBase, zl),
	)
	checkoutSvc := services.NewCheckoutService(stripeSvc, cat, cfg, metrics, zl)
	webhookSvc := services.NewWebhookService(stripeSvc, metrics, zl)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{cfg.BaseURL}
	}

	r := routes.NewEngine(routes.EngineOptions{
		Logger:         zl,
		Metrics:        metricsClient,
		ServiceName:    serviceName,
		AllowedOrigins: origins,
		RateLimiter:    middleware.NewRateLimiter(ctx, middleware.PerMinute(cfg.RateLimitPerMinute), 20, 5*time.Minute),
		RequestTimeout: 30 * time.Second,
		HSTS:           cfg.IsProduction(),
	}, routes.Handlers{
		Checkout: controllers.NewCheckoutController(checkoutSvc, cat),
		Webhook:  controllers.NewWebhookController(webhookSvc),
		Health:   controllers.NewHealthController(cfg),
		Static:   controllers.NewStaticController(cfg.WebRoot),
	})

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zl.Info("Storefront started",
			zap.String("port", cfg.Port),
			zap.String("base_url", cfg.BaseURL),
			zap.Bool("stripe_configured", cfg.StripeConfigured()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	zl.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server shutdown error", zap.Error(err))
	}

	zl.Info("Storefront stopped gracefully")
}
