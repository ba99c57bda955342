package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the storefront service. It is built once
// in main and handed to every component that needs it.
type Config struct {
	Port    string
	Env     string
	BaseURL string // externally reachable origin used for Stripe redirects
	WebRoot string

	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePublishableKey string // handed to the browser for Stripe.js
	StripeAPIBase        string // empty means api.stripe.com
	StrictPricing        bool

	AllowedOrigins     []string
	RateLimitPerMinute int

	UseAWSSecrets    bool
	StripeSecretName string

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
}

// SecretGetter resolves a named secret to its string value.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadConfig reads configuration from environment variables. Missing Stripe
// credentials are not an error: checkout and webhook handling degrade instead.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "3000")

	strict, err := getBool("STRICT_PRICING", false)
	if err != nil {
		return nil, err
	}
	useSecrets, err := getBool("AWS_USE_SECRETS", false)
	if err != nil {
		return nil, err
	}
	cwEnabled, err := getBool("CLOUDWATCH_ENABLED", false)
	if err != nil {
		return nil, err
	}
	perMinute, err := getInt("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	if perMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", perMinute)
	}

	origins := splitList(os.Getenv("ALLOWED_ORIGINS"))
	for _, o := range origins {
		if o != "*" && !hasHTTPScheme(o) {
			return nil, fmt.Errorf("invalid ALLOWED_ORIGINS entry %q: must be * or start with http:// or https://", o)
		}
	}

	baseURL := strings.TrimSuffix(getEnv("DOMAIN", getEnv("BASE_URL", "http://localhost:"+port)), "/")
	if !hasHTTPScheme(baseURL) {
		return nil, fmt.Errorf("invalid DOMAIN %q: must start with http:// or https://", baseURL)
	}

	cfg := &Config{
		Port:                 port,
		Env:                  getEnv("APP_ENV", "development"),
		BaseURL:              baseURL,
		WebRoot:              getEnv("WEB_ROOT", "public"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeAPIBase:        os.Getenv("STRIPE_API_BASE"),
		StrictPricing:        strict,
		AllowedOrigins:       origins,
		RateLimitPerMinute:   perMinute,
		UseAWSSecrets:        useSecrets,
		StripeSecretName:     getEnv("STRIPE_SECRET_NAME", "storefront/STRIPE"),
		CloudWatchEnabled:    cwEnabled,
		CloudWatchNamespace:  getEnv("CLOUDWATCH_NAMESPACE", "Sassclub"),
		CloudWatchLogGroup:   getEnv("CLOUDWATCH_LOG_GROUP", "/sassclub/storefront"),
	}

	return cfg, nil
}

// ApplySecretsOverride replaces the Stripe credentials with the values stored
// in the configured secret. The secret is a JSON object keyed like the
// environment variables it overrides; empty values are ignored.
func (c *Config) ApplySecretsOverride(ctx context.Context, sm SecretGetter) error {
	raw, err := sm.GetSecret(ctx, c.StripeSecretName)
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return fmt.Errorf("secret %s is not a JSON object: %w", c.StripeSecretName, err)
	}
	if v := m["STRIPE_SECRET_KEY"]; v != "" {
		c.StripeSecretKey = v
	}
	if v := m["STRIPE_WEBHOOK_SECRET"]; v != "" {
		c.StripeWebhookSecret = v
	}
	if v := m["STRIPE_PUBLISHABLE_KEY"]; v != "" {
		c.StripePublishableKey = v
	}
	return nil
}

// StripeConfigured reports whether a Stripe API key is available.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

// WebhookConfigured reports whether webhook signatures can be verified.
func (c *Config) WebhookConfigured() bool {
	return c.StripeWebhookSecret != ""
}

// SuccessURL is where Stripe sends the customer after payment. The
// {CHECKOUT_SESSION_ID} token is substituted by Stripe at redirect time.
func (c *Config) SuccessURL() string {
	return c.BaseURL + "/success.html?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where Stripe sends the customer when they abandon checkout.
func (c *Config) CancelURL() string {
	return c.BaseURL + "/"
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func hasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(val, ",") {
		if o = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(o), "/")); o != "" {
			out = append(out, o)
		}
	}
	return out
}
