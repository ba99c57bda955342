package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MissDaze/Sassclub/catalog"
	"github.com/MissDaze/Sassclub/config"
	"github.com/MissDaze/Sassclub/controllers"
	apperrors "github.com/MissDaze/Sassclub/errors"
	"github.com/MissDaze/Sassclub/models"
	"github.com/MissDaze/Sassclub/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock services ---

type mockCheckoutService struct {
	createFn func(ctx context.Context, order *models.OrderRequest) (string, error)
	calls    int
}

func (m *mockCheckoutService) CreateSession(ctx context.Context, order *models.OrderRequest) (string, error) {
	m.calls++
	return m.createFn(ctx, order)
}

type mockWebhookService struct {
	payload   []byte
	signature string
	err       error
}

func (m *mockWebhookService) HandleEvent(_ context.Context, payload []byte, signature string) (services.WebhookOutcome, error) {
	m.payload = payload
	m.signature = signature
	return services.OutcomeDispatched, m.err
}

// --- Helpers ---

func setupRouter(checkout services.CheckoutService, webhooks services.WebhookService) *gin.Engine {
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())

	cc := controllers.NewCheckoutController(checkout, catalog.Default())
	wc := controllers.NewWebhookController(webhooks)
	r.POST("/api/create-checkout-session", cc.CreateCheckoutSession)
	r.POST("/api/webhook", wc.StripeWebhook)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Checkout ---

func TestCreateCheckoutSession_Success(t *testing.T) {
	svc := &mockCheckoutService{createFn: func(_ context.Context, order *models.OrderRequest) (string, error) {
		assert.Equal(t, models.OrderRequest{Product: "karma", Size: "M", Price: 2500}, *order)
		return "cs_test_123", nil
	}}
	r := setupRouter(svc, &mockWebhookService{})

	w := postJSON(r, "/api/create-checkout-session", `{"product":"karma","size":"M","price":2500}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"cs_test_123"}`, w.Body.String())
}

func TestCreateCheckoutSession_BadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"malformed", `{"product":`, "invalid request body"},
		{"unknown product", `{"product":"mystery","size":"M","price":2500}`, "unknown product"},
		{"missing product", `{"size":"M","price":2500}`, "product is required"},
		{"missing size", `{"product":"karma","price":2500}`, "size is required"},
		{"zero price", `{"product":"karma","size":"M","price":0}`, "price must be a positive integer"},
		{"negative price", `{"product":"karma","size":"M","price":-5}`, "price must be a positive integer"},
		{"fractional price", `{"product":"karma","size":"M","price":25.5}`, "invalid request body"},
		{"string price", `{"product":"karma","size":"M","price":"2500"}`, "invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockCheckoutService{}
			r := setupRouter(svc, &mockWebhookService{})

			w := postJSON(r, "/api/create-checkout-session", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.msg, decode(t, w)["error"])
			assert.Zero(t, svc.calls)
		})
	}
}

func TestCreateCheckoutSession_CatalogPerController(t *testing.T) {
	ok := func(context.Context, *models.OrderRequest) (string, error) { return "cs_test_1", nil }
	shirts := controllers.NewCheckoutController(&mockCheckoutService{createFn: ok},
		catalog.New(catalog.Product{ID: "tee", Name: "Tee", Price: 2000}))
	hats := controllers.NewCheckoutController(&mockCheckoutService{createFn: ok},
		catalog.New(catalog.Product{ID: "cap", Name: "Cap", Price: 1500}))

	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.POST("/shirts", shirts.CreateCheckoutSession)
	r.POST("/hats", hats.CreateCheckoutSession)

	assert.Equal(t, http.StatusOK, postJSON(r, "/shirts", `{"product":"tee","size":"M","price":2000}`).Code)
	assert.Equal(t, http.StatusOK, postJSON(r, "/hats", `{"product":"cap","size":"M","price":1500}`).Code)

	w := postJSON(r, "/shirts", `{"product":"cap","size":"M","price":1500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown product", decode(t, w)["error"])
}

func TestCreateCheckoutSession_ServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperrors.Configuration("payment provider not configured"), http.StatusInternalServerError, "payment provider not configured"},
		{apperrors.Provider("Your card was declined.", nil), http.StatusInternalServerError, "Your card was declined."},
		{apperrors.Validation("price does not match catalog price"), http.StatusBadRequest, "price does not match catalog price"},
	}

	for _, tc := range cases {
		svc := &mockCheckoutService{createFn: func(context.Context, *models.OrderRequest) (string, error) {
			return "", tc.err
		}}
		r := setupRouter(svc, &mockWebhookService{})

		w := postJSON(r, "/api/create-checkout-session", `{"product":"karma","size":"M","price":2500}`)

		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.msg, decode(t, w)["error"])
	}
}

// --- Webhook ---

func TestStripeWebhook_PassesRawBodyAndSignature(t *testing.T) {
	wh := &mockWebhookService{}
	r := setupRouter(&mockCheckoutService{}, wh)

	body := "{\"id\": \"evt_1\",\n  \"type\": \"checkout.session.completed\"}"
	req, _ := http.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.Equal(t, body, string(wh.payload))
	assert.Equal(t, "t=1,v1=abc", wh.signature)
}

func TestStripeWebhook_VerificationFailure(t *testing.T) {
	wh := &mockWebhookService{err: apperrors.Verification(assert.AnError)}
	r := setupRouter(&mockCheckoutService{}, wh)

	w := postJSON(r, "/api/webhook", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "webhook signature verification failed", decode(t, w)["error"])
}

func TestStripeWebhook_BodyTooLarge(t *testing.T) {
	wh := &mockWebhookService{}
	r := setupRouter(&mockCheckoutService{}, wh)

	w := postJSON(r, "/api/webhook", strings.Repeat("a", controllers.MaxWebhookBodyBytes+1))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, wh.payload)
}

// --- Health ---

func TestHealth(t *testing.T) {
	for _, key := range []string{"", "sk_test_123"} {
		hc := controllers.NewHealthController(&config.Config{StripeSecretKey: key})
		r := gin.New()
		r.GET("/api/health", hc.Health)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "ok", resp["status"])
		assert.Equal(t, key != "", resp["stripeConfigured"])
		assert.NotContains(t, resp, "publishableKey")
	}

	hc := controllers.NewHealthController(&config.Config{StripeSecretKey: "sk_test_123", StripePublishableKey: "pk_test_123"})
	r := gin.New()
	r.GET("/api/health", hc.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.JSONEq(t, `{"status":"ok","stripeConfigured":true,"publishableKey":"pk_test_123"}`, w.Body.String())
}

// --- Static ---

func newStaticRouter(t *testing.T) (*gin.Engine, string) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>shop</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "img"), 0o755))

	r := gin.New()
	r.NoRoute(controllers.NewStaticController(root).Serve)
	return r, root
}

func get(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestStatic_ServesFilesAndFallsBackToIndex(t *testing.T) {
	r, _ := newStaticRouter(t)

	w := get(r, http.MethodGet, "/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	for _, p := range []string{"/", "/products/karma", "/img", "/../../etc/passwd"} {
		w = get(r, http.MethodGet, p)
		assert.Equal(t, http.StatusOK, w.Code, p)
		assert.Equal(t, "<h1>shop</h1>", w.Body.String(), p)
	}

	// The file server canonicalises the entry document to its directory.
	w = get(r, http.MethodGet, "/index.html")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "./", w.Header().Get("Location"))

	w = get(r, http.MethodHead, "/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestStatic_NotFound(t *testing.T) {
	r, _ := newStaticRouter(t)

	assert.Equal(t, http.StatusNotFound, get(r, http.MethodGet, "/api/unknown").Code)
	assert.Equal(t, http.StatusNotFound, get(r, http.MethodPost, "/anything").Code)

	empty := gin.New()
	empty.NoRoute(controllers.NewStaticController(t.TempDir()).Serve)
	assert.Equal(t, http.StatusNotFound, get(empty, http.MethodGet, "/").Code)
}
