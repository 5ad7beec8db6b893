package controllers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/Rvd99/ali-baba/controllers"
	"github.com/Rvd99/ali-baba/services"
)

const webhookTestSecret = "whsec_test_secret"

func newWebhookRouter(orderRepo *stubOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	stripeSvc := services.NewStripeService("", webhookTestSecret, "http://localhost:3000")
	checkoutSvc := services.NewCheckoutService(orderRepo, &stubProductRepo{}, stripeSvc, zap.NewNop())
	ctrl := controllers.NewCheckoutController(checkoutSvc, stripeSvc, zap.NewNop())

	r := gin.New()
	r.POST("/webhooks/stripe", ctrl.HandleWebhook)
	return r
}

// stripeSignature builds the v1 signature scheme Stripe puts in the
// Stripe-Signature header: HMAC-SHA256 over "<timestamp>.<payload>".
func stripeSignature(secret string, payload []byte, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func completedSessionPayload(orderID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","metadata":{"order_id":%q,"user_id":%q},"payment_intent":{"id":"pi_test_1"}}}}`,
		stripe.APIVersion, orderID, uuid.New(),
	))
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookEndpoint_RejectsUnsignedPayload(t *testing.T) {
	orderRepo := &stubOrderRepo{}
	r := newWebhookRouter(orderRepo)

	w := postWebhook(r, completedSessionPayload(uuid.New()), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orderRepo.markPaidCalls, "an unsigned delivery must not touch any order")
}

func TestWebhookEndpoint_RejectsTamperedPayload(t *testing.T) {
	orderRepo := &stubOrderRepo{}
	r := newWebhookRouter(orderRepo)

	// Signature computed over a different body than the one delivered.
	signature := stripeSignature(webhookTestSecret, []byte(`{"id":"evt_other"}`), time.Now())
	w := postWebhook(r, completedSessionPayload(uuid.New()), signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orderRepo.markPaidCalls)
}

func TestWebhookEndpoint_RejectsWrongSecret(t *testing.T) {
	orderRepo := &stubOrderRepo{}
	r := newWebhookRouter(orderRepo)

	payload := completedSessionPayload(uuid.New())
	signature := stripeSignature("whsec_somebody_else", payload, time.Now())
	w := postWebhook(r, payload, signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orderRepo.markPaidCalls)
}

func TestWebhookEndpoint_AppliesCheckoutCompleted(t *testing.T) {
	orderRepo := &stubOrderRepo{markPaidApplied: true}
	r := newWebhookRouter(orderRepo)

	orderID := uuid.New()
	payload := completedSessionPayload(orderID)
	w := postWebhook(r, payload, stripeSignature(webhookTestSecret, payload, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, orderRepo.markPaidCalls)
	assert.Equal(t, orderID, orderRepo.markPaidOrderID)
}

func TestWebhookEndpoint_AcksUnknownEventType(t *testing.T) {
	orderRepo := &stubOrderRepo{}
	r := newWebhookRouter(orderRepo)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_2","api_version":%q,"type":"invoice.created","data":{"object":{"id":"in_test_1"}}}`,
		stripe.APIVersion,
	))
	w := postWebhook(r, payload, stripeSignature(webhookTestSecret, payload, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code, "unhandled event types are acknowledged so Stripe stops retrying")
	assert.Equal(t, 0, orderRepo.markPaidCalls)
}
