package handlers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test_123"

func sign(body, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestRouter(h *WebhookHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/payments", h.HandlePaymentWebhook)
	return r
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)

	assert.True(t, VerifySignature(body, sign(string(body), testSecret), testSecret))
	assert.False(t, VerifySignature(body, sign(string(body), "wrong-secret"), testSecret))
	assert.False(t, VerifySignature(body, "deadbeef", testSecret))
	assert.False(t, VerifySignature(body, "", testSecret))

	// A single flipped byte in the body invalidates the signature.
	tampered := []byte(`{"id":"evt_2"}`)
	assert.False(t, VerifySignature(tampered, sign(string(body), testSecret), testSecret))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := NewWebhookHandler(testSecret, nil, nil)
	r := newTestRouter(h)

	body := `{"id":"evt_1","type":"checkout.completed","data":{}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("X-Signature", "not-a-real-signature")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	h := NewWebhookHandler(testSecret, nil, nil)
	r := newTestRouter(h)

	body := `{"id":"evt_1","type":"checkout.completed","data":{}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsMalformedEnvelope(t *testing.T) {
	h := NewWebhookHandler(testSecret, nil, nil)
	r := newTestRouter(h)

	body := `{not json`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("X-Signature", sign(body, testSecret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Malformed event envelope")
}

func TestWebhookIgnoresUnknownEventType(t *testing.T) {
	h := NewWebhookHandler(testSecret, nil, nil)
	r := newTestRouter(h)

	body := `{"id":"evt_1","type":"payout.created","data":{}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("X-Signature", sign(body, testSecret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Unknown types are acknowledged so the processor does not redeliver.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Event type ignored")
}
