package handlers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"settlement-service/internal/services"
)

// WebhookEvent is the processor's event envelope.
type WebhookEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const EventCheckoutCompleted = "checkout.completed"

type WebhookHandler struct {
	Secret     string
	Validator  *services.ValidationService
	Settlement *services.SettlementService
}

func NewWebhookHandler(secret string, validator *services.ValidationService, settlement *services.SettlementService) *WebhookHandler {
	return &WebhookHandler{
		Secret:     secret,
		Validator:  validator,
		Settlement: settlement,
	}
}

// VerifySignature checks the HMAC-SHA512 hex signature over the unmodified
// raw body. Runs before any parsing; nothing about an unsigned payload is
// trusted, logged, or stored.
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandlePaymentWebhook receives signed payment-processor events. The
// response is sent once the financial commit succeeds; side effects are
// never awaited here.
//
// Status mapping: 400 for bad signatures (processor misconfiguration should
// be loud), 500 for transient storage failures (processor redelivers), 200
// for everything else including permanently-invalid payloads, which are
// acknowledged after the audit row is written so the processor stops
// retrying what can never succeed.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unable to read request body"})
		return
	}

	if !VerifySignature(body, c.GetHeader("X-Signature"), h.Secret) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid signature"})
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Malformed event envelope"})
		return
	}

	switch event.Type {
	case EventCheckoutCompleted:
		h.handleCheckoutCompleted(c, event)
	default:
		log.Printf("Ignoring webhook event %s of unhandled type %q", event.ID, event.Type)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event type ignored"})
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, event WebhookEvent) {
	var payload services.CheckoutSessionPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Malformed session payload"})
		return
	}

	result, err := h.Validator.ValidateSession(payload)
	if err != nil {
		log.Printf("Validation failed for session %s: %v", payload.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Validation error"})
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session already settled"})
		return
	}

	if !result.Valid {
		c.JSON(http.StatusOK, gin.H{
			"success":  false,
			"message":  "Validation failed",
			"errors":   result.Errors,
			"warnings": result.Warnings,
		})
		return
	}

	trx, err := h.Settlement.Settle(result.Breakdown)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateSession) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session already settled"})
			return
		}
		log.Printf("Settlement failed for session %s: %v", payload.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Settlement error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Session settled",
		"data":     gin.H{"reference": trx.Reference},
		"warnings": result.Warnings,
	})
}
