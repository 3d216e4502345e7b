package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/service"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/logger"
)

// WebhookHandler handles Stripe webhook events
type WebhookHandler struct {
	paymentService service.PaymentService
	webhookSecret  string
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(paymentService service.PaymentService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		webhookSecret:  webhookSecret,
	}
}

// HandleStripeWebhook handles incoming Stripe webhook events. Processing
// failures after signature verification still acknowledge with 200 so Stripe
// retries are driven by the event table, not by HTTP status.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	log := logger.Get()

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to read webhook body: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		log.Warn("Missing Stripe-Signature header")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing Stripe-Signature header"})
		return
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, h.webhookSecret)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to verify webhook signature: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	log.Info(fmt.Sprintf("Received Stripe webhook event: %s (%s)", event.Type, event.ID))

	switch event.Type {
	case "payment_intent.succeeded":
		h.reconcile(c, event, domain.WebhookPaymentSucceeded)
	case "payment_intent.payment_failed":
		h.reconcile(c, event, domain.WebhookPaymentFailed)
	default:
		log.Info(fmt.Sprintf("Unhandled event type: %s", event.Type))
		c.JSON(http.StatusOK, gin.H{"received": true, "message": "Event type not handled"})
	}
}

func (h *WebhookHandler) reconcile(c *gin.Context, event stripe.Event, eventType domain.WebhookEventType) {
	log := logger.Get()

	var paymentIntent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		log.Error(fmt.Sprintf("Failed to parse %s: %v", event.Type, err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event data"})
		return
	}

	webhookEvent := &domain.WebhookEvent{
		EventID:    event.ID,
		Type:       eventType,
		IntentID:   paymentIntent.ID,
		OccurredAt: time.Unix(event.Created, 0).UTC(),
	}
	if paymentIntent.LastPaymentError != nil {
		webhookEvent.ErrorCode = string(paymentIntent.LastPaymentError.Code)
		webhookEvent.ErrorMessage = paymentIntent.LastPaymentError.Msg
	}

	if err := h.paymentService.Reconcile(c.Request.Context(), webhookEvent); err != nil {
		log.Error(fmt.Sprintf("Failed to reconcile event %s: %v", event.ID, err))
		// Still return 200 to acknowledge receipt; failures surface through
		// logs and traces, not through Stripe's retry loop.
		c.JSON(http.StatusOK, gin.H{"received": true, "message": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
