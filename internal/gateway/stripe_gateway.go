package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// StripeGateway implements PaymentGateway using Stripe
type StripeGateway struct {
	config *StripeGatewayConfig
}

// StripeGatewayConfig holds configuration for the Stripe gateway
type StripeGatewayConfig struct {
	SecretKey     string
	WebhookSecret string
	Environment   string // "test" or "live"
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeGatewayConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	// Set Stripe API key globally
	stripe.Key = config.SecretKey

	return &StripeGateway{config: config}, nil
}

// CreateIntent registers a payment intent with Stripe. Amounts are already in
// the smallest currency unit, no conversion happens here.
func (g *StripeGateway) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*CreateIntentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.create_intent")
	defer span.End()

	if req == nil {
		return nil, fmt.Errorf("create intent request is required")
	}

	span.SetAttributes(
		attribute.String("booking_id", req.BookingID),
		attribute.Int64("amount_cents", req.Amount.Cents()),
		attribute.String("currency", req.Currency),
	)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount.Cents()),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"booking_id": req.BookingID,
			"payment_id": req.PaymentID,
		},
	}
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	span.SetAttributes(attribute.String("intent_id", pi.ID))
	span.SetStatus(codes.Ok, "")
	return &CreateIntentResponse{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// Refund issues a refund against a payment intent
func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount domain.Money) error {
	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.refund")
	defer span.End()

	if intentID == "" {
		return fmt.Errorf("intent ID is required")
	}
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	span.SetAttributes(
		attribute.String("intent_id", intentID),
		attribute.Int64("amount_cents", amount.Cents()),
	)

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amount.Cents()),
	}
	params.Context = ctx

	if _, err := refund.New(params); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create refund: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Name returns the gateway name
func (g *StripeGateway) Name() string {
	return "stripe"
}
