package gateway

import (
	"context"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// PaymentGateway defines the interface to the payment provider
type PaymentGateway interface {
	// CreateIntent registers a payment intent with the provider and returns
	// its identifiers. The intent is created uncaptured; the provider reports
	// the outcome asynchronously through webhooks.
	CreateIntent(ctx context.Context, req *CreateIntentRequest) (*CreateIntentResponse, error)

	// Refund issues a partial or full refund against an intent
	Refund(ctx context.Context, intentID string, amount domain.Money) error

	// Name returns the gateway name
	Name() string
}

// CreateIntentRequest carries everything the provider needs for an intent
type CreateIntentRequest struct {
	BookingID   string
	PaymentID   string
	Amount      domain.Money
	Currency    string
	Description string
	Metadata    map[string]string
}

// CreateIntentResponse returns the provider-side identifiers
type CreateIntentResponse struct {
	IntentID     string
	ClientSecret string
	Status       string
}
