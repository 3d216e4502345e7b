package repository

import (
	"context"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// PaymentRepository persists the provider-mirror payment records and the set
// of processed webhook event ids.
type PaymentRepository interface {
	// Create inserts a new payment intent record. The booking id is unique:
	// a second insert for the same booking fails.
	Create(ctx context.Context, record *domain.PaymentIntentRecord) error

	// GetByBookingID retrieves the record for a booking
	GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error)

	// GetByIntentID retrieves the record by the provider intent id
	GetByIntentID(ctx context.Context, intentID string) (*domain.PaymentIntentRecord, error)

	// Update persists status changes. The amount is immutable and is never
	// written back.
	Update(ctx context.Context, record *domain.PaymentIntentRecord) error

	// IsEventProcessed reports whether a webhook event id was already applied
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)

	// MarkEventProcessed records a webhook event id after its state change
	// has been applied, first writer wins. Returns false when another
	// delivery already recorded it.
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
}
