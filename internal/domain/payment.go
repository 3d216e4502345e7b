package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PaymentIntentRecord mirrors the payment provider's intent for a booking.
// Exactly one record exists per booking and the amount is immutable after
// creation, which protects against mid-flight price edits.
type PaymentIntentRecord struct {
	ID           string
	BookingID    string
	IntentID     string
	ClientSecret string
	Amount       Money
	Currency     string
	Status       PaymentStatus
	ErrorCode    string
	ErrorMessage string
	LastEventAt  *time.Time
	RefundedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPaymentIntentRecord creates a pending record for a booking
func NewPaymentIntentRecord(bookingID string, amount Money, currency string) (*PaymentIntentRecord, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = "eur"
	}
	now := time.Now().UTC()
	return &PaymentIntentRecord{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		Amount:    amount,
		Currency:  currency,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AttachIntent records the provider-side identifiers
func (p *PaymentIntentRecord) AttachIntent(intentID, clientSecret string) {
	p.IntentID = intentID
	p.ClientSecret = clientSecret
	p.UpdatedAt = time.Now().UTC()
}

// MarkSucceeded applies a succeeded webhook. Applying it to an already
// succeeded record is a no-op so duplicate deliveries stay harmless.
func (p *PaymentIntentRecord) MarkSucceeded(eventAt time.Time) error {
	if p.Status == PaymentStatusSucceeded {
		return nil
	}
	if p.Status != PaymentStatusPending {
		return ErrIntentTerminal
	}
	p.Status = PaymentStatusSucceeded
	p.LastEventAt = &eventAt
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed applies a failed webhook
func (p *PaymentIntentRecord) MarkFailed(eventAt time.Time, code, message string) error {
	if p.Status == PaymentStatusFailed {
		return nil
	}
	if p.Status != PaymentStatusPending {
		return ErrIntentTerminal
	}
	p.Status = PaymentStatusFailed
	p.ErrorCode = code
	p.ErrorMessage = message
	p.LastEventAt = &eventAt
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkRefunded records a completed refund
func (p *PaymentIntentRecord) MarkRefunded() error {
	if p.Status == PaymentStatusRefunded {
		return nil
	}
	if p.Status != PaymentStatusSucceeded {
		return ErrPaymentNotRefundable
	}
	now := time.Now().UTC()
	p.Status = PaymentStatusRefunded
	p.RefundedAt = &now
	p.UpdatedAt = now
	return nil
}

// IsTerminal returns true once no further provider event can change the record
func (p *PaymentIntentRecord) IsTerminal() bool {
	return p.Status == PaymentStatusFailed || p.Status == PaymentStatusRefunded
}

// WebhookEventType identifies the provider events the reconciler handles
type WebhookEventType string

const (
	WebhookPaymentSucceeded WebhookEventType = "payment_intent.succeeded"
	WebhookPaymentFailed    WebhookEventType = "payment_intent.payment_failed"
)

// WebhookEvent is the provider notification delivered at least once, possibly
// out of order. EventID is the idempotency key.
type WebhookEvent struct {
	EventID      string
	Type         WebhookEventType
	IntentID     string
	ErrorCode    string
	ErrorMessage string
	OccurredAt   time.Time
}

// Validate rejects structurally unusable events
func (e *WebhookEvent) Validate() error {
	if e.EventID == "" {
		return errors.New("webhook event id is required")
	}
	if e.IntentID == "" {
		return errors.New("webhook intent id is required")
	}
	return nil
}
