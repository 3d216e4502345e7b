package domain

import "time"

// BookingEventType identifies lifecycle notifications fanned out to
// downstream consumers (email, push, admin dashboard).
type BookingEventType string

const (
	BookingEventCreated             BookingEventType = "booking_created"
	BookingEventPaymentSucceeded    BookingEventType = "payment_succeeded"
	BookingEventPaymentFailed       BookingEventType = "payment_failed"
	BookingEventPaymentRefunded     BookingEventType = "payment_refunded"
	BookingEventValidationRequested BookingEventType = "validation_requested"
	BookingEventConfirmed           BookingEventType = "booking_confirmed"
	BookingEventAlternativeProposed BookingEventType = "alternative_proposed"
	BookingEventCancelled           BookingEventType = "booking_cancelled"
	BookingEventCompleted           BookingEventType = "booking_completed"
	BookingEventExpired             BookingEventType = "booking_expired"
)

// BookingEvent is the notification payload. Consumers treat delivery as
// at-least-once; EventID lets them deduplicate.
type BookingEvent struct {
	EventID   string           `json:"event_id"`
	Type      BookingEventType `json:"type"`
	BookingID string           `json:"booking_id"`
	AmateurID string           `json:"amateur_id"`
	ProID     string           `json:"pro_id"`
	SlotID    string           `json:"slot_id"`

	BookingStatus    BookingStatus    `json:"booking_status"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	ValidationStatus ValidationStatus `json:"validation_status"`

	TotalAmountCents int64  `json:"total_amount_cents"`
	Currency         string `json:"currency"`

	StartAt   time.Time `json:"start_at"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBookingEvent builds the notification payload from a booking snapshot
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:          eventID,
		Type:             eventType,
		BookingID:        booking.ID,
		AmateurID:        booking.AmateurID,
		ProID:            booking.ProID,
		SlotID:           booking.SlotID,
		BookingStatus:    booking.BookingStatus,
		PaymentStatus:    booking.PaymentStatus,
		ValidationStatus: booking.ValidationStatus,
		TotalAmountCents: booking.TotalAmount.Cents(),
		Currency:         booking.Currency,
		StartAt:          booking.StartAt,
		Timestamp:        time.Now().UTC(),
	}
}

// Key returns the partition key; per-booking ordering is enough for consumers
func (e *BookingEvent) Key() string {
	return e.BookingID
}
