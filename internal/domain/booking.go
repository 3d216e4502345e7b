package domain

import "time"

// BookingStatus represents the lifecycle status of a booking (matches DB ENUM)
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) String() string { return string(s) }

// IsTerminal returns true if no further transition is allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// PaymentStatus mirrors the payment provider state for a booking
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string { return string(s) }

// ValidationStatus is the admin review state for a paid booking
type ValidationStatus string

const (
	ValidationStatusPending             ValidationStatus = "pending"
	ValidationStatusChecking            ValidationStatus = "checking"
	ValidationStatusConfirmed           ValidationStatus = "confirmed"
	ValidationStatusAlternativeProposed ValidationStatus = "alternative_proposed"
	ValidationStatusRejected            ValidationStatus = "rejected"
)

func (s ValidationStatus) String() string { return string(s) }

// IsTerminal returns true once the admin decision is final
func (s ValidationStatus) IsTerminal() bool {
	return s == ValidationStatusConfirmed || s == ValidationStatusRejected
}

// Booking is the aggregate root of the reservation lifecycle.
// ProFee, PlatformFee, TotalAmount and CommissionPct are snapshots computed
// at creation time and never recomputed afterwards.
type Booking struct {
	ID        string
	AmateurID string
	ProID     string
	CourseID  string
	SlotID    string

	StartAt     time.Time
	HoleCount   int
	PlayerCount int

	CommissionPct float64
	ProFee        Money
	PlatformFee   Money
	TotalAmount   Money
	Currency      string

	BookingStatus    BookingStatus
	PaymentStatus    PaymentStatus
	ValidationStatus ValidationStatus

	PaymentIntentID string
	SlotReleased    bool
	StatusReason    string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ValidatedAt *time.Time
	CancelledAt *time.Time
}

// Duration derives the lesson duration from the hole count.
func (b *Booking) Duration() time.Duration {
	if b.HoleCount == 18 {
		return 4 * time.Hour
	}
	return 2 * time.Hour
}

// EndAt returns the scheduled end of the lesson.
func (b *Booking) EndAt() time.Time {
	return b.StartAt.Add(b.Duration())
}

// IsConfirmed returns true if the booking reached the confirmed state
func (b *Booking) IsConfirmed() bool {
	return b.BookingStatus == BookingStatusConfirmed
}

// IsCancelled returns true if the booking was cancelled
func (b *Booking) IsCancelled() bool {
	return b.BookingStatus == BookingStatusCancelled
}

// BelongsToAmateur checks booking ownership
func (b *Booking) BelongsToAmateur(amateurID string) bool {
	return b.AmateurID == amateurID
}

// ResolveBookingStatus derives the booking status from the payment and
// validation statuses. Every transition goes through this reducer so no call
// site has to maintain the joint invariant by hand: confirmed is reachable
// only when the payment succeeded AND the admin confirmed; terminal states
// are sticky.
func ResolveBookingStatus(current BookingStatus, payment PaymentStatus, validation ValidationStatus) BookingStatus {
	if current.IsTerminal() {
		return current
	}
	if payment == PaymentStatusSucceeded && validation == ValidationStatusConfirmed {
		return BookingStatusConfirmed
	}
	if current == BookingStatusConfirmed {
		// Payment or validation regressed after confirmation; the cancellation
		// path is the only legal way out, keep confirmed until it runs.
		return BookingStatusConfirmed
	}
	return BookingStatusPending
}

// CheckInvariant reports the fatal inconsistency a correct state machine can
// never produce. Callers surface it as ErrInvariantViolation.
func (b *Booking) CheckInvariant() error {
	if b.BookingStatus == BookingStatusConfirmed &&
		(b.PaymentStatus != PaymentStatusSucceeded || b.ValidationStatus != ValidationStatusConfirmed) {
		return ErrInvariantViolation
	}
	return nil
}
