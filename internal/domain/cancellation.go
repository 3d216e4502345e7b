package domain

import (
	"time"

	"github.com/google/uuid"
)

// CancellationActor identifies who triggered a cancellation
type CancellationActor string

const (
	CancelledByAmateur CancellationActor = "amateur"
	CancelledByPro     CancellationActor = "pro"
	CancelledByAdmin   CancellationActor = "admin"
)

// Valid reports whether the actor is a known one
func (a CancellationActor) Valid() bool {
	switch a {
	case CancelledByAmateur, CancelledByPro, CancelledByAdmin:
		return true
	}
	return false
}

// CancellationRecord is created once per cancelled booking
type CancellationRecord struct {
	ID               string
	BookingID        string
	CancelledBy      CancellationActor
	CancelledAt      time.Time
	HoursBeforeStart int
	RefundPercentage float64
	RefundAmount     Money
	ForceMajeure     bool
	Reason           string
}

// NewCancellationRecord builds the record from a computed refund outcome
func NewCancellationRecord(bookingID string, actor CancellationActor, now time.Time, hoursBefore int, refundPct float64, refundAmount Money, forceMajeure bool, reason string) *CancellationRecord {
	return &CancellationRecord{
		ID:               uuid.New().String(),
		BookingID:        bookingID,
		CancelledBy:      actor,
		CancelledAt:      now,
		HoursBeforeStart: hoursBefore,
		RefundPercentage: refundPct,
		RefundAmount:     refundAmount,
		ForceMajeure:     forceMajeure,
		Reason:           reason,
	}
}
