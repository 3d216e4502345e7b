package repository

import (
	"context"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// BookingRepository defines persistence for the booking aggregate
type BookingRepository interface {
	// Create inserts a new booking
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByAmateurID retrieves bookings for an amateur, newest first
	GetByAmateurID(ctx context.Context, amateurID string, limit, offset int) ([]*domain.Booking, error)

	// Update persists status fields, reasons and timestamps
	Update(ctx context.Context, booking *domain.Booking) error

	// MarkSlotReleased flips the per-booking release latch with a guarded
	// update. It returns true only for the call that actually flipped it, so
	// retried cancellations decrement slot capacity exactly once.
	MarkSlotReleased(ctx context.Context, id string) (bool, error)

	// GetStalePending returns pending bookings created before the deadline
	// whose authorization window has lapsed
	GetStalePending(ctx context.Context, deadline time.Time, limit int) ([]*domain.Booking, error)

	// GetPastDueConfirmed returns confirmed bookings whose start time has
	// elapsed, eligible for completion
	GetPastDueConfirmed(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)

	// CreateCancellation records the cancellation outcome for a booking
	CreateCancellation(ctx context.Context, record *domain.CancellationRecord) error
}
