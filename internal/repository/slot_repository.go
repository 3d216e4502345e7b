package repository

import (
	"context"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// SlotRepository is the availability ledger. Reserve and Release resolve
// synchronously against local storage; they must never block on an external
// call.
type SlotRepository interface {
	// GetByID retrieves a slot by its ID
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)

	// Reserve atomically checks capacity and increments current_bookings.
	// The check-and-increment is a single conditional update, never a
	// read-then-write pair. Returns domain.ErrSlotFull when capacity is
	// exhausted (an expected outcome) and domain.ErrSlotUnavailable when the
	// slot is closed for booking.
	Reserve(ctx context.Context, slotID string) error

	// Release decrements current_bookings, flooring at zero so a duplicate
	// release is a no-op rather than an error.
	Release(ctx context.Context, slotID string) error
}
