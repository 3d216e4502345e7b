package repository

import (
	"context"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// ValidationRepository persists admin validation records, one per booking.
type ValidationRepository interface {
	// CreateIfAbsent inserts the validation unless one already exists for the
	// booking, in which case the existing record is returned. This is the
	// idempotent lazy creation the workflow relies on.
	CreateIfAbsent(ctx context.Context, validation *domain.AdminValidation) (*domain.AdminValidation, error)

	// GetByID retrieves a validation by its ID
	GetByID(ctx context.Context, id string) (*domain.AdminValidation, error)

	// GetByBookingID retrieves the validation for a booking
	GetByBookingID(ctx context.Context, bookingID string) (*domain.AdminValidation, error)

	// Update persists a state change
	Update(ctx context.Context, validation *domain.AdminValidation) error

	// ListPending returns validations awaiting an admin decision, oldest first
	ListPending(ctx context.Context, limit, offset int) ([]*domain.AdminValidation, error)
}

// CommissionRepository is the append-only commission settings store.
type CommissionRepository interface {
	// Append adds a new setting; existing rows are never modified
	Append(ctx context.Context, setting *domain.CommissionSetting) error

	// ResolveForDate returns the setting in effect at the given date: greatest
	// effective_date <= date, ties broken by greatest created_at.
	ResolveForDate(ctx context.Context, date time.Time) (*domain.CommissionSetting, error)
}
