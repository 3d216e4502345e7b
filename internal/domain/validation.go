package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminValidation is the human review record created lazily once a booking is
// paid. One record per booking; re-requesting returns the existing one.
type AdminValidation struct {
	ID        string
	BookingID string
	Status    ValidationStatus
	AdminID   string
	Notes     string

	// Alternative proposal, set when the admin cannot honor the requested
	// slot as-is.
	AlternativeStartAt *time.Time

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ValidatedAt *time.Time
}

// NewAdminValidation creates a pending validation for a booking
func NewAdminValidation(bookingID string) (*AdminValidation, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	now := time.Now().UTC()
	return &AdminValidation{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		Status:    ValidationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// StartCheck moves the validation to the informational checking state
func (v *AdminValidation) StartCheck(adminID string) error {
	if v.Status.IsTerminal() {
		return ErrValidationClosed
	}
	v.Status = ValidationStatusChecking
	v.AdminID = adminID
	v.UpdatedAt = time.Now().UTC()
	return nil
}

// Confirm records the admin confirmation
func (v *AdminValidation) Confirm(adminID, notes string) error {
	if v.Status.IsTerminal() {
		return ErrValidationClosed
	}
	now := time.Now().UTC()
	v.Status = ValidationStatusConfirmed
	v.AdminID = adminID
	v.Notes = notes
	v.ValidatedAt = &now
	v.UpdatedAt = now
	return nil
}

// ProposeAlternative records a different date/time proposal. The booking
// status does not change until the amateur accepts or declines.
func (v *AdminValidation) ProposeAlternative(adminID string, startAt time.Time, notes string) error {
	if v.Status.IsTerminal() {
		return ErrValidationClosed
	}
	v.Status = ValidationStatusAlternativeProposed
	v.AdminID = adminID
	v.Notes = notes
	v.AlternativeStartAt = &startAt
	v.UpdatedAt = time.Now().UTC()
	return nil
}

// AcceptAlternative is the amateur accepting the proposed slot
func (v *AdminValidation) AcceptAlternative() error {
	if v.Status != ValidationStatusAlternativeProposed {
		return ErrNoAlternative
	}
	now := time.Now().UTC()
	v.Status = ValidationStatusConfirmed
	v.ValidatedAt = &now
	v.UpdatedAt = now
	return nil
}

// Reject records the admin declining the booking
func (v *AdminValidation) Reject(adminID, notes string) error {
	if v.Status.IsTerminal() {
		return ErrValidationClosed
	}
	now := time.Now().UTC()
	v.Status = ValidationStatusRejected
	v.AdminID = adminID
	v.Notes = notes
	v.ValidatedAt = &now
	v.UpdatedAt = now
	return nil
}
