package domain

import "errors"

// Domain errors
var (
	// Booking errors
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingNotCancellable = errors.New("booking is not cancellable")
	ErrBookingNotPending     = errors.New("booking is not pending")
	ErrAlreadyCancelled      = errors.New("booking already cancelled")

	// Slot errors
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotFull        = errors.New("slot is fully booked")
	ErrSlotUnavailable = errors.New("slot is not open for booking")

	// Validation errors (request validation, rejected synchronously)
	ErrInvalidPlayerCount = errors.New("player count must be between 1 and 3")
	ErrInvalidHoleCount   = errors.New("hole count must be 9 or 18")
	ErrInvalidBookingID   = errors.New("invalid booking id")
	ErrInvalidAmateurID   = errors.New("invalid amateur id")
	ErrInvalidProID       = errors.New("invalid pro id")
	ErrInvalidSlotID      = errors.New("invalid slot id")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidActor       = errors.New("invalid cancellation actor")

	// Payment errors
	ErrPaymentNotFound      = errors.New("payment intent not found")
	ErrPaymentNotRefundable = errors.New("only succeeded payments can be refunded")
	ErrIntentTerminal       = errors.New("payment intent is in a terminal state")

	// Admin validation errors
	ErrValidationNotFound = errors.New("admin validation not found")
	ErrValidationClosed   = errors.New("admin validation already decided")
	ErrNoAlternative      = errors.New("no alternative has been proposed")

	// Commission errors
	ErrNoCommissionSetting = errors.New("no commission setting in effect")

	// ErrInvariantViolation marks states the state machine must never reach,
	// e.g. a confirmed booking without a succeeded payment. Surfaced to
	// operators, never silently corrected.
	ErrInvariantViolation = errors.New("booking invariant violation")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrValidationNotFound)
}

// IsValidationError checks if the error is a request validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPlayerCount) ||
		errors.Is(err, ErrInvalidHoleCount) ||
		errors.Is(err, ErrInvalidBookingID) ||
		errors.Is(err, ErrInvalidAmateurID) ||
		errors.Is(err, ErrInvalidProID) ||
		errors.Is(err, ErrInvalidSlotID) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidActor)
}

// IsConflictError checks if the error is an expected business conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSlotFull) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrBookingNotCancellable) ||
		errors.Is(err, ErrValidationClosed) ||
		errors.Is(err, ErrIntentTerminal) ||
		errors.Is(err, ErrPaymentNotRefundable)
}
