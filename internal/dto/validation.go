package dto

import (
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// Admin decision values accepted by the validation endpoint
const (
	DecisionStartCheck         = "start_check"
	DecisionConfirm            = "confirm"
	DecisionReject             = "reject"
	DecisionProposeAlternative = "propose_alternative"
)

// RequestValidationResponse returns the (possibly pre-existing) validation
type RequestValidationResponse struct {
	ValidationID string `json:"validation_id"`
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
}

// AdminDecideRequest represents an admin decision on a pending validation
type AdminDecideRequest struct {
	AdminID  string `json:"admin_id" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=start_check confirm reject propose_alternative"`
	Notes    string `json:"notes,omitempty"`

	// Required when decision is propose_alternative
	AlternativeStartAt *time.Time `json:"alternative_start_at,omitempty"`
}

// ValidationResponse represents a validation record in API responses
type ValidationResponse struct {
	ID                 string     `json:"id"`
	BookingID          string     `json:"booking_id"`
	Status             string     `json:"status"`
	AdminID            string     `json:"admin_id,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	AlternativeStartAt *time.Time `json:"alternative_start_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ValidatedAt        *time.Time `json:"validated_at,omitempty"`
}

// ValidationFromDomain converts a domain AdminValidation to a response
func ValidationFromDomain(v *domain.AdminValidation) *ValidationResponse {
	return &ValidationResponse{
		ID:                 v.ID,
		BookingID:          v.BookingID,
		Status:             v.Status.String(),
		AdminID:            v.AdminID,
		Notes:              v.Notes,
		AlternativeStartAt: v.AlternativeStartAt,
		CreatedAt:          v.CreatedAt,
		ValidatedAt:        v.ValidatedAt,
	}
}
