package dto

import (
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// CreateBookingRequest represents a request to book a lesson slot
type CreateBookingRequest struct {
	AmateurID string `json:"amateur_id" binding:"required"`
	ProID     string `json:"pro_id" binding:"required"`
	CourseID  string `json:"course_id" binding:"required"`
	SlotID    string `json:"slot_id" binding:"required"`

	StartAt     time.Time `json:"start_at" binding:"required"`
	HoleCount   int       `json:"hole_count" binding:"required"`
	PlayerCount int       `json:"player_count" binding:"required"`

	// Price per player in euros, as listed on the pro's profile
	BasePricePerPlayer float64 `json:"base_price_per_player" binding:"required,gt=0"`
}

// CreateBookingResponse represents the response after creating a booking
type CreateBookingResponse struct {
	BookingID    string  `json:"booking_id"`
	Status       string  `json:"status"`
	ProFee       float64 `json:"pro_fee"`
	PlatformFee  float64 `json:"platform_fee"`
	TotalAmount  float64 `json:"total_amount"`
	Currency     string  `json:"currency"`
	ClientSecret string  `json:"client_secret,omitempty"`
}

// CancelBookingRequest represents a cancellation request
type CancelBookingRequest struct {
	Actor        string `json:"actor" binding:"required"`
	Reason       string `json:"reason,omitempty"`
	ForceMajeure bool   `json:"force_majeure,omitempty"`
}

// CancelBookingResponse reports the refund outcome of a cancellation
type CancelBookingResponse struct {
	BookingID        string  `json:"booking_id"`
	Status           string  `json:"status"`
	RefundAmount     float64 `json:"refund_amount"`
	RefundPercentage float64 `json:"refund_percentage"`
	HoursBeforeStart int     `json:"hours_before_start"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID        string `json:"id"`
	AmateurID string `json:"amateur_id"`
	ProID     string `json:"pro_id"`
	CourseID  string `json:"course_id"`
	SlotID    string `json:"slot_id"`

	StartAt     time.Time `json:"start_at"`
	HoleCount   int       `json:"hole_count"`
	PlayerCount int       `json:"player_count"`

	ProFee      float64 `json:"pro_fee"`
	PlatformFee float64 `json:"platform_fee"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`

	BookingStatus    string `json:"booking_status"`
	PaymentStatus    string `json:"payment_status"`
	ValidationStatus string `json:"validation_status"`
	StatusReason     string `json:"status_reason,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// FromDomain converts a domain Booking to a BookingResponse. Amounts are
// converted to euros here, at the API boundary only.
func FromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:               b.ID,
		AmateurID:        b.AmateurID,
		ProID:            b.ProID,
		CourseID:         b.CourseID,
		SlotID:           b.SlotID,
		StartAt:          b.StartAt,
		HoleCount:        b.HoleCount,
		PlayerCount:      b.PlayerCount,
		ProFee:           b.ProFee.Euros(),
		PlatformFee:      b.PlatformFee.Euros(),
		TotalAmount:      b.TotalAmount.Euros(),
		Currency:         b.Currency,
		BookingStatus:    b.BookingStatus.String(),
		PaymentStatus:    b.PaymentStatus.String(),
		ValidationStatus: b.ValidationStatus.String(),
		StatusReason:     b.StatusReason,
		CreatedAt:        b.CreatedAt,
		ValidatedAt:      b.ValidatedAt,
		CancelledAt:      b.CancelledAt,
	}
}

// PaginatedResponse wraps list responses
type PaginatedResponse struct {
	Items    interface{} `json:"items"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
