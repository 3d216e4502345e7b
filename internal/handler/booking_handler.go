package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/dto"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/service"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/response"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("amateur_id", req.AmateurID),
		attribute.String("slot_id", req.SlotID),
		attribute.Int("player_count", req.PlayerCount),
	)

	result, err := h.bookingService.CreateBooking(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.BookingID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		response.BadRequest(c, "booking id required")
		return
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetAmateurBookings handles GET /amateurs/:id/bookings
func (h *BookingHandler) GetAmateurBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get_amateur_bookings")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	amateurID := c.Param("id")
	if amateurID == "" {
		span.SetStatus(codes.Error, "amateur id required")
		response.BadRequest(c, "amateur id required")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	span.SetAttributes(attribute.String("amateur_id", amateurID))

	result, err := h.bookingService.GetAmateurBookings(ctx, amateurID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		response.BadRequest(c, "booking id required")
		return
	}

	var req dto.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("actor", req.Actor),
	)

	result, err := h.bookingService.CancelBooking(ctx, bookingID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// handleError maps domain errors to HTTP statuses. Expected business
// conflicts come back as 409, never as 5xx.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSlotFull):
		response.Conflict(c, "SLOT_FULL", err.Error())
	case errors.Is(err, domain.ErrSlotUnavailable):
		response.Conflict(c, "SLOT_UNAVAILABLE", err.Error())
	case errors.Is(err, domain.ErrAlreadyCancelled):
		response.Conflict(c, "ALREADY_CANCELLED", err.Error())
	case errors.Is(err, domain.ErrBookingNotCancellable):
		response.Conflict(c, "NOT_CANCELLABLE", err.Error())
	case errors.Is(err, domain.ErrValidationClosed):
		response.Conflict(c, "VALIDATION_CLOSED", err.Error())
	case errors.Is(err, domain.ErrNoAlternative):
		response.Conflict(c, "NO_ALTERNATIVE", err.Error())
	case errors.Is(err, domain.ErrPaymentNotRefundable):
		response.Conflict(c, "NOT_REFUNDABLE", err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNoCommissionSetting):
		response.Error(c, http.StatusUnprocessableEntity, "NO_COMMISSION_SETTING", err.Error(), "")
	default:
		response.InternalError(c, err)
	}
}
