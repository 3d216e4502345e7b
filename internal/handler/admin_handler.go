package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/dto"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/service"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/response"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// AdminHandler handles the admin validation workflow endpoints
type AdminHandler struct {
	validationService service.ValidationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(validationService service.ValidationService) *AdminHandler {
	return &AdminHandler{validationService: validationService}
}

// RequestValidation handles POST /bookings/:id/validation
func (h *AdminHandler) RequestValidation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.request_validation")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		response.BadRequest(c, "booking id required")
		return
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.validationService.RequestValidation(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Decide handles POST /admin/validations/:id/decide
func (h *AdminHandler) Decide(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.decide")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	validationID := c.Param("id")
	if validationID == "" {
		span.SetStatus(codes.Error, "validation id required")
		response.BadRequest(c, "validation id required")
		return
	}

	var req dto.AdminDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("validation_id", validationID),
		attribute.String("decision", req.Decision),
	)

	result, err := h.validationService.Decide(ctx, validationID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// AcceptAlternative handles POST /validations/:id/alternative/accept
func (h *AdminHandler) AcceptAlternative(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.accept_alternative")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	validationID := c.Param("id")
	if validationID == "" {
		span.SetStatus(codes.Error, "validation id required")
		response.BadRequest(c, "validation id required")
		return
	}
	span.SetAttributes(attribute.String("validation_id", validationID))

	result, err := h.validationService.AcceptAlternative(ctx, validationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// DeclineAlternative handles POST /validations/:id/alternative/decline
func (h *AdminHandler) DeclineAlternative(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.decline_alternative")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	validationID := c.Param("id")
	if validationID == "" {
		span.SetStatus(codes.Error, "validation id required")
		response.BadRequest(c, "validation id required")
		return
	}
	span.SetAttributes(attribute.String("validation_id", validationID))

	result, err := h.validationService.DeclineAlternative(ctx, validationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListPending handles GET /admin/validations/pending
func (h *AdminHandler) ListPending(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_pending")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.validationService.ListPending(ctx, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
