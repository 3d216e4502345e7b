package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/dto"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/repository"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/logger"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// ValidationService runs the admin review workflow for paid bookings
type ValidationService interface {
	// RequestValidation lazily creates the validation for a booking. Calling
	// it again returns the existing record unchanged.
	RequestValidation(ctx context.Context, bookingID string) (*dto.RequestValidationResponse, error)

	// Decide applies an admin decision: claim the review, confirm, reject or
	// propose an alternative slot
	Decide(ctx context.Context, validationID string, req *dto.AdminDecideRequest) (*dto.ValidationResponse, error)

	// AcceptAlternative is the amateur accepting the proposed alternative;
	// the booking moves to the proposed start time and confirms
	AcceptAlternative(ctx context.Context, validationID string) (*dto.ValidationResponse, error)

	// DeclineAlternative is the amateur declining the proposed alternative;
	// the booking cancels with a full refund
	DeclineAlternative(ctx context.Context, validationID string) (*dto.ValidationResponse, error)

	// ListPending returns validations awaiting an admin decision
	ListPending(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse, error)
}

// validationService implements ValidationService
type validationService struct {
	validationRepo repository.ValidationRepository
	bookingRepo    repository.BookingRepository
	bookingSvc     BookingService
	eventPublisher EventPublisher
}

// NewValidationService creates a new validation service
func NewValidationService(
	validationRepo repository.ValidationRepository,
	bookingRepo repository.BookingRepository,
	bookingSvc BookingService,
	eventPublisher EventPublisher,
) ValidationService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &validationService{
		validationRepo: validationRepo,
		bookingRepo:    bookingRepo,
		bookingSvc:     bookingSvc,
		eventPublisher: eventPublisher,
	}
}

// RequestValidation lazily creates the validation for a booking
func (s *validationService) RequestValidation(ctx context.Context, bookingID string) (*dto.RequestValidationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.request")
	defer span.End()

	if bookingID == "" {
		return nil, domain.ErrInvalidBookingID
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	// The booking must exist; a paid one normally got its validation from the
	// webhook already, in which case CreateIfAbsent hands that record back.
	if _, err := s.bookingRepo.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}

	validation, err := domain.NewAdminValidation(bookingID)
	if err != nil {
		return nil, err
	}
	stored, err := s.validationRepo.CreateIfAbsent(ctx, validation)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("validation_id", stored.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.RequestValidationResponse{
		ValidationID: stored.ID,
		BookingID:    stored.BookingID,
		Status:       stored.Status.String(),
	}, nil
}

// Decide applies an admin decision to a pending validation
func (s *validationService) Decide(ctx context.Context, validationID string, req *dto.AdminDecideRequest) (*dto.ValidationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.decide")
	defer span.End()

	if validationID == "" {
		return nil, domain.ErrValidationNotFound
	}
	if req == nil {
		return nil, domain.ErrValidationClosed
	}

	span.SetAttributes(
		attribute.String("validation_id", validationID),
		attribute.String("decision", req.Decision),
		attribute.String("admin_id", req.AdminID),
	)

	validation, err := s.validationRepo.GetByID(ctx, validationID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookingRepo.GetByID(ctx, validation.BookingID)
	if err != nil {
		return nil, err
	}

	switch req.Decision {
	case dto.DecisionStartCheck:
		// Claiming the review: informational, the booking keeps waiting.
		if err := validation.StartCheck(req.AdminID); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := s.validationRepo.Update(ctx, validation); err != nil {
			return nil, err
		}
		booking.ValidationStatus = domain.ValidationStatusChecking
		booking.UpdatedAt = time.Now().UTC()
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}

	case dto.DecisionConfirm:
		if err := validation.Confirm(req.AdminID, req.Notes); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := s.validationRepo.Update(ctx, validation); err != nil {
			return nil, err
		}
		if err := s.applyConfirm(ctx, booking, validation); err != nil {
			return nil, err
		}

	case dto.DecisionReject:
		if err := validation.Reject(req.AdminID, req.Notes); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := s.validationRepo.Update(ctx, validation); err != nil {
			return nil, err
		}
		booking.ValidationStatus = domain.ValidationStatusRejected
		booking.UpdatedAt = time.Now().UTC()
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
		// Rejection is an admin cancellation: full refund, slot released.
		if _, err := s.bookingSvc.CancelBooking(ctx, booking.ID, &dto.CancelBookingRequest{
			Actor:  string(domain.CancelledByAdmin),
			Reason: "admin_rejected",
		}); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

	case dto.DecisionProposeAlternative:
		if req.AlternativeStartAt == nil {
			span.SetStatus(codes.Error, "missing alternative start")
			return nil, domain.ErrNoAlternative
		}
		if err := validation.ProposeAlternative(req.AdminID, *req.AlternativeStartAt, req.Notes); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := s.validationRepo.Update(ctx, validation); err != nil {
			return nil, err
		}
		booking.ValidationStatus = domain.ValidationStatusAlternativeProposed
		booking.UpdatedAt = time.Now().UTC()
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
		s.publish(ctx, domain.BookingEventAlternativeProposed, booking)

	default:
		span.SetStatus(codes.Error, "unknown decision")
		return nil, domain.ErrValidationClosed
	}

	span.SetStatus(codes.Ok, "")
	return dto.ValidationFromDomain(validation), nil
}

// AcceptAlternative moves the booking to the proposed start time and confirms
func (s *validationService) AcceptAlternative(ctx context.Context, validationID string) (*dto.ValidationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.accept_alternative")
	defer span.End()

	if validationID == "" {
		return nil, domain.ErrValidationNotFound
	}
	span.SetAttributes(attribute.String("validation_id", validationID))

	validation, err := s.validationRepo.GetByID(ctx, validationID)
	if err != nil {
		return nil, err
	}
	newStart := validation.AlternativeStartAt
	if err := validation.AcceptAlternative(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.validationRepo.Update(ctx, validation); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, validation.BookingID)
	if err != nil {
		return nil, err
	}
	if newStart != nil {
		booking.StartAt = *newStart
	}
	if err := s.applyConfirm(ctx, booking, validation); err != nil {
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.ValidationFromDomain(validation), nil
}

// DeclineAlternative cancels the booking with a full refund
func (s *validationService) DeclineAlternative(ctx context.Context, validationID string) (*dto.ValidationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.decline_alternative")
	defer span.End()

	if validationID == "" {
		return nil, domain.ErrValidationNotFound
	}
	span.SetAttributes(attribute.String("validation_id", validationID))

	validation, err := s.validationRepo.GetByID(ctx, validationID)
	if err != nil {
		return nil, err
	}
	if validation.Status != domain.ValidationStatusAlternativeProposed {
		span.SetStatus(codes.Error, "no alternative proposed")
		return nil, domain.ErrNoAlternative
	}
	if err := validation.Reject(validation.AdminID, "alternative declined by amateur"); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.validationRepo.Update(ctx, validation); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, validation.BookingID)
	if err != nil {
		return nil, err
	}
	booking.ValidationStatus = domain.ValidationStatusRejected
	booking.UpdatedAt = time.Now().UTC()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	// The pro could not honor the requested slot, so the amateur gets a full
	// refund regardless of the tier table.
	if _, err := s.bookingSvc.CancelBooking(ctx, booking.ID, &dto.CancelBookingRequest{
		Actor:  string(domain.CancelledByPro),
		Reason: "alternative_declined",
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.ValidationFromDomain(validation), nil
}

// ListPending returns validations awaiting an admin decision
func (s *validationService) ListPending(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.list_pending")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	validations, err := s.validationRepo.ListPending(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	items := make([]*dto.ValidationResponse, 0, len(validations))
	for _, v := range validations {
		items = append(items, dto.ValidationFromDomain(v))
	}
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{Items: items, Page: page, PageSize: pageSize}, nil
}

// applyConfirm runs the reducer after an admin confirmation and persists the
// outcome. Confirmed is only reachable with a succeeded payment.
func (s *validationService) applyConfirm(ctx context.Context, booking *domain.Booking, validation *domain.AdminValidation) error {
	booking.ValidationStatus = domain.ValidationStatusConfirmed
	booking.BookingStatus = domain.ResolveBookingStatus(booking.BookingStatus, booking.PaymentStatus, booking.ValidationStatus)
	now := time.Now().UTC()
	booking.ValidatedAt = &now
	booking.UpdatedAt = now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return err
	}
	if booking.BookingStatus == domain.BookingStatusConfirmed {
		s.publish(ctx, domain.BookingEventConfirmed, booking)
	}
	return nil
}

func (s *validationService) publish(ctx context.Context, eventType domain.BookingEventType, booking *domain.Booking) {
	if err := s.eventPublisher.Publish(ctx, eventType, booking); err != nil {
		logger.Get().Error(fmt.Sprintf("failed to publish %s event for booking %s: %v", eventType, booking.ID, err))
	}
}
