package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/dto"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/policy"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/pricing"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/repository"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/logger"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// BookingService defines the interface for the booking lifecycle
type BookingService interface {
	// CreateBooking prices the lesson, reserves slot capacity and opens the
	// payment intent. Returns domain.ErrSlotFull when capacity ran out.
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)

	// GetBooking retrieves a booking by ID
	GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error)

	// GetAmateurBookings retrieves bookings for an amateur, newest first
	GetAmateurBookings(ctx context.Context, amateurID string, page, pageSize int) (*dto.PaginatedResponse, error)

	// CancelBooking cancels a booking, computes the refund owed and releases
	// the held slot capacity exactly once
	CancelBooking(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.CancelBookingResponse, error)

	// ExpireStalePending cancels pending bookings whose payment authorization
	// window lapsed. Returns the number of bookings expired.
	ExpireStalePending(ctx context.Context, limit int) (int, error)

	// CompletePastDue marks confirmed bookings as completed once the lesson
	// end time passed. Returns the number of bookings completed.
	CompletePastDue(ctx context.Context, limit int) (int, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo    repository.BookingRepository
	slotRepo       repository.SlotRepository
	commissionRepo repository.CommissionRepository
	paymentSvc     PaymentService
	eventPublisher EventPublisher
	refundPolicy   *policy.RefundPolicy
	floors         pricing.Floors
	holdTTL        time.Duration
	currency       string
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	RefundPolicy *policy.RefundPolicy
	Floors       *pricing.Floors
	HoldTTL      time.Duration
	Currency     string
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	commissionRepo repository.CommissionRepository,
	paymentSvc PaymentService,
	eventPublisher EventPublisher,
	cfg *BookingServiceConfig,
) BookingService {
	refundPolicy := policy.DefaultRefundPolicy()
	floors := pricing.DefaultFloors()
	holdTTL := 30 * time.Minute
	currency := "eur"
	if cfg != nil {
		if cfg.RefundPolicy != nil {
			refundPolicy = cfg.RefundPolicy
		}
		if cfg.Floors != nil {
			floors = *cfg.Floors
		}
		if cfg.HoldTTL > 0 {
			holdTTL = cfg.HoldTTL
		}
		if cfg.Currency != "" {
			currency = cfg.Currency
		}
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		commissionRepo: commissionRepo,
		paymentSvc:     paymentSvc,
		eventPublisher: eventPublisher,
		refundPolicy:   refundPolicy,
		floors:         floors,
		holdTTL:        holdTTL,
		currency:       currency,
	}
}

// CreateBooking prices the lesson, reserves slot capacity and opens the
// payment intent
func (s *bookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, domain.ErrInvalidBookingID
	}
	if req.AmateurID == "" {
		span.SetStatus(codes.Error, "invalid amateur_id")
		return nil, domain.ErrInvalidAmateurID
	}
	if req.ProID == "" {
		span.SetStatus(codes.Error, "invalid pro_id")
		return nil, domain.ErrInvalidProID
	}
	if req.SlotID == "" {
		span.SetStatus(codes.Error, "invalid slot_id")
		return nil, domain.ErrInvalidSlotID
	}

	span.SetAttributes(
		attribute.String("amateur_id", req.AmateurID),
		attribute.String("pro_id", req.ProID),
		attribute.String("slot_id", req.SlotID),
		attribute.Int("player_count", req.PlayerCount),
		attribute.Int("hole_count", req.HoleCount),
	)

	now := time.Now().UTC()

	// Commission is resolved once, on the booking creation date, and
	// snapshotted. Later commission changes never touch this booking.
	setting, err := s.commissionRepo.ResolveForDate(ctx, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	quote, err := pricing.ComputeQuote(
		domain.MoneyFromEuros(req.BasePricePerPlayer),
		req.PlayerCount,
		req.HoleCount,
		setting.Percentage,
		s.floors,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Capacity is taken synchronously before anything else is written. On
	// ErrSlotFull nothing exists to roll back.
	if err := s.slotRepo.Reserve(ctx, req.SlotID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking := &domain.Booking{
		ID:               uuid.New().String(),
		AmateurID:        req.AmateurID,
		ProID:            req.ProID,
		CourseID:         req.CourseID,
		SlotID:           req.SlotID,
		StartAt:          req.StartAt,
		HoleCount:        req.HoleCount,
		PlayerCount:      req.PlayerCount,
		CommissionPct:    setting.Percentage,
		ProFee:           quote.ProFee,
		PlatformFee:      quote.PlatformFee,
		TotalAmount:      quote.Total,
		Currency:         s.currency,
		BookingStatus:    domain.BookingStatusPending,
		PaymentStatus:    domain.PaymentStatusPending,
		ValidationStatus: domain.ValidationStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		// The hold must not outlive the failed booking row.
		if relErr := s.slotRepo.Release(ctx, req.SlotID); relErr != nil {
			logger.Get().Error(fmt.Sprintf("failed to release slot %s after create failure: %v", req.SlotID, relErr))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	record, err := s.paymentSvc.CreateIntent(ctx, booking.ID)
	if err != nil {
		logger.Get().Error(fmt.Sprintf("failed to create payment intent for booking %s: %v", booking.ID, err))
		booking.BookingStatus = domain.BookingStatusCancelled
		booking.StatusReason = "payment_intent_creation_failed"
		cancelledAt := time.Now().UTC()
		booking.CancelledAt = &cancelledAt
		if upErr := s.bookingRepo.Update(ctx, booking); upErr != nil {
			logger.Get().Error(fmt.Sprintf("failed to cancel booking %s after intent failure: %v", booking.ID, upErr))
		}
		if relErr := releaseSlotOnce(ctx, s.bookingRepo, s.slotRepo, booking); relErr != nil {
			logger.Get().Error(fmt.Sprintf("failed to release slot for booking %s: %v", booking.ID, relErr))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.publish(ctx, domain.BookingEventCreated, booking)

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.CreateBookingResponse{
		BookingID:    booking.ID,
		Status:       booking.BookingStatus.String(),
		ProFee:       booking.ProFee.Euros(),
		PlatformFee:  booking.PlatformFee.Euros(),
		TotalAmount:  booking.TotalAmount.Euros(),
		Currency:     booking.Currency,
		ClientSecret: record.ClientSecret,
	}, nil
}

// GetBooking retrieves a booking by ID
func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	if bookingID == "" {
		return nil, domain.ErrInvalidBookingID
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return dto.FromDomain(booking), nil
}

// GetAmateurBookings retrieves bookings for an amateur, newest first
func (s *bookingService) GetAmateurBookings(ctx context.Context, amateurID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_amateur_bookings")
	defer span.End()

	if amateurID == "" {
		return nil, domain.ErrInvalidAmateurID
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	span.SetAttributes(attribute.String("amateur_id", amateurID))

	bookings, err := s.bookingRepo.GetByAmateurID(ctx, amateurID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.FromDomain(b))
	}
	return &dto.PaginatedResponse{Items: items, Page: page, PageSize: pageSize}, nil
}

// CancelBooking cancels a booking, refunds per policy and releases the slot
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.CancelBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	if bookingID == "" {
		return nil, domain.ErrInvalidBookingID
	}
	if req == nil {
		return nil, domain.ErrInvalidActor
	}
	actor := domain.CancellationActor(req.Actor)
	if !actor.Valid() {
		span.SetStatus(codes.Error, "invalid actor")
		return nil, domain.ErrInvalidActor
	}

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("actor", req.Actor),
		attribute.Bool("force_majeure", req.ForceMajeure),
	)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	if booking.BookingStatus == domain.BookingStatusCompleted {
		return nil, domain.ErrBookingNotCancellable
	}

	now := time.Now().UTC()
	outcome, err := s.refundPolicy.ComputeRefund(booking, actor, req.ForceMajeure, now)
	if err != nil {
		return nil, err
	}

	// Refund only what was actually captured. A cancellation inside the 0%
	// window leaves the payment succeeded and unrefunded.
	refunded := domain.Money(0)
	if booking.PaymentStatus == domain.PaymentStatusSucceeded && outcome.Amount > 0 {
		if err := s.refundPayment(ctx, booking, outcome.Amount); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		refunded = outcome.Amount
		booking.PaymentStatus = domain.PaymentStatusRefunded
	}

	record := domain.NewCancellationRecord(
		booking.ID, actor, now,
		outcome.HoursBeforeStart, outcome.Percentage, refunded,
		req.ForceMajeure, req.Reason,
	)
	if err := s.bookingRepo.CreateCancellation(ctx, record); err != nil {
		return nil, err
	}

	booking.BookingStatus = domain.BookingStatusCancelled
	booking.StatusReason = cancellationReason(actor, req.Reason)
	booking.CancelledAt = &now
	booking.UpdatedAt = now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if err := releaseSlotOnce(ctx, s.bookingRepo, s.slotRepo, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.publish(ctx, domain.BookingEventCancelled, booking)

	span.SetStatus(codes.Ok, "")
	return &dto.CancelBookingResponse{
		BookingID:        booking.ID,
		Status:           booking.BookingStatus.String(),
		RefundAmount:     refunded.Euros(),
		RefundPercentage: outcome.Percentage,
		HoursBeforeStart: outcome.HoursBeforeStart,
	}, nil
}

// ExpireStalePending cancels pending bookings past the authorization window
func (s *bookingService) ExpireStalePending(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.expire_stale_pending")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	deadline := now.Add(-s.holdTTL)

	stale, err := s.bookingRepo.GetStalePending(ctx, deadline, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	expired := 0
	for _, booking := range stale {
		booking.BookingStatus = domain.BookingStatusCancelled
		booking.StatusReason = "authorization_expired"
		cancelledAt := time.Now().UTC()
		booking.CancelledAt = &cancelledAt
		booking.UpdatedAt = cancelledAt
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			logger.Get().Error(fmt.Sprintf("failed to expire booking %s: %v", booking.ID, err))
			continue
		}
		if err := releaseSlotOnce(ctx, s.bookingRepo, s.slotRepo, booking); err != nil {
			logger.Get().Error(fmt.Sprintf("failed to release slot for expired booking %s: %v", booking.ID, err))
			continue
		}
		s.publish(ctx, domain.BookingEventExpired, booking)
		expired++
	}

	span.SetAttributes(attribute.Int("expired", expired))
	span.SetStatus(codes.Ok, "")
	return expired, nil
}

// CompletePastDue marks confirmed bookings as completed after the lesson end
func (s *bookingService) CompletePastDue(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.complete_past_due")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()

	candidates, err := s.bookingRepo.GetPastDueConfirmed(ctx, now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	completed := 0
	for _, booking := range candidates {
		// start_at passed; completion waits for the lesson to actually end.
		if booking.EndAt().After(now) {
			continue
		}
		booking.BookingStatus = domain.BookingStatusCompleted
		booking.UpdatedAt = time.Now().UTC()
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			logger.Get().Error(fmt.Sprintf("failed to complete booking %s: %v", booking.ID, err))
			continue
		}
		s.publish(ctx, domain.BookingEventCompleted, booking)
		completed++
	}

	span.SetAttributes(attribute.Int("completed", completed))
	span.SetStatus(codes.Ok, "")
	return completed, nil
}

func (s *bookingService) refundPayment(ctx context.Context, booking *domain.Booking, amount domain.Money) error {
	return s.paymentSvc.Refund(ctx, booking.ID, amount)
}

func (s *bookingService) publish(ctx context.Context, eventType domain.BookingEventType, booking *domain.Booking) {
	if err := s.eventPublisher.Publish(ctx, eventType, booking); err != nil {
		logger.Get().Error(fmt.Sprintf("failed to publish %s event for booking %s: %v", eventType, booking.ID, err))
	}
}

func cancellationReason(actor domain.CancellationActor, reason string) string {
	if reason != "" {
		return reason
	}
	switch actor {
	case domain.CancelledByPro:
		return "cancelled_by_pro"
	case domain.CancelledByAdmin:
		return "cancelled_by_admin"
	default:
		return "cancelled_by_amateur"
	}
}
