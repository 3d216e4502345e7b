package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/gateway"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/repository"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/logger"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// PaymentService owns the provider mirror: intent creation and webhook
// reconciliation.
type PaymentService interface {
	// CreateIntent creates (or returns) the payment intent for a booking.
	// At most one intent ever exists per booking; retries converge on it.
	CreateIntent(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error)

	// Reconcile applies a provider webhook event. Idempotent per event id;
	// duplicates and events for unknown intents are dropped without error.
	Reconcile(ctx context.Context, event *domain.WebhookEvent) error

	// Refund refunds part or all of a succeeded payment. Returns
	// domain.ErrPaymentNotRefundable unless the payment succeeded.
	Refund(ctx context.Context, bookingID string, amount domain.Money) error

	// GetByBookingID returns the payment record for a booking
	GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error)
}

// paymentService implements PaymentService
type paymentService struct {
	paymentRepo    repository.PaymentRepository
	bookingRepo    repository.BookingRepository
	slotRepo       repository.SlotRepository
	validationRepo repository.ValidationRepository
	gateway        gateway.PaymentGateway
	eventPublisher EventPublisher
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	validationRepo repository.ValidationRepository,
	paymentGateway gateway.PaymentGateway,
	eventPublisher EventPublisher,
) PaymentService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &paymentService{
		paymentRepo:    paymentRepo,
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		validationRepo: validationRepo,
		gateway:        paymentGateway,
		eventPublisher: eventPublisher,
	}
}

// CreateIntent creates the payment intent for a booking. The local record is
// written before the provider call, so a crash between the two leaves a
// record without provider ids that the next call completes.
func (s *paymentService) CreateIntent(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.create_intent")
	defer span.End()

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	record, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}
	if record == nil {
		record, err = domain.NewPaymentIntentRecord(booking.ID, booking.TotalAmount, booking.Currency)
		if err != nil {
			return nil, err
		}
		if err := s.paymentRepo.Create(ctx, record); err != nil {
			// A concurrent call may have won the unique booking_id insert.
			existing, getErr := s.paymentRepo.GetByBookingID(ctx, bookingID)
			if getErr != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			record = existing
		}
	}

	// Already attached to a provider intent: nothing left to do.
	if record.IntentID != "" {
		span.SetAttributes(attribute.String("intent_id", record.IntentID))
		span.SetStatus(codes.Ok, "")
		return record, nil
	}

	resp, err := s.gateway.CreateIntent(ctx, &gateway.CreateIntentRequest{
		BookingID:   booking.ID,
		PaymentID:   record.ID,
		Amount:      record.Amount,
		Currency:    record.Currency,
		Description: fmt.Sprintf("Golf lesson booking %s", booking.ID),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create provider intent: %w", err)
	}

	record.AttachIntent(resp.IntentID, resp.ClientSecret)
	if err := s.paymentRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	booking.PaymentIntentID = resp.IntentID
	booking.UpdatedAt = time.Now().UTC()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("intent_id", record.IntentID))
	span.SetStatus(codes.Ok, "")
	return record, nil
}

// Reconcile applies a provider webhook event to the local state
func (s *paymentService) Reconcile(ctx context.Context, event *domain.WebhookEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.reconcile")
	defer span.End()

	if event == nil {
		return fmt.Errorf("webhook event is required")
	}
	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.String("event_id", event.EventID),
		attribute.String("event_type", string(event.Type)),
		attribute.String("intent_id", event.IntentID),
	)

	processed, err := s.paymentRepo.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		logger.Get().Info(fmt.Sprintf("webhook event %s already processed, dropping", event.EventID))
		span.SetAttributes(attribute.Bool("duplicate", true))
		span.SetStatus(codes.Ok, "")
		return nil
	}

	record, err := s.paymentRepo.GetByIntentID(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			// Consistency violation, not a processing failure. Surface it to
			// operators and drop the event.
			logger.Get().Warn(fmt.Sprintf("webhook event %s references unknown intent %s, dropping", event.EventID, event.IntentID))
			span.SetAttributes(attribute.Bool("unknown_intent", true))
			span.SetStatus(codes.Ok, "")
			return nil
		}
		return err
	}

	switch event.Type {
	case domain.WebhookPaymentSucceeded:
		err = s.applySucceeded(ctx, record, event)
	case domain.WebhookPaymentFailed:
		err = s.applyFailed(ctx, record, event)
	default:
		logger.Get().Info(fmt.Sprintf("ignoring webhook event type %s", event.Type))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// The event id is recorded only once the state change landed. A failure
	// above leaves the id unclaimed, so the provider's redelivery gets to
	// apply the event again; the record and booking writes are idempotent.
	if _, err := s.paymentRepo.MarkEventProcessed(ctx, event.EventID); err != nil {
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *paymentService) applySucceeded(ctx context.Context, record *domain.PaymentIntentRecord, event *domain.WebhookEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.apply_succeeded")
	defer span.End()

	firstSuccess := record.Status == domain.PaymentStatusPending
	if err := record.MarkSucceeded(event.OccurredAt); err != nil {
		// Stored terminal state wins over a late or out-of-order event.
		logger.Get().Warn(fmt.Sprintf("dropping succeeded event for intent %s: %v", record.IntentID, err))
		span.SetStatus(codes.Ok, "")
		return nil
	}
	if err := s.paymentRepo.Update(ctx, record); err != nil {
		return err
	}

	booking, err := s.bookingRepo.GetByID(ctx, record.BookingID)
	if err != nil {
		return err
	}

	if booking.BookingStatus.IsTerminal() {
		// The charge landed after the booking already died: the expiry sweep
		// or a cancellation raced the webhook. The captured funds go straight
		// back and no admin review is opened for a dead booking.
		if firstSuccess && booking.BookingStatus == domain.BookingStatusCancelled {
			return s.refundDeadBooking(ctx, record, booking)
		}
		logger.Get().Warn(fmt.Sprintf("succeeded event for intent %s hit terminal booking %s (%s), nothing to apply", record.IntentID, booking.ID, booking.BookingStatus))
		span.SetStatus(codes.Ok, "")
		return nil
	}

	booking.PaymentStatus = domain.PaymentStatusSucceeded

	// Payment success opens the admin review; creation is lazy and idempotent
	// so a duplicate delivery cannot spawn a second record.
	validation, err := domain.NewAdminValidation(booking.ID)
	if err != nil {
		return err
	}
	if _, err := s.validationRepo.CreateIfAbsent(ctx, validation); err != nil {
		return err
	}
	if booking.ValidationStatus == "" {
		booking.ValidationStatus = domain.ValidationStatusPending
	}

	booking.BookingStatus = domain.ResolveBookingStatus(booking.BookingStatus, booking.PaymentStatus, booking.ValidationStatus)
	booking.UpdatedAt = time.Now().UTC()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return err
	}

	s.publish(ctx, domain.BookingEventPaymentSucceeded, booking)
	s.publish(ctx, domain.BookingEventValidationRequested, booking)

	span.SetStatus(codes.Ok, "")
	return nil
}

// refundDeadBooking returns captured funds when the success webhook arrived
// after the booking was cancelled. The booking status itself stays cancelled.
func (s *paymentService) refundDeadBooking(ctx context.Context, record *domain.PaymentIntentRecord, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.refund_dead_booking")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.Int64("amount_cents", record.Amount.Cents()),
	)
	logger.Get().Warn(fmt.Sprintf("payment for intent %s succeeded after booking %s was cancelled, refunding %s", record.IntentID, booking.ID, record.Amount))

	if err := s.gateway.Refund(ctx, record.IntentID, record.Amount); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to refund intent %s: %w", record.IntentID, err)
	}
	if err := record.MarkRefunded(); err != nil {
		return err
	}
	if err := s.paymentRepo.Update(ctx, record); err != nil {
		return err
	}

	booking.PaymentStatus = domain.PaymentStatusRefunded
	booking.UpdatedAt = time.Now().UTC()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return err
	}

	s.publish(ctx, domain.BookingEventPaymentRefunded, booking)

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *paymentService) applyFailed(ctx context.Context, record *domain.PaymentIntentRecord, event *domain.WebhookEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.apply_failed")
	defer span.End()

	if err := record.MarkFailed(event.OccurredAt, event.ErrorCode, event.ErrorMessage); err != nil {
		logger.Get().Warn(fmt.Sprintf("dropping failed event for intent %s: %v", record.IntentID, err))
		span.SetStatus(codes.Ok, "")
		return nil
	}
	if err := s.paymentRepo.Update(ctx, record); err != nil {
		return err
	}

	booking, err := s.bookingRepo.GetByID(ctx, record.BookingID)
	if err != nil {
		return err
	}
	booking.PaymentStatus = domain.PaymentStatusFailed
	booking.BookingStatus = domain.ResolveBookingStatus(booking.BookingStatus, booking.PaymentStatus, booking.ValidationStatus)
	booking.StatusReason = "payment_failed"
	booking.UpdatedAt = time.Now().UTC()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return err
	}

	// The amateur keeps the pending booking and can retry payment, but the
	// held capacity goes back to the pool.
	if err := releaseSlotOnce(ctx, s.bookingRepo, s.slotRepo, booking); err != nil {
		return err
	}

	s.publish(ctx, domain.BookingEventPaymentFailed, booking)

	span.SetStatus(codes.Ok, "")
	return nil
}

// Refund refunds part or all of a succeeded payment through the provider
func (s *paymentService) Refund(ctx context.Context, bookingID string, amount domain.Money) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.refund")
	defer span.End()

	if bookingID == "" {
		return domain.ErrInvalidBookingID
	}
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.Int64("amount_cents", amount.Cents()),
	)

	record, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if record.Status != domain.PaymentStatusSucceeded {
		span.SetStatus(codes.Error, "payment not refundable")
		return domain.ErrPaymentNotRefundable
	}

	if err := s.gateway.Refund(ctx, record.IntentID, amount); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to refund intent %s: %w", record.IntentID, err)
	}

	if err := record.MarkRefunded(); err != nil {
		return err
	}
	if err := s.paymentRepo.Update(ctx, record); err != nil {
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByBookingID returns the payment record for a booking
func (s *paymentService) GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.get_by_booking")
	defer span.End()

	if bookingID == "" {
		return nil, domain.ErrInvalidBookingID
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))
	return s.paymentRepo.GetByBookingID(ctx, bookingID)
}

func (s *paymentService) publish(ctx context.Context, eventType domain.BookingEventType, booking *domain.Booking) {
	if err := s.eventPublisher.Publish(ctx, eventType, booking); err != nil {
		logger.Get().Error(fmt.Sprintf("failed to publish %s event for booking %s: %v", eventType, booking.ID, err))
	}
}

// releaseSlotOnce returns the booking's capacity unit through the per-booking
// latch. The latch flip and the decrement pair up exactly once no matter how
// many paths race to release.
func releaseSlotOnce(ctx context.Context, bookingRepo repository.BookingRepository, slotRepo repository.SlotRepository, booking *domain.Booking) error {
	won, err := bookingRepo.MarkSlotReleased(ctx, booking.ID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	booking.SlotReleased = true
	if err := slotRepo.Release(ctx, booking.SlotID); err != nil {
		return fmt.Errorf("failed to release slot %s: %w", booking.SlotID, err)
	}
	return nil
}
