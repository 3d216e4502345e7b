package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/dto"
)

func pendingValidation() *domain.AdminValidation {
	return &domain.AdminValidation{
		ID:        "val-1",
		BookingID: "booking-1",
		Status:    domain.ValidationStatusPending,
	}
}

func paidBooking() *domain.Booking {
	b := succeededBooking(time.Now().UTC().Add(96 * time.Hour))
	return b
}

func TestValidationService_RequestValidation(t *testing.T) {
	t.Run("returns the stored record", func(t *testing.T) {
		bookingRepo := &MockBookingRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
				return paidBooking(), nil
			},
		}
		existing := pendingValidation()
		validationRepo := &MockValidationRepository{
			CreateIfAbsentFunc: func(ctx context.Context, validation *domain.AdminValidation) (*domain.AdminValidation, error) {
				// Simulate the webhook having created it already.
				return existing, nil
			},
		}

		svc := NewValidationService(validationRepo, bookingRepo, &MockBookingService{}, nil)
		resp, err := svc.RequestValidation(context.Background(), "booking-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.ValidationID != "val-1" {
			t.Errorf("expected the existing validation id, got %s", resp.ValidationID)
		}
		if resp.Status != "pending" {
			t.Errorf("expected status pending, got %s", resp.Status)
		}
	})

	t.Run("booking not found", func(t *testing.T) {
		svc := NewValidationService(&MockValidationRepository{}, &MockBookingRepository{}, &MockBookingService{}, nil)
		_, err := svc.RequestValidation(context.Background(), "missing")
		if !errors.Is(err, domain.ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
	})
}

func TestValidationService_Decide_StartCheck(t *testing.T) {
	booking := paidBooking()
	validation := pendingValidation()

	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return validation, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return booking, nil
		},
	}
	publisher := &CapturingEventPublisher{}

	svc := NewValidationService(validationRepo, bookingRepo, &MockBookingService{}, publisher)
	resp, err := svc.Decide(context.Background(), "val-1", &dto.AdminDecideRequest{
		AdminID:  "admin-1",
		Decision: dto.DecisionStartCheck,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "checking" {
		t.Errorf("expected validation checking, got %s", resp.Status)
	}
	if resp.AdminID != "admin-1" {
		t.Errorf("expected the claiming admin recorded, got %q", resp.AdminID)
	}
	if booking.ValidationStatus != domain.ValidationStatusChecking {
		t.Errorf("expected booking validation checking, got %s", booking.ValidationStatus)
	}
	// Claiming the review decides nothing yet.
	if booking.BookingStatus != domain.BookingStatusPending {
		t.Errorf("expected booking still pending, got %s", booking.BookingStatus)
	}
	if len(publisher.Events) != 0 {
		t.Errorf("expected no events for a claim, got %v", publisher.Events)
	}
}

func TestValidationService_Decide_Confirm(t *testing.T) {
	tests := []struct {
		name        string
		payment     domain.PaymentStatus
		wantBooking domain.BookingStatus
		wantEvent   bool
	}{
		{
			name:        "paid booking confirms",
			payment:     domain.PaymentStatusSucceeded,
			wantBooking: domain.BookingStatusConfirmed,
			wantEvent:   true,
		},
		{
			name:        "unpaid booking stays pending",
			payment:     domain.PaymentStatusPending,
			wantBooking: domain.BookingStatusPending,
			wantEvent:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := paidBooking()
			booking.PaymentStatus = tt.payment
			validation := pendingValidation()

			validationRepo := &MockValidationRepository{
				GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
					return validation, nil
				},
			}
			bookingRepo := &MockBookingRepository{
				GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
					return booking, nil
				},
			}
			publisher := &CapturingEventPublisher{}

			svc := NewValidationService(validationRepo, bookingRepo, &MockBookingService{}, publisher)
			resp, err := svc.Decide(context.Background(), "val-1", &dto.AdminDecideRequest{
				AdminID:  "admin-1",
				Decision: dto.DecisionConfirm,
				Notes:    "checked with the course",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Status != "confirmed" {
				t.Errorf("expected validation confirmed, got %s", resp.Status)
			}
			if booking.BookingStatus != tt.wantBooking {
				t.Errorf("expected booking %s, got %s", tt.wantBooking, booking.BookingStatus)
			}
			if got := publisher.Has(domain.BookingEventConfirmed); got != tt.wantEvent {
				t.Errorf("booking_confirmed event published = %v, want %v", got, tt.wantEvent)
			}
		})
	}
}

func TestValidationService_Decide_Reject(t *testing.T) {
	booking := paidBooking()
	validation := pendingValidation()
	var cancelReq *dto.CancelBookingRequest

	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return validation, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return booking, nil
		},
	}
	bookingSvc := &MockBookingService{
		CancelBookingFunc: func(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.CancelBookingResponse, error) {
			cancelReq = req
			return &dto.CancelBookingResponse{BookingID: bookingID, Status: "cancelled", RefundPercentage: 100}, nil
		},
	}

	svc := NewValidationService(validationRepo, bookingRepo, bookingSvc, nil)
	resp, err := svc.Decide(context.Background(), "val-1", &dto.AdminDecideRequest{
		AdminID:  "admin-1",
		Decision: dto.DecisionReject,
		Notes:    "course closed for maintenance",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "rejected" {
		t.Errorf("expected validation rejected, got %s", resp.Status)
	}
	if booking.ValidationStatus != domain.ValidationStatusRejected {
		t.Errorf("expected booking validation rejected, got %s", booking.ValidationStatus)
	}
	if cancelReq == nil {
		t.Fatal("rejection must cancel the booking")
	}
	// Admin cancellations refund in full regardless of timing.
	if cancelReq.Actor != string(domain.CancelledByAdmin) {
		t.Errorf("expected the admin actor, got %s", cancelReq.Actor)
	}
	if cancelReq.Reason != "admin_rejected" {
		t.Errorf("unexpected cancellation reason %q", cancelReq.Reason)
	}
}

func TestValidationService_Decide_ProposeAlternative(t *testing.T) {
	booking := paidBooking()
	validation := pendingValidation()
	altStart := time.Now().UTC().Add(120 * time.Hour)

	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return validation, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return booking, nil
		},
	}
	publisher := &CapturingEventPublisher{}

	svc := NewValidationService(validationRepo, bookingRepo, &MockBookingService{}, publisher)

	t.Run("missing alternative start", func(t *testing.T) {
		_, err := svc.Decide(context.Background(), "val-1", &dto.AdminDecideRequest{
			AdminID:  "admin-1",
			Decision: dto.DecisionProposeAlternative,
		})
		if !errors.Is(err, domain.ErrNoAlternative) {
			t.Fatalf("expected ErrNoAlternative, got %v", err)
		}
	})

	t.Run("records the proposal", func(t *testing.T) {
		resp, err := svc.Decide(context.Background(), "val-1", &dto.AdminDecideRequest{
			AdminID:            "admin-1",
			Decision:           dto.DecisionProposeAlternative,
			AlternativeStartAt: &altStart,
			Notes:              "tee time taken, next morning free",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != "alternative_proposed" {
			t.Errorf("expected alternative_proposed, got %s", resp.Status)
		}
		if validation.AlternativeStartAt == nil || !validation.AlternativeStartAt.Equal(altStart) {
			t.Error("expected the proposed start to be recorded")
		}
		// The original slot stays held until the amateur answers.
		if booking.BookingStatus != domain.BookingStatusPending {
			t.Errorf("expected booking pending, got %s", booking.BookingStatus)
		}
		if !publisher.Has(domain.BookingEventAlternativeProposed) {
			t.Error("expected an alternative_proposed event")
		}
	})
}

func TestValidationService_Decide_ClosedValidation(t *testing.T) {
	validation := pendingValidation()
	validation.Status = domain.ValidationStatusConfirmed

	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return validation, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return paidBooking(), nil
		},
	}

	svc := NewValidationService(validationRepo, bookingRepo, &MockBookingService{}, nil)
	_, err := svc.Decide(context.Background(), "val-1", &dto.AdminDecideRequest{
		AdminID:  "admin-1",
		Decision: dto.DecisionReject,
	})
	if !errors.Is(err, domain.ErrValidationClosed) {
		t.Fatalf("expected ErrValidationClosed, got %v", err)
	}
}

func TestValidationService_AcceptAlternative(t *testing.T) {
	booking := paidBooking()
	originalStart := booking.StartAt
	altStart := originalStart.Add(24 * time.Hour)
	validation := pendingValidation()
	validation.Status = domain.ValidationStatusAlternativeProposed
	validation.AlternativeStartAt = &altStart

	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return validation, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return booking, nil
		},
	}
	publisher := &CapturingEventPublisher{}

	svc := NewValidationService(validationRepo, bookingRepo, &MockBookingService{}, publisher)
	resp, err := svc.AcceptAlternative(context.Background(), "val-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "confirmed" {
		t.Errorf("expected validation confirmed, got %s", resp.Status)
	}
	if !booking.StartAt.Equal(altStart) {
		t.Errorf("expected the booking moved to %v, got %v", altStart, booking.StartAt)
	}
	if booking.BookingStatus != domain.BookingStatusConfirmed {
		t.Errorf("expected booking confirmed, got %s", booking.BookingStatus)
	}
	if !publisher.Has(domain.BookingEventConfirmed) {
		t.Error("expected a booking_confirmed event")
	}
}

func TestValidationService_AcceptAlternative_NoneProposed(t *testing.T) {
	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return pendingValidation(), nil
		},
	}

	svc := NewValidationService(validationRepo, &MockBookingRepository{}, &MockBookingService{}, nil)
	_, err := svc.AcceptAlternative(context.Background(), "val-1")
	if !errors.Is(err, domain.ErrNoAlternative) {
		t.Fatalf("expected ErrNoAlternative, got %v", err)
	}
}

func TestValidationService_DeclineAlternative(t *testing.T) {
	booking := paidBooking()
	altStart := booking.StartAt.Add(24 * time.Hour)
	validation := pendingValidation()
	validation.Status = domain.ValidationStatusAlternativeProposed
	validation.AlternativeStartAt = &altStart
	var cancelReq *dto.CancelBookingRequest

	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return validation, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return booking, nil
		},
	}
	bookingSvc := &MockBookingService{
		CancelBookingFunc: func(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.CancelBookingResponse, error) {
			cancelReq = req
			return &dto.CancelBookingResponse{BookingID: bookingID, Status: "cancelled", RefundPercentage: 100}, nil
		},
	}

	svc := NewValidationService(validationRepo, bookingRepo, bookingSvc, nil)
	resp, err := svc.DeclineAlternative(context.Background(), "val-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "rejected" {
		t.Errorf("expected validation rejected, got %s", resp.Status)
	}
	if cancelReq == nil {
		t.Fatal("declining the alternative must cancel the booking")
	}
	// The pro could not honor the slot: full refund via the pro actor.
	if cancelReq.Actor != string(domain.CancelledByPro) {
		t.Errorf("expected the pro actor, got %s", cancelReq.Actor)
	}
	if cancelReq.Reason != "alternative_declined" {
		t.Errorf("unexpected cancellation reason %q", cancelReq.Reason)
	}
}

func TestValidationService_DeclineAlternative_NoneProposed(t *testing.T) {
	validationRepo := &MockValidationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.AdminValidation, error) {
			return pendingValidation(), nil
		},
	}

	svc := NewValidationService(validationRepo, &MockBookingRepository{}, &MockBookingService{}, nil)
	_, err := svc.DeclineAlternative(context.Background(), "val-1")
	if !errors.Is(err, domain.ErrNoAlternative) {
		t.Fatalf("expected ErrNoAlternative, got %v", err)
	}
}

func TestValidationService_ListPending(t *testing.T) {
	validationRepo := &MockValidationRepository{
		ListPendingFunc: func(ctx context.Context, limit, offset int) ([]*domain.AdminValidation, error) {
			if limit != 20 || offset != 0 {
				t.Errorf("expected default pagination 20/0, got %d/%d", limit, offset)
			}
			return []*domain.AdminValidation{pendingValidation()}, nil
		},
	}

	svc := NewValidationService(validationRepo, &MockBookingRepository{}, &MockBookingService{}, nil)
	resp, err := svc.ListPending(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("expected page 1 size 20, got %d/%d", resp.Page, resp.PageSize)
	}
}
