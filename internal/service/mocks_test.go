package service

import (
	"context"
	"sync"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/dto"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/gateway"
)

// MockBookingRepository is a mock implementation of repository.BookingRepository
type MockBookingRepository struct {
	CreateFunc              func(ctx context.Context, booking *domain.Booking) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Booking, error)
	GetByAmateurIDFunc      func(ctx context.Context, amateurID string, limit, offset int) ([]*domain.Booking, error)
	UpdateFunc              func(ctx context.Context, booking *domain.Booking) error
	MarkSlotReleasedFunc    func(ctx context.Context, id string) (bool, error)
	GetStalePendingFunc     func(ctx context.Context, deadline time.Time, limit int) ([]*domain.Booking, error)
	GetPastDueConfirmedFunc func(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)
	CreateCancellationFunc  func(ctx context.Context, record *domain.CancellationRecord) error
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) GetByAmateurID(ctx context.Context, amateurID string, limit, offset int) ([]*domain.Booking, error) {
	if m.GetByAmateurIDFunc != nil {
		return m.GetByAmateurIDFunc(ctx, amateurID, limit, offset)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) MarkSlotReleased(ctx context.Context, id string) (bool, error) {
	if m.MarkSlotReleasedFunc != nil {
		return m.MarkSlotReleasedFunc(ctx, id)
	}
	return true, nil
}

func (m *MockBookingRepository) GetStalePending(ctx context.Context, deadline time.Time, limit int) ([]*domain.Booking, error) {
	if m.GetStalePendingFunc != nil {
		return m.GetStalePendingFunc(ctx, deadline, limit)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) GetPastDueConfirmed(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	if m.GetPastDueConfirmedFunc != nil {
		return m.GetPastDueConfirmedFunc(ctx, now, limit)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) CreateCancellation(ctx context.Context, record *domain.CancellationRecord) error {
	if m.CreateCancellationFunc != nil {
		return m.CreateCancellationFunc(ctx, record)
	}
	return nil
}

// MockSlotRepository is a mock implementation of repository.SlotRepository
type MockSlotRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	ReserveFunc func(ctx context.Context, slotID string) error
	ReleaseFunc func(ctx context.Context, slotID string) error
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrSlotNotFound
}

func (m *MockSlotRepository) Reserve(ctx context.Context, slotID string) error {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, slotID)
	}
	return nil
}

func (m *MockSlotRepository) Release(ctx context.Context, slotID string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, slotID)
	}
	return nil
}

// MockPaymentRepository is a mock implementation of repository.PaymentRepository
type MockPaymentRepository struct {
	CreateFunc             func(ctx context.Context, record *domain.PaymentIntentRecord) error
	GetByBookingIDFunc     func(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error)
	GetByIntentIDFunc      func(ctx context.Context, intentID string) (*domain.PaymentIntentRecord, error)
	UpdateFunc             func(ctx context.Context, record *domain.PaymentIntentRecord) error
	IsEventProcessedFunc   func(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessedFunc func(ctx context.Context, eventID string) (bool, error)
}

func (m *MockPaymentRepository) Create(ctx context.Context, record *domain.PaymentIntentRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error) {
	if m.GetByBookingIDFunc != nil {
		return m.GetByBookingIDFunc(ctx, bookingID)
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.PaymentIntentRecord, error) {
	if m.GetByIntentIDFunc != nil {
		return m.GetByIntentIDFunc(ctx, intentID)
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) Update(ctx context.Context, record *domain.PaymentIntentRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, record)
	}
	return nil
}

func (m *MockPaymentRepository) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.IsEventProcessedFunc != nil {
		return m.IsEventProcessedFunc(ctx, eventID)
	}
	return false, nil
}

func (m *MockPaymentRepository) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.MarkEventProcessedFunc != nil {
		return m.MarkEventProcessedFunc(ctx, eventID)
	}
	return true, nil
}

// MockValidationRepository is a mock implementation of repository.ValidationRepository
type MockValidationRepository struct {
	CreateIfAbsentFunc func(ctx context.Context, validation *domain.AdminValidation) (*domain.AdminValidation, error)
	GetByIDFunc        func(ctx context.Context, id string) (*domain.AdminValidation, error)
	GetByBookingIDFunc func(ctx context.Context, bookingID string) (*domain.AdminValidation, error)
	UpdateFunc         func(ctx context.Context, validation *domain.AdminValidation) error
	ListPendingFunc    func(ctx context.Context, limit, offset int) ([]*domain.AdminValidation, error)
}

func (m *MockValidationRepository) CreateIfAbsent(ctx context.Context, validation *domain.AdminValidation) (*domain.AdminValidation, error) {
	if m.CreateIfAbsentFunc != nil {
		return m.CreateIfAbsentFunc(ctx, validation)
	}
	return validation, nil
}

func (m *MockValidationRepository) GetByID(ctx context.Context, id string) (*domain.AdminValidation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrValidationNotFound
}

func (m *MockValidationRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.AdminValidation, error) {
	if m.GetByBookingIDFunc != nil {
		return m.GetByBookingIDFunc(ctx, bookingID)
	}
	return nil, domain.ErrValidationNotFound
}

func (m *MockValidationRepository) Update(ctx context.Context, validation *domain.AdminValidation) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, validation)
	}
	return nil
}

func (m *MockValidationRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.AdminValidation, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit, offset)
	}
	return []*domain.AdminValidation{}, nil
}

// MockCommissionRepository is a mock implementation of repository.CommissionRepository
type MockCommissionRepository struct {
	AppendFunc         func(ctx context.Context, setting *domain.CommissionSetting) error
	ResolveForDateFunc func(ctx context.Context, date time.Time) (*domain.CommissionSetting, error)
}

func (m *MockCommissionRepository) Append(ctx context.Context, setting *domain.CommissionSetting) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, setting)
	}
	return nil
}

func (m *MockCommissionRepository) ResolveForDate(ctx context.Context, date time.Time) (*domain.CommissionSetting, error) {
	if m.ResolveForDateFunc != nil {
		return m.ResolveForDateFunc(ctx, date)
	}
	return &domain.CommissionSetting{ID: "cs-default", Percentage: 20}, nil
}

// MockPaymentService is a mock implementation of PaymentService
type MockPaymentService struct {
	CreateIntentFunc   func(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error)
	ReconcileFunc      func(ctx context.Context, event *domain.WebhookEvent) error
	RefundFunc         func(ctx context.Context, bookingID string, amount domain.Money) error
	GetByBookingIDFunc func(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error)
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, bookingID)
	}
	return &domain.PaymentIntentRecord{
		ID:           "pay-1",
		BookingID:    bookingID,
		IntentID:     "pi_test_123",
		ClientSecret: "pi_test_123_secret",
		Status:       domain.PaymentStatusPending,
	}, nil
}

func (m *MockPaymentService) Reconcile(ctx context.Context, event *domain.WebhookEvent) error {
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(ctx, event)
	}
	return nil
}

func (m *MockPaymentService) Refund(ctx context.Context, bookingID string, amount domain.Money) error {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, bookingID, amount)
	}
	return nil
}

func (m *MockPaymentService) GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error) {
	if m.GetByBookingIDFunc != nil {
		return m.GetByBookingIDFunc(ctx, bookingID)
	}
	return nil, domain.ErrPaymentNotFound
}

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	CreateBookingFunc      func(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
	GetBookingFunc         func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	GetAmateurBookingsFunc func(ctx context.Context, amateurID string, page, pageSize int) (*dto.PaginatedResponse, error)
	CancelBookingFunc      func(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.CancelBookingResponse, error)
	ExpireStalePendingFunc func(ctx context.Context, limit int) (int, error)
	CompletePastDueFunc    func(ctx context.Context, limit int) (int, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, req)
	}
	return &dto.CreateBookingResponse{}, nil
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingService) GetAmateurBookings(ctx context.Context, amateurID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.GetAmateurBookingsFunc != nil {
		return m.GetAmateurBookingsFunc(ctx, amateurID, page, pageSize)
	}
	return &dto.PaginatedResponse{}, nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.CancelBookingResponse, error) {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID, req)
	}
	return &dto.CancelBookingResponse{BookingID: bookingID, Status: "cancelled"}, nil
}

func (m *MockBookingService) ExpireStalePending(ctx context.Context, limit int) (int, error) {
	if m.ExpireStalePendingFunc != nil {
		return m.ExpireStalePendingFunc(ctx, limit)
	}
	return 0, nil
}

func (m *MockBookingService) CompletePastDue(ctx context.Context, limit int) (int, error) {
	if m.CompletePastDueFunc != nil {
		return m.CompletePastDueFunc(ctx, limit)
	}
	return 0, nil
}

// MockPaymentGateway is a mock implementation of gateway.PaymentGateway
type MockPaymentGateway struct {
	CreateIntentFunc func(ctx context.Context, req *gateway.CreateIntentRequest) (*gateway.CreateIntentResponse, error)
	RefundFunc       func(ctx context.Context, intentID string, amount domain.Money) error
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, req *gateway.CreateIntentRequest) (*gateway.CreateIntentResponse, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, req)
	}
	return &gateway.CreateIntentResponse{
		IntentID:     "pi_test_123",
		ClientSecret: "pi_test_123_secret",
		Status:       "requires_payment_method",
	}, nil
}

func (m *MockPaymentGateway) Refund(ctx context.Context, intentID string, amount domain.Money) error {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, intentID, amount)
	}
	return nil
}

func (m *MockPaymentGateway) Name() string { return "mock" }

// CapturingEventPublisher records published events for assertions
type CapturingEventPublisher struct {
	mu     sync.Mutex
	Events []domain.BookingEventType
}

func (p *CapturingEventPublisher) Publish(ctx context.Context, eventType domain.BookingEventType, booking *domain.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, eventType)
	return nil
}

func (p *CapturingEventPublisher) Close() error { return nil }

func (p *CapturingEventPublisher) Has(eventType domain.BookingEventType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.Events {
		if e == eventType {
			return true
		}
	}
	return false
}
