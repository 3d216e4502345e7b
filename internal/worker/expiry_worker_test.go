package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/dto"
)

// MockBookingService is a mock implementation of service.BookingService
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
	return nil, nil
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *MockBookingService) GetAmateurBookings(ctx context.Context, amateurID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.GetAmateurBookingsFunc != nil {
		return m.GetAmateurBookingsFunc(ctx, amateurID, page, pageSize)
	}
	return nil, nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.CancelBookingResponse, error) {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID, req)
	}
	return nil, nil
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

func TestExpiryWorker_Sweep(t *testing.T) {
	var gotLimit int
	svc := &MockBookingService{
		ExpireStalePendingFunc: func(ctx context.Context, limit int) (int, error) {
			gotLimit = limit
			return 3, nil
		},
	}
	worker := NewExpiryWorker(svc, &ExpiryWorkerConfig{
		ScanInterval: time.Minute,
		BatchSize:    50,
	})

	worker.sweep(context.Background())

	if gotLimit != 50 {
		t.Errorf("expected batch size 50, got %d", gotLimit)
	}
	stats := worker.GetStats()
	if stats.TotalExpired != 3 {
		t.Errorf("expected 3 total expired, got %d", stats.TotalExpired)
	}
	if stats.LastExpiredCount != 3 {
		t.Errorf("expected last count 3, got %d", stats.LastExpiredCount)
	}
	if stats.LastScanTime.IsZero() {
		t.Error("expected a scan time")
	}

	worker.sweep(context.Background())
	if worker.GetStats().TotalExpired != 6 {
		t.Errorf("expected the total to accumulate to 6, got %d", worker.GetStats().TotalExpired)
	}
}

func TestExpiryWorker_SweepError(t *testing.T) {
	svc := &MockBookingService{
		ExpireStalePendingFunc: func(ctx context.Context, limit int) (int, error) {
			return 0, errors.New("database unavailable")
		},
	}
	worker := NewExpiryWorker(svc, nil)

	worker.sweep(context.Background())

	stats := worker.GetStats()
	if stats.TotalExpired != 0 {
		t.Errorf("a failed sweep must not count, got %d", stats.TotalExpired)
	}
	if stats.LastScanTime.IsZero() {
		t.Error("a failed sweep still records the scan time")
	}
}

func TestExpiryWorker_StartStop(t *testing.T) {
	var sweeps int64
	svc := &MockBookingService{
		ExpireStalePendingFunc: func(ctx context.Context, limit int) (int, error) {
			atomic.AddInt64(&sweeps, 1)
			return 0, nil
		},
	}
	worker := NewExpiryWorker(svc, &ExpiryWorkerConfig{
		ScanInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})

	if err := worker.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := worker.Start(context.Background()); err == nil {
		t.Error("expected an error starting twice")
	}

	time.Sleep(50 * time.Millisecond)
	worker.Stop()

	if atomic.LoadInt64(&sweeps) == 0 {
		t.Error("expected at least one sweep")
	}
	if worker.GetStats().IsRunning {
		t.Error("expected the worker to report stopped")
	}

	// Stopping again is a no-op.
	worker.Stop()
}

func TestCompletionWorker_Sweep(t *testing.T) {
	svc := &MockBookingService{
		CompletePastDueFunc: func(ctx context.Context, limit int) (int, error) {
			return 2, nil
		},
	}
	worker := NewCompletionWorker(svc, &CompletionWorkerConfig{
		ScanInterval: time.Minute,
		BatchSize:    25,
	})

	worker.sweep(context.Background())

	stats := worker.GetStats()
	if stats.TotalCompleted != 2 {
		t.Errorf("expected 2 total completed, got %d", stats.TotalCompleted)
	}
	if stats.LastCompletedCount != 2 {
		t.Errorf("expected last count 2, got %d", stats.LastCompletedCount)
	}
}

func TestCompletionWorker_StartStop(t *testing.T) {
	var sweeps int64
	svc := &MockBookingService{
		CompletePastDueFunc: func(ctx context.Context, limit int) (int, error) {
			atomic.AddInt64(&sweeps, 1)
			return 0, nil
		},
	}
	worker := NewCompletionWorker(svc, &CompletionWorkerConfig{
		ScanInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})

	if err := worker.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	worker.Stop()

	if atomic.LoadInt64(&sweeps) == 0 {
		t.Error("expected at least one sweep")
	}
	if worker.GetStats().IsRunning {
		t.Error("expected the worker to report stopped")
	}
}
