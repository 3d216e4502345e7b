package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/service"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/logger"
)

// CompletionWorkerConfig contains configuration for the completion worker
type CompletionWorkerConfig struct {
	// ScanInterval is the interval between sweeps for finished lessons
	ScanInterval time.Duration
	// BatchSize is the number of bookings to complete in each sweep
	BatchSize int
}

// DefaultCompletionWorkerConfig returns default configuration
func DefaultCompletionWorkerConfig() *CompletionWorkerConfig {
	return &CompletionWorkerConfig{
		ScanInterval: 5 * time.Minute,
		BatchSize:    100,
	}
}

// CompletionWorker moves confirmed bookings to completed once the lesson end
// time has passed.
type CompletionWorker struct {
	bookingService service.BookingService
	config         *CompletionWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	// Stats
	totalCompleted     int64
	lastScanTime       time.Time
	lastCompletedCount int
}

// NewCompletionWorker creates a new completion worker
func NewCompletionWorker(bookingService service.BookingService, config *CompletionWorkerConfig) *CompletionWorker {
	if config == nil {
		config = DefaultCompletionWorkerConfig()
	}
	return &CompletionWorker{
		bookingService: bookingService,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the completion worker
func (w *CompletionWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("completion worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting completion worker")

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the completion worker
func (w *CompletionWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping completion worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Completion worker stopped")
}

func (w *CompletionWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CompletionWorker) sweep(ctx context.Context) {
	completed, err := w.bookingService.CompletePastDue(ctx, w.config.BatchSize)

	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.lastCompletedCount = completed
	w.totalCompleted += int64(completed)
	w.mu.Unlock()

	if err != nil {
		w.log.Error(fmt.Sprintf("Completion sweep failed: %v", err))
		return
	}
	if completed > 0 {
		w.log.Info(fmt.Sprintf("Completed %d past due bookings", completed))
	}
}

// GetStats returns worker statistics
func (w *CompletionWorker) GetStats() *CompletionWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &CompletionWorkerStats{
		IsRunning:          w.running,
		TotalCompleted:     w.totalCompleted,
		LastScanTime:       w.lastScanTime,
		LastCompletedCount: w.lastCompletedCount,
	}
}

// CompletionWorkerStats contains worker statistics
type CompletionWorkerStats struct {
	IsRunning          bool      `json:"is_running"`
	TotalCompleted     int64     `json:"total_completed"`
	LastScanTime       time.Time `json:"last_scan_time"`
	LastCompletedCount int       `json:"last_completed_count"`
}
