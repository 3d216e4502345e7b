package policy

import (
	"testing"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

func testBooking(startIn time.Duration, total domain.Money) *domain.Booking {
	return &domain.Booking{
		ID:          "booking-001",
		TotalAmount: total,
		StartAt:     time.Now().Add(startIn),
	}
}

func TestComputeRefundTiers(t *testing.T) {
	policy := DefaultRefundPolicy()

	tests := []struct {
		name       string
		startIn    time.Duration
		actor      domain.CancellationActor
		force      bool
		wantPct    float64
		wantAmount domain.Money
	}{
		{
			name:       "amateur cancels a week ahead",
			startIn:    7 * 24 * time.Hour,
			actor:      domain.CancelledByAmateur,
			wantPct:    100,
			wantAmount: 6000,
		},
		{
			name:       "amateur cancels 48h ahead",
			startIn:    48 * time.Hour,
			actor:      domain.CancelledByAmateur,
			wantPct:    50,
			wantAmount: 3000,
		},
		{
			name:       "amateur cancels 10h ahead",
			startIn:    10 * time.Hour,
			actor:      domain.CancelledByAmateur,
			wantPct:    0,
			wantAmount: 0,
		},
		{
			name:       "force majeure overrides the late window",
			startIn:    2 * time.Hour,
			actor:      domain.CancelledByAmateur,
			force:      true,
			wantPct:    100,
			wantAmount: 6000,
		},
		{
			name:       "pro cancels an hour before, amateur still made whole",
			startIn:    time.Hour,
			actor:      domain.CancelledByPro,
			wantPct:    100,
			wantAmount: 6000,
		},
		{
			name:       "admin cancellation is always a full refund",
			startIn:    30 * time.Minute,
			actor:      domain.CancelledByAdmin,
			wantPct:    100,
			wantAmount: 6000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := policy.ComputeRefund(testBooking(tt.startIn, 6000), tt.actor, tt.force, time.Now())
			if err != nil {
				t.Fatalf("ComputeRefund() unexpected error = %v", err)
			}
			if outcome.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", outcome.Percentage, tt.wantPct)
			}
			if outcome.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", outcome.Amount, tt.wantAmount)
			}
		})
	}
}

func TestComputeRefundUnknownActor(t *testing.T) {
	policy := DefaultRefundPolicy()
	_, err := policy.ComputeRefund(testBooking(time.Hour, 6000), domain.CancellationActor("system"), false, time.Now())
	if err != domain.ErrInvalidActor {
		t.Errorf("ComputeRefund() error = %v, want %v", err, domain.ErrInvalidActor)
	}
}

// The refund percentage never increases as the start time gets closer, unless
// an override forces 100%.
func TestRefundMonotonicity(t *testing.T) {
	policy := DefaultRefundPolicy()
	now := time.Now()

	prevPct := 101.0
	for hours := 120; hours >= 0; hours-- {
		b := testBooking(time.Duration(hours)*time.Hour, 6000)
		outcome, err := policy.ComputeRefund(b, domain.CancelledByAmateur, false, now)
		if err != nil {
			t.Fatalf("ComputeRefund() unexpected error = %v", err)
		}
		if outcome.Percentage > prevPct {
			t.Fatalf("refund went up from %v%% to %v%% at %dh before start", prevPct, outcome.Percentage, hours)
		}
		prevPct = outcome.Percentage
	}
}

func TestRefundPastStartClampsToZeroHours(t *testing.T) {
	policy := DefaultRefundPolicy()
	b := testBooking(-2*time.Hour, 6000)
	outcome, err := policy.ComputeRefund(b, domain.CancelledByAmateur, false, time.Now())
	if err != nil {
		t.Fatalf("ComputeRefund() unexpected error = %v", err)
	}
	if outcome.HoursBeforeStart != 0 {
		t.Errorf("HoursBeforeStart = %d, want 0", outcome.HoursBeforeStart)
	}
	if outcome.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", outcome.Percentage)
	}
}
