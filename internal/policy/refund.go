// Package policy computes the refund owed on cancellation. The tier
// thresholds are configuration handed to the engine, not business logic baked
// into it.
package policy

import (
	"sort"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// RefundTier grants Percentage when the cancellation happens at least
// MinHoursBefore hours before the lesson start.
type RefundTier struct {
	MinHoursBefore int
	Percentage     float64
}

// RefundPolicy is an ordered tier table plus the overrides that bypass it.
type RefundPolicy struct {
	tiers []RefundTier
}

// NewRefundPolicy builds a policy from a tier table. Tiers are sorted by
// threshold descending so resolution walks from the most generous window down.
func NewRefundPolicy(tiers []RefundTier) *RefundPolicy {
	sorted := make([]RefundTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinHoursBefore > sorted[j].MinHoursBefore
	})
	return &RefundPolicy{tiers: sorted}
}

// DefaultRefundPolicy returns the marketplace default table:
// >=72h 100%, >=24h 50%, below 0%.
func DefaultRefundPolicy() *RefundPolicy {
	return NewRefundPolicy([]RefundTier{
		{MinHoursBefore: 72, Percentage: 100},
		{MinHoursBefore: 24, Percentage: 50},
		{MinHoursBefore: 0, Percentage: 0},
	})
}

// RefundOutcome is the computed result for a cancellation
type RefundOutcome struct {
	HoursBeforeStart int
	Percentage       float64
	Amount           domain.Money
}

// ComputeRefund resolves the refund for a booking cancelled by the given
// actor at the given instant. Force majeure, and cancellations by the pro or
// an admin, always refund 100%: the amateur never bears the cost of a
// provider-side failure.
func (p *RefundPolicy) ComputeRefund(booking *domain.Booking, actor domain.CancellationActor, forceMajeure bool, now time.Time) (*RefundOutcome, error) {
	if !actor.Valid() {
		return nil, domain.ErrInvalidActor
	}

	hoursBefore := int(booking.StartAt.Sub(now).Hours())
	if hoursBefore < 0 {
		hoursBefore = 0
	}

	pct := 0.0
	if forceMajeure || actor == domain.CancelledByPro || actor == domain.CancelledByAdmin {
		pct = 100
	} else {
		for _, tier := range p.tiers {
			if hoursBefore >= tier.MinHoursBefore {
				pct = tier.Percentage
				break
			}
		}
	}

	return &RefundOutcome{
		HoursBeforeStart: hoursBefore,
		Percentage:       pct,
		Amount:           booking.TotalAmount.Percent(pct),
	}, nil
}
