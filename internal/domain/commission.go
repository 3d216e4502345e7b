package domain

import "time"

// CommissionSetting is one row of the append-only, time-versioned commission
// table. Settings are immutable once written.
type CommissionSetting struct {
	ID            string
	Percentage    float64
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// ResolveCommission picks the setting applicable to a booking created at the
// given date: greatest effective_date that is <= bookingDate, tie-broken by
// greatest created_at. The result is snapshotted onto the booking and never
// recomputed.
func ResolveCommission(settings []CommissionSetting, bookingDate time.Time) (*CommissionSetting, error) {
	var best *CommissionSetting
	for i := range settings {
		s := &settings[i]
		if s.EffectiveDate.After(bookingDate) {
			continue
		}
		if best == nil ||
			s.EffectiveDate.After(best.EffectiveDate) ||
			(s.EffectiveDate.Equal(best.EffectiveDate) && s.CreatedAt.After(best.CreatedAt)) {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNoCommissionSetting
	}
	return best, nil
}
