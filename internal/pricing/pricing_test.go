package pricing

import (
	"errors"
	"testing"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

func TestComputeQuote(t *testing.T) {
	tests := []struct {
		name            string
		basePrice       domain.Money
		players         int
		holes           int
		commissionPct   float64
		wantProFee      domain.Money
		wantPlatformFee domain.Money
		wantTotal       domain.Money
		wantErr         error
	}{
		{
			name:            "25 euros per player, 2 players, 18 holes, 20 percent",
			basePrice:       2500,
			players:         2,
			holes:           18,
			commissionPct:   20,
			wantProFee:      5000,
			wantPlatformFee: 1000,
			wantTotal:       6000,
		},
		{
			name:            "single player 9 holes",
			basePrice:       4000,
			players:         1,
			holes:           9,
			commissionPct:   15,
			wantProFee:      4000,
			wantPlatformFee: 600,
			wantTotal:       4600,
		},
		{
			name:            "pro fee floor applies",
			basePrice:       300,
			players:         1,
			holes:           9,
			commissionPct:   20,
			wantProFee:      1000,
			wantPlatformFee: 200,
			wantTotal:       1200,
		},
		{
			name:            "platform fee floor applies",
			basePrice:       1500,
			players:         1,
			holes:           9,
			commissionPct:   1,
			wantProFee:      1500,
			wantPlatformFee: 100,
			wantTotal:       1600,
		},
		{
			name:          "zero players rejected",
			basePrice:     2500,
			players:       0,
			holes:         18,
			commissionPct: 20,
			wantErr:       domain.ErrInvalidPlayerCount,
		},
		{
			name:          "four players rejected",
			basePrice:     2500,
			players:       4,
			holes:         18,
			commissionPct: 20,
			wantErr:       domain.ErrInvalidPlayerCount,
		},
		{
			name:          "12 holes rejected, not clamped",
			basePrice:     2500,
			players:       2,
			holes:         12,
			commissionPct: 20,
			wantErr:       domain.ErrInvalidHoleCount,
		},
		{
			name:          "free lesson rejected",
			basePrice:     0,
			players:       1,
			holes:         9,
			commissionPct: 20,
			wantErr:       domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ComputeQuote(tt.basePrice, tt.players, tt.holes, tt.commissionPct, DefaultFloors())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ComputeQuote() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeQuote() unexpected error = %v", err)
			}
			if q.ProFee != tt.wantProFee {
				t.Errorf("ProFee = %v, want %v", q.ProFee, tt.wantProFee)
			}
			if q.PlatformFee != tt.wantPlatformFee {
				t.Errorf("PlatformFee = %v, want %v", q.PlatformFee, tt.wantPlatformFee)
			}
			if q.Total != tt.wantTotal {
				t.Errorf("Total = %v, want %v", q.Total, tt.wantTotal)
			}
		})
	}
}

func TestComputeQuoteRounding(t *testing.T) {
	// 33.33 EUR at 20% -> 6.666 EUR rounds to 6.67 EUR
	q, err := ComputeQuote(3333, 1, 9, 20, Floors{MinProFee: 1, MinPlatformFee: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.PlatformFee != 667 {
		t.Errorf("PlatformFee = %d, want 667", q.PlatformFee)
	}
}
