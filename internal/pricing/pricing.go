// Package pricing computes the charge for a lesson from the pro's base fee,
// the party size, the hole count and the commission percentage in effect on
// the booking date. Pure functions only; no storage or clock access.
package pricing

import "github.com/kristofaser/eagle-golf-app-sub006/internal/domain"

// Floors applied to the computed fees, in minor units.
type Floors struct {
	MinProFee      domain.Money
	MinPlatformFee domain.Money
}

// DefaultFloors returns the marketplace defaults (10 EUR / 1 EUR)
func DefaultFloors() Floors {
	return Floors{
		MinProFee:      1000,
		MinPlatformFee: 100,
	}
}

// Quote is the computed price breakdown for a booking
type Quote struct {
	ProFee      domain.Money
	PlatformFee domain.Money
	Total       domain.Money
}

// ComputeQuote validates the request parameters and computes the price
// breakdown. Out-of-range player or hole counts are validation errors, never
// clamped.
func ComputeQuote(basePricePerPlayer domain.Money, playerCount, holes int, commissionPct float64, floors Floors) (*Quote, error) {
	if playerCount < 1 || playerCount > 3 {
		return nil, domain.ErrInvalidPlayerCount
	}
	if holes != 9 && holes != 18 {
		return nil, domain.ErrInvalidHoleCount
	}
	if basePricePerPlayer <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	proFee := basePricePerPlayer * domain.Money(playerCount)
	if proFee < floors.MinProFee {
		proFee = floors.MinProFee
	}

	platformFee := proFee.Percent(commissionPct)
	if platformFee < floors.MinPlatformFee {
		platformFee = floors.MinPlatformFee
	}

	return &Quote{
		ProFee:      proFee,
		PlatformFee: platformFee,
		Total:       proFee + platformFee,
	}, nil
}
