package domain

import "time"

// AvailabilitySlot is a bookable time window offered by a professional at a
// course. CurrentBookings never exceeds MaxPlayers; the increment is a
// storage-level conditional update (see repository.SlotRepository).
type AvailabilitySlot struct {
	ID              string
	ProID           string
	CourseID        string
	Date            time.Time
	StartTime       string
	EndTime         string
	MaxPlayers      int
	CurrentBookings int
	IsAvailable     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasCapacity returns true if at least one more booking fits
func (s *AvailabilitySlot) HasCapacity() bool {
	return s.IsAvailable && s.CurrentBookings < s.MaxPlayers
}

// Remaining returns the number of bookings the slot can still take
func (s *AvailabilitySlot) Remaining() int {
	r := s.MaxPlayers - s.CurrentBookings
	if r < 0 {
		return 0
	}
	return r
}
