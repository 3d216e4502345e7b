package repository

import (
	"context"
	"sync"
	"time"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// MemorySlotRepository is a mutex-guarded in-memory SlotRepository used by
// tests and local development.
type MemorySlotRepository struct {
	mu    sync.Mutex
	slots map[string]*domain.AvailabilitySlot
}

// NewMemorySlotRepository creates an empty in-memory slot store
func NewMemorySlotRepository() *MemorySlotRepository {
	return &MemorySlotRepository{slots: make(map[string]*domain.AvailabilitySlot)}
}

// Put stores or replaces a slot
func (r *MemorySlotRepository) Put(slot *domain.AvailabilitySlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *slot
	r.slots[slot.ID] = &cp
}

// GetByID retrieves a copy of the slot
func (r *MemorySlotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

// Reserve checks capacity and increments under the same lock, mirroring the
// single conditional update the SQL implementation issues.
func (r *MemorySlotRepository) Reserve(ctx context.Context, slotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return domain.ErrSlotNotFound
	}
	if !slot.IsAvailable {
		return domain.ErrSlotUnavailable
	}
	if slot.CurrentBookings >= slot.MaxPlayers {
		return domain.ErrSlotFull
	}
	slot.CurrentBookings++
	slot.UpdatedAt = time.Now().UTC()
	return nil
}

// Release decrements capacity, flooring at zero
func (r *MemorySlotRepository) Release(ctx context.Context, slotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return domain.ErrSlotNotFound
	}
	if slot.CurrentBookings > 0 {
		slot.CurrentBookings--
		slot.UpdatedAt = time.Now().UTC()
	}
	return nil
}
