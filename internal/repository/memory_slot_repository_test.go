package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

func newTestSlot(id string, maxPlayers, current int, available bool) *domain.AvailabilitySlot {
	now := time.Now().UTC()
	return &domain.AvailabilitySlot{
		ID:              id,
		ProID:           "pro-1",
		CourseID:        "course-1",
		Date:            now.AddDate(0, 0, 7),
		StartTime:       "09:00",
		EndTime:         "13:00",
		MaxPlayers:      maxPlayers,
		CurrentBookings: current,
		IsAvailable:     available,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestMemorySlotRepository_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves when capacity remains", func(t *testing.T) {
		repo := NewMemorySlotRepository()
		repo.Put(newTestSlot("slot-1", 3, 0, true))

		err := repo.Reserve(ctx, "slot-1")
		require.NoError(t, err)

		slot, err := repo.GetByID(ctx, "slot-1")
		require.NoError(t, err)
		assert.Equal(t, 1, slot.CurrentBookings)
	})

	t.Run("returns slot full at capacity", func(t *testing.T) {
		repo := NewMemorySlotRepository()
		repo.Put(newTestSlot("slot-1", 2, 2, true))

		err := repo.Reserve(ctx, "slot-1")
		assert.ErrorIs(t, err, domain.ErrSlotFull)
	})

	t.Run("returns unavailable when slot is closed", func(t *testing.T) {
		repo := NewMemorySlotRepository()
		repo.Put(newTestSlot("slot-1", 2, 0, false))

		err := repo.Reserve(ctx, "slot-1")
		assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	})

	t.Run("returns not found for unknown slot", func(t *testing.T) {
		repo := NewMemorySlotRepository()

		err := repo.Reserve(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSlotNotFound)
	})
}

func TestMemorySlotRepository_ConcurrentReserveLastSpot(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySlotRepository()
	repo.Put(newTestSlot("slot-1", 1, 0, true))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Reserve(ctx, "slot-1")
		}(i)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case domain.IsConflictError(err):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one reservation should win the last spot")
	assert.Equal(t, attempts-1, full)

	slot, err := repo.GetByID(ctx, "slot-1")
	require.NoError(t, err)
	assert.Equal(t, slot.MaxPlayers, slot.CurrentBookings)
}

func TestMemorySlotRepository_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements capacity", func(t *testing.T) {
		repo := NewMemorySlotRepository()
		repo.Put(newTestSlot("slot-1", 2, 2, true))

		require.NoError(t, repo.Release(ctx, "slot-1"))

		slot, err := repo.GetByID(ctx, "slot-1")
		require.NoError(t, err)
		assert.Equal(t, 1, slot.CurrentBookings)
	})

	t.Run("floors at zero on duplicate release", func(t *testing.T) {
		repo := NewMemorySlotRepository()
		repo.Put(newTestSlot("slot-1", 2, 1, true))

		require.NoError(t, repo.Release(ctx, "slot-1"))
		require.NoError(t, repo.Release(ctx, "slot-1"))

		slot, err := repo.GetByID(ctx, "slot-1")
		require.NoError(t, err)
		assert.Equal(t, 0, slot.CurrentBookings)
	})
}
