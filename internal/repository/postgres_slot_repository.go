package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// PostgresSlotRepository implements SlotRepository using PostgreSQL with pgxpool
type PostgresSlotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSlotRepository creates a new PostgresSlotRepository
func NewPostgresSlotRepository(pool *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{pool: pool}
}

// GetByID retrieves a slot by its ID
func (r *PostgresSlotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", id))

	query := `
		SELECT id, pro_id, course_id, date, start_time, end_time,
		       max_players, current_bookings, is_available,
		       created_at, updated_at
		FROM availability_slots
		WHERE id = $1
	`
	slot := &domain.AvailabilitySlot{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&slot.ID, &slot.ProID, &slot.CourseID, &slot.Date,
		&slot.StartTime, &slot.EndTime,
		&slot.MaxPlayers, &slot.CurrentBookings, &slot.IsAvailable,
		&slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return slot, nil
}

// Reserve takes one unit of capacity with a single conditional update. The
// guard runs inside the statement so two concurrent callers racing for the
// last spot cannot both succeed.
func (r *PostgresSlotRepository) Reserve(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.reserve")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", id))

	tag, err := r.pool.Exec(ctx, `
		UPDATE availability_slots
		SET current_bookings = current_bookings + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_available = TRUE
		  AND current_bookings < max_players
	`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	if tag.RowsAffected() == 1 {
		span.SetStatus(codes.Ok, "")
		return nil
	}

	// The guard refused; re-read to tell full apart from closed or missing.
	slot, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !slot.IsAvailable {
		span.SetAttributes(attribute.Bool("slot_unavailable", true))
		return domain.ErrSlotUnavailable
	}
	span.SetAttributes(attribute.Bool("slot_full", true))
	return domain.ErrSlotFull
}

// Release returns one unit of capacity, flooring at zero. Calling it on a
// slot that is already empty is a no-op rather than an error so release
// paths stay idempotent end to end.
func (r *PostgresSlotRepository) Release(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.release")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", id))

	tag, err := r.pool.Exec(ctx, `
		UPDATE availability_slots
		SET current_bookings = current_bookings - 1, updated_at = NOW()
		WHERE id = $1 AND current_bookings > 0
	`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release slot: %w", err)
	}

	span.SetAttributes(attribute.Bool("released", tag.RowsAffected() == 1))
	span.SetStatus(codes.Ok, "")
	return nil
}
