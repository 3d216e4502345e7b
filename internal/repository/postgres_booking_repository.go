package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `
	id, amateur_id, pro_id, course_id, slot_id,
	start_at, hole_count, player_count,
	commission_pct, pro_fee, platform_fee, total_amount, currency,
	booking_status, payment_status, validation_status,
	payment_intent_id, slot_released, status_reason,
	created_at, updated_at, validated_at, cancelled_at
`

// Create inserts a new booking record
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("amateur_id", booking.AmateurID),
		attribute.String("slot_id", booking.SlotID),
	)

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19,
			$20, $21, $22, $23
		)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.AmateurID,
		booking.ProID,
		booking.CourseID,
		booking.SlotID,
		booking.StartAt,
		booking.HoleCount,
		booking.PlayerCount,
		booking.CommissionPct,
		booking.ProFee.Cents(),
		booking.PlatformFee.Cents(),
		booking.TotalAmount.Cents(),
		booking.Currency,
		booking.BookingStatus.String(),
		booking.PaymentStatus.String(),
		booking.ValidationStatus.String(),
		nullString(booking.PaymentIntentID),
		booking.SlotReleased,
		nullString(booking.StatusReason),
		booking.CreatedAt,
		booking.UpdatedAt,
		booking.ValidatedAt,
		booking.CancelledAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// GetByAmateurID retrieves bookings for an amateur, newest first
func (r *PostgresBookingRepository) GetByAmateurID(ctx context.Context, amateurID string, limit, offset int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_amateur")
	defer span.End()

	span.SetAttributes(attribute.String("amateur_id", amateurID))

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE amateur_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, amateurID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// Update persists status fields, reasons and timestamps. The commercial
// snapshot columns are deliberately not written back.
func (r *PostgresBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("booking_status", booking.BookingStatus.String()),
		attribute.String("payment_status", booking.PaymentStatus.String()),
		attribute.String("validation_status", booking.ValidationStatus.String()),
	)

	query := `
		UPDATE bookings SET
			booking_status = $2,
			payment_status = $3,
			validation_status = $4,
			payment_intent_id = $5,
			start_at = $6,
			status_reason = $7,
			validated_at = $8,
			cancelled_at = $9,
			updated_at = $10
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.BookingStatus.String(),
		booking.PaymentStatus.String(),
		booking.ValidationStatus.String(),
		nullString(booking.PaymentIntentID),
		booking.StartAt,
		nullString(booking.StatusReason),
		booking.ValidatedAt,
		booking.CancelledAt,
		time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkSlotReleased flips the release latch; only one caller wins
func (r *PostgresBookingRepository) MarkSlotReleased(ctx context.Context, id string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.mark_slot_released")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET slot_released = TRUE, updated_at = NOW()
		WHERE id = $1 AND slot_released = FALSE
	`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to mark slot released: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return tag.RowsAffected() == 1, nil
}

// GetStalePending returns pending bookings whose authorization window lapsed
func (r *PostgresBookingRepository) GetStalePending(ctx context.Context, deadline time.Time, limit int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_stale_pending")
	defer span.End()

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_status = 'pending'
		  AND payment_status = 'pending'
		  AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, deadline, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get stale pending bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetPastDueConfirmed returns confirmed bookings whose start time elapsed
func (r *PostgresBookingRepository) GetPastDueConfirmed(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_past_due_confirmed")
	defer span.End()

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_status = 'confirmed'
		  AND start_at < $1
		ORDER BY start_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get past due bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// CreateCancellation records the cancellation outcome for a booking
func (r *PostgresBookingRepository) CreateCancellation(ctx context.Context, record *domain.CancellationRecord) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create_cancellation")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", record.BookingID),
		attribute.String("cancelled_by", string(record.CancelledBy)),
	)

	query := `
		INSERT INTO cancellations (
			id, booking_id, cancelled_by, cancelled_at,
			hours_before_start, refund_percentage, refund_amount,
			force_majeure, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.BookingID,
		string(record.CancelledBy),
		record.CancelledAt,
		record.HoursBeforeStart,
		record.RefundPercentage,
		record.RefundAmount.Cents(),
		record.ForceMajeure,
		nullString(record.Reason),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create cancellation record: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	var (
		bookingStatus, paymentStatus, validationStatus string
		proFee, platformFee, totalAmount               int64
		paymentIntentID, statusReason                  *string
	)

	err := row.Scan(
		&b.ID, &b.AmateurID, &b.ProID, &b.CourseID, &b.SlotID,
		&b.StartAt, &b.HoleCount, &b.PlayerCount,
		&b.CommissionPct, &proFee, &platformFee, &totalAmount, &b.Currency,
		&bookingStatus, &paymentStatus, &validationStatus,
		&paymentIntentID, &b.SlotReleased, &statusReason,
		&b.CreatedAt, &b.UpdatedAt, &b.ValidatedAt, &b.CancelledAt,
	)
	if err != nil {
		return nil, err
	}

	b.ProFee = domain.Money(proFee)
	b.PlatformFee = domain.Money(platformFee)
	b.TotalAmount = domain.Money(totalAmount)
	b.BookingStatus = domain.BookingStatus(bookingStatus)
	b.PaymentStatus = domain.PaymentStatus(paymentStatus)
	b.ValidationStatus = domain.ValidationStatus(validationStatus)
	if paymentIntentID != nil {
		b.PaymentIntentID = *paymentIntentID
	}
	if statusReason != nil {
		b.StatusReason = *statusReason
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	bookings := []*domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
