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

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL with pgxpool
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

const paymentColumns = `
	id, booking_id, intent_id, client_secret, amount, currency, status,
	error_code, error_message, last_event_at, refunded_at, created_at, updated_at
`

// Create inserts a new payment intent record. The unique constraint on
// booking_id enforces one record per booking.
func (r *PostgresPaymentRepository) Create(ctx context.Context, record *domain.PaymentIntentRecord) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("payment_id", record.ID),
		attribute.String("booking_id", record.BookingID),
	)

	query := `
		INSERT INTO payment_intents (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.BookingID,
		nullString(record.IntentID),
		nullString(record.ClientSecret),
		record.Amount.Cents(),
		record.Currency,
		record.Status.String(),
		nullString(record.ErrorCode),
		nullString(record.ErrorMessage),
		record.LastEventAt,
		record.RefundedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create payment intent record: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByBookingID retrieves the payment record for a booking
func (r *PostgresPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentIntentRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.get_by_booking")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_intents WHERE booking_id = $1`, bookingID)
	record, err := scanPaymentRow(row)
	if err != nil {
		if !domain.IsNotFoundError(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return record, nil
}

// GetByIntentID retrieves the payment record by the provider intent ID
func (r *PostgresPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.PaymentIntentRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.get_by_intent")
	defer span.End()

	span.SetAttributes(attribute.String("intent_id", intentID))

	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_intents WHERE intent_id = $1`, intentID)
	record, err := scanPaymentRow(row)
	if err != nil {
		if !domain.IsNotFoundError(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return record, nil
}

// Update persists status and provider fields. Amount and currency are never
// written back after creation.
func (r *PostgresPaymentRepository) Update(ctx context.Context, record *domain.PaymentIntentRecord) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.update")
	defer span.End()

	span.SetAttributes(
		attribute.String("payment_id", record.ID),
		attribute.String("status", record.Status.String()),
	)

	query := `
		UPDATE payment_intents SET
			intent_id = $2,
			client_secret = $3,
			status = $4,
			error_code = $5,
			error_message = $6,
			last_event_at = $7,
			refunded_at = $8,
			updated_at = $9
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		record.ID,
		nullString(record.IntentID),
		nullString(record.ClientSecret),
		record.Status.String(),
		nullString(record.ErrorCode),
		nullString(record.ErrorMessage),
		record.LastEventAt,
		record.RefundedAt,
		time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update payment intent record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// IsEventProcessed reports whether a webhook event ID was already applied
func (r *PostgresPaymentRepository) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.is_event_processed")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	var processed bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM payment_webhook_events WHERE event_id = $1)
	`, eventID).Scan(&processed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}

	span.SetAttributes(attribute.Bool("processed", processed))
	span.SetStatus(codes.Ok, "")
	return processed, nil
}

// MarkEventProcessed records a fully applied webhook event ID. The first
// caller gets true; a concurrent delivery that lost the insert gets false.
func (r *PostgresPaymentRepository) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.mark_event_processed")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO payment_webhook_events (event_id, processed_at)
		VALUES ($1, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to mark webhook event processed: %w", err)
	}

	first := tag.RowsAffected() == 1
	span.SetAttributes(attribute.Bool("first_delivery", first))
	span.SetStatus(codes.Ok, "")
	return first, nil
}

func scanPaymentRow(row pgx.Row) (*domain.PaymentIntentRecord, error) {
	p := &domain.PaymentIntentRecord{}
	var (
		intentID, clientSecret  *string
		errorCode, errorMessage *string
		amount                  int64
		status                  string
	)
	err := row.Scan(
		&p.ID, &p.BookingID, &intentID, &clientSecret, &amount, &p.Currency, &status,
		&errorCode, &errorMessage, &p.LastEventAt, &p.RefundedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment intent record: %w", err)
	}
	p.Amount = domain.Money(amount)
	p.Status = domain.PaymentStatus(status)
	if intentID != nil {
		p.IntentID = *intentID
	}
	if clientSecret != nil {
		p.ClientSecret = *clientSecret
	}
	if errorCode != nil {
		p.ErrorCode = *errorCode
	}
	if errorMessage != nil {
		p.ErrorMessage = *errorMessage
	}
	return p, nil
}
