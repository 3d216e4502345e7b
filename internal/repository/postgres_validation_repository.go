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

// PostgresValidationRepository implements ValidationRepository using PostgreSQL
type PostgresValidationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresValidationRepository creates a new PostgresValidationRepository
func NewPostgresValidationRepository(pool *pgxpool.Pool) *PostgresValidationRepository {
	return &PostgresValidationRepository{pool: pool}
}

const validationColumns = `
	id, booking_id, status, admin_id, notes, alternative_start_at,
	created_at, updated_at, validated_at
`

// CreateIfAbsent inserts the validation unless one already exists for the
// booking, and returns whichever record ends up stored. The unique index on
// booking_id makes concurrent requests converge on a single record.
func (r *PostgresValidationRepository) CreateIfAbsent(ctx context.Context, validation *domain.AdminValidation) (*domain.AdminValidation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.validation.create_if_absent")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", validation.BookingID))

	query := `
		INSERT INTO admin_validations (` + validationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (booking_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		validation.ID,
		validation.BookingID,
		validation.Status.String(),
		nullString(validation.AdminID),
		nullString(validation.Notes),
		validation.AlternativeStartAt,
		validation.CreatedAt,
		validation.UpdatedAt,
		validation.ValidatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create admin validation: %w", err)
	}

	stored, err := r.GetByBookingID(ctx, validation.BookingID)
	if err != nil {
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return stored, nil
}

// GetByID retrieves a validation by its ID
func (r *PostgresValidationRepository) GetByID(ctx context.Context, id string) (*domain.AdminValidation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.validation.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("validation_id", id))

	row := r.pool.QueryRow(ctx, `SELECT `+validationColumns+` FROM admin_validations WHERE id = $1`, id)
	return scanValidation(row)
}

// GetByBookingID retrieves the validation attached to a booking
func (r *PostgresValidationRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.AdminValidation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.validation.get_by_booking")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	row := r.pool.QueryRow(ctx, `SELECT `+validationColumns+` FROM admin_validations WHERE booking_id = $1`, bookingID)
	return scanValidation(row)
}

// Update persists the validation decision fields
func (r *PostgresValidationRepository) Update(ctx context.Context, validation *domain.AdminValidation) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.validation.update")
	defer span.End()

	span.SetAttributes(
		attribute.String("validation_id", validation.ID),
		attribute.String("status", validation.Status.String()),
	)

	query := `
		UPDATE admin_validations SET
			status = $2,
			admin_id = $3,
			notes = $4,
			alternative_start_at = $5,
			validated_at = $6,
			updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		validation.ID,
		validation.Status.String(),
		nullString(validation.AdminID),
		nullString(validation.Notes),
		validation.AlternativeStartAt,
		validation.ValidatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update admin validation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrValidationNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListPending returns open validations, oldest first
func (r *PostgresValidationRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.AdminValidation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.validation.list_pending")
	defer span.End()

	query := `
		SELECT ` + validationColumns + `
		FROM admin_validations
		WHERE status IN ('pending', 'checking', 'alternative_proposed')
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list pending validations: %w", err)
	}
	defer rows.Close()

	validations := []*domain.AdminValidation{}
	for rows.Next() {
		v, err := scanValidation(rows)
		if err != nil {
			return nil, err
		}
		validations = append(validations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate validations: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return validations, nil
}

func scanValidation(row pgx.Row) (*domain.AdminValidation, error) {
	v := &domain.AdminValidation{}
	var (
		status         string
		adminID, notes *string
	)
	err := row.Scan(
		&v.ID, &v.BookingID, &status, &adminID, &notes, &v.AlternativeStartAt,
		&v.CreatedAt, &v.UpdatedAt, &v.ValidatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrValidationNotFound
		}
		return nil, fmt.Errorf("failed to scan admin validation: %w", err)
	}
	v.Status = domain.ValidationStatus(status)
	if adminID != nil {
		v.AdminID = *adminID
	}
	if notes != nil {
		v.Notes = *notes
	}
	return v, nil
}
