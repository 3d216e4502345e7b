package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// PostgresCommissionRepository implements CommissionRepository over the
// append-only commission_settings table.
type PostgresCommissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCommissionRepository creates a new PostgresCommissionRepository
func NewPostgresCommissionRepository(pool *pgxpool.Pool) *PostgresCommissionRepository {
	return &PostgresCommissionRepository{pool: pool}
}

// Append inserts a new commission setting. Existing rows are never updated.
func (r *PostgresCommissionRepository) Append(ctx context.Context, setting *domain.CommissionSetting) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.commission.append")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("percentage", setting.Percentage),
		attribute.String("effective_date", setting.EffectiveDate.Format(time.RFC3339)),
	)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO commission_settings (id, percentage, effective_date, created_at)
		VALUES ($1, $2, $3, $4)
	`, setting.ID, setting.Percentage, setting.EffectiveDate, setting.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to append commission setting: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ResolveForDate returns the setting in force at the given date. The table is
// small and append-only, so the rows are loaded and the tie-break lives in
// one place, domain.ResolveCommission.
func (r *PostgresCommissionRepository) ResolveForDate(ctx context.Context, date time.Time) (*domain.CommissionSetting, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.commission.resolve_for_date")
	defer span.End()

	span.SetAttributes(attribute.String("date", date.Format(time.RFC3339)))

	rows, err := r.pool.Query(ctx, `
		SELECT id, percentage, effective_date, created_at
		FROM commission_settings
		WHERE effective_date <= $1
	`, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load commission settings: %w", err)
	}
	defer rows.Close()

	settings := []domain.CommissionSetting{}
	for rows.Next() {
		var s domain.CommissionSetting
		if err := rows.Scan(&s.ID, &s.Percentage, &s.EffectiveDate, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan commission setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate commission settings: %w", err)
	}

	setting, err := domain.ResolveCommission(settings, date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Float64("percentage", setting.Percentage))
	span.SetStatus(codes.Ok, "")
	return setting, nil
}
