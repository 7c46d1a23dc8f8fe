package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	"github.com/oakline/fieldops-backend/internal/core/ports"
	"github.com/oakline/fieldops-backend/internal/core/utils"
)

// GpsLogRepository is the secondary adapter for the append-only GPS log.
type GpsLogRepository struct {
	pool *pgxpool.Pool
}

var _ ports.GpsLogRepository = (*GpsLogRepository)(nil)

// NewGpsLogRepository creates a new GPS log repository.
func NewGpsLogRepository(pool *pgxpool.Pool) ports.GpsLogRepository {
	return &GpsLogRepository{pool: pool}
}

// Append stores one GPS sample. Samples are never updated or deleted.
func (r *GpsLogRepository) Append(ctx context.Context, accountID uuid.UUID, sample domain.GpsSample) error {
	const query = `
INSERT INTO gps_logs (account_id, tech_id, latitude, longitude, recorded_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		utils.ToUUID(accountID),
		utils.ToUUID(sample.TechID),
		sample.Latitude,
		sample.Longitude,
		utils.ToTimestamptz(sample.RecordedAt),
	)
	return err
}

// ListWindow returns all samples recorded in [from, to) for an account,
// ordered by recording time ascending.
func (r *GpsLogRepository) ListWindow(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.GpsSample, error) {
	const query = `
SELECT tech_id, latitude, longitude, recorded_at
FROM gps_logs
WHERE account_id = $1 AND recorded_at >= $2 AND recorded_at < $3
ORDER BY recorded_at`

	rows, err := r.pool.Query(ctx, query,
		utils.ToUUID(accountID),
		utils.ToTimestamptz(from),
		utils.ToTimestamptz(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := make([]domain.GpsSample, 0)
	for rows.Next() {
		var (
			techID     pgtype.UUID
			sample     domain.GpsSample
			recordedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&techID, &sample.Latitude, &sample.Longitude, &recordedAt); err != nil {
			return nil, err
		}
		sample.TechID = techID.Bytes
		sample.RecordedAt = recordedAt.Time
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
