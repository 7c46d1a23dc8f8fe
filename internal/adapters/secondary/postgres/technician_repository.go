package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/ports"
	"github.com/oakline/fieldops-backend/internal/core/utils"
)

// TechnicianRepository is the secondary adapter for the technician directory.
type TechnicianRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TechnicianRepository = (*TechnicianRepository)(nil)

// NewTechnicianRepository creates a new technician repository.
func NewTechnicianRepository(pool *pgxpool.Pool) ports.TechnicianRepository {
	return &TechnicianRepository{pool: pool}
}

// ListRoster returns every technician in the account with current status and
// last known position.
func (r *TechnicianRepository) ListRoster(ctx context.Context, accountID uuid.UUID) ([]*domain.TechnicianSnapshot, error) {
	const query = `
SELECT id, name, status, skills, last_lat, last_lon, last_fix_at
FROM technicians
WHERE account_id = $1
ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query, utils.ToUUID(accountID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]*domain.TechnicianSnapshot, 0)
	for rows.Next() {
		var (
			id      pgtype.UUID
			name    string
			status  string
			skills  []string
			lastLat pgtype.Float8
			lastLon pgtype.Float8
			fixedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &name, &status, &skills, &lastLat, &lastLon, &fixedAt); err != nil {
			return nil, err
		}

		tech := &domain.TechnicianSnapshot{
			ID:     id.Bytes,
			Name:   name,
			Status: domain.TechStatus(status),
			Skills: skills,
		}
		if lastLat.Valid && lastLon.Valid && fixedAt.Valid {
			tech.LastFix = &domain.LocationFix{
				Latitude:   lastLat.Float64,
				Longitude:  lastLon.Float64,
				RecordedAt: fixedAt.Time,
			}
		}
		roster = append(roster, tech)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roster, nil
}

// RefreshFix updates a technician's last known position from a GPS ping.
// Scoped by account so a ping can never move a technician it does not own.
func (r *TechnicianRepository) RefreshFix(ctx context.Context, accountID, techID uuid.UUID, fix domain.LocationFix) error {
	const query = `
UPDATE technicians
SET last_lat = $3, last_lon = $4, last_fix_at = $5
WHERE id = $2 AND account_id = $1`

	tag, err := r.pool.Exec(ctx, query,
		utils.ToUUID(accountID),
		utils.ToUUID(techID),
		fix.Latitude,
		fix.Longitude,
		utils.ToTimestamptz(fix.RecordedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTechnicianNotFound
	}
	return nil
}
