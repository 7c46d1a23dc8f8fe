package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakline/fieldops-backend/internal/core/ports"
	"github.com/oakline/fieldops-backend/internal/core/utils"
)

// JobHistoryRepository is the secondary adapter for per-technician
// completed-job counts.
type JobHistoryRepository struct {
	pool *pgxpool.Pool
}

var _ ports.JobHistoryRepository = (*JobHistoryRepository)(nil)

// NewJobHistoryRepository creates a new job history repository.
func NewJobHistoryRepository(pool *pgxpool.Pool) ports.JobHistoryRepository {
	return &JobHistoryRepository{pool: pool}
}

// CompletedToday returns the number of jobs a technician completed since
// midnight, server time.
func (r *JobHistoryRepository) CompletedToday(ctx context.Context, techID uuid.UUID) (int, error) {
	const query = `
SELECT COUNT(*)
FROM jobs
WHERE assignee_id = $1
  AND status = 'completed'
  AND completed_at >= date_trunc('day', now())`

	var count int
	err := r.pool.QueryRow(ctx, query, utils.ToUUID(techID)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CompletedSinceByTech returns completed-job counts for every technician in
// the account since the given time, in a single grouped query.
func (r *JobHistoryRepository) CompletedSinceByTech(ctx context.Context, accountID uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
	const query = `
SELECT assignee_id, COUNT(*)
FROM jobs
WHERE account_id = $1
  AND status = 'completed'
  AND assignee_id IS NOT NULL
  AND completed_at >= $2
GROUP BY assignee_id`

	rows, err := r.pool.Query(ctx, query,
		utils.ToUUID(accountID),
		utils.ToTimestamptz(since),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			techID pgtype.UUID
			count  int
		)
		if err := rows.Scan(&techID, &count); err != nil {
			return nil, err
		}
		counts[uuid.UUID(techID.Bytes)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
