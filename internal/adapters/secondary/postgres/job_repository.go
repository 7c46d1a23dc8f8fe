package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/ports"
	"github.com/oakline/fieldops-backend/internal/core/utils"
)

// jobColumns is the select list shared by every job read.
const jobColumns = `id, account_id, description, status, priority, latitude, longitude, required_skills, assignee_id, scheduled_start, created_at`

// JobRepository is the secondary adapter for job persistence.
type JobRepository struct {
	pool *pgxpool.Pool
}

var _ ports.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new job repository.
func NewJobRepository(pool *pgxpool.Pool) ports.JobRepository {
	return &JobRepository{pool: pool}
}

// GetByID retrieves a single job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, utils.ToUUID(id))
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// AssignIfUnassigned commits the assignment with a conditional update. The
// WHERE assignee_id IS NULL clause is what makes concurrent assigns safe:
// whichever update lands first wins, the loser matches zero rows.
func (r *JobRepository) AssignIfUnassigned(ctx context.Context, params ports.AssignJobParams) (*domain.Job, error) {
	const query = `
UPDATE jobs
SET assignee_id = $2,
    status = 'scheduled',
    assigned_at = now(),
    assignment_score = $3,
    assignment_distance_miles = $4,
    assignment_eta_minutes = $5,
    assignment_reason = $6,
    assignment_alternatives = $7
WHERE id = $1 AND assignee_id IS NULL
RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query,
		utils.ToUUID(params.JobID),
		utils.ToUUID(params.TechID),
		params.Score,
		params.DistanceMiles,
		params.ETAMinutes,
		utils.ToString(params.Reason),
		params.AlternativesCount,
	)
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Zero rows matched: either the job is gone or someone else got there
	// first. Distinguish for the caller.
	if _, getErr := r.GetByID(ctx, params.JobID); getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.ErrAlreadyAssigned
}

// ListInWindow returns jobs created in [from, to) for an account.
func (r *JobRepository) ListInWindow(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*domain.Job, error) {
	const query = `
SELECT ` + jobColumns + `
FROM jobs
WHERE account_id = $1 AND created_at >= $2 AND created_at < $3
ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query,
		utils.ToUUID(accountID),
		utils.ToTimestamptz(from),
		utils.ToTimestamptz(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// scanJob maps one jobColumns row to the domain model.
func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		id             pgtype.UUID
		accountID      pgtype.UUID
		description    string
		status         string
		priority       string
		latitude       pgtype.Float8
		longitude      pgtype.Float8
		requiredSkills []string
		assigneeID     pgtype.UUID
		scheduledStart pgtype.Timestamptz
		createdAt      pgtype.Timestamptz
	)

	err := row.Scan(&id, &accountID, &description, &status, &priority,
		&latitude, &longitude, &requiredSkills, &assigneeID, &scheduledStart, &createdAt)
	if err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:             id.Bytes,
		AccountID:      accountID.Bytes,
		Description:    description,
		Status:         domain.JobStatus(status),
		Priority:       domain.JobPriority(priority),
		RequiredSkills: requiredSkills,
		CreatedAt:      createdAt.Time,
	}
	if latitude.Valid && longitude.Valid {
		job.Location = &domain.Coordinates{
			Latitude:  latitude.Float64,
			Longitude: longitude.Float64,
		}
	}
	if assigneeID.Valid {
		techID := uuid.UUID(assigneeID.Bytes)
		job.AssigneeID = &techID
	}
	if scheduledStart.Valid {
		job.ScheduledStart = &scheduledStart.Time
	}
	return job, nil
}
