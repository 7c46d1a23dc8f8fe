package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
)

// AssignJobParams carries a conditional assignment plus the audit metadata
// persisted alongside it.
type AssignJobParams struct {
	JobID             uuid.UUID
	TechID            uuid.UUID
	Score             int
	DistanceMiles     float64
	ETAMinutes        int
	Reason            string
	AlternativesCount int
}

// JobRepository is the port to the external job store.
type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// AssignIfUnassigned commits an assignment only if the job currently has
	// no assignee. The store's conditional write is the sole source of the
	// at-most-one-assignment guarantee; a miss surfaces as ErrAlreadyAssigned.
	AssignIfUnassigned(ctx context.Context, params AssignJobParams) (*domain.Job, error)

	// ListInWindow returns jobs created in [from, to) for an account.
	ListInWindow(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*domain.Job, error)
}

// TechnicianRepository is the port to the technician directory.
type TechnicianRepository interface {
	// ListRoster returns a snapshot of every technician in the account with
	// current status and last known position.
	ListRoster(ctx context.Context, accountID uuid.UUID) ([]*domain.TechnicianSnapshot, error)

	// RefreshFix updates a technician's last known position from a GPS ping.
	// The update is scoped to the account; a tech ID from another account
	// surfaces as ErrTechnicianNotFound.
	RefreshFix(ctx context.Context, accountID, techID uuid.UUID, fix domain.LocationFix) error
}

// GpsLogRepository is the port to the append-only GPS log store.
type GpsLogRepository interface {
	Append(ctx context.Context, accountID uuid.UUID, sample domain.GpsSample) error

	// ListWindow returns all samples recorded in [from, to) for an account,
	// ordered by recording time ascending. One batched query per window;
	// never one query per hour-bucket or per technician.
	ListWindow(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.GpsSample, error)
}

// JobHistoryRepository is the port to per-technician job history counts.
type JobHistoryRepository interface {
	// CompletedToday returns the number of jobs a technician completed since
	// local midnight.
	CompletedToday(ctx context.Context, techID uuid.UUID) (int, error)

	// CompletedSinceByTech returns completed-job counts for every technician
	// in the account in a single batched query.
	CompletedSinceByTech(ctx context.Context, accountID uuid.UUID, since time.Time) (map[uuid.UUID]int, error)
}
