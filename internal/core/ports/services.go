package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
)

// AssignParams defines the input for an assignment attempt.
type AssignParams struct {
	AccountID uuid.UUID
	JobID     uuid.UUID
	Factors   domain.ScoringFactors
	DryRun    bool
}

// RecordPingParams defines the input for ingesting one GPS ping.
type RecordPingParams struct {
	AccountID  uuid.UUID
	TechID     uuid.UUID
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}

// DispatchService defines the core dispatch operations: scoring previews,
// roster reads, and commit-or-preview assignment.
type DispatchService interface {
	// Assign scores a freshly loaded roster against the job and either
	// previews (dry run) or commits the best candidate.
	Assign(ctx context.Context, params AssignParams) (*domain.AssignmentResult, error)

	// ScoreJob returns the full sorted score list for a job without any
	// commit, including ineligible technicians with zero scores.
	ScoreJob(ctx context.Context, accountID, jobID uuid.UUID, factors domain.ScoringFactors) ([]domain.TechnicianScore, error)

	// Roster returns the account's technician snapshots for the dispatch map.
	Roster(ctx context.Context, accountID uuid.UUID) ([]*domain.TechnicianSnapshot, error)

	// TechnicianDetail returns a single technician's snapshot with the
	// day's completed-job count.
	TechnicianDetail(ctx context.Context, accountID, techID uuid.UUID) (*domain.TechnicianDetail, error)
}

// AnalyticsService defines the fleet analytics aggregation operation.
type AnalyticsService interface {
	Aggregate(ctx context.Context, accountID uuid.UUID, timeRange domain.TimeRange) (*domain.AnalyticsSnapshot, error)
}

// LocationService defines GPS ping ingestion.
type LocationService interface {
	RecordPing(ctx context.Context, params RecordPingParams) error
}

// EventBroadcaster defines the port for pushing live fleet feed events.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}

// NotificationParams defines the input for notifying a technician.
type NotificationParams struct {
	TechID   uuid.UUID
	TechName string
	Subject  string
	Message  string
	JobID    uuid.UUID
}

// Notifier defines the port for asynchronous technician notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}
