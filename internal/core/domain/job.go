package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle states of a field-service job.
type JobStatus string

const (
	JobUnassigned JobStatus = "unassigned"
	JobScheduled  JobStatus = "scheduled"
	JobEnRoute    JobStatus = "en_route"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
)

// JobPriority represents the urgency of a job.
type JobPriority string

const (
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
	PriorityUrgent JobPriority = "urgent"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Job is the persisted job record. Persistence itself lives behind
// ports.JobRepository; the dispatch engine only reads jobs and asks the
// store to conditionally assign them.
type Job struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	Description    string
	Status         JobStatus
	Priority       JobPriority
	Location       *Coordinates
	RequiredSkills []string
	AssigneeID     *uuid.UUID
	ScheduledStart *time.Time
	CreatedAt      time.Time
}

// IsAssigned reports whether a technician is already on this job.
func (j *Job) IsAssigned() bool {
	return j.AssigneeID != nil
}

// DispatchView projects the job down to the fields scoring cares about.
func (j *Job) DispatchView() JobLocation {
	return JobLocation{
		ID:             j.ID,
		Location:       j.Location,
		Priority:       j.Priority,
		RequiredSkills: j.RequiredSkills,
	}
}

// JobLocation is the scoring engine's view of a job: identity, target
// coordinates, priority, and required-skill tags. Scoring requires non-nil
// coordinates; a job without them is rejected outright rather than scored
// worst-case.
type JobLocation struct {
	ID             uuid.UUID
	Location       *Coordinates
	Priority       JobPriority
	RequiredSkills []string
}
