package domain

import (
	"time"

	"github.com/google/uuid"
)

// GpsSample is one append-only location log entry for a technician.
// The aggregator treats a batch of samples over a time window as its unit
// of work, grouping by technician in memory.
type GpsSample struct {
	TechID     uuid.UUID
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}
