package domain

import (
	"time"

	"github.com/google/uuid"
)

// TechStatus represents what a technician is currently doing.
type TechStatus string

const (
	TechIdle    TechStatus = "idle"
	TechEnRoute TechStatus = "en_route"
	TechOnJob   TechStatus = "on_job"
)

// Label returns the status in human-readable form, used in score reasons.
func (s TechStatus) Label() string {
	switch s {
	case TechEnRoute:
		return "en route"
	case TechOnJob:
		return "on job"
	default:
		return string(s)
	}
}

// LocationFix is a technician's last known GPS position.
type LocationFix struct {
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}

// TechnicianSnapshot is an immutable read of a technician's dispatch state.
// It is refreshed externally on every GPS ping; the dispatch engine only
// reads snapshots and never mutates them.
type TechnicianSnapshot struct {
	ID      uuid.UUID
	Name    string
	Status  TechStatus
	Skills  []string
	LastFix *LocationFix
}

// TechnicianDetail is a single technician's snapshot plus the day's
// completed-job count, for the dispatch map's technician panel.
type TechnicianDetail struct {
	TechnicianSnapshot
	JobsCompletedToday int
}

// HasFix reports whether the technician has any known position.
func (t *TechnicianSnapshot) HasFix() bool {
	return t.LastFix != nil
}

// FixAge returns how old the last position fix is relative to now.
// It returns a very large duration when there is no fix.
func (t *TechnicianSnapshot) FixAge(now time.Time) time.Duration {
	if t.LastFix == nil {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(t.LastFix.RecordedAt)
}

// HasSkills reports whether the technician's skill set covers all required tags.
func (t *TechnicianSnapshot) HasSkills(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]bool, len(t.Skills))
	for _, s := range t.Skills {
		have[s] = true
	}
	for _, r := range required {
		if !have[r] {
			return false
		}
	}
	return true
}
