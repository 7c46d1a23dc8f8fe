package domain

import "github.com/google/uuid"

// ScoringFactors tune the weighted scoring formula.
type ScoringFactors struct {
	PrioritizeDistance    bool
	PrioritizePerformance bool
	RequireSkills         []string
}

// DefaultScoringFactors mirrors the dispatcher UI defaults: distance is
// weighted heavily, performance is not.
func DefaultScoringFactors() ScoringFactors {
	return ScoringFactors{PrioritizeDistance: true}
}

// TechnicianScore is the derived, per-(job, technician) scoring record.
// It is never persisted; every scoring call recomputes it from snapshots.
type TechnicianScore struct {
	TechID             uuid.UUID
	TechName           string
	DistanceMiles      float64
	ETAMinutes         int
	Score              int
	Eligible           bool
	Reason             string
	GpsAgeMinutes      int
	JobsCompletedToday int
}

// AssignmentResult is the outcome of an assignment attempt: the chosen
// technician plus up to three runner-up alternatives for operator override.
type AssignmentResult struct {
	Assignment    TechnicianScore
	Alternatives  []TechnicianScore
	DryRun        bool
	EligibleCount int
	TotalCount    int
}
