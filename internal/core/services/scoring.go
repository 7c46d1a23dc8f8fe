package services

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/geo"
)

// Scoring constants. The average-speed model is deliberately constant;
// this is not a routing engine.
const (
	metersPerMile      = 1609.34
	assumedAvgSpeedMph = 30.0

	// staleFixCutoff is the GPS age past which a technician is assumed offline.
	staleFixCutoff = 30 * time.Minute

	// realTimeFixCutoff marks a fix fresh enough to call "real-time".
	realTimeFixCutoff = 5 * time.Minute

	closeRangeMiles     = 5.0
	highPerformanceJobs = 3
	idleWorkloadBonus   = 20.0
)

// ScoringOptions carries feature gates that affect eligibility.
type ScoringOptions struct {
	// EnforceSkills turns the required-skill subset check into a hard
	// eligibility filter. Off by default; skill data is not yet populated
	// for most accounts.
	EnforceSkills bool
}

// ineligibilityReason returns a non-empty reason when the technician fails
// an eligibility condition. Checks run in a fixed order so reasons are
// deterministic: status first, then fix presence, fix age, then skills.
func ineligibilityReason(tech *domain.TechnicianSnapshot, required []string, now time.Time, opts ScoringOptions) string {
	if tech.Status != domain.TechIdle {
		return fmt.Sprintf("Currently %s", tech.Status.Label())
	}
	if !tech.HasFix() {
		return "No GPS data available"
	}
	if tech.FixAge(now) >= staleFixCutoff {
		return "GPS data too old (>30 min)"
	}
	if opts.EnforceSkills && !tech.HasSkills(required) {
		return "Missing required skills"
	}
	return ""
}

// requiredSkills merges the job's skill tags with any extras the dispatcher
// asked for on this particular call.
func requiredSkills(job domain.JobLocation, factors domain.ScoringFactors) []string {
	if len(factors.RequireSkills) == 0 {
		return job.RequiredSkills
	}
	merged := make([]string, 0, len(job.RequiredSkills)+len(factors.RequireSkills))
	merged = append(merged, job.RequiredSkills...)
	merged = append(merged, factors.RequireSkills...)
	return merged
}

// EligibleTechnicians returns the subset of the roster eligible for
// assignment to the job: idle, with a position fix younger than 30 minutes,
// and (when skill matching is enforced) covering the job's required skills.
// Pure function of its inputs and now; no side effects.
func EligibleTechnicians(job domain.JobLocation, roster []*domain.TechnicianSnapshot, now time.Time, opts ScoringOptions) []*domain.TechnicianSnapshot {
	required := requiredSkills(job, domain.ScoringFactors{})
	eligible := make([]*domain.TechnicianSnapshot, 0, len(roster))
	for _, tech := range roster {
		if ineligibilityReason(tech, required, now, opts) == "" {
			eligible = append(eligible, tech)
		}
	}
	return eligible
}

// ScoreTechnicians computes a weighted score, ETA, and human-readable
// justification for every technician in the roster, sorted by score
// descending. Ineligible technicians stay in the list with score 0 and a
// reason, so dispatchers can see why each one was passed over.
//
// completedToday maps technician ID to jobs completed since local midnight;
// missing entries count as zero.
func ScoreTechnicians(
	job domain.JobLocation,
	roster []*domain.TechnicianSnapshot,
	completedToday map[uuid.UUID]int,
	factors domain.ScoringFactors,
	now time.Time,
	opts ScoringOptions,
) ([]domain.TechnicianScore, error) {
	if job.Location == nil {
		return nil, apperrors.ErrInvalidJob
	}

	required := requiredSkills(job, factors)
	scores := make([]domain.TechnicianScore, 0, len(roster))

	for _, tech := range roster {
		entry := domain.TechnicianScore{
			TechID:             tech.ID,
			TechName:           tech.Name,
			JobsCompletedToday: completedToday[tech.ID],
		}

		var distanceMiles, ageMinutes float64
		if tech.HasFix() {
			meters := geo.Distance(
				tech.LastFix.Latitude, tech.LastFix.Longitude,
				job.Location.Latitude, job.Location.Longitude,
			)
			distanceMiles = meters / metersPerMile
			ageMinutes = tech.FixAge(now).Minutes()

			entry.DistanceMiles = math.Round(distanceMiles*10) / 10
			entry.ETAMinutes = int(math.Ceil(distanceMiles / assumedAvgSpeedMph * 60))
			entry.GpsAgeMinutes = int(math.Round(ageMinutes))
		}

		if reason := ineligibilityReason(tech, required, now, opts); reason != "" {
			entry.Reason = reason
			scores = append(scores, entry)
			continue
		}

		score := 0.0

		// Distance: 0 miles = 100 points, floor of 0 at 50 miles.
		distanceScore := math.Max(0, 100-distanceMiles*2)
		if factors.PrioritizeDistance {
			distanceScore *= 2
		}
		score += distanceScore

		// Performance: 5 points per job completed today.
		performanceScore := float64(entry.JobsCompletedToday) * 5
		if factors.PrioritizePerformance {
			performanceScore *= 2
		}
		score += performanceScore

		// Fresh GPS fixes earn up to 10 bonus points, zero past 30 minutes.
		score += math.Max(0, 10-ageMinutes/3)

		switch job.Priority {
		case domain.PriorityUrgent:
			score += 50
		case domain.PriorityHigh:
			score += 25
		}

		// Redundant with eligibility, but kept as an inspectable term.
		score += idleWorkloadBonus

		entry.Score = int(math.Round(score))
		entry.Eligible = true
		entry.Reason = buildReason(entry, job.Priority, ageMinutes, distanceMiles)
		scores = append(scores, entry)
	}

	// Score descending; exact ties break on technician ID so the order is
	// deterministic regardless of roster input order.
	slices.SortStableFunc(scores, func(a, b domain.TechnicianScore) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return strings.Compare(a.TechID.String(), b.TechID.String())
	})

	return scores, nil
}

func buildReason(entry domain.TechnicianScore, priority domain.JobPriority, ageMinutes, distanceMiles float64) string {
	var qualifiers []string
	if distanceMiles < closeRangeMiles {
		qualifiers = append(qualifiers, "closest available")
	}
	if entry.JobsCompletedToday > highPerformanceJobs {
		qualifiers = append(qualifiers, "high performance")
	}
	if ageMinutes < realTimeFixCutoff.Minutes() {
		qualifiers = append(qualifiers, "real-time location")
	}
	if priority == domain.PriorityUrgent || priority == domain.PriorityHigh {
		qualifiers = append(qualifiers, "priority job")
	}

	if len(qualifiers) == 0 {
		return "Available technician"
	}
	return "Best match: " + strings.Join(qualifiers, ", ")
}
