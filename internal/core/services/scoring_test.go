package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 12, 14, 30, 0, 0, time.UTC)

func idleTech(name string, lat, lon float64, fixAge time.Duration) *domain.TechnicianSnapshot {
	return &domain.TechnicianSnapshot{
		ID:     uuid.New(),
		Name:   name,
		Status: domain.TechIdle,
		LastFix: &domain.LocationFix{
			Latitude:   lat,
			Longitude:  lon,
			RecordedAt: testNow.Add(-fixAge),
		},
	}
}

func downtownJob(priority domain.JobPriority) domain.JobLocation {
	return domain.JobLocation{
		ID:       uuid.New(),
		Location: &domain.Coordinates{Latitude: 39.77, Longitude: -86.16},
		Priority: priority,
	}
}

func TestEligibleTechnicians(t *testing.T) {
	job := downtownJob(domain.PriorityNormal)

	t.Run("idle tech with fresh fix is eligible", func(t *testing.T) {
		tech := idleTech("A", 39.78, -86.15, 2*time.Minute)
		eligible := services.EligibleTechnicians(job, []*domain.TechnicianSnapshot{tech}, testNow, services.ScoringOptions{})
		assert.Len(t, eligible, 1)
	})

	t.Run("non-idle tech is excluded", func(t *testing.T) {
		tech := idleTech("A", 39.78, -86.15, 2*time.Minute)
		tech.Status = domain.TechOnJob
		eligible := services.EligibleTechnicians(job, []*domain.TechnicianSnapshot{tech}, testNow, services.ScoringOptions{})
		assert.Empty(t, eligible)
	})

	t.Run("stale fix is excluded", func(t *testing.T) {
		tech := idleTech("A", 39.78, -86.15, 31*time.Minute)
		eligible := services.EligibleTechnicians(job, []*domain.TechnicianSnapshot{tech}, testNow, services.ScoringOptions{})
		assert.Empty(t, eligible)
	})

	t.Run("missing fix is excluded", func(t *testing.T) {
		tech := &domain.TechnicianSnapshot{ID: uuid.New(), Name: "A", Status: domain.TechIdle}
		eligible := services.EligibleTechnicians(job, []*domain.TechnicianSnapshot{tech}, testNow, services.ScoringOptions{})
		assert.Empty(t, eligible)
	})

	t.Run("eligibility is monotonic under status and fix aging", func(t *testing.T) {
		tech := idleTech("A", 39.78, -86.15, 2*time.Minute)
		roster := []*domain.TechnicianSnapshot{tech}

		before := services.EligibleTechnicians(job, roster, testNow, services.ScoringOptions{})
		require.Len(t, before, 1)

		// Aging the fix past the cutoff can only remove, never add.
		after := services.EligibleTechnicians(job, roster, testNow.Add(29*time.Minute), services.ScoringOptions{})
		assert.Empty(t, after)

		tech.Status = domain.TechEnRoute
		after = services.EligibleTechnicians(job, roster, testNow, services.ScoringOptions{})
		assert.Empty(t, after)
	})

	t.Run("skill matching is a hard filter when enforced", func(t *testing.T) {
		skilled := idleTech("A", 39.78, -86.15, 2*time.Minute)
		skilled.Skills = []string{"hvac", "electrical"}
		unskilled := idleTech("B", 39.78, -86.15, 2*time.Minute)

		skillJob := downtownJob(domain.PriorityNormal)
		skillJob.RequiredSkills = []string{"hvac"}
		roster := []*domain.TechnicianSnapshot{skilled, unskilled}

		eligible := services.EligibleTechnicians(skillJob, roster, testNow, services.ScoringOptions{EnforceSkills: true})
		require.Len(t, eligible, 1)
		assert.Equal(t, skilled.ID, eligible[0].ID)

		// Gate off: the reserved filter must not apply.
		eligible = services.EligibleTechnicians(skillJob, roster, testNow, services.ScoringOptions{})
		assert.Len(t, eligible, 2)
	})
}

func TestScoreTechnicians(t *testing.T) {
	t.Run("missing job coordinates is a hard failure", func(t *testing.T) {
		job := domain.JobLocation{ID: uuid.New()}
		tech := idleTech("A", 39.78, -86.15, 2*time.Minute)

		_, err := services.ScoreTechnicians(job, []*domain.TechnicianSnapshot{tech}, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidJob)
	})

	t.Run("closer and fresher tech ranks first", func(t *testing.T) {
		techA := idleTech("Tech A", 39.78, -86.15, 2*time.Minute)
		techB := idleTech("Tech B", 39.90, -86.00, 25*time.Minute)
		roster := []*domain.TechnicianSnapshot{techB, techA}

		scores, err := services.ScoreTechnicians(downtownJob(domain.PriorityNormal), roster, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		require.Len(t, scores, 2)

		assert.Equal(t, techA.ID, scores[0].TechID)
		assert.True(t, scores[0].Eligible)
		assert.True(t, scores[1].Eligible)
		assert.Greater(t, scores[0].Score, scores[1].Score)
		assert.Contains(t, scores[0].Reason, "closest available")
		assert.Contains(t, scores[0].Reason, "real-time location")
	})

	t.Run("on-job tech scores zero with status reason", func(t *testing.T) {
		techA := idleTech("Tech A", 39.78, -86.15, 2*time.Minute)
		techC := idleTech("Tech C", 39.78, -86.15, 2*time.Minute)
		techC.Status = domain.TechOnJob
		roster := []*domain.TechnicianSnapshot{techA, techC}

		job := downtownJob(domain.PriorityNormal)
		scores, err := services.ScoreTechnicians(job, roster, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		require.Len(t, scores, 2)

		eligible := services.EligibleTechnicians(job, roster, testNow, services.ScoringOptions{})
		require.Len(t, eligible, 1)
		assert.Equal(t, techA.ID, eligible[0].ID)

		assert.Equal(t, techC.ID, scores[1].TechID)
		assert.Zero(t, scores[1].Score)
		assert.False(t, scores[1].Eligible)
		assert.Contains(t, scores[1].Reason, "on job")
	})

	t.Run("stale fix scores zero with age reason", func(t *testing.T) {
		tech := idleTech("A", 39.78, -86.15, 45*time.Minute)
		scores, err := services.ScoreTechnicians(downtownJob(domain.PriorityNormal), []*domain.TechnicianSnapshot{tech}, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		assert.Zero(t, scores[0].Score)
		assert.Equal(t, "GPS data too old (>30 min)", scores[0].Reason)
	})

	t.Run("missing fix scores zero without failing the call", func(t *testing.T) {
		tech := &domain.TechnicianSnapshot{ID: uuid.New(), Name: "A", Status: domain.TechIdle}
		scores, err := services.ScoreTechnicians(downtownJob(domain.PriorityNormal), []*domain.TechnicianSnapshot{tech}, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		assert.Zero(t, scores[0].Score)
		assert.Equal(t, "No GPS data available", scores[0].Reason)
	})

	t.Run("urgent priority adds a flat 50 points", func(t *testing.T) {
		tech := idleTech("A", 39.90, -86.00, 10*time.Minute)
		roster := []*domain.TechnicianSnapshot{tech}

		normal, err := services.ScoreTechnicians(downtownJob(domain.PriorityNormal), roster, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		urgent, err := services.ScoreTechnicians(downtownJob(domain.PriorityUrgent), roster, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)

		assert.Equal(t, normal[0].Score+50, urgent[0].Score)
		assert.Contains(t, urgent[0].Reason, "priority job")
	})

	t.Run("high priority adds a flat 25 points", func(t *testing.T) {
		tech := idleTech("A", 39.90, -86.00, 10*time.Minute)
		roster := []*domain.TechnicianSnapshot{tech}

		normal, err := services.ScoreTechnicians(downtownJob(domain.PriorityNormal), roster, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		high, err := services.ScoreTechnicians(downtownJob(domain.PriorityHigh), roster, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)

		assert.Equal(t, normal[0].Score+25, high[0].Score)
	})

	t.Run("prioritize distance doubles the distance term", func(t *testing.T) {
		near := idleTech("Near", 39.78, -86.15, 20*time.Minute)
		far := idleTech("Far", 40.2, -86.9, 2*time.Minute)
		roster := []*domain.TechnicianSnapshot{far, near}

		weighted, err := services.ScoreTechnicians(downtownJob(domain.PriorityNormal), roster, nil, domain.ScoringFactors{PrioritizeDistance: true}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		assert.Equal(t, near.ID, weighted[0].TechID)
		assert.Greater(t, weighted[0].Score-weighted[1].Score, 100)
	})

	t.Run("performance factor rewards completed jobs", func(t *testing.T) {
		producer := idleTech("Producer", 39.90, -86.00, 10*time.Minute)
		idle := idleTech("Idle", 39.90, -86.00, 10*time.Minute)
		completed := map[uuid.UUID]int{producer.ID: 5}
		roster := []*domain.TechnicianSnapshot{idle, producer}

		scores, err := services.ScoreTechnicians(downtownJob(domain.PriorityNormal), roster, completed, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		assert.Equal(t, producer.ID, scores[0].TechID)
		assert.Equal(t, 25, scores[0].Score-scores[1].Score)
		assert.Contains(t, scores[0].Reason, "high performance")
	})

	t.Run("scoring is deterministic and idempotent", func(t *testing.T) {
		roster := []*domain.TechnicianSnapshot{
			idleTech("A", 39.78, -86.15, 2*time.Minute),
			idleTech("B", 39.90, -86.00, 25*time.Minute),
			idleTech("C", 39.80, -86.20, 10*time.Minute),
		}
		job := downtownJob(domain.PriorityHigh)

		first, err := services.ScoreTechnicians(job, roster, nil, domain.ScoringFactors{PrioritizeDistance: true}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		second, err := services.ScoreTechnicians(job, roster, nil, domain.ScoringFactors{PrioritizeDistance: true}, testNow, services.ScoringOptions{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("exact ties break on technician id regardless of roster order", func(t *testing.T) {
		techA := idleTech("A", 39.78, -86.15, 2*time.Minute)
		techB := idleTech("B", 39.78, -86.15, 2*time.Minute)
		job := downtownJob(domain.PriorityNormal)

		forward, err := services.ScoreTechnicians(job, []*domain.TechnicianSnapshot{techA, techB}, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		reversed, err := services.ScoreTechnicians(job, []*domain.TechnicianSnapshot{techB, techA}, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)

		assert.Equal(t, forward[0].TechID, reversed[0].TechID)
		assert.Equal(t, forward[1].TechID, reversed[1].TechID)
	})

	t.Run("never assigns a positive score to an ineligible tech", func(t *testing.T) {
		roster := []*domain.TechnicianSnapshot{
			idleTech("Stale", 39.78, -86.15, 2*time.Hour),
			{ID: uuid.New(), Name: "NoFix", Status: domain.TechIdle},
		}
		busy := idleTech("Busy", 39.78, -86.15, time.Minute)
		busy.Status = domain.TechEnRoute
		roster = append(roster, busy)

		scores, err := services.ScoreTechnicians(downtownJob(domain.PriorityUrgent), roster, nil, domain.ScoringFactors{}, testNow, services.ScoringOptions{})
		require.NoError(t, err)
		for _, sc := range scores {
			assert.False(t, sc.Eligible)
			assert.Zero(t, sc.Score)
		}
	})
}
