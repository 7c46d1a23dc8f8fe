package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	"github.com/oakline/fieldops-backend/internal/core/mocks"
	"github.com/oakline/fieldops-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type analyticsFixture struct {
	techRepo *mocks.MockTechnicianRepository
	jobRepo  *mocks.MockJobRepository
	gpsRepo  *mocks.MockGpsLogRepository
	svc      *services.AnalyticsService
}

func newAnalyticsFixture() *analyticsFixture {
	f := &analyticsFixture{
		techRepo: mocks.NewMockTechnicianRepository(),
		jobRepo:  mocks.NewMockJobRepository(),
		gpsRepo:  mocks.NewMockGpsLogRepository(),
	}
	f.svc = services.NewAnalyticsService(f.techRepo, f.jobRepo, f.gpsRepo).
		WithClock(func() time.Time { return testNow })
	return f
}

func (f *analyticsFixture) stub(accountID uuid.UUID, roster []*domain.TechnicianSnapshot, jobs, prevJobs []*domain.Job, samples []domain.GpsSample) {
	midnight := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, testNow.Location())
	length := testNow.Sub(midnight)

	f.techRepo.On("ListRoster", mock.Anything, accountID).Return(roster, nil)
	f.jobRepo.On("ListInWindow", mock.Anything, accountID, midnight, testNow).Return(jobs, nil)
	f.jobRepo.On("ListInWindow", mock.Anything, accountID, midnight.Add(-length), midnight).Return(prevJobs, nil)
	f.gpsRepo.On("ListWindow", mock.Anything, accountID, midnight, testNow).Return(samples, nil)
	f.gpsRepo.On("ListWindow", mock.Anything, accountID, testNow.Add(-time.Hour), testNow).Return(samples, nil)
}

func completedJob(accountID, techID uuid.UUID) *domain.Job {
	return &domain.Job{
		ID:         uuid.New(),
		AccountID:  accountID,
		Status:     domain.JobCompleted,
		Priority:   domain.PriorityNormal,
		AssigneeID: &techID,
		CreatedAt:  testNow.Add(-3 * time.Hour),
	}
}

func TestAnalyticsService_Aggregate(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("empty account yields zero KPIs without error", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.stub(accountID, []*domain.TechnicianSnapshot{}, []*domain.Job{}, []*domain.Job{}, []domain.GpsSample{})

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		assert.Zero(t, snap.KPIs.AvgJobsPerTech)
		assert.Zero(t, snap.KPIs.AvgResponseTimeMinutes)
		assert.Zero(t, snap.KPIs.UtilizationRate)
		assert.Zero(t, snap.KPIs.CoverageRadiusMiles)
		assert.Zero(t, snap.TechCount)
		assert.Zero(t, snap.TotalJobs)
		assert.Empty(t, snap.DistanceTraveled)
		assert.Len(t, snap.ActivityTimeline, 24)
	})

	t.Run("utilization counts en-route and on-job techs", func(t *testing.T) {
		f := newAnalyticsFixture()
		working := idleTech("Working", 39.78, -86.15, time.Minute)
		working.Status = domain.TechOnJob
		driving := idleTech("Driving", 39.79, -86.14, time.Minute)
		driving.Status = domain.TechEnRoute
		resting := idleTech("Resting", 39.80, -86.13, time.Minute)
		roster := []*domain.TechnicianSnapshot{working, driving, resting}

		f.stub(accountID, roster, []*domain.Job{}, []*domain.Job{}, []domain.GpsSample{})

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		assert.Equal(t, 67, snap.KPIs.UtilizationRate)
	})

	t.Run("avg jobs per tech trends against the prior window", func(t *testing.T) {
		f := newAnalyticsFixture()
		tech := idleTech("A", 39.78, -86.15, time.Minute)
		roster := []*domain.TechnicianSnapshot{tech}
		jobs := []*domain.Job{completedJob(accountID, tech.ID), completedJob(accountID, tech.ID)}
		prevJobs := []*domain.Job{completedJob(accountID, tech.ID)}

		f.stub(accountID, roster, jobs, prevJobs, []domain.GpsSample{})

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		assert.Equal(t, 2.0, snap.KPIs.AvgJobsPerTech)
		assert.Equal(t, domain.TrendUp, snap.KPIs.AvgJobsPerTechTrend)
	})

	t.Run("response time averages en-route jobs and drops outliers", func(t *testing.T) {
		f := newAnalyticsFixture()
		tech := idleTech("A", 39.78, -86.15, time.Minute)
		sched30 := testNow.Add(-30 * time.Minute)
		sched50 := testNow.Add(-50 * time.Minute)
		stale := testNow.Add(-48 * time.Hour)
		jobs := []*domain.Job{
			{ID: uuid.New(), Status: domain.JobEnRoute, AssigneeID: &tech.ID, ScheduledStart: &sched30},
			{ID: uuid.New(), Status: domain.JobEnRoute, AssigneeID: &tech.ID, ScheduledStart: &sched50},
			{ID: uuid.New(), Status: domain.JobEnRoute, AssigneeID: &tech.ID, ScheduledStart: &stale},
			{ID: uuid.New(), Status: domain.JobCompleted, AssigneeID: &tech.ID, ScheduledStart: &sched30},
		}

		f.stub(accountID, []*domain.TechnicianSnapshot{tech}, jobs, []*domain.Job{}, []domain.GpsSample{})

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		assert.Equal(t, 40, snap.KPIs.AvgResponseTimeMinutes)
	})

	t.Run("unassigned histogram counts missing assignee regardless of status", func(t *testing.T) {
		f := newAnalyticsFixture()
		tech := idleTech("A", 39.78, -86.15, time.Minute)
		jobs := []*domain.Job{
			{ID: uuid.New(), Status: domain.JobScheduled},
			{ID: uuid.New(), Status: domain.JobScheduled, AssigneeID: &tech.ID},
			{ID: uuid.New(), Status: domain.JobCompleted, AssigneeID: &tech.ID},
		}

		f.stub(accountID, []*domain.TechnicianSnapshot{tech}, jobs, []*domain.Job{}, []domain.GpsSample{})

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		assert.Equal(t, 1, snap.JobsByStatus.Unassigned)
		assert.Equal(t, 2, snap.JobsByStatus.Scheduled)
		assert.Equal(t, 1, snap.JobsByStatus.Completed)
	})

	t.Run("distance ranking discards jitter hops", func(t *testing.T) {
		f := newAnalyticsFixture()
		tech := idleTech("Rover", 39.7700, -86.1600, time.Minute)
		samples := []domain.GpsSample{
			{TechID: tech.ID, Latitude: 39.7700, Longitude: -86.1600, RecordedAt: testNow.Add(-50 * time.Minute)},
			{TechID: tech.ID, Latitude: 39.7790, Longitude: -86.1600, RecordedAt: testNow.Add(-40 * time.Minute)},
			// Teleport well past the jitter cutoff; must contribute nothing.
			{TechID: tech.ID, Latitude: 40.2000, Longitude: -86.9000, RecordedAt: testNow.Add(-30 * time.Minute)},
		}

		f.stub(accountID, []*domain.TechnicianSnapshot{tech}, []*domain.Job{}, []*domain.Job{}, samples)

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		require.Len(t, snap.DistanceTraveled, 1)
		// Only the ~1 km first hop counts.
		assert.Equal(t, "Rover", snap.DistanceTraveled[0].TechName)
		assert.InDelta(t, 0.6, snap.DistanceTraveled[0].Miles, 0.11)
	})

	t.Run("activity timeline buckets distinct techs by clock hour", func(t *testing.T) {
		f := newAnalyticsFixture()
		techA := idleTech("A", 39.78, -86.15, time.Minute)
		techB := idleTech("B", 39.79, -86.14, time.Minute)
		at := func(hour int) time.Time {
			return time.Date(testNow.Year(), testNow.Month(), testNow.Day(), hour, 10, 0, 0, time.UTC)
		}
		samples := []domain.GpsSample{
			{TechID: techA.ID, Latitude: 39.78, Longitude: -86.15, RecordedAt: at(9)},
			{TechID: techA.ID, Latitude: 39.78, Longitude: -86.15, RecordedAt: at(9)},
			{TechID: techB.ID, Latitude: 39.79, Longitude: -86.14, RecordedAt: at(9)},
			{TechID: techB.ID, Latitude: 39.79, Longitude: -86.14, RecordedAt: at(13)},
		}

		f.stub(accountID, []*domain.TechnicianSnapshot{techA, techB}, []*domain.Job{}, []*domain.Job{}, samples)

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		require.Len(t, snap.ActivityTimeline, 24)
		assert.Equal(t, 2, snap.ActivityTimeline[9].ActiveTechs)
		assert.Equal(t, 1, snap.ActivityTimeline[13].ActiveTechs)
		assert.Zero(t, snap.ActivityTimeline[3].ActiveTechs)
	})

	t.Run("completion rates per tech sorted by rate", func(t *testing.T) {
		f := newAnalyticsFixture()
		closer := idleTech("Closer", 39.78, -86.15, time.Minute)
		starter := idleTech("Starter", 39.79, -86.14, time.Minute)
		jobs := []*domain.Job{
			completedJob(accountID, closer.ID),
			completedJob(accountID, closer.ID),
			completedJob(accountID, starter.ID),
			{ID: uuid.New(), Status: domain.JobInProgress, AssigneeID: &starter.ID},
		}

		f.stub(accountID, []*domain.TechnicianSnapshot{starter, closer}, jobs, []*domain.Job{}, []domain.GpsSample{})

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeToday)

		require.NoError(t, err)
		require.Len(t, snap.CompletionRates, 2)
		assert.Equal(t, "Closer", snap.CompletionRates[0].TechName)
		assert.Equal(t, 100, snap.CompletionRates[0].Rate)
		assert.Equal(t, "Starter", snap.CompletionRates[1].TechName)
		assert.Equal(t, 50, snap.CompletionRates[1].Rate)
		assert.Equal(t, 2, snap.CompletionRates[1].Assigned)
	})

	t.Run("week and month windows precede now", func(t *testing.T) {
		f := newAnalyticsFixture()
		weekFrom := testNow.Add(-7 * 24 * time.Hour)
		f.techRepo.On("ListRoster", mock.Anything, accountID).Return([]*domain.TechnicianSnapshot{}, nil)
		f.jobRepo.On("ListInWindow", mock.Anything, accountID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]*domain.Job{}, nil)
		f.gpsRepo.On("ListWindow", mock.Anything, accountID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]domain.GpsSample{}, nil)

		snap, err := f.svc.Aggregate(ctx, accountID, domain.RangeWeek)

		require.NoError(t, err)
		assert.Equal(t, weekFrom, snap.Window.From)
		assert.Equal(t, testNow, snap.Window.To)
	})
}
