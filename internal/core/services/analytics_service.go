package services

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	"github.com/oakline/fieldops-backend/internal/core/geo"
	"github.com/oakline/fieldops-backend/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const (
	// gpsJitterCutoffMeters drops single hops that can only be GPS noise
	// from the distance-traveled sums.
	gpsJitterCutoffMeters = 10000.0

	// responseTimeOutlierMinutes guards the response-time average against
	// clock skew and stale data.
	responseTimeOutlierMinutes = 1440.0

	distanceRankingSize = 10
)

// AnalyticsService batch-processes historical GPS logs and job records into
// fleet KPIs and per-technician breakdowns. Stateless: every call computes a
// fresh snapshot from a fixed number of batched reads.
type AnalyticsService struct {
	techRepo ports.TechnicianRepository
	jobRepo  ports.JobRepository
	gpsRepo  ports.GpsLogRepository
	now      func() time.Time
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(
	techRepo ports.TechnicianRepository,
	jobRepo ports.JobRepository,
	gpsRepo ports.GpsLogRepository,
) *AnalyticsService {
	return &AnalyticsService{
		techRepo: techRepo,
		jobRepo:  jobRepo,
		gpsRepo:  gpsRepo,
		now:      time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// Aggregate computes the analytics snapshot for one account and time range.
// Empty inputs yield zero-valued KPIs, never an error.
func (s *AnalyticsService) Aggregate(ctx context.Context, accountID uuid.UUID, timeRange domain.TimeRange) (*domain.AnalyticsSnapshot, error) {
	now := s.now()
	window, prevWindow := analyticsWindows(timeRange, now)

	// One batched read per entity type per window, issued concurrently.
	// Latency stays bounded regardless of fleet size.
	var (
		roster        []*domain.TechnicianSnapshot
		jobs          []*domain.Job
		prevJobs      []*domain.Job
		windowSamples []domain.GpsSample
		recentSamples []domain.GpsSample
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roster, err = s.techRepo.ListRoster(gctx, accountID)
		return err
	})
	g.Go(func() (err error) {
		jobs, err = s.jobRepo.ListInWindow(gctx, accountID, window.From, window.To)
		return err
	})
	g.Go(func() (err error) {
		prevJobs, err = s.jobRepo.ListInWindow(gctx, accountID, prevWindow.From, prevWindow.To)
		return err
	})
	g.Go(func() (err error) {
		windowSamples, err = s.gpsRepo.ListWindow(gctx, accountID, window.From, window.To)
		return err
	})
	g.Go(func() (err error) {
		recentSamples, err = s.gpsRepo.ListWindow(gctx, accountID, now.Add(-time.Hour), now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	techCount := len(roster)
	completedCount := countCompleted(jobs)

	avgJobsPerTech := 0.0
	prevAvgJobsPerTech := 0.0
	if techCount > 0 {
		avgJobsPerTech = float64(completedCount) / float64(techCount)
		prevAvgJobsPerTech = float64(countCompleted(prevJobs)) / float64(techCount)
	}

	return &domain.AnalyticsSnapshot{
		KPIs: domain.FleetKPIs{
			AvgJobsPerTech:         math.Round(avgJobsPerTech*10) / 10,
			AvgJobsPerTechTrend:    trendDirection(avgJobsPerTech, prevAvgJobsPerTech),
			AvgResponseTimeMinutes: avgResponseTimeMinutes(jobs, now),
			UtilizationRate:        utilizationRate(roster),
			CoverageRadiusMiles:    coverageRadiusMiles(recentSamples),
		},
		JobsByStatus:     jobsByStatus(jobs),
		ActivityTimeline: activityTimeline(windowSamples),
		DistanceTraveled: distanceTraveled(windowSamples, roster),
		CompletionRates:  completionRates(roster, jobs),
		Window:           window,
		TechCount:        techCount,
		TotalJobs:        len(jobs),
	}, nil
}

// analyticsWindows resolves a time range into the current window and the
// equal-length immediately preceding one used for trend comparison.
func analyticsWindows(timeRange domain.TimeRange, now time.Time) (domain.TimeWindow, domain.TimeWindow) {
	var from time.Time
	switch timeRange {
	case domain.RangeWeek:
		from = now.Add(-7 * 24 * time.Hour)
	case domain.RangeMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	window := domain.TimeWindow{From: from, To: now}
	length := now.Sub(from)
	prev := domain.TimeWindow{From: from.Add(-length), To: from}
	return window, prev
}

func countCompleted(jobs []*domain.Job) int {
	n := 0
	for _, j := range jobs {
		if j.Status == domain.JobCompleted {
			n++
		}
	}
	return n
}

// trendDirection compares against the prior window with a 5% dead band.
func trendDirection(current, previous float64) domain.TrendDirection {
	switch {
	case current > previous*1.05:
		return domain.TrendUp
	case current < previous*0.95:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}

// avgResponseTimeMinutes averages (now - scheduledStart) over jobs currently
// en route and scheduled within the last 24 hours. Negative and >24h values
// are discarded as clock skew or stale data.
func avgResponseTimeMinutes(jobs []*domain.Job, now time.Time) int {
	total := 0.0
	count := 0
	for _, j := range jobs {
		if j.Status != domain.JobEnRoute || j.ScheduledStart == nil {
			continue
		}
		minutes := now.Sub(*j.ScheduledStart).Minutes()
		if minutes > 0 && minutes < responseTimeOutlierMinutes {
			total += minutes
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(total / float64(count)))
}

// utilizationRate is the percentage of the roster currently active
// (en route or on a job).
func utilizationRate(roster []*domain.TechnicianSnapshot) int {
	if len(roster) == 0 {
		return 0
	}
	active := 0
	for _, t := range roster {
		if t.Status == domain.TechEnRoute || t.Status == domain.TechOnJob {
			active++
		}
	}
	return int(math.Round(float64(active) / float64(len(roster)) * 100))
}

// coverageRadiusMiles is the max haversine distance from the centroid of
// the last hour's samples to any sample, in miles. A cheap proxy for fleet
// spread, not a minimum bounding circle.
func coverageRadiusMiles(samples []domain.GpsSample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sumLat, sumLon float64
	for _, s := range samples {
		sumLat += s.Latitude
		sumLon += s.Longitude
	}
	centerLat := sumLat / float64(len(samples))
	centerLon := sumLon / float64(len(samples))

	maxMeters := 0.0
	for _, s := range samples {
		d := geo.Distance(centerLat, centerLon, s.Latitude, s.Longitude)
		if d > maxMeters {
			maxMeters = d
		}
	}

	return math.Round(maxMeters/metersPerMile*10) / 10
}

// jobsByStatus builds the status histogram. Unassigned counts jobs with no
// assignee regardless of status, matching the dispatcher board.
func jobsByStatus(jobs []*domain.Job) domain.JobStatusCounts {
	var counts domain.JobStatusCounts
	for _, j := range jobs {
		if !j.IsAssigned() {
			counts.Unassigned++
		}
		switch j.Status {
		case domain.JobScheduled:
			counts.Scheduled++
		case domain.JobEnRoute:
			counts.EnRoute++
		case domain.JobInProgress:
			counts.InProgress++
		case domain.JobCompleted:
			counts.Completed++
		}
	}
	return counts
}

// activityTimeline buckets GPS samples into a fixed 24-slot clock-hour
// histogram of distinct active technicians. Single pass over the batch with
// an in-memory index; never one query per hour.
func activityTimeline(samples []domain.GpsSample) []domain.HourActivity {
	hourly := make(map[int]map[uuid.UUID]struct{})
	for _, s := range samples {
		hour := s.RecordedAt.Hour()
		if hourly[hour] == nil {
			hourly[hour] = make(map[uuid.UUID]struct{})
		}
		hourly[hour][s.TechID] = struct{}{}
	}

	timeline := make([]domain.HourActivity, 24)
	for hour := 0; hour < 24; hour++ {
		timeline[hour] = domain.HourActivity{
			Hour:        hour,
			ActiveTechs: len(hourly[hour]),
		}
	}
	return timeline
}

// distanceTraveled sums consecutive-sample hops per technician, discarding
// any single hop of 10 km or more as GPS jitter. Returns the top 10 by
// distance descending.
func distanceTraveled(samples []domain.GpsSample, roster []*domain.TechnicianSnapshot) []domain.TechDistance {
	byTech := make(map[uuid.UUID][]domain.GpsSample)
	for _, s := range samples {
		byTech[s.TechID] = append(byTech[s.TechID], s)
	}

	names := make(map[uuid.UUID]string, len(roster))
	for _, t := range roster {
		names[t.ID] = t.Name
	}

	ranking := make([]domain.TechDistance, 0, len(byTech))
	for techID, techSamples := range byTech {
		slices.SortStableFunc(techSamples, func(a, b domain.GpsSample) int {
			return a.RecordedAt.Compare(b.RecordedAt)
		})

		totalMeters := 0.0
		for i := 1; i < len(techSamples); i++ {
			prev, curr := techSamples[i-1], techSamples[i]
			hop := geo.Distance(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)
			if hop < gpsJitterCutoffMeters {
				totalMeters += hop
			}
		}

		name := names[techID]
		if name == "" {
			name = "Unknown"
		}
		ranking = append(ranking, domain.TechDistance{
			TechID:   techID,
			TechName: name,
			Miles:    math.Round(totalMeters/metersPerMile*10) / 10,
		})
	}

	slices.SortStableFunc(ranking, func(a, b domain.TechDistance) int {
		if a.Miles != b.Miles {
			if b.Miles > a.Miles {
				return 1
			}
			return -1
		}
		return strings.Compare(a.TechID.String(), b.TechID.String())
	})

	if len(ranking) > distanceRankingSize {
		ranking = ranking[:distanceRankingSize]
	}
	return ranking
}

// completionRates computes per-technician completed/assigned percentages
// over the window's jobs, sorted by rate descending.
func completionRates(roster []*domain.TechnicianSnapshot, jobs []*domain.Job) []domain.TechCompletionRate {
	rates := make([]domain.TechCompletionRate, 0, len(roster))
	for _, tech := range roster {
		assigned := 0
		completed := 0
		for _, j := range jobs {
			if j.AssigneeID == nil || *j.AssigneeID != tech.ID {
				continue
			}
			assigned++
			if j.Status == domain.JobCompleted {
				completed++
			}
		}

		rate := 0
		if assigned > 0 {
			rate = int(math.Round(float64(completed) / float64(assigned) * 100))
		}
		rates = append(rates, domain.TechCompletionRate{
			TechID:    tech.ID,
			TechName:  tech.Name,
			Rate:      rate,
			Completed: completed,
			Assigned:  assigned,
		})
	}

	slices.SortStableFunc(rates, func(a, b domain.TechCompletionRate) int {
		if a.Rate != b.Rate {
			return b.Rate - a.Rate
		}
		return strings.Compare(a.TechID.String(), b.TechID.String())
	})
	return rates
}
