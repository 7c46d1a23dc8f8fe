package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeRange selects the analytics window at the API boundary.
type TimeRange string

const (
	RangeToday TimeRange = "today"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

// TrendDirection compares a KPI against the immediately preceding window.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TimeWindow is the half-open interval the aggregator ran over.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// FleetKPIs is the headline KPI set of an analytics snapshot.
type FleetKPIs struct {
	AvgJobsPerTech         float64
	AvgJobsPerTechTrend    TrendDirection
	AvgResponseTimeMinutes int
	UtilizationRate        int
	CoverageRadiusMiles    float64
}

// JobStatusCounts is the jobs-by-status histogram over the window.
type JobStatusCounts struct {
	Unassigned int
	Scheduled  int
	EnRoute    int
	InProgress int
	Completed  int
}

// HourActivity is one clock-hour bucket of the activity timeline.
type HourActivity struct {
	Hour        int
	ActiveTechs int
}

// TechDistance is one entry of the distance-traveled ranking.
type TechDistance struct {
	TechID   uuid.UUID
	TechName string
	Miles    float64
}

// TechCompletionRate is one entry of the completion-rate ranking.
type TechCompletionRate struct {
	TechID    uuid.UUID
	TechName  string
	Rate      int
	Completed int
	Assigned  int
}

// AnalyticsSnapshot is the derived fleet report for one time window.
// Computed fresh per request and never cached beyond it.
type AnalyticsSnapshot struct {
	KPIs             FleetKPIs
	JobsByStatus     JobStatusCounts
	ActivityTimeline []HourActivity
	DistanceTraveled []TechDistance
	CompletionRates  []TechCompletionRate
	Window           TimeWindow
	TechCount        int
	TotalJobs        int
}
