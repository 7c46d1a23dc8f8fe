package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/oakline/fieldops-backend/internal/adapters/primary/http/middleware"
	"github.com/oakline/fieldops-backend/internal/adapters/primary/validation"
	"github.com/oakline/fieldops-backend/internal/auth"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/navigation"
	"github.com/oakline/fieldops-backend/internal/core/ports"
)

// DispatchHandler handles HTTP requests for the dispatch board
type DispatchHandler struct {
	dispatchService  ports.DispatchService
	analyticsService ports.AnalyticsService
	errorHandler     *ErrorHandler
	logger           *slog.Logger
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(
	dispatchService ports.DispatchService,
	analyticsService ports.AnalyticsService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *DispatchHandler {
	return &DispatchHandler{
		dispatchService:  dispatchService,
		analyticsService: analyticsService,
		errorHandler:     errorHandler,
		logger:           logger.With("handler", "dispatch"),
	}
}

// Router sets up a new chi Router for all dispatch-related routes.
func (h *DispatchHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all dispatch endpoints.
func (h *DispatchHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auto-assign", h.HandleAutoAssign)
	r.Get("/score/{jobID}", h.HandleScoreJob)
	r.Get("/technicians", h.HandleListTechnicians)
	r.Get("/technicians/{techID}", h.HandleTechnicianDetail)
	r.Get("/stats", h.HandleStats)
}

// --- Request/Response DTOs ---

// ScoringFactorsRequest defines the optional scoring tuning in a request
type ScoringFactorsRequest struct {
	PrioritizeDistance    bool     `json:"prioritizeDistance"`
	PrioritizePerformance bool     `json:"prioritizePerformance"`
	RequireSkills         []string `json:"requireSkills"`
}

func (r *ScoringFactorsRequest) toDomain() domain.ScoringFactors {
	if r == nil {
		return domain.DefaultScoringFactors()
	}
	return domain.ScoringFactors{
		PrioritizeDistance:    r.PrioritizeDistance,
		PrioritizePerformance: r.PrioritizePerformance,
		RequireSkills:         r.RequireSkills,
	}
}

// AutoAssignRequest defines the expected JSON body for an assignment attempt
type AutoAssignRequest struct {
	JobID   string                 `json:"jobId"`
	DryRun  bool                   `json:"dryRun"`
	Factors *ScoringFactorsRequest `json:"factors"`
}

// Validate validates the auto-assign request
func (r *AutoAssignRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("jobId", r.JobID).
		UUID("jobId", r.JobID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TechnicianScoreDTO defines the JSON response for one scored technician.
type TechnicianScoreDTO struct {
	TechId             string  `json:"techId"`
	TechName           string  `json:"techName"`
	DistanceMiles      float64 `json:"distanceMiles"`
	EtaMinutes         int     `json:"etaMinutes"`
	Score              int     `json:"score"`
	Eligible           bool    `json:"eligible"`
	Reason             string  `json:"reason"`
	GpsAgeMinutes      int     `json:"gpsAgeMinutes"`
	JobsCompletedToday int     `json:"jobsCompletedToday"`
}

func toScoreDTO(score domain.TechnicianScore) TechnicianScoreDTO {
	return TechnicianScoreDTO{
		TechId:             score.TechID.String(),
		TechName:           score.TechName,
		DistanceMiles:      score.DistanceMiles,
		EtaMinutes:         score.ETAMinutes,
		Score:              score.Score,
		Eligible:           score.Eligible,
		Reason:             score.Reason,
		GpsAgeMinutes:      score.GpsAgeMinutes,
		JobsCompletedToday: score.JobsCompletedToday,
	}
}

func toScoreDTOs(scores []domain.TechnicianScore) []TechnicianScoreDTO {
	response := make([]TechnicianScoreDTO, 0, len(scores))
	for _, score := range scores {
		response = append(response, toScoreDTO(score))
	}
	return response
}

// AssignmentResultDTO defines the JSON response for an assignment attempt.
type AssignmentResultDTO struct {
	Assignment    TechnicianScoreDTO   `json:"assignment"`
	Alternatives  []TechnicianScoreDTO `json:"alternatives"`
	DryRun        bool                 `json:"dryRun"`
	EligibleCount int                  `json:"eligibleCount"`
	TotalCount    int                  `json:"totalCount"`
}

func toAssignmentResultDTO(result *domain.AssignmentResult) AssignmentResultDTO {
	return AssignmentResultDTO{
		Assignment:    toScoreDTO(result.Assignment),
		Alternatives:  toScoreDTOs(result.Alternatives),
		DryRun:        result.DryRun,
		EligibleCount: result.EligibleCount,
		TotalCount:    result.TotalCount,
	}
}

// TechnicianDTO defines the JSON response for a roster entry on the
// dispatch map.
type TechnicianDTO struct {
	Id      string      `json:"id"`
	Name    string      `json:"name"`
	Status  string      `json:"status"`
	Skills  []string    `json:"skills,omitempty"`
	LastFix *LastFixDTO `json:"lastFix"`
	MapsUrl string      `json:"mapsUrl,omitempty"`
}

// LastFixDTO is a technician's last known position.
type LastFixDTO struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	RecordedAt string  `json:"recordedAt"`
}

func toTechnicianDTO(tech *domain.TechnicianSnapshot) TechnicianDTO {
	dto := TechnicianDTO{
		Id:     tech.ID.String(),
		Name:   tech.Name,
		Status: string(tech.Status),
		Skills: tech.Skills,
	}
	if tech.LastFix != nil {
		dto.LastFix = &LastFixDTO{
			Latitude:   tech.LastFix.Latitude,
			Longitude:  tech.LastFix.Longitude,
			RecordedAt: tech.LastFix.RecordedAt.Format(time.RFC3339),
		}
		dto.MapsUrl = navigation.URL(tech.LastFix.Latitude, tech.LastFix.Longitude)
	}
	return dto
}

// TechnicianDetailDTO is a roster entry with the day's workload, for the
// dispatch map's technician panel.
type TechnicianDetailDTO struct {
	TechnicianDTO
	JobsCompletedToday int `json:"jobsCompletedToday"`
}

func toTechnicianDetailDTO(detail *domain.TechnicianDetail) TechnicianDetailDTO {
	return TechnicianDetailDTO{
		TechnicianDTO:      toTechnicianDTO(&detail.TechnicianSnapshot),
		JobsCompletedToday: detail.JobsCompletedToday,
	}
}

func toTechnicianDTOs(roster []*domain.TechnicianSnapshot) []TechnicianDTO {
	response := make([]TechnicianDTO, 0, len(roster))
	for _, tech := range roster {
		response = append(response, toTechnicianDTO(tech))
	}
	return response
}

// AnalyticsSnapshotDTO defines the JSON response for dispatch stats.
type AnalyticsSnapshotDTO struct {
	Kpis             FleetKPIsDTO            `json:"kpis"`
	JobsByStatus     JobStatusCountsDTO      `json:"jobsByStatus"`
	ActivityTimeline []HourActivityDTO       `json:"activityTimeline"`
	DistanceTraveled []TechDistanceDTO       `json:"distanceTraveled"`
	CompletionRates  []TechCompletionRateDTO `json:"completionRates"`
	WindowFrom       string                  `json:"windowFrom"`
	WindowTo         string                  `json:"windowTo"`
	TechCount        int                     `json:"techCount"`
	TotalJobs        int                     `json:"totalJobs"`
}

// FleetKPIsDTO is the headline KPI block.
type FleetKPIsDTO struct {
	AvgJobsPerTech         float64 `json:"avgJobsPerTech"`
	AvgJobsPerTechTrend    string  `json:"avgJobsPerTechTrend"`
	AvgResponseTimeMinutes int     `json:"avgResponseTimeMinutes"`
	UtilizationRate        int     `json:"utilizationRate"`
	CoverageRadiusMiles    float64 `json:"coverageRadiusMiles"`
}

// JobStatusCountsDTO is the jobs-by-status histogram.
type JobStatusCountsDTO struct {
	Unassigned int `json:"unassigned"`
	Scheduled  int `json:"scheduled"`
	EnRoute    int `json:"enRoute"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// HourActivityDTO is one clock-hour activity bucket.
type HourActivityDTO struct {
	Hour        int `json:"hour"`
	ActiveTechs int `json:"activeTechs"`
}

// TechDistanceDTO is one distance-ranking entry.
type TechDistanceDTO struct {
	TechId   string  `json:"techId"`
	TechName string  `json:"techName"`
	Miles    float64 `json:"miles"`
}

// TechCompletionRateDTO is one completion-rate entry.
type TechCompletionRateDTO struct {
	TechId    string `json:"techId"`
	TechName  string `json:"techName"`
	Rate      int    `json:"rate"`
	Completed int    `json:"completed"`
	Assigned  int    `json:"assigned"`
}

func toAnalyticsSnapshotDTO(snap *domain.AnalyticsSnapshot) AnalyticsSnapshotDTO {
	timeline := make([]HourActivityDTO, 0, len(snap.ActivityTimeline))
	for _, h := range snap.ActivityTimeline {
		timeline = append(timeline, HourActivityDTO{Hour: h.Hour, ActiveTechs: h.ActiveTechs})
	}

	distances := make([]TechDistanceDTO, 0, len(snap.DistanceTraveled))
	for _, d := range snap.DistanceTraveled {
		distances = append(distances, TechDistanceDTO{
			TechId:   d.TechID.String(),
			TechName: d.TechName,
			Miles:    d.Miles,
		})
	}

	rates := make([]TechCompletionRateDTO, 0, len(snap.CompletionRates))
	for _, cr := range snap.CompletionRates {
		rates = append(rates, TechCompletionRateDTO{
			TechId:    cr.TechID.String(),
			TechName:  cr.TechName,
			Rate:      cr.Rate,
			Completed: cr.Completed,
			Assigned:  cr.Assigned,
		})
	}

	return AnalyticsSnapshotDTO{
		Kpis: FleetKPIsDTO{
			AvgJobsPerTech:         snap.KPIs.AvgJobsPerTech,
			AvgJobsPerTechTrend:    string(snap.KPIs.AvgJobsPerTechTrend),
			AvgResponseTimeMinutes: snap.KPIs.AvgResponseTimeMinutes,
			UtilizationRate:        snap.KPIs.UtilizationRate,
			CoverageRadiusMiles:    snap.KPIs.CoverageRadiusMiles,
		},
		JobsByStatus: JobStatusCountsDTO{
			Unassigned: snap.JobsByStatus.Unassigned,
			Scheduled:  snap.JobsByStatus.Scheduled,
			EnRoute:    snap.JobsByStatus.EnRoute,
			InProgress: snap.JobsByStatus.InProgress,
			Completed:  snap.JobsByStatus.Completed,
		},
		ActivityTimeline: timeline,
		DistanceTraveled: distances,
		CompletionRates:  rates,
		WindowFrom:       snap.Window.From.Format(time.RFC3339),
		WindowTo:         snap.Window.To.Format(time.RFC3339),
		TechCount:        snap.TechCount,
		TotalJobs:        snap.TotalJobs,
	}
}

// --- Handlers ---

// HandleAutoAssign handles POST /dispatch/auto-assign
func (h *DispatchHandler) HandleAutoAssign(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[AutoAssignRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid job ID"))
		return
	}

	result, err := h.dispatchService.Assign(r.Context(), ports.AssignParams{
		AccountID: claims.AccountID,
		JobID:     jobID,
		Factors:   req.Factors.toDomain(),
		DryRun:    req.DryRun,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if !result.DryRun {
		h.logger.Info("job assigned",
			"job_id", jobID,
			"tech_id", result.Assignment.TechID,
			"score", result.Assignment.Score,
			"user_id", claims.UserID,
		)
	}

	WriteSuccess(w, toAssignmentResultDTO(result))
}

// HandleScoreJob handles GET /dispatch/score/{jobID}
func (h *DispatchHandler) HandleScoreJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid job ID"))
		return
	}

	factors := domain.ScoringFactors{
		PrioritizeDistance:    validation.ParseBoolQueryParam(r, "prioritizeDistance", true),
		PrioritizePerformance: validation.ParseBoolQueryParam(r, "prioritizePerformance", false),
	}

	scores, err := h.dispatchService.ScoreJob(r.Context(), claims.AccountID, jobID, factors)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toScoreDTOs(scores))
}

// HandleListTechnicians handles GET /dispatch/technicians
func (h *DispatchHandler) HandleListTechnicians(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	roster, err := h.dispatchService.Roster(r.Context(), claims.AccountID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toTechnicianDTOs(roster))
}

// HandleTechnicianDetail handles GET /dispatch/technicians/{techID}
func (h *DispatchHandler) HandleTechnicianDetail(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	techID, err := uuid.Parse(chi.URLParam(r, "techID"))
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid technician ID"))
		return
	}

	detail, err := h.dispatchService.TechnicianDetail(r.Context(), claims.AccountID, techID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toTechnicianDetailDTO(detail))
}

// HandleStats handles GET /dispatch/stats
func (h *DispatchHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	timeRange := domain.RangeToday
	if raw := r.URL.Query().Get("timeRange"); raw != "" {
		v := validation.NewValidator()
		v.OneOf("timeRange", raw, []string{"today", "week", "month"})
		if v.HasErrors() {
			h.errorHandler.Handle(w, r, v.Errors())
			return
		}
		timeRange = domain.TimeRange(raw)
	}

	snap, err := h.analyticsService.Aggregate(r.Context(), claims.AccountID, timeRange)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toAnalyticsSnapshotDTO(snap))
}

// getClaims extracts claims from the request context, writing a 401 if missing.
func (h *DispatchHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}
