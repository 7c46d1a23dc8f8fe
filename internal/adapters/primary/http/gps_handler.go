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
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/ports"
)

// Pings per second one technician's device may sustain. Field apps report
// every few seconds, so this leaves plenty of headroom for catch-up bursts
// after a connectivity gap.
const (
	pingsPerSecondPerTech = 2
	pingBurstPerTech      = 20
)

// GPSHandler handles location ping ingestion from field devices
type GPSHandler struct {
	locationService ports.LocationService
	techLimiter     *mw.RateLimitByKey
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewGPSHandler creates a new GPS handler
func NewGPSHandler(
	locationService ports.LocationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *GPSHandler {
	return &GPSHandler{
		locationService: locationService,
		techLimiter:     mw.NewRateLimitByKey(pingsPerSecondPerTech, pingBurstPerTech),
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "gps"),
	}
}

// Router sets up a new chi Router for all GPS routes.
func (h *GPSHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all GPS endpoints.
func (h *GPSHandler) RegisterRoutes(r chi.Router) {
	r.Post("/ping", h.HandlePing)
}

// PingRequest defines the expected JSON body for a location ping
type PingRequest struct {
	TechID     string  `json:"techId"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	RecordedAt string  `json:"recordedAt"`
}

// Validate validates the ping request
func (r *PingRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("techId", r.TechID).
		UUID("techId", r.TechID).
		Latitude("latitude", r.Latitude).
		Longitude("longitude", r.Longitude)

	if r.RecordedAt != "" {
		if _, err := time.Parse(time.RFC3339, r.RecordedAt); err != nil {
			v.Custom("recordedAt", false, "Must be an RFC 3339 timestamp")
		}
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// HandlePing handles POST /gps/ping
func (h *GPSHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[PingRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	techID, err := uuid.Parse(req.TechID)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid technician ID"))
		return
	}

	// A technician may only report their own position; dispatch roles may
	// submit on behalf of any technician in the account.
	if claims.Role == auth.RoleTechnician && techID != claims.UserID {
		h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return
	}

	if !h.techLimiter.Allow(techID.String()) {
		h.errorHandler.Handle(w, r, apperrors.ErrRateLimited)
		return
	}

	var recordedAt time.Time
	if req.RecordedAt != "" {
		recordedAt, _ = time.Parse(time.RFC3339, req.RecordedAt)
	}

	err = h.locationService.RecordPing(r.Context(), ports.RecordPingParams{
		AccountID:  claims.AccountID,
		TechID:     techID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		RecordedAt: recordedAt,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

// getClaims extracts claims from the request context, writing a 401 if missing.
func (h *GPSHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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
