package services

import (
	"context"
	"time"

	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/ports"
)

// LocationService ingests technician GPS pings: append to the log,
// refresh the technician's last fix, and push the position to the live
// fleet feed.
type LocationService struct {
	gpsRepo     ports.GpsLogRepository
	techRepo    ports.TechnicianRepository
	broadcaster ports.EventBroadcaster
	now         func() time.Time
}

var _ ports.LocationService = (*LocationService)(nil)

// NewLocationService creates a new location service.
func NewLocationService(
	gpsRepo ports.GpsLogRepository,
	techRepo ports.TechnicianRepository,
	broadcaster ports.EventBroadcaster,
) *LocationService {
	return &LocationService{
		gpsRepo:     gpsRepo,
		techRepo:    techRepo,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *LocationService) WithClock(now func() time.Time) *LocationService {
	s.now = now
	return s
}

// RecordPing validates and stores one GPS sample.
func (s *LocationService) RecordPing(ctx context.Context, params ports.RecordPingParams) error {
	if params.Latitude < -90 || params.Latitude > 90 ||
		params.Longitude < -180 || params.Longitude > 180 {
		return apperrors.ErrInvalidCoordinates
	}

	recordedAt := params.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	sample := domain.GpsSample{
		TechID:     params.TechID,
		Latitude:   params.Latitude,
		Longitude:  params.Longitude,
		RecordedAt: recordedAt,
	}

	if err := s.gpsRepo.Append(ctx, params.AccountID, sample); err != nil {
		return err
	}

	if err := s.techRepo.RefreshFix(ctx, params.AccountID, params.TechID, domain.LocationFix{
		Latitude:   params.Latitude,
		Longitude:  params.Longitude,
		RecordedAt: recordedAt,
	}); err != nil {
		return err
	}

	_ = s.broadcaster.Broadcast(domain.Event{
		Type:      domain.EventTechPosition,
		AccountID: params.AccountID,
		Payload: domain.TechPositionPayload{
			TechID:    params.TechID,
			Latitude:  params.Latitude,
			Longitude: params.Longitude,
		},
	})

	return nil
}
