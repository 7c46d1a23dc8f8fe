package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	"github.com/oakline/fieldops-backend/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockJobRepository is a mock implementation of ports.JobRepository
type MockJobRepository struct {
	mock.Mock
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{}
}

func (m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) AssignIfUnassigned(ctx context.Context, params ports.AssignJobParams) (*domain.Job, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) ListInWindow(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*domain.Job, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Job), args.Error(1)
}

// MockTechnicianRepository is a mock implementation of ports.TechnicianRepository
type MockTechnicianRepository struct {
	mock.Mock
}

func NewMockTechnicianRepository() *MockTechnicianRepository {
	return &MockTechnicianRepository{}
}

func (m *MockTechnicianRepository) ListRoster(ctx context.Context, accountID uuid.UUID) ([]*domain.TechnicianSnapshot, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TechnicianSnapshot), args.Error(1)
}

func (m *MockTechnicianRepository) RefreshFix(ctx context.Context, accountID, techID uuid.UUID, fix domain.LocationFix) error {
	args := m.Called(ctx, accountID, techID, fix)
	return args.Error(0)
}

// MockGpsLogRepository is a mock implementation of ports.GpsLogRepository
type MockGpsLogRepository struct {
	mock.Mock
}

func NewMockGpsLogRepository() *MockGpsLogRepository {
	return &MockGpsLogRepository{}
}

func (m *MockGpsLogRepository) Append(ctx context.Context, accountID uuid.UUID, sample domain.GpsSample) error {
	args := m.Called(ctx, accountID, sample)
	return args.Error(0)
}

func (m *MockGpsLogRepository) ListWindow(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.GpsSample, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GpsSample), args.Error(1)
}

// MockJobHistoryRepository is a mock implementation of ports.JobHistoryRepository
type MockJobHistoryRepository struct {
	mock.Mock
}

func NewMockJobHistoryRepository() *MockJobHistoryRepository {
	return &MockJobHistoryRepository{}
}

func (m *MockJobHistoryRepository) CompletedToday(ctx context.Context, techID uuid.UUID) (int, error) {
	args := m.Called(ctx, techID)
	return args.Int(0), args.Error(1)
}

func (m *MockJobHistoryRepository) CompletedSinceByTech(ctx context.Context, accountID uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, accountID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}

// MockDispatchService is a mock implementation of ports.DispatchService
type MockDispatchService struct {
	mock.Mock
}

func NewMockDispatchService() *MockDispatchService {
	return &MockDispatchService{}
}

func (m *MockDispatchService) Assign(ctx context.Context, params ports.AssignParams) (*domain.AssignmentResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssignmentResult), args.Error(1)
}

func (m *MockDispatchService) ScoreJob(ctx context.Context, accountID, jobID uuid.UUID, factors domain.ScoringFactors) ([]domain.TechnicianScore, error) {
	args := m.Called(ctx, accountID, jobID, factors)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TechnicianScore), args.Error(1)
}

func (m *MockDispatchService) Roster(ctx context.Context, accountID uuid.UUID) ([]*domain.TechnicianSnapshot, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TechnicianSnapshot), args.Error(1)
}

func (m *MockDispatchService) TechnicianDetail(ctx context.Context, accountID, techID uuid.UUID) (*domain.TechnicianDetail, error) {
	args := m.Called(ctx, accountID, techID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TechnicianDetail), args.Error(1)
}

// MockAnalyticsService is a mock implementation of ports.AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func NewMockAnalyticsService() *MockAnalyticsService {
	return &MockAnalyticsService{}
}

func (m *MockAnalyticsService) Aggregate(ctx context.Context, accountID uuid.UUID, timeRange domain.TimeRange) (*domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, accountID, timeRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsSnapshot), args.Error(1)
}

// MockLocationService is a mock implementation of ports.LocationService
type MockLocationService struct {
	mock.Mock
}

func NewMockLocationService() *MockLocationService {
	return &MockLocationService{}
}

func (m *MockLocationService) RecordPing(ctx context.Context, params ports.RecordPingParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
