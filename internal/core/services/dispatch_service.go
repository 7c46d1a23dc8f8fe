package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
	"github.com/oakline/fieldops-backend/internal/core/ports"
)

// maxAlternatives caps the runner-up list returned for operator override.
const maxAlternatives = 3

// DispatchService implements business logic for technician dispatch:
// scoring, preview, and commit-or-preview assignment.
type DispatchService struct {
	jobRepo     ports.JobRepository
	techRepo    ports.TechnicianRepository
	historyRepo ports.JobHistoryRepository
	notifier    ports.Notifier
	broadcaster ports.EventBroadcaster
	opts        ScoringOptions
	now         func() time.Time
	wg          sync.WaitGroup
}

var _ ports.DispatchService = (*DispatchService)(nil)

// NewDispatchService creates a new dispatch service.
func NewDispatchService(
	jobRepo ports.JobRepository,
	techRepo ports.TechnicianRepository,
	historyRepo ports.JobHistoryRepository,
	notifier ports.Notifier,
	broadcaster ports.EventBroadcaster,
	opts ScoringOptions,
) *DispatchService {
	return &DispatchService{
		jobRepo:     jobRepo,
		techRepo:    techRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
		broadcaster: broadcaster,
		opts:        opts,
		now:         time.Now,
	}
}

// Assign scores a freshly loaded roster against the job and either returns
// a preview (dry run) or commits the best candidate through the job store.
//
// The commit is a conditional write keyed on the job having no assignee;
// no lock is held across the scoring+commit window, so a concurrent
// assignment surfaces as ErrAlreadyAssigned and the caller re-scores
// against fresh state.
func (s *DispatchService) Assign(ctx context.Context, params ports.AssignParams) (*domain.AssignmentResult, error) {
	job, err := s.jobRepo.GetByID(ctx, params.JobID)
	if err != nil {
		return nil, err
	}
	if job.Location == nil {
		return nil, apperrors.ErrInvalidJob
	}
	if job.IsAssigned() {
		return nil, apperrors.ErrAlreadyAssigned
	}

	scores, err := s.scoreRoster(ctx, params.AccountID, job.DispatchView(), params.Factors)
	if err != nil {
		return nil, err
	}

	var eligible []domain.TechnicianScore
	for _, sc := range scores {
		if sc.Eligible {
			eligible = append(eligible, sc)
		}
	}
	if len(eligible) == 0 {
		return nil, apperrors.ErrNoEligibleTechnician
	}

	best := eligible[0]
	alternatives := eligible[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	result := &domain.AssignmentResult{
		Assignment:    best,
		Alternatives:  alternatives,
		DryRun:        params.DryRun,
		EligibleCount: len(eligible),
		TotalCount:    len(scores),
	}

	if params.DryRun {
		return result, nil
	}

	_, err = s.jobRepo.AssignIfUnassigned(ctx, ports.AssignJobParams{
		JobID:             job.ID,
		TechID:            best.TechID,
		Score:             best.Score,
		DistanceMiles:     best.DistanceMiles,
		ETAMinutes:        best.ETAMinutes,
		Reason:            best.Reason,
		AlternativesCount: len(alternatives),
	})
	if err != nil {
		return nil, err
	}

	s.notifyAssignment(job, best)
	s.broadcastAssignment(job.AccountID, job.ID, best)

	return result, nil
}

// ScoreJob returns the full sorted score list for a job without committing
// anything. Repeated calls against unchanged state return identical results.
func (s *DispatchService) ScoreJob(ctx context.Context, accountID, jobID uuid.UUID, factors domain.ScoringFactors) ([]domain.TechnicianScore, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Location == nil {
		return nil, apperrors.ErrInvalidJob
	}
	return s.scoreRoster(ctx, accountID, job.DispatchView(), factors)
}

// Roster returns the account's technician snapshots.
func (s *DispatchService) Roster(ctx context.Context, accountID uuid.UUID) ([]*domain.TechnicianSnapshot, error) {
	return s.techRepo.ListRoster(ctx, accountID)
}

// TechnicianDetail returns one technician's snapshot with today's
// completed-job count. Single-technician reads use the per-tech count
// query; the batched variant is reserved for full-roster scoring.
func (s *DispatchService) TechnicianDetail(ctx context.Context, accountID, techID uuid.UUID) (*domain.TechnicianDetail, error) {
	roster, err := s.techRepo.ListRoster(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for _, tech := range roster {
		if tech.ID != techID {
			continue
		}

		completed, err := s.historyRepo.CompletedToday(ctx, techID)
		if err != nil {
			return nil, err
		}

		return &domain.TechnicianDetail{
			TechnicianSnapshot: *tech,
			JobsCompletedToday: completed,
		}, nil
	}

	return nil, apperrors.ErrTechnicianNotFound
}

func (s *DispatchService) scoreRoster(ctx context.Context, accountID uuid.UUID, job domain.JobLocation, factors domain.ScoringFactors) ([]domain.TechnicianScore, error) {
	roster, err := s.techRepo.ListRoster(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	completed, err := s.historyRepo.CompletedSinceByTech(ctx, accountID, midnight)
	if err != nil {
		return nil, err
	}

	return ScoreTechnicians(job, roster, completed, factors, now, s.opts)
}

// notifyAssignment tells the chosen technician about the new job. Runs in
// the background; the HTTP request may already be done.
func (s *DispatchService) notifyAssignment(job *domain.Job, best domain.TechnicianScore) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.notifier.Notify(context.Background(), ports.NotificationParams{
			TechID:   best.TechID,
			TechName: best.TechName,
			Subject:  fmt.Sprintf("New job assigned: %s", job.ID),
			Message:  fmt.Sprintf("You have been assigned a %s-priority job, ETA %d min.", job.Priority, best.ETAMinutes),
			JobID:    job.ID,
		})
	}()
}

// broadcastAssignment pushes the assignment onto the live fleet feed.
func (s *DispatchService) broadcastAssignment(accountID, jobID uuid.UUID, best domain.TechnicianScore) {
	_ = s.broadcaster.Broadcast(domain.Event{
		Type:      domain.EventJobAssigned,
		AccountID: accountID,
		Payload: domain.JobAssignedPayload{
			JobID:    jobID,
			TechID:   best.TechID,
			TechName: best.TechName,
			Score:    best.Score,
		},
	})
}

// Shutdown waits for in-flight background notifications to finish.
func (s *DispatchService) Shutdown() {
	s.wg.Wait()
}

// WithClock overrides the wall clock, for tests.
func (s *DispatchService) WithClock(now func() time.Time) *DispatchService {
	s.now = now
	return s
}
