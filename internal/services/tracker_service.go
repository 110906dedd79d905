package services

import (
	"context"
	"time"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

// TrackerService handles per-resource completion tracking and the
// derived plan aggregates.
type TrackerService interface {
	EnsureResourceProgress(ctx context.Context, userID, planResourceID int64) (*models.ResourceProgress, error)
	MarkCompleted(ctx context.Context, id, userID int64) (*models.ResourceProgress, error)
	MarkIncomplete(ctx context.Context, id, userID int64) (*models.ResourceProgress, error)
	UpdateProgress(ctx context.Context, id, userID int64, upd models.ResourceProgressUpdate) (*models.ResourceProgress, error)
	PlanProgress(ctx context.Context, userID, planID int64) (*models.Progress, error)
	Dashboard(ctx context.Context, userID int64) (*models.Dashboard, error)
}

type trackerService struct {
	progressRepo repository.ProgressRepository
	planRepo     repository.PlanRepository
	sessionRepo  repository.SessionRepository
	achievements AchievementService
}

// NewTrackerService creates a new TrackerService
func NewTrackerService(progressRepo repository.ProgressRepository, planRepo repository.PlanRepository, sessionRepo repository.SessionRepository, achievements AchievementService) TrackerService {
	return &trackerService{
		progressRepo: progressRepo,
		planRepo:     planRepo,
		sessionRepo:  sessionRepo,
		achievements: achievements,
	}
}

func (s *trackerService) EnsureResourceProgress(ctx context.Context, userID, planResourceID int64) (*models.ResourceProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("ensuring resource progress: user_id=%d, plan_resource_id=%d", userID, planResourceID)

	rp, err := s.progressRepo.EnsureResourceProgress(ctx, userID, planResourceID)
	if err != nil {
		log.Error("failed to ensure resource progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rp == nil {
		return nil, errors.NewNotFoundError("plan resource", planResourceID)
	}
	return rp, nil
}

// MarkCompleted flips the resource to completed. Calling it on an
// already-completed resource is a no-op with the same response; the
// plan aggregate is recomputed either way and never double-counts.
func (s *trackerService) MarkCompleted(ctx context.Context, id, userID int64) (*models.ResourceProgress, error) {
	return s.setCompletion(ctx, id, userID, true)
}

func (s *trackerService) MarkIncomplete(ctx context.Context, id, userID int64) (*models.ResourceProgress, error) {
	return s.setCompletion(ctx, id, userID, false)
}

func (s *trackerService) setCompletion(ctx context.Context, id, userID int64, completed bool) (*models.ResourceProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("setting resource completion: id=%d, completed=%t", id, completed)

	rp, err := s.progressRepo.SetResourceCompletion(ctx, id, userID, completed, time.Now().UTC())
	if err != nil {
		log.Error("failed to set resource completion: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rp == nil {
		return nil, errors.NewNotFoundError("resource progress", id)
	}

	if _, err := s.achievements.CheckAndAward(ctx, userID); err != nil {
		log.Warn("achievement check failed after completion toggle: %v", err)
	}

	log.Info("resource completion set: id=%d, completed=%t", id, completed)
	return rp, nil
}

func (s *trackerService) UpdateProgress(ctx context.Context, id, userID int64, upd models.ResourceProgressUpdate) (*models.ResourceProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating resource progress: id=%d", id)

	if upd.Percentage == nil && upd.Notes == nil && upd.TimeSpent == nil {
		return nil, errors.NewBadRequestError("no fields to update")
	}
	if upd.Percentage != nil && (*upd.Percentage < 0 || *upd.Percentage > 100) {
		return nil, errors.NewValidationError("percentage", "must be between 0 and 100")
	}
	if upd.TimeSpent != nil && *upd.TimeSpent < 0 {
		return nil, errors.NewValidationError("time_spent", "must not be negative")
	}

	rp, err := s.progressRepo.UpdateResourceProgress(ctx, id, userID, upd, time.Now().UTC())
	if err != nil {
		log.Error("failed to update resource progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rp == nil {
		return nil, errors.NewNotFoundError("resource progress", id)
	}
	return rp, nil
}

func (s *trackerService) PlanProgress(ctx context.Context, userID, planID int64) (*models.Progress, error) {
	log := logger.FromContext(ctx)

	plan, err := s.planRepo.Get(ctx, planID, userID)
	if err != nil {
		log.Error("failed to get plan: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("plan", planID)
	}

	progress, err := s.progressRepo.EnsureForPlan(ctx, userID, planID)
	if err != nil {
		log.Error("failed to load plan progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return progress, nil
}

func (s *trackerService) Dashboard(ctx context.Context, userID int64) (*models.Dashboard, error) {
	log := logger.FromContext(ctx)
	log.Debug("building dashboard: user_id=%d", userID)

	stats, err := s.progressRepo.UserStats(ctx, userID)
	if err != nil {
		log.Error("failed to load user stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	active, err := s.planRepo.List(ctx, userID, models.PlanStatusActive)
	if err != nil {
		log.Error("failed to list active plans: %v", err)
		return nil, errors.NewInternalError(err)
	}

	sessions, err := s.sessionRepo.ListRecent(ctx, userID, 5)
	if err != nil {
		log.Error("failed to list recent sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}

	achievements, err := s.achievements.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(achievements) > 5 {
		achievements = achievements[:5]
	}

	return &models.Dashboard{
		TotalPlans:         stats.Plans,
		ActivePlans:        len(active),
		CompletedPlans:     stats.CompletedPlans,
		CompletedResources: stats.CompletedResources,
		TotalHours:         stats.HoursSpent,
		RecentSessions:     sessions,
		RecentAchievements: achievements,
	}, nil
}
