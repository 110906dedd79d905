package services

import (
	"context"
	"time"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

// SessionService handles study session timers.
type SessionService interface {
	Start(ctx context.Context, userID, planID int64, resourceID *int64) (*models.StudySession, error)
	End(ctx context.Context, id, userID int64, notes string) (*models.StudySession, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error)
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	planRepo     repository.PlanRepository
	achievements AchievementService
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repository.SessionRepository, planRepo repository.PlanRepository, achievements AchievementService) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		planRepo:     planRepo,
		achievements: achievements,
	}
}

func (s *sessionService) Start(ctx context.Context, userID, planID int64, resourceID *int64) (*models.StudySession, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting session: user_id=%d, plan_id=%d", userID, planID)

	plan, err := s.planRepo.Get(ctx, planID, userID)
	if err != nil {
		log.Error("failed to get plan: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("plan", planID)
	}

	session, err := s.sessionRepo.Insert(ctx, models.StudySession{
		UserID:      userID,
		StudyPlanID: planID,
		ResourceID:  resourceID,
		StartedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("session started: id=%d, plan_id=%d", session.ID, planID)
	return session, nil
}

// End closes the session and credits its hours to the plan aggregate.
// Ending an already-ended session returns it unchanged and credits
// nothing.
func (s *sessionService) End(ctx context.Context, id, userID int64, notes string) (*models.StudySession, error) {
	log := logger.FromContext(ctx)
	log.Debug("ending session: id=%d", id)

	session, closedNow, err := s.sessionRepo.End(ctx, id, userID, time.Now().UTC(), notes)
	if err != nil {
		log.Error("failed to end session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", id)
	}

	if closedNow {
		log.Info("session ended: id=%d, duration=%.2fh", session.ID, session.Duration)
		if _, err := s.achievements.CheckAndAward(ctx, userID); err != nil {
			log.Warn("achievement check failed after session end: %v", err)
		}
	} else {
		log.Debug("session already ended: id=%d", id)
	}
	return session, nil
}

func (s *sessionService) ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error) {
	log := logger.FromContext(ctx)
	if limit <= 0 {
		limit = 10
	}

	sessions, err := s.sessionRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return sessions, nil
}
