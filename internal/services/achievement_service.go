package services

import (
	"context"

	"github.com/lbraga/studytrack/internal/achievements"
	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

// AchievementService evaluates the badge ladder against a user's
// current stats and records new unlocks.
type AchievementService interface {
	CheckAndAward(ctx context.Context, userID int64) ([]models.Achievement, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Achievement, error)
}

type achievementService struct {
	achievementRepo repository.AchievementRepository
	progressRepo    repository.ProgressRepository
	userRepo        repository.UserRepository
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(achievementRepo repository.AchievementRepository, progressRepo repository.ProgressRepository, userRepo repository.UserRepository) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		progressRepo:    progressRepo,
		userRepo:        userRepo,
	}
}

// CheckAndAward runs the full ladder and returns only the badges
// earned by this call. Re-running it is safe; existing unlocks are
// left untouched.
func (s *achievementService) CheckAndAward(ctx context.Context, userID int64) ([]models.Achievement, error) {
	log := logger.FromContext(ctx)
	log.Debug("checking achievements: user_id=%d", userID)

	stats, err := s.progressRepo.UserStats(ctx, userID)
	if err != nil {
		log.Error("failed to load user stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to load user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", userID)
	}

	ladderStats := achievements.Stats{
		Plans:              stats.Plans,
		CompletedPlans:     stats.CompletedPlans,
		CompletedResources: stats.CompletedResources,
		HoursSpent:         stats.HoursSpent,
		LoginStreak:        user.LoginStreak,
	}

	var awarded []models.Achievement
	for _, badge := range achievements.Eligible(ladderStats) {
		a, created, err := s.achievementRepo.GetOrCreate(ctx, userID, badge.Type, badge.Title, badge.Description)
		if err != nil {
			log.Error("failed to record achievement %s: %v", badge.Type, err)
			return nil, errors.NewInternalError(err)
		}
		if created {
			log.Info("achievement earned: user_id=%d, type=%s", userID, badge.Type)
			awarded = append(awarded, *a)
		}
	}
	return awarded, nil
}

func (s *achievementService) ListForUser(ctx context.Context, userID int64) ([]models.Achievement, error) {
	log := logger.FromContext(ctx)

	list, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list achievements: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return list, nil
}
