package services

import (
	"context"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

// RankingService maintains the global points ranking.
type RankingService interface {
	RecomputeAll(ctx context.Context) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	RankOf(ctx context.Context, userID int64) (int, error)
}

type rankingService struct {
	userRepo     repository.UserRepository
	defaultLimit int
}

// NewRankingService creates a new RankingService
func NewRankingService(userRepo repository.UserRepository, defaultLimit int) RankingService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &rankingService{userRepo: userRepo, defaultLimit: defaultLimit}
}

// RecomputeAll reassigns every user's rank from scratch, ordered by
// total points descending with user id as the tiebreak. Runs after
// every points credit.
func (s *rankingService) RecomputeAll(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("recomputing ranks")

	n, err := s.userRepo.RecomputeRanks(ctx)
	if err != nil {
		log.Error("failed to recompute ranks: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("ranks recomputed for %d users", n)
	return n, nil
}

func (s *rankingService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	log := logger.FromContext(ctx)
	if limit <= 0 {
		limit = s.defaultLimit
	}

	entries, err := s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		log.Error("failed to load leaderboard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

// RankOf returns the user's stored rank, or a provisional one when no
// recompute has run since the user appeared (rank 0): the count of
// users with strictly more points, plus one.
func (s *rankingService) RankOf(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx)

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to load user: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if user == nil {
		return 0, errors.NewNotFoundError("user", userID)
	}
	if user.CurrentRank > 0 {
		return user.CurrentRank, nil
	}

	ahead, err := s.userRepo.CountWithMorePoints(ctx, user.TotalPoints)
	if err != nil {
		log.Error("failed to count users ahead: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return ahead + 1, nil
}
