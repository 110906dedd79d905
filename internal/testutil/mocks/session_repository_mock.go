package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lbraga/studytrack/internal/models"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Insert(ctx context.Context, session models.StudySession) (*models.StudySession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySession), args.Error(1)
}

func (m *MockSessionRepository) Get(ctx context.Context, id, userID int64) (*models.StudySession, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySession), args.Error(1)
}

func (m *MockSessionRepository) End(ctx context.Context, id, userID int64, now time.Time, notes string) (*models.StudySession, bool, error) {
	args := m.Called(ctx, id, userID, now, notes)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.StudySession), args.Bool(1), args.Error(2)
}

func (m *MockSessionRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudySession), args.Error(1)
}

// MockAchievementRepository is a mock implementation of repository.AchievementRepository
type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) GetOrCreate(ctx context.Context, userID int64, achievementType, title, description string) (*models.Achievement, bool, error) {
	args := m.Called(ctx, userID, achievementType, title, description)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Achievement), args.Bool(1), args.Error(2)
}

func (m *MockAchievementRepository) ListByUser(ctx context.Context, userID int64) ([]models.Achievement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Achievement), args.Error(1)
}
