package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lbraga/studytrack/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) EnsureForPlan(ctx context.Context, userID, planID int64) (*models.Progress, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Progress), args.Error(1)
}

func (m *MockProgressRepository) GetForPlan(ctx context.Context, userID, planID int64) (*models.Progress, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Progress), args.Error(1)
}

func (m *MockProgressRepository) EnsureResourceProgress(ctx context.Context, userID, planResourceID int64) (*models.ResourceProgress, error) {
	args := m.Called(ctx, userID, planResourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResourceProgress), args.Error(1)
}

func (m *MockProgressRepository) GetResourceProgress(ctx context.Context, id, userID int64) (*models.ResourceProgress, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResourceProgress), args.Error(1)
}

func (m *MockProgressRepository) SetResourceCompletion(ctx context.Context, id, userID int64, completed bool, now time.Time) (*models.ResourceProgress, error) {
	args := m.Called(ctx, id, userID, completed, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResourceProgress), args.Error(1)
}

func (m *MockProgressRepository) UpdateResourceProgress(ctx context.Context, id, userID int64, upd models.ResourceProgressUpdate, now time.Time) (*models.ResourceProgress, error) {
	args := m.Called(ctx, id, userID, upd, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResourceProgress), args.Error(1)
}

func (m *MockProgressRepository) UserStats(ctx context.Context, userID int64) (*models.UserStudyStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStudyStats), args.Error(1)
}
