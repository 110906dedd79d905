package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lbraga/studytrack/internal/models"
)

// MockPlanRepository is a mock implementation of repository.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan models.StudyPlan) (*models.StudyPlan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyPlan), args.Error(1)
}

func (m *MockPlanRepository) Get(ctx context.Context, id, userID int64) (*models.StudyPlan, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyPlan), args.Error(1)
}

func (m *MockPlanRepository) List(ctx context.Context, userID int64, status string) ([]models.StudyPlan, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudyPlan), args.Error(1)
}

// MockResourceRepository is a mock implementation of repository.ResourceRepository
type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) Upsert(ctx context.Context, resource models.Resource) (*models.Resource, error) {
	args := m.Called(ctx, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *MockResourceRepository) AttachToPlan(ctx context.Context, planID, resourceID int64, orderIndex int) (*models.StudyPlanResource, error) {
	args := m.Called(ctx, planID, resourceID, orderIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyPlanResource), args.Error(1)
}

func (m *MockResourceRepository) ListForPlan(ctx context.Context, planID, userID int64) ([]models.PlanResourceView, error) {
	args := m.Called(ctx, planID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlanResourceView), args.Error(1)
}
