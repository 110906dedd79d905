package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/services"
	"github.com/lbraga/studytrack/internal/testutil/mocks"
)

type trackerFixture struct {
	progressRepo *mocks.MockProgressRepository
	planRepo     *mocks.MockPlanRepository
	sessionRepo  *mocks.MockSessionRepository
	achievements *mocks.MockAchievementRepository
	userRepo     *mocks.MockUserRepository
	svc          services.TrackerService
}

func newTrackerFixture() *trackerFixture {
	f := &trackerFixture{
		progressRepo: new(mocks.MockProgressRepository),
		planRepo:     new(mocks.MockPlanRepository),
		sessionRepo:  new(mocks.MockSessionRepository),
		achievements: new(mocks.MockAchievementRepository),
		userRepo:     new(mocks.MockUserRepository),
	}
	achievementSvc := services.NewAchievementService(f.achievements, f.progressRepo, f.userRepo)
	f.svc = services.NewTrackerService(f.progressRepo, f.planRepo, f.sessionRepo, achievementSvc)
	return f
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
}

func TestMarkCompleted_ChecksAchievements(t *testing.T) {
	f := newTrackerFixture()

	f.progressRepo.On("SetResourceCompletion", mock.Anything, int64(5), int64(7), true, mock.Anything).
		Return(&models.ResourceProgress{ID: 5, UserID: 7, IsCompleted: true}, nil)
	f.progressRepo.On("UserStats", mock.Anything, int64(7)).Return(&models.UserStudyStats{}, nil)
	f.userRepo.On("Get", mock.Anything, int64(7)).Return(&models.User{ID: 7}, nil)

	rp, err := f.svc.MarkCompleted(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.True(t, rp.IsCompleted)
	f.progressRepo.AssertCalled(t, "UserStats", mock.Anything, int64(7))
}

func TestMarkIncomplete_AlsoChecksAchievements(t *testing.T) {
	f := newTrackerFixture()

	f.progressRepo.On("SetResourceCompletion", mock.Anything, int64(5), int64(7), false, mock.Anything).
		Return(&models.ResourceProgress{ID: 5, UserID: 7}, nil)
	f.progressRepo.On("UserStats", mock.Anything, int64(7)).Return(&models.UserStudyStats{}, nil)
	f.userRepo.On("Get", mock.Anything, int64(7)).Return(&models.User{ID: 7}, nil)

	_, err := f.svc.MarkIncomplete(context.Background(), 5, 7)
	require.NoError(t, err)
	f.progressRepo.AssertCalled(t, "UserStats", mock.Anything, int64(7))
}

func TestMarkCompleted_ForeignRecordIsNotFound(t *testing.T) {
	f := newTrackerFixture()

	f.progressRepo.On("SetResourceCompletion", mock.Anything, int64(5), int64(7), true, mock.Anything).
		Return(nil, nil)

	_, err := f.svc.MarkCompleted(context.Background(), 5, 7)
	assertNotFound(t, err)
}

func TestUpdateProgress_Validation(t *testing.T) {
	f := newTrackerFixture()
	bad := 140.0
	negative := -1.0

	tests := []struct {
		name string
		upd  models.ResourceProgressUpdate
	}{
		{"no fields", models.ResourceProgressUpdate{}},
		{"percentage out of range", models.ResourceProgressUpdate{Percentage: &bad}},
		{"negative time spent", models.ResourceProgressUpdate{TimeSpent: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateProgress(context.Background(), 5, 7, tt.upd)
			require.Error(t, err)
		})
	}
	f.progressRepo.AssertNotCalled(t, "UpdateResourceProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanProgress_UnknownPlan(t *testing.T) {
	f := newTrackerFixture()

	f.planRepo.On("Get", mock.Anything, int64(9), int64(7)).Return(nil, nil)

	_, err := f.svc.PlanProgress(context.Background(), 7, 9)
	assertNotFound(t, err)
	f.progressRepo.AssertNotCalled(t, "EnsureForPlan", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboard_TruncatesRecentAchievements(t *testing.T) {
	f := newTrackerFixture()

	f.progressRepo.On("UserStats", mock.Anything, int64(7)).
		Return(&models.UserStudyStats{Plans: 3, CompletedPlans: 1, CompletedResources: 12, HoursSpent: 6.5}, nil)
	f.planRepo.On("List", mock.Anything, int64(7), models.PlanStatusActive).
		Return([]models.StudyPlan{{ID: 1}, {ID: 2}}, nil)
	f.sessionRepo.On("ListRecent", mock.Anything, int64(7), 5).
		Return([]models.StudySession{{ID: 1}}, nil)
	earned := make([]models.Achievement, 7)
	for i := range earned {
		earned[i] = models.Achievement{ID: int64(i + 1)}
	}
	f.achievements.On("ListByUser", mock.Anything, int64(7)).Return(earned, nil)

	d, err := f.svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalPlans)
	assert.Equal(t, 2, d.ActivePlans)
	assert.Equal(t, 1, d.CompletedPlans)
	assert.Equal(t, 6.5, d.TotalHours)
	assert.Len(t, d.RecentAchievements, 5)
}
