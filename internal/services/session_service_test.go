package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/services"
	"github.com/lbraga/studytrack/internal/testutil/mocks"
)

type sessionFixture struct {
	sessionRepo  *mocks.MockSessionRepository
	planRepo     *mocks.MockPlanRepository
	progressRepo *mocks.MockProgressRepository
	userRepo     *mocks.MockUserRepository
	achievements *mocks.MockAchievementRepository
	svc          services.SessionService
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessionRepo:  new(mocks.MockSessionRepository),
		planRepo:     new(mocks.MockPlanRepository),
		progressRepo: new(mocks.MockProgressRepository),
		userRepo:     new(mocks.MockUserRepository),
		achievements: new(mocks.MockAchievementRepository),
	}
	achievementSvc := services.NewAchievementService(f.achievements, f.progressRepo, f.userRepo)
	f.svc = services.NewSessionService(f.sessionRepo, f.planRepo, achievementSvc)
	return f
}

func TestStartSession_RequiresOwnedPlan(t *testing.T) {
	f := newSessionFixture()

	f.planRepo.On("Get", mock.Anything, int64(9), int64(7)).Return(nil, nil)

	_, err := f.svc.Start(context.Background(), 7, 9, nil)
	assertNotFound(t, err)
	f.sessionRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestStartSession_StampsStart(t *testing.T) {
	f := newSessionFixture()

	f.planRepo.On("Get", mock.Anything, int64(9), int64(7)).Return(&models.StudyPlan{ID: 9, UserID: 7}, nil)
	f.sessionRepo.On("Insert", mock.Anything, mock.MatchedBy(func(s models.StudySession) bool {
		return s.UserID == 7 && s.StudyPlanID == 9 && !s.StartedAt.IsZero()
	})).Return(&models.StudySession{ID: 1, UserID: 7, StudyPlanID: 9}, nil)

	session, err := f.svc.Start(context.Background(), 7, 9, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), session.ID)
	f.sessionRepo.AssertExpectations(t)
}

func TestEndSession_ChecksAchievementsOnceClosed(t *testing.T) {
	f := newSessionFixture()

	ended := time.Now().UTC()
	f.sessionRepo.On("End", mock.Anything, int64(1), int64(7), mock.Anything, "notes").
		Return(&models.StudySession{ID: 1, UserID: 7, EndedAt: &ended, Duration: 1.5}, true, nil)
	f.progressRepo.On("UserStats", mock.Anything, int64(7)).Return(&models.UserStudyStats{}, nil)
	f.userRepo.On("Get", mock.Anything, int64(7)).Return(&models.User{ID: 7}, nil)

	session, err := f.svc.End(context.Background(), 1, 7, "notes")
	require.NoError(t, err)
	assert.Equal(t, 1.5, session.Duration)
	f.progressRepo.AssertCalled(t, "UserStats", mock.Anything, int64(7))
}

func TestEndSession_RepeatIsQuiet(t *testing.T) {
	f := newSessionFixture()

	ended := time.Now().UTC()
	f.sessionRepo.On("End", mock.Anything, int64(1), int64(7), mock.Anything, "").
		Return(&models.StudySession{ID: 1, UserID: 7, EndedAt: &ended, Duration: 1.5}, false, nil)

	session, err := f.svc.End(context.Background(), 1, 7, "")
	require.NoError(t, err)
	assert.Equal(t, 1.5, session.Duration)
	f.progressRepo.AssertNotCalled(t, "UserStats", mock.Anything, mock.Anything)
}

func TestEndSession_UnknownSession(t *testing.T) {
	f := newSessionFixture()

	f.sessionRepo.On("End", mock.Anything, int64(1), int64(7), mock.Anything, "").
		Return(nil, false, nil)

	_, err := f.svc.End(context.Background(), 1, 7, "")
	assertNotFound(t, err)
}
