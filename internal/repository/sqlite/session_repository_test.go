package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
	"github.com/lbraga/studytrack/internal/repository/sqlite"
	"github.com/lbraga/studytrack/internal/testutil"
)

type SessionRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.SessionRepository
}

func (s *SessionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSessionRepository(s.db)
}

func (s *SessionRepositorySuite) setupUserAndPlan() (int64, int64) {
	var userID, planID int64
	err := s.db.QueryRow(`INSERT INTO users (name, email) VALUES ('Test User', 'a@example.com') RETURNING id`).Scan(&userID)
	s.Require().NoError(err)
	err = s.db.QueryRow(`
INSERT INTO study_plans (user_id, title, start_date, end_date)
VALUES (?, 'Learn Go', '2026-01-01', '2026-06-01') RETURNING id
`, userID).Scan(&planID)
	s.Require().NoError(err)
	return userID, planID
}

func (s *SessionRepositorySuite) hoursSpent(planID int64) float64 {
	var hours float64
	err := s.db.QueryRow(`SELECT total_hours_spent FROM progress WHERE study_plan_id = ?`, planID).Scan(&hours)
	s.Require().NoError(err)
	return hours
}

func (s *SessionRepositorySuite) TestEndCreditsHours() {
	ctx := context.Background()
	userID, planID := s.setupUserAndPlan()

	started := time.Now().UTC().Add(-90 * time.Minute)
	session, err := s.repo.Insert(ctx, models.StudySession{
		UserID:      userID,
		StudyPlanID: planID,
		StartedAt:   started,
	})
	s.Require().NoError(err)
	s.Assert().Nil(session.EndedAt)

	now := started.Add(90 * time.Minute)
	ended, closedNow, err := s.repo.End(ctx, session.ID, userID, now, "good focus")
	s.Require().NoError(err)
	s.Require().NotNil(ended)
	s.Assert().True(closedNow)
	s.Assert().NotNil(ended.EndedAt)
	s.Assert().Equal(1.5, ended.Duration)
	s.Assert().Equal("good focus", ended.Notes)

	s.Assert().Equal(1.5, s.hoursSpent(planID))
}

func (s *SessionRepositorySuite) TestEndTwiceCreditsOnce() {
	ctx := context.Background()
	userID, planID := s.setupUserAndPlan()

	started := time.Now().UTC().Add(-1 * time.Hour)
	session, err := s.repo.Insert(ctx, models.StudySession{
		UserID:      userID,
		StudyPlanID: planID,
		StartedAt:   started,
	})
	s.Require().NoError(err)

	now := started.Add(1 * time.Hour)
	first, closedNow, err := s.repo.End(ctx, session.ID, userID, now, "")
	s.Require().NoError(err)
	s.Assert().True(closedNow)

	// a later second end must not move the timer or re-credit hours
	again, closedNow, err := s.repo.End(ctx, session.ID, userID, now.Add(3*time.Hour), "late duplicate")
	s.Require().NoError(err)
	s.Require().NotNil(again)
	s.Assert().False(closedNow)
	s.Assert().Equal(first.Duration, again.Duration)

	s.Assert().Equal(1.0, s.hoursSpent(planID))
}

func (s *SessionRepositorySuite) TestClockSkewClampsToZero() {
	ctx := context.Background()
	userID, planID := s.setupUserAndPlan()

	started := time.Now().UTC()
	session, err := s.repo.Insert(ctx, models.StudySession{
		UserID:      userID,
		StudyPlanID: planID,
		StartedAt:   started,
	})
	s.Require().NoError(err)

	ended, closedNow, err := s.repo.End(ctx, session.ID, userID, started.Add(-10*time.Minute), "")
	s.Require().NoError(err)
	s.Assert().True(closedNow)
	s.Assert().Equal(0.0, ended.Duration)
	s.Assert().Equal(0.0, s.hoursSpent(planID))
}

func (s *SessionRepositorySuite) TestEndUnknownOrForeignSession() {
	ctx := context.Background()
	userID, planID := s.setupUserAndPlan()

	var otherID int64
	err := s.db.QueryRow(`INSERT INTO users (name, email) VALUES ('Other', 'b@example.com') RETURNING id`).Scan(&otherID)
	s.Require().NoError(err)

	session, err := s.repo.Insert(ctx, models.StudySession{
		UserID:      userID,
		StudyPlanID: planID,
		StartedAt:   time.Now().UTC(),
	})
	s.Require().NoError(err)

	got, _, err := s.repo.End(ctx, session.ID, otherID, time.Now().UTC(), "")
	s.Require().NoError(err)
	s.Assert().Nil(got)

	got, _, err = s.repo.End(ctx, 9999, userID, time.Now().UTC(), "")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *SessionRepositorySuite) TestListRecent() {
	ctx := context.Background()
	userID, planID := s.setupUserAndPlan()

	base := time.Now().UTC().Add(-3 * time.Hour)
	for i := 0; i < 3; i++ {
		_, err := s.repo.Insert(ctx, models.StudySession{
			UserID:      userID,
			StudyPlanID: planID,
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		s.Require().NoError(err)
	}

	sessions, err := s.repo.ListRecent(ctx, userID, 2)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Assert().True(sessions[0].StartedAt.After(sessions[1].StartedAt))
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
