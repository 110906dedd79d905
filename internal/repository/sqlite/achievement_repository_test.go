package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lbraga/studytrack/internal/repository"
	"github.com/lbraga/studytrack/internal/repository/sqlite"
	"github.com/lbraga/studytrack/internal/testutil"
)

type AchievementRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.AchievementRepository
}

func (s *AchievementRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewAchievementRepository(s.db)
}

func (s *AchievementRepositorySuite) createUser(email string) int64 {
	var id int64
	err := s.db.QueryRow(`INSERT INTO users (name, email) VALUES ('Test User', ?) RETURNING id`, email).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *AchievementRepositorySuite) TestGetOrCreateIsOneShot() {
	ctx := context.Background()
	userID := s.createUser("a@example.com")

	first, created, err := s.repo.GetOrCreate(ctx, userID, "first_plan", "Getting Started", "Created your first study plan!")
	s.Require().NoError(err)
	s.Assert().True(created)
	s.Assert().Equal("Getting Started", first.Title)

	again, created, err := s.repo.GetOrCreate(ctx, userID, "first_plan", "Getting Started", "Created your first study plan!")
	s.Require().NoError(err)
	s.Assert().False(created)
	s.Assert().Equal(first.ID, again.ID)
	s.Assert().Equal(first.EarnedAt, again.EarnedAt)

	var count int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM achievements WHERE user_id = ?`, userID).Scan(&count)
	s.Require().NoError(err)
	s.Assert().Equal(1, count)
}

func (s *AchievementRepositorySuite) TestSameTypeDifferentUsers() {
	ctx := context.Background()
	a := s.createUser("a@example.com")
	b := s.createUser("b@example.com")

	_, created, err := s.repo.GetOrCreate(ctx, a, "hours_10", "Dedicated Learner", "Studied for 10 hours!")
	s.Require().NoError(err)
	s.Assert().True(created)

	_, created, err = s.repo.GetOrCreate(ctx, b, "hours_10", "Dedicated Learner", "Studied for 10 hours!")
	s.Require().NoError(err)
	s.Assert().True(created)
}

func (s *AchievementRepositorySuite) TestListByUser() {
	ctx := context.Background()
	userID := s.createUser("a@example.com")
	other := s.createUser("b@example.com")

	for _, t := range []string{"first_plan", "first_completion"} {
		_, _, err := s.repo.GetOrCreate(ctx, userID, t, "Badge", "")
		s.Require().NoError(err)
	}
	_, _, err := s.repo.GetOrCreate(ctx, other, "first_plan", "Badge", "")
	s.Require().NoError(err)

	list, err := s.repo.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Assert().Len(list, 2)
	for _, a := range list {
		s.Assert().Equal(userID, a.UserID)
	}
}

func TestAchievementRepositorySuite(t *testing.T) {
	suite.Run(t, new(AchievementRepositorySuite))
}
