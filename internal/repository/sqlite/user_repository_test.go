package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
	"github.com/lbraga/studytrack/internal/repository/sqlite"
	"github.com/lbraga/studytrack/internal/testutil"
)

type UserRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.UserRepository
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewUserRepository(s.db)
}

func (s *UserRepositorySuite) createUserWithPoints(email string, points int) int64 {
	var id int64
	err := s.db.QueryRow(`
INSERT INTO users (name, email, total_points) VALUES ('Test User', ?, ?) RETURNING id
`, email, points).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *UserRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()

	created, err := s.repo.Create(ctx, models.User{
		Name:  "Lia",
		Email: "lia@example.com",
		Goals: "learn distributed systems",
	})
	s.Require().NoError(err)
	s.Assert().Greater(created.ID, int64(0))
	s.Assert().Equal(0, created.TotalPoints)
	s.Assert().Equal(0, created.CurrentRank)

	got, err := s.repo.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal("Lia", got.Name)

	missing, err := s.repo.Get(ctx, 9999)
	s.Require().NoError(err)
	s.Assert().Nil(missing)
}

func (s *UserRepositorySuite) TestRecomputeRanksIsDeterministic() {
	ctx := context.Background()
	first := s.createUserWithPoints("a@example.com", 50)
	second := s.createUserWithPoints("b@example.com", 50)
	third := s.createUserWithPoints("c@example.com", 30)

	n, err := s.repo.RecomputeRanks(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(3, n)

	// ties broken by id: the earlier account outranks the later one
	ranks := map[int64]int{}
	for _, id := range []int64{first, second, third} {
		u, err := s.repo.Get(ctx, id)
		s.Require().NoError(err)
		ranks[id] = u.CurrentRank
	}
	s.Assert().Equal(1, ranks[first])
	s.Assert().Equal(2, ranks[second])
	s.Assert().Equal(3, ranks[third])

	// stable across repeated runs
	_, err = s.repo.RecomputeRanks(ctx)
	s.Require().NoError(err)
	u, err := s.repo.Get(ctx, second)
	s.Require().NoError(err)
	s.Assert().Equal(2, u.CurrentRank)
}

func (s *UserRepositorySuite) TestLeaderboard() {
	ctx := context.Background()
	s.createUserWithPoints("a@example.com", 10)
	topID := s.createUserWithPoints("b@example.com", 80)
	s.createUserWithPoints("c@example.com", 40)

	_, err := s.repo.RecomputeRanks(ctx)
	s.Require().NoError(err)

	entries, err := s.repo.Leaderboard(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Assert().Equal(topID, entries[0].UserID)
	s.Assert().Equal(80, entries[0].TotalPoints)
	s.Assert().Equal(1, entries[0].Rank)
	s.Assert().Equal(40, entries[1].TotalPoints)
}

func (s *UserRepositorySuite) TestCountWithMorePoints() {
	ctx := context.Background()
	s.createUserWithPoints("a@example.com", 10)
	s.createUserWithPoints("b@example.com", 80)
	s.createUserWithPoints("c@example.com", 40)

	n, err := s.repo.CountWithMorePoints(ctx, 40)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)

	n, err = s.repo.CountWithMorePoints(ctx, 0)
	s.Require().NoError(err)
	s.Assert().Equal(3, n)
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}
