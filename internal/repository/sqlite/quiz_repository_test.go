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

type QuizRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.QuizRepository
}

func (s *QuizRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewQuizRepository(s.db)
}

func (s *QuizRepositorySuite) createUser(email string) int64 {
	var id int64
	err := s.db.QueryRow(`INSERT INTO users (name, email) VALUES ('Test User', ?) RETURNING id`, email).Scan(&id)
	s.Require().NoError(err)
	return id
}

func sampleQuestions() []models.Question {
	return []models.Question{
		{
			QuestionText: "What does a goroutine share with its creator?",
			QuestionType: models.QuestionTypeMultipleChoice,
			Order:        0,
			Options: []models.QuestionOption{
				{OptionText: "The address space", IsCorrect: true, Order: 0},
				{OptionText: "Nothing", IsCorrect: false, Order: 1},
			},
		},
		{
			QuestionText: "Channels are typed.",
			QuestionType: models.QuestionTypeTrueFalse,
			Order:        1,
			Options: []models.QuestionOption{
				{OptionText: "True", IsCorrect: true, Order: 0},
				{OptionText: "False", IsCorrect: false, Order: 1},
			},
		},
	}
}

func (s *QuizRepositorySuite) TestCreateQuizWithQuestions() {
	ctx := context.Background()
	userID := s.createUser("a@example.com")

	quiz, err := s.repo.CreateQuiz(ctx, models.Quiz{
		CreatedBy:    &userID,
		Title:        "Go Basics",
		PassingScore: 70,
		AllowRetake:  true,
	}, sampleQuestions())
	s.Require().NoError(err)
	s.Assert().Equal(models.QuizStatusDraft, quiz.Status)
	s.Assert().Equal(2, quiz.TotalQuestions)
	s.Assert().False(quiz.AIGenerated())

	questions, err := s.repo.Questions(ctx, quiz.ID)
	s.Require().NoError(err)
	s.Require().Len(questions, 2)
	s.Assert().Equal("What does a goroutine share with its creator?", questions[0].QuestionText)
	s.Require().Len(questions[0].Options, 2)
	s.Assert().True(questions[0].Options[0].IsCorrect)
}

func (s *QuizRepositorySuite) TestAIQuizHasNoCreator() {
	ctx := context.Background()

	quiz, err := s.repo.CreateQuiz(ctx, models.Quiz{
		Title:        "Generated Quiz",
		PassingScore: 70,
	}, sampleQuestions())
	s.Require().NoError(err)
	s.Assert().True(quiz.AIGenerated())
	s.Assert().Nil(quiz.CreatedBy)
}

func (s *QuizRepositorySuite) startAttempt(quizID, userID int64, number int) *models.QuizAttempt {
	attempt, err := s.repo.CreateAttempt(context.Background(), models.QuizAttempt{
		QuizID:        quizID,
		UserID:        userID,
		AttemptNumber: number,
		StartedAt:     time.Now().UTC(),
	})
	s.Require().NoError(err)
	return attempt
}

func (s *QuizRepositorySuite) TestFinalizeAttemptCreditsPointsOnce() {
	ctx := context.Background()
	userID := s.createUser("a@example.com")

	quiz, err := s.repo.CreateQuiz(ctx, models.Quiz{Title: "Generated", PassingScore: 70}, sampleQuestions())
	s.Require().NoError(err)

	questions, err := s.repo.Questions(ctx, quiz.ID)
	s.Require().NoError(err)

	attempt := s.startAttempt(quiz.ID, userID, 1)

	now := time.Now().UTC()
	attempt.CompletedAt = &now
	attempt.PercentageScore = 100
	attempt.IsPassed = true
	attempt.AnswersCount = 2
	attempt.CorrectAnswers = 2
	attempt.PointsEarned = 2

	answers := []models.Answer{
		{QuestionID: questions[0].ID, SelectedOptionID: questions[0].Options[0].ID, IsCorrect: true, AnsweredAt: now},
		{QuestionID: questions[1].ID, SelectedOptionID: questions[1].Options[0].ID, IsCorrect: true, AnsweredAt: now},
	}

	finalized, err := s.repo.FinalizeAttempt(ctx, *attempt, answers, 2)
	s.Require().NoError(err)
	s.Assert().True(finalized)

	var points int
	err = s.db.QueryRow(`SELECT total_points FROM users WHERE id = ?`, userID).Scan(&points)
	s.Require().NoError(err)
	s.Assert().Equal(2, points)

	stored, err := s.repo.AttemptAnswers(ctx, attempt.ID)
	s.Require().NoError(err)
	s.Assert().Len(stored, 2)

	// a second finalize is a no-op: no new answers, no second credit
	finalized, err = s.repo.FinalizeAttempt(ctx, *attempt, answers, 2)
	s.Require().NoError(err)
	s.Assert().False(finalized)

	err = s.db.QueryRow(`SELECT total_points FROM users WHERE id = ?`, userID).Scan(&points)
	s.Require().NoError(err)
	s.Assert().Equal(2, points)

	stored, err = s.repo.AttemptAnswers(ctx, attempt.ID)
	s.Require().NoError(err)
	s.Assert().Len(stored, 2)
}

func (s *QuizRepositorySuite) TestCountAttempts() {
	ctx := context.Background()
	userID := s.createUser("a@example.com")

	quiz, err := s.repo.CreateQuiz(ctx, models.Quiz{Title: "Generated", PassingScore: 70}, sampleQuestions())
	s.Require().NoError(err)

	first := s.startAttempt(quiz.ID, userID, 1)
	s.startAttempt(quiz.ID, userID, 2)

	total, err := s.repo.CountAttempts(ctx, quiz.ID, userID)
	s.Require().NoError(err)
	s.Assert().Equal(2, total)

	completed, err := s.repo.CountCompletedAttempts(ctx, quiz.ID, userID)
	s.Require().NoError(err)
	s.Assert().Equal(0, completed)

	now := time.Now().UTC()
	first.CompletedAt = &now
	_, err = s.repo.FinalizeAttempt(ctx, *first, nil, 0)
	s.Require().NoError(err)

	completed, err = s.repo.CountCompletedAttempts(ctx, quiz.ID, userID)
	s.Require().NoError(err)
	s.Assert().Equal(1, completed)
}

func (s *QuizRepositorySuite) TestDeleteQuizCascades() {
	ctx := context.Background()
	userID := s.createUser("a@example.com")

	quiz, err := s.repo.CreateQuiz(ctx, models.Quiz{CreatedBy: &userID, Title: "Draft", PassingScore: 70}, sampleQuestions())
	s.Require().NoError(err)

	s.Require().NoError(s.repo.DeleteQuiz(ctx, quiz.ID))

	got, err := s.repo.GetQuiz(ctx, quiz.ID)
	s.Require().NoError(err)
	s.Assert().Nil(got)

	var count int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM questions WHERE quiz_id = ?`, quiz.ID).Scan(&count)
	s.Require().NoError(err)
	s.Assert().Equal(0, count)
}

func (s *QuizRepositorySuite) TestAttemptOwnership() {
	ctx := context.Background()
	userID := s.createUser("a@example.com")
	other := s.createUser("b@example.com")

	quiz, err := s.repo.CreateQuiz(ctx, models.Quiz{Title: "Generated", PassingScore: 70}, sampleQuestions())
	s.Require().NoError(err)

	attempt := s.startAttempt(quiz.ID, userID, 1)

	got, err := s.repo.GetAttempt(ctx, attempt.ID, other)
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func TestQuizRepositorySuite(t *testing.T) {
	suite.Run(t, new(QuizRepositorySuite))
}
