package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lbraga/studytrack/internal/models"
)

// MockQuizRepository is a mock implementation of repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateQuiz(ctx context.Context, quiz models.Quiz, questions []models.Question) (*models.Quiz, error) {
	args := m.Called(ctx, quiz, questions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuiz(ctx context.Context, id int64) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Questions(ctx context.Context, quizID int64) ([]models.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuizStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockQuizRepository) DeleteQuiz(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) CountAttempts(ctx context.Context, quizID, userID int64) (int, error) {
	args := m.Called(ctx, quizID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuizRepository) CountCompletedAttempts(ctx context.Context, quizID, userID int64) (int, error) {
	args := m.Called(ctx, quizID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuizRepository) CreateAttempt(ctx context.Context, attempt models.QuizAttempt) (*models.QuizAttempt, error) {
	args := m.Called(ctx, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockQuizRepository) GetAttempt(ctx context.Context, id, userID int64) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockQuizRepository) AttemptAnswers(ctx context.Context, attemptID int64) ([]models.Answer, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Answer), args.Error(1)
}

func (m *MockQuizRepository) FinalizeAttempt(ctx context.Context, attempt models.QuizAttempt, answers []models.Answer, pointsCredit int) (bool, error) {
	args := m.Called(ctx, attempt, answers, pointsCredit)
	return args.Bool(0), args.Error(1)
}
