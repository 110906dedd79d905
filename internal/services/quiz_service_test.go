package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/grading"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/services"
	"github.com/lbraga/studytrack/internal/testutil/mocks"
)

func publishedQuiz(id int64, createdBy *int64) *models.Quiz {
	return &models.Quiz{
		ID:           id,
		CreatedBy:    createdBy,
		Title:        "Quiz",
		Status:       models.QuizStatusPublished,
		PassingScore: 70,
	}
}

func rankingWith(userRepo *mocks.MockUserRepository) services.RankingService {
	return services.NewRankingService(userRepo, 20)
}

func assertInvalidState(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidState, appErr.Code)
}

func TestStartAttempt_AIQuizSingleCompletion(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(publishedQuiz(1, nil), nil)
	quizRepo.On("CountCompletedAttempts", mock.Anything, int64(1), int64(7)).Return(1, nil)

	_, err := svc.StartAttempt(context.Background(), 1, 7)
	assertInvalidState(t, err)
	quizRepo.AssertExpectations(t)
}

func TestStartAttempt_RetakeDisallowed(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	creator := int64(3)
	quiz := publishedQuiz(1, &creator)
	quiz.AllowRetake = false
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(quiz, nil)
	quizRepo.On("CountCompletedAttempts", mock.Anything, int64(1), int64(7)).Return(1, nil)

	_, err := svc.StartAttempt(context.Background(), 1, 7)
	assertInvalidState(t, err)
}

func TestStartAttempt_MaxAttemptsReached(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	creator := int64(3)
	maxAttempts := 2
	quiz := publishedQuiz(1, &creator)
	quiz.AllowRetake = true
	quiz.MaxAttempts = &maxAttempts
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(quiz, nil)
	quizRepo.On("CountCompletedAttempts", mock.Anything, int64(1), int64(7)).Return(1, nil)
	quizRepo.On("CountAttempts", mock.Anything, int64(1), int64(7)).Return(2, nil)

	_, err := svc.StartAttempt(context.Background(), 1, 7)
	assertInvalidState(t, err)
}

func TestStartAttempt_NumbersSequentially(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	creator := int64(3)
	quiz := publishedQuiz(1, &creator)
	quiz.AllowRetake = true
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(quiz, nil)
	quizRepo.On("CountCompletedAttempts", mock.Anything, int64(1), int64(7)).Return(1, nil)
	quizRepo.On("CountAttempts", mock.Anything, int64(1), int64(7)).Return(2, nil)
	quizRepo.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a models.QuizAttempt) bool {
		return a.AttemptNumber == 3 && a.QuizID == 1 && a.UserID == 7
	})).Return(&models.QuizAttempt{ID: 42, QuizID: 1, UserID: 7, AttemptNumber: 3}, nil)

	attempt, err := svc.StartAttempt(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, attempt.AttemptNumber)
	quizRepo.AssertExpectations(t)
}

func TestStartAttempt_DraftQuizRejected(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	quiz := publishedQuiz(1, nil)
	quiz.Status = models.QuizStatusDraft
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(quiz, nil)

	_, err := svc.StartAttempt(context.Background(), 1, 7)
	assertInvalidState(t, err)
}

func TestSubmitAttempt_GradesAndRecomputesRanks(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	userRepo := new(mocks.MockUserRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(userRepo))

	quiz := publishedQuiz(1, nil)
	questions := []models.Question{
		{
			ID:           10,
			QuestionType: models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{ID: 100, IsCorrect: true},
				{ID: 101, IsCorrect: false},
			},
		},
		{
			ID:           11,
			QuestionType: models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{ID: 110, IsCorrect: true},
				{ID: 111, IsCorrect: false},
			},
		},
	}

	quizRepo.On("GetAttempt", mock.Anything, int64(42), int64(7)).
		Return(&models.QuizAttempt{ID: 42, QuizID: 1, UserID: 7, AttemptNumber: 1}, nil)
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(quiz, nil)
	quizRepo.On("Questions", mock.Anything, int64(1)).Return(questions, nil)
	quizRepo.On("FinalizeAttempt", mock.Anything, mock.MatchedBy(func(a models.QuizAttempt) bool {
		return a.CorrectAnswers == 1 && a.PercentageScore == 50.0 && !a.IsPassed && a.Submitted()
	}), mock.Anything, 1).Return(true, nil)
	userRepo.On("RecomputeRanks", mock.Anything).Return(3, nil)

	result, err := svc.SubmitAttempt(context.Background(), 42, 7, grading.Submission{
		10: {100},
		11: {111},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Credited)
	assert.Equal(t, 1.0, result.Earned)
	assert.False(t, result.Attempt.IsPassed)
	quizRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestSubmitAttempt_RepeatAttemptRecordsZeroPoints(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	userRepo := new(mocks.MockUserRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(userRepo))

	quiz := publishedQuiz(1, nil)
	questions := []models.Question{
		{
			ID:           10,
			QuestionType: models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{ID: 100, IsCorrect: true},
				{ID: 101, IsCorrect: false},
			},
		},
	}

	quizRepo.On("GetAttempt", mock.Anything, int64(42), int64(7)).
		Return(&models.QuizAttempt{ID: 42, QuizID: 1, UserID: 7, AttemptNumber: 2}, nil)
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(quiz, nil)
	quizRepo.On("Questions", mock.Anything, int64(1)).Return(questions, nil)
	quizRepo.On("FinalizeAttempt", mock.Anything, mock.MatchedBy(func(a models.QuizAttempt) bool {
		return a.CorrectAnswers == 1 && a.PointsEarned == 0
	}), mock.Anything, 0).Return(true, nil)
	userRepo.On("RecomputeRanks", mock.Anything).Return(3, nil)

	result, err := svc.SubmitAttempt(context.Background(), 42, 7, grading.Submission{10: {100}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Earned)
	assert.Equal(t, 0, result.Credited)
	assert.Equal(t, 0.0, result.Attempt.PointsEarned)
	quizRepo.AssertExpectations(t)
}

func TestSubmitAttempt_SucceedsWhenRankRecomputeFails(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	userRepo := new(mocks.MockUserRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(userRepo))

	quiz := publishedQuiz(1, nil)
	questions := []models.Question{
		{
			ID:           10,
			QuestionType: models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{ID: 100, IsCorrect: true},
			},
		},
	}

	quizRepo.On("GetAttempt", mock.Anything, int64(42), int64(7)).
		Return(&models.QuizAttempt{ID: 42, QuizID: 1, UserID: 7, AttemptNumber: 1}, nil)
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(quiz, nil)
	quizRepo.On("Questions", mock.Anything, int64(1)).Return(questions, nil)
	quizRepo.On("FinalizeAttempt", mock.Anything, mock.Anything, mock.Anything, 1).Return(true, nil)
	userRepo.On("RecomputeRanks", mock.Anything).Return(0, assert.AnError)

	result, err := svc.SubmitAttempt(context.Background(), 42, 7, grading.Submission{10: {100}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Credited)
}

func TestSubmitAttempt_AlreadySubmitted(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	done := models.QuizAttempt{ID: 42, QuizID: 1, UserID: 7, AttemptNumber: 1}
	now := done.StartedAt
	done.CompletedAt = &now

	quizRepo.On("GetAttempt", mock.Anything, int64(42), int64(7)).Return(&done, nil)

	_, err := svc.SubmitAttempt(context.Background(), 42, 7, grading.Submission{})
	assertInvalidState(t, err)
}

func TestPublishQuiz_RequiresQuestions(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	creator := int64(7)
	draft := &models.Quiz{ID: 1, CreatedBy: &creator, Status: models.QuizStatusDraft}
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(draft, nil)
	quizRepo.On("Questions", mock.Anything, int64(1)).Return(nil, nil)

	_, err := svc.PublishQuiz(context.Background(), 1, 7)
	assertInvalidState(t, err)
}

func TestDeleteQuiz_DraftOnly(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	creator := int64(7)
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(publishedQuiz(1, &creator), nil)

	err := svc.DeleteQuiz(context.Background(), 1, 7)
	assertInvalidState(t, err)
	quizRepo.AssertNotCalled(t, "DeleteQuiz", mock.Anything, mock.Anything)
}

func TestQuizOwnershipHiddenAsNotFound(t *testing.T) {
	quizRepo := new(mocks.MockQuizRepository)
	svc := services.NewQuizService(quizRepo, rankingWith(new(mocks.MockUserRepository)))

	creator := int64(3)
	quizRepo.On("GetQuiz", mock.Anything, int64(1)).Return(publishedQuiz(1, &creator), nil)

	_, err := svc.PublishQuiz(context.Background(), 1, 7)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
}
