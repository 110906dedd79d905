package services

import (
	"context"
	"time"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/grading"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

// QuizService handles the quiz lifecycle: authoring state changes,
// attempt admission, grading and the points credit.
type QuizService interface {
	CreateQuiz(ctx context.Context, quiz models.Quiz, questions []models.Question) (*models.Quiz, error)
	GetQuiz(ctx context.Context, id int64) (*models.Quiz, error)
	PublishQuiz(ctx context.Context, id, userID int64) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id, userID int64) error
	StartAttempt(ctx context.Context, quizID, userID int64) (*models.QuizAttempt, error)
	SubmitAttempt(ctx context.Context, attemptID, userID int64, sub grading.Submission) (*models.AttemptResult, error)
	AttemptResult(ctx context.Context, attemptID, userID int64) (*models.AttemptResult, error)
}

type quizService struct {
	quizRepo repository.QuizRepository
	ranking  RankingService
}

// NewQuizService creates a new QuizService
func NewQuizService(quizRepo repository.QuizRepository, ranking RankingService) QuizService {
	return &quizService{quizRepo: quizRepo, ranking: ranking}
}

func (s *quizService) CreateQuiz(ctx context.Context, quiz models.Quiz, questions []models.Question) (*models.Quiz, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating quiz: title=%s", quiz.Title)

	if quiz.Title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}
	if quiz.PassingScore < 0 || quiz.PassingScore > 100 {
		return nil, errors.NewValidationError("passing_score", "must be between 0 and 100")
	}
	for _, q := range questions {
		if len(q.Options) == 0 {
			return nil, errors.NewValidationError("questions", "every question needs at least one option")
		}
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			return nil, errors.NewValidationError("questions", "every question needs a correct option")
		}
		if correct > 1 && q.QuestionType != models.QuestionTypeCheckboxes {
			return nil, errors.NewValidationError("questions", "only checkbox questions may have several correct options")
		}
	}

	created, err := s.quizRepo.CreateQuiz(ctx, quiz, questions)
	if err != nil {
		log.Error("failed to create quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("quiz created: id=%d", created.ID)
	return created, nil
}

func (s *quizService) GetQuiz(ctx context.Context, id int64) (*models.Quiz, error) {
	log := logger.FromContext(ctx)

	quiz, err := s.quizRepo.GetQuiz(ctx, id)
	if err != nil {
		log.Error("failed to get quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if quiz == nil {
		return nil, errors.NewNotFoundError("quiz", id)
	}
	return quiz, nil
}

// PublishQuiz moves a draft to published. A quiz without questions is
// not publishable since an attempt against it could never be graded.
func (s *quizService) PublishQuiz(ctx context.Context, id, userID int64) (*models.Quiz, error) {
	log := logger.FromContext(ctx)
	log.Debug("publishing quiz: id=%d", id)

	quiz, err := s.ownedQuiz(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizStatusDraft {
		return nil, errors.NewInvalidStateError("only draft quizzes can be published")
	}

	questions, err := s.quizRepo.Questions(ctx, id)
	if err != nil {
		log.Error("failed to load questions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(questions) == 0 {
		return nil, errors.NewInvalidStateError("quiz has no questions")
	}

	if err := s.quizRepo.UpdateQuizStatus(ctx, id, models.QuizStatusPublished); err != nil {
		log.Error("failed to publish quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	quiz.Status = models.QuizStatusPublished

	log.Info("quiz published: id=%d", id)
	return quiz, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, id, userID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting quiz: id=%d", id)

	quiz, err := s.ownedQuiz(ctx, id, userID)
	if err != nil {
		return err
	}
	if quiz.Status != models.QuizStatusDraft {
		return errors.NewInvalidStateError("only draft quizzes can be deleted")
	}

	if err := s.quizRepo.DeleteQuiz(ctx, id); err != nil {
		log.Error("failed to delete quiz: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("quiz deleted: id=%d", id)
	return nil
}

func (s *quizService) ownedQuiz(ctx context.Context, id, userID int64) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetQuiz(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if quiz == nil || quiz.CreatedBy == nil || *quiz.CreatedBy != userID {
		return nil, errors.NewNotFoundError("quiz", id)
	}
	return quiz, nil
}

// StartAttempt admits a new attempt against a published quiz.
// System-generated quizzes allow a single completed attempt ever;
// user-authored ones are bounded by allow_retake and max_attempts.
func (s *quizService) StartAttempt(ctx context.Context, quizID, userID int64) (*models.QuizAttempt, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting attempt: quiz_id=%d, user_id=%d", quizID, userID)

	quiz, err := s.quizRepo.GetQuiz(ctx, quizID)
	if err != nil {
		log.Error("failed to get quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if quiz == nil {
		return nil, errors.NewNotFoundError("quiz", quizID)
	}
	if quiz.Status != models.QuizStatusPublished {
		return nil, errors.NewInvalidStateError("quiz is not published")
	}

	completed, err := s.quizRepo.CountCompletedAttempts(ctx, quizID, userID)
	if err != nil {
		log.Error("failed to count completed attempts: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if quiz.AIGenerated() {
		if completed >= 1 {
			return nil, errors.NewInvalidStateError("quiz already completed")
		}
	} else {
		if completed >= 1 && !quiz.AllowRetake {
			return nil, errors.NewInvalidStateError("quiz does not allow retakes")
		}
	}

	total, err := s.quizRepo.CountAttempts(ctx, quizID, userID)
	if err != nil {
		log.Error("failed to count attempts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !quiz.AIGenerated() && quiz.MaxAttempts != nil && total >= *quiz.MaxAttempts {
		return nil, errors.NewInvalidStateError("attempt limit reached")
	}

	attempt, err := s.quizRepo.CreateAttempt(ctx, models.QuizAttempt{
		QuizID:        quizID,
		UserID:        userID,
		StudyPlanID:   quiz.StudyPlanID,
		AttemptNumber: total + 1,
		StartedAt:     time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to create attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("attempt started: id=%d, quiz_id=%d, number=%d", attempt.ID, quizID, attempt.AttemptNumber)
	return attempt, nil
}

// SubmitAttempt grades the submission, finalizes the attempt and
// credits points, then recomputes the global ranking.
func (s *quizService) SubmitAttempt(ctx context.Context, attemptID, userID int64, sub grading.Submission) (*models.AttemptResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting attempt: id=%d", attemptID)

	attempt, err := s.quizRepo.GetAttempt(ctx, attemptID, userID)
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if attempt == nil {
		return nil, errors.NewNotFoundError("attempt", attemptID)
	}
	if attempt.Submitted() {
		return nil, errors.NewInvalidStateError("attempt already submitted")
	}

	quiz, err := s.quizRepo.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		log.Error("failed to get quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if quiz == nil {
		return nil, errors.NewNotFoundError("quiz", attempt.QuizID)
	}

	questions, err := s.quizRepo.Questions(ctx, attempt.QuizID)
	if err != nil {
		log.Error("failed to load questions: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := time.Now().UTC()
	graded := grading.Grade(questions, sub, quiz.PassingScore, now)
	earned, credit := grading.Points(graded.CorrectCount, quiz.AIGenerated(), attempt.AttemptNumber)

	attempt.CompletedAt = &now
	attempt.PercentageScore = graded.PercentageScore
	attempt.IsPassed = graded.Passed
	attempt.AnswersCount = graded.AnsweredCount
	attempt.CorrectAnswers = graded.CorrectCount
	attempt.PointsEarned = earned

	finalized, err := s.quizRepo.FinalizeAttempt(ctx, *attempt, graded.Answers, credit)
	if err != nil {
		log.Error("failed to finalize attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !finalized {
		return nil, errors.NewInvalidStateError("attempt already submitted")
	}

	// Recompute even when the credit was zero; a rank must never be
	// stale after a submission. The credit is committed at this point,
	// so a recompute failure cannot fail the request; ranks stay stale
	// until the next submission reruns the recompute.
	if _, err := s.ranking.RecomputeAll(ctx); err != nil {
		log.Warn("rank recompute failed after submit: %v", err)
	}

	log.Info("attempt submitted: id=%d, score=%.2f, passed=%t, credit=%d",
		attempt.ID, attempt.PercentageScore, attempt.IsPassed, credit)

	return &models.AttemptResult{
		Attempt:  *attempt,
		Quiz:     *quiz,
		Answers:  graded.Answers,
		Earned:   earned,
		Credited: credit,
	}, nil
}

func (s *quizService) AttemptResult(ctx context.Context, attemptID, userID int64) (*models.AttemptResult, error) {
	log := logger.FromContext(ctx)

	attempt, err := s.quizRepo.GetAttempt(ctx, attemptID, userID)
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if attempt == nil {
		return nil, errors.NewNotFoundError("attempt", attemptID)
	}

	quiz, err := s.quizRepo.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		log.Error("failed to get quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if quiz == nil {
		return nil, errors.NewNotFoundError("quiz", attempt.QuizID)
	}

	answers, err := s.quizRepo.AttemptAnswers(ctx, attemptID)
	if err != nil {
		log.Error("failed to load answers: %v", err)
		return nil, errors.NewInternalError(err)
	}

	var credit int
	if attempt.AttemptNumber == 1 && attempt.Submitted() {
		_, credit = grading.Points(attempt.CorrectAnswers, quiz.AIGenerated(), attempt.AttemptNumber)
	}

	return &models.AttemptResult{
		Attempt:  *attempt,
		Quiz:     *quiz,
		Answers:  answers,
		Earned:   attempt.PointsEarned,
		Credited: credit,
	}, nil
}
