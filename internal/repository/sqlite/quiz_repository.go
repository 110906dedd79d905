package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new QuizRepository implementation
func NewQuizRepository(db *sql.DB) repository.QuizRepository {
	return &quizRepository{db: db}
}

const quizColumns = `id, study_plan_id, created_by, title, description, difficulty, status, total_questions, passing_score, time_limit, allow_retake, max_attempts, created_at, updated_at`

func scanQuiz(scan func(...any) error) (*models.Quiz, error) {
	var q models.Quiz
	var planID, createdBy sql.NullInt64
	var timeLimit sql.NullInt64
	err := scan(&q.ID, &planID, &createdBy, &q.Title, &q.Description, &q.Difficulty, &q.Status, &q.TotalQuestions, &q.PassingScore, &timeLimit, &q.AllowRetake, &q.MaxAttempts, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if planID.Valid {
		q.StudyPlanID = &planID.Int64
	}
	if createdBy.Valid {
		q.CreatedBy = &createdBy.Int64
	}
	if timeLimit.Valid {
		v := int(timeLimit.Int64)
		q.TimeLimit = &v
	}
	return &q, nil
}

// CreateQuiz inserts the quiz with its questions and options in one
// transaction; the authoring surface hands over the full structure at
// once.
func (r *quizRepository) CreateQuiz(ctx context.Context, quiz models.Quiz, questions []models.Question) (*models.Quiz, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("creating quiz: title=%s, questions=%d", quiz.Title, len(questions))

	var created *models.Quiz
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		status := quiz.Status
		if status == "" {
			status = models.QuizStatusDraft
		}
		row := tx.QueryRowContext(ctx, `
INSERT INTO quizzes (study_plan_id, created_by, title, description, difficulty, status, total_questions, passing_score, time_limit, allow_retake, max_attempts)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING `+quizColumns+`
`, quiz.StudyPlanID, quiz.CreatedBy, quiz.Title, quiz.Description, quiz.Difficulty, status, len(questions), quiz.PassingScore, quiz.TimeLimit, quiz.AllowRetake, quiz.MaxAttempts)
		q, err := scanQuiz(row.Scan)
		if err != nil {
			return err
		}

		for _, question := range questions {
			var questionID int64
			err := tx.QueryRowContext(ctx, `
INSERT INTO questions (quiz_id, question_text, question_type, ord, explanation)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`, q.ID, question.QuestionText, question.QuestionType, question.Order, question.Explanation).Scan(&questionID)
			if err != nil {
				return err
			}
			for _, opt := range question.Options {
				if _, err := tx.ExecContext(ctx, `
INSERT INTO question_options (question_id, option_text, is_correct, ord)
VALUES (?, ?, ?, ?)
`, questionID, opt.OptionText, opt.IsCorrect, opt.Order); err != nil {
					return err
				}
			}
		}
		created = q
		return nil
	})
	if err != nil {
		log.Error("failed to create quiz: %v", err)
		return nil, err
	}
	log.Debug("quiz created: id=%d", created.ID)
	return created, nil
}

func (r *quizRepository) GetQuiz(ctx context.Context, id int64) (*models.Quiz, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	row := r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = ?`, id)
	q, err := scanQuiz(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("quiz not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get quiz: %v", err)
		return nil, err
	}
	return q, nil
}

// Questions returns the quiz's questions in order, options populated.
func (r *quizRepository) Questions(ctx context.Context, quizID int64) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("loading questions: quiz_id=%d", quizID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, quiz_id, question_text, question_type, ord, explanation
FROM questions
WHERE quiz_id = ?
ORDER BY ord, id
`, quizID)
	if err != nil {
		log.Error("failed to query questions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	index := map[int64]int{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.QuestionText, &q.QuestionType, &q.Order, &q.Explanation); err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}

	optRows, err := r.db.QueryContext(ctx, `
SELECT o.id, o.question_id, o.option_text, o.is_correct, o.ord
FROM question_options o
JOIN questions q ON q.id = o.question_id
WHERE q.quiz_id = ?
ORDER BY o.question_id, o.ord, o.id
`, quizID)
	if err != nil {
		log.Error("failed to query options: %v", err)
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o models.QuestionOption
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.IsCorrect, &o.Order); err != nil {
			return nil, err
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, optRows.Err()
}

func (r *quizRepository) UpdateQuizStatus(ctx context.Context, id int64, status string) error {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("updating quiz status: id=%d, status=%s", id, status)

	_, err := r.db.ExecContext(ctx, `
UPDATE quizzes SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`, status, id)
	if err != nil {
		log.Error("failed to update quiz status: %v", err)
	}
	return err
}

func (r *quizRepository) DeleteQuiz(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("deleting quiz: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete quiz: %v", err)
	}
	return err
}

func (r *quizRepository) CountAttempts(ctx context.Context, quizID, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM quiz_attempts WHERE quiz_id = ? AND user_id = ?
`, quizID, userID).Scan(&n)
	return n, err
}

func (r *quizRepository) CountCompletedAttempts(ctx context.Context, quizID, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM quiz_attempts WHERE quiz_id = ? AND user_id = ? AND completed_at IS NOT NULL
`, quizID, userID).Scan(&n)
	return n, err
}

const attemptColumns = `id, quiz_id, user_id, study_plan_id, attempt_number, started_at, completed_at, percentage_score, is_passed, answers_count, correct_answers, points_earned`

func scanAttempt(scan func(...any) error) (*models.QuizAttempt, error) {
	var a models.QuizAttempt
	var planID sql.NullInt64
	var completed sql.NullTime
	err := scan(&a.ID, &a.QuizID, &a.UserID, &planID, &a.AttemptNumber, &a.StartedAt, &completed, &a.PercentageScore, &a.IsPassed, &a.AnswersCount, &a.CorrectAnswers, &a.PointsEarned)
	if err != nil {
		return nil, err
	}
	if planID.Valid {
		a.StudyPlanID = &planID.Int64
	}
	if completed.Valid {
		a.CompletedAt = &completed.Time
	}
	return &a, nil
}

func (r *quizRepository) CreateAttempt(ctx context.Context, attempt models.QuizAttempt) (*models.QuizAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("creating attempt: quiz_id=%d, user_id=%d, number=%d", attempt.QuizID, attempt.UserID, attempt.AttemptNumber)

	row := r.db.QueryRowContext(ctx, `
INSERT INTO quiz_attempts (quiz_id, user_id, study_plan_id, attempt_number, started_at)
VALUES (?, ?, ?, ?, ?)
RETURNING `+attemptColumns+`
`, attempt.QuizID, attempt.UserID, attempt.StudyPlanID, attempt.AttemptNumber, attempt.StartedAt)
	a, err := scanAttempt(row.Scan)
	if err != nil {
		log.Error("failed to create attempt: %v", err)
		return nil, err
	}
	log.Debug("attempt created: id=%d", a.ID)
	return a, nil
}

func (r *quizRepository) GetAttempt(ctx context.Context, id, userID int64) (*models.QuizAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = ? AND user_id = ?
`, id, userID)
	a, err := scanAttempt(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("attempt not found: id=%d, user_id=%d", id, userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, err
	}
	return a, nil
}

func (r *quizRepository) AttemptAnswers(ctx context.Context, attemptID int64) ([]models.Answer, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, question_id, attempt_id, selected_option_id, is_correct, answered_at
FROM answers
WHERE attempt_id = ?
ORDER BY question_id, id
`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AttemptID, &a.SelectedOptionID, &a.IsCorrect, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// FinalizeAttempt writes the graded attempt, its answer rows, and the
// user's point credit as one atomic unit. The completed_at IS NULL
// guard makes the transition one-shot: a second submission finds zero
// rows to update, inserts nothing, credits nothing, and returns false.
func (r *quizRepository) FinalizeAttempt(ctx context.Context, attempt models.QuizAttempt, answers []models.Answer, pointsCredit int) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("finalizing attempt: id=%d, correct=%d, credit=%d", attempt.ID, attempt.CorrectAnswers, pointsCredit)

	var finalized bool
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE quiz_attempts
SET completed_at = ?, percentage_score = ?, is_passed = ?, answers_count = ?, correct_answers = ?, points_earned = ?
WHERE id = ? AND completed_at IS NULL
`, attempt.CompletedAt, attempt.PercentageScore, attempt.IsPassed, attempt.AnswersCount, attempt.CorrectAnswers, attempt.PointsEarned, attempt.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil // already submitted elsewhere; leave finalized false
		}

		for _, a := range answers {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO answers (question_id, attempt_id, selected_option_id, is_correct, answered_at)
VALUES (?, ?, ?, ?, ?)
`, a.QuestionID, attempt.ID, a.SelectedOptionID, a.IsCorrect, a.AnsweredAt); err != nil {
				return err
			}
		}

		if pointsCredit != 0 {
			// Atomic in-place increment; never read-modify-write from Go.
			if _, err := tx.ExecContext(ctx, `
UPDATE users SET total_points = total_points + ? WHERE id = ?
`, pointsCredit, attempt.UserID); err != nil {
				return err
			}
		}
		finalized = true
		return nil
	})
	if err != nil {
		log.Error("failed to finalize attempt: %v", err)
		return false, err
	}
	return finalized, nil
}
