package models

import "time"

// Quiz statuses; attempts are only allowed against published quizzes.
const (
	QuizStatusDraft     = "draft"
	QuizStatusPublished = "published"
	QuizStatusArchived  = "archived"
)

// Question types. Checkbox questions may have several correct options
// and are graded all-or-nothing.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeDropdown       = "dropdown"
	QuestionTypeCheckboxes     = "checkboxes"
)

// Quiz is the authoring-time structure the engine reads at grading
// time. CreatedBy == nil marks a system/AI-generated quiz, which
// carries a different points rate and a one-attempt limit.
type Quiz struct {
	ID             int64     `json:"id"`
	StudyPlanID    *int64    `json:"study_plan_id,omitempty"`
	CreatedBy      *int64    `json:"created_by,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Difficulty     string    `json:"difficulty"`
	Status         string    `json:"status"`
	TotalQuestions int       `json:"total_questions"`
	PassingScore   float64   `json:"passing_score"`
	TimeLimit      *int      `json:"time_limit,omitempty"`
	AllowRetake    bool      `json:"allow_retake"`
	MaxAttempts    *int      `json:"max_attempts,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (q Quiz) AIGenerated() bool { return q.CreatedBy == nil }

type Question struct {
	ID           int64            `json:"id"`
	QuizID       int64            `json:"quiz_id"`
	QuestionText string           `json:"question_text"`
	QuestionType string           `json:"question_type"`
	Order        int              `json:"order"`
	Explanation  string           `json:"explanation"`
	Options      []QuestionOption `json:"options,omitempty"`
}

type QuestionOption struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
	Order      int    `json:"order"`
}

// QuizAttempt is created when a user starts a quiz and finalized once
// on submit; a finalized attempt is immutable.
type QuizAttempt struct {
	ID              int64      `json:"id"`
	QuizID          int64      `json:"quiz_id"`
	UserID          int64      `json:"user_id"`
	StudyPlanID     *int64     `json:"study_plan_id,omitempty"`
	AttemptNumber   int        `json:"attempt_number"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	PercentageScore float64    `json:"percentage_score"`
	IsPassed        bool       `json:"is_passed"`
	AnswersCount    int        `json:"answers_count"`
	CorrectAnswers  int        `json:"correct_answers"`
	PointsEarned    float64    `json:"points_earned"`
}

func (a QuizAttempt) Submitted() bool { return a.CompletedAt != nil }

// Answer records one selected option of a finalized attempt. Checkbox
// questions produce one row per selected option, all sharing the
// question's computed correctness.
type Answer struct {
	ID               int64     `json:"id"`
	QuestionID       int64     `json:"question_id"`
	AttemptID        int64     `json:"attempt_id"`
	SelectedOptionID int64     `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
	AnsweredAt       time.Time `json:"answered_at"`
}

// AttemptResult is the read-side detail for a finished attempt.
type AttemptResult struct {
	Attempt  QuizAttempt `json:"attempt"`
	Quiz     Quiz        `json:"quiz"`
	Answers  []Answer    `json:"answers"`
	Earned   float64     `json:"points_earned"`
	Credited int         `json:"points_credited"`
}
