package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lbraga/studytrack/internal/models"
)

// ErrDuplicateAttach reports a (plan, resource) pair that is already
// linked; callers translate it to a validation failure.
var ErrDuplicateAttach = errors.New("resource already attached to plan")

// UserRepository handles user directory and points/ranking data access.
// Point totals are only ever written by QuizRepository.FinalizeAttempt
// and ranks by RecomputeRanks; everything else is read-only.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	RecomputeRanks(ctx context.Context) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	CountWithMorePoints(ctx context.Context, points int) (int, error)
}

// PlanRepository handles study plan data access.
type PlanRepository interface {
	Create(ctx context.Context, plan models.StudyPlan) (*models.StudyPlan, error)
	Get(ctx context.Context, id, userID int64) (*models.StudyPlan, error)
	List(ctx context.Context, userID int64, status string) ([]models.StudyPlan, error)
}

// ResourceRepository handles the resource catalog and plan attachment.
type ResourceRepository interface {
	Upsert(ctx context.Context, resource models.Resource) (*models.Resource, error)
	AttachToPlan(ctx context.Context, planID, resourceID int64, orderIndex int) (*models.StudyPlanResource, error)
	ListForPlan(ctx context.Context, planID, userID int64) ([]models.PlanResourceView, error)
}

// ProgressRepository owns the per-plan aggregate and per-resource
// completion state. The mutation methods each run resource write,
// StudyPlanResource mirror, and plan recompute in one transaction.
type ProgressRepository interface {
	EnsureForPlan(ctx context.Context, userID, planID int64) (*models.Progress, error)
	GetForPlan(ctx context.Context, userID, planID int64) (*models.Progress, error)
	EnsureResourceProgress(ctx context.Context, userID, planResourceID int64) (*models.ResourceProgress, error)
	GetResourceProgress(ctx context.Context, id, userID int64) (*models.ResourceProgress, error)
	SetResourceCompletion(ctx context.Context, id, userID int64, completed bool, now time.Time) (*models.ResourceProgress, error)
	UpdateResourceProgress(ctx context.Context, id, userID int64, upd models.ResourceProgressUpdate, now time.Time) (*models.ResourceProgress, error)
	UserStats(ctx context.Context, userID int64) (*models.UserStudyStats, error)
}

// SessionRepository handles study session timers. End is the only
// mutation after creation; it also credits the elapsed hours to the
// parent plan's aggregate inside the same transaction.
type SessionRepository interface {
	Insert(ctx context.Context, session models.StudySession) (*models.StudySession, error)
	Get(ctx context.Context, id, userID int64) (*models.StudySession, error)
	End(ctx context.Context, id, userID int64, now time.Time, notes string) (*models.StudySession, bool, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error)
}

// AchievementRepository handles one-time badge unlocks.
type AchievementRepository interface {
	GetOrCreate(ctx context.Context, userID int64, achievementType, title, description string) (*models.Achievement, bool, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Achievement, error)
}

// QuizRepository handles quizzes, attempts and answers.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz models.Quiz, questions []models.Question) (*models.Quiz, error)
	GetQuiz(ctx context.Context, id int64) (*models.Quiz, error)
	Questions(ctx context.Context, quizID int64) ([]models.Question, error)
	UpdateQuizStatus(ctx context.Context, id int64, status string) error
	DeleteQuiz(ctx context.Context, id int64) error
	CountAttempts(ctx context.Context, quizID, userID int64) (int, error)
	CountCompletedAttempts(ctx context.Context, quizID, userID int64) (int, error)
	CreateAttempt(ctx context.Context, attempt models.QuizAttempt) (*models.QuizAttempt, error)
	GetAttempt(ctx context.Context, id, userID int64) (*models.QuizAttempt, error)
	AttemptAnswers(ctx context.Context, attemptID int64) ([]models.Answer, error)
	FinalizeAttempt(ctx context.Context, attempt models.QuizAttempt, answers []models.Answer, pointsCredit int) (bool, error)
}
