package models

import "time"

// Study plan statuses. Completed is only ever set by the progress
// recompute, never directly by the user.
const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusPaused    = "paused"
	PlanStatusCancelled = "cancelled"
)

type User struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Goals         string     `json:"goals"`
	TotalPoints   int        `json:"total_points"`
	CurrentRank   int        `json:"current_rank"`
	LoginStreak   int        `json:"login_streak"`
	LastLoginDate *time.Time `json:"last_login_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type StudyPlan struct {
	ID                    int64     `json:"id"`
	UserID                int64     `json:"user_id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description"`
	LearningObjective     string    `json:"learning_objective"`
	StartDate             time.Time `json:"start_date"`
	EndDate               time.Time `json:"end_date"`
	EstimatedHoursPerWeek int       `json:"estimated_hours_per_week"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type Resource struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Description   string    `json:"description"`
	ResourceType  string    `json:"resource_type"`
	Platform      string    `json:"platform"`
	Difficulty    string    `json:"difficulty"`
	EstimatedTime string    `json:"estimated_time"`
	IsFree        bool      `json:"is_free"`
	CreatedAt     time.Time `json:"created_at"`
}

// StudyPlanResource links a resource into a plan. Its completion flag
// mirrors the ResourceProgress record and is only written together
// with it, inside the same transaction.
type StudyPlanResource struct {
	ID             int64      `json:"id"`
	StudyPlanID    int64      `json:"study_plan_id"`
	ResourceID     int64      `json:"resource_id"`
	OrderIndex     int        `json:"order_index"`
	IsCompleted    bool       `json:"is_completed"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// Progress is the cached per-plan aggregate. It is derived; the only
// legitimate writers are the recompute and the session-hours add.
type Progress struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	StudyPlanID          int64      `json:"study_plan_id"`
	TotalResources       int        `json:"total_resources"`
	CompletedResources   int        `json:"completed_resources"`
	CompletionPercentage float64    `json:"completion_percentage"`
	TotalHoursSpent      float64    `json:"total_hours_spent"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	LastActivity         time.Time  `json:"last_activity"`
}

// ResourceProgress is the source of truth for a single resource's
// completion state, one row per (user, plan resource).
type ResourceProgress struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	StudyPlanResourceID int64      `json:"study_plan_resource_id"`
	IsCompleted         bool       `json:"is_completed"`
	ProgressPercentage  float64    `json:"progress_percentage"`
	TimeSpent           float64    `json:"time_spent"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	Notes               string     `json:"notes"`
}

// ResourceProgressUpdate is a partial update; nil fields are left
// untouched.
type ResourceProgressUpdate struct {
	Percentage *float64
	Notes      *string
	TimeSpent  *float64
}

// PlanResourceView joins a plan resource with its catalog entry and
// the acting user's progress for read-side listings.
type PlanResourceView struct {
	StudyPlanResource
	Resource Resource          `json:"resource"`
	Progress *ResourceProgress `json:"progress,omitempty"`
}

type StudySession struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	StudyPlanID int64      `json:"study_plan_id"`
	ResourceID  *int64     `json:"resource_id,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Duration    float64    `json:"duration"`
	Notes       string     `json:"notes"`
}

type Achievement struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	AchievementType string    `json:"achievement_type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EarnedAt        time.Time `json:"earned_at"`
}

// UserStudyStats aggregates a user's cumulative activity across all
// plans; input to the achievement ladder.
type UserStudyStats struct {
	Plans              int     `json:"plans"`
	CompletedPlans     int     `json:"completed_plans"`
	CompletedResources int     `json:"completed_resources"`
	HoursSpent         float64 `json:"hours_spent"`
}

// Dashboard is the user-level progress snapshot for the reporting
// layer.
type Dashboard struct {
	TotalPlans         int            `json:"total_plans"`
	ActivePlans        int            `json:"active_plans"`
	CompletedPlans     int            `json:"completed_plans"`
	CompletedResources int            `json:"completed_resources"`
	TotalHours         float64        `json:"total_hours"`
	RecentSessions     []StudySession `json:"recent_sessions"`
	RecentAchievements []Achievement  `json:"recent_achievements"`
}

// LeaderboardEntry is one row of the global points ranking.
type LeaderboardEntry struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank"`
}
