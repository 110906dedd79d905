// Package achievements defines the milestone ladder and decides which
// badges a user's current stats qualify for. The package is pure;
// persisting an award (and keeping it one-per-user-per-type) is the
// repository's job.
package achievements

// Achievement type identifiers, stable across the API and storage.
const (
	TypeFirstPlan       = "first_plan"
	TypeFirstCompletion = "first_completion"
	TypePlanCompleted   = "plan_completed"
	TypeStreak7         = "streak_7"
	TypeStreak30        = "streak_30"
	TypeHours10         = "hours_10"
	TypeHours50         = "hours_50"
	TypeHours100        = "hours_100"
	TypeResources10     = "resources_10"
	TypeResources50     = "resources_50"
)

// Stats is the snapshot the ladder is evaluated against.
type Stats struct {
	Plans              int
	CompletedPlans     int
	CompletedResources int
	HoursSpent         float64
	LoginStreak        int
}

// Badge describes one rung of the ladder.
type Badge struct {
	Type        string
	Title       string
	Description string
	qualifies   func(Stats) bool
}

// Ladder lists every badge in award order. Milestone badges do not
// supersede each other: a user crossing 50 hours in one session earns
// both the 10 and 50 hour badges.
var Ladder = []Badge{
	{TypeFirstPlan, "Getting Started", "Created your first study plan!",
		func(s Stats) bool { return s.Plans >= 1 }},
	{TypeFirstCompletion, "First Steps", "Completed your first resource!",
		func(s Stats) bool { return s.CompletedResources >= 1 }},
	{TypeResources10, "Learning Enthusiast", "Completed 10 resources!",
		func(s Stats) bool { return s.CompletedResources >= 10 }},
	{TypeResources50, "Knowledge Seeker", "Completed 50 resources!",
		func(s Stats) bool { return s.CompletedResources >= 50 }},
	{TypeHours10, "Dedicated Learner", "Studied for 10 hours!",
		func(s Stats) bool { return s.HoursSpent >= 10 }},
	{TypeHours50, "Study Warrior", "Studied for 50 hours!",
		func(s Stats) bool { return s.HoursSpent >= 50 }},
	{TypeHours100, "Master Student", "Studied for 100 hours!",
		func(s Stats) bool { return s.HoursSpent >= 100 }},
	{TypePlanCompleted, "Goal Achiever", "Completed your first study plan!",
		func(s Stats) bool { return s.CompletedPlans >= 1 }},
	{TypeStreak7, "7-Day Study Streak", "Logged in 7 days in a row!",
		func(s Stats) bool { return s.LoginStreak >= 7 }},
	{TypeStreak30, "30-Day Study Streak", "Logged in 30 days in a row!",
		func(s Stats) bool { return s.LoginStreak >= 30 }},
}

// Eligible returns the badges the stats qualify for, in ladder order.
// Callers diff this against the user's existing awards.
func Eligible(s Stats) []Badge {
	var out []Badge
	for _, b := range Ladder {
		if b.qualifies(s) {
			out = append(out, b)
		}
	}
	return out
}
