package api

import (
	"github.com/lbraga/studytrack/internal/jobs"
	"github.com/lbraga/studytrack/internal/services"
)

type Server struct {
	Users        services.UserService
	Plans        services.PlanService
	Tracker      services.TrackerService
	Sessions     services.SessionService
	Quizzes      services.QuizService
	Ranking      services.RankingService
	Achievements services.AchievementService
	Jobs         jobs.Queue
}
