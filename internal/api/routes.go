package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(s.userMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Post("/users", s.handleCreateUser)
	r.Get("/users/{id}", s.handleGetUser)

	r.Post("/plans", s.handleCreatePlan)
	r.Get("/plans", s.handleListPlans)
	r.Get("/plans/{id}", s.handleGetPlan)
	r.Get("/plans/{id}/progress", s.handlePlanProgress)
	r.Get("/plans/{id}/resources", s.handleListPlanResources)
	r.Post("/plans/{id}/resources", s.handleAttachResource)
	r.Post("/plans/{id}/suggest", s.handleSuggest)
	r.Post("/plans/{id}/sessions", s.handleStartSession)

	r.Post("/plan-resources/{id}/track", s.handleTrackResource)
	r.Post("/resource-progress/{id}/complete", s.handleMarkCompleted)
	r.Post("/resource-progress/{id}/incomplete", s.handleMarkIncomplete)
	r.Post("/resource-progress/{id}/progress", s.handleUpdateProgress)

	r.Post("/sessions/{id}/end", s.handleEndSession)
	r.Get("/sessions", s.handleListSessions)

	r.Post("/quizzes", s.handleCreateQuiz)
	r.Get("/quizzes/{id}", s.handleGetQuiz)
	r.Post("/quizzes/{id}/publish", s.handlePublishQuiz)
	r.Post("/quizzes/{id}/delete", s.handleDeleteQuiz)
	r.Post("/quizzes/{id}/attempts", s.handleStartAttempt)
	r.Post("/attempts/{id}/submit", s.handleSubmitAttempt)
	r.Get("/attempts/{id}", s.handleAttemptResult)

	r.Get("/dashboard", s.handleDashboard)
	r.Get("/achievements", s.handleListAchievements)
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/rank", s.handleRank)

	return r
}
