package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	dashboard, err := s.Tracker.Dashboard(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	achievements, err := s.Achievements.ListForUser(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.Ranking.Leaderboard(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	rank, err := s.Ranking.RankOf(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":      user.ID,
		"total_points": user.TotalPoints,
		"rank":         rank,
	})
}
