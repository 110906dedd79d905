package api

import (
	"net/http"

	"github.com/lbraga/studytrack/internal/models"
)

// handleTrackResource creates the acting user's progress record for a
// plan resource, or returns the existing one.
func (s *Server) handleTrackResource(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	rp, err := s.Tracker.EnsureResourceProgress(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rp)
}

func (s *Server) handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	rp, err := s.Tracker.MarkCompleted(r.Context(), id, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rp)
}

func (s *Server) handleMarkIncomplete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	rp, err := s.Tracker.MarkIncomplete(r.Context(), id, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rp)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Percentage *float64 `json:"percentage"`
		Notes      *string  `json:"notes"`
		TimeSpent  *float64 `json:"time_spent"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	rp, err := s.Tracker.UpdateProgress(r.Context(), id, user.ID, models.ResourceProgressUpdate{
		Percentage: req.Percentage,
		Notes:      req.Notes,
		TimeSpent:  req.TimeSpent,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rp)
}
