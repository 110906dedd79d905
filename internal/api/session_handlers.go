package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	planID, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		ResourceID *int64 `json:"resource_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.Sessions.Start(r.Context(), user.ID, planID, req.ResourceID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.Sessions.End(r.Context(), id, user.ID, req.Notes)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := s.Sessions.ListRecent(r.Context(), user.ID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}
