package api

import (
	"net/http"
	"time"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
)

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req struct {
		Title                 string `json:"title"`
		Description           string `json:"description"`
		LearningObjective     string `json:"learning_objective"`
		StartDate             string `json:"start_date"`
		EndDate               string `json:"end_date"`
		EstimatedHoursPerWeek int    `json:"estimated_hours_per_week"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	plan := models.StudyPlan{
		UserID:                user.ID,
		Title:                 req.Title,
		Description:           req.Description,
		LearningObjective:     req.LearningObjective,
		EstimatedHoursPerWeek: req.EstimatedHoursPerWeek,
	}
	var err error
	if plan.StartDate, err = parseDate(req.StartDate); err != nil {
		handleError(w, r, errors.NewValidationError("start_date", "must be YYYY-MM-DD"))
		return
	}
	if plan.EndDate, err = parseDate(req.EndDate); err != nil {
		handleError(w, r, errors.NewValidationError("end_date", "must be YYYY-MM-DD"))
		return
	}

	created, err := s.Plans.CreatePlan(r.Context(), plan)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	status := r.URL.Query().Get("status")

	plans, err := s.Plans.ListPlans(r.Context(), user.ID, status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	plan, err := s.Plans.GetPlan(r.Context(), id, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePlanProgress(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	progress, err := s.Tracker.PlanProgress(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) handleListPlanResources(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	resources, err := s.Plans.ListResources(r.Context(), id, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"resources": resources})
}

func (s *Server) handleAttachResource(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Description   string `json:"description"`
		ResourceType  string `json:"resource_type"`
		Platform      string `json:"platform"`
		Difficulty    string `json:"difficulty"`
		EstimatedTime string `json:"estimated_time"`
		IsFree        bool   `json:"is_free"`
		OrderIndex    int    `json:"order_index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	spr, err := s.Plans.AttachResource(r.Context(), id, user.ID, models.Resource{
		Title:         req.Title,
		URL:           req.URL,
		Description:   req.Description,
		ResourceType:  req.ResourceType,
		Platform:      req.Platform,
		Difficulty:    req.Difficulty,
		EstimatedTime: req.EstimatedTime,
		IsFree:        req.IsFree,
	}, req.OrderIndex)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, spr)
}

// handleSuggest enqueues a background ingest of catalog suggestions
// for the plan. The request returns as soon as the job is queued.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Topic string `json:"topic"`
		Limit int    `json:"limit"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Topic == "" {
		handleError(w, r, errors.NewValidationError("topic", "must not be empty"))
		return
	}

	// Plan ownership checked up front so a bad id fails the request,
	// not the background job.
	if _, err := s.Plans.GetPlan(r.Context(), id, user.ID); err != nil {
		handleError(w, r, err)
		return
	}

	if !s.Jobs.EnqueueIngest(id, user.ID, req.Topic, req.Limit) {
		handleError(w, r, errors.NewInvalidStateError("ingest queue is full, try again later"))
		return
	}

	log.Info("suggestion ingest queued: plan_id=%d, topic=%s", id, req.Topic)
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
}
