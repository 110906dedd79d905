package api

import (
	"net/http"

	"github.com/lbraga/studytrack/internal/grading"
	"github.com/lbraga/studytrack/internal/models"
)

type quizQuestionRequest struct {
	QuestionText string `json:"question_text"`
	QuestionType string `json:"question_type"`
	Explanation  string `json:"explanation"`
	Options      []struct {
		OptionText string `json:"option_text"`
		IsCorrect  bool   `json:"is_correct"`
	} `json:"options"`
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req struct {
		StudyPlanID  *int64                `json:"study_plan_id"`
		Title        string                `json:"title"`
		Description  string                `json:"description"`
		Difficulty   string                `json:"difficulty"`
		PassingScore float64               `json:"passing_score"`
		TimeLimit    *int                  `json:"time_limit"`
		AllowRetake  bool                  `json:"allow_retake"`
		MaxAttempts  *int                  `json:"max_attempts"`
		Questions    []quizQuestionRequest `json:"questions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		question := models.Question{
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Order:        i,
			Explanation:  q.Explanation,
		}
		for j, o := range q.Options {
			question.Options = append(question.Options, models.QuestionOption{
				OptionText: o.OptionText,
				IsCorrect:  o.IsCorrect,
				Order:      j,
			})
		}
		questions = append(questions, question)
	}

	quiz, err := s.Quizzes.CreateQuiz(r.Context(), models.Quiz{
		StudyPlanID:  req.StudyPlanID,
		CreatedBy:    &user.ID,
		Title:        req.Title,
		Description:  req.Description,
		Difficulty:   req.Difficulty,
		PassingScore: req.PassingScore,
		TimeLimit:    req.TimeLimit,
		AllowRetake:  req.AllowRetake,
		MaxAttempts:  req.MaxAttempts,
	}, questions)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, quiz)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	quiz, err := s.Quizzes.GetQuiz(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quiz)
}

func (s *Server) handlePublishQuiz(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	quiz, err := s.Quizzes.PublishQuiz(r.Context(), id, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quiz)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Quizzes.DeleteQuiz(r.Context(), id, user.ID); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	quizID, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	attempt, err := s.Quizzes.StartAttempt(r.Context(), quizID, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, attempt)
}

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Answers map[int64][]int64 `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Quizzes.SubmitAttempt(r.Context(), id, user.ID, grading.Submission(req.Answers))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAttemptResult(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Quizzes.AttemptResult(r.Context(), id, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
