// Package grading scores submitted quiz attempts. It is pure: callers
// load questions and hand in the submission, and get back per-question
// verdicts plus the attempt totals to persist.
package grading

import (
	"math"
	"time"

	"github.com/lbraga/studytrack/internal/models"
)

// Submission maps question IDs to the option IDs the user selected.
// Single-answer questions carry one element; checkbox questions may
// carry several. Questions absent from the map count as incorrect and
// produce no answer rows.
type Submission map[int64][]int64

// Result is the outcome of grading one attempt.
type Result struct {
	TotalQuestions  int
	AnsweredCount   int
	CorrectCount    int
	PercentageScore float64
	Passed          bool
	Answers         []models.Answer
}

// Grade scores a submission against the quiz's questions. Checkbox
// questions require the selected set to equal the correct set exactly;
// the other types require the single selected option to be flagged
// correct. The percentage is over all questions, answered or not.
func Grade(questions []models.Question, sub Submission, passingScore float64, now time.Time) Result {
	res := Result{TotalQuestions: len(questions)}
	for _, q := range questions {
		selected, ok := sub[q.ID]
		if !ok || len(selected) == 0 {
			continue
		}
		res.AnsweredCount++

		correct := gradeQuestion(q, selected)
		if correct {
			res.CorrectCount++
		}
		for _, optID := range selected {
			res.Answers = append(res.Answers, models.Answer{
				QuestionID:       q.ID,
				SelectedOptionID: optID,
				IsCorrect:        correct,
				AnsweredAt:       now,
			})
		}
	}
	if res.TotalQuestions > 0 {
		res.PercentageScore = round2(float64(res.CorrectCount) / float64(res.TotalQuestions) * 100)
	}
	res.Passed = res.PercentageScore >= passingScore
	return res
}

func gradeQuestion(q models.Question, selected []int64) bool {
	if q.QuestionType == models.QuestionTypeCheckboxes {
		correctSet := map[int64]bool{}
		for _, o := range q.Options {
			if o.IsCorrect {
				correctSet[o.ID] = true
			}
		}
		if len(selected) != len(correctSet) {
			return false
		}
		seen := map[int64]bool{}
		for _, id := range selected {
			if !correctSet[id] || seen[id] {
				return false
			}
			seen[id] = true
		}
		return len(correctSet) > 0
	}

	if len(selected) != 1 {
		return false
	}
	for _, o := range q.Options {
		if o.ID == selected[0] {
			return o.IsCorrect
		}
	}
	return false
}

// Points rates per correct answer. System-generated quizzes pay the
// full rate; user-authored ones a reduced rate.
const (
	aiPointsPerCorrect   = 1.0
	userPointsPerCorrect = 0.875
)

// Points computes the points earned and the integer credit to add to
// the user's total. Only the first attempt earns anything; later
// attempts record zero earned and credit zero.
func Points(correctCount int, aiAuthored bool, attemptNumber int) (earned float64, credit int) {
	if attemptNumber != 1 {
		return 0, 0
	}
	rate := userPointsPerCorrect
	if aiAuthored {
		rate = aiPointsPerCorrect
	}
	earned = float64(correctCount) * rate
	credit = int(math.Round(earned))
	return earned, credit
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
