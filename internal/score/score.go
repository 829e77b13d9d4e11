// Package score aggregates graded answers into a quiz result.
package score

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/victornm/quli/internal/domain"
)

// Compute builds the result of quiz from its answer log.
// The stored score is not rounded; use Round for display.
func Compute(quiz *domain.Quiz, answers []domain.UserAnswer) domain.QuizResult {
	sorted := slices.Clone(answers)
	slices.SortStableFunc(sorted, func(a, b domain.UserAnswer) int {
		return a.QuestionIndex - b.QuestionIndex
	})

	r := domain.QuizResult{
		Quiz:    quiz,
		Answers: sorted,
	}
	if quiz != nil {
		r.TotalQuestions = len(quiz.Questions)
	}

	var (
		total float64
		timed bool
	)
	for _, a := range sorted {
		if a.IsCorrect {
			r.CorrectAnswers++
		}
		if a.TimeTaken != nil {
			total += *a.TimeTaken
			timed = true
		}
	}

	if r.TotalQuestions > 0 {
		r.Score = float64(r.CorrectAnswers) / float64(r.TotalQuestions) * 100
	}

	if timed {
		r.TimeTaken = &total
	}

	return r
}

// Round rounds a percentage to one decimal place.
func Round(score float64) decimal.Decimal {
	return decimal.NewFromFloat(score).Round(1)
}

// Band labels a score the way results are colored: good from 70, fair from 50.
func Band(score float64) string {
	switch {
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}
