package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/score"
)

func TestCompute(t *testing.T) {
	quiz := makeQuiz(4)

	type outputs struct {
		result domain.QuizResult
	}

	tests := map[string]struct {
		answers []domain.UserAnswer
		assert  func(t *testing.T, out outputs)
	}{
		"no answers should score zero": {
			answers: nil,
			assert: func(t *testing.T, out outputs) {
				assert.Equal(t, 4, out.result.TotalQuestions)
				assert.Equal(t, 0, out.result.CorrectAnswers)
				assert.Equal(t, 0.0, out.result.Score)
				assert.Nil(t, out.result.TimeTaken)
				assert.Empty(t, out.result.Answers)
			},
		},

		"score should be the percentage of correct answers over all questions": {
			answers: []domain.UserAnswer{
				{QuestionIndex: 0, Answer: "a", IsCorrect: true},
				{QuestionIndex: 1, Answer: "b", IsCorrect: false},
				{QuestionIndex: 2, Answer: "c", IsCorrect: true},
			},
			assert: func(t *testing.T, out outputs) {
				assert.Equal(t, 2, out.result.CorrectAnswers)
				assert.Equal(t, 50.0, out.result.Score)
			},
		},

		"score should not be rounded": {
			answers: []domain.UserAnswer{
				{QuestionIndex: 0, IsCorrect: true},
			},
			assert: func(t *testing.T, out outputs) {
				assert.Equal(t, 25.0, out.result.Score)
			},
		},

		"answers should be ordered by question index": {
			answers: []domain.UserAnswer{
				{QuestionIndex: 3, Answer: "d"},
				{QuestionIndex: 0, Answer: "a"},
				{QuestionIndex: 2, Answer: "c"},
			},
			assert: func(t *testing.T, out outputs) {
				require.Len(t, out.result.Answers, 3)
				assert.Equal(t, 0, out.result.Answers[0].QuestionIndex)
				assert.Equal(t, 2, out.result.Answers[1].QuestionIndex)
				assert.Equal(t, 3, out.result.Answers[2].QuestionIndex)
			},
		},

		"time taken should sum recorded times and skip missing ones": {
			answers: []domain.UserAnswer{
				{QuestionIndex: 0, TimeTaken: ptr(1.5)},
				{QuestionIndex: 1},
				{QuestionIndex: 2, TimeTaken: ptr(2.0)},
			},
			assert: func(t *testing.T, out outputs) {
				require.NotNil(t, out.result.TimeTaken)
				assert.InDelta(t, 3.5, *out.result.TimeTaken, 1e-9)
			},
		},

		"time taken should be nil when no answer was timed": {
			answers: []domain.UserAnswer{
				{QuestionIndex: 0, IsCorrect: true},
			},
			assert: func(t *testing.T, out outputs) {
				assert.Nil(t, out.result.TimeTaken)
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tt.assert(t, outputs{result: score.Compute(quiz, tt.answers)})
		})
	}
}

func TestCompute_DoesNotReorderInput(t *testing.T) {
	answers := []domain.UserAnswer{{QuestionIndex: 1}, {QuestionIndex: 0}}

	score.Compute(makeQuiz(2), answers)

	assert.Equal(t, 1, answers[0].QuestionIndex)
}

func TestCompute_EmptyQuiz(t *testing.T) {
	r := score.Compute(makeQuiz(0), nil)

	assert.Equal(t, 0, r.TotalQuestions)
	assert.Equal(t, 0.0, r.Score)
}

func TestRound(t *testing.T) {
	assert.Equal(t, "33.3", score.Round(100.0/3).String())
	assert.Equal(t, "66.7", score.Round(200.0/3).String())
	assert.Equal(t, "100", score.Round(100).String())
}

func TestBand(t *testing.T) {
	assert.Equal(t, "good", score.Band(70))
	assert.Equal(t, "fair", score.Band(50))
	assert.Equal(t, "fair", score.Band(69.9))
	assert.Equal(t, "poor", score.Band(49.9))
}

func makeQuiz(n int) *domain.Quiz {
	q := &domain.Quiz{Topic: "test"}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, domain.Question{
			Text:          "q",
			Type:          domain.QuestionTypeTrueFalse,
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
			Difficulty:    domain.DifficultyEasy,
		})
	}
	return q
}

func ptr(f float64) *float64 { return &f }
