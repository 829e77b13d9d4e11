package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/store"
	"github.com/victornm/quli/internal/store/sqlite"
)

func TestStore_Quiz(t *testing.T) {
	ctx := context.Background()
	s := makeStore(t)

	quiz := makeQuiz()
	require.NoError(t, s.CreateQuiz(ctx, quiz))
	require.NotEmpty(t, quiz.ID)

	got, err := s.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz, got, "stored quiz should round trip with its question order")
}

func TestStore_QuizNotFound(t *testing.T) {
	_, err := makeStore(t).GetQuiz(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Result(t *testing.T) {
	ctx := context.Background()
	s := makeStore(t)

	quiz := makeQuiz()
	require.NoError(t, s.CreateQuiz(ctx, quiz))

	taken := 2.5
	result := &domain.QuizResult{
		Quiz: quiz,
		Answers: []domain.UserAnswer{
			{QuestionIndex: 0, Answer: "a", IsCorrect: true, TimeTaken: &taken},
			{QuestionIndex: 2, Answer: "false", IsCorrect: false},
		},
		Score:          100.0 / 3,
		TotalQuestions: 3,
		CorrectAnswers: 1,
		TimeTaken:      &taken,
	}
	require.NoError(t, s.CreateResult(ctx, result))
	require.NotEmpty(t, result.ID)

	got, err := s.GetResult(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestStore_ResultWithoutTiming(t *testing.T) {
	ctx := context.Background()
	s := makeStore(t)

	quiz := makeQuiz()
	require.NoError(t, s.CreateQuiz(ctx, quiz))

	result := &domain.QuizResult{Quiz: quiz, TotalQuestions: 3}
	require.NoError(t, s.CreateResult(ctx, result))

	got, err := s.GetResult(ctx, result.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TimeTaken)
	assert.Empty(t, got.Answers)
}

func TestStore_ResultForUnknownQuiz(t *testing.T) {
	s := makeStore(t)

	err := s.CreateResult(context.Background(), &domain.QuizResult{Quiz: &domain.Quiz{ID: "missing"}})
	require.Error(t, err, "foreign key should reject results for unknown quizzes")

	_, err = s.GetResult(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quli.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	quiz := makeQuiz()
	require.NoError(t, s.CreateQuiz(ctx, quiz))
	require.NoError(t, s.Close())

	s, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	got, err := s.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, got.Questions, 3)
}

func makeStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func makeQuiz() *domain.Quiz {
	hard := domain.DifficultyHard
	return &domain.Quiz{
		Topic: "Geography",
		Questions: []domain.Question{
			{
				Text:          "What is the capital of France?",
				Type:          domain.QuestionTypeMultipleChoice,
				Options:       []string{"Paris", "London", "Berlin", "Rome"},
				CorrectAnswer: "Paris",
				Difficulty:    domain.DifficultyHard,
				Explanation:   "Paris has been the capital since 987.",
			},
			{
				Text:          "Which river flows through Cairo?",
				Type:          domain.QuestionTypeMultipleChoice,
				Options:       []string{"Nile", "Amazon"},
				CorrectAnswer: "Nile",
				Difficulty:    domain.DifficultyHard,
			},
			{
				Text:          "Australia is a continent.",
				Type:          domain.QuestionTypeTrueFalse,
				Options:       []string{"True", "False"},
				CorrectAnswer: "True",
				Difficulty:    domain.DifficultyHard,
			},
		},
		Config: domain.QuizConfig{
			Topic:         "Geography",
			NumQuestions:  3,
			Difficulty:    &hard,
			QuestionTypes: domain.AllQuestionTypes(),
		},
	}
}
