// Package store persists quizzes and their results.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/victornm/quli/internal/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store keeps quizzes and graded results. Question order is preserved exactly,
// so a stored quiz grades the same way as the one that was generated.
type Store interface {
	// CreateQuiz saves quiz and assigns its ID.
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	GetQuiz(ctx context.Context, id string) (*domain.Quiz, error)
	// CreateResult saves result with its answers and assigns its ID. result.Quiz must be a stored quiz.
	CreateResult(ctx context.Context, result *domain.QuizResult) error
	GetResult(ctx context.Context, id string) (*domain.QuizResult, error)
	Close() error
}

// configRecord is the stored form of a QuizConfig.
type configRecord struct {
	Topic         string                `json:"topic"`
	NumQuestions  int                   `json:"num_questions"`
	Difficulty    *domain.Difficulty    `json:"difficulty"`
	QuestionTypes []domain.QuestionType `json:"question_types"`
}

// EncodeConfig serializes c for a config column.
func EncodeConfig(c domain.QuizConfig) ([]byte, error) {
	b, err := json.Marshal(configRecord(c))
	if err != nil {
		return nil, fmt.Errorf("encode quiz config: %w", err)
	}
	return b, nil
}

func DecodeConfig(b []byte) (domain.QuizConfig, error) {
	var r configRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return domain.QuizConfig{}, fmt.Errorf("decode quiz config: %w", err)
	}
	return domain.QuizConfig(r), nil
}

func EncodeOptions(options []string) ([]byte, error) {
	if options == nil {
		options = []string{}
	}
	b, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return b, nil
}

func DecodeOptions(b []byte) ([]string, error) {
	var options []string
	if err := json.Unmarshal(b, &options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return options, nil
}
