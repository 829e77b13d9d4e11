// Package generator turns a QuizConfig into a Quiz.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/grading"
)

// ErrGeneration wraps every generation failure: transport errors, malformed
// model output, and quizzes without a usable question.
var ErrGeneration = errors.New("generator: generation failed")

type Generator interface {
	Generate(ctx context.Context, c domain.QuizConfig) (*domain.Quiz, error)
}

var trueFalseOptions = []string{"True", "False"}

// rawQuestion is a question as produced by a model or a question bank, before validation.
type rawQuestion struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
	Explanation   string   `json:"explanation"`
}

// toQuestion validates r against c. Questions the session could not grade
// fairly are rejected with a reason.
func (r rawQuestion) toQuestion(c domain.QuizConfig) (domain.Question, error) {
	q := domain.Question{
		Text:          strings.TrimSpace(r.QuestionText),
		CorrectAnswer: strings.TrimSpace(r.CorrectAnswer),
		Explanation:   strings.TrimSpace(r.Explanation),
	}
	if q.Text == "" {
		return q, fmt.Errorf("empty question text")
	}

	var err error
	if q.Type, err = domain.ParseQuestionType(r.QuestionType); err != nil {
		return q, err
	}
	if !c.Allows(q.Type) {
		return q, fmt.Errorf("question type %s not requested", q.Type)
	}

	if q.Difficulty, err = domain.ParseDifficulty(r.Difficulty); err != nil {
		if c.Difficulty == nil {
			return q, err
		}
		q.Difficulty = *c.Difficulty
	}

	switch q.Type {
	case domain.QuestionTypeMultipleChoice:
		for _, o := range r.Options {
			if o = strings.TrimSpace(o); o != "" {
				q.Options = append(q.Options, o)
			}
		}
		if len(q.Options) < 2 {
			return q, fmt.Errorf("multiple choice question needs at least 2 options, got %d", len(q.Options))
		}
		i := slices.IndexFunc(q.Options, func(o string) bool {
			return grading.Normalize(o) == grading.Normalize(q.CorrectAnswer)
		})
		if i < 0 {
			return q, fmt.Errorf("correct answer %q is not an option", q.CorrectAnswer)
		}
		q.CorrectAnswer = q.Options[i]
	case domain.QuestionTypeTrueFalse:
		q.Options = slices.Clone(trueFalseOptions)
		switch grading.Normalize(q.CorrectAnswer) {
		case "true":
			q.CorrectAnswer = "True"
		case "false":
			q.CorrectAnswer = "False"
		default:
			return q, fmt.Errorf("true/false answer must be True or False, got %q", q.CorrectAnswer)
		}
	}

	return q, nil
}

// assemble validates raw questions and builds the quiz, keeping at most c.NumQuestions.
func assemble(ctx context.Context, c domain.QuizConfig, raws []rawQuestion) (*domain.Quiz, error) {
	quiz := &domain.Quiz{
		Topic:  c.Topic,
		Config: c,
	}

	for i, r := range raws {
		if len(quiz.Questions) == c.NumQuestions {
			break
		}

		q, err := r.toQuestion(c)
		if err != nil {
			slog.WarnContext(ctx, "generator: question dropped", "index", i, "reason", err)
			continue
		}
		if q.Type == domain.QuestionTypeMultipleChoice && len(q.Options) > grading.MaxLetterOptions {
			slog.WarnContext(ctx, "generator: options beyond the letter shortcuts can only be answered by text",
				"index", i,
				"options", len(q.Options),
			)
		}

		quiz.Questions = append(quiz.Questions, q)
	}

	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: no usable questions for topic %q", ErrGeneration, c.Topic)
	}
	if len(quiz.Questions) < c.NumQuestions {
		slog.WarnContext(ctx, "generator: fewer questions than requested",
			"topic", c.Topic,
			"requested", c.NumQuestions,
			"generated", len(quiz.Questions),
		)
	}

	return quiz, nil
}
