package result

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/errors"
	"github.com/victornm/quli/internal/event"
	"github.com/victornm/quli/internal/session"
	"github.com/victornm/quli/internal/store"
	"github.com/victornm/quli/internal/telemetry"
)

type Config struct {
	Store    store.Store
	EventBus *event.Bus
}

type Service struct {
	store store.Store
	eb    *event.Bus
}

func NewService(c Config) *Service {
	return &Service{
		store: c.Store,
		eb:    c.EventBus,
	}
}

type Submission struct {
	QuestionIndex int
	Answer        string
	// TimeTaken is in seconds, nil when the client did not measure it.
	TimeTaken *float64
}

type SubmitQuizRequest struct {
	QuizID  string
	Answers []Submission
}

// SubmitQuiz grades a batch of answers against a stored quiz and stores the result.
// Answers for indices outside the quiz are ignored; a later answer for the same
// index replaces an earlier one.
func (s *Service) SubmitQuiz(ctx context.Context, req SubmitQuizRequest) (*domain.QuizResult, error) {
	quiz, err := s.store.GetQuiz(ctx, req.QuizID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("quiz not found: quiz=%s", req.QuizID), errors.WithCause(err))
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	ss := session.New(quiz)
	if err := ss.Start(); err != nil {
		if stderrors.Is(err, session.ErrEmptyQuiz) {
			return nil, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("quiz has no questions"), errors.WithCause(err))
		}
		return nil, fmt.Errorf("start session: %w", err)
	}

	for _, a := range req.Answers {
		ua, err := ss.SubmitAt(a.QuestionIndex, a.Answer, a.TimeTaken)
		if stderrors.Is(err, session.ErrIndexOutOfRange) {
			slog.WarnContext(ctx, "result: skip answer", "quiz_id", quiz.ID, "question_index", a.QuestionIndex)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("submit answer %d: %w", a.QuestionIndex, err)
		}
		telemetry.ObserveAnswer(ua.IsCorrect)
	}

	r := ss.Result()
	if err := s.store.CreateResult(ctx, &r); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	telemetry.ResultsSubmitted.Inc()
	telemetry.ResultScore.Observe(r.Score)

	slog.InfoContext(ctx, "result: submitted",
		"result_id", r.ID,
		"quiz_id", quiz.ID,
		"score", r.Score,
		"correct", r.CorrectAnswers,
		"total", r.TotalQuestions,
	)

	s.eb.Publish(ctx, domain.EventResultSubmitted{
		Result: r,
	})

	return &r, nil
}

type GetResultRequest struct {
	ResultID string
}

func (s *Service) GetResult(ctx context.Context, req GetResultRequest) (*domain.QuizResult, error) {
	r, err := s.store.GetResult(ctx, req.ResultID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("result not found: result=%s", req.ResultID), errors.WithCause(err))
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	return r, nil
}
