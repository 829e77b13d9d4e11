package quiz

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/errors"
	"github.com/victornm/quli/internal/event"
	"github.com/victornm/quli/internal/generator"
	"github.com/victornm/quli/internal/store"
	"github.com/victornm/quli/internal/telemetry"
)

type Config struct {
	Generator generator.Generator
	Store     store.Store
	EventBus  *event.Bus
}

type Service struct {
	gen   generator.Generator
	store store.Store
	eb    *event.Bus
}

func NewService(c Config) *Service {
	return &Service{
		gen:   c.Generator,
		store: c.Store,
		eb:    c.EventBus,
	}
}

type CreateQuizRequest struct {
	// Config is completed with defaults before validation.
	Config domain.QuizConfig
}

// CreateQuiz generates a quiz from the request config and stores it.
func (s *Service) CreateQuiz(ctx context.Context, req CreateQuizRequest) (*domain.Quiz, error) {
	c := req.Config.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid quiz config: %v", err), errors.WithCause(err))
	}

	start := time.Now()
	quiz, err := s.gen.Generate(ctx, c)
	telemetry.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.GenerationFailures.Inc()
		slog.ErrorContext(ctx, "quiz: generate failed", "topic", c.Topic, "error", err)
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("failed to generate quiz: %v", err),
			errors.WithCause(err),
		)
	}

	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("store quiz: %w", err)
	}
	telemetry.QuizzesGenerated.Inc()

	slog.InfoContext(ctx, "quiz: created",
		"quiz_id", quiz.ID,
		"topic", quiz.Topic,
		"questions", quiz.Len(),
	)

	s.eb.Publish(ctx, domain.EventQuizCreated{
		Quiz: *quiz,
	})

	return quiz, nil
}

type GetQuizRequest struct {
	QuizID string
}

func (s *Service) GetQuiz(ctx context.Context, req GetQuizRequest) (*domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, req.QuizID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("quiz not found: quiz=%s", req.QuizID), errors.WithCause(err))
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	return quiz, nil
}
