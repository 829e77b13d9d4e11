package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quli/internal/api"
	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/event"
	"github.com/victornm/quli/internal/generator"
	"github.com/victornm/quli/internal/leaderboard"
	"github.com/victornm/quli/internal/quiz"
	"github.com/victornm/quli/internal/result"
	"github.com/victornm/quli/internal/store/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	api    *api.API
	engine *gin.Engine
	eb     *event.Bus
	redis  redis.UniversalClient
}

// fakeGenerator fails for the topic "fail" and returns two geography questions otherwise.
type fakeGenerator struct{}

func (fakeGenerator) Generate(_ context.Context, c domain.QuizConfig) (*domain.Quiz, error) {
	if c.Topic == "fail" {
		return nil, generator.ErrGeneration
	}

	return &domain.Quiz{
		Topic: c.Topic,
		Questions: []domain.Question{
			{
				Text:          "What is the capital of France?",
				Type:          domain.QuestionTypeMultipleChoice,
				Options:       []string{"London", "Paris", "Berlin", "Madrid"},
				CorrectAnswer: "Paris",
				Difficulty:    domain.DifficultyEasy,
				Explanation:   "Paris is the capital of France.",
			},
			{
				Text:          "The Nile flows into the Mediterranean.",
				Type:          domain.QuestionTypeTrueFalse,
				Options:       []string{"True", "False"},
				CorrectAnswer: "True",
				Difficulty:    domain.DifficultyMedium,
			},
		},
		Config: c,
	}, nil
}

type options func(c *api.Config)

func withRateLimit(rps float64, burst int) options {
	return func(c *api.Config) {
		c.RateLimit = api.RateLimitConfig{RPS: rps, Burst: burst}
	}
}

func makeFixture(t *testing.T, opts ...options) *fixture {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	st, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rs.Addr()},
	})
	t.Cleanup(func() { rc.Close() })
	require.NoError(t, rc.Ping(ctx).Err(), "should be able to ping redis")

	fx := &fixture{
		engine: gin.New(),
		eb:     event.NewBus(),
		redis:  rc,
	}
	t.Cleanup(fx.eb.Stop)

	c := api.Config{
		HTTP:     fx.engine,
		EventBus: fx.eb,
		Quiz: quiz.NewService(quiz.Config{
			Generator: fakeGenerator{},
			Store:     st,
			EventBus:  fx.eb,
		}),
		Result: result.NewService(result.Config{
			Store:    st,
			EventBus: fx.eb,
		}),
		Leaderboard: leaderboard.NewService(leaderboard.Config{
			EventBus: fx.eb,
			Redis:    rc,
			Prefix:   "test:leaderboard",
		}),
		Redis:        rc,
		PubsubPrefix: "test:pubsub",
	}

	for _, opt := range opts {
		opt(&c)
	}

	fx.api = api.New(c)
	return fx
}
