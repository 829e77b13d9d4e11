package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/errors"
	"github.com/victornm/quli/internal/event"
	"github.com/victornm/quli/internal/leaderboard"
	"github.com/victornm/quli/internal/quiz"
	"github.com/victornm/quli/internal/result"
)

type Config struct {
	// HTTP and GRPC are optional; routes are registered on the ones given.
	HTTP *gin.Engine
	GRPC *grpc.Server

	EventBus    *event.Bus
	Quiz        *quiz.Service
	Result      *result.Service
	Leaderboard *leaderboard.Service

	// Redis receives leaderboard notifications, nil disables them.
	Redis        Redis
	PubsubPrefix string

	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	qs *quiz.Service
	rs *result.Service
	ls *leaderboard.Service

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		qs:     c.Quiz,
		rs:     c.Result,
		ls:     c.Leaderboard,
		redis:  c.Redis,
		prefix: c.PubsubPrefix,
	}

	if c.HTTP != nil {
		a.registerHTTP(c.HTTP, c.CORS, c.RateLimit)
	}

	if c.GRPC != nil {
		c.GRPC.RegisterService(&quizServiceDesc, a)
	}

	if c.Redis != nil {
		c.EventBus.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
			return a.PublishLeaderboardUpdated(ctx, e.(domain.EventLeaderboardUpdated))
		})
	}

	return a
}

func (a *API) CreateQuiz(ctx context.Context, req *CreateQuizRequest) (*Quiz, error) {
	q, err := a.qs.CreateQuiz(ctx, quiz.CreateQuizRequest{
		Config: req.quizConfig(),
	})
	if err != nil {
		return nil, err
	}

	return fromQuiz(q), nil
}

func (a *API) GetQuiz(ctx context.Context, req *GetQuizRequest) (*Quiz, error) {
	q, err := a.qs.GetQuiz(ctx, quiz.GetQuizRequest{
		QuizID: req.QuizID,
	})
	if err != nil {
		return nil, err
	}

	return fromQuiz(q), nil
}

func (a *API) SubmitQuiz(ctx context.Context, req *SubmitQuizRequest) (*Result, error) {
	r, err := a.rs.SubmitQuiz(ctx, result.SubmitQuizRequest{
		QuizID:  req.QuizID,
		Answers: req.submissions(),
	})
	if err != nil {
		return nil, err
	}

	return fromResult(r), nil
}

func (a *API) GetResult(ctx context.Context, req *GetResultRequest) (*Result, error) {
	r, err := a.getResult(ctx, req.ResultID)
	if err != nil {
		return nil, err
	}

	return fromResult(r), nil
}

func (a *API) getResult(ctx context.Context, id string) (*domain.QuizResult, error) {
	return a.rs.GetResult(ctx, result.GetResultRequest{
		ResultID: id,
	})
}

func (a *API) GetLeaderboard(ctx context.Context, req *GetLeaderboardRequest) (*Leaderboard, error) {
	if a.ls == nil {
		return nil, errors.New(errors.CodeUnavailable, errors.WithMessagef("leaderboard is disabled"))
	}

	l, err := a.ls.GetLeaderboard(ctx, leaderboard.GetLeaderboardRequest{
		QuizID: req.QuizID,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, err
	}

	return fromLeaderboard(l), nil
}
