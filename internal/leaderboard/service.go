package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/errors"
	"github.com/victornm/quli/internal/event"
)

const (
	defaultPublishInterval = 200 * time.Millisecond
)

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
	// PublishInterval is the minimum gap between two leaderboard.updated events of a quiz.
	PublishInterval time.Duration
}

type Service struct {
	eb       *event.Bus
	redis    redis.UniversalClient
	prefix   string
	interval time.Duration
}

func NewService(c Config) *Service {
	s := &Service{
		eb:       c.EventBus,
		redis:    c.Redis,
		prefix:   c.Prefix,
		interval: c.PublishInterval,
	}
	if s.interval <= 0 {
		s.interval = defaultPublishInterval
	}

	s.eb.Subscribe(domain.EventNameResultSubmitted, func(ctx context.Context, e event.Event) error {
		return s.RecordResult(ctx, e.(domain.EventResultSubmitted).Result)
	})

	return s
}

type GetLeaderboardRequest struct {
	QuizID string
	// Limit caps the number of entries, 0 means all.
	Limit int
}

// GetLeaderboard returns the results of a quiz, best score first.
func (s *Service) GetLeaderboard(ctx context.Context, req GetLeaderboardRequest) (*domain.Leaderboard, error) {
	stop := int64(-1)
	if req.Limit > 0 {
		stop = int64(req.Limit) - 1
	}

	res, err := s.redis.ZRevRangeWithScores(ctx, s.getLeaderboardKey(req.QuizID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}

	if len(res) == 0 {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("leaderboard not found: quiz=%s", req.QuizID))
	}

	entries := make([]domain.LeaderboardEntry, 0, len(res))
	for _, z := range res {
		entries = append(entries, domain.LeaderboardEntry{
			ResultID: z.Member.(string),
			Score:    z.Score,
		})
	}

	return &domain.Leaderboard{
		QuizID:  req.QuizID,
		Entries: entries,
	}, nil
}

// RecordResult adds a submitted result to its quiz's leaderboard.
func (s *Service) RecordResult(ctx context.Context, r domain.QuizResult) error {
	if r.Quiz == nil {
		return fmt.Errorf("record result %s: missing quiz", r.ID)
	}

	if err := s.redis.ZAdd(ctx, s.getLeaderboardKey(r.Quiz.ID), redis.Z{
		Score:  r.Score,
		Member: r.ID,
	}).Err(); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}

	return s.schedulePublishLeaderboard(ctx, r.Quiz.ID)
}

// schedulePublishLeaderboard publishes at most one leaderboard.updated event per
// quiz and interval. The window is held in Redis so that several instances share it.
func (s *Service) schedulePublishLeaderboard(ctx context.Context, quizID string) error {
	ok, err := s.redis.SetNX(ctx, s.getLeaderboardTimeKey(quizID), time.Now().UnixMilli(), s.interval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}

	if !ok {
		return nil
	}

	l, err := s.GetLeaderboard(ctx, GetLeaderboardRequest{QuizID: quizID})
	if err != nil {
		return fmt.Errorf("get leaderboard failed: quiz=%s: %w", quizID, err)
	}

	s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
		Leaderboard: *l,
	})

	return nil
}

func (s *Service) getLeaderboardKey(quizID string) string {
	return fmt.Sprintf("%s:%s:leaderboard", s.prefix, quizID)
}

func (s *Service) getLeaderboardTimeKey(quizID string) string {
	return fmt.Sprintf("%s:%s:time", s.prefix, quizID)
}
