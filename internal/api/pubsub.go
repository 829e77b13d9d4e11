package api

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/victornm/quli/internal/domain"
)

const maxConcurrent = 100

type (
	Notification struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}

	// RankUpdate is sent to the channel of a single result.
	RankUpdate struct {
		QuizID   string  `json:"quiz_id"`
		ResultID string  `json:"result_id"`
		Rank     int     `json:"rank"`
		Total    int     `json:"total"`
		Score    float64 `json:"score"`
	}
)

// PublishLeaderboardUpdated sends the whole leaderboard to the quiz channel and
// each entry's rank to its result channel.
func (a *API) PublishLeaderboardUpdated(ctx context.Context, e domain.EventLeaderboardUpdated) error {
	l := fromLeaderboard(&e.Leaderboard)

	var eg errgroup.Group
	eg.SetLimit(maxConcurrent)

	eg.Go(func() error {
		return a.publishNotification(ctx, a.QuizChannel(l.QuizID), e.Name(), l)
	})

	for i, entry := range l.Entries {
		eg.Go(func() error {
			return a.publishNotification(ctx, a.ResultChannel(entry.ResultID), e.Name(), RankUpdate{
				QuizID:   l.QuizID,
				ResultID: entry.ResultID,
				Rank:     i + 1,
				Total:    len(l.Entries),
				Score:    entry.Score,
			})
		})
	}

	return eg.Wait()
}

func (a *API) QuizChannel(quizID string) string {
	return fmt.Sprintf("%s:quiz:%s", a.prefix, quizID)
}

func (a *API) ResultChannel(resultID string) string {
	return fmt.Sprintf("%s:result:%s", a.prefix, resultID)
}

func (a *API) publishNotification(ctx context.Context, channel, event string, data any) error {
	n := Notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, channel, b).Err()
}
