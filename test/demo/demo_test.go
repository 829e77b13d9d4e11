//go:build integration_test

package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/victornm/quli/internal/api"
	"github.com/victornm/quli/internal/domain"
)

const (
	addr = "localhost:8081"
)

// TestQuiz runs against a server started with the file generator, a leaderboard
// Redis and a pubsub Redis on localhost:6379 and the "local:pubsub" prefix.
func TestQuiz(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		qc      = makeQuizClient(t)
		wg      = new(sync.WaitGroup)
		players = 3
	)

	q, err := qc.CreateQuiz(ctx, &api.CreateQuizRequest{Topic: "General"})
	require.NoError(t, err)
	t.Logf("Created quiz %q with %d questions", q.ID, len(q.Questions))

	subscribeToQuiz(t, makeRedis(t), wg, q.ID)

	// Every player submits concurrently; player i answers the first i questions correctly.
	var eg errgroup.Group
	for i := 0; i < players; i++ {
		eg.Go(func() error {
			req := &api.SubmitQuizRequest{QuizID: q.ID}
			for j, question := range q.Questions {
				answer := "wrong"
				if j < i {
					answer = question.CorrectAnswer
				}
				req.Answers = append(req.Answers, api.Answer{QuestionIndex: j, Answer: answer})
			}

			r, err := qc.SubmitQuiz(ctx, req)
			if err != nil {
				return fmt.Errorf("player %d submit: %w", i, err)
			}

			t.Logf("Player %d scored %.1f%% (%d/%d)", i, r.Score, r.CorrectAnswers, r.TotalQuestions)
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	time.Sleep(time.Second)

	l, err := qc.GetLeaderboard(ctx, &api.GetLeaderboardRequest{QuizID: q.ID})
	require.NoError(t, err)
	require.Len(t, l.Entries, players)
	t.Logf("Final leaderboard:\n%s", formatLeaderboard(*l))

	wg.Wait()
}

func makeQuizClient(t *testing.T) *api.Client {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return api.NewClient(conn)
}

func subscribeToQuiz(t *testing.T, rc redis.UniversalClient, wg *sync.WaitGroup, quizID string) {
	wg.Add(1)
	sub := subscribeRedis(t, rc, fmt.Sprintf("local:pubsub:quiz:%s", quizID))
	go func() {
		defer wg.Done()

		for msg := range sub {
			var n struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				t.Logf("unmarshal notification: %v", err)
				continue
			}

			switch n.Event {
			case domain.EventNameLeaderboardUpdated:
				var l api.Leaderboard
				if err := json.Unmarshal(n.Data, &l); err != nil {
					t.Logf("unmarshal leaderboard: %v", err)
					continue
				}

				t.Logf("leaderboard of quiz %s:\n%s", quizID, formatLeaderboard(l))
			}
		}
	}()
}

func subscribeRedis(t *testing.T, rc redis.UniversalClient, channel string) <-chan *redis.Message {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	sub := rc.Subscribe(ctx, channel)
	t.Cleanup(func() { sub.Close() })

	c := make(chan *redis.Message)
	go func() {
		defer close(c)

		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				t.Log(err)
				return
			}

			c <- msg
		}
	}()

	return c
}

func makeRedis(t *testing.T) redis.UniversalClient {
	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{"localhost:6379"},
	})
	t.Cleanup(func() { r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Ping(ctx).Err(); err != nil {
		t.Fatal(err)
	}

	return r
}

func formatLeaderboard(l api.Leaderboard) string {
	var sb strings.Builder
	for i, e := range l.Entries {
		fmt.Fprintf(&sb, "%d. %s: %.1f\n", i+1, e.ResultID, e.Score)
	}
	return sb.String()
}
