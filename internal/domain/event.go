package domain

const (
	EventNameQuizCreated        = "quiz.created"
	EventNameResultSubmitted    = "result.submitted"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

type EventQuizCreated struct {
	Quiz Quiz
}

func (EventQuizCreated) Name() string { return EventNameQuizCreated }

type EventResultSubmitted struct {
	Result QuizResult
}

func (EventResultSubmitted) Name() string { return EventNameResultSubmitted }

type EventLeaderboardUpdated struct {
	Leaderboard Leaderboard
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }
