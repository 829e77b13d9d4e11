package api

import (
	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/result"
)

type (
	Question struct {
		QuestionText  string              `json:"question_text"`
		QuestionType  domain.QuestionType `json:"question_type"`
		Options       []string            `json:"options"`
		CorrectAnswer string              `json:"correct_answer"`
		Difficulty    domain.Difficulty   `json:"difficulty"`
		Explanation   string              `json:"explanation,omitempty"`
	}

	QuizConfig struct {
		Topic        string `json:"topic"`
		NumQuestions int    `json:"num_questions,omitempty"`
		// Difficulty is null for a mixed quiz.
		Difficulty    *domain.Difficulty    `json:"difficulty"`
		QuestionTypes []domain.QuestionType `json:"question_types,omitempty"`
	}

	Quiz struct {
		ID        string     `json:"id"`
		Topic     string     `json:"topic"`
		Questions []Question `json:"questions"`
		Config    QuizConfig `json:"config"`
	}

	Answer struct {
		QuestionIndex int      `json:"question_index"`
		Answer        string   `json:"answer"`
		TimeTaken     *float64 `json:"time_taken,omitempty"`
	}

	UserAnswer struct {
		QuestionIndex int      `json:"question_index"`
		Answer        string   `json:"answer"`
		IsCorrect     bool     `json:"is_correct"`
		TimeTaken     *float64 `json:"time_taken"`
	}

	Result struct {
		ID             string       `json:"id"`
		Quiz           *Quiz        `json:"quiz"`
		QuizID         string       `json:"quiz_id"`
		Answers        []UserAnswer `json:"answers"`
		Score          float64      `json:"score"`
		TotalQuestions int          `json:"total_questions"`
		CorrectAnswers int          `json:"correct_answers"`
		TimeTaken      *float64     `json:"time_taken"`
	}

	Leaderboard struct {
		QuizID  string             `json:"quiz_id"`
		Entries []LeaderboardEntry `json:"entries"`
	}

	LeaderboardEntry struct {
		ResultID string  `json:"result_id"`
		Score    float64 `json:"score"`
	}
)

type (
	CreateQuizRequest struct {
		// Topic overrides Config.Topic when set.
		Topic  string      `json:"topic"`
		Config *QuizConfig `json:"config,omitempty"`
	}

	GetQuizRequest struct {
		QuizID string `json:"quiz_id"`
	}

	SubmitQuizRequest struct {
		QuizID  string   `json:"quiz_id,omitempty"`
		Answers []Answer `json:"answers"`
	}

	GetResultRequest struct {
		ResultID string `json:"result_id"`
	}

	GetLeaderboardRequest struct {
		QuizID string `json:"quiz_id"`
		Limit  int    `json:"limit,omitempty"`
	}

	WelcomeResponse struct {
		Message string `json:"message"`
	}
)

func (r CreateQuizRequest) quizConfig() domain.QuizConfig {
	var c domain.QuizConfig
	if r.Config != nil {
		c = domain.QuizConfig{
			Topic:         r.Config.Topic,
			NumQuestions:  r.Config.NumQuestions,
			Difficulty:    r.Config.Difficulty,
			QuestionTypes: r.Config.QuestionTypes,
		}
	}
	if r.Topic != "" {
		c.Topic = r.Topic
	}
	return c
}

func (r SubmitQuizRequest) submissions() []result.Submission {
	subs := make([]result.Submission, 0, len(r.Answers))
	for _, a := range r.Answers {
		subs = append(subs, result.Submission{
			QuestionIndex: a.QuestionIndex,
			Answer:        a.Answer,
			TimeTaken:     a.TimeTaken,
		})
	}
	return subs
}

func fromQuiz(q *domain.Quiz) *Quiz {
	resp := &Quiz{
		ID:        q.ID,
		Topic:     q.Topic,
		Questions: make([]Question, 0, len(q.Questions)),
		Config: QuizConfig{
			Topic:         q.Config.Topic,
			NumQuestions:  q.Config.NumQuestions,
			Difficulty:    q.Config.Difficulty,
			QuestionTypes: q.Config.QuestionTypes,
		},
	}

	for _, qq := range q.Questions {
		resp.Questions = append(resp.Questions, Question{
			QuestionText:  qq.Text,
			QuestionType:  qq.Type,
			Options:       qq.Options,
			CorrectAnswer: qq.CorrectAnswer,
			Difficulty:    qq.Difficulty,
			Explanation:   qq.Explanation,
		})
	}

	return resp
}

func fromResult(r *domain.QuizResult) *Result {
	resp := &Result{
		ID:             r.ID,
		Answers:        make([]UserAnswer, 0, len(r.Answers)),
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		TimeTaken:      r.TimeTaken,
	}
	if r.Quiz != nil {
		resp.Quiz = fromQuiz(r.Quiz)
		resp.QuizID = r.Quiz.ID
	}

	for _, a := range r.Answers {
		resp.Answers = append(resp.Answers, UserAnswer{
			QuestionIndex: a.QuestionIndex,
			Answer:        a.Answer,
			IsCorrect:     a.IsCorrect,
			TimeTaken:     a.TimeTaken,
		})
	}

	return resp
}

func fromLeaderboard(l *domain.Leaderboard) *Leaderboard {
	resp := &Leaderboard{
		QuizID:  l.QuizID,
		Entries: make([]LeaderboardEntry, 0, len(l.Entries)),
	}

	for _, e := range l.Entries {
		resp.Entries = append(resp.Entries, LeaderboardEntry{
			ResultID: e.ResultID,
			Score:    e.Score,
		})
	}

	return resp
}
