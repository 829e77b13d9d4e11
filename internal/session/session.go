// Package session tracks one run through a quiz.
//
// A Session is owned by a single caller and is not safe for concurrent use.
// It serves two interaction modes: sequential, where Submit answers the
// question at the cursor and advances it, and batch, where SubmitAt answers
// an explicit index and leaves the cursor alone.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/grading"
	"github.com/victornm/quli/internal/score"
)

var (
	ErrInvalidState    = errors.New("session: invalid state")
	ErrIndexOutOfRange = errors.New("session: question index out of range")
	ErrEmptyQuiz       = errors.New("session: quiz has no questions")
)

type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Session struct {
	quiz    *domain.Quiz
	state   State
	current int
	answers map[int]domain.UserAnswer

	now               func() time.Time
	startedAt         time.Time
	questionStartedAt time.Time
}

type Option func(*Session)

// WithClock replaces time.Now, used to time sequential answers.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a session over quiz. The quiz is borrowed and must not be modified while the session is in use.
func New(quiz *domain.Quiz, opts ...Option) *Session {
	s := &Session{
		quiz:    quiz,
		answers: make(map[int]domain.UserAnswer, len(quiz.Questions)),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start moves the session from not started to in progress.
func (s *Session) Start() error {
	if s.state != StateNotStarted {
		return fmt.Errorf("%w: start called in state %s", ErrInvalidState, s.state)
	}
	if len(s.quiz.Questions) == 0 {
		return ErrEmptyQuiz
	}

	s.state = StateInProgress
	s.startedAt = s.now()
	s.questionStartedAt = s.startedAt
	return nil
}

func (s *Session) State() State { return s.state }

func (s *Session) Quiz() *domain.Quiz { return s.quiz }

// CurrentIndex is the cursor used by sequential submissions, in [0, len(questions)].
func (s *Session) CurrentIndex() int { return s.current }

func (s *Session) StartedAt() time.Time { return s.startedAt }

// Elapsed is the wall time since Start, zero before it.
func (s *Session) Elapsed() time.Duration {
	if s.state == StateNotStarted {
		return 0
	}
	return s.now().Sub(s.startedAt)
}

// CurrentQuestion returns the question at the cursor. ok is false when the
// cursor has moved past the last question.
func (s *Session) CurrentQuestion() (q domain.Question, ok bool, err error) {
	if s.state != StateInProgress {
		return domain.Question{}, false, fmt.Errorf("%w: no current question in state %s", ErrInvalidState, s.state)
	}
	if s.current >= len(s.quiz.Questions) {
		return domain.Question{}, false, nil
	}
	return s.quiz.Questions[s.current], true, nil
}

// Submit grades raw against the question at the cursor and advances the cursor.
// The answer is timed from the moment its question became current.
func (s *Session) Submit(raw string) (domain.UserAnswer, error) {
	if err := s.checkStarted(); err != nil {
		return domain.UserAnswer{}, err
	}

	now := s.now()
	taken := now.Sub(s.questionStartedAt).Seconds()

	a, err := s.record(s.current, raw, &taken)
	if err != nil {
		return domain.UserAnswer{}, err
	}

	s.current++
	s.questionStartedAt = now
	return a, nil
}

// SubmitAt grades raw against the question at index without touching the cursor.
// A second submission for the same index replaces the first.
func (s *Session) SubmitAt(index int, raw string, timeTaken *float64) (domain.UserAnswer, error) {
	if err := s.checkStarted(); err != nil {
		return domain.UserAnswer{}, err
	}

	return s.record(index, raw, timeTaken)
}

// IsComplete reports whether every question has an answer, whatever the order they came in.
func (s *Session) IsComplete() bool {
	n := len(s.quiz.Questions)
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if _, ok := s.answers[i]; !ok {
			return false
		}
	}
	return true
}

// Answer returns the recorded answer for index.
func (s *Session) Answer(index int) (domain.UserAnswer, bool) {
	a, ok := s.answers[index]
	return a, ok
}

// Result aggregates the answers recorded so far. It may be called on an incomplete session.
func (s *Session) Result() domain.QuizResult {
	answers := make([]domain.UserAnswer, 0, len(s.answers))
	for _, a := range s.answers {
		answers = append(answers, a)
	}
	return score.Compute(s.quiz, answers)
}

func (s *Session) checkStarted() error {
	if s.state == StateNotStarted {
		return fmt.Errorf("%w: submit before start", ErrInvalidState)
	}
	return nil
}

func (s *Session) record(index int, raw string, timeTaken *float64) (domain.UserAnswer, error) {
	if index < 0 || index >= len(s.quiz.Questions) {
		return domain.UserAnswer{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.quiz.Questions))
	}
	if timeTaken != nil && *timeTaken < 0 {
		zero := 0.0
		timeTaken = &zero
	}

	a := domain.UserAnswer{
		QuestionIndex: index,
		Answer:        raw,
		IsCorrect:     grading.Grade(s.quiz.Questions[index], raw),
		TimeTaken:     timeTaken,
	}
	s.answers[index] = a

	if s.IsComplete() {
		s.state = StateComplete
	}

	return a, nil
}
