package domain

import (
	"fmt"
	"strings"
)

const DefaultNumQuestions = 5

// QuestionType is the closed set of question kinds.
type QuestionType int

const (
	QuestionTypeMultipleChoice QuestionType = iota + 1
	QuestionTypeTrueFalse
)

var questionTypeNames = map[QuestionType]string{
	QuestionTypeMultipleChoice: "multiple_choice",
	QuestionTypeTrueFalse:      "true_false",
}

func (t QuestionType) String() string {
	if s, ok := questionTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("QuestionType(%d)", int(t))
}

func (t QuestionType) MarshalText() ([]byte, error) {
	s, ok := questionTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("invalid question type %d", int(t))
	}
	return []byte(s), nil
}

func (t *QuestionType) UnmarshalText(b []byte) error {
	v, err := ParseQuestionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseQuestionType accepts the text form case-insensitively.
func ParseQuestionType(s string) (QuestionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range questionTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown question type %q", s)
}

// AllQuestionTypes returns every question type in declaration order.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{QuestionTypeMultipleChoice, QuestionTypeTrueFalse}
}

type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
)

var difficultyNames = map[Difficulty]string{
	DifficultyEasy:   "easy",
	DifficultyMedium: "medium",
	DifficultyHard:   "hard",
}

func (d Difficulty) String() string {
	if s, ok := difficultyNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

func (d Difficulty) MarshalText() ([]byte, error) {
	s, ok := difficultyNames[d]
	if !ok {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(s), nil
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range difficultyNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Question is a single quiz question. It is created once by a generator and never mutated.
type Question struct {
	Text          string
	Type          QuestionType
	Options       []string
	CorrectAnswer string
	Difficulty    Difficulty
	Explanation   string
}

// QuizConfig describes what a generator should produce.
type QuizConfig struct {
	Topic        string
	NumQuestions int
	// Difficulty is nil for a mixed quiz.
	Difficulty    *Difficulty
	QuestionTypes []QuestionType
}

// WithDefaults returns a copy of the config with unset fields filled in.
func (c QuizConfig) WithDefaults() QuizConfig {
	c.Topic = strings.TrimSpace(c.Topic)
	if c.NumQuestions == 0 {
		c.NumQuestions = DefaultNumQuestions
	}
	if len(c.QuestionTypes) == 0 {
		c.QuestionTypes = AllQuestionTypes()
	}
	return c
}

func (c QuizConfig) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if c.NumQuestions <= 0 {
		return fmt.Errorf("num_questions must be positive, got %d", c.NumQuestions)
	}
	if len(c.QuestionTypes) == 0 {
		return fmt.Errorf("at least one question type is required")
	}
	for _, t := range c.QuestionTypes {
		if _, ok := questionTypeNames[t]; !ok {
			return fmt.Errorf("invalid question type %d", int(t))
		}
	}
	if c.Difficulty != nil {
		if _, ok := difficultyNames[*c.Difficulty]; !ok {
			return fmt.Errorf("invalid difficulty %d", int(*c.Difficulty))
		}
	}
	return nil
}

// Allows reports whether questions of type t may appear in the quiz.
func (c QuizConfig) Allows(t QuestionType) bool {
	for _, qt := range c.QuestionTypes {
		if qt == t {
			return true
		}
	}
	return false
}

// Quiz is an ordered list of questions generated from a QuizConfig.
type Quiz struct {
	ID        string
	Topic     string
	Questions []Question
	Config    QuizConfig
}

func (q *Quiz) Len() int { return len(q.Questions) }

// UserAnswer is a graded submission for one question.
type UserAnswer struct {
	QuestionIndex int
	Answer        string
	IsCorrect     bool
	// TimeTaken is in seconds, nil when not measured.
	TimeTaken *float64
}

// QuizResult is the score summary of a quiz run.
// Answers are ordered by question index.
type QuizResult struct {
	ID             string
	Quiz           *Quiz
	Answers        []UserAnswer
	Score          float64
	TotalQuestions int
	CorrectAnswers int
	TimeTaken      *float64
}

// Leaderboard lists the results of a quiz, best score first.
type Leaderboard struct {
	QuizID  string
	Entries []LeaderboardEntry
}

type LeaderboardEntry struct {
	ResultID string
	Score    float64
}
