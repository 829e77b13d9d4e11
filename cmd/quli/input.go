package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/grading"
)

var errInputClosed = errors.New("input closed")

type input struct {
	r *bufio.Reader
	w io.Writer
}

func newInput(r io.Reader, w io.Writer) *input {
	return &input{r: bufio.NewReader(r), w: w}
}

// line prints label and reads one trimmed line.
func (in *input) line(label string) (string, error) {
	fmt.Fprint(in.w, label)

	s, err := in.r.ReadString('\n')
	if errors.Is(err, io.EOF) && s == "" {
		return "", errInputClosed
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// required re-prompts until a non-empty line is entered.
func (in *input) required(label string) (string, error) {
	for {
		s, err := in.line(label)
		if err != nil || s != "" {
			return s, err
		}
		fmt.Fprintln(in.w, "Please enter a value.")
	}
}

// number reads an integer in [lo, hi]; an empty line selects def.
func (in *input) number(label string, def, lo, hi int) (int, error) {
	for {
		s, err := in.line(fmt.Sprintf("%s [%d]: ", label, def))
		if err != nil {
			return 0, err
		}
		if s == "" {
			return def, nil
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= lo && n <= hi {
			return n, nil
		}
		fmt.Fprintf(in.w, "Please enter a number between %d and %d.\n", lo, hi)
	}
}

// choice shows a numbered menu and returns the 0-based index of the selection.
func (in *input) choice(label string, options []string, def int) (int, error) {
	fmt.Fprintln(in.w, label)
	for i, o := range options {
		fmt.Fprintf(in.w, "  %d. %s\n", i+1, o)
	}
	n, err := in.number("Choice", def+1, 1, len(options))
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// resolveAnswer maps an option number to its text. Input that already matches
// an option, and anything that is not an option number, is returned unchanged
// for the grader.
func resolveAnswer(q domain.Question, raw string) string {
	raw = strings.TrimSpace(raw)
	for _, o := range q.Options {
		if grading.Normalize(o) == grading.Normalize(raw) {
			return raw
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(q.Options) {
		return raw
	}
	return q.Options[n-1]
}

// advancedConfig asks for everything a quiz config holds.
func (in *input) advancedConfig(topic string) (domain.QuizConfig, error) {
	var (
		c   domain.QuizConfig
		err error
	)

	c.Topic = topic
	if c.Topic == "" {
		if c.Topic, err = in.required("Topic: "); err != nil {
			return c, err
		}
	}

	if c.NumQuestions, err = in.number("Number of questions", domain.DefaultNumQuestions, 1, 50); err != nil {
		return c, err
	}

	difficulties := []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}
	i, err := in.choice("Difficulty:", []string{"Easy", "Medium", "Hard", "Mixed"}, len(difficulties))
	if err != nil {
		return c, err
	}
	if i < len(difficulties) {
		c.Difficulty = &difficulties[i]
	}

	types := []string{"Multiple choice", "True/False", "Both"}
	i, err = in.choice("Question types:", types, len(types)-1)
	if err != nil {
		return c, err
	}
	switch i {
	case 0:
		c.QuestionTypes = []domain.QuestionType{domain.QuestionTypeMultipleChoice}
	case 1:
		c.QuestionTypes = []domain.QuestionType{domain.QuestionTypeTrueFalse}
	default:
		c.QuestionTypes = domain.AllQuestionTypes()
	}

	return c, nil
}
