// Package grading decides whether a raw answer is correct for a question.
package grading

import (
	"strings"

	"github.com/victornm/quli/internal/domain"
)

// letters are the option shortcuts accepted for multiple choice questions.
// Options past the fourth can only be answered by their text.
const letters = "abcd"

// MaxLetterOptions is the number of options reachable by a letter shortcut.
const MaxLetterOptions = len(letters)

// Normalize trims surrounding whitespace and lower-cases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Grade reports whether raw answers q correctly. It never fails: input it
// does not understand is graded incorrect.
func Grade(q domain.Question, raw string) bool {
	answer := Normalize(raw)
	correct := Normalize(q.CorrectAnswer)

	if answer == correct {
		return true
	}

	switch q.Type {
	case domain.QuestionTypeMultipleChoice:
		i, ok := LetterIndex(answer)
		if !ok || i >= len(q.Options) {
			return false
		}
		return Normalize(q.Options[i]) == correct
	case domain.QuestionTypeTrueFalse:
		return false
	default:
		return false
	}
}

// LetterIndex maps a single letter a-d (any case) to its option index.
// Anything else, including "a." or "ab", is not a letter shortcut.
func LetterIndex(s string) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	i := strings.IndexByte(letters, s[0]|0x20)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// Letter returns the shortcut letter for option index i, or "" when i has none.
func Letter(i int) string {
	if i < 0 || i >= len(letters) {
		return ""
	}
	return letters[i : i+1]
}
