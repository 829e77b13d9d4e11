package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/score"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"

	reviewTextWidth = 50
)

func printBanner(w io.Writer) {
	fmt.Fprint(w, ansiCyan+figure.NewFigure("Quli", "", true).String()+ansiReset)
	fmt.Fprintln(w, "Test your knowledge on any topic.")
}

func paint(s, color string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + ansiReset
}

func printQuestion(w io.Writer, index, total int, q domain.Question) {
	fmt.Fprintf(w, "\nQuestion %d/%d [%s]\n%s\n", index+1, total, q.Difficulty, q.Text)
	for i, o := range q.Options {
		fmt.Fprintf(w, "  %d. %s\n", i+1, o)
	}
}

func printFeedback(w io.Writer, q domain.Question, a domain.UserAnswer, color bool) {
	if a.IsCorrect {
		fmt.Fprintln(w, paint("Correct!", ansiGreen, color))
	} else {
		fmt.Fprintln(w, paint("Incorrect.", ansiRed, color), "The correct answer is:", q.CorrectAnswer)
	}
	if q.Explanation != "" {
		fmt.Fprintln(w, "Explanation:", q.Explanation)
	}
}

var bandColors = map[string]string{
	"good": ansiGreen,
	"fair": ansiYellow,
	"poor": ansiRed,
}

func printResults(w io.Writer, r domain.QuizResult, color bool) {
	band := score.Band(r.Score)

	fmt.Fprintln(w, "\n=== Results ===")
	fmt.Fprintf(w, "Score: %s\n", paint(score.Round(r.Score).StringFixed(1)+"%", bandColors[band], color))
	fmt.Fprintf(w, "Correct answers: %d/%d\n", r.CorrectAnswers, r.TotalQuestions)
	if r.TimeTaken != nil {
		d := time.Duration(*r.TimeTaken * float64(time.Second)).Round(100 * time.Millisecond)
		fmt.Fprintf(w, "Time taken: %s\n", d)
	}
}

func printReview(w io.Writer, r domain.QuizResult) {
	answers := make(map[int]domain.UserAnswer, len(r.Answers))
	for _, a := range r.Answers {
		answers[a.QuestionIndex] = a
	}

	fmt.Fprintln(w, "\n=== Review ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tQuestion\tYour answer\tCorrect answer\tResult")
	for i, q := range r.Quiz.Questions {
		given, verdict := "-", "skipped"
		if a, ok := answers[i]; ok {
			given, verdict = a.Answer, "wrong"
			if a.IsCorrect {
				verdict = "right"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, truncate(q.Text, reviewTextWidth), given, q.CorrectAnswer, verdict)
	}
	tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
