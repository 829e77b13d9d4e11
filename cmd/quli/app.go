package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/generator"
	"github.com/victornm/quli/internal/report"
	"github.com/victornm/quli/internal/session"
	"github.com/victornm/quli/internal/store"
)

type app struct {
	in    *input
	out   io.Writer
	color bool
	gen   generator.Generator
	// store is nil when runs are not saved.
	store store.Store
	now   func() time.Time
}

func (a *app) run(ctx context.Context, f flags) error {
	if a.now == nil {
		a.now = time.Now
	}
	if a.color {
		printBanner(a.out)
	}

	c, err := a.quizConfig(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nGenerating a quiz about %q...\n", c.Topic)
	quiz, err := a.gen.Generate(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to generate quiz: %w", err)
	}
	if a.store != nil {
		if err := a.store.CreateQuiz(ctx, quiz); err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}
	}

	ss := session.New(quiz, session.WithClock(a.now))
	if err := ss.Start(); err != nil {
		return err
	}

	if f.interactive {
		err = a.runInteractive(ss)
	} else {
		err = a.runBatch(ss)
	}
	if err != nil {
		return err
	}

	r := ss.Result()
	if a.store != nil {
		if err := a.store.CreateResult(ctx, &r); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
	}

	printResults(a.out, r, a.color)
	if f.review {
		printReview(a.out, r)
	}
	if f.report != "" {
		if err := writeReport(f.report, &r); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\nReport written to %s\n", f.report)
	}

	return nil
}

func (a *app) quizConfig(f flags) (domain.QuizConfig, error) {
	var (
		c   domain.QuizConfig
		err error
	)

	if f.advanced {
		c, err = a.in.advancedConfig(f.topic)
	} else {
		c.Topic = f.topic
		if c.Topic == "" {
			c.Topic, err = a.in.required("Enter a topic for your quiz: ")
		}
	}
	if err != nil {
		return c, err
	}

	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid quiz config: %w", err)
	}
	return c, nil
}

// runInteractive asks one question at a time and gives feedback after each answer.
func (a *app) runInteractive(ss *session.Session) error {
	total := ss.Quiz().Len()
	for {
		q, ok, err := ss.CurrentQuestion()
		if err != nil || !ok {
			return err
		}

		printQuestion(a.out, ss.CurrentIndex(), total, q)
		raw, err := a.in.required("Your answer: ")
		if err != nil {
			return err
		}

		ua, err := ss.Submit(resolveAnswer(q, raw))
		if err != nil {
			return err
		}
		printFeedback(a.out, q, ua, a.color)

		if ss.State() == session.StateComplete {
			return nil
		}
	}
}

// runBatch collects an answer for every question before any of them is graded.
func (a *app) runBatch(ss *session.Session) error {
	quiz := ss.Quiz()
	fmt.Fprintf(a.out, "\nAnswer all %d questions, results follow at the end.\n", quiz.Len())

	type pending struct {
		answer string
		taken  float64
	}
	answers := make([]pending, 0, quiz.Len())

	for i, q := range quiz.Questions {
		printQuestion(a.out, i, quiz.Len(), q)

		start := a.now()
		raw, err := a.in.required("Your answer: ")
		if err != nil {
			return err
		}
		answers = append(answers, pending{
			answer: resolveAnswer(q, raw),
			taken:  a.now().Sub(start).Seconds(),
		})
	}

	for i, p := range answers {
		if _, err := ss.SubmitAt(i, p.answer, &p.taken); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(path string, r *domain.QuizResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()

	return report.WritePDF(f, r)
}
