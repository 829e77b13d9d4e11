package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/victornm/quli/internal/config"
	"github.com/victornm/quli/internal/generator"
	"github.com/victornm/quli/internal/store"
	"github.com/victornm/quli/internal/store/sqlite"
	"github.com/victornm/quli/internal/telemetry"
)

type Config struct {
	Generator struct {
		APIKey      string
		BaseURL     string
		Model       string
		Temperature float32
	}

	Log telemetry.LogConfig
}

func defaultConfig() Config {
	var c Config
	c.Generator.BaseURL = generator.DefaultBaseURL
	c.Generator.Model = generator.DefaultModel
	c.Generator.Temperature = 0.7
	c.Log.Level = "warn"
	c.Log.Format = "text"
	return c
}

type flags struct {
	topic       string
	interactive bool
	batch       bool
	advanced    bool
	questions   string
	config      string
	db          string
	review      bool
	report      string
}

func parseFlags(args []string) (flags, error) {
	var f flags

	fs := pflag.NewFlagSet("quli", pflag.ContinueOnError)
	fs.StringVarP(&f.topic, "topic", "t", "", "quiz topic")
	fs.BoolVarP(&f.interactive, "interactive", "i", true, "answer one question at a time with immediate feedback")
	fs.BoolVarP(&f.batch, "batch", "b", false, "answer all questions first, then see the results")
	fs.BoolVarP(&f.advanced, "advanced", "a", false, "choose question count, difficulty and question types")
	fs.StringVar(&f.questions, "questions", "", "JSON question bank to use instead of the model")
	fs.StringVar(&f.config, "config", "", "config file")
	fs.StringVar(&f.db, "db", "", "SQLite database to save quizzes and results in")
	fs.BoolVar(&f.review, "review", false, "show every question with your answer after the results")
	fs.StringVar(&f.report, "report", "", "write a PDF report of the results to this file")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.batch {
		f.interactive = false
	}
	return f, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	c, err := loadConfig(f.config)
	if err != nil {
		return err
	}

	closer, err := telemetry.SetupLogger(c.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	gen, err := newGenerator(c, f.questions)
	if err != nil {
		return err
	}

	var st store.Store
	if f.db != "" {
		s, err := sqlite.Open(ctx, f.db)
		if err != nil {
			return err
		}
		defer s.Close()
		st = s
	}

	a := &app{
		in:    newInput(os.Stdin, os.Stdout),
		out:   os.Stdout,
		color: term.IsTerminal(int(os.Stdout.Fd())),
		gen:   gen,
		store: st,
	}
	return a.run(ctx, f)
}

func loadConfig(file string) (Config, error) {
	c := defaultConfig()

	if err := config.LoadDotEnv(); err != nil {
		return c, err
	}

	if err := config.Load(file, &c); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}

	if c.Generator.APIKey == "" {
		c.Generator.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return c, nil
}

func newGenerator(c Config, questions string) (generator.Generator, error) {
	if questions != "" {
		return generator.NewFile(questions), nil
	}

	g, err := generator.NewOpenAI(generator.Config{
		APIKey:      c.Generator.APIKey,
		BaseURL:     c.Generator.BaseURL,
		Model:       c.Generator.Model,
		Temperature: c.Generator.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GENERATOR_APIKEY or GEMINI_API_KEY, or use --questions)", err)
	}
	return g, nil
}
