// Package sqlite is a Store backed by an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
	quiz_id     TEXT PRIMARY KEY,
	topic       TEXT NOT NULL,
	config      TEXT NOT NULL,
	create_time TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	quiz_id        TEXT NOT NULL REFERENCES quizzes (quiz_id),
	position       INTEGER NOT NULL,
	question_text  TEXT NOT NULL,
	question_type  TEXT NOT NULL,
	options        TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	difficulty     TEXT NOT NULL,
	explanation    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (quiz_id, position)
);

CREATE TABLE IF NOT EXISTS results (
	result_id       TEXT PRIMARY KEY,
	quiz_id         TEXT NOT NULL REFERENCES quizzes (quiz_id),
	score           REAL NOT NULL,
	total_questions INTEGER NOT NULL,
	correct_answers INTEGER NOT NULL,
	time_taken      REAL,
	create_time     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS user_answers (
	result_id      TEXT NOT NULL REFERENCES results (result_id),
	question_index INTEGER NOT NULL,
	answer         TEXT NOT NULL,
	is_correct     BOOLEAN NOT NULL,
	time_taken     REAL,
	PRIMARY KEY (result_id, question_index)
);`

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens the database at path (":memory:" for a private in-memory one) and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// A single connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, stderrors.Join(fmt.Errorf("sqlite: ping: %w", err), db.Close())
	}

	for _, stmt := range []string{`PRAGMA foreign_keys = ON;`, schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, stderrors.Join(fmt.Errorf("sqlite: create schema: %w", err), db.Close())
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateQuiz(ctx context.Context, quiz *domain.Quiz) (err error) {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate quiz ID: %w", err)
	}

	config, err := store.EncodeConfig(quiz.Config)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = stderrors.Join(err, tx.Rollback())
		}
	}()

	const (
		insQuizStmt     = `INSERT INTO quizzes (quiz_id, topic, config, create_time) VALUES (?, ?, ?, ?);`
		insQuestionStmt = `
INSERT INTO questions (quiz_id, position, question_text, question_type, options, correct_answer, difficulty, explanation)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	)

	if _, err = tx.ExecContext(ctx, insQuizStmt, id.String(), quiz.Topic, string(config), time.Now().UTC()); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	for i, q := range quiz.Questions {
		var options []byte
		options, err = store.EncodeOptions(q.Options)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, insQuestionStmt,
			id.String(), i, q.Text, q.Type.String(), string(options), q.CorrectAnswer, q.Difficulty.String(), q.Explanation)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	quiz.ID = id.String()
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	const (
		selQuizStmt      = `SELECT topic, config FROM quizzes WHERE quiz_id = ?;`
		selQuestionsStmt = `
SELECT question_text, question_type, options, correct_answer, difficulty, explanation
FROM questions
WHERE quiz_id = ?
ORDER BY position;`
	)

	var (
		quiz   = &domain.Quiz{ID: id}
		config string
	)
	err := s.db.QueryRowContext(ctx, selQuizStmt, id).Scan(&quiz.Topic, &config)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select quiz: %w", err)
	}

	if quiz.Config, err = store.DecodeConfig([]byte(config)); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, selQuestionsStmt, id)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q                        domain.Question
			typ, difficulty, options string
		)
		if err := rows.Scan(&q.Text, &typ, &options, &q.CorrectAnswer, &difficulty, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if q.Type, err = domain.ParseQuestionType(typ); err != nil {
			return nil, err
		}
		if q.Difficulty, err = domain.ParseDifficulty(difficulty); err != nil {
			return nil, err
		}
		if q.Options, err = store.DecodeOptions([]byte(options)); err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	return quiz, nil
}

func (s *Store) CreateResult(ctx context.Context, result *domain.QuizResult) (err error) {
	if result.Quiz == nil || result.Quiz.ID == "" {
		return fmt.Errorf("create result: quiz is not stored")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate result ID: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = stderrors.Join(err, tx.Rollback())
		}
	}()

	const (
		insResultStmt = `
INSERT INTO results (result_id, quiz_id, score, total_questions, correct_answers, time_taken, create_time)
VALUES (?, ?, ?, ?, ?, ?, ?);`
		insAnswerStmt = `
INSERT INTO user_answers (result_id, question_index, answer, is_correct, time_taken)
VALUES (?, ?, ?, ?, ?);`
	)

	_, err = tx.ExecContext(ctx, insResultStmt,
		id.String(), result.Quiz.ID, result.Score, result.TotalQuestions, result.CorrectAnswers, result.TimeTaken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	for _, a := range result.Answers {
		if _, err = tx.ExecContext(ctx, insAnswerStmt, id.String(), a.QuestionIndex, a.Answer, a.IsCorrect, a.TimeTaken); err != nil {
			return fmt.Errorf("insert answer %d: %w", a.QuestionIndex, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	result.ID = id.String()
	return nil
}

func (s *Store) GetResult(ctx context.Context, id string) (*domain.QuizResult, error) {
	const (
		selResultStmt = `
SELECT quiz_id, score, total_questions, correct_answers, time_taken
FROM results
WHERE result_id = ?;`
		selAnswersStmt = `
SELECT question_index, answer, is_correct, time_taken
FROM user_answers
WHERE result_id = ?
ORDER BY question_index;`
	)

	var (
		r         = &domain.QuizResult{ID: id}
		quizID    string
		timeTaken sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, selResultStmt, id).Scan(&quizID, &r.Score, &r.TotalQuestions, &r.CorrectAnswers, &timeTaken)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select result: %w", err)
	}
	r.TimeTaken = nullFloat(timeTaken)

	rows, err := s.db.QueryContext(ctx, selAnswersStmt, id)
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a domain.UserAnswer
			t sql.NullFloat64
		)
		if err := rows.Scan(&a.QuestionIndex, &a.Answer, &a.IsCorrect, &t); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.TimeTaken = nullFloat(t)
		r.Answers = append(r.Answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}

	// Close the answer cursor before reusing the single connection.
	rows.Close()

	if r.Quiz, err = s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	return r, nil
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
