// Package postgres is a Store backed by PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/store"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
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

	const (
		insQuizStmt     = `INSERT INTO quizzes (quiz_id, topic, config) VALUES ($1, $2, $3);`
		insQuestionStmt = `
INSERT INTO questions (quiz_id, position, question_text, question_type, options, correct_answer, difficulty, explanation)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	)

	b := &pgx.Batch{}
	b.Queue(insQuizStmt, id, quiz.Topic, config)
	for i, q := range quiz.Questions {
		options, err := store.EncodeOptions(q.Options)
		if err != nil {
			return err
		}
		b.Queue(insQuestionStmt, id, i, q.Text, q.Type.String(), options, q.CorrectAnswer, q.Difficulty.String(), q.Explanation)
	}

	if err := s.sendBatch(ctx, b); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	quiz.ID = id.String()
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	qid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("quiz %s: %w", id, store.ErrNotFound)
	}

	const (
		selQuizStmt      = `SELECT topic, config FROM quizzes WHERE quiz_id = $1;`
		selQuestionsStmt = `
SELECT question_text, question_type, options, correct_answer, difficulty, explanation
FROM questions
WHERE quiz_id = $1
ORDER BY position;`
	)

	var (
		quiz   = &domain.Quiz{ID: id}
		config []byte
	)
	err = s.db.QueryRow(ctx, selQuizStmt, qid).Scan(&quiz.Topic, &config)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("quiz %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select quiz: %w", err)
	}

	if quiz.Config, err = store.DecodeConfig(config); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, selQuestionsStmt, qid)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	quiz.Questions, err = pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Question, error) {
		var (
			q               domain.Question
			typ, difficulty string
			options         []byte
		)
		if err := r.Scan(&q.Text, &typ, &options, &q.CorrectAnswer, &difficulty, &q.Explanation); err != nil {
			return domain.Question{}, err
		}

		var err error
		if q.Type, err = domain.ParseQuestionType(typ); err != nil {
			return domain.Question{}, err
		}
		if q.Difficulty, err = domain.ParseDifficulty(difficulty); err != nil {
			return domain.Question{}, err
		}
		if q.Options, err = store.DecodeOptions(options); err != nil {
			return domain.Question{}, err
		}
		return q, nil
	})
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	return quiz, nil
}

func (s *Store) CreateResult(ctx context.Context, result *domain.QuizResult) error {
	if result.Quiz == nil || result.Quiz.ID == "" {
		return fmt.Errorf("create result: quiz is not stored")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate result ID: %w", err)
	}

	const (
		insResultStmt = `
INSERT INTO results (result_id, quiz_id, score, total_questions, correct_answers, time_taken)
VALUES ($1, $2, $3, $4, $5, $6);`
		insAnswerStmt = `
INSERT INTO user_answers (result_id, question_index, answer, is_correct, time_taken)
VALUES ($1, $2, $3, $4, $5);`
	)

	b := &pgx.Batch{}
	b.Queue(insResultStmt, id, result.Quiz.ID, result.Score, result.TotalQuestions, result.CorrectAnswers, result.TimeTaken)
	for _, a := range result.Answers {
		b.Queue(insAnswerStmt, id, a.QuestionIndex, a.Answer, a.IsCorrect, a.TimeTaken)
	}

	if err := s.sendBatch(ctx, b); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	result.ID = id.String()
	return nil
}

func (s *Store) GetResult(ctx context.Context, id string) (*domain.QuizResult, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("result %s: %w", id, store.ErrNotFound)
	}

	const (
		selResultStmt = `
SELECT quiz_id::text, score, total_questions, correct_answers, time_taken
FROM results
WHERE result_id = $1;`
		selAnswersStmt = `
SELECT question_index, answer, is_correct, time_taken
FROM user_answers
WHERE result_id = $1
ORDER BY question_index;`
	)

	var (
		r      = &domain.QuizResult{ID: id}
		quizID string
	)
	err = s.db.QueryRow(ctx, selResultStmt, rid).Scan(&quizID, &r.Score, &r.TotalQuestions, &r.CorrectAnswers, &r.TimeTaken)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select result: %w", err)
	}

	rows, err := s.db.Query(ctx, selAnswersStmt, rid)
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}

	r.Answers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserAnswer, error) {
		var a domain.UserAnswer
		err := row.Scan(&a.QuestionIndex, &a.Answer, &a.IsCorrect, &a.TimeTaken)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	if len(r.Answers) == 0 {
		r.Answers = nil
	}

	if r.Quiz, err = s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	return r, nil
}

// sendBatch runs b in a single transaction.
func (s *Store) sendBatch(ctx context.Context, b *pgx.Batch) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = stderrors.Join(err, tx.Rollback(ctx))
		}
	}()

	if err = tx.SendBatch(ctx, b).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
