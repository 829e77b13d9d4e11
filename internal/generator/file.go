package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/victornm/quli/internal/domain"
)

// File serves quizzes from a JSON question bank: either an array of
// questions or an object with a "questions" array.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// Generate returns the first questions of the bank that match c, in bank order.
func (g *File) Generate(ctx context.Context, c domain.QuizConfig) (*domain.Quiz, error) {
	raws, err := g.load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if c.Difficulty != nil {
		filtered := raws[:0:0]
		for _, r := range raws {
			if d, err := domain.ParseDifficulty(r.Difficulty); err == nil && d == *c.Difficulty {
				filtered = append(filtered, r)
			}
		}
		raws = filtered
	}

	return assemble(ctx, c, raws)
}

func (g *File) load() ([]rawQuestion, error) {
	b, err := os.ReadFile(g.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var raws []rawQuestion
	if err := json.Unmarshal(b, &raws); err == nil {
		return raws, nil
	}

	var wrapped struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, fmt.Errorf("parse question bank %s: %w", g.path, err)
	}
	return wrapped.Questions, nil
}
