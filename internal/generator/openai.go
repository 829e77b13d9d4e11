package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/victornm/quli/internal/domain"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel   = "gemini-2.5-flash"

	submitQuestionsTool = "submit_questions"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// OpenAI generates quizzes with a chat completion model that supports tool calls.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAI(c Config) (*OpenAI, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("generator: API key is not set")
	}

	cc := openai.DefaultConfig(c.APIKey)
	cc.BaseURL = DefaultBaseURL
	if c.BaseURL != "" {
		cc.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(cc),
		model:       model,
		temperature: c.Temperature,
	}, nil
}

func (g *OpenAI) Generate(ctx context.Context, c domain.QuizConfig) (*domain.Quiz, error) {
	start := time.Now()
	slog.InfoContext(ctx, "generator: generating quiz",
		"topic", c.Topic,
		"num_questions", c.NumQuestions,
		"model", g.model,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert quiz author. Write clear, factual questions with exactly one correct answer.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(c),
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        submitQuestionsTool,
					Description: "Submit the generated quiz questions",
					Parameters:  questionsSchema(c),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type: openai.ToolTypeFunction,
			Function: openai.ToolFunction{
				Name: submitQuestionsTool,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %w", ErrGeneration, err)
	}

	raws, err := parseResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	quiz, err := assemble(ctx, c, raws)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "generator: quiz generated",
		"topic", c.Topic,
		"questions", len(quiz.Questions),
		"duration", time.Since(start),
	)
	return quiz, nil
}

func parseResponse(resp openai.ChatCompletionResponse) ([]rawQuestion, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	msg := resp.Choices[0].Message

	var args string
	switch {
	case len(msg.ToolCalls) > 0:
		call := msg.ToolCalls[0]
		if call.Function.Name != submitQuestionsTool {
			return nil, fmt.Errorf("unexpected tool call: %s", call.Function.Name)
		}
		args = call.Function.Arguments
	case strings.TrimSpace(msg.Content) != "":
		// Some compatible endpoints answer in plain content even when a tool is forced.
		args = stripCodeFence(msg.Content)
	default:
		return nil, fmt.Errorf("empty response")
	}

	var out struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(args), &out); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	return out.Questions, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func buildPrompt(c domain.QuizConfig) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate %d quiz questions about: %s\n\n", c.NumQuestions, c.Topic)

	if c.Difficulty != nil {
		fmt.Fprintf(&sb, "Difficulty level: %s\n", c.Difficulty)
	} else {
		sb.WriteString("Difficulty level: mixed (use a blend of easy, medium and hard)\n")
	}

	types := make([]string, 0, len(c.QuestionTypes))
	for _, t := range c.QuestionTypes {
		types = append(types, t.String())
	}
	fmt.Fprintf(&sb, "Allowed question types: %s\n\n", strings.Join(types, ", "))

	sb.WriteString("Requirements:\n")
	if c.Allows(domain.QuestionTypeMultipleChoice) {
		sb.WriteString("- multiple_choice questions have exactly 4 options and correct_answer is the full text of one option\n")
	}
	if c.Allows(domain.QuestionTypeTrueFalse) {
		sb.WriteString("- true_false questions have the options [\"True\", \"False\"] and correct_answer is \"True\" or \"False\"\n")
	}
	sb.WriteString("- Incorrect options should be plausible but clearly wrong\n")
	sb.WriteString("- Avoid questions where the answer is given away in the question text\n")
	sb.WriteString("- Provide a one sentence explanation of the correct answer\n")
	fmt.Fprintf(&sb, "- Use the %s tool to return your questions\n", submitQuestionsTool)

	return sb.String()
}

func questionsSchema(c domain.QuizConfig) map[string]any {
	types := make([]string, 0, len(c.QuestionTypes))
	for _, t := range c.QuestionTypes {
		types = append(types, t.String())
	}

	difficulties := []string{"easy", "medium", "hard"}
	if c.Difficulty != nil {
		difficulties = []string{c.Difficulty.String()}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_text": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"question_type": map[string]any{
							"type": "string",
							"enum": types,
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Answer options in display order",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "Exact text of the correct option",
						},
						"difficulty": map[string]any{
							"type": "string",
							"enum": difficulties,
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct answer is right",
						},
					},
					"required": []string{"question_text", "question_type", "options", "correct_answer", "difficulty"},
				},
			},
		},
		"required": []string{"questions"},
	}
}
