package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the model answered without any text content.
var ErrEmptyResponse = errors.New("model returned no content")

// TextGenerator sends a single free-form prompt to a generative model and returns its raw text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// GenerateText calls f.
func (f GeneratorFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// WorkedExample is a problem/solution pair emitted by the model.
type WorkedExample struct {
	Problem  Text `json:"problem"`
	Solution Text `json:"solution"`
}

// GeneratedQuestion is a question as emitted by the model, before normalisation.
type GeneratedQuestion struct {
	ID            Text   `json:"id"`
	Type          Text   `json:"type"`
	Text          Text   `json:"text"`
	Options       []Text `json:"options"`
	CorrectAnswer Text   `json:"correctAnswer"`
}

// GenerationResult is the total, always-defined shape extracted from model output.
type GenerationResult struct {
	Explanation string
	Examples    []WorkedExample
	Questions   []GeneratedQuestion
}

// IsEmpty reports whether the result carries no questions.
func (r GenerationResult) IsEmpty() bool {
	return len(r.Questions) == 0
}
