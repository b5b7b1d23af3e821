package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/observability"
	"github.com/noah-isme/gema-assignment-hub/pkg/ai"
)

// DefaultSuggestion is recorded when no usable feedback could be generated.
const DefaultSuggestion = "Good effort!"

// FeedbackRequester asks the model for a one-sentence follow-up suggestion for the parent.
type FeedbackRequester struct {
	generator ai.TextGenerator
	timeout   time.Duration
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewFeedbackRequester constructs a feedback requester. A zero timeout leaves the caller's deadline in charge.
func NewFeedbackRequester(generator ai.TextGenerator, timeout time.Duration, logger zerolog.Logger) *FeedbackRequester {
	return &FeedbackRequester{
		generator: generator,
		timeout:   timeout,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback_requester").Logger(),
	}
}

// Suggest returns the model's suggestion, or DefaultSuggestion when the call fails or yields nothing usable.
func (f *FeedbackRequester) Suggest(ctx context.Context, topic string, score int, questions []models.Question) string {
	if f.generator == nil {
		return f.fallback(nil)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	prompt, err := FeedbackPrompt(topic, score, questions)
	if err != nil {
		return f.fallback(err)
	}

	text, err := f.generator.GenerateText(ctx, prompt)
	if err != nil {
		return f.fallback(err)
	}

	suggestion := scrubText(f.sanitizer, text)
	if suggestion == "" {
		return f.fallback(ai.ErrEmptyResponse)
	}

	return suggestion
}

func (f *FeedbackRequester) fallback(err error) string {
	observability.FeedbackFallbacks().Inc()
	f.logger.Warn().Err(err).Msg("feedback unavailable, using default suggestion")
	return DefaultSuggestion
}

// FeedbackPrompt renders the request for a single sentence of guidance addressed to the parent.
func FeedbackPrompt(topic string, score int, questions []models.Question) (string, error) {
	encoded, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("encode graded questions: %w", err)
	}

	return fmt.Sprintf("A student completed an assignment on %q. Their score was %d%%. "+
		"Here are the questions and their answers: %s. "+
		"Provide a brief, one-sentence suggestion for the parent on what the student should focus on next. "+
		"Reply with the sentence only.", orNotAvailable(topic), score, encoded), nil
}
