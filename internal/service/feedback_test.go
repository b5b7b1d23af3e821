package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/pkg/ai"
)

func TestFeedbackRequesterReturnsModelSuggestion(t *testing.T) {
	generator := newScriptedGenerator(scriptedResponse{text: "  Practice <em>equivalent</em> fractions next.\n"})
	requester := NewFeedbackRequester(generator, time.Second, testLogger())

	suggestion := requester.Suggest(context.Background(), "Fractions", 50, mcqBatch(2, 1))

	require.Equal(t, "Practice equivalent fractions next.", suggestion)
	require.Len(t, generator.prompts, 1)
	require.Contains(t, generator.prompts[0], `assignment on "Fractions"`)
	require.Contains(t, generator.prompts[0], "score was 50%")
	require.Contains(t, generator.prompts[0], "one-sentence suggestion for the parent")
}

func TestFeedbackRequesterFallsBack(t *testing.T) {
	cases := map[string]ai.TextGenerator{
		"transport failure": newScriptedGenerator(scriptedResponse{err: errors.New("503 service unavailable")}),
		"empty text":        newScriptedGenerator(scriptedResponse{text: "   "}),
		"markup only":       newScriptedGenerator(scriptedResponse{text: "<script>alert(1)</script>"}),
		"timeout": ai.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}),
	}

	for name, generator := range cases {
		t.Run(name, func(t *testing.T) {
			requester := NewFeedbackRequester(generator, 20*time.Millisecond, testLogger())
			require.Equal(t, DefaultSuggestion, requester.Suggest(context.Background(), "Fractions", 0, []models.Question{}))
		})
	}
}

func TestFeedbackRequesterWithoutGenerator(t *testing.T) {
	requester := NewFeedbackRequester(nil, 0, testLogger())
	require.Equal(t, "Good effort!", requester.Suggest(context.Background(), "", 100, nil))
}
