package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
			return
		}

		choices := []map[string]interface{}{}
		if content != "" {
			choices = append(choices, map[string]interface{}{
				"index":   0,
				"message": map[string]string{"role": "assistant", "content": content},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": choices,
			"usage":   map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
}

func TestOpenAIGeneratorReturnsContent(t *testing.T) {
	server := newOpenAITestServer(t, http.StatusOK, "  Practice fractions daily.  ")
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-test", Logger: zerolog.Nop()})
	require.NoError(t, err)

	text, err := generator.GenerateText(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "Practice fractions daily.", text)
}

func TestOpenAIGeneratorSurfacesFailures(t *testing.T) {
	server := newOpenAITestServer(t, http.StatusInternalServerError, "")
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-test", Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = generator.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
}

func TestOpenAIGeneratorEmptyChoices(t *testing.T) {
	server := newOpenAITestServer(t, http.StatusOK, "")
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-test", Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = generator.GenerateText(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewOpenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{})
	require.Error(t, err)
}
