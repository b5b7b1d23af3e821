package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/observability"
	"github.com/noah-isme/gema-assignment-hub/internal/utils"
)

type envelope struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	Data          map[string]interface{} `json:"data"`
	Meta          map[string]interface{} `json:"meta"`
	Details       map[string]interface{} `json:"details"`
	CorrelationID string                 `json:"correlation_id"`
}

func respond(t *testing.T, handler fiber.Handler) (int, envelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), "corr-1"))
		return c.Next()
	}, handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSuccessEnvelopes(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return utils.OK(c, fiber.Map{"assignment_id": 3}, "", fiber.Map{"cache_hit": true})
	})
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, body.Success)
	require.Equal(t, "success", body.Message)
	require.Equal(t, float64(3), body.Data["assignment_id"])
	require.Equal(t, true, body.Meta["cache_hit"])
	require.Empty(t, body.CorrelationID, "successful replies stay lean")

	status, body = respond(t, func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment generated", fiber.Map{"status": "Not Started"})
	})
	require.Equal(t, fiber.StatusCreated, status)
	require.Equal(t, "assignment generated", body.Message)
	require.Nil(t, body.Meta)
}

func TestFailIncludesDetailsAndCorrelation(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", fiber.Map{"QuestionCount": "min"})
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.False(t, body.Success)
	require.Equal(t, "validation failed", body.Message)
	require.Equal(t, "min", body.Details["QuestionCount"])
	require.Equal(t, "corr-1", body.CorrelationID)
	require.Nil(t, body.Data)

	status, body = respond(t, func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "")
	})
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "error", body.Message)
}
