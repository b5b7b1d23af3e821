package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/middleware"
)

func TestRateLimitPerCaller(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-User") == "7" {
			c.Locals("user_id", uint(7))
		} else {
			c.Locals("user_id", uint(8))
		}
		return c.Next()
	})
	app.Post("/", middleware.RateLimit("generate", 2, time.Minute), func(c *fiber.Ctx) error {
		if c.Query("fail") == "1" {
			return c.SendStatus(fiber.StatusBadGateway)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	send := func(user, query string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/"+query, nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		if resp.StatusCode == fiber.StatusTooManyRequests {
			var body struct {
				Success bool           `json:"success"`
				Details map[string]any `json:"details"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.False(t, body.Success)
			require.Equal(t, float64(2), body.Details["limit"])
			require.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
		}
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusBadGateway, send("7", "?fail=1"))
	require.Equal(t, fiber.StatusCreated, send("7", ""))
	require.Equal(t, fiber.StatusCreated, send("7", ""), "failed requests do not count")
	require.Equal(t, fiber.StatusTooManyRequests, send("7", ""))
	require.Equal(t, fiber.StatusCreated, send("8", ""), "quota is per caller")
}
