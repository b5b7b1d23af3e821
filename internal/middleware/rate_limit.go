package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/gema-assignment-hub/internal/utils"
)

// RateLimit caps how many requests one caller may make to the wrapped routes per window. Callers are
// keyed by user id, falling back to the client IP. Requests answered with an error status do not use
// up quota, so a failed generation can be retried at once. The limiter sets Retry-After.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:                max,
		Expiration:         window,
		SkipFailedRequests: true,
		KeyGenerator: func(c *fiber.Ctx) string {
			return identifier + ":" + rateLimitCaller(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Fail(c, fiber.StatusTooManyRequests, "rate limit reached, try again later", fiber.Map{
				"limit":  max,
				"window": window.String(),
			})
		},
	})
}

func rateLimitCaller(c *fiber.Ctx) string {
	switch id := c.Locals(localUserID).(type) {
	case uint:
		if id != 0 {
			return fmt.Sprintf("user:%d", id)
		}
	case int:
		if id > 0 {
			return fmt.Sprintf("user:%d", id)
		}
	}
	return "ip:" + c.IP()
}
