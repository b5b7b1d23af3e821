package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignment-hub/internal/observability"
)

// Observability records request metrics labelled by caller role and logs one line per API request.
// Health probes log at debug so polling does not drown the assignment traffic.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()
	requestLog := logger.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), "/api/") {
			return err
		}

		elapsed := time.Since(start)
		route := c.Path()
		if c.Route() != nil && c.Route().Path != "" {
			route = c.Route().Path
		}
		method := c.Method()
		status := c.Response().StatusCode()
		statusLabel := strconv.Itoa(status)
		role := callerRole(c)
		if role == "" {
			role = "anonymous"
		}

		observability.APIRequests().WithLabelValues(method, route, statusLabel, role).Inc()
		observability.APILatency().WithLabelValues(method, route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.APIErrors().WithLabelValues(method, route, statusLabel).Inc()
		}

		event := requestLog.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = requestLog.Error()
		case status >= fiber.StatusBadRequest:
			event = requestLog.Warn()
		case strings.HasSuffix(route, "/health"):
			event = requestLog.Debug()
		}
		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Str("role", role).
			Dur("latency", elapsed).
			Msg("request handled")

		return err
	}
}
