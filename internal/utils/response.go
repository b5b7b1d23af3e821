package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assignment-hub/internal/observability"
)

// APIResponse is the envelope every endpoint replies with. Failed responses carry the request's
// correlation id so a parent reporting a problem can quote it.
type APIResponse struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Message       string      `json:"message"`
	Meta          interface{} `json:"meta,omitempty"`
	Details       interface{} `json:"details,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// SendSuccess replies 200 with data.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus replies with data under the given status (200 when zero).
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	return write(c, status, APIResponse{Success: true, Data: data, Message: message})
}

// OK replies 200 with data plus metadata such as pagination or cache hits.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message, Meta: meta})
}

// SendError replies with an error message only.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail replies with an error message and optional details, e.g. per-field validation failures.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	return write(c, status, APIResponse{
		Message:       message,
		Details:       details,
		CorrelationID: observability.CorrelationID(c.UserContext()),
	})
}

func write(c *fiber.Ctx, status int, response APIResponse) error {
	if response.Message == "" {
		response.Message = "success"
		if !response.Success {
			response.Message = "error"
		}
	}
	return c.Status(status).JSON(response)
}
