package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignment-hub/internal/service"
	"github.com/noah-isme/gema-assignment-hub/internal/utils"
)

// TopicHandler exposes topic suggestion endpoints.
type TopicHandler struct {
	service service.TopicService
	logger  zerolog.Logger
}

// NewTopicHandler constructs the handler.
func NewTopicHandler(service service.TopicService, logger zerolog.Logger) *TopicHandler {
	return &TopicHandler{
		service: service,
		logger:  logger.With().Str("component", "topic_handler").Logger(),
	}
}

// Register attaches topic endpoints to the router group.
func (h *TopicHandler) Register(router fiber.Router) {
	router.Get("/suggestions", h.suggestions)
	router.Get("/explore", h.explore)
}

func (h *TopicHandler) suggestions(c *fiber.Ctx) error {
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Suggestions(c.UserContext(), actorFromContext(c), studentID, c.Query("subject"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "topics retrieved", result)
}

func (h *TopicHandler) explore(c *fiber.Ctx) error {
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Explore(c.UserContext(), actorFromContext(c), studentID, c.Query("subject"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "topics retrieved", result)
}
