package dto

import (
	"time"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// TemplateCreateRequest saves reusable criteria under a name.
type TemplateCreateRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=120"`
	Criteria CriteriaPayload `json:"criteria" validate:"required"`
}

// TemplateResponse is a saved criteria template.
type TemplateResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Criteria  CriteriaResponse `json:"criteria"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewTemplateResponse converts a model into a DTO.
func NewTemplateResponse(model models.AssignmentTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        model.ID,
		Name:      model.Name,
		Criteria:  NewCriteriaResponse(model.Criteria.Data()),
		CreatedAt: model.CreatedAt,
	}
}

// NewTemplateResponseSlice converts a slice of models into DTOs.
func NewTemplateResponseSlice(templates []models.AssignmentTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, NewTemplateResponse(template))
	}
	return responses
}
