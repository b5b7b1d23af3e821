package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
)

// TemplateService manages a parent's saved assignment criteria.
type TemplateService interface {
	List(ctx context.Context, actor Actor) ([]dto.TemplateResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error)
}

type templateService struct {
	repo      repository.TemplateRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTemplateService constructs the template service.
func NewTemplateService(repo repository.TemplateRepository, validate *validator.Validate, logger zerolog.Logger) TemplateService {
	return &templateService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "template_service").Logger(),
	}
}

func (s *templateService) List(ctx context.Context, actor Actor) ([]dto.TemplateResponse, error) {
	if actor.IsStudent() {
		return nil, ErrForbidden
	}

	templates, err := s.repo.ListByParent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewTemplateResponseSlice(templates), nil
}

func (s *templateService) Create(ctx context.Context, actor Actor, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error) {
	if actor.IsStudent() {
		return dto.TemplateResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.TemplateResponse{}, err
	}

	criteria, err := criteriaFromPayload(payload.Criteria, models.CreatorParent)
	if err != nil {
		return dto.TemplateResponse{}, err
	}

	template := models.AssignmentTemplate{
		ParentID: actor.ID,
		Name:     payload.Name,
		Criteria: datatypes.NewJSONType(criteria),
	}
	if err := s.repo.Create(ctx, &template); err != nil {
		return dto.TemplateResponse{}, err
	}

	s.logger.Info().Uint("template_id", template.ID).Uint("parent_id", actor.ID).Msg("template saved")

	return dto.NewTemplateResponse(template), nil
}
