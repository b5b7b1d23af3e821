package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// TemplateRepository stores reusable assignment criteria.
type TemplateRepository interface {
	ListByParent(ctx context.Context, parentID uint) ([]models.AssignmentTemplate, error)
	Create(ctx context.Context, template *models.AssignmentTemplate) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository constructs a template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) ListByParent(ctx context.Context, parentID uint) ([]models.AssignmentTemplate, error) {
	var templates []models.AssignmentTemplate
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, template *models.AssignmentTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}
