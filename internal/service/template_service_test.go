package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

type memoryTemplateStore struct {
	items  []models.AssignmentTemplate
	nextID uint
}

func (m *memoryTemplateStore) ListByParent(_ context.Context, parentID uint) ([]models.AssignmentTemplate, error) {
	results := make([]models.AssignmentTemplate, 0)
	for _, item := range m.items {
		if item.ParentID == parentID {
			results = append(results, item)
		}
	}
	return results, nil
}

func (m *memoryTemplateStore) Create(_ context.Context, template *models.AssignmentTemplate) error {
	m.nextID++
	template.ID = m.nextID
	m.items = append(m.items, *template)
	return nil
}

func TestTemplateServiceCreateAndList(t *testing.T) {
	store := &memoryTemplateStore{}
	svc := NewTemplateService(store, validator.New(), testLogger())

	created, err := svc.Create(context.Background(), parent(), dto.TemplateCreateRequest{
		Name: "Weekly fractions",
		Criteria: dto.CriteriaPayload{
			Subject:       "Math",
			Topics:        "Fractions",
			Purpose:       "Practice",
			Difficulty:    "Medium",
			Format:        []string{"mcq", "Fill in the Blank", "MCQ"},
			QuestionCount: 10,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Weekly fractions", created.Name)
	require.Equal(t, []string{"MCQ", "Fill-in-the-Blank"}, created.Criteria.Format)

	templates, err := svc.List(context.Background(), parent())
	require.NoError(t, err)
	require.Len(t, templates, 1)

	others, err := svc.List(context.Background(), Actor{ID: 8, Role: RoleParent})
	require.NoError(t, err)
	require.Empty(t, others)

	_, err = svc.List(context.Background(), learner())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestTemplateServiceValidates(t *testing.T) {
	svc := NewTemplateService(&memoryTemplateStore{}, validator.New(), testLogger())

	_, err := svc.Create(context.Background(), parent(), dto.TemplateCreateRequest{Name: "x"})
	require.Error(t, err)
}
