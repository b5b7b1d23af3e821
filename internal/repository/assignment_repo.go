package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// ErrVersionConflict indicates the row changed since it was read.
var ErrVersionConflict = errors.New("assignment version conflict")

// AssignmentFilter narrows assignment queries. Zero values are ignored.
type AssignmentFilter struct {
	StudentID *uint
	ParentID  *uint
	Subject   string
	Status    *models.AssignmentStatus
}

// AssignmentChanges lists the mutable fields of an assignment. Nil fields are left untouched.
type AssignmentChanges struct {
	Questions     []models.Question
	Status        *models.AssignmentStatus
	Score         *int
	AISuggestion  *string
	ParentComment *string
}

// AssignmentRepository defines persistence operations for generated assignments.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	// Update applies changes only when the stored version equals version and returns the new version.
	Update(ctx context.Context, id uint, version int, changes AssignmentChanges) (int, error)
	Delete(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db, now: time.Now}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}

	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var assignments []models.Assignment
	if err := query.Order("created_at DESC").Order("id DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, id uint, version int, changes AssignmentChanges) (int, error) {
	fields := map[string]interface{}{
		"version":    gorm.Expr("version + 1"),
		"updated_at": r.now(),
	}

	if changes.Questions != nil {
		fields["questions"] = datatypes.JSONSlice[models.Question](changes.Questions)
	}
	if changes.Status != nil {
		fields["status"] = *changes.Status
	}
	if changes.Score != nil {
		fields["score"] = *changes.Score
	}
	if changes.AISuggestion != nil {
		fields["ai_suggestion"] = *changes.AISuggestion
	}
	if changes.ParentComment != nil {
		fields["parent_comment"] = *changes.ParentComment
	}

	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND version = ?", id, version).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, gorm.ErrRecordNotFound
		}
		return 0, ErrVersionConflict
	}

	return version + 1, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
