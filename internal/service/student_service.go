package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
)

// StudentService manages the learner profiles that prompts are built from.
type StudentService interface {
	List(ctx context.Context, actor Actor, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.StudentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type studentService struct {
	repo      repository.StudentRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewStudentService constructs the student profile service.
func NewStudentService(repo repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	if validate == nil {
		validate = validator.New()
	}
	return &studentService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, actor Actor, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	filter := repository.StudentFilter{
		Search:   strings.TrimSpace(req.Search),
		Grade:    strings.TrimSpace(req.Grade),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	switch {
	case actor.IsAdmin():
	case actor.IsParent():
		parentID := actor.ID
		filter.ParentID = &parentID
	default:
		return dto.StudentListResponse{}, ErrForbidden
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: 1,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	}

	return dto.StudentListResponse{Items: items, Pagination: pagination}, nil
}

func (s *studentService) Get(ctx context.Context, actor Actor, id uint) (dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if !actor.canActForStudent(student) {
		return dto.StudentResponse{}, ErrForbidden
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Create(ctx context.Context, actor Actor, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	var parentID uint
	switch {
	case actor.IsParent():
		parentID = actor.ID
	case actor.IsAdmin():
		if payload.ParentID == 0 {
			return dto.StudentResponse{}, fmt.Errorf("%w: parent_id is required", ErrInvalidInput)
		}
		parentID = payload.ParentID
	default:
		return dto.StudentResponse{}, ErrForbidden
	}

	student := models.Student{
		ParentID:       parentID,
		FirstName:      scrubText(s.sanitizer, payload.FirstName),
		LastName:       scrubText(s.sanitizer, payload.LastName),
		Email:          strings.ToLower(strings.TrimSpace(payload.Email)),
		Grade:          scrubText(s.sanitizer, payload.Grade),
		Strengths:      s.cleanList(payload.Strengths),
		Weaknesses:     s.cleanList(payload.Weaknesses),
		LearningStyles: s.cleanList(payload.LearningStyles),
	}
	if student.FirstName == "" || student.Grade == "" {
		return dto.StudentResponse{}, fmt.Errorf("%w: first name and grade must contain text", ErrInvalidInput)
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("parent_id", parentID).Msg("student profile created")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, actor Actor, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.FirstName != nil {
		name := scrubText(s.sanitizer, *payload.FirstName)
		if name == "" {
			return dto.StudentResponse{}, fmt.Errorf("%w: first name must contain text", ErrInvalidInput)
		}
		updates["first_name"] = name
	}
	if payload.LastName != nil {
		updates["last_name"] = scrubText(s.sanitizer, *payload.LastName)
	}
	if payload.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.Grade != nil {
		grade := scrubText(s.sanitizer, *payload.Grade)
		if grade == "" {
			return dto.StudentResponse{}, fmt.Errorf("%w: grade must contain text", ErrInvalidInput)
		}
		updates["grade"] = grade
	}
	if payload.Strengths != nil {
		updates["strengths"] = s.cleanList(payload.Strengths)
	}
	if payload.Weaknesses != nil {
		updates["weaknesses"] = s.cleanList(payload.Weaknesses)
	}
	if payload.LearningStyles != nil {
		updates["learning_styles"] = s.cleanList(payload.LearningStyles)
	}

	if len(updates) == 0 {
		return dto.NewStudentResponse(student), nil
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(updated), nil
}

func (s *studentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.loadManaged(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	s.logger.Info().Uint("student_id", id).Uint("actor_id", actor.ID).Msg("student profile deleted")
	return nil
}

func (s *studentService) load(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

// loadManaged loads a profile the actor may edit: their own child, or any child for admins.
func (s *studentService) loadManaged(ctx context.Context, actor Actor, id uint) (models.Student, error) {
	if actor.IsStudent() {
		return models.Student{}, ErrForbidden
	}
	student, err := s.load(ctx, id)
	if err != nil {
		return models.Student{}, err
	}
	if !actor.canActForStudent(student) {
		return models.Student{}, ErrForbidden
	}
	return student, nil
}

// cleanList scrubs entries and drops blanks and case-insensitive duplicates.
func (s *studentService) cleanList(values []string) datatypes.JSONSlice[string] {
	cleaned := make(datatypes.JSONSlice[string], 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		item := scrubText(s.sanitizer, value)
		key := strings.ToLower(item)
		if item == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, item)
	}
	return cleaned
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
