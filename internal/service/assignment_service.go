package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/observability"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
	"github.com/noah-isme/gema-assignment-hub/pkg/ai"
)

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	Generate(ctx context.Context, actor Actor, payload dto.GenerateAssignmentRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context, actor Actor, studentID uint) ([]dto.AssignmentResponse, error)
	SaveProgress(ctx context.Context, actor Actor, id uint, payload dto.SaveProgressRequest) (dto.AssignmentResponse, error)
	Submit(ctx context.Context, actor Actor, id uint, payload dto.SubmitAssignmentRequest) (dto.AssignmentResponse, error)
	Comment(ctx context.Context, actor Actor, id uint, payload dto.ParentCommentRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

// AssignmentDependencies groups the collaborators of the assignment service.
type AssignmentDependencies struct {
	Assignments repository.AssignmentRepository
	Students    repository.StudentRepository
	Generator   ai.TextGenerator
	Composer    *PromptComposer
	Assembler   *AssignmentAssembler
	Grader      Grader
	Feedback    *FeedbackRequester
	Events      EventPublisher
	Validator   *validator.Validate
	Tracer      trace.Tracer
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	generator   ai.TextGenerator
	composer    *PromptComposer
	assembler   *AssignmentAssembler
	grader      Grader
	feedback    *FeedbackRequester
	events      EventPublisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewAssignmentService builds a new assignment service. Missing composer, assembler or feedback
// collaborators are built from the repositories and generator.
func NewAssignmentService(deps AssignmentDependencies, logger zerolog.Logger) AssignmentService {
	composer := deps.Composer
	if composer == nil {
		composer = NewPromptComposer(NewHistoryLookup(deps.Assignments, logger))
	}
	assembler := deps.Assembler
	if assembler == nil {
		assembler = NewAssignmentAssembler(deps.Assignments, logger)
	}
	feedback := deps.Feedback
	if feedback == nil {
		feedback = NewFeedbackRequester(deps.Generator, 0, logger)
	}
	events := deps.Events
	if events == nil {
		events = noopPublisher{}
	}
	validate := deps.Validator
	if validate == nil {
		validate = validator.New()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/noah-isme/gema-assignment-hub/internal/service/assignment")
	}

	return &assignmentService{
		assignments: deps.Assignments,
		students:    deps.Students,
		generator:   deps.Generator,
		composer:    composer,
		assembler:   assembler,
		grader:      deps.Grader,
		feedback:    feedback,
		events:      events,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      tracer,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Generate(ctx context.Context, actor Actor, payload dto.GenerateAssignmentRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	criteria, err := criteriaFromPayload(payload.CriteriaPayload, actor.creator())
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	student, err := s.loadStudent(ctx, payload.StudentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !actor.canActForStudent(student) {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	spanCtx, span := s.tracer.Start(ctx, "assignments.generate", trace.WithAttributes(
		attribute.Int64("student.id", int64(student.ID)),
		attribute.String("assignment.subject", criteria.Subject),
		attribute.String("assignment.purpose", string(criteria.Purpose)),
		attribute.Int("assignment.question_count", criteria.QuestionCount),
	))
	defer span.End()

	prompt := s.composer.Compose(spanCtx, student, criteria)

	text, err := s.generator.GenerateText(spanCtx, prompt)
	if err != nil {
		s.recordGeneration(span, "model_error", criteria.Purpose, err)
		s.logger.Error().Err(err).Uint("student_id", student.ID).Msg("model call failed")
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	extraction := ai.Sanitize(text)
	if !extraction.Parsed() {
		observability.SanitizerFallbacks().WithLabelValues("assignment").Inc()
		s.logger.Warn().Err(extraction.Err).Uint("student_id", student.ID).Msg("model output could not be parsed")
	}

	if err := spanCtx.Err(); err != nil {
		s.recordGeneration(span, "cancelled", criteria.Purpose, err)
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assembler.Assemble(spanCtx, AssemblyInput{
		Criteria:  criteria,
		StudentID: student.ID,
		ParentID:  student.ParentID,
	}, extraction.Result)
	if err != nil {
		outcome := "store_error"
		if errors.Is(err, ErrGenerationFailed) {
			outcome = "empty"
		}
		s.recordGeneration(span, outcome, criteria.Purpose, err)
		return dto.AssignmentResponse{}, err
	}

	s.recordGeneration(span, "success", criteria.Purpose, nil)
	s.events.Publish(spanCtx, EventAssignmentCreated, assignment)

	return dto.NewAssignmentResponse(assignment, actor.revealsAnswers(assignment)), nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !actor.canView(assignment) {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	return dto.NewAssignmentResponse(assignment, actor.revealsAnswers(assignment)), nil
}

func (s *assignmentService) List(ctx context.Context, actor Actor, studentID uint) ([]dto.AssignmentResponse, error) {
	if studentID == 0 && actor.IsStudent() {
		studentID = actor.ID
	}
	if studentID == 0 {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidInput)
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !actor.canActForStudent(student) {
		return nil, ErrForbidden
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{StudentID: &student.ID})
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, !actor.IsStudent()), nil
}

func (s *assignmentService) SaveProgress(ctx context.Context, actor Actor, id uint, payload dto.SaveProgressRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadForAnswering(ctx, actor, id, payload.Version)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	questions, err := applyAnswers(assignment.Questions, payload.Answers)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	changes := repository.AssignmentChanges{Questions: questions}
	if assignment.Status == models.AssignmentStatusNotStarted {
		status := models.AssignmentStatusInProgress
		changes.Status = &status
	}

	version, err := s.update(ctx, assignment, changes)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Questions = questions
	if changes.Status != nil {
		assignment.Status = *changes.Status
	}
	assignment.Version = version

	s.events.Publish(ctx, EventAssignmentProgressed, assignment)
	s.logger.Info().Uint("assignment_id", assignment.ID).Str("status", string(assignment.Status)).Msg("progress saved")

	return dto.NewAssignmentResponse(assignment, actor.revealsAnswers(assignment)), nil
}

func (s *assignmentService) Submit(ctx context.Context, actor Actor, id uint, payload dto.SubmitAssignmentRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadForAnswering(ctx, actor, id, payload.Version)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "assignments.grade", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignment.ID)),
		attribute.Int("assignment.questions", len(assignment.Questions)),
	))
	defer span.End()

	answered, err := applyAnswers(assignment.Questions, payload.Answers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown question")
		return dto.AssignmentResponse{}, err
	}

	graded, score := s.grader.Grade(answered)

	topic := assignment.Topics
	if strings.TrimSpace(topic) == "" {
		topic = assignment.Subject
	}
	suggestion := s.feedback.Suggest(spanCtx, topic, score, graded)

	status := models.AssignmentStatusCompleted
	version, err := s.update(spanCtx, assignment, repository.AssignmentChanges{
		Questions:    graded,
		Status:       &status,
		Score:        &score,
		AISuggestion: &suggestion,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store update failed")
		return dto.AssignmentResponse{}, err
	}

	assignment.Questions = graded
	assignment.Status = status
	assignment.Score = &score
	assignment.AISuggestion = &suggestion
	assignment.Version = version

	span.SetAttributes(attribute.Int("assignment.score", score))
	observability.Gradings().WithLabelValues(string(assignment.Purpose)).Inc()
	observability.GradingScores().Observe(float64(score))
	s.events.Publish(spanCtx, EventAssignmentCompleted, assignment)

	s.logger.Info().Uint("assignment_id", assignment.ID).Int("score", score).Msg("assignment graded")

	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) Comment(ctx context.Context, actor Actor, id uint, payload dto.ParentCommentRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !actor.canComment(assignment) {
		return dto.AssignmentResponse{}, ErrForbidden
	}
	if payload.Version != nil && *payload.Version != assignment.Version {
		return dto.AssignmentResponse{}, ErrAssignmentConflict
	}

	comment := scrubText(s.sanitizer, payload.Comment)
	if comment == "" {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: comment is empty after sanitization", ErrInvalidInput)
	}

	version, err := s.update(ctx, assignment, repository.AssignmentChanges{ParentComment: &comment})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.ParentComment = &comment
	assignment.Version = version

	return dto.NewAssignmentResponse(assignment, actor.revealsAnswers(assignment)), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canComment(assignment) {
		return ErrForbidden
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.events.Publish(ctx, EventAssignmentDeleted, assignment)
	s.logger.Info().Uint("assignment_id", id).Uint("actor_id", actor.ID).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) loadForAnswering(ctx context.Context, actor Actor, id uint, expectedVersion *int) (models.Assignment, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if !actor.canAnswer(assignment) {
		return models.Assignment{}, ErrForbidden
	}
	if assignment.IsCompleted() {
		return models.Assignment{}, ErrAssignmentCompleted
	}
	if expectedVersion != nil && *expectedVersion != assignment.Version {
		return models.Assignment{}, ErrAssignmentConflict
	}
	return assignment, nil
}

func (s *assignmentService) update(ctx context.Context, assignment models.Assignment, changes repository.AssignmentChanges) (int, error) {
	version, err := s.assignments.Update(ctx, assignment.ID, assignment.Version, changes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			s.logger.Warn().Uint("assignment_id", assignment.ID).Int("version", assignment.Version).Msg("concurrent assignment update rejected")
			return 0, ErrAssignmentConflict
		case errors.Is(err, gorm.ErrRecordNotFound):
			return 0, ErrAssignmentNotFound
		default:
			return 0, err
		}
	}
	return version, nil
}

func (s *assignmentService) loadAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *assignmentService) loadStudent(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *assignmentService) recordGeneration(span trace.Span, outcome string, purpose models.Purpose, err error) {
	observability.Generations().WithLabelValues(outcome, string(purpose)).Inc()
	span.SetAttributes(attribute.String("assignment.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
}

// applyAnswers returns a copy of questions with the given answers recorded. Questions without an
// answer in the payload keep their stored answer.
func applyAnswers(questions []models.Question, answers []dto.AnswerPayload) ([]models.Question, error) {
	updated := make([]models.Question, len(questions))
	copy(updated, questions)

	index := make(map[string]int, len(updated))
	for i, question := range updated {
		index[question.ID] = i
	}

	for _, answer := range answers {
		position, ok := index[answer.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, answer.QuestionID)
		}
		updated[position].StudentAnswer = answer.Answer
	}

	return updated, nil
}
