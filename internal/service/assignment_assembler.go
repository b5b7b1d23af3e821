package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
	"github.com/noah-isme/gema-assignment-hub/pkg/ai"
)

// AssemblyInput identifies who an assignment is for and what was requested.
type AssemblyInput struct {
	Criteria  models.AssignmentCriteria
	StudentID uint
	ParentID  uint
}

// AssignmentAssembler turns a model generation result into a persisted assignment.
type AssignmentAssembler struct {
	repo      repository.AssignmentRepository
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	newID     func() string
}

// NewAssignmentAssembler constructs an assembler writing to repo.
func NewAssignmentAssembler(repo repository.AssignmentRepository, logger zerolog.Logger) *AssignmentAssembler {
	return &AssignmentAssembler{
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "assignment_assembler").Logger(),
		newID:     uuid.NewString,
	}
}

// Assemble validates result against the criteria and stores a Not Started assignment. Results without usable
// questions fail with ErrGenerationFailed and nothing is written.
func (a *AssignmentAssembler) Assemble(ctx context.Context, input AssemblyInput, result ai.GenerationResult) (models.Assignment, error) {
	if result.IsEmpty() {
		return models.Assignment{}, fmt.Errorf("%w: model returned no questions", ErrGenerationFailed)
	}

	questions := a.normalizeQuestions(input.Criteria, result.Questions)
	if len(questions) == 0 {
		return models.Assignment{}, fmt.Errorf("%w: none of the %d generated questions were usable", ErrGenerationFailed, len(result.Questions))
	}

	assignment := models.Assignment{
		StudentID:          input.StudentID,
		ParentID:           input.ParentID,
		AssignmentCriteria: input.Criteria,
		Questions:          questions,
		Status:             models.AssignmentStatusNotStarted,
	}

	if input.Criteria.Purpose.IncludesLesson() {
		explanation := a.scrub(result.Explanation)
		examples := make(datatypes.JSONSlice[models.WorkedExample], 0, len(result.Examples))
		for _, example := range result.Examples {
			problem := a.scrub(example.Problem.String())
			solution := a.scrub(example.Solution.String())
			if problem == "" && solution == "" {
				continue
			}
			examples = append(examples, models.WorkedExample{Problem: problem, Solution: solution})
		}
		assignment.Explanation = &explanation
		assignment.Examples = &examples
	}

	if err := a.repo.Create(ctx, &assignment); err != nil {
		return models.Assignment{}, err
	}

	a.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", assignment.StudentID).
		Int("questions", len(questions)).
		Int("dropped", len(result.Questions)-len(questions)).
		Msg("assignment assembled")

	return assignment, nil
}

func (a *AssignmentAssembler) normalizeQuestions(criteria models.AssignmentCriteria, generated []ai.GeneratedQuestion) []models.Question {
	questions := make([]models.Question, 0, len(generated))
	seen := make(map[string]struct{}, len(generated))

	for index, raw := range generated {
		if criteria.QuestionCount > 0 && len(questions) == criteria.QuestionCount {
			break
		}

		format, ok := a.resolveFormat(criteria, raw.Type.String())
		if !ok {
			a.logger.Debug().Int("index", index).Str("type", raw.Type.String()).Msg("dropping question with unrequested type")
			continue
		}

		question := models.Question{
			ID:            strings.TrimSpace(raw.ID.String()),
			Type:          format,
			Text:          a.scrub(raw.Text.String()),
			CorrectAnswer: a.scrub(raw.CorrectAnswer.String()),
		}
		if question.Text == "" {
			continue
		}

		if question.IsMCQ() {
			for _, option := range raw.Options {
				if cleaned := a.scrub(option.String()); cleaned != "" {
					question.Options = append(question.Options, cleaned)
				}
			}
			if !question.HasValidChoices() {
				a.logger.Debug().Int("index", index).Msg("dropping multiple choice question without a valid answer key")
				continue
			}
		}

		if _, dup := seen[question.ID]; question.ID == "" || dup {
			question.ID = a.newID()
		}
		seen[question.ID] = struct{}{}

		question.StudentAnswer = ""
		question.IsCorrect = nil
		questions = append(questions, question)
	}

	return questions
}

// resolveFormat maps the emitted type onto a requested format. An untyped question is accepted when only
// one format was requested.
func (a *AssignmentAssembler) resolveFormat(criteria models.AssignmentCriteria, raw string) (models.QuestionFormat, bool) {
	if strings.TrimSpace(raw) == "" && len(criteria.Formats) == 1 {
		return criteria.Formats[0], true
	}

	format, ok := models.ParseQuestionFormat(raw)
	if !ok || !criteria.Allows(format) {
		return "", false
	}
	return format, true
}

func (a *AssignmentAssembler) scrub(value string) string {
	return scrubText(a.sanitizer, value)
}

// scrubText removes markup and leaves plain text. Entities escaped by the policy are decoded so that
// expressions such as "2 < 3" survive.
func scrubText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}
