package dto

import (
	"time"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// CriteriaPayload describes what kind of assignment to generate.
type CriteriaPayload struct {
	Subject       string   `json:"subject" validate:"required,max=255"`
	Topics        string   `json:"topics" validate:"max=2000"`
	Purpose       string   `json:"purpose" validate:"required,oneof=Practice Pre-Test Revision Challenge Homework"`
	Difficulty    string   `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Format        []string `json:"format" validate:"required,min=1,max=4,dive,required"`
	QuestionCount int      `json:"question_count" validate:"required,min=1,max=50"`
}

// GenerateAssignmentRequest asks for a new assignment for a student.
type GenerateAssignmentRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	CriteriaPayload
}

// AnswerPayload carries a student's answer to one question.
type AnswerPayload struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"max=10000"`
}

// SaveProgressRequest stores answers without grading.
type SaveProgressRequest struct {
	Answers []AnswerPayload `json:"answers" validate:"dive"`
	Version *int            `json:"version" validate:"omitempty,min=1"`
}

// SubmitAssignmentRequest stores the final answers and grades the assignment.
type SubmitAssignmentRequest struct {
	Answers []AnswerPayload `json:"answers" validate:"dive"`
	Version *int            `json:"version" validate:"omitempty,min=1"`
}

// ParentCommentRequest records the parent's note on an assignment.
type ParentCommentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
	Version *int   `json:"version" validate:"omitempty,min=1"`
}

// CriteriaResponse mirrors AssignmentCriteria for API clients.
type CriteriaResponse struct {
	Subject       string   `json:"subject"`
	Topics        string   `json:"topics"`
	Purpose       string   `json:"purpose"`
	Difficulty    string   `json:"difficulty"`
	Format        []string `json:"format"`
	QuestionCount int      `json:"question_count"`
	CreatedBy     string   `json:"created_by,omitempty"`
}

// QuestionResponse is a question as shown to API clients.
type QuestionResponse struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	StudentAnswer string   `json:"student_answer"`
	IsCorrect     *bool    `json:"is_correct"`
}

// ExampleResponse is a worked example.
type ExampleResponse struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

// AssignmentResponse is the serialized representation returned to API clients. Optional fields are
// omitted when absent so clients can rely on their presence.
type AssignmentResponse struct {
	ID            uint               `json:"id"`
	StudentID     uint               `json:"student_id"`
	ParentID      uint               `json:"parent_id"`
	Criteria      CriteriaResponse   `json:"criteria"`
	Status        string             `json:"status"`
	Questions     []QuestionResponse `json:"questions"`
	Explanation   *string            `json:"explanation,omitempty"`
	Examples      *[]ExampleResponse `json:"examples,omitempty"`
	Score         *int               `json:"score,omitempty"`
	AISuggestion  *string            `json:"ai_suggestion,omitempty"`
	ParentComment *string            `json:"parent_comment,omitempty"`
	Version       int                `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewCriteriaResponse converts criteria into a DTO.
func NewCriteriaResponse(criteria models.AssignmentCriteria) CriteriaResponse {
	formats := make([]string, 0, len(criteria.Formats))
	for _, format := range criteria.Formats {
		formats = append(formats, string(format))
	}

	return CriteriaResponse{
		Subject:       criteria.Subject,
		Topics:        criteria.Topics,
		Purpose:       string(criteria.Purpose),
		Difficulty:    string(criteria.Difficulty),
		Format:        formats,
		QuestionCount: criteria.QuestionCount,
		CreatedBy:     string(criteria.CreatedBy),
	}
}

// NewAssignmentResponse converts a model into a DTO. Answer keys are hidden unless revealAnswers is set.
func NewAssignmentResponse(model models.Assignment, revealAnswers bool) AssignmentResponse {
	questions := make([]QuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		item := QuestionResponse{
			ID:            question.ID,
			Type:          string(question.Type),
			Text:          question.Text,
			Options:       question.Options,
			StudentAnswer: question.StudentAnswer,
			IsCorrect:     question.IsCorrect,
		}
		if revealAnswers {
			item.CorrectAnswer = question.CorrectAnswer
		}
		questions = append(questions, item)
	}

	response := AssignmentResponse{
		ID:            model.ID,
		StudentID:     model.StudentID,
		ParentID:      model.ParentID,
		Criteria:      NewCriteriaResponse(model.AssignmentCriteria),
		Status:        string(model.Status),
		Questions:     questions,
		Explanation:   model.Explanation,
		Score:         model.Score,
		AISuggestion:  model.AISuggestion,
		ParentComment: model.ParentComment,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	if model.Examples != nil {
		examples := make([]ExampleResponse, 0, len(*model.Examples))
		for _, example := range *model.Examples {
			examples = append(examples, ExampleResponse{Problem: example.Problem, Solution: example.Solution})
		}
		response.Examples = &examples
	}

	return response
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, revealAnswers bool) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, revealAnswers || assignment.IsCompleted()))
	}

	return responses
}
