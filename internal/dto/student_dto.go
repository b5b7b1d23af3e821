package dto

import (
	"time"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// StudentCreateRequest registers a learner profile under the calling parent. ParentID is only honoured
// for admins acting on behalf of a parent.
type StudentCreateRequest struct {
	ParentID       uint     `json:"parent_id"`
	FirstName      string   `json:"first_name" validate:"required,max=128"`
	LastName       string   `json:"last_name" validate:"max=128"`
	Email          string   `json:"email" validate:"omitempty,email,max=255"`
	Grade          string   `json:"grade" validate:"required,max=64"`
	Strengths      []string `json:"strengths" validate:"max=20,dive,required,max=120"`
	Weaknesses     []string `json:"weaknesses" validate:"max=20,dive,required,max=120"`
	LearningStyles []string `json:"learning_styles" validate:"max=10,dive,required,max=120"`
}

// StudentUpdateRequest patches a learner profile. Nil fields are left untouched.
type StudentUpdateRequest struct {
	FirstName      *string  `json:"first_name" validate:"omitempty,min=1,max=128"`
	LastName       *string  `json:"last_name" validate:"omitempty,max=128"`
	Email          *string  `json:"email" validate:"omitempty,email,max=255"`
	Grade          *string  `json:"grade" validate:"omitempty,min=1,max=64"`
	Strengths      []string `json:"strengths" validate:"omitempty,max=20,dive,required,max=120"`
	Weaknesses     []string `json:"weaknesses" validate:"omitempty,max=20,dive,required,max=120"`
	LearningStyles []string `json:"learning_styles" validate:"omitempty,max=10,dive,required,max=120"`
}

// StudentListRequest carries listing filters.
type StudentListRequest struct {
	Search   string
	Grade    string
	Page     int
	PageSize int
}

// StudentResponse is a learner profile as shown to API clients.
type StudentResponse struct {
	ID             uint      `json:"id"`
	ParentID       uint      `json:"parent_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email,omitempty"`
	Grade          string    `json:"grade"`
	Strengths      []string  `json:"strengths"`
	Weaknesses     []string  `json:"weaknesses"`
	LearningStyles []string  `json:"learning_styles"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StudentListResponse wraps a page of profiles.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:             student.ID,
		ParentID:       student.ParentID,
		FirstName:      student.FirstName,
		LastName:       student.LastName,
		Email:          student.Email,
		Grade:          student.Grade,
		Strengths:      nonNilStrings(student.Strengths),
		Weaknesses:     nonNilStrings(student.Weaknesses),
		LearningStyles: nonNilStrings(student.LearningStyles),
		CreatedAt:      student.CreatedAt,
		UpdatedAt:      student.UpdatedAt,
	}
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// StudentProgressResponse aggregates a learner's assignment history.
type StudentProgressResponse struct {
	StudentID         uint                 `json:"student_id"`
	Summary           ProgressSummary      `json:"summary"`
	Subjects          []SubjectProgress    `json:"subjects"`
	Pending           []AssignmentProgress `json:"pending_assignments"`
	RecentlyCompleted []CompletedActivity  `json:"recently_completed"`
}

// ProgressSummary captures aggregated statistics for the progress view.
type ProgressSummary struct {
	TotalAssignments int     `json:"total_assignments"`
	NotStarted       int     `json:"not_started"`
	InProgress       int     `json:"in_progress"`
	Completed        int     `json:"completed"`
	AverageScore     float64 `json:"average_score"`
	CompletionRate   float64 `json:"completion_rate"`
}

// SubjectProgress breaks completion down per subject.
type SubjectProgress struct {
	Subject      string  `json:"subject"`
	Assignments  int     `json:"assignments"`
	Completed    int     `json:"completed"`
	AverageScore float64 `json:"average_score"`
}

// AssignmentProgress describes an assignment that still awaits the student.
type AssignmentProgress struct {
	AssignmentID uint      `json:"assignment_id"`
	Subject      string    `json:"subject"`
	Topics       string    `json:"topics"`
	Purpose      string    `json:"purpose"`
	Status       string    `json:"status"`
	Answered     int       `json:"answered"`
	Questions    int       `json:"questions"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompletedActivity details a graded assignment.
type CompletedActivity struct {
	AssignmentID uint      `json:"assignment_id"`
	Subject      string    `json:"subject"`
	Topics       string    `json:"topics"`
	Score        int       `json:"score"`
	AISuggestion string    `json:"ai_suggestion"`
	CompletedAt  time.Time `json:"completed_at"`
}
