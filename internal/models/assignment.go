package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssignmentStatus tracks an assignment's lifecycle. Transitions only move forward.
type AssignmentStatus string

const (
	AssignmentStatusNotStarted AssignmentStatus = "Not Started"
	AssignmentStatusInProgress AssignmentStatus = "In Progress"
	AssignmentStatusCompleted  AssignmentStatus = "Completed"
)

func (s AssignmentStatus) rank() int {
	switch s {
	case AssignmentStatusNotStarted:
		return 0
	case AssignmentStatusInProgress:
		return 1
	case AssignmentStatusCompleted:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from s to next keeps the lifecycle monotonic.
func (s AssignmentStatus) CanAdvanceTo(next AssignmentStatus) bool {
	if next.rank() < 0 || s.rank() < 0 {
		return false
	}
	return next.rank() >= s.rank()
}

// WorkedExample is a solved problem shown alongside the explanation.
type WorkedExample struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

// Assignment is a generated unit of work owned by a student and their parent.
type Assignment struct {
	ID                 uint                                `gorm:"primaryKey" json:"id"`
	StudentID          uint                                `gorm:"not null;index:idx_assignment_history,priority:1" json:"student_id"`
	ParentID           uint                                `gorm:"not null;index" json:"parent_id"`
	AssignmentCriteria `gorm:"embedded"`
	Questions          datatypes.JSONSlice[Question]       `gorm:"not null" json:"questions"`
	Status             AssignmentStatus                    `gorm:"size:16;not null" json:"status"`
	Explanation        *string                             `gorm:"type:text" json:"explanation,omitempty"`
	Examples           *datatypes.JSONSlice[WorkedExample] `json:"examples,omitempty"`
	Score              *int                                `json:"score,omitempty"`
	AISuggestion       *string                             `gorm:"type:text" json:"ai_suggestion,omitempty"`
	ParentComment      *string                             `gorm:"type:text" json:"parent_comment,omitempty"`
	Version            int                                 `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time                           `json:"created_at"`
	UpdatedAt          time.Time                           `json:"updated_at"`
}

// IsCompleted reports whether the assignment has been graded.
func (a Assignment) IsCompleted() bool {
	return a.Status == AssignmentStatusCompleted
}

// QuestionTexts returns the prompt text of every question in order.
func (a Assignment) QuestionTexts() []string {
	texts := make([]string, 0, len(a.Questions))
	for _, question := range a.Questions {
		texts = append(texts, question.Text)
	}
	return texts
}
