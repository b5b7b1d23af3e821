package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// Roles carried in access tokens.
const (
	RoleParent  = "parent"
	RoleStudent = "student"
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) role() string {
	return strings.ToLower(strings.TrimSpace(a.Role))
}

// IsAdmin reports whether the actor may act on any student.
func (a Actor) IsAdmin() bool {
	role := a.role()
	return role == RoleAdmin || role == RoleTeacher
}

// IsStudent reports whether the actor is a student.
func (a Actor) IsStudent() bool {
	return a.role() == RoleStudent
}

// IsParent reports whether the actor is a parent.
func (a Actor) IsParent() bool {
	return a.role() == RoleParent
}

func (a Actor) canActForStudent(student models.Student) bool {
	switch {
	case a.IsAdmin():
		return true
	case a.IsParent():
		return student.ParentID == a.ID
	case a.IsStudent():
		return student.ID == a.ID
	default:
		return false
	}
}

func (a Actor) canView(assignment models.Assignment) bool {
	switch {
	case a.IsAdmin():
		return true
	case a.IsParent():
		return assignment.ParentID == a.ID
	case a.IsStudent():
		return assignment.StudentID == a.ID
	default:
		return false
	}
}

func (a Actor) canAnswer(assignment models.Assignment) bool {
	return a.IsAdmin() || (a.IsStudent() && assignment.StudentID == a.ID)
}

// canComment also governs deletion: both belong to the parent who owns the assignment.
func (a Actor) canComment(assignment models.Assignment) bool {
	return a.IsAdmin() || (a.IsParent() && assignment.ParentID == a.ID)
}

// revealsAnswers reports whether answer keys may be shown to the actor for the assignment.
func (a Actor) revealsAnswers(assignment models.Assignment) bool {
	return !a.IsStudent() || assignment.IsCompleted()
}

func (a Actor) creator() models.Creator {
	if a.IsStudent() {
		return models.CreatorStudent
	}
	return models.CreatorParent
}

// criteriaFromPayload converts request criteria into the model, accepting loose format spellings.
func criteriaFromPayload(payload dto.CriteriaPayload, createdBy models.Creator) (models.AssignmentCriteria, error) {
	formats := make([]models.QuestionFormat, 0, len(payload.Format))
	seen := make(map[models.QuestionFormat]struct{}, len(payload.Format))
	for _, raw := range payload.Format {
		format, ok := models.ParseQuestionFormat(raw)
		if !ok {
			return models.AssignmentCriteria{}, fmt.Errorf("%w: unsupported question format %q", ErrInvalidInput, raw)
		}
		if _, dup := seen[format]; dup {
			continue
		}
		seen[format] = struct{}{}
		formats = append(formats, format)
	}

	return models.AssignmentCriteria{
		Subject:       strings.TrimSpace(payload.Subject),
		Topics:        strings.TrimSpace(payload.Topics),
		Purpose:       models.Purpose(payload.Purpose),
		Difficulty:    models.Difficulty(payload.Difficulty),
		Formats:       formats,
		QuestionCount: payload.QuestionCount,
		CreatedBy:     createdBy,
	}, nil
}
