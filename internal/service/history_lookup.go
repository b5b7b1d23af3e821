package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignment-hub/internal/repository"
)

// HistoryLookup collects the question texts a student has already seen in a subject.
type HistoryLookup struct {
	assignments repository.AssignmentRepository
	logger      zerolog.Logger
}

// NewHistoryLookup constructs a history lookup over the assignment store.
func NewHistoryLookup(assignments repository.AssignmentRepository, logger zerolog.Logger) *HistoryLookup {
	return &HistoryLookup{
		assignments: assignments,
		logger:      logger.With().Str("component", "history_lookup").Logger(),
	}
}

// PriorQuestions returns the question texts of every stored assignment for the student and subject.
// Store failures are logged and yield an empty history.
func (h *HistoryLookup) PriorQuestions(ctx context.Context, studentID uint, subject string) []string {
	assignments, err := h.assignments.List(ctx, repository.AssignmentFilter{
		StudentID: &studentID,
		Subject:   subject,
	})
	if err != nil {
		h.logger.Warn().Err(err).Uint("student_id", studentID).Str("subject", subject).Msg("history lookup failed, continuing without history")
		return []string{}
	}

	texts := make([]string, 0)
	for _, assignment := range assignments {
		for _, text := range assignment.QuestionTexts() {
			if text != "" {
				texts = append(texts, text)
			}
		}
	}

	return texts
}
