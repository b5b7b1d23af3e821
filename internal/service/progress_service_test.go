package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

func progressAssignment(subject string, status models.AssignmentStatus, score *int, answers ...string) models.Assignment {
	questions := make([]models.Question, 0, 3)
	for i := 0; i < 3; i++ {
		question := models.Question{ID: string(rune('a' + i)), Type: models.FormatShortAnswer, Text: "Question"}
		if i < len(answers) {
			question.StudentAnswer = answers[i]
		}
		questions = append(questions, question)
	}

	return models.Assignment{
		StudentID: 11,
		ParentID:  7,
		AssignmentCriteria: models.AssignmentCriteria{
			Subject:       subject,
			Topics:        subject + " basics",
			Purpose:       models.PurposeHomework,
			Difficulty:    models.DifficultyEasy,
			Formats:       []models.QuestionFormat{models.FormatShortAnswer},
			QuestionCount: 3,
		},
		Questions: questions,
		Status:    status,
		Score:     score,
	}
}

func intPtr(value int) *int { return &value }

func TestBuildProgressAggregates(t *testing.T) {
	suggestion := "Practise long division."
	completedMath := progressAssignment("Math", models.AssignmentStatusCompleted, intPtr(80))
	completedMath.ID = 4
	completedMath.AISuggestion = &suggestion
	completedMath.UpdatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	olderMath := progressAssignment("math ", models.AssignmentStatusCompleted, intPtr(45))
	olderMath.ID = 3
	inProgress := progressAssignment("Science", models.AssignmentStatusInProgress, nil, "Photosynthesis", "")
	inProgress.ID = 2
	fresh := progressAssignment("Science", models.AssignmentStatusNotStarted, nil)
	fresh.ID = 1

	report := buildProgress(11, []models.Assignment{completedMath, olderMath, inProgress, fresh})

	require.Equal(t, uint(11), report.StudentID)
	require.Equal(t, 4, report.Summary.TotalAssignments)
	require.Equal(t, 2, report.Summary.Completed)
	require.Equal(t, 1, report.Summary.InProgress)
	require.Equal(t, 1, report.Summary.NotStarted)
	require.Equal(t, 62.5, report.Summary.AverageScore)
	require.Equal(t, 50.0, report.Summary.CompletionRate)

	require.Len(t, report.Subjects, 2)
	require.Equal(t, "Math", report.Subjects[0].Subject, "subjects merge case-insensitively under the newest spelling")
	require.Equal(t, 2, report.Subjects[0].Completed)
	require.Equal(t, 62.5, report.Subjects[0].AverageScore)
	require.Equal(t, "Science", report.Subjects[1].Subject)
	require.Zero(t, report.Subjects[1].AverageScore)

	require.Len(t, report.Pending, 2)
	require.Equal(t, uint(2), report.Pending[0].AssignmentID)
	require.Equal(t, 1, report.Pending[0].Answered)
	require.Equal(t, 3, report.Pending[0].Questions)

	require.Len(t, report.RecentlyCompleted, 2)
	require.Equal(t, uint(4), report.RecentlyCompleted[0].AssignmentID)
	require.Equal(t, 80, report.RecentlyCompleted[0].Score)
	require.Equal(t, suggestion, report.RecentlyCompleted[0].AISuggestion)
	require.Equal(t, completedMath.UpdatedAt, report.RecentlyCompleted[0].CompletedAt)
}

func TestBuildProgressEmpty(t *testing.T) {
	report := buildProgress(11, nil)
	require.Zero(t, report.Summary.TotalAssignments)
	require.Zero(t, report.Summary.CompletionRate)
	require.Empty(t, report.Subjects)
	require.NotNil(t, report.Pending)
	require.NotNil(t, report.RecentlyCompleted)
}

func TestProgressServiceCachesUntilAssignmentEvent(t *testing.T) {
	_, client := newTestRedis(t)
	assignments := newFakeAssignmentStore()
	students := newFakeStudentStore(sampleStudent())
	svc := NewProgressService(assignments, students, client, time.Hour, testLogger())
	ctx := context.Background()

	first := progressAssignment("Math", models.AssignmentStatusNotStarted, nil)
	require.NoError(t, assignments.Create(ctx, &first))

	report, cached, err := svc.GetProgress(ctx, parent(), 11)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 1, report.Summary.TotalAssignments)

	second := progressAssignment("Math", models.AssignmentStatusNotStarted, nil)
	require.NoError(t, assignments.Create(ctx, &second))

	report, cached, err = svc.GetProgress(ctx, learner(), 0)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, 1, report.Summary.TotalAssignments)

	ChainPublishers(nil, svc).Publish(ctx, EventAssignmentCreated, second)

	report, cached, err = svc.GetProgress(ctx, parent(), 11)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 2, report.Summary.TotalAssignments)
}

func TestProgressServiceAccessAndErrors(t *testing.T) {
	assignments := newFakeAssignmentStore()
	svc := NewProgressService(assignments, newFakeStudentStore(sampleStudent()), nil, 0, testLogger())
	ctx := context.Background()

	_, _, err := svc.GetProgress(ctx, Actor{ID: 8, Role: RoleParent}, 11)
	require.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.GetProgress(ctx, parent(), 404)
	require.ErrorIs(t, err, ErrStudentNotFound)

	assignments.listErr = errors.New("store offline")
	_, _, err = svc.GetProgress(ctx, parent(), 11)
	require.EqualError(t, err, "store offline")

	svc.Publish(ctx, EventAssignmentDeleted, models.Assignment{StudentID: 11})
}
