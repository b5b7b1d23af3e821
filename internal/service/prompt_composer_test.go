package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

func baseCriteria(purpose models.Purpose) models.AssignmentCriteria {
	return models.AssignmentCriteria{
		Subject:       "Math",
		Topics:        "Fractions",
		Purpose:       purpose,
		Difficulty:    models.DifficultyMedium,
		Formats:       []models.QuestionFormat{models.FormatMCQ, models.FormatShortAnswer},
		QuestionCount: 5,
		CreatedBy:     models.CreatorParent,
	}
}

func TestBuildAssignmentPromptSegmentOrder(t *testing.T) {
	prompt := BuildAssignmentPrompt(sampleStudent(), baseCriteria(models.PurposePractice), []string{"What is 1/2 + 1/4?"})

	profile := strings.Index(prompt, "The student is in 5th Grade")
	details := strings.Index(prompt, "Subject: Math. Topics: Fractions. Purpose: Practice. Difficulty: Medium. Number of questions: 5.")
	formats := strings.Index(prompt, "following question types: MCQ, Short Answer")
	history := strings.Index(prompt, "Do not repeat any of the following questions")

	require.True(t, profile >= 0 && details > profile && formats > details && history > formats, prompt)
	require.Contains(t, prompt, `"options" array and a "correctAnswer" key`)
	require.Contains(t, prompt, `["What is 1/2 + 1/4?"]`)
}

func TestBuildAssignmentPromptDefaultsMissingProfile(t *testing.T) {
	prompt := BuildAssignmentPrompt(models.Student{ID: 3}, baseCriteria(models.PurposeChallenge), nil)

	require.Contains(t, prompt, "The student is in N/A. Strengths: N/A. Weaknesses: N/A. Learning Styles: N/A.")
}

func TestBuildAssignmentPromptHistoryByPurpose(t *testing.T) {
	history := []string{"Name a prime number."}

	revision := BuildAssignmentPrompt(sampleStudent(), baseCriteria(models.PurposeRevision), history)
	require.Contains(t, revision, "Rephrase or present the following past questions")
	require.NotContains(t, revision, "Do not repeat any of the following questions")

	homework := BuildAssignmentPrompt(sampleStudent(), baseCriteria(models.PurposeHomework), history)
	require.Contains(t, homework, "Do not repeat any of the following questions")
	require.NotContains(t, homework, "Rephrase")

	fresh := BuildAssignmentPrompt(sampleStudent(), baseCriteria(models.PurposeRevision), nil)
	require.NotContains(t, fresh, "past questions")
	require.NotContains(t, fresh, "Do not repeat")
}

func TestBuildAssignmentPromptLessonRequestFollowsPurpose(t *testing.T) {
	for _, purpose := range []models.Purpose{models.PurposePractice, models.PurposeRevision, models.PurposePreTest} {
		prompt := BuildAssignmentPrompt(sampleStudent(), baseCriteria(purpose), nil)
		require.Contains(t, prompt, `"explanation"`, purpose)
		require.Contains(t, prompt, "three keys", purpose)
	}

	for _, purpose := range []models.Purpose{models.PurposeChallenge, models.PurposeHomework} {
		prompt := BuildAssignmentPrompt(sampleStudent(), baseCriteria(purpose), nil)
		require.NotContains(t, prompt, `"explanation"`, purpose)
		require.Contains(t, prompt, `single key "questions"`, purpose)
	}
}

func TestPromptComposerUsesSubjectHistory(t *testing.T) {
	store := newFakeAssignmentStore()
	student := sampleStudent()

	math := sampleStoredAssignment(student, "Math", "What is 3 x 4?")
	science := sampleStoredAssignment(student, "Science", "What is photosynthesis?")
	require.NoError(t, store.Create(context.Background(), &math))
	require.NoError(t, store.Create(context.Background(), &science))

	composer := NewPromptComposer(NewHistoryLookup(store, testLogger()))
	prompt := composer.Compose(context.Background(), student, baseCriteria(models.PurposeHomework))

	require.Contains(t, prompt, "What is 3 x 4?")
	require.NotContains(t, prompt, "photosynthesis")
}

func TestHistoryLookupSwallowsStoreErrors(t *testing.T) {
	store := newFakeAssignmentStore()
	store.listErr = errors.New("connection refused")

	lookup := NewHistoryLookup(store, testLogger())
	history := lookup.PriorQuestions(context.Background(), 1, "Math")

	require.NotNil(t, history)
	require.Empty(t, history)
}

func sampleStoredAssignment(student models.Student, subject string, texts ...string) models.Assignment {
	questions := make([]models.Question, 0, len(texts))
	for i, text := range texts {
		questions = append(questions, models.Question{ID: string(rune('a' + i)), Type: models.FormatShortAnswer, Text: text})
	}
	criteria := baseCriteria(models.PurposeHomework)
	criteria.Subject = subject
	return models.Assignment{
		StudentID:          student.ID,
		ParentID:           student.ParentID,
		AssignmentCriteria: criteria,
		Questions:          questions,
		Status:             models.AssignmentStatusNotStarted,
	}
}
