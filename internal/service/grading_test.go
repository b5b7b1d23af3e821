package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

func mcq(id, answer, given string) models.Question {
	return models.Question{
		ID:            id,
		Type:          models.FormatMCQ,
		Text:          "Question " + id,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: answer,
		StudentAnswer: given,
	}
}

func TestGradeQuestionsScores(t *testing.T) {
	cases := []struct {
		name      string
		questions []models.Question
		expected  int
	}{
		{name: "seven of ten", questions: mcqBatch(10, 7), expected: 70},
		{name: "one of three rounds down", questions: mcqBatch(3, 1), expected: 33},
		{name: "two of three rounds up", questions: mcqBatch(3, 2), expected: 67},
		{
			name: "ungraded formats still count toward the total",
			questions: []models.Question{
				mcq("1", "A", "A"),
				mcq("2", "B", "C"),
				{ID: "3", Type: models.FormatShortAnswer, Text: "Explain", StudentAnswer: "because"},
				{ID: "4", Type: models.FormatLongAnswer, Text: "Describe", StudentAnswer: "it is"},
			},
			expected: 25,
		},
		{name: "no questions", questions: nil, expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, score := GradeQuestions(tc.questions)
			require.Equal(t, tc.expected, score)
		})
	}
}

func TestGradeQuestionsMarksCorrectness(t *testing.T) {
	questions := []models.Question{
		mcq("1", "A", " A "),
		mcq("2", "B", ""),
		{ID: "3", Type: models.FormatFillBlank, Text: "2 + _ = 4", CorrectAnswer: "2", StudentAnswer: "2"},
	}

	graded, score := GradeQuestions(questions)
	require.Equal(t, 33, score)

	require.NotNil(t, graded[0].IsCorrect)
	require.True(t, *graded[0].IsCorrect)
	require.NotNil(t, graded[1].IsCorrect)
	require.False(t, *graded[1].IsCorrect)
	require.Nil(t, graded[2].IsCorrect)

	for _, question := range questions {
		require.Nil(t, question.IsCorrect)
	}
}

func TestGradeQuestionsIsIdempotent(t *testing.T) {
	questions := mcqBatch(7, 4)

	first, firstScore := GradeQuestions(questions)
	second, secondScore := GradeQuestions(first)

	require.Equal(t, firstScore, secondScore)
	require.Equal(t, first, second)
}

func TestGraderWeightHook(t *testing.T) {
	grader := Grader{Weight: func(q models.Question) float64 {
		if q.ID == "heavy" {
			return 3
		}
		return 1
	}}

	_, score := grader.Grade([]models.Question{
		mcq("heavy", "A", "A"),
		mcq("light", "B", "A"),
	})
	require.Equal(t, 75, score)
}

func mcqBatch(total, correct int) []models.Question {
	questions := make([]models.Question, 0, total)
	for i := 0; i < total; i++ {
		given := "B"
		if i < correct {
			given = "A"
		}
		questions = append(questions, mcq(fmt.Sprintf("q%d", i+1), "A", given))
	}
	return questions
}
