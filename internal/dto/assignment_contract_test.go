package dto_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

func compileAssignmentSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "assignment_response.schema.json"))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func validateAgainst(t *testing.T, schema *jsonschema.Schema, response dto.AssignmentResponse) {
	t.Helper()

	body, err := json.Marshal(response)
	require.NoError(t, err)

	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, schema.Validate(decoded))
}

func contractAssignment() models.Assignment {
	explanation := "Fractions describe parts of a whole."
	examples := datatypes.JSONSlice[models.WorkedExample]{{Problem: "1/2 + 1/2", Solution: "1"}}
	correct := true
	score := 100
	suggestion := "Move on to mixed numbers."
	now := time.Now().UTC()

	return models.Assignment{
		ID:        3,
		StudentID: 11,
		ParentID:  7,
		AssignmentCriteria: models.AssignmentCriteria{
			Subject:       "Math",
			Topics:        "Fractions",
			Purpose:       models.PurposePractice,
			Difficulty:    models.DifficultyEasy,
			Formats:       []models.QuestionFormat{models.FormatMCQ},
			QuestionCount: 1,
			CreatedBy:     models.CreatorParent,
		},
		Questions: datatypes.JSONSlice[models.Question]{{
			ID:            "q1",
			Type:          models.FormatMCQ,
			Text:          "1/2 + 1/2?",
			Options:       []string{"1", "2"},
			CorrectAnswer: "1",
			StudentAnswer: "1",
			IsCorrect:     &correct,
		}},
		Status:       models.AssignmentStatusCompleted,
		Explanation:  &explanation,
		Examples:     &examples,
		Score:        &score,
		AISuggestion: &suggestion,
		Version:      3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAssignmentResponseContract(t *testing.T) {
	schema := compileAssignmentSchema(t)

	completed := contractAssignment()
	validateAgainst(t, schema, dto.NewAssignmentResponse(completed, true))

	fresh := contractAssignment()
	fresh.Status = models.AssignmentStatusNotStarted
	fresh.Score = nil
	fresh.AISuggestion = nil
	fresh.Explanation = nil
	fresh.Examples = nil
	fresh.Questions[0].StudentAnswer = ""
	fresh.Questions[0].IsCorrect = nil
	response := dto.NewAssignmentResponse(fresh, false)
	require.Empty(t, response.Questions[0].CorrectAnswer)
	validateAgainst(t, schema, response)
}

func TestAssignmentResponseContractRejectsUnknownStatus(t *testing.T) {
	schema := compileAssignmentSchema(t)

	response := dto.NewAssignmentResponse(contractAssignment(), true)
	response.Status = "Archived"

	body, err := json.Marshal(response)
	require.NoError(t, err)
	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	require.NoError(t, err)
	require.Error(t, schema.Validate(decoded))
}
