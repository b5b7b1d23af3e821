package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

const notAvailable = "N/A"

const outputRules = "Do not include any markdown or explanatory text outside the JSON. " +
	"Return ONLY valid JSON. Do not include trailing commas."

// PromptComposer builds the generation request sent to the model.
type PromptComposer struct {
	history *HistoryLookup
}

// NewPromptComposer constructs a composer that consults the student's history.
func NewPromptComposer(history *HistoryLookup) *PromptComposer {
	return &PromptComposer{history: history}
}

// Compose looks up the student's prior questions for the subject and builds the assignment prompt.
func (p *PromptComposer) Compose(ctx context.Context, student models.Student, criteria models.AssignmentCriteria) string {
	var history []string
	if p.history != nil {
		history = p.history.PriorQuestions(ctx, student.ID, criteria.Subject)
	}
	return BuildAssignmentPrompt(student, criteria, history)
}

// BuildAssignmentPrompt renders the profile, assignment, format and history segments followed by the
// response shape instructions.
func BuildAssignmentPrompt(student models.Student, criteria models.AssignmentCriteria, history []string) string {
	segments := []string{
		"Based on this profile: " + profileSegment(student),
		"Create an assignment with these details: " + assignmentSegment(criteria),
		formatSegment(criteria.Formats),
	}

	if criteria.Purpose.IncludesLesson() {
		segments = append(segments, "First, provide a clear, concise \"explanation\" of the topic suitable for the student's grade level. "+
			"Then, provide an array of 2-3 \"examples\", where each example is an object with a \"problem\" and a \"solution\".")
	}

	if segment := historySegment(criteria.Purpose, history); segment != "" {
		segments = append(segments, segment)
	}

	segments = append(segments, "Instructions: "+responseShape(criteria.Purpose))

	return strings.Join(segments, " ")
}

func profileSegment(student models.Student) string {
	return fmt.Sprintf("The student is in %s. Strengths: %s. Weaknesses: %s. Learning Styles: %s.",
		orNotAvailable(student.Grade),
		joinOrNotAvailable(student.Strengths),
		joinOrNotAvailable(student.Weaknesses),
		joinOrNotAvailable(student.LearningStyles),
	)
}

func assignmentSegment(criteria models.AssignmentCriteria) string {
	return fmt.Sprintf("Subject: %s. Topics: %s. Purpose: %s. Difficulty: %s. Number of questions: %d.",
		criteria.Subject,
		orNotAvailable(criteria.Topics),
		criteria.Purpose,
		criteria.Difficulty,
		criteria.QuestionCount,
	)
}

func formatSegment(formats []models.QuestionFormat) string {
	names := make([]string, 0, len(formats))
	for _, format := range formats {
		names = append(names, string(format))
	}

	return fmt.Sprintf("The assignment must only contain the following question types: %s. "+
		"For each question, the \"type\" field in the JSON must be one of these. "+
		"If \"%s\" is a requested type, you MUST provide an \"options\" array and a \"correctAnswer\" key for that question, "+
		"and the correctAnswer must be exactly one of the options.",
		strings.Join(names, ", "), models.FormatMCQ)
}

func historySegment(purpose models.Purpose, history []string) string {
	if len(history) == 0 {
		return ""
	}

	encoded, err := json.Marshal(history)
	if err != nil {
		return ""
	}

	if purpose == models.PurposeRevision {
		return "This is a revision assignment. Rephrase or present the following past questions in a new way, " +
			"but test the same underlying concepts. Do not ask the exact same questions. Past questions: " + string(encoded)
	}

	return "Do not repeat any of the following questions that have been asked before: " + string(encoded)
}

func responseShape(purpose models.Purpose) string {
	shape := "Return output as a valid JSON object with a single key \"questions\" which is an array."
	if purpose.IncludesLesson() {
		shape = "Return output as a valid JSON object with three keys: \"explanation\" (a string), " +
			"\"examples\" (an array of objects), and \"questions\" (an array of question objects)."
	}

	return shape + " Each question object in the \"questions\" array must have: \"id\", \"type\", \"text\". " +
		"For MCQs, you MUST include an \"options\" array and a \"correctAnswer\" key. For other types, you do not need to. " +
		outputRules
}

func orNotAvailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return notAvailable
	}
	return value
}

func joinOrNotAvailable(values []string) string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return notAvailable
	}
	return strings.Join(cleaned, ", ")
}
