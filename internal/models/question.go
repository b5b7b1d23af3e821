package models

import "strings"

// Question is a single item of an assignment. IsCorrect is nil until the question has been graded
// and stays nil for formats without an answer key.
type Question struct {
	ID            string         `json:"id"`
	Type          QuestionFormat `json:"type"`
	Text          string         `json:"text"`
	Options       []string       `json:"options,omitempty"`
	CorrectAnswer string         `json:"correctAnswer,omitempty"`
	StudentAnswer string         `json:"studentAnswer"`
	IsCorrect     *bool          `json:"isCorrect"`
}

// IsMCQ reports whether the question is multiple choice.
func (q Question) IsMCQ() bool {
	return q.Type == FormatMCQ
}

// HasValidChoices reports whether an MCQ question offers options that include its correct answer.
func (q Question) HasValidChoices() bool {
	answer := strings.TrimSpace(q.CorrectAnswer)
	if len(q.Options) == 0 || answer == "" {
		return false
	}
	for _, option := range q.Options {
		if strings.TrimSpace(option) == answer {
			return true
		}
	}
	return false
}
