package models

import (
	"strings"
	"unicode"
)

// Purpose is the pedagogical intent of an assignment.
type Purpose string

const (
	PurposePractice  Purpose = "Practice"
	PurposePreTest   Purpose = "Pre-Test"
	PurposeRevision  Purpose = "Revision"
	PurposeChallenge Purpose = "Challenge"
	PurposeHomework  Purpose = "Homework"
)

// IncludesLesson reports whether assignments with this purpose carry an explanation and worked examples.
func (p Purpose) IncludesLesson() bool {
	switch p {
	case PurposePractice, PurposeRevision, PurposePreTest:
		return true
	default:
		return false
	}
}

// Difficulty grades how hard the generated questions should be.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// QuestionFormat is the kind of answer a question expects.
type QuestionFormat string

const (
	FormatMCQ         QuestionFormat = "MCQ"
	FormatShortAnswer QuestionFormat = "Short Answer"
	FormatLongAnswer  QuestionFormat = "Long Answer"
	FormatFillBlank   QuestionFormat = "Fill-in-the-Blank"
)

// ParseQuestionFormat maps the loose spellings models tend to emit onto a known format.
func ParseQuestionFormat(raw string) (QuestionFormat, bool) {
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, raw)

	switch key {
	case "mcq", "multiplechoice", "multiplechoicequestion":
		return FormatMCQ, true
	case "shortanswer", "short":
		return FormatShortAnswer, true
	case "longanswer", "long", "essay":
		return FormatLongAnswer, true
	case "fillintheblank", "fillintheblanks", "fillblank", "fillblanks":
		return FormatFillBlank, true
	default:
		return "", false
	}
}

// Creator identifies who requested an assignment.
type Creator string

const (
	CreatorParent  Creator = "parent"
	CreatorStudent Creator = "student"
)

// AssignmentCriteria describes what kind of assignment to generate. It is never modified after generation.
type AssignmentCriteria struct {
	Subject       string           `gorm:"size:255;not null;index:idx_assignment_history,priority:2" json:"subject"`
	Topics        string           `gorm:"type:text" json:"topics"`
	Purpose       Purpose          `gorm:"size:32;not null" json:"purpose"`
	Difficulty    Difficulty       `gorm:"size:16;not null" json:"difficulty"`
	Formats       []QuestionFormat `gorm:"column:format;serializer:json" json:"format"`
	QuestionCount int              `gorm:"not null" json:"question_count"`
	CreatedBy     Creator          `gorm:"size:16;not null" json:"created_by"`
}

// Allows reports whether the criteria requested the given question format.
func (c AssignmentCriteria) Allows(format QuestionFormat) bool {
	for _, candidate := range c.Formats {
		if candidate == format {
			return true
		}
	}
	return false
}
