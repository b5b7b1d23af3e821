package service

import (
	"math"
	"strings"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// WeightFunc returns how much a question counts toward the score.
type WeightFunc func(question models.Question) float64

// EqualWeight counts every question once.
func EqualWeight(models.Question) float64 { return 1 }

// Grader scores answered questions. Only multiple choice questions have an answer key; every other
// format counts toward the total but is never marked correct.
type Grader struct {
	Weight WeightFunc
}

// GradeQuestions grades with equal weights.
func GradeQuestions(questions []models.Question) ([]models.Question, int) {
	return Grader{}.Grade(questions)
}

// Grade returns a graded copy of questions and the score as a rounded percentage. The input is not modified.
func (g Grader) Grade(questions []models.Question) ([]models.Question, int) {
	weight := g.Weight
	if weight == nil {
		weight = EqualWeight
	}

	graded := make([]models.Question, len(questions))
	var earned, total float64

	for i, question := range questions {
		graded[i] = question
		graded[i].Options = append([]string(nil), question.Options...)

		w := weight(question)
		total += w

		if !question.IsMCQ() {
			graded[i].IsCorrect = nil
			continue
		}

		correct := answersMatch(question.StudentAnswer, question.CorrectAnswer)
		graded[i].IsCorrect = &correct
		if correct {
			earned += w
		}
	}

	if total <= 0 {
		return graded, 0
	}

	return graded, int(math.Round(earned / total * 100))
}

func answersMatch(given, expected string) bool {
	given = strings.TrimSpace(given)
	return given != "" && given == strings.TrimSpace(expected)
}
