package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/profactive/backend/internal/models"
)

// QuestionFieldPrefix prefixes quiz answers submitted as form fields
const QuestionFieldPrefix = "question_"

// ScoreResult is the outcome of scoring one submission
type ScoreResult struct {
	Correct    int
	Percentage float64
	Passed     bool
}

// ScoreAnswers counts the answers matching the correct option.
// Answers to questions missing from the lookup are skipped but still count as submitted.
func ScoreAnswers(answers models.Answers, questions map[models.QuestionID]models.QuizQuestion, passingScore int) ScoreResult {
	if len(answers) == 0 {
		return ScoreResult{Passed: passingScore <= 0}
	}

	correct := 0
	for id, selected := range answers {
		question, ok := questions[id]
		if !ok {
			continue
		}
		if question.CorrectAnswer == selected {
			correct++
		}
	}

	percentage := float64(correct) / float64(len(answers)) * 100
	return ScoreResult{
		Correct:    correct,
		Percentage: math.Round(percentage*100) / 100,
		Passed:     percentage >= float64(passingScore),
	}
}

// ParseAnswers normalizes raw answers into typed ones. Keys may be bare question IDs
// or "question_<id>" form fields; blank values are unanswered questions.
func ParseAnswers(raw map[string]string) (models.Answers, error) {
	answers := make(models.Answers, len(raw))
	for key, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}

		id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(key), QuestionFieldPrefix))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid question id %q", models.ErrValidation, key)
		}

		option, err := models.ParseOption(value)
		if err != nil {
			return nil, err
		}
		answers[models.QuestionID(id)] = option
	}

	return answers, nil
}

// newCertificateNumber returns "CERT-" followed by 8 uppercase hex characters
func newCertificateNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CERT-" + strings.ToUpper(id[:8])
}
