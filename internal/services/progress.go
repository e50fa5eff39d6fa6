package services

import (
	"math"

	"github.com/profactive/backend/internal/models"
)

// quizPendingCap is the highest progress a course with an unpassed quiz can show
const quizPendingCap = 90.0

// CalculateProgressPercentage turns video counts and the quiz state into a course percentage.
// Video progress alone never completes a course that has a quiz.
func CalculateProgressPercentage(total, watched int, hasQuiz, quizPassed bool) float64 {
	if total <= 0 {
		return 0
	}

	percentage := float64(watched) / float64(total) * 100
	switch {
	case hasQuiz && quizPassed:
		percentage = 100
	case hasQuiz:
		percentage = math.Min(quizPendingCap, percentage)
	}

	return math.Max(0, math.Min(100, percentage))
}

// NewProgressSummary builds the progress block returned to clients
func NewProgressSummary(total, watched int, hasQuiz, quizPassed bool) models.ProgressSummary {
	percentage := CalculateProgressPercentage(total, watched, hasQuiz, quizPassed)
	return models.ProgressSummary{
		WatchedVideos: watched,
		TotalVideos:   total,
		Percentage:    math.Round(percentage*10) / 10,
		IsCompleted:   percentage >= 100,
	}
}
