package models

import (
	"fmt"
	"strings"
	"time"
)

// QuestionID identifies a quiz question
type QuestionID int

// Option is one of the fixed answer options of a question
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
)

// ParseOption normalizes a raw answer ("a", " B ") into an Option
func ParseOption(raw string) (Option, error) {
	switch opt := Option(strings.ToUpper(strings.TrimSpace(raw))); opt {
	case OptionA, OptionB, OptionC:
		return opt, nil
	default:
		return "", fmt.Errorf("%w: unknown answer option %q", ErrValidation, raw)
	}
}

// Answers maps a question to the option the user picked
type Answers map[QuestionID]Option

// Quiz is the knowledge check of a course
type Quiz struct {
	ID             int    `json:"id"`
	CourseID       int    `json:"courseId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	PassingScore   int    `json:"passingScore"`
	TimeLimit      int    `json:"timeLimit"`
	QuestionsCount int    `json:"questionsCount"`
	IsActive       bool   `json:"isActive"`
}

// Default quiz settings
const (
	DefaultPassingScore   = 70
	DefaultTimeLimit      = 30
	DefaultQuestionsCount = 10
)

// QuizQuestion is a question with three options and one correct answer
type QuizQuestion struct {
	ID            QuestionID `json:"id"`
	QuizID        int        `json:"quizId"`
	Text          string     `json:"text"`
	OptionA       string     `json:"optionA"`
	OptionB       string     `json:"optionB"`
	OptionC       string     `json:"optionC"`
	CorrectAnswer Option     `json:"-"`
	Explanation   string     `json:"-"`
	Position      int        `json:"position"`
	IsActive      bool       `json:"isActive"`
}

// QuizAttempt is one scored run through a sampled question set
type QuizAttempt struct {
	ID          int        `json:"id"`
	UserID      int        `json:"userId"`
	QuizID      int        `json:"quizId"`
	Answers     Answers    `json:"answers"`
	Score       int        `json:"score"`
	Percentage  float64    `json:"percentage"`
	IsPassed    bool       `json:"isPassed"`
	IsCompleted bool       `json:"isCompleted"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	TimeTaken   int        `json:"timeTaken"`
}

// QuizCertificate is issued once per user and quiz on the first pass
type QuizCertificate struct {
	ID                int       `json:"id"`
	UserID            int       `json:"userId"`
	QuizID            int       `json:"quizId"`
	AttemptID         int       `json:"attemptId"`
	CertificateNumber string    `json:"certificateNumber"`
	IssuedAt          time.Time `json:"issuedAt"`
}

// StartedQuiz is returned when an attempt is created
type StartedQuiz struct {
	Quiz      Quiz           `json:"quiz"`
	Attempt   QuizAttempt    `json:"attempt"`
	Questions []QuizQuestion `json:"questions"`
}

// QuestionReview shows a submitted answer against the correct one
type QuestionReview struct {
	QuestionID    QuestionID `json:"questionId"`
	Text          string     `json:"text"`
	Selected      Option     `json:"selected"`
	CorrectAnswer Option     `json:"correctAnswer"`
	IsCorrect     bool       `json:"isCorrect"`
	Explanation   string     `json:"explanation,omitempty"`
}

// QuizResult is the results page of the latest attempt
type QuizResult struct {
	Quiz        Quiz             `json:"quiz"`
	Attempt     QuizAttempt      `json:"attempt"`
	Review      []QuestionReview `json:"review"`
	Certificate *QuizCertificate `json:"certificate,omitempty"`
}

// QuizDashboardItem is a completed attempt with its course
type QuizDashboardItem struct {
	Attempt    QuizAttempt `json:"attempt"`
	QuizTitle  string      `json:"quizTitle"`
	CourseID   int         `json:"courseId"`
	CourseName string      `json:"courseName"`
}
