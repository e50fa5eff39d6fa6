package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func quizRoutes(svc *mockQuizService) func(r chi.Router) {
	h := NewQuizHandler(svc, zap.NewNop())
	return func(r chi.Router) { h.RegisterRoutes(r, withTestUser) }
}

func TestQuizHandler_Start(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"started", nil, http.StatusCreated},
		{"already passed", models.ErrAlreadyPassed, http.StatusConflict},
		{"no access", models.ErrNoAccess, http.StatusForbidden},
		{"no questions", models.ErrNoQuestions, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockQuizService{started: &models.StartedQuiz{}, err: tt.err}
			w := serve(quizRoutes(svc), formRequest(http.MethodPost, "/courses/5/quiz/start", ""))

			assert.Equal(t, tt.expected, w.Code)
			assert.Equal(t, 5, svc.courseID)
		})
	}
}

func TestQuizHandler_Submit(t *testing.T) {
	passed := &models.QuizResult{Attempt: models.QuizAttempt{IsPassed: true, Percentage: 80}}

	t.Run("form fields", func(t *testing.T) {
		svc := &mockQuizService{result: passed, scored: true}
		w := serve(quizRoutes(svc), formRequest(http.MethodPost, "/courses/5/quiz/submit",
			"question_1=a&question_2=B&csrf=token"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.Answers{1: models.OptionA, 2: models.OptionB}, svc.answers)
		body := decodeBodyMap(t, w)
		assert.Equal(t, true, body["passed"])
		assert.Equal(t, float64(80), body["percentage"])
		assert.Equal(t, "quiz submitted", body["message"])
	})

	t.Run("json answers", func(t *testing.T) {
		svc := &mockQuizService{result: passed, scored: true}
		w := serve(quizRoutes(svc), jsonRequest(http.MethodPost, "/courses/5/quiz/submit",
			`{"answers":{"3":"C","question_4":"a"}}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.Answers{3: models.OptionC, 4: models.OptionA}, svc.answers)
	})

	t.Run("resubmitted attempt", func(t *testing.T) {
		svc := &mockQuizService{result: passed, scored: false}
		w := serve(quizRoutes(svc), jsonRequest(http.MethodPost, "/courses/5/quiz/submit", `{"answers":{}}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "quiz attempt was already submitted", decodeBodyMap(t, w)["message"])
	})

	t.Run("unknown option", func(t *testing.T) {
		svc := &mockQuizService{}
		w := serve(quizRoutes(svc), formRequest(http.MethodPost, "/courses/5/quiz/submit", "question_1=D"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.answers)
	})

	t.Run("no attempt", func(t *testing.T) {
		svc := &mockQuizService{err: models.ErrAttemptNotFound}
		w := serve(quizRoutes(svc), formRequest(http.MethodPost, "/courses/5/quiz/submit", "question_1=A"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestQuizHandler_Certificate(t *testing.T) {
	w := serve(quizRoutes(&mockQuizService{}), httptestGet("/courses/5/quiz/certificate"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CERT-0A1B2C3D", decodeBodyMap(t, w)["certificateNumber"])
}
