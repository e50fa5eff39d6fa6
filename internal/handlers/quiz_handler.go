package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/internal/services"
	"github.com/profactive/backend/libs/auth/middleware"
	"github.com/profactive/backend/libs/handlers"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for the course quiz
type QuizService interface {
	// Start creates an attempt over a random sample of questions.
	// It fails with models.ErrAlreadyPassed once the user passed the quiz.
	Start(ctx context.Context, userID, courseID int) (*models.StartedQuiz, error)
	// Submit scores the latest attempt. The flag is false when the attempt had already been scored.
	Submit(ctx context.Context, userID, courseID int, answers models.Answers) (*models.QuizResult, bool, error)
	// Results returns the latest scored attempt with the review of each answer
	Results(ctx context.Context, userID, courseID int) (*models.QuizResult, error)
	// Certificate returns the certificate of a passed quiz
	Certificate(ctx context.Context, userID, courseID int) (*models.QuizCertificate, error)
	// Dashboard lists completed attempts of the user
	Dashboard(ctx context.Context, userID int) ([]models.QuizDashboardItem, error)
}

// QuizHandler handles quiz HTTP requests
type QuizHandler struct {
	handlers.BaseHandler
	quizService QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		quizService: quizService,
	}
}

// RegisterRoutes registers quiz routes behind the auth middleware
func (h *QuizHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{id}/quiz/start", h.Start)
		r.Post("/courses/{id}/quiz/submit", h.Submit)
		r.Get("/courses/{id}/quiz/results", h.Results)
		r.Get("/courses/{id}/quiz/certificate", h.Certificate)
		r.Get("/quizzes/dashboard", h.Dashboard)
	})
}

// SubmitQuizRequest is the JSON form of a quiz submission, keyed by question id
type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers"`
}

// Start handles POST /courses/{id}/quiz/start
// @Summary Start the course quiz
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 201 {object} models.StartedQuiz
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /courses/{id}/quiz/start [post]
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.userAndCourse(w, r)
	if !ok {
		return
	}

	started, err := h.quizService.Start(r.Context(), userID, courseID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to start quiz")
		return
	}
	h.RespondJSON(w, http.StatusCreated, started)
}

// Submit handles POST /courses/{id}/quiz/submit
// @Summary Submit quiz answers
// @Description Answers arrive as question_<id>=<A|B|C> form fields or as JSON {"answers": {"<id>": "A"}}
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param request body SubmitQuizRequest false "Answers"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /courses/{id}/quiz/submit [post]
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.userAndCourse(w, r)
	if !ok {
		return
	}

	raw, err := submittedAnswers(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	answers, err := services.ParseAnswers(raw)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, scored, err := h.quizService.Submit(r.Context(), userID, courseID, answers)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to submit quiz")
		return
	}

	message := "quiz submitted"
	if !scored {
		message = "quiz attempt was already submitted"
	}
	h.RespondSuccess(w, http.StatusOK, message, map[string]any{
		"passed":     result.Attempt.IsPassed,
		"percentage": result.Attempt.Percentage,
		"result":     result,
	})
}

// Results handles GET /courses/{id}/quiz/results
// @Summary Latest quiz result
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} models.QuizResult
// @Failure 404 {object} map[string]any
// @Router /courses/{id}/quiz/results [get]
func (h *QuizHandler) Results(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.userAndCourse(w, r)
	if !ok {
		return
	}

	result, err := h.quizService.Results(r.Context(), userID, courseID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get quiz results")
		return
	}
	h.RespondJSON(w, http.StatusOK, result)
}

// Certificate handles GET /courses/{id}/quiz/certificate
// @Summary Quiz certificate
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Success 200 {object} models.QuizCertificate
// @Failure 404 {object} map[string]any
// @Router /courses/{id}/quiz/certificate [get]
func (h *QuizHandler) Certificate(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := h.userAndCourse(w, r)
	if !ok {
		return
	}

	certificate, err := h.quizService.Certificate(r.Context(), userID, courseID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get certificate")
		return
	}
	h.RespondJSON(w, http.StatusOK, certificate)
}

// Dashboard handles GET /quizzes/dashboard
// @Summary Completed quiz attempts
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.QuizDashboardItem
// @Router /quizzes/dashboard [get]
func (h *QuizHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.quizService.Dashboard(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get quiz dashboard")
		return
	}
	h.RespondJSON(w, http.StatusOK, items)
}

func (h *QuizHandler) userAndCourse(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return 0, 0, false
	}
	courseID, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return userID, courseID, true
}

// submittedAnswers collects raw answers keyed by question id or question_<id> field name
func submittedAnswers(r *http.Request) (map[string]string, error) {
	if handlers.IsJSON(r) {
		var req SubmitQuizRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return nil, err
		}
		return req.Answers, nil
	}

	if err := parseForm(r); err != nil {
		return nil, err
	}
	raw := make(map[string]string)
	for key, values := range r.PostForm {
		if strings.HasPrefix(key, services.QuestionFieldPrefix) && len(values) > 0 {
			raw[key] = values[0]
		}
	}
	return raw, nil
}
