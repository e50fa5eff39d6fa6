package handlers

import (
	"errors"
	"net/http"

	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/handlers"
	"github.com/profactive/backend/libs/middlewares"
	"go.uber.org/zap"
)

// statusFor picks the response status of a service error
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrAccessDenied), errors.Is(err, models.ErrNoAccess):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrAttemptNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrAlreadyPassed):
		return http.StatusConflict
	case errors.Is(err, models.ErrNoQuestions):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the error of a service call.
// Internal errors are logged and hidden behind a generic message.
func respondServiceError(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request, err error, message string) {
	logger := middlewares.ContextLogger(r.Context(), h.Logger)
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(message, zap.Error(err))
		h.RespondError(w, status, message)
		return
	}

	logger.Debug(message, zap.Int("status", status), zap.Error(err))
	h.RespondError(w, status, err.Error())
}
