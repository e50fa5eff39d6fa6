package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/auth/middleware"
	"github.com/profactive/backend/libs/handlers"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for learning progress
type ProgressService interface {
	// MarkWatched records a watched video of an active order owned by the user
	// and returns the recomputed progress of the order.
	MarkWatched(ctx context.Context, userID, videoID int) (*models.ProgressSummary, error)
	// GetCourseResults returns progress and quiz state per active order
	GetCourseResults(ctx context.Context, userID int) ([]models.CourseResult, error)
}

// ProgressHandler handles progress HTTP requests
type ProgressHandler struct {
	handlers.BaseHandler
	progressService ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		progressService: progressService,
	}
}

// RegisterRoutes registers progress routes behind the auth middleware
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/videos", h.MarkWatched)
		r.Get("/results", h.GetResults)
	})
}

// MarkWatched handles POST /progress/videos
// @Summary Mark a video watched
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.MarkWatchedRequest true "Video"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /progress/videos [post]
func (h *ProgressHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.MarkWatchedRequest
	err := decodeBody(r, &req, func(form url.Values) {
		req.VideoID = formInt(form, "video_id")
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VideoID <= 0 {
		h.RespondError(w, http.StatusBadRequest, "video_id is required")
		return
	}

	progress, err := h.progressService.MarkWatched(r.Context(), userID, req.VideoID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to mark video watched")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "video marked as watched", map[string]any{"progress": progress})
}

// GetResults handles GET /progress/results
// @Summary Course results
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.CourseResult
// @Router /progress/results [get]
func (h *ProgressHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	results, err := h.progressService.GetCourseResults(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get course results")
		return
	}
	h.RespondJSON(w, http.StatusOK, results)
}
