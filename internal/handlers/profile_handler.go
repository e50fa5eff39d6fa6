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

// ProfileService is the interface that wraps methods for profile business logic
type ProfileService interface {
	// GetProfile returns the account of the user or models.ErrNotFound
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	// UpdateProfile changes the name and phone of the user
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
	// ChangePassword checks the old password and stores the new one
	ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error
}

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	handlers.BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    handlers.BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers profile routes behind the auth middleware
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Put("/password", h.ChangePassword)
	})
}

// Get handles GET /profile
// @Summary Get profile
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]any
// @Router /profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Update handles PUT /profile
// @Summary Update profile
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateProfileRequest true "Profile"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.UpdateProfileRequest
	err := decodeBody(r, &req, func(form url.Values) {
		req = models.UpdateProfileRequest{
			FirstName: form.Get("first_name"),
			LastName:  form.Get("last_name"),
			Phone:     form.Get("phone"),
		}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to update profile")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "profile updated", map[string]any{"user": user})
}

// ChangePassword handles PUT /profile/password
// @Summary Change password
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /profile/password [put]
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	err := decodeBody(r, &req, func(form url.Values) {
		req = models.ChangePasswordRequest{
			OldPassword:     form.Get("old_password"),
			NewPassword:     form.Get("new_password"),
			ConfirmPassword: form.Get("confirm_password"),
		}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.profileService.ChangePassword(r.Context(), userID, &req); err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to change password")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "password changed", nil)
}
