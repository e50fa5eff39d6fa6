package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/auth/middleware"
	"github.com/profactive/backend/libs/handlers"
	"go.uber.org/zap"
)

const (
	accessTokenCookie  = middleware.AccessTokenCookie
	refreshTokenCookie = "refresh_token"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the request, creates a user and returns access and refresh tokens.
	//
	// Orders placed earlier with the same email are assigned to the new user.
	// If the email is taken, models.ErrAlreadyExists is returned.
	Register(ctx context.Context, req *models.RegisterRequest) (string, string, error)
	// Method Login checks the credentials and returns access and refresh tokens.
	//
	// Wrong credentials give models.ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (string, string, error)
	// Method Refresh rotates the refresh token and returns a new pair.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	// Method Logout revokes the refresh token.
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	handlers.BaseHandler
	authService AuthService
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		authService: authService,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Creates an account and returns access and refresh tokens as HTTP-only cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register request"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	err := decodeBody(r, &req, func(form url.Values) {
		req = models.RegisterRequest{
			Email:           form.Get("email"),
			Password:        form.Get("password"),
			ConfirmPassword: form.Get("confirm_password"),
			FirstName:       form.Get("first_name"),
			LastName:        form.Get("last_name"),
		}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to register user")
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)
	h.RespondSuccess(w, http.StatusCreated, "user registered successfully", map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticates a user by email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	err := decodeBody(r, &req, func(form url.Values) {
		req = models.LoginRequest{Email: form.Get("email"), Password: form.Get("password")}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to login user")
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)
	h.RespondSuccess(w, http.StatusOK, "login successful", map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh
// @Summary Refresh tokens
// @Description Rotates the refresh token. The token is read from the body or the refresh_token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshToken(r)
	if refreshToken == "" {
		h.RespondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	accessToken, newRefreshToken, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to refresh tokens")
		return
	}

	h.setTokenCookies(w, accessToken, newRefreshToken)
	h.RespondSuccess(w, http.StatusOK, "tokens refreshed successfully", map[string]any{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
	})
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Revokes the refresh token and clears the auth cookies
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken := h.refreshToken(r); refreshToken != "" {
		if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
			h.Logger.Warn("failed to revoke refresh token", zap.Error(err))
		}
	}

	h.clearTokenCookies(w)
	h.RespondSuccess(w, http.StatusOK, "logged out", nil)
}

// refreshToken reads the token from a JSON body, falling back to the cookie
func (h *AuthHandler) refreshToken(r *http.Request) string {
	var req RefreshRequest
	if handlers.IsJSON(r) {
		if err := handlers.DecodeJSON(r, &req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}

	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
