package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/handlers"
	"go.uber.org/zap"
)

// AdminOrderService is the interface that wraps the order moderation methods
type AdminOrderService interface {
	// ListPending returns orders waiting for activation, oldest first
	ListPending(ctx context.Context) ([]models.Order, error)
	// Activate grants access to the ordered content and emails the buyer
	Activate(ctx context.Context, orderID int) (*models.Order, error)
	// Resnapshot copies course content missing from the order and returns the number of copied records
	Resnapshot(ctx context.Context, orderID int) (int, error)
}

// AdminUserService is the interface that wraps account creation by an administrator
type AdminUserService interface {
	// CreateUser creates an account, generating a password when none is given, and emails the credentials
	CreateUser(ctx context.Context, req *models.AdminCreateUserRequest) (*models.User, error)
}

// ReviewModerationService is the interface that wraps review approval
type ReviewModerationService interface {
	// Approve makes a review visible
	Approve(ctx context.Context, reviewID int) error
}

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	handlers.BaseHandler
	orderService  AdminOrderService
	userService   AdminUserService
	reviewService ReviewModerationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(orderService AdminOrderService, userService AdminUserService, reviewService ReviewModerationService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   handlers.BaseHandler{Logger: logger},
		orderService:  orderService,
		userService:   userService,
		reviewService: reviewService,
	}
}

// RegisterRoutes registers admin routes. The router is expected to be behind the role middleware.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders/pending", h.ListPendingOrders)
		r.Post("/orders/{id}/activate", h.ActivateOrder)
		r.Post("/orders/{id}/resnapshot", h.ResnapshotOrder)
		r.Post("/users", h.CreateUser)
		r.Put("/reviews/{id}/approve", h.ApproveReview)
	})
}

// ListPendingOrders handles GET /admin/orders/pending
// @Summary List pending orders
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Order
// @Failure 403 {object} map[string]any
// @Router /admin/orders/pending [get]
func (h *AdminHandler) ListPendingOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListPending(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to list pending orders")
		return
	}
	h.RespondJSON(w, http.StatusOK, orders)
}

// ActivateOrder handles POST /admin/orders/{id}/activate
// @Summary Activate an order
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /admin/orders/{id}/activate [post]
func (h *AdminHandler) ActivateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.Activate(r.Context(), id)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to activate order")
		return
	}

	h.Logger.Info("order activated", zap.Int("orderID", order.ID))
	h.RespondSuccess(w, http.StatusOK, "order activated", map[string]any{"order": order})
}

// ResnapshotOrder handles POST /admin/orders/{id}/resnapshot
// @Summary Copy missing course content into an order
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /admin/orders/{id}/resnapshot [post]
func (h *AdminHandler) ResnapshotOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	copied, err := h.orderService.Resnapshot(r.Context(), id)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to resnapshot order")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "order content refreshed", map[string]any{"copied": copied})
}

// CreateUser handles POST /admin/users
// @Summary Create an account
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.AdminCreateUserRequest true "Account"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.AdminCreateUserRequest
	err := decodeBody(r, &req, func(form url.Values) {
		req = models.AdminCreateUserRequest{
			Email:     form.Get("email"),
			FirstName: form.Get("first_name"),
			LastName:  form.Get("last_name"),
			Phone:     form.Get("phone"),
			Password:  form.Get("password"),
			Role:      models.Role(formInt(form, "role")),
		}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.CreateUser(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to create user")
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "user created", map[string]any{"user": user})
}

// ApproveReview handles PUT /admin/reviews/{id}/approve
// @Summary Approve a review
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Review ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /admin/reviews/{id}/approve [put]
func (h *AdminHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reviewService.Approve(r.Context(), id); err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to approve review")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "review approved", nil)
}
