package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/internal/services"
	"github.com/profactive/backend/libs/auth/middleware"
	"github.com/profactive/backend/libs/handlers"
	"go.uber.org/zap"
)

// referralCookie remembers the promo code of a followed referral link
const referralCookie = "referral_code"

// OrderService is the interface that wraps methods for course orders
type OrderService interface {
	// Create stores a pending order with a snapshot of the course content
	// and notifies the administrator.
	Create(ctx context.Context, in services.CreateOrderInput) (*models.Order, error)
	// ListMine returns the orders of the user
	ListMine(ctx context.Context, userID int) ([]models.Order, error)
}

// OrderedCourseService is the interface that wraps reading an ordered course
type OrderedCourseService interface {
	// GetOrderedCourse returns the content of an order with access computed for the user.
	// Orders of other users give models.ErrAccessDenied.
	GetOrderedCourse(ctx context.Context, userID, orderID int) (*models.OrderedCourseDetail, error)
}

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	handlers.BaseHandler
	orderService    OrderService
	learningService OrderedCourseService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderService, learningService OrderedCourseService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		orderService:    orderService,
		learningService: learningService,
	}
}

// RegisterRoutes registers order routes.
// Ordering is open to guests, the optional auth middleware attaches the buyer when signed in.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, optionalAuthMiddleware func(http.Handler) http.Handler) {
	r.With(optionalAuthMiddleware).Post("/courses/{id}/orders", h.Create)
	r.Route("/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListMine)
		r.Get("/{id}", h.GetOrderedCourse)
	})
}

// Create handles POST /courses/{id}/orders
// @Summary Order a course
// @Description Creates a pending order. The promo code falls back to the referral_code cookie.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body models.CreateOrderRequest true "Contact form"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /courses/{id}/orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	courseID, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.CreateOrderRequest
	err = decodeBody(r, &req, func(form url.Values) {
		req = models.CreateOrderRequest{
			FirstName: form.Get("first_name"),
			LastName:  form.Get("last_name"),
			Email:     form.Get("email"),
			Phone:     form.Get("phone_number"),
			PromoCode: form.Get("promo_code"),
		}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := services.CreateOrderInput{CourseID: courseID, Request: req}
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		in.UserID = &userID
	}
	if cookie, err := r.Cookie(referralCookie); err == nil {
		in.CookiePromoCode = cookie.Value
	}

	order, err := h.orderService.Create(r.Context(), in)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to create order")
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "order received, we will contact you soon", map[string]any{
		"order_id": order.ID,
		"status":   order.Status(),
	})
}

// ListMine handles GET /orders
// @Summary List my orders
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Order
// @Router /orders [get]
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListMine(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to list orders")
		return
	}
	h.RespondJSON(w, http.StatusOK, orders)
}

// GetOrderedCourse handles GET /orders/{id}
// @Summary Get ordered course
// @Description Returns the order content with chapter, video and material access computed for the user
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Success 200 {object} models.OrderedCourseDetail
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrderedCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orderID, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.learningService.GetOrderedCourse(r.Context(), userID, orderID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get ordered course")
		return
	}
	h.RespondJSON(w, http.StatusOK, detail)
}
