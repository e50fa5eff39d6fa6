package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/auth/middleware"
	"github.com/profactive/backend/libs/handlers"
	"go.uber.org/zap"
)

// CatalogueService is the interface that wraps methods for the public course catalogue
type CatalogueService interface {
	// GetMainCategories returns root categories with the number of courses in each subtree
	GetMainCategories(ctx context.Context) ([]models.CategoryWithCount, error)
	// GetSubcategories returns the direct children of a category
	GetSubcategories(ctx context.Context, parentID int) ([]models.Category, error)
	// ListCourses returns the courses matching the filter
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// GetPopular returns courses flagged popular
	GetPopular(ctx context.Context) ([]models.Course, error)
	// GetCourseDetail returns the course page or models.ErrNotFound
	GetCourseDetail(ctx context.Context, courseID int) (*models.CourseDetail, error)
}

// ReviewService is the interface that wraps methods for course reviews
type ReviewService interface {
	// List returns approved reviews of the course
	List(ctx context.Context, courseID int) ([]models.Review, error)
	// Create stores an inactive review waiting for approval
	Create(ctx context.Context, courseID int, userID *int, req *models.CreateReviewRequest) (*models.Review, error)
}

// CatalogueHandler handles catalogue and review HTTP requests
type CatalogueHandler struct {
	handlers.BaseHandler
	catalogueService CatalogueService
	reviewService    ReviewService
}

// NewCatalogueHandler creates a new catalogue handler
func NewCatalogueHandler(catalogueService CatalogueService, reviewService ReviewService, logger *zap.Logger) *CatalogueHandler {
	return &CatalogueHandler{
		BaseHandler:      handlers.BaseHandler{Logger: logger},
		catalogueService: catalogueService,
		reviewService:    reviewService,
	}
}

// RegisterRoutes registers catalogue routes. Posting a review requires authentication.
func (h *CatalogueHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/categories", h.GetMainCategories)
	r.Get("/categories/{id}/subcategories", h.GetSubcategories)
	r.Get("/courses", h.ListCourses)
	r.Get("/courses/popular", h.GetPopular)
	r.Get("/courses/{id}", h.GetCourse)
	r.Get("/courses/{id}/reviews", h.ListReviews)
	r.With(authMiddleware).Post("/courses/{id}/reviews", h.CreateReview)
}

// GetMainCategories handles GET /categories
// @Summary List main categories
// @Tags catalogue
// @Produce json
// @Success 200 {array} models.CategoryWithCount
// @Router /categories [get]
func (h *CatalogueHandler) GetMainCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogueService.GetMainCategories(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get categories")
		return
	}
	h.RespondJSON(w, http.StatusOK, categories)
}

// GetSubcategories handles GET /categories/{id}/subcategories
// @Summary List subcategories
// @Tags catalogue
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {array} models.Category
// @Failure 400 {object} map[string]any
// @Router /categories/{id}/subcategories [get]
func (h *CatalogueHandler) GetSubcategories(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.catalogueService.GetSubcategories(r.Context(), id)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get subcategories")
		return
	}
	h.RespondJSON(w, http.StatusOK, categories)
}

// ListCourses handles GET /courses
// @Summary List courses
// @Tags catalogue
// @Produce json
// @Param main_category query int false "Main category ID, covers all its subcategories"
// @Param sub_category query int false "Subcategory ID"
// @Param search query string false "Search in name, description and author"
// @Param popular query bool false "Only popular courses"
// @Success 200 {array} models.Course
// @Failure 400 {object} map[string]any
// @Router /courses [get]
func (h *CatalogueHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	mainCategory, err := queryInt(r, "main_category")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	subCategory, err := queryInt(r, "sub_category")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	popular, _ := strconv.ParseBool(r.URL.Query().Get("popular"))

	courses, err := h.catalogueService.ListCourses(r.Context(), models.CourseFilter{
		MainCategoryID: mainCategory,
		SubCategoryID:  subCategory,
		Search:         strings.TrimSpace(r.URL.Query().Get("search")),
		PopularOnly:    popular,
	})
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to list courses")
		return
	}
	h.RespondJSON(w, http.StatusOK, courses)
}

// GetPopular handles GET /courses/popular
// @Summary List popular courses
// @Tags catalogue
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses/popular [get]
func (h *CatalogueHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalogueService.GetPopular(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get popular courses")
		return
	}
	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{id}
// @Summary Get course page
// @Tags catalogue
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.CourseDetail
// @Failure 404 {object} map[string]any
// @Router /courses/{id} [get]
func (h *CatalogueHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.catalogueService.GetCourseDetail(r.Context(), id)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get course")
		return
	}
	h.RespondJSON(w, http.StatusOK, course)
}

// ListReviews handles GET /courses/{id}/reviews
// @Summary List approved reviews
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {array} models.Review
// @Router /courses/{id}/reviews [get]
func (h *CatalogueHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := h.reviewService.List(r.Context(), id)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to list reviews")
		return
	}
	h.RespondJSON(w, http.StatusOK, reviews)
}

// CreateReview handles POST /courses/{id}/reviews
// @Summary Leave a review
// @Description The review becomes visible after an administrator approves it
// @Tags reviews
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Course ID"
// @Param request body models.CreateReviewRequest true "Review"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /courses/{id}/reviews [post]
func (h *CatalogueHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.CreateReviewRequest
	err = decodeBody(r, &req, func(form url.Values) {
		req = models.CreateReviewRequest{
			FirstName: form.Get("first_name"),
			LastName:  form.Get("last_name"),
			Rating:    formInt(form, "rating"),
			Text:      form.Get("text"),
		}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var userID *int
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}

	review, err := h.reviewService.Create(r.Context(), id, userID, &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to create review")
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "review submitted for moderation", map[string]any{"review": review})
}
