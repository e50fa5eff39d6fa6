package handlers

import (
	"context"
	"net/http"
	"os"

	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/internal/services"
	"github.com/profactive/backend/libs/auth/middleware"
)

const testUserID = 7

// withTestUser stands in for the auth middleware
func withTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), testUserID, int(models.RoleUser))))
	})
}

func passThrough(next http.Handler) http.Handler { return next }

type mockAuthService struct {
	access, refresh string
	err             error
	registered      *models.RegisterRequest
	refreshedWith   string
	loggedOut       string
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	m.registered = req
	return m.access, m.refresh, m.err
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	return m.access, m.refresh, m.err
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	m.refreshedWith = refreshToken
	return m.access, m.refresh, m.err
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	m.loggedOut = refreshToken
	return m.err
}

type mockOrderService struct {
	order  *models.Order
	orders []models.Order
	err    error
	input  services.CreateOrderInput
}

func (m *mockOrderService) Create(ctx context.Context, in services.CreateOrderInput) (*models.Order, error) {
	m.input = in
	return m.order, m.err
}

func (m *mockOrderService) ListMine(ctx context.Context, userID int) ([]models.Order, error) {
	return m.orders, m.err
}

type mockLearningService struct {
	detail   *models.OrderedCourseDetail
	progress *models.ProgressSummary
	results  []models.CourseResult
	err      error
	userID   int
	videoID  int
}

func (m *mockLearningService) GetOrderedCourse(ctx context.Context, userID, orderID int) (*models.OrderedCourseDetail, error) {
	m.userID = userID
	return m.detail, m.err
}

func (m *mockLearningService) MarkWatched(ctx context.Context, userID, videoID int) (*models.ProgressSummary, error) {
	m.userID, m.videoID = userID, videoID
	return m.progress, m.err
}

func (m *mockLearningService) GetCourseResults(ctx context.Context, userID int) ([]models.CourseResult, error) {
	return m.results, m.err
}

type mockQuizService struct {
	started  *models.StartedQuiz
	result   *models.QuizResult
	scored   bool
	err      error
	answers  models.Answers
	courseID int
}

func (m *mockQuizService) Start(ctx context.Context, userID, courseID int) (*models.StartedQuiz, error) {
	m.courseID = courseID
	return m.started, m.err
}

func (m *mockQuizService) Submit(ctx context.Context, userID, courseID int, answers models.Answers) (*models.QuizResult, bool, error) {
	m.courseID = courseID
	m.answers = answers
	return m.result, m.scored, m.err
}

func (m *mockQuizService) Results(ctx context.Context, userID, courseID int) (*models.QuizResult, error) {
	return m.result, m.err
}

func (m *mockQuizService) Certificate(ctx context.Context, userID, courseID int) (*models.QuizCertificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.QuizCertificate{UserID: userID, CertificateNumber: "CERT-0A1B2C3D"}, nil
}

func (m *mockQuizService) Dashboard(ctx context.Context, userID int) ([]models.QuizDashboardItem, error) {
	return nil, m.err
}

type mockContentService struct {
	file  *os.File
	doc   *models.Document
	err   error
	page  int
	count int
}

func (m *mockContentService) FAQs(ctx context.Context, category string) ([]models.FAQ, error) {
	return []models.FAQ{{ID: 1, Question: "How to pay?", Category: category}}, m.err
}

func (m *mockContentService) Blogs(ctx context.Context, page, count int) ([]models.Blog, error) {
	m.page, m.count = page, count
	return []models.Blog{}, m.err
}

func (m *mockContentService) Documents(ctx context.Context) ([]models.Document, error) {
	return []models.Document{}, m.err
}

func (m *mockContentService) OpenDocument(ctx context.Context, id int) (*models.Document, *os.File, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.doc, m.file, nil
}

type mockReferralService struct {
	referral *models.Referral
	err      error
}

func (m *mockReferralService) Join(ctx context.Context, req *models.CreateReferralRequest) (*models.Referral, error) {
	return m.referral, m.err
}

func (m *mockReferralService) ResolveCode(ctx context.Context, code string) (*models.Referral, error) {
	return m.referral, m.err
}

func (m *mockReferralService) Discount(ctx context.Context) (float64, error) {
	return 6, m.err
}

type mockAdminService struct {
	order     *models.Order
	user      *models.User
	copied    int
	err       error
	activated int
	approved  int
}

func (m *mockAdminService) ListPending(ctx context.Context) ([]models.Order, error) {
	return []models.Order{}, m.err
}

func (m *mockAdminService) Activate(ctx context.Context, orderID int) (*models.Order, error) {
	m.activated = orderID
	return m.order, m.err
}

func (m *mockAdminService) Resnapshot(ctx context.Context, orderID int) (int, error) {
	return m.copied, m.err
}

func (m *mockAdminService) CreateUser(ctx context.Context, req *models.AdminCreateUserRequest) (*models.User, error) {
	return m.user, m.err
}

func (m *mockAdminService) Approve(ctx context.Context, reviewID int) error {
	m.approved = reviewID
	return m.err
}

type mockCatalogueService struct {
	categories    []models.CategoryWithCount
	subcategories []models.Category
	courses       []models.Course
	detail        *models.CourseDetail
	err           error
	filter        models.CourseFilter
}

func (m *mockCatalogueService) GetMainCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	return m.categories, m.err
}

func (m *mockCatalogueService) GetSubcategories(ctx context.Context, parentID int) ([]models.Category, error) {
	return m.subcategories, m.err
}

func (m *mockCatalogueService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.filter = filter
	return m.courses, m.err
}

func (m *mockCatalogueService) GetPopular(ctx context.Context) ([]models.Course, error) {
	return m.courses, m.err
}

func (m *mockCatalogueService) GetCourseDetail(ctx context.Context, courseID int) (*models.CourseDetail, error) {
	return m.detail, m.err
}

type mockReviewService struct {
	reviews  []models.Review
	err      error
	userID   *int
	courseID int
	request  *models.CreateReviewRequest
}

func (m *mockReviewService) List(ctx context.Context, courseID int) ([]models.Review, error) {
	return m.reviews, m.err
}

func (m *mockReviewService) Create(ctx context.Context, courseID int, userID *int, req *models.CreateReviewRequest) (*models.Review, error) {
	m.courseID, m.userID, m.request = courseID, userID, req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Review{ID: 1, CourseID: courseID, FirstName: req.FirstName, Rating: req.Rating}, nil
}

type mockProfileService struct {
	user    *models.User
	err     error
	updated *models.UpdateProfileRequest
	changed *models.ChangePasswordRequest
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return m.user, m.err
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	m.updated = req
	return m.user, m.err
}

func (m *mockProfileService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	m.changed = req
	return m.err
}
