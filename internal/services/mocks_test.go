package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/profactive/backend/internal/models"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	user         *models.User
	err          error
	exists       bool
	existsErr    error
	createErr    error
	updateErr    error
	created      *models.User
	passwordHash string
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.created = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, fmt.Errorf("%w: user", models.ErrNotFound)
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByID(ctx, 0)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return m.updateErr
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.passwordHash = passwordHash
	return nil
}

// mockUserTokenRepository is a mock implementation of UserTokenRepository
type mockUserTokenRepository struct {
	token     *models.UserToken
	err       error
	createErr error
	updateErr error
	deleted   []string
	mu        sync.Mutex
}

func (m *mockUserTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	return m.createErr
}

func (m *mockUserTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.token == nil {
		return nil, fmt.Errorf("%w: token", models.ErrNotFound)
	}
	return m.token, nil
}

func (m *mockUserTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	return m.updateErr
}

func (m *mockUserTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, token)
	return nil
}

// mockOrderRepository is a mock implementation of OrderRepository
type mockOrderRepository struct {
	order       *models.Order
	orders      []models.Order
	err         error
	exists      bool
	hasActive   bool
	createErr   error
	activateErr error
	assigned    int
	assignErr   error

	created       *models.Order
	activatedIDs  []int
	setUserCalled bool
}

func (m *mockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = 10
	m.created = order
	return nil
}

func (m *mockOrderRepository) ExistsBySenderAndCourse(ctx context.Context, sender string, courseID int) (bool, error) {
	return m.exists, m.err
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.order == nil {
		return nil, fmt.Errorf("%w: order", models.ErrNotFound)
	}
	order := *m.order
	return &order, nil
}

func (m *mockOrderRepository) GetByUser(ctx context.Context, userID int) ([]models.Order, error) {
	return m.orders, m.err
}

func (m *mockOrderRepository) GetPending(ctx context.Context) ([]models.Order, error) {
	return m.orders, m.err
}

func (m *mockOrderRepository) HasActiveOrder(ctx context.Context, userID, courseID int) (bool, error) {
	return m.hasActive, m.err
}

func (m *mockOrderRepository) Activate(ctx context.Context, id int) error {
	if m.activateErr != nil {
		return m.activateErr
	}
	m.activatedIDs = append(m.activatedIDs, id)
	return nil
}

func (m *mockOrderRepository) SetUser(ctx context.Context, orderID, userID int) error {
	m.setUserCalled = true
	return nil
}

func (m *mockOrderRepository) AssignBySender(ctx context.Context, sender string, userID int) (int, error) {
	return m.assigned, m.assignErr
}

// mockOrderedContentRepository is a mock implementation of OrderedContentRepository
type mockOrderedContentRepository struct {
	chapters    []models.OrderedChapter
	videos      []models.OrderedVideo
	materials   []models.OrderedMaterial
	owner       *models.OrderedVideoOwner
	err         error
	snapshotErr error
	grantErr    error

	snapshots   []bool
	grantCalled int
}

func (m *mockOrderedContentRepository) Snapshot(ctx context.Context, orderID, courseID int, accessible bool) (int, error) {
	m.snapshots = append(m.snapshots, accessible)
	if m.snapshotErr != nil {
		return 1, m.snapshotErr
	}
	return len(m.chapters) + len(m.videos) + len(m.materials), nil
}

func (m *mockOrderedContentRepository) GrantAccess(ctx context.Context, orderID int) error {
	if m.grantErr != nil {
		return m.grantErr
	}
	m.grantCalled++
	for i := range m.chapters {
		m.chapters[i].Granted = true
	}
	for i := range m.videos {
		m.videos[i].Granted = true
	}
	for i := range m.materials {
		m.materials[i].Granted = true
	}
	return nil
}

func (m *mockOrderedContentRepository) GetChapters(ctx context.Context, orderID int) ([]models.OrderedChapter, error) {
	return m.chapters, m.err
}

func (m *mockOrderedContentRepository) GetVideos(ctx context.Context, orderID int) ([]models.OrderedVideo, error) {
	return m.videos, m.err
}

func (m *mockOrderedContentRepository) GetMaterials(ctx context.Context, orderID int) ([]models.OrderedMaterial, error) {
	return m.materials, m.err
}

func (m *mockOrderedContentRepository) GetVideoOwner(ctx context.Context, videoID int) (*models.OrderedVideoOwner, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.owner == nil {
		return nil, fmt.Errorf("%w: video", models.ErrNotFound)
	}
	return m.owner, nil
}

// mockProgressRepository keeps watch state in memory
type mockProgressRepository struct {
	// chapterVideos maps an ordered chapter to its video IDs
	chapterVideos map[int][]int
	watched       map[int]bool
	completed     map[int]bool
	orderTotal    int
	markErr       error
	chapterErr    error

	writes int
}

func (m *mockProgressRepository) MarkVideoWatched(ctx context.Context, userID, videoID int, at time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.writes++
	if m.watched == nil {
		m.watched = map[int]bool{}
	}
	m.watched[videoID] = true
	return nil
}

func (m *mockProgressRepository) MarkChapterCompleted(ctx context.Context, userID, chapterID int, at time.Time) error {
	if m.chapterErr != nil {
		return m.chapterErr
	}
	m.writes++
	if m.completed == nil {
		m.completed = map[int]bool{}
	}
	m.completed[chapterID] = true
	return nil
}

func (m *mockProgressRepository) CountChapterVideos(ctx context.Context, userID, chapterID int) (int, int, error) {
	ids := m.chapterVideos[chapterID]
	watched := 0
	for _, id := range ids {
		if m.watched[id] {
			watched++
		}
	}
	return len(ids), watched, nil
}

func (m *mockProgressRepository) CountOrderVideos(ctx context.Context, userID, orderID int) (int, int, error) {
	return m.orderTotal, len(m.watched), nil
}

func (m *mockProgressRepository) GetWatchedVideoIDs(ctx context.Context, userID, orderID int) ([]int, error) {
	ids := []int{}
	for id, ok := range m.watched {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockProgressRepository) GetCompletedChapterIDs(ctx context.Context, userID, orderID int) ([]int, error) {
	ids := []int{}
	for id, ok := range m.completed {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// mockQuizRepository is a mock implementation of QuizRepository
type mockQuizRepository struct {
	quiz      *models.Quiz
	questions []models.QuizQuestion
	err       error
}

func (m *mockQuizRepository) GetActiveByCourse(ctx context.Context, courseID int) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.quiz == nil {
		return nil, fmt.Errorf("%w: quiz", models.ErrNotFound)
	}
	return m.quiz, nil
}

func (m *mockQuizRepository) GetActiveQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error) {
	return m.questions, nil
}

func (m *mockQuizRepository) GetQuestionsByIDs(ctx context.Context, quizID int, ids []models.QuestionID) ([]models.QuizQuestion, error) {
	wanted := make(map[models.QuestionID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := []models.QuizQuestion{}
	for _, q := range m.questions {
		if wanted[q.ID] {
			result = append(result, q)
		}
	}
	return result, nil
}

// mockQuizAttemptRepository is a mock implementation of QuizAttemptRepository
type mockQuizAttemptRepository struct {
	latest      *models.QuizAttempt
	passed      bool
	completeErr error
	dashboard   []models.QuizDashboardItem

	created   *models.QuizAttempt
	completed *models.QuizAttempt
}

func (m *mockQuizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	attempt.ID = 7
	attempt.Answers = models.Answers{}
	m.created = attempt
	m.latest = attempt
	return nil
}

func (m *mockQuizAttemptRepository) GetLatest(ctx context.Context, userID, quizID int) (*models.QuizAttempt, error) {
	if m.latest == nil {
		return nil, models.ErrAttemptNotFound
	}
	attempt := *m.latest
	return &attempt, nil
}

func (m *mockQuizAttemptRepository) Complete(ctx context.Context, attempt *models.QuizAttempt) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	m.completed = attempt
	m.latest = attempt
	if attempt.IsPassed {
		m.passed = true
	}
	return nil
}

func (m *mockQuizAttemptRepository) HasPassed(ctx context.Context, userID, quizID int) (bool, error) {
	return m.passed, nil
}

func (m *mockQuizAttemptRepository) GetCompletedByUser(ctx context.Context, userID int) ([]models.QuizDashboardItem, error) {
	return m.dashboard, nil
}

// mockCertificateRepository stores certificates keyed by user and quiz
type mockCertificateRepository struct {
	certs map[[2]int]*models.QuizCertificate
}

func (m *mockCertificateRepository) CreateIfAbsent(ctx context.Context, cert *models.QuizCertificate) (bool, error) {
	if m.certs == nil {
		m.certs = map[[2]int]*models.QuizCertificate{}
	}
	key := [2]int{cert.UserID, cert.QuizID}
	if _, ok := m.certs[key]; ok {
		return false, nil
	}
	cert.ID = len(m.certs) + 1
	stored := *cert
	m.certs[key] = &stored
	return true, nil
}

func (m *mockCertificateRepository) GetByUserAndQuiz(ctx context.Context, userID, quizID int) (*models.QuizCertificate, error) {
	cert, ok := m.certs[[2]int{userID, quizID}]
	if !ok {
		return nil, fmt.Errorf("%w: certificate", models.ErrNotFound)
	}
	return cert, nil
}

// mockCourseRepository is a mock implementation of CourseRepository
type mockCourseRepository struct {
	course     *models.Course
	courses    []models.Course
	related    []models.Course
	lastFilter models.CourseFilter
}

func (m *mockCourseRepository) GetAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.lastFilter = filter
	return m.courses, nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.course == nil || m.course.ID != id {
		return nil, fmt.Errorf("%w: course", models.ErrNotFound)
	}
	return m.course, nil
}

func (m *mockCourseRepository) GetRelated(ctx context.Context, categoryID, excludeID, limit int) ([]models.Course, error) {
	return m.related, nil
}

// mockReferralRepository keeps referral participants in memory
type mockReferralRepository struct {
	byEmail     map[string]*models.Referral
	byCode      map[string]*models.Referral
	discount    float64
	discountErr error
	createErr   error

	created    []*models.Referral
	referrerOf map[int]int
}

func (m *mockReferralRepository) Create(ctx context.Context, ref *models.Referral) error {
	if m.createErr != nil {
		return m.createErr
	}
	ref.ID = 100 + len(m.created)
	m.created = append(m.created, ref)
	if m.byEmail == nil {
		m.byEmail = map[string]*models.Referral{}
	}
	m.byEmail[ref.Email] = ref
	return nil
}

func (m *mockReferralRepository) GetByEmail(ctx context.Context, email string) (*models.Referral, error) {
	if ref, ok := m.byEmail[email]; ok {
		return ref, nil
	}
	return nil, fmt.Errorf("%w: referral", models.ErrNotFound)
}

func (m *mockReferralRepository) GetActiveByPromoCode(ctx context.Context, code string) (*models.Referral, error) {
	if ref, ok := m.byCode[code]; ok && ref.IsActive {
		return ref, nil
	}
	return nil, fmt.Errorf("%w: promo code", models.ErrNotFound)
}

func (m *mockReferralRepository) PromoCodeExists(ctx context.Context, code string) (bool, error) {
	_, ok := m.byCode[code]
	return ok, nil
}

func (m *mockReferralRepository) SetReferrer(ctx context.Context, id int, referrer *models.Referral) error {
	if m.referrerOf == nil {
		m.referrerOf = map[int]int{}
	}
	m.referrerOf[id] = referrer.ID
	return nil
}

func (m *mockReferralRepository) GetActiveDiscount(ctx context.Context) (float64, error) {
	if m.discountErr != nil {
		return 0, m.discountErr
	}
	return m.discount, nil
}

// mockNotifier records sent emails
type mockNotifier struct {
	emails []models.Email
}

func (m *mockNotifier) Send(ctx context.Context, email models.Email) {
	m.emails = append(m.emails, email)
}

// mockStorage opens files from a fixed map of paths
type mockStorage struct {
	files map[string]*os.File
}

func (m *mockStorage) Open(relPath string) (*os.File, error) {
	if f, ok := m.files[relPath]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: file", models.ErrNotFound)
}

func intPtr(v int) *int {
	return &v
}
