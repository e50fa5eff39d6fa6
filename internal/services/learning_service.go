package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/metrics"
	"go.uber.org/zap"
)

// ProgressRepository is the interface that wraps methods for watch and chapter progress data access
type ProgressRepository interface {
	// Method MarkVideoWatched upserts the watch row of the user for an ordered video.
	MarkVideoWatched(ctx context.Context, userID, videoID int, at time.Time) error
	// Method MarkChapterCompleted upserts the completion row of the user for an ordered chapter.
	MarkChapterCompleted(ctx context.Context, userID, chapterID int, at time.Time) error
	// Method CountChapterVideos returns the number of videos of the chapter and how many the user watched.
	CountChapterVideos(ctx context.Context, userID, chapterID int) (int, int, error)
	// Method CountOrderVideos returns the number of accessible videos of the order and how many the user watched.
	CountOrderVideos(ctx context.Context, userID, orderID int) (int, int, error)
	GetWatchedVideoIDs(ctx context.Context, userID, orderID int) ([]int, error)
	GetCompletedChapterIDs(ctx context.Context, userID, orderID int) ([]int, error)
}

// QuizAttemptRepository is the interface that wraps methods for quiz_attempts table data access
type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	// Method GetLatest returns the most recent attempt or models.ErrAttemptNotFound.
	GetLatest(ctx context.Context, userID, quizID int) (*models.QuizAttempt, error)
	// Method Complete stores a scored attempt, models.ErrAlreadyExists is returned if it was completed meanwhile.
	Complete(ctx context.Context, attempt *models.QuizAttempt) error
	HasPassed(ctx context.Context, userID, quizID int) (bool, error)
	GetCompletedByUser(ctx context.Context, userID int) ([]models.QuizDashboardItem, error)
}

// CertificateRepository is the interface that wraps methods for quiz_certificates table data access
type CertificateRepository interface {
	// Method CreateIfAbsent inserts the certificate unless the user already holds one for the quiz.
	CreateIfAbsent(ctx context.Context, cert *models.QuizCertificate) (bool, error)
	// Method GetByUserAndQuiz returns the certificate or models.ErrNotFound.
	GetByUserAndQuiz(ctx context.Context, userID, quizID int) (*models.QuizCertificate, error)
}

type learningService struct {
	orderRepo       OrderRepository
	contentRepo     OrderedContentRepository
	progressRepo    ProgressRepository
	quizRepo        QuizRepository
	attemptRepo     QuizAttemptRepository
	certificateRepo CertificateRepository
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewLearningService creates a service for ordered courses and watch progress
func NewLearningService(
	orderRepo OrderRepository,
	contentRepo OrderedContentRepository,
	progressRepo ProgressRepository,
	quizRepo QuizRepository,
	attemptRepo QuizAttemptRepository,
	certificateRepo CertificateRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *learningService {
	return &learningService{
		orderRepo:       orderRepo,
		contentRepo:     contentRepo,
		progressRepo:    progressRepo,
		quizRepo:        quizRepo,
		attemptRepo:     attemptRepo,
		certificateRepo: certificateRepo,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
	}
}

// GetOrderedCourse builds the learning page of an order with the access state of every item
func (s *learningService) GetOrderedCourse(ctx context.Context, userID, orderID int) (*models.OrderedCourseDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, fmt.Errorf("%w: order belongs to another user", models.ErrAccessDenied)
	}

	chapters, videos, materials, err := s.loadOrderedContent(ctx, order)
	if err != nil {
		return nil, err
	}

	watchedIDs, err := s.progressRepo.GetWatchedVideoIDs(ctx, userID, order.ID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.progressRepo.GetCompletedChapterIDs(ctx, userID, order.ID)
	if err != nil {
		return nil, err
	}
	watched := toSet(watchedIDs)

	access := ComputeCourseAccess(CourseAccessInput{
		OrderActive:       order.IsActive,
		Chapters:          chapters,
		Videos:            videos,
		Materials:         materials,
		Watched:           watched,
		CompletedChapters: toSet(completedIDs),
	})

	quiz, passed, err := s.quizState(ctx, userID, order.CourseID)
	if err != nil {
		return nil, err
	}

	totalSeconds, granted, grantedWatched := 0, 0, 0
	for _, v := range videos {
		totalSeconds += v.DurationSeconds
		if v.Granted {
			granted++
			if watched[v.ID] {
				grantedWatched++
			}
		}
	}

	detail := &models.OrderedCourseDetail{
		Order:                *order,
		Status:               order.Status(),
		Chapters:             access,
		TotalLessons:         len(videos),
		AllChaptersCompleted: AllChaptersCompleted(access),
		Progress:             NewProgressSummary(granted, grantedWatched, quiz != nil, passed),
		Quiz:                 quiz,
		QuizPassed:           passed,
	}
	detail.TotalDurationHours, detail.TotalDurationMinutes = splitDuration(totalSeconds)

	if quiz != nil {
		if detail.Certificate, err = s.findCertificate(ctx, userID, quiz.ID); err != nil {
			return nil, err
		}
	}

	return detail, nil
}

// loadOrderedContent reads the order copy. An active order whose flags were not all
// granted, as after an interrupted activation, is granted again first.
func (s *learningService) loadOrderedContent(ctx context.Context, order *models.Order) ([]models.OrderedChapter, []models.OrderedVideo, []models.OrderedMaterial, error) {
	chapters, videos, materials, err := s.readOrderedContent(ctx, order.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !order.IsActive || fullyGranted(chapters, videos, materials) {
		return chapters, videos, materials, nil
	}

	s.logger.Warn("active order has locked content, granting access", zap.Int("orderID", order.ID))
	if err := s.contentRepo.GrantAccess(ctx, order.ID); err != nil {
		return nil, nil, nil, err
	}

	return s.readOrderedContent(ctx, order.ID)
}

func (s *learningService) readOrderedContent(ctx context.Context, orderID int) ([]models.OrderedChapter, []models.OrderedVideo, []models.OrderedMaterial, error) {
	chapters, err := s.contentRepo.GetChapters(ctx, orderID)
	if err != nil {
		return nil, nil, nil, err
	}
	videos, err := s.contentRepo.GetVideos(ctx, orderID)
	if err != nil {
		return nil, nil, nil, err
	}
	materials, err := s.contentRepo.GetMaterials(ctx, orderID)
	if err != nil {
		return nil, nil, nil, err
	}
	return chapters, videos, materials, nil
}

func fullyGranted(chapters []models.OrderedChapter, videos []models.OrderedVideo, materials []models.OrderedMaterial) bool {
	for _, ch := range chapters {
		if !ch.Granted {
			return false
		}
	}
	for _, v := range videos {
		if !v.Granted {
			return false
		}
	}
	for _, m := range materials {
		if !m.Granted {
			return false
		}
	}
	return true
}

// MarkWatched records a watch event of the user and completes the chapter once all its videos are watched
func (s *learningService) MarkWatched(ctx context.Context, userID, videoID int) (*models.ProgressSummary, error) {
	owner, err := s.contentRepo.GetVideoOwner(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if owner.OrderUserID == nil || *owner.OrderUserID != userID {
		return nil, fmt.Errorf("%w: video belongs to another user", models.ErrAccessDenied)
	}

	order, err := s.orderRepo.GetByID(ctx, owner.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.IsActive {
		return nil, fmt.Errorf("%w: order is not active", models.ErrAccessDenied)
	}

	now := s.now()
	if err := s.progressRepo.MarkVideoWatched(ctx, userID, videoID, now); err != nil {
		return nil, err
	}
	s.metrics.VideoWatched()

	if owner.OrderedChapterID != nil {
		total, watched, err := s.progressRepo.CountChapterVideos(ctx, userID, *owner.OrderedChapterID)
		if err != nil {
			return nil, err
		}
		if total > 0 && watched >= total {
			if err := s.progressRepo.MarkChapterCompleted(ctx, userID, *owner.OrderedChapterID, now); err != nil {
				return nil, err
			}
		}
	}

	return s.orderProgress(ctx, userID, order)
}

// GetCourseResults returns the progress and quiz outcome of every active order of the user
func (s *learningService) GetCourseResults(ctx context.Context, userID int) ([]models.CourseResult, error) {
	orders, err := s.orderRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := []models.CourseResult{}
	for i := range orders {
		order := orders[i]
		if !order.IsActive {
			continue
		}

		quiz, passed, err := s.quizState(ctx, userID, order.CourseID)
		if err != nil {
			return nil, err
		}
		total, watched, err := s.progressRepo.CountOrderVideos(ctx, userID, order.ID)
		if err != nil {
			return nil, err
		}

		result := models.CourseResult{
			Order:      order,
			Progress:   NewProgressSummary(total, watched, quiz != nil, passed),
			HasQuiz:    quiz != nil,
			QuizPassed: passed,
		}

		if quiz != nil {
			attempt, err := s.attemptRepo.GetLatest(ctx, userID, quiz.ID)
			switch {
			case err == nil:
				result.LatestAttempt = attempt
			case !errors.Is(err, models.ErrAttemptNotFound):
				return nil, err
			}

			if result.Certificate, err = s.findCertificate(ctx, userID, quiz.ID); err != nil {
				return nil, err
			}
		}

		results = append(results, result)
	}

	return results, nil
}

func (s *learningService) orderProgress(ctx context.Context, userID int, order *models.Order) (*models.ProgressSummary, error) {
	total, watched, err := s.progressRepo.CountOrderVideos(ctx, userID, order.ID)
	if err != nil {
		return nil, err
	}

	quiz, passed, err := s.quizState(ctx, userID, order.CourseID)
	if err != nil {
		return nil, err
	}

	summary := NewProgressSummary(total, watched, quiz != nil, passed)
	return &summary, nil
}

// quizState returns the active quiz of the course, nil when there is none, and whether the user passed it
func (s *learningService) quizState(ctx context.Context, userID, courseID int) (*models.Quiz, bool, error) {
	quiz, err := s.quizRepo.GetActiveByCourse(ctx, courseID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	passed, err := s.attemptRepo.HasPassed(ctx, userID, quiz.ID)
	if err != nil {
		return nil, false, err
	}

	return quiz, passed, nil
}

func (s *learningService) findCertificate(ctx context.Context, userID, quizID int) (*models.QuizCertificate, error) {
	cert, err := s.certificateRepo.GetByUserAndQuiz(ctx, userID, quizID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return cert, err
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
