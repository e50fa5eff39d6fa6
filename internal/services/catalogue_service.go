package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/profactive/backend/internal/models"
)

const relatedCoursesLimit = 4

// CategoryRepository is the interface that wraps methods for categories table data access
type CategoryRepository interface {
	// Method GetMainWithCourseCount returns root categories with the number of courses in their subtrees.
	GetMainWithCourseCount(ctx context.Context) ([]models.CategoryWithCount, error)
	// Method GetByID retrieves a category, models.ErrNotFound is returned if it does not exist.
	GetByID(ctx context.Context, id int) (*models.Category, error)
	// Method GetChildren returns the direct children of a category.
	GetChildren(ctx context.Context, parentID int) ([]models.Category, error)
	// Method GetDescendantIDs returns the category itself and all categories below it.
	GetDescendantIDs(ctx context.Context, rootID int) ([]int, error)
}

// CourseRepository is the interface that wraps methods for courses table data access
type CourseRepository interface {
	GetAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// Method GetByID retrieves a course, models.ErrNotFound is returned if it does not exist.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	GetRelated(ctx context.Context, categoryID, excludeID, limit int) ([]models.Course, error)
}

// ContentRepository reads the live chapters, videos and materials of a course
type ContentRepository interface {
	GetActiveChapters(ctx context.Context, courseID int) ([]models.Chapter, error)
	GetActiveVideos(ctx context.Context, courseID int) ([]models.Video, error)
	GetActiveMaterials(ctx context.Context, courseID int) ([]models.Material, error)
}

// ReviewRepository is the interface that wraps methods for course_reviews table data access
type ReviewRepository interface {
	GetActiveByCourse(ctx context.Context, courseID int) ([]models.Review, error)
	// Method Create inserts an inactive review, models.ErrAlreadyExists is returned on a duplicate.
	Create(ctx context.Context, review *models.Review) error
	Approve(ctx context.Context, id int) error
}

// QuizRepository is the interface that wraps methods for quiz and question data access
type QuizRepository interface {
	// Method GetActiveByCourse returns the active quiz of a course or models.ErrNotFound.
	GetActiveByCourse(ctx context.Context, courseID int) (*models.Quiz, error)
	GetActiveQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error)
	GetQuestionsByIDs(ctx context.Context, quizID int, ids []models.QuestionID) ([]models.QuizQuestion, error)
}

type catalogueService struct {
	categoryRepo CategoryRepository
	courseRepo   CourseRepository
	contentRepo  ContentRepository
	reviewRepo   ReviewRepository
	quizRepo     QuizRepository
}

// NewCatalogueService creates a new catalogue service
func NewCatalogueService(
	categoryRepo CategoryRepository,
	courseRepo CourseRepository,
	contentRepo ContentRepository,
	reviewRepo ReviewRepository,
	quizRepo QuizRepository,
) *catalogueService {
	return &catalogueService{
		categoryRepo: categoryRepo,
		courseRepo:   courseRepo,
		contentRepo:  contentRepo,
		reviewRepo:   reviewRepo,
		quizRepo:     quizRepo,
	}
}

// GetMainCategories returns root categories with course counts
func (s *catalogueService) GetMainCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	return s.categoryRepo.GetMainWithCourseCount(ctx)
}

// GetSubcategories returns the children of an existing category
func (s *catalogueService) GetSubcategories(ctx context.Context, parentID int) ([]models.Category, error) {
	if _, err := s.categoryRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetChildren(ctx, parentID)
}

// ListCourses returns the catalogue filtered by category, search text and popularity.
// A main category covers every category below it.
func (s *catalogueService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.CategoryIDs = nil

	if filter.MainCategoryID > 0 {
		ids, err := s.categoryRepo.GetDescendantIDs(ctx, filter.MainCategoryID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []models.Course{}, nil
		}
		filter.CategoryIDs = ids
	}

	return s.courseRepo.GetAll(ctx, filter)
}

// GetPopular returns the courses marked popular
func (s *catalogueService) GetPopular(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.GetAll(ctx, models.CourseFilter{PopularOnly: true})
}

// GetCourseDetail builds the public course page
func (s *catalogueService) GetCourseDetail(ctx context.Context, courseID int) (*models.CourseDetail, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	chapters, err := s.contentRepo.GetActiveChapters(ctx, courseID)
	if err != nil {
		return nil, err
	}
	videos, err := s.contentRepo.GetActiveVideos(ctx, courseID)
	if err != nil {
		return nil, err
	}
	materials, err := s.contentRepo.GetActiveMaterials(ctx, courseID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.GetActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	related, err := s.courseRepo.GetRelated(ctx, course.CategoryID, course.ID, relatedCoursesLimit)
	if err != nil {
		return nil, err
	}

	hasQuiz := true
	if _, err := s.quizRepo.GetActiveByCourse(ctx, courseID); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to check course quiz: %w", err)
		}
		hasQuiz = false
	}

	detail := &models.CourseDetail{
		Course:         *course,
		Chapters:       groupChapterContent(chapters, videos, materials),
		TotalLessons:   len(videos),
		AverageRating:  averageRating(reviews),
		Reviews:        reviews,
		RelatedCourses: related,
		HasQuiz:        hasQuiz,
	}

	totalSeconds := 0
	for _, v := range videos {
		totalSeconds += v.DurationSeconds
	}
	detail.TotalDurationHours, detail.TotalDurationMinutes = splitDuration(totalSeconds)

	return detail, nil
}

func groupChapterContent(chapters []models.Chapter, videos []models.Video, materials []models.Material) []models.ChapterContent {
	index := make(map[int]int, len(chapters))
	result := make([]models.ChapterContent, len(chapters))
	for i, ch := range chapters {
		index[ch.ID] = i
		result[i] = models.ChapterContent{
			Chapter:   ch,
			Videos:    []models.Video{},
			Materials: []models.Material{},
		}
	}

	for _, v := range videos {
		if i, ok := index[v.ChapterID]; ok {
			result[i].Videos = append(result[i].Videos, v)
		}
	}
	for _, m := range materials {
		if i, ok := index[m.ChapterID]; ok {
			result[i].Materials = append(result[i].Materials, m)
		}
	}

	return result
}

// splitDuration converts seconds into whole hours and remaining minutes
func splitDuration(seconds int) (int, int) {
	return seconds / 3600, (seconds % 3600) / 60
}

func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}
