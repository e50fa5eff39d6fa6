package services

import (
	"context"
	"strings"

	"github.com/profactive/backend/internal/models"
)

type reviewService struct {
	reviewRepo ReviewRepository
	courseRepo CourseRepository
}

// NewReviewService creates a new review service
func NewReviewService(reviewRepo ReviewRepository, courseRepo CourseRepository) *reviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		courseRepo: courseRepo,
	}
}

// List returns the approved reviews of a course
func (s *reviewService) List(ctx context.Context, courseID int) ([]models.Review, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetActiveByCourse(ctx, courseID)
}

// Create stores a review that stays hidden until an administrator approves it
func (s *reviewService) Create(ctx context.Context, courseID int, userID *int, req *models.CreateReviewRequest) (*models.Review, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Text = strings.TrimSpace(req.Text)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	review := &models.Review{
		CourseID:  courseID,
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Rating:    req.Rating,
		Text:      req.Text,
		IsActive:  false,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Approve publishes a review
func (s *reviewService) Approve(ctx context.Context, reviewID int) error {
	return s.reviewRepo.Approve(ctx, reviewID)
}
