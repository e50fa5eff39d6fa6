package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *reviewRepository {
	return &reviewRepository{
		db: db,
	}
}

// GetActiveByCourse returns approved reviews of a course, newest first
func (r *reviewRepository) GetActiveByCourse(ctx context.Context, courseID int) ([]models.Review, error) {
	query := `
		SELECT id, course_id, user_id, first_name, last_name, rating, text, is_active, created_at
		FROM course_reviews
		WHERE course_id = ? AND is_active = TRUE
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		var userID sql.NullInt64
		err := rows.Scan(
			&review.ID,
			&review.CourseID,
			&userID,
			&review.FirstName,
			&review.LastName,
			&review.Rating,
			&review.Text,
			&review.IsActive,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		review.UserID = nullIntPtr(userID)
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reviews, nil
}

// Create inserts a review awaiting approval
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO course_reviews (course_id, user_id, first_name, last_name, rating, text, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		review.CourseID, intPtrArg(review.UserID), review.FirstName, review.LastName, review.Rating, review.Text, review.IsActive,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: review for this course", models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	review.ID = int(id)
	return nil
}

// Approve makes a review visible on the course page
func (r *reviewRepository) Approve(ctx context.Context, id int) error {
	query := `UPDATE course_reviews SET is_active = TRUE WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to approve review: %w", err)
	}

	return requireAffected(result, "review")
}
