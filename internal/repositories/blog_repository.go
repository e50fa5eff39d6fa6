package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type blogRepository struct {
	db *sql.DB
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *sql.DB) *blogRepository {
	return &blogRepository{
		db: db,
	}
}

// GetActive returns published posts, newest first
func (r *blogRepository) GetActive(ctx context.Context, page, count int) ([]models.Blog, error) {
	query := `
		SELECT id, title, description, image, created_at
		FROM blogs
		WHERE is_active = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	offset := (page - 1) * count

	rows, err := r.db.QueryContext(ctx, query, count, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query blogs: %w", err)
	}
	defer rows.Close()

	blogs := []models.Blog{}
	for rows.Next() {
		var blog models.Blog
		if err := rows.Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Image, &blog.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return blogs, nil
}
