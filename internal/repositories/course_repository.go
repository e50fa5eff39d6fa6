package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/profactive/backend/internal/models"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

const courseSelect = `
	SELECT c.id, c.category_id, cat.name, c.name, c.description, c.image, c.author, c.is_popular, c.created_at
	FROM courses c
	JOIN categories cat ON cat.id = c.category_id
`

func scanCourse(row interface{ Scan(...any) error }) (models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID,
		&course.CategoryID,
		&course.CategoryName,
		&course.Name,
		&course.Description,
		&course.Image,
		&course.Author,
		&course.IsPopular,
		&course.CreatedAt,
	)
	return course, err
}

// GetAll retrieves courses matching the filter, newest first
func (r *courseRepository) GetAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var whereClauses []string
	args := []any{}

	if len(filter.CategoryIDs) > 0 {
		whereClauses = append(whereClauses, "c.category_id IN ("+placeholders(len(filter.CategoryIDs))+")")
		for _, id := range filter.CategoryIDs {
			args = append(args, id)
		}
	}

	if filter.SubCategoryID > 0 {
		whereClauses = append(whereClauses, "c.category_id = ?")
		args = append(args, filter.SubCategoryID)
	}

	if filter.Search != "" {
		whereClauses = append(whereClauses, "(c.name LIKE ? OR c.description LIKE ? OR c.author LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	if filter.PopularOnly {
		whereClauses = append(whereClauses, "c.is_popular = TRUE")
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := courseSelect + whereClause + " ORDER BY c.created_at DESC, c.id DESC"

	return r.queryCourses(ctx, query, args...)
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := courseSelect + " WHERE c.id = ? LIMIT 1"

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: course", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return &course, nil
}

// GetRelated returns other courses of the same category
func (r *courseRepository) GetRelated(ctx context.Context, categoryID, excludeID, limit int) ([]models.Course, error) {
	query := courseSelect + " WHERE c.category_id = ? AND c.id <> ? ORDER BY c.created_at DESC LIMIT ?"

	return r.queryCourses(ctx, query, categoryID, excludeID, limit)
}

func (r *courseRepository) queryCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}
