package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB) *categoryRepository {
	return &categoryRepository{
		db: db,
	}
}

// GetMainWithCourseCount returns root categories with the number of courses
// in each root and all of its descendants
func (r *categoryRepository) GetMainWithCourseCount(ctx context.Context) ([]models.CategoryWithCount, error) {
	query := `
		WITH RECURSIVE tree AS (
			SELECT id, id AS root_id FROM categories WHERE parent_id IS NULL
			UNION ALL
			SELECT c.id, t.root_id FROM categories c JOIN tree t ON c.parent_id = t.id
		)
		SELECT r.id, r.name, r.icon, COUNT(co.id) AS total_courses
		FROM categories r
		LEFT JOIN tree t ON t.root_id = r.id
		LEFT JOIN courses co ON co.category_id = t.id
		WHERE r.parent_id IS NULL
		GROUP BY r.id, r.name, r.icon
		ORDER BY r.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query main categories: %w", err)
	}
	defer rows.Close()

	categories := []models.CategoryWithCount{}
	for rows.Next() {
		var category models.CategoryWithCount
		if err := rows.Scan(&category.ID, &category.Name, &category.Icon, &category.TotalCourses); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// GetByID retrieves a category by its ID
func (r *categoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	query := `SELECT id, name, icon, parent_id FROM categories WHERE id = ? LIMIT 1`

	var category models.Category
	var parentID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name, &category.Icon, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	category.ParentID = nullIntPtr(parentID)

	return &category, nil
}

// GetChildren returns the direct subcategories of a category
func (r *categoryRepository) GetChildren(ctx context.Context, parentID int) ([]models.Category, error) {
	query := `SELECT id, name, icon, parent_id FROM categories WHERE parent_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		var parent sql.NullInt64
		if err := rows.Scan(&category.ID, &category.Name, &category.Icon, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		category.ParentID = nullIntPtr(parent)
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// GetDescendantIDs returns the ID of the category and of all categories below it
func (r *categoryRepository) GetDescendantIDs(ctx context.Context, rootID int) ([]int, error) {
	query := `
		WITH RECURSIVE tree AS (
			SELECT id FROM categories WHERE id = ?
			UNION ALL
			SELECT c.id FROM categories c JOIN tree t ON c.parent_id = t.id
		)
		SELECT id FROM tree
	`

	return queryIDs(ctx, r.db, query, rootID)
}
