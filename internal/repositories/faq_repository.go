package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type faqRepository struct {
	db *sql.DB
}

// NewFAQRepository creates a new FAQ repository
func NewFAQRepository(db *sql.DB) *faqRepository {
	return &faqRepository{
		db: db,
	}
}

// GetActive returns published questions, optionally of one category
func (r *faqRepository) GetActive(ctx context.Context, category string) ([]models.FAQ, error) {
	query := `SELECT id, question, answer, category, position FROM faqs WHERE is_active = TRUE`
	args := []any{}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY position, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query faqs: %w", err)
	}
	defer rows.Close()

	faqs := []models.FAQ{}
	for rows.Next() {
		var faq models.FAQ
		if err := rows.Scan(&faq.ID, &faq.Question, &faq.Answer, &faq.Category, &faq.Position); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		faqs = append(faqs, faq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return faqs, nil
}
