package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type documentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB) *documentRepository {
	return &documentRepository{
		db: db,
	}
}

const documentSelect = `
	SELECT id, title, description, file, file_type, file_size, download_count, position
	FROM documents
`

func scanDocument(row interface{ Scan(...any) error }) (models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.File,
		&doc.FileType,
		&doc.FileSize,
		&doc.DownloadCount,
		&doc.Position,
	)
	return doc, err
}

// GetActive returns published documents by position
func (r *documentRepository) GetActive(ctx context.Context) ([]models.Document, error) {
	query := documentSelect + " WHERE is_active = TRUE ORDER BY position, id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return docs, nil
}

// GetActiveByID returns a published document
func (r *documentRepository) GetActiveByID(ctx context.Context, id int) (*models.Document, error) {
	query := documentSelect + " WHERE id = ? AND is_active = TRUE LIMIT 1"

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document by id: %w", err)
	}

	return &doc, nil
}

// IncrementDownloads bumps the download counter of a document
func (r *documentRepository) IncrementDownloads(ctx context.Context, id int) error {
	query := `UPDATE documents SET download_count = download_count + 1 WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment downloads: %w", err)
	}

	return requireAffected(result, "document")
}
