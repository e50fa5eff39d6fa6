package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type certificateRepository struct {
	db *sql.DB
}

// NewCertificateRepository creates a new quiz certificate repository
func NewCertificateRepository(db *sql.DB) *certificateRepository {
	return &certificateRepository{
		db: db,
	}
}

// CreateIfAbsent inserts the certificate unless the user already has one for the quiz.
// It reports whether a new row was written.
func (r *certificateRepository) CreateIfAbsent(ctx context.Context, cert *models.QuizCertificate) (bool, error) {
	query := `
		INSERT IGNORE INTO quiz_certificates (user_id, quiz_id, attempt_id, certificate_number, issued_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, cert.UserID, cert.QuizID, cert.AttemptID, cert.CertificateNumber, cert.IssuedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create certificate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert id: %w", err)
	}
	cert.ID = int(id)

	return true, nil
}

// GetByUserAndQuiz returns the certificate of the user for the quiz
func (r *certificateRepository) GetByUserAndQuiz(ctx context.Context, userID, quizID int) (*models.QuizCertificate, error) {
	query := `
		SELECT id, user_id, quiz_id, attempt_id, certificate_number, issued_at
		FROM quiz_certificates
		WHERE user_id = ? AND quiz_id = ?
		LIMIT 1
	`

	var cert models.QuizCertificate
	err := r.db.QueryRowContext(ctx, query, userID, quizID).Scan(
		&cert.ID,
		&cert.UserID,
		&cert.QuizID,
		&cert.AttemptID,
		&cert.CertificateNumber,
		&cert.IssuedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: certificate", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return &cert, nil
}
