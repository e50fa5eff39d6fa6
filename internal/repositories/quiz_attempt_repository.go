package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type quizAttemptRepository struct {
	db *sql.DB
}

// NewQuizAttemptRepository creates a new quiz attempt repository
func NewQuizAttemptRepository(db *sql.DB) *quizAttemptRepository {
	return &quizAttemptRepository{
		db: db,
	}
}

const attemptColumns = `a.id, a.user_id, a.quiz_id, a.answers, a.score, a.percentage, a.is_passed,
	a.is_completed, a.started_at, a.completed_at, a.time_taken`

func scanAttempt(row interface{ Scan(...any) error }, extra ...any) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	var answers []byte
	var completedAt sql.NullTime
	dest := []any{
		&attempt.ID,
		&attempt.UserID,
		&attempt.QuizID,
		&answers,
		&attempt.Score,
		&attempt.Percentage,
		&attempt.IsPassed,
		&attempt.IsCompleted,
		&attempt.StartedAt,
		&completedAt,
		&attempt.TimeTaken,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attempt, err
	}
	if completedAt.Valid {
		attempt.CompletedAt = &completedAt.Time
	}
	attempt.Answers = models.Answers{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
			return attempt, fmt.Errorf("failed to decode answers: %w", err)
		}
	}
	return attempt, nil
}

// Create inserts a new attempt with empty answers
func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	query := `
		INSERT INTO quiz_attempts (user_id, quiz_id, answers, started_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, attempt.UserID, attempt.QuizID, "{}", attempt.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	attempt.ID = int(id)
	attempt.Answers = models.Answers{}
	return nil
}

// GetLatest returns the most recently started attempt of the user for the quiz
func (r *quizAttemptRepository) GetLatest(ctx context.Context, userID, quizID int) (*models.QuizAttempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM quiz_attempts a
		WHERE a.user_id = ? AND a.quiz_id = ?
		ORDER BY a.started_at DESC, a.id DESC
		LIMIT 1
	`

	attempt, err := scanAttempt(r.db.QueryRowContext(ctx, query, userID, quizID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}

	return &attempt, nil
}

// Complete stores the scored answers of an open attempt.
// An attempt completed by a concurrent submit is reported as models.ErrAlreadyExists.
func (r *quizAttemptRepository) Complete(ctx context.Context, attempt *models.QuizAttempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	query := `
		UPDATE quiz_attempts
		SET answers = ?, score = ?, percentage = ?, is_passed = ?, is_completed = TRUE, completed_at = ?, time_taken = ?
		WHERE id = ? AND is_completed = FALSE
	`

	result, err := r.db.ExecContext(ctx, query,
		string(answers), attempt.Score, attempt.Percentage, attempt.IsPassed, attempt.CompletedAt, attempt.TimeTaken, attempt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete quiz attempt: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: attempt already completed", models.ErrAlreadyExists)
	}

	return nil
}

// HasPassed checks whether the user holds a passing attempt for the quiz
func (r *quizAttemptRepository) HasPassed(ctx context.Context, userID, quizID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM quiz_attempts WHERE user_id = ? AND quiz_id = ? AND is_passed = TRUE)`

	var passed bool
	if err := r.db.QueryRowContext(ctx, query, userID, quizID).Scan(&passed); err != nil {
		return false, fmt.Errorf("failed to check passed attempt: %w", err)
	}

	return passed, nil
}

// GetCompletedByUser lists the completed attempts of a user with their courses, newest first
func (r *quizAttemptRepository) GetCompletedByUser(ctx context.Context, userID int) ([]models.QuizDashboardItem, error) {
	query := `SELECT ` + attemptColumns + `, q.title, c.id, c.name
		FROM quiz_attempts a
		JOIN course_quizzes q ON q.id = a.quiz_id
		JOIN courses c ON c.id = q.course_id
		WHERE a.user_id = ? AND a.is_completed = TRUE
		ORDER BY a.completed_at DESC, a.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed attempts: %w", err)
	}
	defer rows.Close()

	items := []models.QuizDashboardItem{}
	for rows.Next() {
		var item models.QuizDashboardItem
		attempt, err := scanAttempt(rows, &item.QuizTitle, &item.CourseID, &item.CourseName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		item.Attempt = attempt
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}
