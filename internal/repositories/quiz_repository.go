package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// GetActiveByCourse returns the active quiz of a course
func (r *quizRepository) GetActiveByCourse(ctx context.Context, courseID int) (*models.Quiz, error) {
	query := `
		SELECT id, course_id, title, description, passing_score, time_limit, questions_count, is_active
		FROM course_quizzes
		WHERE course_id = ? AND is_active = TRUE
		ORDER BY id
		LIMIT 1
	`

	var quiz models.Quiz
	err := r.db.QueryRowContext(ctx, query, courseID).Scan(
		&quiz.ID,
		&quiz.CourseID,
		&quiz.Title,
		&quiz.Description,
		&quiz.PassingScore,
		&quiz.TimeLimit,
		&quiz.QuestionsCount,
		&quiz.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: quiz", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by course: %w", err)
	}

	return &quiz, nil
}

const questionSelect = `
	SELECT id, quiz_id, text, option_a, option_b, option_c, correct_answer, explanation, position, is_active
	FROM quiz_questions
`

// GetActiveQuestions returns the active question pool of a quiz
func (r *quizRepository) GetActiveQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error) {
	query := questionSelect + " WHERE quiz_id = ? AND is_active = TRUE ORDER BY position, id"

	return r.queryQuestions(ctx, query, quizID)
}

// GetQuestionsByIDs returns the questions of the quiz with the given IDs. Unknown IDs are ignored.
func (r *quizRepository) GetQuestionsByIDs(ctx context.Context, quizID int, ids []models.QuestionID) ([]models.QuizQuestion, error) {
	if len(ids) == 0 {
		return []models.QuizQuestion{}, nil
	}

	args := []any{quizID}
	for _, id := range ids {
		args = append(args, int(id))
	}
	query := questionSelect + " WHERE quiz_id = ? AND id IN (" + placeholders(len(ids)) + ") ORDER BY position, id"

	return r.queryQuestions(ctx, query, args...)
}

func (r *quizRepository) queryQuestions(ctx context.Context, query string, args ...any) ([]models.QuizQuestion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.QuizQuestion{}
	for rows.Next() {
		var q models.QuizQuestion
		err := rows.Scan(
			&q.ID,
			&q.QuizID,
			&q.Text,
			&q.OptionA,
			&q.OptionB,
			&q.OptionC,
			&q.CorrectAnswer,
			&q.Explanation,
			&q.Position,
			&q.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}
