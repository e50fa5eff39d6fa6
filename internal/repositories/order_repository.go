package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
	"go.uber.org/zap"
)

// orderRepository implements OrderRepository
type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderSelect = `
	SELECT o.id, o.user_id, o.course_id, c.name, o.sender, o.order_date, o.is_active, o.is_completed, o.notes
	FROM course_orders o
	JOIN courses c ON c.id = o.course_id
`

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var order models.Order
	var userID sql.NullInt64
	err := row.Scan(
		&order.ID,
		&userID,
		&order.CourseID,
		&order.CourseName,
		&order.Sender,
		&order.OrderDate,
		&order.IsActive,
		&order.IsCompleted,
		&order.Notes,
	)
	order.UserID = nullIntPtr(userID)
	return order, err
}

// Create inserts a new pending order. The (sender, course) unique key rejects duplicates.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO course_orders (user_id, course_id, sender, is_active, is_completed, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		intPtrArg(order.UserID), order.CourseID, order.Sender, order.IsActive, order.IsCompleted, order.Notes,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: order for %s", models.ErrAlreadyExists, order.Sender)
		}
		r.logger.Error("failed to create order", zap.Error(err), zap.Int("courseID", order.CourseID))
		return fmt.Errorf("failed to create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	order.ID = int(id)
	return nil
}

// ExistsBySenderAndCourse checks whether the email already ordered the course
func (r *orderRepository) ExistsBySenderAndCourse(ctx context.Context, sender string, courseID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM course_orders WHERE sender = ? AND course_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, sender, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}

	return exists, nil
}

// GetByID retrieves an order with its course name
func (r *orderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	query := orderSelect + " WHERE o.id = ? LIMIT 1"

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order", models.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get order by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	return &order, nil
}

// GetByUser returns all orders of a user, newest first
func (r *orderRepository) GetByUser(ctx context.Context, userID int) ([]models.Order, error) {
	query := orderSelect + " WHERE o.user_id = ? ORDER BY o.order_date DESC, o.id DESC"

	return r.queryOrders(ctx, query, userID)
}

// GetPending returns orders awaiting activation, oldest first
func (r *orderRepository) GetPending(ctx context.Context) ([]models.Order, error) {
	query := orderSelect + " WHERE o.is_active = FALSE ORDER BY o.order_date, o.id"

	return r.queryOrders(ctx, query)
}

// HasActiveOrder checks whether the user holds an active order for the course
func (r *orderRepository) HasActiveOrder(ctx context.Context, userID, courseID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM course_orders
			WHERE user_id = ? AND course_id = ? AND is_active = TRUE
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active order: %w", err)
	}

	return exists, nil
}

// Activate marks the order active
func (r *orderRepository) Activate(ctx context.Context, id int) error {
	query := `UPDATE course_orders SET is_active = TRUE WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to activate order", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to activate order: %w", err)
	}

	return requireAffected(result, "order")
}

// SetUser links an order to an account
func (r *orderRepository) SetUser(ctx context.Context, orderID, userID int) error {
	query := `UPDATE course_orders SET user_id = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, userID, orderID)
	if err != nil {
		return fmt.Errorf("failed to set order user: %w", err)
	}

	return requireAffected(result, "order")
}

// AssignBySender links every unowned order placed with the email to the user.
// It returns the number of linked orders.
func (r *orderRepository) AssignBySender(ctx context.Context, sender string, userID int) (int, error) {
	query := `UPDATE course_orders SET user_id = ? WHERE sender = ? AND user_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, userID, sender)
	if err != nil {
		return 0, fmt.Errorf("failed to assign orders by sender: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return orders, nil
}
