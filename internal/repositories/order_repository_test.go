package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/profactive/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupOrderTestRepository(t *testing.T) (*orderRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := newMockDB(t)

	return NewOrderRepository(db, zap.NewNop()), mock, cleanup
}

var orderRowColumns = []string{"id", "user_id", "course_id", "course_name", "sender", "order_date", "is_active", "is_completed", "notes"}

func TestOrderRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		userID        *int
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectedID    int
	}{
		{
			name: "guest order",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_orders`).
					WithArgs(nil, 1, "buyer@example.com", false, false, "Name: Aida Nur").
					WillReturnResult(sqlmock.NewResult(11, 1))
			},
			expectedID: 11,
		},
		{
			name:   "authenticated order",
			userID: func() *int { id := 4; return &id }(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_orders`).
					WithArgs(4, 1, "buyer@example.com", false, false, "Name: Aida Nur").
					WillReturnResult(sqlmock.NewResult(12, 1))
			},
			expectedID: 12,
		},
		{
			name: "second order for the same sender and course",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_orders`).
					WillReturnError(duplicateEntryError())
			},
			expectedError: models.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupOrderTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)
			order := &models.Order{UserID: tt.userID, CourseID: 1, Sender: "buyer@example.com", Notes: "Name: Aida Nur"}

			err := repo.Create(context.Background(), order)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, order.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepository_ExistsBySenderAndCourse(t *testing.T) {
	repo, mock, cleanup := setupOrderTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM course_orders WHERE sender = \? AND course_id = \?\)`).
		WithArgs("buyer@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsBySenderAndCourse(context.Background(), "buyer@example.com", 1)

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM course_orders o JOIN courses c ON c.id = o.course_id WHERE o.id = \?`).
					WithArgs(11).
					WillReturnRows(sqlmock.NewRows(orderRowColumns).
						AddRow(11, nil, 1, "VAT basics", "buyer@example.com", time.Now(), true, false, ""))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM course_orders o`).
					WithArgs(11).
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupOrderTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			order, err := repo.GetByID(context.Background(), 11)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Nil(t, order.UserID)
				assert.Equal(t, "VAT basics", order.CourseName)
				assert.Equal(t, models.OrderStatusActive, order.Status())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepository_GetByUser(t *testing.T) {
	repo, mock, cleanup := setupOrderTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE o.user_id = \? ORDER BY o.order_date DESC`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(12, 4, 1, "VAT basics", "buyer@example.com", time.Now(), false, false, "").
			AddRow(13, 4, 2, "Payroll", "buyer@example.com", time.Now(), true, true, ""))

	orders, err := repo.GetByUser(context.Background(), 4)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status())
	assert.Equal(t, models.OrderStatusCompleted, orders[1].Status())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetPending(t *testing.T) {
	repo, mock, cleanup := setupOrderTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE o.is_active = FALSE`).
		WillReturnError(errors.New("database error"))

	orders, err := repo.GetPending(context.Background())

	assert.Nil(t, orders)
	assert.ErrorContains(t, err, "failed to query orders")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_HasActiveOrder(t *testing.T) {
	repo, mock, cleanup := setupOrderTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS\(.+is_active = TRUE`).
		WithArgs(4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	active, err := repo.HasActiveOrder(context.Background(), 4, 1)

	require.NoError(t, err)
	assert.False(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Activate(t *testing.T) {
	tests := []struct {
		name          string
		result        sql.Result
		execErr       error
		expectedError error
	}{
		{name: "success", result: sqlmock.NewResult(0, 1)},
		{name: "unknown order", result: sqlmock.NewResult(0, 0), expectedError: models.ErrNotFound},
		{name: "database error", execErr: errors.New("database error"), expectedError: errors.New("failed to activate order")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupOrderTestRepository(t)
			defer cleanup()

			exp := mock.ExpectExec(`UPDATE course_orders SET is_active = TRUE WHERE id = \?`).WithArgs(11)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.Activate(context.Background(), 11)

			switch {
			case tt.expectedError == nil:
				assert.NoError(t, err)
			case errors.Is(tt.expectedError, models.ErrNotFound):
				assert.ErrorIs(t, err, models.ErrNotFound)
			default:
				assert.ErrorContains(t, err, tt.expectedError.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepository_SetUser(t *testing.T) {
	repo, mock, cleanup := setupOrderTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE course_orders SET user_id = \? WHERE id = \?`).
		WithArgs(4, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetUser(context.Background(), 11, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_AssignBySender(t *testing.T) {
	repo, mock, cleanup := setupOrderTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE course_orders SET user_id = \? WHERE sender = \? AND user_id IS NULL`).
		WithArgs(4, "buyer@example.com").
		WillReturnResult(sqlmock.NewResult(0, 2))

	linked, err := repo.AssignBySender(context.Background(), "buyer@example.com", 4)

	require.NoError(t, err)
	assert.Equal(t, 2, linked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
