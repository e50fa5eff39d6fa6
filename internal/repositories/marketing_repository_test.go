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
)

func TestFAQRepository_GetActive(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		setupMock func(sqlmock.Sqlmock)
	}{
		{
			name: "all categories",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, question, answer, category, position FROM faqs WHERE is_active = TRUE ORDER BY position, id`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "question", "answer", "category", "position"}).
						AddRow(1, "How to pay?", "By invoice", "general", 0))
			},
		},
		{
			name:     "one category",
			category: "payment",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE is_active = TRUE AND category = \?`).
					WithArgs("payment").
					WillReturnRows(sqlmock.NewRows([]string{"id", "question", "answer", "category", "position"}).
						AddRow(1, "How to pay?", "By invoice", "payment", 0))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()
			repo := NewFAQRepository(db)

			tt.setupMock(mock)

			faqs, err := repo.GetActive(context.Background(), tt.category)

			require.NoError(t, err)
			assert.Len(t, faqs, 1)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBlogRepository_GetActive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`FROM blogs WHERE is_active = TRUE ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "image", "created_at"}).
			AddRow(3, "News", "text", "", time.Now()))

	blogs, err := repo.GetActive(context.Background(), 2, 10)

	require.NoError(t, err)
	assert.Len(t, blogs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var documentRowColumns = []string{"id", "title", "description", "file", "file_type", "file_size", "download_count", "position"}

func TestDocumentRepository_GetActive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`FROM documents WHERE is_active = TRUE ORDER BY position, id`).
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow(1, "License", "", "documents/license.pdf", "pdf", 2048, 3, 0))

	docs, err := repo.GetActive(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(2048), docs[0].FileSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_GetActiveByID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`FROM documents WHERE id = \? AND is_active = TRUE`).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	doc, err := repo.GetActiveByID(context.Background(), 1)

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_IncrementDownloads(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec(`UPDATE documents SET download_count = download_count \+ 1 WHERE id = \?`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.IncrementDownloads(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

var referralRowColumns = []string{"id", "first_name", "last_name", "email", "phone", "promo_code", "referral_link",
	"referred_by_id", "referred_by_name", "referred_by_email", "is_active", "created_at"}

func TestReferralRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO referral_requests`).
					WithArgs("Aida", "Nur", "aida@example.com", "+77010000000", "AB12CD34", "http://localhost/referral/AB12CD34/",
						nil, nil, nil, true).
					WillReturnResult(sqlmock.NewResult(2, 1))
			},
		},
		{
			name: "email already registered",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO referral_requests`).
					WillReturnError(duplicateEntryError())
			},
			expectedError: models.ErrAlreadyExists,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO referral_requests`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: errors.New("failed to create referral"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()
			repo := NewReferralRepository(db)

			tt.setupMock(mock)
			ref := &models.Referral{
				FirstName:    "Aida",
				LastName:     "Nur",
				Email:        "aida@example.com",
				Phone:        "+77010000000",
				PromoCode:    "AB12CD34",
				ReferralLink: "http://localhost/referral/AB12CD34/",
				IsActive:     true,
			}

			err := repo.Create(context.Background(), ref)

			switch {
			case tt.expectedError == nil:
				require.NoError(t, err)
				assert.Equal(t, 2, ref.ID)
			case errors.Is(tt.expectedError, models.ErrAlreadyExists):
				assert.ErrorIs(t, err, models.ErrAlreadyExists)
			default:
				assert.ErrorContains(t, err, tt.expectedError.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReferralRepository_GetActiveByPromoCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewReferralRepository(db)

		mock.ExpectQuery(`FROM referral_requests WHERE promo_code = \? AND is_active = TRUE`).
			WithArgs("AB12CD34").
			WillReturnRows(sqlmock.NewRows(referralRowColumns).
				AddRow(2, "Aida", "Nur", "aida@example.com", "+77010000000", "AB12CD34", "link", 1, "Bek Ali", "bek@example.com", true, time.Now()))

		ref, err := repo.GetActiveByPromoCode(context.Background(), "AB12CD34")

		require.NoError(t, err)
		assert.Equal(t, "Aida Nur", ref.FullName())
		require.NotNil(t, ref.ReferredByID)
		assert.Equal(t, "Bek Ali", ref.ReferredByName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown code", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewReferralRepository(db)

		mock.ExpectQuery(`FROM referral_requests WHERE promo_code = \?`).
			WithArgs("NOPE").
			WillReturnError(sql.ErrNoRows)

		ref, err := repo.GetActiveByPromoCode(context.Background(), "NOPE")

		assert.Nil(t, ref)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReferralRepository_GetByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewReferralRepository(db)

	mock.ExpectQuery(`FROM referral_requests WHERE email = \?`).
		WithArgs("aida@example.com").
		WillReturnRows(sqlmock.NewRows(referralRowColumns).
			AddRow(2, "Aida", "Nur", "aida@example.com", "+77010000000", "AB12CD34", "link", nil, nil, nil, true, time.Now()))

	ref, err := repo.GetByEmail(context.Background(), "aida@example.com")

	require.NoError(t, err)
	assert.Nil(t, ref.ReferredByID)
	assert.Empty(t, ref.ReferredByEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferralRepository_PromoCodeExists(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewReferralRepository(db)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM referral_requests WHERE promo_code = \?\)`).
		WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.PromoCodeExists(context.Background(), "AB12CD34")

	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferralRepository_SetReferrer(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewReferralRepository(db)

	mock.ExpectExec(`UPDATE referral_requests SET referred_by_id = \?, referred_by_name = \?, referred_by_email = \? WHERE id = \?`).
		WithArgs(1, "Bek Ali", "bek@example.com", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetReferrer(context.Background(), 2, &models.Referral{ID: 1, FirstName: "Bek", LastName: "Ali", Email: "bek@example.com"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferralRepository_GetActiveDiscount(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewReferralRepository(db)

		mock.ExpectQuery(`SELECT percentage FROM referral_discounts WHERE is_active = TRUE`).
			WillReturnRows(sqlmock.NewRows([]string{"percentage"}).AddRow("10.00"))

		discount, err := repo.GetActiveDiscount(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 10.0, discount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none configured", func(t *testing.T) {
		db, mock, cleanup := newMockDB(t)
		defer cleanup()
		repo := NewReferralRepository(db)

		mock.ExpectQuery(`SELECT percentage FROM referral_discounts`).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetActiveDiscount(context.Background())

		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
