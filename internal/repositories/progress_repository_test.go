package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProgressTestRepository(t *testing.T) (*progressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := newMockDB(t)

	return NewProgressRepository(db), mock, cleanup
}

func TestProgressRepository_MarkVideoWatched(t *testing.T) {
	now := time.Now()

	t.Run("upsert", func(t *testing.T) {
		repo, mock, cleanup := setupProgressTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO user_video_progress .+ ON DUPLICATE KEY UPDATE is_watched = TRUE`).
			WithArgs(4, 1, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, repo.MarkVideoWatched(context.Background(), 4, 1, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupProgressTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO user_video_progress`).
			WillReturnError(errors.New("database error"))

		err := repo.MarkVideoWatched(context.Background(), 4, 1, now)
		assert.ErrorContains(t, err, "failed to mark video watched")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProgressRepository_MarkChapterCompleted(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectExec(`INSERT INTO user_chapter_progress .+ ON DUPLICATE KEY UPDATE is_completed = TRUE`).
		WithArgs(4, 2, now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	assert.NoError(t, repo.MarkChapterCompleted(context.Background(), 4, 2, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_CountChapterVideos(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`FROM ordered_videos v LEFT JOIN user_video_progress p .+ WHERE v.ordered_chapter_id = \?`).
		WithArgs(4, 2).
		WillReturnRows(sqlmock.NewRows([]string{"total", "watched"}).AddRow(3, 2))

	total, watched, err := repo.CountChapterVideos(context.Background(), 4, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, watched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_CountOrderVideos(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE v.order_id = \? AND v.is_accessible = TRUE`).
		WithArgs(4, 11).
		WillReturnRows(sqlmock.NewRows([]string{"total", "watched"}).AddRow(5, 5))

	total, watched, err := repo.CountOrderVideos(context.Background(), 4, 11)

	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 5, watched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_GetWatchedVideoIDs(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT p.video_id FROM user_video_progress p`).
		WithArgs(4, 11).
		WillReturnRows(sqlmock.NewRows([]string{"video_id"}).AddRow(1).AddRow(2))

	ids, err := repo.GetWatchedVideoIDs(context.Background(), 4, 11)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_GetCompletedChapterIDs(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT p.chapter_id FROM user_chapter_progress p`).
		WithArgs(4, 11).
		WillReturnError(errors.New("database error"))

	ids, err := repo.GetCompletedChapterIDs(context.Background(), 4, 11)

	assert.Nil(t, ids)
	assert.ErrorContains(t, err, "failed to query ids")
	assert.NoError(t, mock.ExpectationsWereMet())
}
