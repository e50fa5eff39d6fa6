package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// progressRepository stores per-user watch and chapter completion rows
type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// MarkVideoWatched upserts the watch row of (user, video). The first watch time is kept.
func (r *progressRepository) MarkVideoWatched(ctx context.Context, userID, videoID int, at time.Time) error {
	query := `
		INSERT INTO user_video_progress (user_id, video_id, is_watched, watched_at)
		VALUES (?, ?, TRUE, ?)
		ON DUPLICATE KEY UPDATE is_watched = TRUE, watched_at = COALESCE(watched_at, VALUES(watched_at))
	`

	if _, err := r.db.ExecContext(ctx, query, userID, videoID, at); err != nil {
		return fmt.Errorf("failed to mark video watched: %w", err)
	}

	return nil
}

// MarkChapterCompleted upserts the completion row of (user, chapter). The first completion time is kept.
func (r *progressRepository) MarkChapterCompleted(ctx context.Context, userID, chapterID int, at time.Time) error {
	query := `
		INSERT INTO user_chapter_progress (user_id, chapter_id, is_completed, completed_at)
		VALUES (?, ?, TRUE, ?)
		ON DUPLICATE KEY UPDATE is_completed = TRUE, completed_at = COALESCE(completed_at, VALUES(completed_at))
	`

	if _, err := r.db.ExecContext(ctx, query, userID, chapterID, at); err != nil {
		return fmt.Errorf("failed to mark chapter completed: %w", err)
	}

	return nil
}

// CountChapterVideos returns how many videos the ordered chapter has and how many the user watched
func (r *progressRepository) CountChapterVideos(ctx context.Context, userID, chapterID int) (total, watched int, err error) {
	query := `
		SELECT COUNT(v.id), COUNT(CASE WHEN p.is_watched = TRUE THEN 1 END)
		FROM ordered_videos v
		LEFT JOIN user_video_progress p ON p.video_id = v.id AND p.user_id = ?
		WHERE v.ordered_chapter_id = ?
	`

	if err := r.db.QueryRowContext(ctx, query, userID, chapterID).Scan(&total, &watched); err != nil {
		return 0, 0, fmt.Errorf("failed to count chapter videos: %w", err)
	}

	return total, watched, nil
}

// CountOrderVideos returns the accessible videos of the order and how many of them the user watched
func (r *progressRepository) CountOrderVideos(ctx context.Context, userID, orderID int) (total, watched int, err error) {
	query := `
		SELECT COUNT(v.id), COUNT(CASE WHEN p.is_watched = TRUE THEN 1 END)
		FROM ordered_videos v
		LEFT JOIN user_video_progress p ON p.video_id = v.id AND p.user_id = ?
		WHERE v.order_id = ? AND v.is_accessible = TRUE
	`

	if err := r.db.QueryRowContext(ctx, query, userID, orderID).Scan(&total, &watched); err != nil {
		return 0, 0, fmt.Errorf("failed to count order videos: %w", err)
	}

	return total, watched, nil
}

// GetWatchedVideoIDs returns the ordered videos of the order the user has watched
func (r *progressRepository) GetWatchedVideoIDs(ctx context.Context, userID, orderID int) ([]int, error) {
	query := `
		SELECT p.video_id
		FROM user_video_progress p
		JOIN ordered_videos v ON v.id = p.video_id
		WHERE p.user_id = ? AND v.order_id = ? AND p.is_watched = TRUE
	`

	return queryIDs(ctx, r.db, query, userID, orderID)
}

// GetCompletedChapterIDs returns the ordered chapters of the order the user has completed
func (r *progressRepository) GetCompletedChapterIDs(ctx context.Context, userID, orderID int) ([]int, error) {
	query := `
		SELECT p.chapter_id
		FROM user_chapter_progress p
		JOIN ordered_chapters ch ON ch.id = p.chapter_id
		WHERE p.user_id = ? AND ch.order_id = ? AND p.is_completed = TRUE
	`

	return queryIDs(ctx, r.db, query, userID, orderID)
}
