package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

// orderedContentRepository manages the per-order copies of course content
type orderedContentRepository struct {
	db *sql.DB
}

// NewOrderedContentRepository creates a new ordered content repository
func NewOrderedContentRepository(db *sql.DB) *orderedContentRepository {
	return &orderedContentRepository{
		db: db,
	}
}

// Snapshot copies every active chapter, video and material of the course into the order.
// Rows already copied are skipped via the (order, source) unique keys, so a repeated call
// only fills the gaps of an interrupted copy. Copies take the given accessibility.
func (r *orderedContentRepository) Snapshot(ctx context.Context, orderID, courseID int, accessible bool) (int, error) {
	statements := []struct {
		name  string
		query string
		args  []any
	}{
		{
			name: "chapters",
			query: `
				INSERT IGNORE INTO ordered_chapters (order_id, source_chapter_id, title, description, position, is_accessible)
				SELECT ?, ch.id, ch.title, ch.description, ch.position, ?
				FROM course_chapters ch
				WHERE ch.course_id = ? AND ch.is_active = TRUE
			`,
			args: []any{orderID, accessible, courseID},
		},
		{
			name: "videos",
			query: `
				INSERT IGNORE INTO ordered_videos (order_id, ordered_chapter_id, source_video_id, title, description,
					video_file, duration_seconds, is_free, position, is_accessible)
				SELECT ?, oc.id, v.id, v.title, v.description, v.video_file, v.duration_seconds, v.is_free, v.position, ?
				FROM course_videos v
				JOIN course_chapters ch ON ch.id = v.chapter_id
				JOIN ordered_chapters oc ON oc.order_id = ? AND oc.source_chapter_id = ch.id
				WHERE ch.course_id = ? AND ch.is_active = TRUE AND v.is_active = TRUE
			`,
			args: []any{orderID, accessible, orderID, courseID},
		},
		{
			name: "materials",
			query: `
				INSERT IGNORE INTO ordered_materials (order_id, ordered_chapter_id, source_material_id, title, description,
					material_type, file, is_free, position, is_accessible)
				SELECT ?, oc.id, m.id, m.title, m.description, m.material_type, m.file, m.is_free, m.position, ?
				FROM course_materials m
				JOIN course_chapters ch ON ch.id = m.chapter_id
				JOIN ordered_chapters oc ON oc.order_id = ? AND oc.source_chapter_id = ch.id
				WHERE ch.course_id = ? AND ch.is_active = TRUE AND m.is_active = TRUE
			`,
			args: []any{orderID, accessible, orderID, courseID},
		},
	}

	copied := 0
	for _, stmt := range statements {
		result, err := r.db.ExecContext(ctx, stmt.query, stmt.args...)
		if err != nil {
			return copied, fmt.Errorf("failed to copy ordered %s: %w", stmt.name, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return copied, fmt.Errorf("failed to get rows affected: %w", err)
		}
		copied += int(n)
	}

	return copied, nil
}

// GrantAccess flips the accessibility flag of every copied record of the order
func (r *orderedContentRepository) GrantAccess(ctx context.Context, orderID int) error {
	for _, table := range []string{"ordered_chapters", "ordered_videos", "ordered_materials"} {
		query := fmt.Sprintf(`UPDATE %s SET is_accessible = TRUE WHERE order_id = ?`, table)
		if _, err := r.db.ExecContext(ctx, query, orderID); err != nil {
			return fmt.Errorf("failed to grant access to %s: %w", table, err)
		}
	}

	return nil
}

// GetChapters returns the copied chapters of an order by position
func (r *orderedContentRepository) GetChapters(ctx context.Context, orderID int) ([]models.OrderedChapter, error) {
	query := `
		SELECT id, order_id, source_chapter_id, title, description, position, is_accessible
		FROM ordered_chapters
		WHERE order_id = ?
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ordered chapters: %w", err)
	}
	defer rows.Close()

	chapters := []models.OrderedChapter{}
	for rows.Next() {
		var ch models.OrderedChapter
		if err := rows.Scan(&ch.ID, &ch.OrderID, &ch.SourceChapterID, &ch.Title, &ch.Description, &ch.Position, &ch.Granted); err != nil {
			return nil, fmt.Errorf("failed to scan ordered chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return chapters, nil
}

// GetVideos returns the copied videos of an order by position
func (r *orderedContentRepository) GetVideos(ctx context.Context, orderID int) ([]models.OrderedVideo, error) {
	query := `
		SELECT id, order_id, ordered_chapter_id, source_video_id, title, description, video_file,
			duration_seconds, is_free, position, is_accessible
		FROM ordered_videos
		WHERE order_id = ?
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ordered videos: %w", err)
	}
	defer rows.Close()

	videos := []models.OrderedVideo{}
	for rows.Next() {
		var v models.OrderedVideo
		var chapterID sql.NullInt64
		err := rows.Scan(
			&v.ID,
			&v.OrderID,
			&chapterID,
			&v.SourceVideoID,
			&v.Title,
			&v.Description,
			&v.VideoFile,
			&v.DurationSeconds,
			&v.IsFree,
			&v.Position,
			&v.Granted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ordered video: %w", err)
		}
		v.OrderedChapterID = nullIntPtr(chapterID)
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return videos, nil
}

// GetMaterials returns the copied materials of an order by position
func (r *orderedContentRepository) GetMaterials(ctx context.Context, orderID int) ([]models.OrderedMaterial, error) {
	query := `
		SELECT id, order_id, ordered_chapter_id, source_material_id, title, description, material_type,
			file, is_free, position, is_accessible
		FROM ordered_materials
		WHERE order_id = ?
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ordered materials: %w", err)
	}
	defer rows.Close()

	materials := []models.OrderedMaterial{}
	for rows.Next() {
		var m models.OrderedMaterial
		var chapterID sql.NullInt64
		err := rows.Scan(
			&m.ID,
			&m.OrderID,
			&chapterID,
			&m.SourceMaterialID,
			&m.Title,
			&m.Description,
			&m.MaterialType,
			&m.File,
			&m.IsFree,
			&m.Position,
			&m.Granted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ordered material: %w", err)
		}
		m.OrderedChapterID = nullIntPtr(chapterID)
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return materials, nil
}

// GetVideoOwner resolves the order and chapter an ordered video belongs to
func (r *orderedContentRepository) GetVideoOwner(ctx context.Context, videoID int) (*models.OrderedVideoOwner, error) {
	query := `
		SELECT v.id, v.order_id, o.user_id, v.ordered_chapter_id
		FROM ordered_videos v
		JOIN course_orders o ON o.id = v.order_id
		WHERE v.id = ?
		LIMIT 1
	`

	var owner models.OrderedVideoOwner
	var userID, chapterID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, videoID).Scan(&owner.VideoID, &owner.OrderID, &userID, &chapterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: video", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video owner: %w", err)
	}
	owner.OrderUserID = nullIntPtr(userID)
	owner.OrderedChapterID = nullIntPtr(chapterID)

	return &owner, nil
}
