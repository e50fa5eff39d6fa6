package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

// contentRepository reads the live chapters, videos and materials of courses
type contentRepository struct {
	db *sql.DB
}

// NewContentRepository creates a new live course content repository
func NewContentRepository(db *sql.DB) *contentRepository {
	return &contentRepository{
		db: db,
	}
}

// GetActiveChapters returns active chapters of a course by position
func (r *contentRepository) GetActiveChapters(ctx context.Context, courseID int) ([]models.Chapter, error) {
	query := `
		SELECT id, course_id, title, description, position, is_active
		FROM course_chapters
		WHERE course_id = ? AND is_active = TRUE
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	chapters := []models.Chapter{}
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Description, &ch.Position, &ch.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return chapters, nil
}

// GetActiveVideos returns active videos of active chapters of a course
func (r *contentRepository) GetActiveVideos(ctx context.Context, courseID int) ([]models.Video, error) {
	query := `
		SELECT v.id, v.chapter_id, v.title, v.description, v.video_file, v.duration_seconds, v.is_free, v.position, v.is_active
		FROM course_videos v
		JOIN course_chapters ch ON ch.id = v.chapter_id
		WHERE ch.course_id = ? AND ch.is_active = TRUE AND v.is_active = TRUE
		ORDER BY ch.position, v.position, v.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		var v models.Video
		err := rows.Scan(
			&v.ID,
			&v.ChapterID,
			&v.Title,
			&v.Description,
			&v.VideoFile,
			&v.DurationSeconds,
			&v.IsFree,
			&v.Position,
			&v.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return videos, nil
}

// GetActiveMaterials returns active materials of active chapters of a course
func (r *contentRepository) GetActiveMaterials(ctx context.Context, courseID int) ([]models.Material, error) {
	query := `
		SELECT m.id, m.chapter_id, m.title, m.description, m.material_type, m.file, m.is_free, m.position, m.is_active
		FROM course_materials m
		JOIN course_chapters ch ON ch.id = m.chapter_id
		WHERE ch.course_id = ? AND ch.is_active = TRUE AND m.is_active = TRUE
		ORDER BY ch.position, m.position, m.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	materials := []models.Material{}
	for rows.Next() {
		var m models.Material
		err := rows.Scan(
			&m.ID,
			&m.ChapterID,
			&m.Title,
			&m.Description,
			&m.MaterialType,
			&m.File,
			&m.IsFree,
			&m.Position,
			&m.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return materials, nil
}
