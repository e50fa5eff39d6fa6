package services

import (
	"slices"

	"github.com/profactive/backend/internal/models"
)

// CourseAccessInput is the state the unlocking rules are evaluated over
type CourseAccessInput struct {
	OrderActive bool
	Chapters    []models.OrderedChapter
	Videos      []models.OrderedVideo
	Materials   []models.OrderedMaterial
	// Watched holds the IDs of ordered videos the user has watched
	Watched map[int]bool
	// CompletedChapters holds the IDs of ordered chapters with a completion row
	CompletedChapters map[int]bool
}

// ComputeCourseAccess evaluates the progressive unlocking rules for one order.
//
// Chapters and videos are walked in ascending position. The first chapter is open
// once the order is active; every next chapter opens when the previous one is complete.
// Inside an open chapter the first video is open and every next video opens when the
// previous one is watched. Materials open after any video of their chapter is watched.
// A chapter is complete when it has videos and all of them are watched, or when a
// completion row was already recorded for it.
func ComputeCourseAccess(in CourseAccessInput) []models.ChapterAccess {
	chapters := slices.Clone(in.Chapters)
	slices.SortStableFunc(chapters, func(a, b models.OrderedChapter) int {
		return a.Position - b.Position
	})

	videosByChapter := make(map[int][]models.OrderedVideo)
	for _, v := range in.Videos {
		if v.OrderedChapterID != nil {
			videosByChapter[*v.OrderedChapterID] = append(videosByChapter[*v.OrderedChapterID], v)
		}
	}
	materialsByChapter := make(map[int][]models.OrderedMaterial)
	for _, m := range in.Materials {
		if m.OrderedChapterID != nil {
			materialsByChapter[*m.OrderedChapterID] = append(materialsByChapter[*m.OrderedChapterID], m)
		}
	}

	result := make([]models.ChapterAccess, 0, len(chapters))
	previousCompleted := false
	for i, ch := range chapters {
		accessible := in.OrderActive && (i == 0 || previousCompleted)

		videos := videosByChapter[ch.ID]
		slices.SortStableFunc(videos, func(a, b models.OrderedVideo) int {
			return a.Position - b.Position
		})

		videoAccess := make([]models.VideoAccess, 0, len(videos))
		watchedCount := 0
		for j, v := range videos {
			watched := in.Watched[v.ID]
			if watched {
				watchedCount++
			}
			videoAccess = append(videoAccess, models.VideoAccess{
				OrderedVideo: v,
				IsAccessible: accessible && (j == 0 || in.Watched[videos[j-1].ID]),
				IsWatched:    watched,
			})
		}

		materials := materialsByChapter[ch.ID]
		slices.SortStableFunc(materials, func(a, b models.OrderedMaterial) int {
			return a.Position - b.Position
		})

		materialAccess := make([]models.MaterialAccess, 0, len(materials))
		for _, m := range materials {
			materialAccess = append(materialAccess, models.MaterialAccess{
				OrderedMaterial: m,
				IsAccessible:    accessible && watchedCount > 0,
			})
		}

		completed := (len(videos) > 0 && watchedCount == len(videos)) || in.CompletedChapters[ch.ID]

		result = append(result, models.ChapterAccess{
			OrderedChapter: ch,
			IsAccessible:   accessible,
			IsCompleted:    completed,
			Videos:         videoAccess,
			Materials:      materialAccess,
		})
		previousCompleted = completed
	}

	return result
}

// AllChaptersCompleted reports whether the order has chapters and every one is complete
func AllChaptersCompleted(chapters []models.ChapterAccess) bool {
	if len(chapters) == 0 {
		return false
	}
	for _, ch := range chapters {
		if !ch.IsCompleted {
			return false
		}
	}
	return true
}
