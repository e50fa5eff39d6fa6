package services

import (
	"testing"

	"github.com/profactive/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeChapterCourse has one video in chapter 1, two in chapter 2 and one in chapter 3.
// Chapter 2 also has a material.
func threeChapterCourse() CourseAccessInput {
	return CourseAccessInput{
		OrderActive: true,
		Chapters: []models.OrderedChapter{
			{ID: 3, Position: 3},
			{ID: 1, Position: 1},
			{ID: 2, Position: 2},
		},
		Videos: []models.OrderedVideo{
			{ID: 11, OrderedChapterID: intPtr(1), Position: 1},
			{ID: 22, OrderedChapterID: intPtr(2), Position: 2},
			{ID: 21, OrderedChapterID: intPtr(2), Position: 1},
			{ID: 31, OrderedChapterID: intPtr(3), Position: 1},
			{ID: 99, OrderedChapterID: nil, Position: 1},
		},
		Materials: []models.OrderedMaterial{
			{ID: 201, OrderedChapterID: intPtr(2), Position: 1},
		},
		Watched:           map[int]bool{},
		CompletedChapters: map[int]bool{},
	}
}

func TestComputeCourseAccess(t *testing.T) {
	t.Run("first chapter video watched unlocks second chapter only", func(t *testing.T) {
		in := threeChapterCourse()
		in.Watched[11] = true

		access := ComputeCourseAccess(in)
		require.Len(t, access, 3)

		assert.Equal(t, 1, access[0].ID)
		assert.True(t, access[0].IsAccessible)
		assert.True(t, access[0].IsCompleted)

		assert.Equal(t, 2, access[1].ID)
		assert.True(t, access[1].IsAccessible)
		assert.False(t, access[1].IsCompleted)

		assert.Equal(t, 3, access[2].ID)
		assert.False(t, access[2].IsAccessible)
	})

	t.Run("videos unlock one after another", func(t *testing.T) {
		in := threeChapterCourse()
		in.Watched[11] = true

		access := ComputeCourseAccess(in)
		videos := access[1].Videos
		require.Len(t, videos, 2)

		assert.Equal(t, 21, videos[0].ID)
		assert.True(t, videos[0].IsAccessible)
		assert.Equal(t, 22, videos[1].ID)
		assert.False(t, videos[1].IsAccessible)

		in.Watched[21] = true
		access = ComputeCourseAccess(in)
		assert.True(t, access[1].Videos[1].IsAccessible)
		assert.True(t, access[1].Videos[0].IsWatched)
	})

	t.Run("materials need a watched video of their chapter", func(t *testing.T) {
		in := threeChapterCourse()
		in.Watched[11] = true

		access := ComputeCourseAccess(in)
		require.Len(t, access[1].Materials, 1)
		assert.False(t, access[1].Materials[0].IsAccessible)

		in.Watched[21] = true
		access = ComputeCourseAccess(in)
		assert.True(t, access[1].Materials[0].IsAccessible)
	})

	t.Run("inactive order locks everything", func(t *testing.T) {
		in := threeChapterCourse()
		in.OrderActive = false
		in.Watched[11] = true

		for _, ch := range ComputeCourseAccess(in) {
			assert.False(t, ch.IsAccessible)
			for _, v := range ch.Videos {
				assert.False(t, v.IsAccessible)
			}
			for _, m := range ch.Materials {
				assert.False(t, m.IsAccessible)
			}
		}
	})

	t.Run("recorded completion keeps the next chapter open", func(t *testing.T) {
		in := threeChapterCourse()
		in.CompletedChapters[1] = true

		access := ComputeCourseAccess(in)
		assert.True(t, access[0].IsCompleted)
		assert.True(t, access[1].IsAccessible)
	})

	t.Run("chapter without videos is not complete", func(t *testing.T) {
		in := CourseAccessInput{
			OrderActive: true,
			Chapters:    []models.OrderedChapter{{ID: 1, Position: 1}, {ID: 2, Position: 2}},
		}

		access := ComputeCourseAccess(in)
		assert.True(t, access[0].IsAccessible)
		assert.False(t, access[0].IsCompleted)
		assert.False(t, access[1].IsAccessible)
		assert.Empty(t, access[0].Videos)
	})

	t.Run("orphan videos are left out", func(t *testing.T) {
		access := ComputeCourseAccess(threeChapterCourse())
		for _, ch := range access {
			for _, v := range ch.Videos {
				assert.NotEqual(t, 99, v.ID)
			}
		}
	})
}

func TestAllChaptersCompleted(t *testing.T) {
	tests := []struct {
		name     string
		chapters []models.ChapterAccess
		expected bool
	}{
		{name: "no chapters", chapters: nil, expected: false},
		{name: "all complete", chapters: []models.ChapterAccess{{IsCompleted: true}, {IsCompleted: true}}, expected: true},
		{name: "one incomplete", chapters: []models.ChapterAccess{{IsCompleted: true}, {IsCompleted: false}}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AllChaptersCompleted(tt.chapters))
		})
	}
}
