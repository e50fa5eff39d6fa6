package services

import (
	"context"
	"errors"
	"testing"

	"github.com/profactive/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type learningDeps struct {
	orders   *mockOrderRepository
	content  *mockOrderedContentRepository
	progress *mockProgressRepository
	quizzes  *mockQuizRepository
	attempts *mockQuizAttemptRepository
	certs    *mockCertificateRepository
}

// newLearningDeps returns an active order 10 of user 4 with five videos in two chapters
func newLearningDeps() *learningDeps {
	return &learningDeps{
		orders: &mockOrderRepository{order: &models.Order{ID: 10, UserID: intPtr(4), CourseID: 5, IsActive: true}},
		content: &mockOrderedContentRepository{
			chapters: []models.OrderedChapter{{ID: 1, Position: 1, Granted: true}, {ID: 2, Position: 2, Granted: true}},
			videos: []models.OrderedVideo{
				{ID: 11, OrderedChapterID: intPtr(1), Position: 1, DurationSeconds: 600, Granted: true},
				{ID: 12, OrderedChapterID: intPtr(1), Position: 2, DurationSeconds: 600, Granted: true},
				{ID: 21, OrderedChapterID: intPtr(2), Position: 1, DurationSeconds: 600, Granted: true},
				{ID: 22, OrderedChapterID: intPtr(2), Position: 2, DurationSeconds: 600, Granted: true},
				{ID: 23, OrderedChapterID: intPtr(2), Position: 3, DurationSeconds: 600, Granted: true},
			},
			owner: &models.OrderedVideoOwner{VideoID: 11, OrderID: 10, OrderUserID: intPtr(4), OrderedChapterID: intPtr(1)},
		},
		progress: &mockProgressRepository{
			chapterVideos: map[int][]int{1: {11, 12}, 2: {21, 22, 23}},
			orderTotal:    5,
		},
		quizzes:  &mockQuizRepository{},
		attempts: &mockQuizAttemptRepository{},
		certs:    &mockCertificateRepository{},
	}
}

func (d *learningDeps) service() *learningService {
	return NewLearningService(d.orders, d.content, d.progress, d.quizzes, d.attempts, d.certs, nil, zap.NewNop())
}

func TestLearningService_MarkWatched(t *testing.T) {
	t.Run("watching the last video of a chapter completes it", func(t *testing.T) {
		deps := newLearningDeps()
		deps.progress.watched = map[int]bool{12: true}
		svc := deps.service()

		summary, err := svc.MarkWatched(context.Background(), 4, 11)
		require.NoError(t, err)

		assert.True(t, deps.progress.completed[1])
		assert.Equal(t, 2, summary.WatchedVideos)
		assert.Equal(t, 5, summary.TotalVideos)
		assert.Equal(t, 40.0, summary.Percentage)
	})

	t.Run("chapter stays open while videos remain", func(t *testing.T) {
		deps := newLearningDeps()

		_, err := deps.service().MarkWatched(context.Background(), 4, 11)
		require.NoError(t, err)
		assert.False(t, deps.progress.completed[1])
	})

	t.Run("video of another user's order is rejected without writes", func(t *testing.T) {
		deps := newLearningDeps()

		_, err := deps.service().MarkWatched(context.Background(), 99, 11)
		assert.ErrorIs(t, err, models.ErrAccessDenied)
		assert.Zero(t, deps.progress.writes)
		assert.Empty(t, deps.progress.watched)
	})

	t.Run("video of an inactive order is rejected", func(t *testing.T) {
		deps := newLearningDeps()
		deps.orders.order.IsActive = false

		_, err := deps.service().MarkWatched(context.Background(), 4, 11)
		assert.ErrorIs(t, err, models.ErrAccessDenied)
		assert.Zero(t, deps.progress.writes)
	})

	t.Run("unknown video", func(t *testing.T) {
		deps := newLearningDeps()
		deps.content.owner = nil

		_, err := deps.service().MarkWatched(context.Background(), 4, 11)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("chapter upsert failure is returned", func(t *testing.T) {
		deps := newLearningDeps()
		deps.progress.watched = map[int]bool{12: true}
		deps.progress.chapterErr = errors.New("deadlock")

		_, err := deps.service().MarkWatched(context.Background(), 4, 11)
		assert.Error(t, err)
		assert.True(t, deps.progress.watched[11])
	})

	t.Run("all videos watched with an unpassed quiz stops at 90", func(t *testing.T) {
		deps := newLearningDeps()
		deps.quizzes.quiz = &models.Quiz{ID: 1, PassingScore: 70}
		deps.progress.watched = map[int]bool{12: true, 21: true, 22: true, 23: true}

		summary, err := deps.service().MarkWatched(context.Background(), 4, 11)
		require.NoError(t, err)
		assert.Equal(t, 90.0, summary.Percentage)
		assert.False(t, summary.IsCompleted)

		deps.attempts.passed = true
		summary, err = deps.service().MarkWatched(context.Background(), 4, 11)
		require.NoError(t, err)
		assert.Equal(t, 100.0, summary.Percentage)
		assert.True(t, summary.IsCompleted)
	})
}

func TestLearningService_GetOrderedCourse(t *testing.T) {
	t.Run("access follows watch progress", func(t *testing.T) {
		deps := newLearningDeps()
		deps.progress.watched = map[int]bool{11: true}

		detail, err := deps.service().GetOrderedCourse(context.Background(), 4, 10)
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusActive, detail.Status)
		assert.Equal(t, 5, detail.TotalLessons)
		assert.Equal(t, 0, detail.TotalDurationHours)
		assert.Equal(t, 50, detail.TotalDurationMinutes)
		require.Len(t, detail.Chapters, 2)
		assert.True(t, detail.Chapters[0].Videos[1].IsAccessible)
		assert.False(t, detail.Chapters[1].IsAccessible)
		assert.Equal(t, 20.0, detail.Progress.Percentage)
		assert.False(t, detail.AllChaptersCompleted)
		assert.Nil(t, detail.Quiz)
	})

	t.Run("another user's order is denied", func(t *testing.T) {
		deps := newLearningDeps()

		_, err := deps.service().GetOrderedCourse(context.Background(), 5, 10)
		assert.ErrorIs(t, err, models.ErrAccessDenied)
	})

	t.Run("active order with locked rows is granted again", func(t *testing.T) {
		deps := newLearningDeps()
		deps.content.videos[4].Granted = false

		detail, err := deps.service().GetOrderedCourse(context.Background(), 4, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, deps.content.grantCalled)
		assert.Equal(t, 5, detail.Progress.TotalVideos)
	})

	t.Run("pending order shows locked content", func(t *testing.T) {
		deps := newLearningDeps()
		deps.orders.order.IsActive = false
		for i := range deps.content.videos {
			deps.content.videos[i].Granted = false
		}

		detail, err := deps.service().GetOrderedCourse(context.Background(), 4, 10)
		require.NoError(t, err)
		assert.Zero(t, deps.content.grantCalled)
		assert.Equal(t, models.OrderStatusPending, detail.Status)
		assert.False(t, detail.Chapters[0].IsAccessible)
		assert.Equal(t, 0.0, detail.Progress.Percentage)
	})

	t.Run("passed quiz shows the certificate", func(t *testing.T) {
		deps := newLearningDeps()
		deps.quizzes.quiz = &models.Quiz{ID: 1}
		deps.attempts.passed = true
		deps.progress.watched = map[int]bool{11: true, 12: true, 21: true, 22: true, 23: true}
		_, err := deps.certs.CreateIfAbsent(context.Background(), &models.QuizCertificate{UserID: 4, QuizID: 1, CertificateNumber: "CERT-00000001"})
		require.NoError(t, err)

		detail, err := deps.service().GetOrderedCourse(context.Background(), 4, 10)
		require.NoError(t, err)
		assert.True(t, detail.QuizPassed)
		assert.True(t, detail.AllChaptersCompleted)
		assert.Equal(t, 100.0, detail.Progress.Percentage)
		require.NotNil(t, detail.Certificate)
		assert.Equal(t, "CERT-00000001", detail.Certificate.CertificateNumber)
	})
}

func TestLearningService_GetCourseResults(t *testing.T) {
	deps := newLearningDeps()
	deps.orders.orders = []models.Order{
		{ID: 10, CourseID: 5, IsActive: true},
		{ID: 11, CourseID: 6, IsActive: false},
	}
	deps.quizzes.quiz = &models.Quiz{ID: 1}
	deps.attempts.latest = &models.QuizAttempt{ID: 3, IsCompleted: true, Percentage: 50}
	deps.progress.watched = map[int]bool{11: true}

	results, err := deps.service().GetCourseResults(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 10, results[0].Order.ID)
	assert.True(t, results[0].HasQuiz)
	assert.Equal(t, 20.0, results[0].Progress.Percentage)
	require.NotNil(t, results[0].LatestAttempt)
	assert.Equal(t, 3, results[0].LatestAttempt.ID)
	assert.Nil(t, results[0].Certificate)
}
