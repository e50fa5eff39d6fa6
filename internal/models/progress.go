package models

import "time"

// WatchProgress is the watch state of one ordered video for one user
type WatchProgress struct {
	ID            int        `json:"id"`
	UserID        int        `json:"userId"`
	VideoID       int        `json:"videoId"`
	IsWatched     bool       `json:"isWatched"`
	WatchedAt     *time.Time `json:"watchedAt,omitempty"`
	WatchDuration int        `json:"watchDuration"`
}

// ChapterProgress marks an ordered chapter completed for one user
type ChapterProgress struct {
	ID          int        `json:"id"`
	UserID      int        `json:"userId"`
	ChapterID   int        `json:"chapterId"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// MarkWatchedRequest is the body of a watch event
type MarkWatchedRequest struct {
	VideoID int `json:"video_id" validate:"required,gt=0"`
}

// ProgressSummary aggregates the progress of one order
type ProgressSummary struct {
	WatchedVideos int     `json:"watched_videos"`
	TotalVideos   int     `json:"total_videos"`
	Percentage    float64 `json:"percentage"`
	IsCompleted   bool    `json:"is_completed"`
}

// VideoAccess is an ordered video with its computed access state
type VideoAccess struct {
	OrderedVideo
	IsAccessible bool `json:"isAccessible"`
	IsWatched    bool `json:"isWatched"`
}

// MaterialAccess is an ordered material with its computed access state
type MaterialAccess struct {
	OrderedMaterial
	IsAccessible bool `json:"isAccessible"`
}

// ChapterAccess is an ordered chapter with its computed access state
type ChapterAccess struct {
	OrderedChapter
	IsAccessible bool             `json:"isAccessible"`
	IsCompleted  bool             `json:"isCompleted"`
	Videos       []VideoAccess    `json:"videos"`
	Materials    []MaterialAccess `json:"materials"`
}

// OrderedCourseDetail is the learning page of an ordered course
type OrderedCourseDetail struct {
	Order                Order            `json:"order"`
	Status               OrderStatus      `json:"status"`
	Chapters             []ChapterAccess  `json:"chapters"`
	TotalLessons         int              `json:"totalLessons"`
	TotalDurationHours   int              `json:"totalDurationHours"`
	TotalDurationMinutes int              `json:"totalDurationMinutes"`
	AllChaptersCompleted bool             `json:"allChaptersCompleted"`
	Progress             ProgressSummary  `json:"progress"`
	Quiz                 *Quiz            `json:"quiz,omitempty"`
	QuizPassed           bool             `json:"quizPassed"`
	Certificate          *QuizCertificate `json:"certificate,omitempty"`
}

// CourseResult is one row of the results page
type CourseResult struct {
	Order         Order            `json:"order"`
	Progress      ProgressSummary  `json:"progress"`
	HasQuiz       bool             `json:"hasQuiz"`
	QuizPassed    bool             `json:"quizPassed"`
	LatestAttempt *QuizAttempt     `json:"latestAttempt,omitempty"`
	Certificate   *QuizCertificate `json:"certificate,omitempty"`
}
