package models

import "time"

// Category is a node of the course category tree
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	ParentID *int   `json:"parentId,omitempty"`
}

// CategoryWithCount is a main category with the number of courses in it and all its descendants
type CategoryWithCount struct {
	Category
	TotalCourses int `json:"totalCourses"`
}

// Course represents a course of the catalogue
type Course struct {
	ID           int       `json:"id"`
	CategoryID   int       `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Image        string    `json:"image,omitempty"`
	Author       string    `json:"author"`
	IsPopular    bool      `json:"isPopular"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CourseFilter holds catalogue filters. Zero values disable a filter.
type CourseFilter struct {
	MainCategoryID int
	SubCategoryID  int
	Search         string
	PopularOnly    bool
	// CategoryIDs is resolved by the service from MainCategoryID
	CategoryIDs []int
}

// MaterialType distinguishes downloadable documents from images
type MaterialType string

const (
	MaterialTypeDocument MaterialType = "document"
	MaterialTypeImage    MaterialType = "image"
)

// Chapter is a live course chapter
type Chapter struct {
	ID          int    `json:"id"`
	CourseID    int    `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	IsActive    bool   `json:"isActive"`
}

// Video is a live chapter video
type Video struct {
	ID              int    `json:"id"`
	ChapterID       int    `json:"chapterId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	VideoFile       string `json:"videoFile"`
	DurationSeconds int    `json:"durationSeconds"`
	IsFree          bool   `json:"isFree"`
	Position        int    `json:"position"`
	IsActive        bool   `json:"isActive"`
}

// Material is a live chapter material
type Material struct {
	ID           int          `json:"id"`
	ChapterID    int          `json:"chapterId"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	MaterialType MaterialType `json:"materialType"`
	File         string       `json:"file"`
	IsFree       bool         `json:"isFree"`
	Position     int          `json:"position"`
	IsActive     bool         `json:"isActive"`
}

// ChapterContent groups a chapter with its videos and materials
type ChapterContent struct {
	Chapter
	Videos    []Video    `json:"videos"`
	Materials []Material `json:"materials"`
}

// CourseDetail is the public course page
type CourseDetail struct {
	Course
	Chapters             []ChapterContent `json:"chapters"`
	TotalLessons         int              `json:"totalLessons"`
	TotalDurationHours   int              `json:"totalDurationHours"`
	TotalDurationMinutes int              `json:"totalDurationMinutes"`
	AverageRating        float64          `json:"averageRating"`
	Reviews              []Review         `json:"reviews"`
	RelatedCourses       []Course         `json:"relatedCourses"`
	HasQuiz              bool             `json:"hasQuiz"`
}

// Review is a course review, visible after an administrator approves it
type Review struct {
	ID        int       `json:"id"`
	CourseID  int       `json:"courseId"`
	UserID    *int      `json:"-"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateReviewRequest represents a review submission
type CreateReviewRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Text      string `json:"text" validate:"required,max=2000"`
}
