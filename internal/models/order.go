package models

import "time"

// OrderStatus is derived from the order flags
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is a purchase of one course, waiting for manual approval until activated
type Order struct {
	ID          int       `json:"id"`
	UserID      *int      `json:"userId,omitempty"`
	CourseID    int       `json:"courseId"`
	CourseName  string    `json:"courseName"`
	Sender      string    `json:"sender"`
	OrderDate   time.Time `json:"orderDate"`
	IsActive    bool      `json:"isActive"`
	IsCompleted bool      `json:"isCompleted"`
	Notes       string    `json:"notes,omitempty"`
}

// Status returns the lifecycle state of the order
func (o *Order) Status() OrderStatus {
	switch {
	case o.IsCompleted:
		return OrderStatusCompleted
	case o.IsActive:
		return OrderStatusActive
	default:
		return OrderStatusPending
	}
}

// CreateOrderRequest holds the contact form of a course order
type CreateOrderRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone_number" validate:"required,max=20"`
	PromoCode string `json:"promo_code" validate:"omitempty,max=20"`
}

// OrderedChapter is an order-scoped copy of a course chapter
type OrderedChapter struct {
	ID              int    `json:"id"`
	OrderID         int    `json:"orderId"`
	SourceChapterID int    `json:"-"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Position        int    `json:"position"`
	// Granted mirrors the is_accessible column, set when the order is activated
	Granted         bool   `json:"-"`
}

// OrderedVideo is an order-scoped copy of a chapter video
type OrderedVideo struct {
	ID               int    `json:"id"`
	OrderID          int    `json:"orderId"`
	OrderedChapterID *int   `json:"chapterId,omitempty"`
	SourceVideoID    int    `json:"-"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	VideoFile        string `json:"videoFile"`
	DurationSeconds  int    `json:"durationSeconds"`
	IsFree           bool   `json:"isFree"`
	Position         int    `json:"position"`
	Granted          bool   `json:"-"`
}

// OrderedMaterial is an order-scoped copy of a chapter material
type OrderedMaterial struct {
	ID               int          `json:"id"`
	OrderID          int          `json:"orderId"`
	OrderedChapterID *int         `json:"chapterId,omitempty"`
	SourceMaterialID int          `json:"-"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	MaterialType     MaterialType `json:"materialType"`
	File             string       `json:"file"`
	IsFree           bool         `json:"isFree"`
	Position         int          `json:"position"`
	Granted          bool         `json:"-"`
}

// OrderedVideoOwner identifies the order and chapter a video belongs to
type OrderedVideoOwner struct {
	VideoID          int
	OrderID          int
	OrderUserID      *int
	OrderedChapterID *int
}
