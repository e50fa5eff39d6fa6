package models

import "time"

// FAQ is a frequently asked question
type FAQ struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Position int    `json:"position"`
}

// Blog is a blog post
type Blog struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document is a downloadable file of the documentation page
type Document struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	File          string `json:"-"`
	FileType      string `json:"fileType"`
	FileSize      int64  `json:"fileSize"`
	DownloadCount int    `json:"downloadCount"`
	Position      int    `json:"position"`
}

// Referral is a participant of the referral program
type Referral struct {
	ID              int       `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PromoCode       string    `json:"promoCode"`
	ReferralLink    string    `json:"referralLink"`
	ReferredByID    *int      `json:"-"`
	ReferredByName  string    `json:"referredByName,omitempty"`
	ReferredByEmail string    `json:"referredByEmail,omitempty"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FullName returns "First Last"
func (r *Referral) FullName() string {
	return r.FirstName + " " + r.LastName
}

// CreateReferralRequest represents a referral program sign-up
type CreateReferralRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone_number" validate:"required,max=20"`
}

// PromoCodeLength and PromoCodeAlphabet define generated promo codes
const (
	PromoCodeLength   = 8
	PromoCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)
