package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Course struct {
	BaseModel
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Currency        string          `gorm:"default:INR" json:"currency"`
	Thumbnail       string          `json:"thumbnail"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	EnrollmentCount int             `json:"enrollment_count"`
	Videos          []Video         `json:"videos,omitempty"`
	Notes           []Note          `json:"notes,omitempty"`
}

// IsFree reports whether the course can be enrolled without payment.
func (c *Course) IsFree() bool {
	return !c.Price.IsPositive()
}

type Video struct {
	BaseModel
	CourseID    uuid.UUID `gorm:"type:uuid;index" json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Duration    string    `json:"duration"`
	Position    int       `json:"position"`
}

type Note struct {
	BaseModel
	CourseID uuid.UUID `gorm:"type:uuid;index" json:"course_id"`
	Title    string    `json:"title"`
	FileURL  string    `json:"file_url"`
}
