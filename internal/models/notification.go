package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types surfaced by the bell dropdown.
const (
	NotificationEnrollment = "enrollment"
	NotificationPayment    = "payment"
	NotificationSupport    = "support"
	NotificationSystem     = "system"
)

type Notification struct {
	BaseModel
	UserID  uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Type    string     `json:"type"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	IsRead  bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt  *time.Time `json:"read_at"`
}
