package models

import (
	"time"

	"github.com/google/uuid"
)

// Support ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

type SupportTicket struct {
	BaseModel
	UserID        uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User          *User      `json:"user,omitempty"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Category      string     `json:"category"`
	Priority      string     `gorm:"default:medium" json:"priority"`
	Status        string     `gorm:"default:open;index" json:"status"`
	AdminResponse string     `json:"admin_response"`
	RespondedAt   *time.Time `json:"responded_at"`
	ClosedAt      *time.Time `json:"closed_at"`
}
