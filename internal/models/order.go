package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. Once an order reaches a terminal status no further
// transition is permitted.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
	OrderStatusExpired = "expired"
)

// Order represents a single payment attempt for a course.
type Order struct {
	BaseModel
	OrderID           string          `gorm:"uniqueIndex" json:"order_id"`
	UserID            uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User              *User           `json:"user,omitempty"`
	CourseID          uuid.UUID       `gorm:"type:uuid;index" json:"course_id"`
	Course            *Course         `json:"course,omitempty"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `gorm:"index" json:"status"`
	GatewaySessionID  string          `json:"gateway_session_id"`
	PaymentID         string          `json:"payment_id"`
	FailureReason     string          `json:"failure_reason"`
	EnrollmentDone    bool            `gorm:"default:false" json:"enrollment_done"`
	VerifiedAt        *time.Time      `json:"verified_at"`
	WebhookVerifiedAt *time.Time      `json:"webhook_verified_at"`
}

// IsTerminal reports whether the order status permits no further transition.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusExpired:
		return true
	}
	return false
}

// Payment is the immutable audit record written once a payment is confirmed.
type Payment struct {
	BaseModel
	PaymentID       string          `gorm:"index" json:"payment_id"`
	OrderID         string          `gorm:"uniqueIndex" json:"order_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User            *User           `json:"user,omitempty"`
	CourseID        uuid.UUID       `gorm:"type:uuid" json:"course_id"`
	Course          *Course         `json:"course,omitempty"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// Enrollment links a user to a course. Unique on (user_id, course_id):
// re-verifying an already enrolled order is a no-op.
type Enrollment struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID    uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_user_course" json:"course_id"`
	Course      *Course    `json:"course,omitempty"`
	OrderID     string     `json:"order_id"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}
