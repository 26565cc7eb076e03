package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
)

// NotificationService writes in-app notifications shown by the bell dropdown.
type NotificationService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:  db,
		log: logrus.WithField("component", "notifications"),
	}
}

// Create inserts a notification outside of any surrounding transaction.
func (s *NotificationService) Create(userID uuid.UUID, typ, title, message string) {
	s.insert(s.db, userID, typ, title, message)
}

// NotifyPaymentReceived records the payment receipt inside the payment transaction.
func (s *NotificationService) NotifyPaymentReceived(tx *gorm.DB, order *models.Order) {
	s.insert(tx, order.UserID, models.NotificationPayment,
		"Payment received",
		fmt.Sprintf("Your payment of %s %s for order %s was received.", order.Amount.String(), order.Currency, order.OrderID))
}

// NotifyEnrollment records the enrollment grant inside the payment transaction.
func (s *NotificationService) NotifyEnrollment(tx *gorm.DB, order *models.Order) {
	s.insert(tx, order.UserID, models.NotificationEnrollment,
		"Course unlocked",
		"You are enrolled. Head to My Courses to start learning.")
}

// NotifyTicketResponse tells a student their support ticket got an answer.
func (s *NotificationService) NotifyTicketResponse(ticket *models.SupportTicket) {
	s.insert(s.db, ticket.UserID, models.NotificationSupport,
		"Support replied",
		fmt.Sprintf("Your ticket %q has a new response.", ticket.Subject))
}

func (s *NotificationService) insert(db *gorm.DB, userID uuid.UUID, typ, title, message string) {
	n := models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if err := db.Create(&n).Error; err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    typ,
		}).Error("failed to create notification")
	}
}
