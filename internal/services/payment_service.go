package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ayushkumar678u-oss/coaching-app/internal/gateway"
	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
)

// Verification triggers. Whichever arrives first finalizes the order; the
// others observe the already-terminal result.
const (
	TriggerVerify    = "verify"
	TriggerWebhook   = "webhook"
	TriggerReconcile = "reconcile"
)

const (
	createOrderAttempts = 3
	createOrderBackoff  = 500 * time.Millisecond
)

// PaymentService owns the order lifecycle: issuance, verification and the
// exactly-once enrollment commit.
type PaymentService struct {
	db            *gorm.DB
	gateway       *gateway.Client
	notifications *NotificationService
	log           *logrus.Entry
}

func NewPaymentService(db *gorm.DB, gw *gateway.Client, notifications *NotificationService) *PaymentService {
	return &PaymentService{
		db:            db,
		gateway:       gw,
		notifications: notifications,
		log:           logrus.WithField("component", "payments"),
	}
}

// OrderCreateResult is returned to the client so it can open the gateway checkout.
type OrderCreateResult struct {
	SessionID string          `json:"session_id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// CreateOrder validates the purchase, persists a pending order and registers
// it with the gateway. The order row is written before the gateway call so a
// crash in between never orphans a gateway-side order.
func (s *PaymentService) CreateOrder(ctx context.Context, user *models.User, courseID uuid.UUID, amount decimal.Decimal, currency string) (*OrderCreateResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = "INR"
	}

	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	// The client-supplied amount is never the source of truth: it must match
	// the catalog price or the order is rejected outright.
	if !course.Price.Equal(amount) {
		s.log.WithFields(logrus.Fields{
			"course_id": courseID,
			"claimed":   amount.String(),
			"price":     course.Price.String(),
		}).Warn("order amount does not match course price")
		return nil, ErrInvalidAmount
	}

	orderID, err := generateOrderID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}

	order := models.Order{
		OrderID:  orderID,
		UserID:   user.ID,
		CourseID: courseID,
		Amount:   amount,
		Currency: currency,
		Status:   models.OrderStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}

	sessionID, err := s.createGatewayOrder(ctx, &order, user, course.Title)
	if err != nil {
		// Never leave the order pending forever when the gateway call failed.
		if updErr := s.db.WithContext(ctx).Model(&models.Order{}).
			Where("order_id = ? AND status = ?", orderID, models.OrderStatusPending).
			Updates(map[string]any{
				"status":         models.OrderStatusFailed,
				"failure_reason": "gateway order creation failed",
			}).Error; updErr != nil {
			s.log.WithError(updErr).WithField("order_id", orderID).Error("failed to mark order failed")
		}
		if errors.Is(err, gateway.ErrUnavailable) {
			return nil, ErrGatewayUnavailable
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ?", orderID).
		Update("gateway_session_id", sessionID).Error; err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":  orderID,
		"user_id":   user.ID,
		"course_id": courseID,
		"amount":    amount.String(),
	}).Info("order created")

	return &OrderCreateResult{
		SessionID: sessionID,
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
	}, nil
}

func (s *PaymentService) createGatewayOrder(ctx context.Context, order *models.Order, user *models.User, courseTitle string) (string, error) {
	req := gateway.CreateOrderRequest{
		OrderID:       order.OrderID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Note:          fmt.Sprintf("Course Enrollment - %s", courseTitle),
		CustomerID:    user.ID.String(),
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
	}

	var lastErr error
	for attempt := 1; attempt <= createOrderAttempts; attempt++ {
		sessionID, err := s.gateway.CreateOrder(ctx, req)
		if err == nil {
			return sessionID, nil
		}
		lastErr = err
		if !errors.Is(err, gateway.ErrUnavailable) {
			return "", err
		}
		if attempt < createOrderAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(createOrderBackoff * time.Duration(attempt)):
			}
		}
	}
	return "", lastErr
}

// VerificationResult reports the outcome of a verify, webhook or reconcile pass.
type VerificationResult struct {
	OrderID        string          `json:"order_id"`
	PaymentID      string          `json:"payment_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	CourseEnrolled bool            `json:"course_enrolled"`
}

// Finalize transitions an order to its terminal state exactly once, no matter
// how many verify calls, webhooks or reconcile sweeps race for the same order.
// The per-order row lock serializes concurrent invocations; an order that is
// already terminal returns the cached result without re-running side effects.
func (s *PaymentService) Finalize(ctx context.Context, orderID, claimedPaymentID, trigger string) (*VerificationResult, error) {
	var result *VerificationResult
	var mismatch bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if order.IsTerminal() {
			result = resultFromOrder(&order)
			return nil
		}

		// Re-derive truth from the gateway; neither the client body nor the
		// webhook payload is trusted for status or amount.
		status, err := s.gateway.GetOrderStatus(ctx, orderID)
		if err != nil {
			if errors.Is(err, gateway.ErrUnavailable) {
				// Surface "still pending"; the caller polls or the
				// reconciliation worker picks it up later.
				result = resultFromOrder(&order)
				return nil
			}
			return err
		}

		switch status.Status {
		case models.OrderStatusPaid:
			if !status.Amount.Equal(order.Amount) || !strings.EqualFold(status.Currency, order.Currency) {
				s.log.WithFields(logrus.Fields{
					"order_id":         orderID,
					"order_amount":     order.Amount.String(),
					"gateway_amount":   status.Amount.String(),
					"order_currency":   order.Currency,
					"gateway_currency": status.Currency,
				}).Error("amount mismatch on paid order - potential fraud")
				// The failed transition must commit even though the caller
				// gets an error, so the rejection sticks.
				if err := s.markFailed(tx, &order, "amount mismatch", trigger); err != nil {
					return err
				}
				mismatch = true
				result = resultFromOrder(&order)
				return nil
			}
			if err := s.markPaid(tx, &order, claimedPaymentID, trigger); err != nil {
				return err
			}

		case models.OrderStatusFailed:
			if err := s.markFailed(tx, &order, "gateway reported failure", trigger); err != nil {
				return err
			}

		case models.OrderStatusExpired:
			if err := s.transition(tx, &order, models.OrderStatusExpired, trigger); err != nil {
				return err
			}
			order.FailureReason = "payment session expired"

		default:
			// Still pending at the gateway. Leave the order untouched.
		}

		result = resultFromOrder(&order)
		return nil
	})

	if err != nil {
		return nil, err
	}
	if mismatch {
		return result, ErrAmountMismatch
	}
	return result, nil
}

// markPaid applies the terminal paid transition together with the payment
// record and the enrollment commit, all inside the caller's transaction so a
// crash between them is impossible.
func (s *PaymentService) markPaid(tx *gorm.DB, order *models.Order, paymentID, trigger string) error {
	if err := s.transition(tx, order, models.OrderStatusPaid, trigger); err != nil {
		return err
	}

	if paymentID != "" {
		if err := tx.Model(&models.Order{}).
			Where("order_id = ?", order.OrderID).
			Update("payment_id", paymentID).Error; err != nil {
			return err
		}
		order.PaymentID = paymentID
	}

	payment := models.Payment{
		PaymentID:       paymentID,
		OrderID:         order.OrderID,
		UserID:          order.UserID,
		CourseID:        order.CourseID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		PaymentMethod:   "cashfree",
		PaymentStatus:   "success",
		TransactionDate: time.Now(),
	}
	if err := tx.Create(&payment).Error; err != nil {
		return err
	}

	if _, err := s.commitEnrollment(tx, order.UserID, order.CourseID, order.OrderID); err != nil {
		return err
	}

	if err := tx.Model(&models.Order{}).
		Where("order_id = ?", order.OrderID).
		Update("enrollment_done", true).Error; err != nil {
		return err
	}
	order.EnrollmentDone = true

	s.notifications.NotifyPaymentReceived(tx, order)
	s.notifications.NotifyEnrollment(tx, order)

	s.log.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"trigger":  trigger,
	}).Info("order paid, enrollment committed")
	return nil
}

func (s *PaymentService) markFailed(tx *gorm.DB, order *models.Order, reason, trigger string) error {
	if err := s.transition(tx, order, models.OrderStatusFailed, trigger); err != nil {
		return err
	}
	if err := tx.Model(&models.Order{}).
		Where("order_id = ?", order.OrderID).
		Update("failure_reason", reason).Error; err != nil {
		return err
	}
	order.FailureReason = reason
	return nil
}

// transition applies the single terminal status write. The WHERE clause on the
// current pending status is a second guard under the row lock: a row that is
// no longer pending is never overwritten.
func (s *PaymentService) transition(tx *gorm.DB, order *models.Order, to, trigger string) error {
	now := time.Now()
	updates := map[string]any{
		"status":      to,
		"verified_at": &now,
	}
	if trigger == TriggerWebhook {
		updates["webhook_verified_at"] = &now
	}

	res := tx.Model(&models.Order{}).
		Where("order_id = ? AND status = ?", order.OrderID, models.OrderStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		s.log.WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"from":     order.Status,
			"to":       to,
			"trigger":  trigger,
		}).Warn("terminal transition skipped, order no longer pending")
		return nil
	}

	order.Status = to
	order.VerifiedAt = &now
	return nil
}

// commitEnrollment grants course access idempotently. A uniqueness-constraint
// conflict means another path already enrolled the user; the existing row is
// returned unchanged.
func (s *PaymentService) commitEnrollment(tx *gorm.DB, userID, courseID uuid.UUID, orderID string) (*models.Enrollment, error) {
	var existing models.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		OrderID:    orderID,
		EnrolledAt: time.Now(),
	}
	if err := tx.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			if ferr := tx.Where("user_id = ? AND course_id = ?", userID, courseID).
				First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	if err := tx.Model(&models.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error; err != nil {
		return nil, err
	}

	return &enrollment, nil
}

// EnrollFree grants direct access to a zero-price course without an order.
func (s *PaymentService) EnrollFree(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if !course.IsFree() {
			return ErrInvalidAmount
		}
		var err error
		enrollment, err = s.commitEnrollment(tx, userID, courseID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// StuckPendingOrders returns orders still pending after the cutoff, oldest first.
func (s *PaymentService) StuckPendingOrders(ctx context.Context, olderThan time.Duration, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, time.Now().Add(-olderThan)).
		Order("created_at asc").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// ExpireOrder force-expires a pending order via an atomic conditional update.
// Used by the reconciliation worker once the gateway session can no longer
// complete. A row that turned terminal in the meantime is left alone.
func (s *PaymentService) ExpireOrder(ctx context.Context, orderID string) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]any{
			"status":         models.OrderStatusExpired,
			"verified_at":    &now,
			"failure_reason": "payment session expired",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func resultFromOrder(order *models.Order) *VerificationResult {
	return &VerificationResult{
		OrderID:        order.OrderID,
		PaymentID:      order.PaymentID,
		Status:         order.Status,
		Amount:         order.Amount,
		CourseEnrolled: order.Status == models.OrderStatusPaid && order.EnrollmentDone,
	}
}

// generateOrderID builds an order ID in the ORD_<user>_<millis>_<random>
// shape. The random component comes from crypto/rand; the unique index on
// orders.order_id remains the actual collision guarantee.
func generateOrderID(userID uuid.UUID) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	short := strings.ReplaceAll(userID.String(), "-", "")[:12]
	return fmt.Sprintf("ORD_%s_%d_%s", short, time.Now().UnixMilli(), hex.EncodeToString(buf)), nil
}
