package handlers

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/config"
	"github.com/ayushkumar678u-oss/coaching-app/internal/gateway"
	"github.com/ayushkumar678u-oss/coaching-app/internal/middleware"
	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
	"github.com/ayushkumar678u-oss/coaching-app/internal/services"
	"github.com/ayushkumar678u-oss/coaching-app/internal/utils"
)

// PaymentHandler exposes the Cashfree order lifecycle endpoints.
type PaymentHandler struct {
	db       *gorm.DB
	payments *services.PaymentService
	gateway  *gateway.Client
	cfg      *config.Config
	validate *validator.Validate
	log      *logrus.Entry
}

func NewPaymentHandler(db *gorm.DB, payments *services.PaymentService, gw *gateway.Client, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		db:       db,
		payments: payments,
		gateway:  gw,
		cfg:      cfg,
		validate: validator.New(),
		log:      logrus.WithField("component", "payment-handler"),
	}
}

type createPaymentRequest struct {
	CourseID string  `json:"courseId" validate:"required,uuid"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
}

// CreateOrder issues a pending order and returns the gateway checkout session.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid amount")
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid course id")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	amount := decimal.NewFromFloat(req.Amount).Round(2)
	result, err := h.payments.CreateOrder(c.Context(), &user, courseID, amount, currency)
	if err != nil {
		return writePaymentError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"session_id":   result.SessionID,
			"order_id":     result.OrderID,
			"cashfree_key": h.cfg.CashfreePublicKey,
			"amount":       result.Amount,
			"currency":     result.Currency,
		},
	})
}

type verifyPaymentRequest struct {
	OrderID   string  `json:"order_id" validate:"required"`
	PaymentID string  `json:"payment_id"`
	CourseID  string  `json:"courseId"`
	Amount    float64 `json:"amount"`
}

// VerifyOrder is the client-initiated verification path after the gateway
// redirect. Status and amount are re-derived from the gateway, never taken
// from the request body.
func (h *PaymentHandler) VerifyOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "order id is required")
	}

	var order models.Order
	if err := h.db.First(&order, "order_id = ?", req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}
	if order.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "order belongs to another user")
	}

	result, err := h.payments.Finalize(c.Context(), req.OrderID, req.PaymentID, services.TriggerVerify)
	if err != nil {
		return writePaymentError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": result.Status == models.OrderStatusPaid,
		"data": fiber.Map{
			"payment_id":      result.PaymentID,
			"order_id":        result.OrderID,
			"status":          result.Status,
			"amount":          result.Amount,
			"course_enrolled": result.CourseEnrolled,
		},
	})
}

type webhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type webhookData struct {
	OrderID string `json:"orderId"`
	Order   struct {
		OrderID string `json:"order_id"`
	} `json:"order"`
	Payment struct {
		PaymentID     string `json:"paymentId"`
		PaymentStatus string `json:"paymentStatus"`
	} `json:"payment"`
}

// Webhook handles the asynchronous gateway callback. The receipt is always
// acknowledged with 200 so the gateway does not retry into duplicate billing
// concerns; failures are logged instead of surfaced.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	body := c.Body()

	signature := c.Get("x-webhook-signature")
	timestamp := c.Get("x-webhook-timestamp")
	if !h.gateway.VerifyWebhookSignature(timestamp, body, signature) {
		h.log.WithFields(logrus.Fields{
			"ip":            c.IP(),
			"has_signature": signature != "",
		}).Warn("webhook signature verification failed")
		return c.JSON(fiber.Map{"success": true})
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.log.WithError(err).Warn("webhook body parse failed")
		return c.JSON(fiber.Map{"success": true})
	}

	var data webhookData
	if len(envelope.Data) > 0 {
		_ = json.Unmarshal(envelope.Data, &data)
	}

	orderID := data.OrderID
	if orderID == "" {
		orderID = data.Order.OrderID
	}
	if orderID == "" {
		h.log.WithField("event", envelope.Event).Info("webhook without order id ignored")
		return c.JSON(fiber.Map{"success": true})
	}

	h.log.WithFields(logrus.Fields{
		"event":    envelope.Event,
		"order_id": orderID,
	}).Info("webhook received")

	// Finalize re-derives the authoritative status from the gateway, so any
	// event type funnels through the same exactly-once path.
	result, err := h.payments.Finalize(c.Context(), orderID, data.Payment.PaymentID, services.TriggerWebhook)
	if err != nil {
		h.log.WithError(err).WithField("order_id", orderID).Warn("webhook finalize failed")
		return c.JSON(fiber.Map{"success": true})
	}

	h.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   result.Status,
	}).Info("webhook processed")

	return c.JSON(fiber.Map{"success": true})
}

// MyPayments returns the authenticated user's payment history.
func (h *PaymentHandler) MyPayments(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var payments []models.Payment
	if err := h.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("transaction_date desc").
		Find(&payments).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(payments))
	for _, p := range payments {
		entry := fiber.Map{
			"id":             p.ID,
			"amount":         p.Amount,
			"currency":       p.Currency,
			"payment_status": p.PaymentStatus,
			"transaction_id": p.PaymentID,
			"order_id":       p.OrderID,
			"created_at":     p.TransactionDate,
		}
		if p.Course != nil {
			entry["course_title"] = p.Course.Title
		}
		data = append(data, entry)
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

// AllPayments returns every payment with user and course info for the admin panel.
func (h *PaymentHandler) AllPayments(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Payment{}).Count(&total).Error; err != nil {
		return err
	}

	var payments []models.Payment
	if err := h.db.Preload("User").Preload("Course").
		Order("transaction_date desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&payments).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(payments))
	for _, p := range payments {
		entry := fiber.Map{
			"id":             p.ID,
			"amount":         p.Amount,
			"currency":       p.Currency,
			"payment_status": p.PaymentStatus,
			"transaction_id": p.PaymentID,
			"order_id":       p.OrderID,
			"created_at":     p.TransactionDate,
		}
		if p.User != nil {
			entry["name"] = p.User.Name
			entry["email"] = p.User.Email
		}
		if p.Course != nil {
			entry["course_title"] = p.Course.Title
		}
		data = append(data, entry)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

func writePaymentError(c *fiber.Ctx, err error) error {
	var payErr *services.PaymentError
	if errors.As(err, &payErr) {
		return c.Status(payErr.Status).JSON(fiber.Map{
			"success": false,
			"code":    payErr.Code,
			"message": payErr.Message,
		})
	}
	return err
}
