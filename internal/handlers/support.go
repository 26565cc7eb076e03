package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/middleware"
	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
	"github.com/ayushkumar678u-oss/coaching-app/internal/services"
	"github.com/ayushkumar678u-oss/coaching-app/internal/utils"
)

// SupportHandler manages support tickets for students and admins.
type SupportHandler struct {
	db            *gorm.DB
	notifications *services.NotificationService
}

// NewSupportHandler constructs SupportHandler.
func NewSupportHandler(db *gorm.DB, notifications *services.NotificationService) *SupportHandler {
	return &SupportHandler{db: db, notifications: notifications}
}

type createTicketRequest struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// CreateTicket opens a new support ticket.
func (h *SupportHandler) CreateTicket(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Subject == "" || req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "subject and message are required")
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	ticket := models.SupportTicket{
		UserID:   userID,
		Subject:  req.Subject,
		Message:  req.Message,
		Category: req.Category,
		Priority: req.Priority,
		Status:   models.TicketStatusOpen,
	}

	if err := h.db.Create(&ticket).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": ticket})
}

// MyTickets lists the authenticated user's tickets.
func (h *SupportHandler) MyTickets(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var tickets []models.SupportTicket
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&tickets).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": tickets})
}

// CloseTicket lets a student close their own ticket.
func (h *SupportHandler) CloseTicket(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var ticket models.SupportTicket
	if err := h.db.First(&ticket, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "ticket not found")
		}
		return err
	}

	if ticket.Status != models.TicketStatusClosed {
		now := time.Now()
		ticket.Status = models.TicketStatusClosed
		ticket.ClosedAt = &now
		if err := h.db.Save(&ticket).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": ticket})
}

// AllTickets lists every ticket for the admin panel.
func (h *SupportHandler) AllTickets(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.SupportTicket{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var tickets []models.SupportTicket
	if err := query.Preload("User").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&tickets).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tickets,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type ticketResponseRequest struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

// RespondTicket records an admin response and notifies the student.
func (h *SupportHandler) RespondTicket(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req ticketResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Response == "" {
		return fiber.NewError(fiber.StatusBadRequest, "response is required")
	}

	var ticket models.SupportTicket
	if err := h.db.First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "ticket not found")
		}
		return err
	}

	now := time.Now()
	ticket.AdminResponse = req.Response
	ticket.RespondedAt = &now
	if req.Status != "" {
		if !validTicketStatus(req.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		ticket.Status = req.Status
	} else if ticket.Status == models.TicketStatusOpen {
		ticket.Status = models.TicketStatusInProgress
	}

	if err := h.db.Save(&ticket).Error; err != nil {
		return err
	}

	h.notifications.NotifyTicketResponse(&ticket)

	return c.JSON(fiber.Map{"success": true, "data": ticket})
}

type ticketStatusRequest struct {
	Status string `json:"status"`
}

// UpdateTicketStatus changes a ticket's status (admin only).
func (h *SupportHandler) UpdateTicketStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req ticketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !validTicketStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	var ticket models.SupportTicket
	if err := h.db.First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "ticket not found")
		}
		return err
	}

	ticket.Status = req.Status
	if req.Status == models.TicketStatusClosed || req.Status == models.TicketStatusResolved {
		now := time.Now()
		ticket.ClosedAt = &now
	}

	if err := h.db.Save(&ticket).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": ticket})
}

func validTicketStatus(status string) bool {
	switch status {
	case models.TicketStatusOpen, models.TicketStatusInProgress,
		models.TicketStatusResolved, models.TicketStatusClosed:
		return true
	}
	return false
}
