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
)

// EnrollmentHandler manages the student's course access.
type EnrollmentHandler struct {
	db       *gorm.DB
	payments *services.PaymentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(db *gorm.DB, payments *services.PaymentService) *EnrollmentHandler {
	return &EnrollmentHandler{db: db, payments: payments}
}

// MyCourses returns the authenticated user's enrollments with course data.
func (h *EnrollmentHandler) MyCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var enrollments []models.Enrollment
	if err := h.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at desc").
		Find(&enrollments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": enrollments})
}

// EnrollFree grants direct access to a free course.
func (h *EnrollmentHandler) EnrollFree(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	courseID, err := uuid.Parse(c.Params("courseID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid course id")
	}

	enrollment, err := h.payments.EnrollFree(c.Context(), userID, courseID)
	if err != nil {
		var payErr *services.PaymentError
		if errors.As(err, &payErr) {
			if payErr == services.ErrInvalidAmount {
				return fiber.NewError(fiber.StatusBadRequest, "course requires payment")
			}
			return fiber.NewError(payErr.Status, payErr.Message)
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": enrollment})
}

// MarkComplete flags a course as completed for the authenticated user.
func (h *EnrollmentHandler) MarkComplete(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	courseID, err := uuid.Parse(c.Params("courseID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid course id")
	}

	var enrollment models.Enrollment
	if err := h.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "enrollment not found")
		}
		return err
	}

	if !enrollment.IsCompleted {
		now := time.Now()
		enrollment.IsCompleted = true
		enrollment.CompletedAt = &now
		if err := h.db.Save(&enrollment).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": enrollment})
}
