package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
	"github.com/ayushkumar678u-oss/coaching-app/internal/utils"
)

// CourseHandler manages course catalog endpoints.
type CourseHandler struct {
	db *gorm.DB
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{db: db}
}

// ListCourses returns active courses with pagination.
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Course{}).Where("is_active = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var courses []models.Course
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&courses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    courses,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCourse returns a single course with its videos and notes.
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var course models.Course
	if err := h.db.Preload("Videos", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc, created_at asc")
	}).Preload("Notes").First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "course not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": course})
}

// Carousel returns active courses for the landing carousel.
func (h *CourseHandler) Carousel(c *fiber.Ctx) error {
	var courses []models.Course
	if err := h.db.Where("is_active = ?", true).
		Order("enrollment_count desc").
		Limit(12).
		Find(&courses).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": courses})
}

// TopCourses returns the most-enrolled active courses.
func (h *CourseHandler) TopCourses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	var courses []models.Course
	if err := h.db.Where("is_active = ?", true).
		Order("enrollment_count desc").
		Limit(limit).
		Find(&courses).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": courses})
}

// CreateCourse adds a course (admin only).
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if course.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}
	if course.Price.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
	}
	if course.Currency == "" {
		course.Currency = "INR"
	}
	course.IsActive = true

	if err := h.db.Create(&course).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": course})
}

// UpdateCourse modifies a course (admin only).
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var course models.Course
	if err := h.db.First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "course not found")
		}
		return err
	}

	if err := c.BodyParser(&course); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if course.Price.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
	}
	course.ID = id

	if err := h.db.Save(&course).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": course})
}

// DeleteCourse removes a course and its content (admin only).
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Video{}, "course_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Note{}, "course_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
