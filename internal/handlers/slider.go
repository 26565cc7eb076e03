package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
)

// SliderHandler manages homepage slider entries.
type SliderHandler struct {
	db *gorm.DB
}

// NewSliderHandler constructs SliderHandler.
func NewSliderHandler(db *gorm.DB) *SliderHandler {
	return &SliderHandler{db: db}
}

// ListSliders returns sliders ordered for display. Students only see active
// ones; the admin panel passes ?all=1 to manage the full set.
func (h *SliderHandler) ListSliders(c *fiber.Ctx) error {
	query := h.db.Model(&models.Slider{})
	if c.Query("all") == "" {
		query = query.Where("active = ?", true)
	}

	var sliders []models.Slider
	if err := query.Order("order_index asc, created_at asc").Find(&sliders).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": sliders})
}

func (h *SliderHandler) CreateSlider(c *fiber.Ctx) error {
	var slider models.Slider
	if err := c.BodyParser(&slider); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if slider.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}
	if err := h.db.Create(&slider).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": slider})
}

func (h *SliderHandler) UpdateSlider(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var slider models.Slider
	if err := h.db.First(&slider, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "slider not found")
		}
		return err
	}
	if err := c.BodyParser(&slider); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	slider.ID = id

	if err := h.db.Save(&slider).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": slider})
}

func (h *SliderHandler) DeleteSlider(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Slider{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
