package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
)

// ContentHandler manages per-course videos and notes.
type ContentHandler struct {
	db *gorm.DB
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

// Videos

func (h *ContentHandler) ListVideos(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid course id")
	}

	var videos []models.Video
	if err := h.db.Where("course_id = ?", courseID).
		Order("position asc, created_at asc").
		Find(&videos).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": videos})
}

func (h *ContentHandler) CreateVideo(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid course id")
	}

	var video models.Video
	if err := c.BodyParser(&video); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if video.Title == "" || video.URL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and url are required")
	}
	video.CourseID = courseID

	if err := h.db.Create(&video).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": video})
}

func (h *ContentHandler) UpdateVideo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var video models.Video
	if err := h.db.First(&video, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "video not found")
		}
		return err
	}

	courseID := video.CourseID
	if err := c.BodyParser(&video); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	video.ID = id
	video.CourseID = courseID

	if err := h.db.Save(&video).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": video})
}

func (h *ContentHandler) DeleteVideo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Video{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Notes

func (h *ContentHandler) ListNotes(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid course id")
	}

	var notes []models.Note
	if err := h.db.Where("course_id = ?", courseID).
		Order("created_at asc").
		Find(&notes).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": notes})
}

func (h *ContentHandler) CreateNote(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid course id")
	}

	var note models.Note
	if err := c.BodyParser(&note); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if note.Title == "" || note.FileURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and file_url are required")
	}
	note.CourseID = courseID

	if err := h.db.Create(&note).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": note})
}

func (h *ContentHandler) UpdateNote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var note models.Note
	if err := h.db.First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		return err
	}

	courseID := note.CourseID
	if err := c.BodyParser(&note); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	note.ID = id
	note.CourseID = courseID

	if err := h.db.Save(&note).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": note})
}

func (h *ContentHandler) DeleteNote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Note{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
