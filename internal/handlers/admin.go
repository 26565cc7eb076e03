package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
)

// AdminHandler manages admin-only aggregate endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalStudents int64
	if err := h.db.Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Count(&totalStudents).Error; err != nil {
		return err
	}

	var totalCourses int64
	if err := h.db.Model(&models.Course{}).Count(&totalCourses).Error; err != nil {
		return err
	}

	var totalEnrollments int64
	if err := h.db.Model(&models.Enrollment{}).Count(&totalEnrollments).Error; err != nil {
		return err
	}

	var openTickets int64
	if err := h.db.Model(&models.SupportTicket{}).
		Where("status IN ?", []string{models.TicketStatusOpen, models.TicketStatusInProgress}).
		Count(&openTickets).Error; err != nil {
		return err
	}

	// Orders by status
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Payment{}).
		Where("payment_status = ?", "success").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var todayRevenue float64
	if err := h.db.Model(&models.Payment{}).
		Where("payment_status = ? AND transaction_date::date = CURRENT_DATE", "success").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_students":    totalStudents,
			"total_courses":     totalCourses,
			"total_enrollments": totalEnrollments,
			"open_tickets":      openTickets,
			"total_revenue":     totalRevenue,
			"today_revenue":     todayRevenue,
			"orders_by_status":  ordersByStatus,
		},
	})
}

// TopStudents returns students ranked by enrollment count.
func (h *AdminHandler) TopStudents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	type topStudent struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Email           string `json:"email"`
		EnrollmentCount int64  `json:"enrollment_count"`
		CompletedCount  int64  `json:"completed_count"`
	}

	var students []topStudent
	if err := h.db.Model(&models.User{}).
		Select(`users.id, users.name, users.email,
			count(enrollments.id) as enrollment_count,
			count(enrollments.id) filter (where enrollments.is_completed) as completed_count`).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("users.role = ?", models.RoleStudent).
		Group("users.id, users.name, users.email").
		Order("enrollment_count desc").
		Limit(limit).
		Scan(&students).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": students})
}
