package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ayushkumar678u-oss/coaching-app/internal/config"
	"github.com/ayushkumar678u-oss/coaching-app/internal/gateway"
	"github.com/ayushkumar678u-oss/coaching-app/internal/handlers"
	"github.com/ayushkumar678u-oss/coaching-app/internal/middleware"
	"github.com/ayushkumar678u-oss/coaching-app/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, payments *services.PaymentService, gw *gateway.Client, notifications *services.NotificationService) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	courseHandler := handlers.NewCourseHandler(db)
	contentHandler := handlers.NewContentHandler(db)
	sliderHandler := handlers.NewSliderHandler(db)
	enrollmentHandler := handlers.NewEnrollmentHandler(db, payments)
	paymentHandler := handlers.NewPaymentHandler(db, payments, gw, cfg)
	supportHandler := handlers.NewSupportHandler(db, notifications)
	notificationHandler := handlers.NewNotificationHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Public catalog
	api.Get("/courses", courseHandler.ListCourses)
	api.Get("/courses/carousel", courseHandler.Carousel)
	api.Get("/courses/top", courseHandler.TopCourses)
	api.Get("/courses/:id", courseHandler.GetCourse)
	api.Get("/sliders", sliderHandler.ListSliders)

	// Gateway webhook: public, authenticated by HMAC signature instead of a token.
	api.Post("/payments/cashfree/webhook", paymentHandler.Webhook)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/videos/:courseID", contentHandler.ListVideos)
	protected.Get("/notes/:courseID", contentHandler.ListNotes)

	protected.Post("/payments/cashfree/create", paymentHandler.CreateOrder)
	protected.Post("/payments/cashfree/verify", paymentHandler.VerifyOrder)
	protected.Get("/payments/my-payments", paymentHandler.MyPayments)

	protected.Get("/enroll/my-courses", enrollmentHandler.MyCourses)
	protected.Post("/enroll/:courseID", enrollmentHandler.EnrollFree)
	protected.Post("/enroll/:courseID/complete", enrollmentHandler.MarkComplete)

	protected.Post("/support/tickets", supportHandler.CreateTicket)
	protected.Get("/support/my-tickets", supportHandler.MyTickets)
	protected.Post("/support/tickets/:id/close", supportHandler.CloseTicket)

	protected.Get("/notifications/unread", notificationHandler.Unread)
	protected.Get("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.Put("/notifications/mark-all/read", notificationHandler.MarkAllRead)
	protected.Put("/notifications/:id/read", notificationHandler.MarkRead)
	protected.Delete("/notifications/:id", notificationHandler.Delete)

	// Admin routes
	admin := api.Group("", middleware.AuthMiddleware(cfg), middleware.RequireAdmin())

	admin.Post("/courses", courseHandler.CreateCourse)
	admin.Put("/courses/:id", courseHandler.UpdateCourse)
	admin.Delete("/courses/:id", courseHandler.DeleteCourse)

	admin.Post("/videos/:courseID", contentHandler.CreateVideo)
	admin.Put("/videos/edit/:id", contentHandler.UpdateVideo)
	admin.Delete("/videos/:id", contentHandler.DeleteVideo)

	admin.Post("/notes/:courseID", contentHandler.CreateNote)
	admin.Put("/notes/edit/:id", contentHandler.UpdateNote)
	admin.Delete("/notes/:id", contentHandler.DeleteNote)

	admin.Post("/sliders", sliderHandler.CreateSlider)
	admin.Put("/sliders/:id", sliderHandler.UpdateSlider)
	admin.Delete("/sliders/:id", sliderHandler.DeleteSlider)

	admin.Get("/payments/admin/all-payments", paymentHandler.AllPayments)

	admin.Get("/support/admin/all-tickets", supportHandler.AllTickets)
	admin.Post("/support/admin/tickets/:id/response", supportHandler.RespondTicket)
	admin.Put("/support/admin/tickets/:id/status", supportHandler.UpdateTicketStatus)

	admin.Get("/admin/dashboard", adminHandler.DashboardStats)
	admin.Get("/students/top", adminHandler.TopStudents)
}
