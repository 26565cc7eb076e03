package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ayushkumar678u-oss/coaching-app/internal/config"
	"github.com/ayushkumar678u-oss/coaching-app/internal/database"
	"github.com/ayushkumar678u-oss/coaching-app/internal/gateway"
	"github.com/ayushkumar678u-oss/coaching-app/internal/routes"
	"github.com/ayushkumar678u-oss/coaching-app/internal/services"
	"github.com/ayushkumar678u-oss/coaching-app/internal/worker"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	gw := gateway.NewClient(gateway.Config{
		AppID:         cfg.CashfreeAppID,
		SecretKey:     cfg.CashfreeSecretKey,
		APIURL:        cfg.CashfreeAPIURL,
		WebhookSecret: cfg.CashfreeWebhookSecret,
		FrontendURL:   cfg.FrontendURL,
		BackendURL:    cfg.BackendURL,
	})

	notifications := services.NewNotificationService(db)
	payments := services.NewPaymentService(db, gw, notifications)

	app := fiber.New(fiber.Config{
		AppName: "Coaching Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, payments, gw, notifications)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := worker.NewReconciliationWorker(payments, cfg.ReconcileInterval, cfg.OrderPendingTTL)
	go reconciler.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("fiber.Shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
