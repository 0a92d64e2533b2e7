package handlers

import (
	"clinic/internal/app"
	"clinic/internal/handlers/middleware"
	"clinic/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

// Record routes, mounted at the root.
const (
	UsersPath          = "/users"
	AppointmentsPath   = "/appointments"
	MessagesPath       = "/messages"
	MedicalRecordsPath = "/medical_records"
	PrescriptionsPath  = "/prescriptions"
	BillingPath        = "/billing"
)

func Router(router fiber.Router, app *app.App) (err error) {
	setupWebSocketRoute(router, app)

	HealthHandler(router)
	router.Get("/metrics", adaptor.HTTPHandler(app.Metrics.Handler()))

	NewRecordHandler(*app, router, UsersPath, app.UserController).Register()
	NewRecordHandler(*app, router, AppointmentsPath, app.AppointmentController).Register()
	NewRecordHandler(*app, router, MessagesPath, app.MessageController).Register()
	NewRecordHandler(*app, router, MedicalRecordsPath, app.MedicalRecordController).Register()
	NewRecordHandler(*app, router, PrescriptionsPath, app.PrescriptionController).Register()
	NewRecordHandler(*app, router, BillingPath, app.BillingController).Register()

	// Must come last: it catches every GET no API route matched.
	StaticHandler(router, app.Config.StaticDir, []string{
		"/ws", "/health", "/metrics",
		UsersPath, AppointmentsPath, MessagesPath,
		MedicalRecordsPath, PrescriptionsPath, BillingPath,
	})

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		app.Websocket.HandleWebSocket(c)
	}))
}
