package handlers

import (
	"clinic/config"
	"clinic/internal/app"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// NewServer builds the fiber app with the middleware stack and every route.
func NewServer(app *app.App) (*fiber.App, error) {
	bodyLimit := app.Config.MaxBodySize
	if bodyLimit <= 0 {
		bodyLimit = config.DefaultMaxBodySize
	}

	server := fiber.New(fiber.Config{
		AppName:      "clinic",
		ErrorHandler: ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	server.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	server.Use(app.Middleware.RequestLogger())
	server.Use(app.Middleware.Metrics())
	server.Use(recover.New(recover.Config{EnableStackTrace: app.Config.IsDevelopment()}))
	server.Use(cors.New(cors.Config{AllowOrigins: app.Config.CorsOrigins}))
	server.Use(app.Middleware.RequestTimeout())

	if err := Router(server, app); err != nil {
		return nil, err
	}

	return server, nil
}
