package handlers

import (
	"context"
	"errors"

	"clinic/internal/logger"
	. "clinic/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps domain failures to status codes. Every body carries a
// human readable "detail".
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		invalid   *ValidationError
		duplicate *UniquenessViolation
		missing   *ReferenceNotFound
		notFound  *NotFoundError
		fiberErr  *fiber.Error
	)

	switch {
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"detail": invalid.Error(), "errors": invalid.Errors})

	case errors.As(err, &duplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": duplicate.Error()})

	case errors.As(err, &missing):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": missing.Error()})

	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": notFound.Error()})

	case errors.Is(err, fiber.ErrRequestEntityTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"detail": "request body too large"})

	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{"detail": fiberErr.Message})

	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"detail": "request timed out"})

	default:
		logger.New("handlers").File("errors").Function("ErrorHandler").
			Er("unhandled error", err, "method", c.Method(), "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
	}
}
