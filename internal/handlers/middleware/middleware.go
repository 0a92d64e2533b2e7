package middleware

import (
	"context"
	"time"

	"clinic/config"
	"clinic/internal/logger"
	"clinic/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

type Middleware struct {
	Config  config.Config
	metrics *metrics.Metrics
	log     logger.Logger
}

func New(config config.Config, metrics *metrics.Metrics) Middleware {
	return Middleware{
		Config:  config,
		metrics: metrics,
		log:     logger.New("middleware"),
	}
}

// RequestLogger logs one line per request with its final status.
func (m Middleware) RequestLogger() fiber.Handler {
	log := m.log.Function("RequestLogger")

	return func(c *fiber.Ctx) error {
		start := time.Now()
		handleError(c, c.Next())

		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
			"requestID", c.GetRespHeader(fiber.HeaderXRequestID),
		}
		if status >= fiber.StatusInternalServerError {
			log.Warn("request failed", args...)
		} else {
			log.Info("request", args...)
		}

		return nil
	}
}

// Metrics records every request under its route pattern, not the raw path, so
// ids do not explode label cardinality.
func (m Middleware) Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		handleError(c, c.Next())

		m.metrics.ObserveRequest(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}

// RequestTimeout bounds the context handlers pass down to the store.
func (m Middleware) RequestTimeout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.Config.RequestTimeout <= 0 {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), m.Config.RequestTimeout)
		defer cancel()

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// handleError writes the error response in place so middleware further out
// sees the final status.
func handleError(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
