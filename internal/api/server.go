// Package api serves the record accessor over HTTP.
package api

import (
	"time"

	"db-crud/internal/record"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// New builds the fiber app exposing acc.
func New(acc *record.Accessor, cfg Config, logger *zap.Logger) *fiber.App {
	onError := errorHandler(logger)
	app := fiber.New(fiber.Config{
		AppName:               "db-crud",
		DisableStartupMessage: true,
		Immutable:             true, // query values outlive the request in change-feed events
		ErrorHandler:          onError,
	})

	app.Use(requestLogger(logger, onError))
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(cfg.RateLimit) + 1
		}
		app.Use(rateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
	}

	RegisterRoutes(app, NewHandler(acc))
	return app
}

func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get("/GetFromTable", h.GetFromTable)
	app.Get("/GetAllFromTable", h.GetAllFromTable)
	app.Get("/GetAllTables", h.GetAllTables)
	app.Get("/GetByField", h.GetByField)
	app.Post("/SetFieldValue", h.SetFieldValue)
	app.Post("/AddRecordToTable", h.AddRecordToTable)
	app.Post("/DeleteRecord", h.DeleteRecord)

	app.Get("/describe", h.Describe)
	app.Get("/health", h.Health)
}

// requestLogger logs every request once the error handler has settled its
// status.
func requestLogger(logger *zap.Logger, onError fiber.ErrorHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := onError(c, err); herr != nil {
				return herr
			}
		}
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)))
		return nil
	}
}

func rateLimiter(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
