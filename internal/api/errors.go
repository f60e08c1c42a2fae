package api

import (
	"errors"

	"db-crud/internal/form"
	"db-crud/internal/record"
	"db-crud/internal/schema"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, schema.ErrTableNotFound), errors.Is(err, record.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, record.ErrAmbiguousKey):
		return fiber.StatusConflict
	case errors.Is(err, record.ErrInsertFailed):
		return fiber.StatusInternalServerError
	case errors.Is(err, schema.ErrUnknownField), errors.Is(err, schema.ErrNoPrimaryKey), errors.Is(err, form.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, schema.ErrConnection):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
	}
}
