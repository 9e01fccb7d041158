package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "stockhub/internal/log"
	"stockhub/internal/services"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidArgument), errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// writeError sends {"error": msg} and logs the failure under action. Storage
// causes only reach the log.
func writeError(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	st := StatusFor(err)
	c.Status(st)
	if st >= fiber.StatusInternalServerError {
		applog.Error(c, action+".fail", err, fields)
	} else {
		applog.Warn(c, action+".reject", err, fields)
	}
	return c.JSON(fiber.Map{"error": services.Message(err)})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and
// middleware. Fiber errors keep their status, anything else is a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fe.Code).JSON(fiber.Map{"error": services.Message(nil)})
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": services.Message(nil)})
}
