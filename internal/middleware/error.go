package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/models"
)

// ErrorHandler renders errors returned by handlers as models.ErrorResponse.
// Messages of non-fiber errors are not exposed.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", status,
			"error", err,
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("Request error", fields...)
		} else {
			logger.Debug("Request rejected", fields...)
		}

		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    ErrorCode(status),
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}

// ErrorCode turns an HTTP status into an upper snake case code, e.g.
// 404 -> NOT_FOUND.
func ErrorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	text = strings.NewReplacer("-", " ", "'", "").Replace(text)
	return strings.ToUpper(strings.Join(strings.Fields(text), "_"))
}
