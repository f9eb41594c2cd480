package logging

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out of the service.
const RequestIDHeader = "X-Request-ID"

// FiberMiddleware assigns a request id, stores the logger in the user
// context and logs each request once it completes. Requests to skipPaths
// are served without logging.
func FiberMiddleware(logger *Logger, skipPaths ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDHeader, requestID)

		reqLogger := logger.With("request_id", requestID)
		ctx := WithRequestID(c.UserContext(), requestID)
		c.SetUserContext(WithLogger(ctx, reqLogger))

		err := c.Next()

		if _, ok := skip[c.Path()]; ok {
			return err
		}

		status := c.Response().StatusCode()
		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case err != nil:
			reqLogger.Error("Request failed", append(fields, "error", err)...)
		case status >= fiber.StatusInternalServerError:
			reqLogger.Error("Server error", fields...)
		case status >= fiber.StatusBadRequest:
			reqLogger.Warn("Client error", fields...)
		default:
			reqLogger.Info("Request completed", fields...)
		}
		return err
	}
}
