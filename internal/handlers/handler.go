// Package handlers implements the HTTP API of the disk health service.
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/models"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger  *logging.Logger
	store   metadata.ControlStore
	version string
}

// New creates a handler. store may be nil, in which case the control
// routes answer 503.
func New(logger *logging.Logger, store metadata.ControlStore, version string) *Handler {
	if version == "" {
		version = "dev"
	}
	return &Handler{
		logger:  logger,
		store:   store,
		version: version,
	}
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Path:    c.Path(),
		},
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return errorJSON(c, fiber.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
}

// optionalID parses an optional uint32 query parameter
func optionalID(c *fiber.Ctx, name string) (*uint32, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	id := uint32(v)
	return &id, nil
}
