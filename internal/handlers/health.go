package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/models"
)

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Version:      h.version,
		ControlStore: storeKind(h.store),
	})
}

// NotFound handles unknown routes
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusNotFound, "NOT_FOUND", "Route not found")
}

func storeKind(store metadata.ControlStore) string {
	switch store.(type) {
	case nil:
		return "disabled"
	case *metadata.MemoryStore:
		return "memory"
	case *metadata.EtcdStore:
		return "etcd"
	default:
		return "custom"
	}
}
