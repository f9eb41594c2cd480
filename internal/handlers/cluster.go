package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/diskhealth/internal/cluster"
	"github.com/soltixdb/diskhealth/internal/models"
)

// Nodes reconciles the disks of every node in a page of nodes
func (h *Handler) Nodes(c *fiber.Ctx) error {
	var req models.NodesInfo
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	return c.JSON(cluster.PrepareNodes(req))
}

// Groups summarizes every storage group of the given pools
func (h *Handler) Groups(c *fiber.Ctx) error {
	var req models.GroupsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	return c.JSON(cluster.PrepareGroups(req.Pools))
}
