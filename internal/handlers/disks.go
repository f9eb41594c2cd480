package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/diskhealth/internal/disks"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/severity"
	"github.com/soltixdb/diskhealth/internal/utils"
)

// SlotsRequest is a reconciled PDisk with the VDisks to lay out on it
type SlotsRequest struct {
	PDisk  disks.PDisk   `json:"pdisk"`
	VDisks []disks.VDisk `json:"vdisks"`
}

// Severities lists the severity scale from least to most severe
func (h *Handler) Severities(c *fiber.Ctx) error {
	return c.JSON(severity.Scale())
}

// ReconcilePDisk merges the live and control records of a PDisk
func (h *Handler) ReconcilePDisk(c *fiber.Ctx) error {
	var req models.ReconcilePDiskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	return c.JSON(disks.ReconcilePDisk(req.Live, req.Control))
}

// ReconcileVDisk merges the live and control records of a VDisk
func (h *Handler) ReconcileVDisk(c *fiber.Ctx) error {
	var req models.ReconcileVDiskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	return c.JSON(disks.ReconcileVDisk(req.Live, req.Control))
}

// Slots lays out the log, VDisk and empty slots of a PDisk
func (h *Handler) Slots(c *fiber.Ctx) error {
	var req SlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	return c.JSON(disks.ComputeSlots(req.PDisk, req.VDisks))
}

// PDiskInfo builds the PDisk page. With node_id and pdisk_id given, control
// records missing from the body are read from the control store.
func (h *Handler) PDiskInfo(c *fiber.Ctx) error {
	nodeID, err := optionalID(c, "node_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_PARAMETER", "node_id must be an unsigned 32-bit integer")
	}
	pDiskID, err := optionalID(c, "pdisk_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_PARAMETER", "pdisk_id must be an unsigned 32-bit integer")
	}

	var resp models.PDiskInfoResponse
	if err := c.BodyParser(&resp); err != nil {
		return invalidBody(c, err)
	}

	if h.store != nil && nodeID != nil && pDiskID != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), utils.ControlStoreTimeout)
		defer cancel()

		resp, err = metadata.WithControl(ctx, h.store, resp, *nodeID, *pDiskID)
		if err != nil {
			h.logger.Error("Failed to read control records",
				"error", err,
				"node_id", *nodeID,
				"pdisk_id", *pDiskID)
			return errorJSON(c, fiber.StatusBadGateway, "CONTROL_STORE_ERROR", "Failed to read control records")
		}
	}

	return c.JSON(disks.PreparePDiskInfo(resp, nodeID, pDiskID))
}
