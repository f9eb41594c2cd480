package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/utils"
)

func (h *Handler) storeContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), utils.ControlStoreTimeout)
}

// storeError maps control store errors to responses
func (h *Handler) storeError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, metadata.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, metadata.ErrInvalidKey):
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ID", err.Error())
	default:
		h.logger.Error("Control store operation failed", "op", op, "error", err)
		return errorJSON(c, fiber.StatusBadGateway, "CONTROL_STORE_ERROR", "Control store operation failed")
	}
}

func (h *Handler) requireStore(c *fiber.Ctx) bool {
	if h.store != nil {
		return true
	}
	_ = errorJSON(c, fiber.StatusServiceUnavailable, "CONTROL_STORE_DISABLED", "No control store is configured")
	return false
}

// PutControlPDisk stores a control PDisk record
func (h *Handler) PutControlPDisk(c *fiber.Ctx) error {
	if !h.requireStore(c) {
		return nil
	}

	var rec models.ControlPDisk
	if err := c.BodyParser(&rec); err != nil {
		return invalidBody(c, err)
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()
	if err := h.store.PutPDisk(ctx, &rec); err != nil {
		return h.storeError(c, err, "put_pdisk")
	}

	id, _ := metadata.PDiskKey(&rec)
	h.logger.Debug("Control PDisk stored", "id", id)
	return c.JSON(models.ControlPutResponse{ID: id})
}

// GetControlPDisk returns one control PDisk record by "<nodeId>-<pDiskId>"
func (h *Handler) GetControlPDisk(c *fiber.Ctx) error {
	if !h.requireStore(c) {
		return nil
	}

	key := diskid.ParsePDiskKey(c.Params("id"))
	if key.NodeID == nil || key.PDiskID == nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ID", "PDisk id must look like <nodeId>-<pDiskId>")
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()
	rec, err := h.store.GetPDisk(ctx, *key.NodeID, *key.PDiskID)
	if err != nil {
		return h.storeError(c, err, "get_pdisk")
	}
	return c.JSON(rec)
}

// ListControlPDisks returns every stored control PDisk record
func (h *Handler) ListControlPDisks(c *fiber.Ctx) error {
	if !h.requireStore(c) {
		return nil
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()
	recs, err := h.store.ListPDisks(ctx)
	if err != nil {
		return h.storeError(c, err, "list_pdisks")
	}
	return c.JSON(models.ControlPDiskListResponse{PDisks: recs, Count: len(recs)})
}

// PutControlVDisk stores a control VDisk record
func (h *Handler) PutControlVDisk(c *fiber.Ctx) error {
	if !h.requireStore(c) {
		return nil
	}

	var rec models.ControlVDisk
	if err := c.BodyParser(&rec); err != nil {
		return invalidBody(c, err)
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()
	if err := h.store.PutVDisk(ctx, &rec); err != nil {
		return h.storeError(c, err, "put_vdisk")
	}

	h.logger.Debug("Control VDisk stored", "id", rec.Key())
	return c.JSON(models.ControlPutResponse{ID: rec.Key()})
}

// GetControlVDisk returns one control VDisk record by VDisk id or slot key
func (h *Handler) GetControlVDisk(c *fiber.Ctx) error {
	if !h.requireStore(c) {
		return nil
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()
	rec, err := h.store.GetVDisk(ctx, c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "get_vdisk")
	}
	return c.JSON(rec)
}

// ListControlVDisks returns every stored control VDisk record
func (h *Handler) ListControlVDisks(c *fiber.Ctx) error {
	if !h.requireStore(c) {
		return nil
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()
	recs, err := h.store.ListVDisks(ctx)
	if err != nil {
		return h.storeError(c, err, "list_vdisks")
	}
	return c.JSON(models.ControlVDiskListResponse{VDisks: recs, Count: len(recs)})
}
