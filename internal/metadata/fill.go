package metadata

import (
	"context"
	"errors"

	"github.com/soltixdb/diskhealth/internal/models"
)

// WithControl fills the control part of a PDisk view from the store when the
// view left it out. Records the store does not hold are not an error, and
// control data already in the view is never replaced.
func WithControl(ctx context.Context, store ControlStore, resp models.PDiskInfoResponse, nodeID, pDiskID uint32) (models.PDiskInfoResponse, error) {
	if store == nil {
		return resp, nil
	}

	control := models.PDiskControl{}
	if resp.BSC != nil {
		control = *resp.BSC
	}

	if control.PDisk == nil {
		rec, err := store.GetPDisk(ctx, nodeID, pDiskID)
		switch {
		case err == nil:
			control.PDisk = rec
		case !errors.Is(err, ErrNotFound):
			return resp, err
		}
	}

	if len(control.VDisks) == 0 {
		recs, err := VDisksOnPDisk(ctx, store, nodeID, pDiskID)
		if err != nil {
			return resp, err
		}
		for _, rec := range recs {
			control.VDisks = append(control.VDisks, rec.SlotEntry())
		}
	}

	if control.PDisk != nil || len(control.VDisks) > 0 {
		resp.BSC = &control
	}
	return resp, nil
}
