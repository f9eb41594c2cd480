// Package metadata keeps control-plane disk records for snapshots that
// arrive without them.
package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/models"
)

var (
	// ErrNotFound is returned when no record is stored under an id
	ErrNotFound = errors.New("control record not found")

	// ErrInvalidKey is returned when a record carries no usable identity
	ErrInvalidKey = errors.New("control record has no valid id")
)

// ControlStore stores control-plane PDisk and VDisk records
type ControlStore interface {
	// PDisk records, keyed by "<nodeId>-<pDiskId>"
	PutPDisk(ctx context.Context, rec *models.ControlPDisk) error
	GetPDisk(ctx context.Context, nodeID, pDiskID uint32) (*models.ControlPDisk, error)
	ListPDisks(ctx context.Context) ([]*models.ControlPDisk, error)

	// VDisk records, keyed by the composite VDisk id or the slot key
	PutVDisk(ctx context.Context, rec *models.ControlVDisk) error
	GetVDisk(ctx context.Context, id string) (*models.ControlVDisk, error)
	ListVDisks(ctx context.Context) ([]*models.ControlVDisk, error)

	Close() error
}

// NewControlStore creates the store selected by cfg.ControlStore.Type
func NewControlStore(cfg *config.Config) (ControlStore, error) {
	switch cfg.ControlStore.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "etcd":
		return NewEtcdStore(cfg.Etcd, cfg.ControlStore.CacheTTL)
	default:
		return nil, fmt.Errorf("unsupported control store type: %s", cfg.ControlStore.Type)
	}
}

// PDiskKey returns the storage id of a PDisk record. The composite PDiskID
// wins; NodeID fills in a bare numeric PDiskID.
func PDiskKey(rec *models.ControlPDisk) (string, error) {
	key := diskid.ParsePDiskKey(rec.PDiskID)
	if key.NodeID == nil && key.PDiskID == nil {
		key = diskid.PDiskKey{NodeID: rec.NodeID, PDiskID: diskid.ParsePDiskKey("0-" + rec.PDiskID).PDiskID}
	}
	id := key.String()
	if id == "" {
		return "", fmt.Errorf("%w: pdisk %q", ErrInvalidKey, rec.PDiskID)
	}
	return id, nil
}

// VDiskKey returns the storage id of a VDisk record
func VDiskKey(rec *models.ControlVDisk) (string, error) {
	id := rec.Key()
	if id == "" {
		return "", fmt.Errorf("%w: vdisk", ErrInvalidKey)
	}
	return id, nil
}

// PDiskID formats the storage id of a PDisk
func PDiskID(nodeID, pDiskID uint32) string {
	return diskid.PDiskKey{NodeID: diskid.Uint32(nodeID), PDiskID: diskid.Uint32(pDiskID)}.String()
}

// VDisksOnPDisk lists the VDisk records placed on one PDisk
func VDisksOnPDisk(ctx context.Context, store ControlStore, nodeID, pDiskID uint32) ([]*models.ControlVDisk, error) {
	all, err := store.ListVDisks(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.ControlVDisk, 0)
	for _, rec := range all {
		if rec.NodeID == nil || rec.PDiskID == nil {
			continue
		}
		if *rec.NodeID == nodeID && *rec.PDiskID == pDiskID {
			result = append(result, rec)
		}
	}
	return result, nil
}
