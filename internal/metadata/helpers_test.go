package metadata

import (
	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/models"
)

func u32(v uint32) *uint32 { return diskid.Uint32(v) }

func testControlPDisk(nodeID, pDiskID uint32) *models.ControlPDisk {
	return &models.ControlPDisk{
		PDiskID:       PDiskID(nodeID, pDiskID),
		NodeID:        u32(nodeID),
		Path:          "/dev/disk/by-partlabel/kikimr_nvme_01",
		Type:          "NVME",
		AvailableSize: "100",
		TotalSize:     "1000",
		State:         models.PDiskStateNormal,
		Status:        "ACTIVE",
		SlotSize:      capacity.Numeric("200"),
	}
}

func testControlVDisk(id string, nodeID, pDiskID, slotID uint32) *models.ControlVDisk {
	return &models.ControlVDisk{
		VDiskID:       id,
		NodeID:        u32(nodeID),
		PDiskID:       u32(pDiskID),
		VDiskSlotID:   u32(slotID),
		AllocatedSize: "10",
		AvailableSize: "90",
		Status:        "READY",
	}
}

func testConfig(storeType string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ControlStore.Type = storeType
	return cfg
}
