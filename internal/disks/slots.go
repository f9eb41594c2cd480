package disks

import (
	"math"

	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/severity"
)

// SlotKind is the kind of space a slot accounts for.
type SlotKind string

const (
	SlotLog   SlotKind = "log"
	SlotVDisk SlotKind = "vDisk"
	SlotEmpty SlotKind = "empty"
)

// Slot is one partition of a physical disk.
type Slot struct {
	Kind         SlotKind          `json:"SlotType"`
	ID           string            `json:"Id,omitempty"`
	Title        string            `json:"Title,omitempty"`
	Severity     severity.Severity `json:"Severity"`
	Used         capacity.Value    `json:"Used"`
	Total        capacity.Value    `json:"Total"`
	UsagePercent capacity.Value    `json:"UsagePct"`
	VDisk        *VDisk            `json:"SlotData,omitempty"`
}

// ComputeSlots partitions pdisk into one log slot, one slot per VDisk placed
// on it, and empty slots up to the expected slot count. VDisks of other
// PDisks are skipped.
//
// Slot severities follow space usage only. Empty slots are always healthy.
func ComputeSlots(pdisk PDisk, vdisks []VDisk) []Slot {
	slots := []Slot{logSlot(pdisk)}

	slotSize := float64(pdisk.EnforcedDynamicSlotSize)
	var vDiskTotal float64
	for i := range vdisks {
		if !placedOn(&vdisks[i], &pdisk) {
			continue
		}
		slot := vDiskSlot(vdisks[i], slotSize)
		vDiskTotal += float64(slot.Total)
		slots = append(slots, slot)
	}

	used := len(slots) - 1
	if pdisk.ExpectedSlotCount == nil || *pdisk.ExpectedSlotCount <= used {
		return slots
	}

	count := *pdisk.ExpectedSlotCount - used
	size := slotSize
	if math.IsNaN(size) {
		size = (float64(pdisk.TotalSize) - vDiskTotal - float64(pdisk.LogTotalSize)) / float64(count)
	}
	for i := 0; i < count; i++ {
		slots = append(slots, Slot{
			Kind:         SlotEmpty,
			Severity:     severity.Healthy,
			Used:         0,
			Total:        capacity.Value(size),
			UsagePercent: 0,
		})
	}
	return slots
}

func logSlot(pdisk PDisk) Slot {
	used := float64(pdisk.LogUsedSize)
	total := float64(pdisk.LogTotalSize)
	pct := capacity.UsagePercent(used, total)
	return Slot{
		Kind:         SlotLog,
		ID:           pdisk.StringifiedID,
		Title:        "Log",
		Severity:     severity.ForSpaceUsage(pct),
		Used:         capacity.Value(used),
		Total:        capacity.Value(total),
		UsagePercent: capacity.Value(pct),
	}
}

func vDiskSlot(vdisk VDisk, slotSize float64) Slot {
	sizes := capacity.WithSlotLimit(float64(vdisk.AvailableSize), float64(vdisk.AllocatedSize), slotSize)
	used := float64(sizes.Allocated)
	total := float64(sizes.Total)
	if used > total {
		total = used
	}
	pct := capacity.UsagePercent(used, total)
	return Slot{
		Kind:         SlotVDisk,
		ID:           vdisk.StringifiedID,
		Title:        vdisk.StoragePoolName,
		Severity:     severity.ForSpaceUsage(pct),
		Used:         capacity.Value(used),
		Total:        capacity.Value(total),
		UsagePercent: capacity.Value(pct),
		VDisk:        &vdisk,
	}
}

func placedOn(vdisk *VDisk, pdisk *PDisk) bool {
	if vdisk.PDiskID == nil || pdisk.PDiskID == nil {
		return true
	}
	if !diskid.Equal(vdisk.PDiskID, pdisk.PDiskID) {
		return false
	}
	return vdisk.NodeID == nil || pdisk.NodeID == nil || diskid.Equal(vdisk.NodeID, pdisk.NodeID)
}
