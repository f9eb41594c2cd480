package disks

import "github.com/soltixdb/diskhealth/internal/models"

// PDiskPage is the reconciled view of one physical disk with the VDisks
// placed on it and its slot layout.
type PDiskPage struct {
	PDisk  PDisk   `json:"PDisk"`
	VDisks []VDisk `json:"VDisks"`
	Slots  []Slot  `json:"Slots"`
}

// PreparePDiskInfo reconciles a combined PDisk response. nodeID and pDiskID
// identify the requested disk and fill identity the records leave out.
//
// VDisks come from the live list; control vslots only complete the live
// VDisks they pair with. When the live source lists no VDisks at all, the
// control vslots stand in for them. VDisks on the page carry no owning PDisk
// since the page already holds it.
func PreparePDiskInfo(resp models.PDiskInfoResponse, nodeID, pDiskID *uint32) PDiskPage {
	var livePDisk *models.PDiskStateInfo
	var liveVDisks []models.VDiskStateInfo
	if resp.Whiteboard != nil {
		livePDisk = resp.Whiteboard.PDisk
		liveVDisks = resp.Whiteboard.VDisks
	}
	var controlPDisk *models.ControlPDisk
	var controlSlots []models.VSlotEntry
	if resp.BSC != nil {
		controlPDisk = resp.BSC.PDisk
		controlSlots = resp.BSC.VDisks
	}

	pdisk := ReconcilePDisk(livePDisk, controlPDisk).withKey(nodeID, pDiskID)

	controls := make([]models.ControlVDisk, 0, len(controlSlots))
	for _, entry := range controlSlots {
		controls = append(controls, entry.Control())
	}

	slotSize := float64(pdisk.EnforcedDynamicSlotSize)

	vdisks := make([]VDisk, 0, max(len(liveVDisks), len(controls)))
	if len(liveVDisks) > 0 {
		pairs := newPairing(controls)
		for i := range liveVDisks {
			var ctl *models.ControlVDisk
			if j := pairs.match(&liveVDisks[i]); j >= 0 {
				ctl = &controls[j]
			}
			vdisks = append(vdisks, pageVDisk(&liveVDisks[i], ctl, pdisk, slotSize))
		}
	} else {
		for j := range controls {
			vdisks = append(vdisks, pageVDisk(nil, &controls[j], pdisk, slotSize))
		}
	}

	filtered := vdisks[:0]
	for i := range vdisks {
		if placedOn(&vdisks[i], &pdisk) {
			filtered = append(filtered, vdisks[i])
		}
	}

	return PDiskPage{
		PDisk:  pdisk,
		VDisks: filtered,
		Slots:  ComputeSlots(pdisk, filtered),
	}
}

func pageVDisk(live *models.VDiskStateInfo, control *models.ControlVDisk, pdisk PDisk, slotSize float64) VDisk {
	v := reconcileVDisk(live, control, false, slotSize)
	if v.NodeID == nil {
		v.NodeID = clone(pdisk.NodeID)
	}
	if v.PDiskID == nil {
		v.PDiskID = clone(pdisk.PDiskID)
	}
	if v.StringifiedID == "" {
		v.StringifiedID = v.SlotKey().String()
	}
	v.PDisk = nil
	return v
}
