package disks

import (
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/models"
)

// pairing matches live VDisk records to the control records of the same
// disk. Composite ids are compared first, including partially parsed ones.
// The slot key is only used when one side carries no id, so a reused slot
// never merges two different VDisks.
type pairing struct {
	byID   map[string]int
	bySlot map[string]int
	hasID  []bool
	used   []bool
}

func newPairing(control []models.ControlVDisk) *pairing {
	p := &pairing{
		byID:   make(map[string]int, len(control)),
		bySlot: make(map[string]int, len(control)),
		hasID:  make([]bool, len(control)),
		used:   make([]bool, len(control)),
	}
	for i := range control {
		if id := diskid.ParseVDiskID(control[i].VDiskID).Partial(); id != "" {
			p.hasID[i] = true
			if _, dup := p.byID[id]; !dup {
				p.byID[id] = i
			}
		}
		slot := diskid.VSlotKey{NodeID: control[i].NodeID, PDiskID: control[i].PDiskID, VSlotID: control[i].VDiskSlotID}.String()
		if _, dup := p.bySlot[slot]; slot != "" && !dup {
			p.bySlot[slot] = i
		}
	}
	return p
}

// match returns the index of the unused control record of live, or -1.
func (p *pairing) match(live *models.VDiskStateInfo) int {
	var id string
	if live.VDiskID != nil {
		id = live.VDiskID.Partial()
	}
	if id != "" {
		if j, ok := p.byID[id]; ok && !p.used[j] {
			p.used[j] = true
			return j
		}
	}
	if slot := live.SlotKey().String(); slot != "" {
		if j, ok := p.bySlot[slot]; ok && !p.used[j] && (id == "" || !p.hasID[j]) {
			p.used[j] = true
			return j
		}
	}
	return -1
}

// unused reports whether control record j was left unpaired.
func (p *pairing) unused(j int) bool {
	return !p.used[j]
}
