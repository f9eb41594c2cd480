package disks

import (
	"encoding/json"
	"math"

	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/severity"
)

var vDiskStateSeverity = map[models.VDiskState]severity.Severity{
	models.VDiskStateOK:                    severity.Healthy,
	models.VDiskStateInitial:               severity.DegradedMinor,
	models.VDiskStateSyncGuidRecovery:      severity.DegradedMinor,
	models.VDiskStateLocalRecoveryError:    severity.Critical,
	models.VDiskStateSyncGuidRecoveryError: severity.Critical,
	models.VDiskStatePDiskError:            severity.Critical,
}

// EvaluateVDiskSeverity grades a virtual disk.
//
// Without a known state the disk is unavailable. Otherwise the worst of the
// state, the disk space flag and the front queue flag wins, with front queues
// capped at DegradedMajor. A disk that would be healthy but reports
// replicated=false is shown as Replicating, or as Donor in donor mode.
func EvaluateVDiskSeverity(state models.VDiskState, diskSpace, frontQueues severity.Flag, replicated *bool, donorMode bool) severity.Severity {
	base, ok := vDiskStateSeverity[state]
	if !ok {
		return severity.Unavailable
	}

	result := severity.Max(
		base,
		severity.FromFlag(diskSpace),
		severity.Cap(severity.FromFlag(frontQueues), severity.DegradedMajor),
	)

	if result == severity.Healthy && replicated != nil && !*replicated {
		if donorMode {
			return severity.Donor
		}
		return severity.Replicating
	}
	return result
}

// VDisk is a virtual disk after reconciling its live and control records.
type VDisk struct {
	VDiskID       *diskid.VDiskID `json:"VDiskId,omitempty"`
	StringifiedID string          `json:"StringifiedId,omitempty"`
	NodeID        *uint32         `json:"NodeId,omitempty"`
	PDiskID       *uint32         `json:"PDiskId,omitempty"`
	VDiskSlotID   *uint32         `json:"VDiskSlotId,omitempty"`

	StoragePoolName string `json:"StoragePoolName,omitempty"`
	Kind            string `json:"Kind,omitempty"`
	Guid            string `json:"Guid,omitempty"`
	IncarnationGuid string `json:"IncarnationGuid,omitempty"`
	InstanceGuid    string `json:"InstanceGuid,omitempty"`
	CreateTime      string `json:"CreateTime,omitempty"`
	ChangeTime      string `json:"ChangeTime,omitempty"`

	VDiskState  models.VDiskState `json:"VDiskState,omitempty"`
	DiskSpace   severity.Flag     `json:"DiskSpace,omitempty"`
	FrontQueues severity.Flag     `json:"FrontQueues,omitempty"`
	Overall     severity.Flag     `json:"Overall,omitempty"`

	Status         string `json:"StatusV2,omitempty"`
	IsBeingDeleted *bool  `json:"IsBeingDeleted,omitempty"`

	SatisfactionRank            *models.SatisfactionRank `json:"SatisfactionRank,omitempty"`
	Replicated                  *bool                    `json:"Replicated,omitempty"`
	UnreplicatedPhantoms        *bool                    `json:"UnreplicatedPhantoms,omitempty"`
	UnreplicatedNonPhantoms     *bool                    `json:"UnreplicatedNonPhantoms,omitempty"`
	ReplicationProgress         *float64                 `json:"ReplicationProgress,omitempty"`
	ReplicationSecondsRemaining *float64                 `json:"ReplicationSecondsRemaining,omitempty"`
	UnsyncedVDisks              string                   `json:"UnsyncedVDisks,omitempty"`
	HasUnreadableBlobs          *bool                    `json:"HasUnreadableBlobs,omitempty"`
	DonorMode                   *bool                    `json:"DonorMode,omitempty"`

	ReadThroughput  capacity.Value `json:"ReadThroughput"`
	WriteThroughput capacity.Value `json:"WriteThroughput"`

	AvailableSize    capacity.Value `json:"AvailableSize"`
	AllocatedSize    capacity.Value `json:"AllocatedSize"`
	TotalSize        capacity.Value `json:"TotalSize"`
	AllocatedPercent capacity.Value `json:"AllocatedPercent"`

	Severity severity.Severity `json:"Severity"`

	PDisk  *PDisk  `json:"PDisk,omitempty"`
	Donors []VDisk `json:"Donors,omitempty"`
}

// IsDonor reports whether the disk is a donor of another VDisk.
func (v *VDisk) IsDonor() bool {
	return v.DonorMode != nil && *v.DonorMode
}

// SlotKey returns the slot identity of the disk.
func (v *VDisk) SlotKey() diskid.VSlotKey {
	return diskid.VSlotKey{NodeID: v.NodeID, PDiskID: v.PDiskID, VSlotID: v.VDiskSlotID}
}

// EvaluateSeverity grades the disk from its current fields.
func (v *VDisk) EvaluateSeverity() severity.Severity {
	return EvaluateVDiskSeverity(v.VDiskState, v.DiskSpace, v.FrontQueues, v.Replicated, v.IsDonor())
}

// SetStoragePoolName sets the pool name on v and its donors.
func (v *VDisk) SetStoragePoolName(name string) {
	v.StoragePoolName = name
	for i := range v.Donors {
		v.Donors[i].SetStoragePoolName(name)
	}
}

// UnmarshalJSON decodes v with every size the payload leaves out unknown.
func (v *VDisk) UnmarshalJSON(data []byte) error {
	type plain VDisk
	nan := capacity.Value(math.NaN())
	decoded := plain{
		ReadThroughput:   nan,
		WriteThroughput:  nan,
		AvailableSize:    nan,
		AllocatedSize:    nan,
		TotalSize:        nan,
		AllocatedPercent: nan,
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*v = VDisk(decoded)
	return nil
}

// LiveRecord returns a live record that reconciles back to v.
func (v *VDisk) LiveRecord() *models.VDiskStateInfo {
	rec := &models.VDiskStateInfo{
		VDiskID:                     cloneVDiskID(v.VDiskID),
		CreateTime:                  v.CreateTime,
		ChangeTime:                  v.ChangeTime,
		PDiskID:                     clone(v.PDiskID),
		VDiskSlotID:                 clone(v.VDiskSlotID),
		Guid:                        v.Guid,
		Kind:                        v.Kind,
		NodeID:                      clone(v.NodeID),
		Overall:                     v.Overall,
		VDiskState:                  v.VDiskState,
		DiskSpace:                   v.DiskSpace,
		FrontQueues:                 v.FrontQueues,
		SatisfactionRank:            v.SatisfactionRank,
		Replicated:                  clone(v.Replicated),
		UnreplicatedPhantoms:        clone(v.UnreplicatedPhantoms),
		UnreplicatedNonPhantoms:     clone(v.UnreplicatedNonPhantoms),
		ReplicationProgress:         clone(v.ReplicationProgress),
		ReplicationSecondsRemaining: clone(v.ReplicationSecondsRemaining),
		UnsyncedVDisks:              v.UnsyncedVDisks,
		HasUnreadableBlobs:          clone(v.HasUnreadableBlobs),
		AllocatedSize:               v.AllocatedSize.Numeric(),
		AvailableSize:               v.AvailableSize.Numeric(),
		IncarnationGuid:             v.IncarnationGuid,
		InstanceGuid:                v.InstanceGuid,
		DonorMode:                   clone(v.DonorMode),
		StoragePoolName:             v.StoragePoolName,
		ReadThroughput:              v.ReadThroughput.Numeric(),
		WriteThroughput:             v.WriteThroughput.Numeric(),
	}
	if v.PDisk != nil {
		rec.PDisk = v.PDisk.LiveRecord()
	}
	for i := range v.Donors {
		rec.Donors = append(rec.Donors, *v.Donors[i].LiveRecord())
	}
	return rec
}

// ControlRecord returns the control-only fields of v.
func (v *VDisk) ControlRecord() *models.ControlVDisk {
	rec := &models.ControlVDisk{
		VDiskID:        v.controlID(),
		NodeID:         clone(v.NodeID),
		PDiskID:        clone(v.PDiskID),
		VDiskSlotID:    clone(v.VDiskSlotID),
		Status:         v.Status,
		IsBeingDeleted: clone(v.IsBeingDeleted),
	}
	if v.PDisk != nil {
		rec.PDisk = v.PDisk.ControlRecord()
	}
	for i := range v.Donors {
		rec.Donors = append(rec.Donors, *v.Donors[i].ControlRecord())
	}
	return rec
}

// ReconcileVDisk merges the live and control records of one virtual disk.
// Either may be nil. Live fields win; control fills the gaps. The owning
// PDisk and any donors are reconciled recursively.
func ReconcileVDisk(live *models.VDiskStateInfo, control *models.ControlVDisk) VDisk {
	return reconcileVDisk(live, control, false, math.NaN())
}

// reconcileVDisk reconciles one VDisk. A known slotSize overrides the slot
// size of the embedded PDisk.
func reconcileVDisk(live *models.VDiskStateInfo, control *models.ControlVDisk, donor bool, slotSize float64) VDisk {
	var l models.VDiskStateInfo
	if live != nil {
		l = *live
	}
	var c models.ControlVDisk
	if control != nil {
		c = *control
	}

	v := VDisk{
		NodeID:      first(l.NodeID, c.NodeID),
		VDiskSlotID: first(l.VDiskSlotID, l.VSlotID, c.VDiskSlotID),

		StoragePoolName: firstString(l.StoragePoolName, c.StoragePoolName),
		Kind:            firstString(l.Kind, c.Kind),
		Guid:            l.Guid,
		IncarnationGuid: l.IncarnationGuid,
		InstanceGuid:    l.InstanceGuid,
		CreateTime:      l.CreateTime,
		ChangeTime:      l.ChangeTime,

		VDiskState:  l.VDiskState,
		DiskSpace:   severity.Flag(firstString(string(l.DiskSpace), string(c.DiskSpace))),
		FrontQueues: l.FrontQueues,
		Overall:     l.Overall,

		Status:         c.Status,
		IsBeingDeleted: clone(c.IsBeingDeleted),

		SatisfactionRank:            l.SatisfactionRank,
		Replicated:                  clone(l.Replicated),
		UnreplicatedPhantoms:        clone(l.UnreplicatedPhantoms),
		UnreplicatedNonPhantoms:     clone(l.UnreplicatedNonPhantoms),
		ReplicationProgress:         clone(l.ReplicationProgress),
		ReplicationSecondsRemaining: clone(l.ReplicationSecondsRemaining),
		UnsyncedVDisks:              l.UnsyncedVDisks,
		HasUnreadableBlobs:          clone(l.HasUnreadableBlobs),
		DonorMode:                   clone(l.DonorMode),

		ReadThroughput:  value(l.ReadThroughput),
		WriteThroughput: value(l.WriteThroughput),
	}
	if donor {
		v.DonorMode = boolPtr(true)
	}

	switch {
	case l.VDiskID != nil:
		v.VDiskID = cloneVDiskID(l.VDiskID)
	case c.VDiskID != "":
		if id := diskid.ParseVDiskID(c.VDiskID); !id.Empty() {
			v.VDiskID = &id
		}
	}

	v.PDisk = reconcileOwner(l.PDisk, c.PDisk, v.NodeID, first(l.PDiskID, c.PDiskID))
	v.PDiskID = first(l.PDiskID, c.PDiskID)
	if v.PDiskID == nil && v.PDisk != nil {
		v.PDiskID = clone(v.PDisk.PDiskID)
	}

	v.StringifiedID = v.stringify(c.VDiskID)

	if math.IsNaN(slotSize) && v.PDisk != nil {
		slotSize = float64(v.PDisk.EnforcedDynamicSlotSize)
	}
	sizes := capacity.WithSlotLimit(
		firstNumeric(l.AvailableSize, c.AvailableSize).Float(),
		firstNumeric(l.AllocatedSize, c.AllocatedSize).Float(),
		slotSize,
	)
	v.AvailableSize = sizes.Available
	v.AllocatedSize = sizes.Allocated
	v.TotalSize = sizes.Total
	v.AllocatedPercent = sizes.Percent

	v.Donors = reconcileDonors(l.Donors, c.Donors)

	v.Severity = v.EvaluateSeverity()
	return v
}

// reconcileOwner builds the owning PDisk from embedded records, or from the
// shared node id when nothing is embedded. The VDisk node id is inherited
// when the PDisk lacks one.
func reconcileOwner(live *models.PDiskStateInfo, control *models.ControlPDisk, nodeID, pDiskID *uint32) *PDisk {
	if live == nil && control == nil {
		if nodeID == nil {
			return nil
		}
		live = &models.PDiskStateInfo{}
	}
	p := ReconcilePDisk(live, control).withKey(nodeID, pDiskID)
	return &p
}

// controlID is the composite id a control record needs to reproduce
// StringifiedID. A slot-key fallback needs none.
func (v *VDisk) controlID() string {
	if v.VDiskID != nil {
		if id := v.VDiskID.String(); id != "" {
			return id
		}
	}
	if v.StringifiedID == v.SlotKey().String() {
		return ""
	}
	return v.StringifiedID
}

func (v *VDisk) stringify(controlID string) string {
	if v.VDiskID != nil {
		if id := v.VDiskID.String(); id != "" {
			return id
		}
	}
	if controlID != "" {
		return controlID
	}
	return v.SlotKey().String()
}

// reconcileDonors pairs live and control donors by identity. Unmatched
// records of either side are reconciled alone. Every donor is marked as one.
func reconcileDonors(live []models.VDiskStateInfo, control []models.ControlVDisk) []VDisk {
	if len(live) == 0 && len(control) == 0 {
		return nil
	}

	pairs := newPairing(control)
	donors := make([]VDisk, 0, len(live)+len(control))
	for i := range live {
		var ctl *models.ControlVDisk
		if j := pairs.match(&live[i]); j >= 0 {
			ctl = &control[j]
		}
		donors = append(donors, reconcileVDisk(&live[i], ctl, true, math.NaN()))
	}
	for j := range control {
		if pairs.unused(j) {
			donors = append(donors, reconcileVDisk(nil, &control[j], true, math.NaN()))
		}
	}
	return donors
}

func cloneVDiskID(id *diskid.VDiskID) *diskid.VDiskID {
	if id == nil {
		return nil
	}
	return &diskid.VDiskID{
		GroupID:         clone(id.GroupID),
		GroupGeneration: clone(id.GroupGeneration),
		Ring:            clone(id.Ring),
		Domain:          clone(id.Domain),
		VDisk:           clone(id.VDisk),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
