package models

import (
	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/severity"
)

// VDiskState is the lifecycle state reported by a node for a virtual disk.
type VDiskState string

const (
	VDiskStateInitial               VDiskState = "Initial"
	VDiskStateLocalRecoveryError    VDiskState = "LocalRecoveryError"
	VDiskStateSyncGuidRecovery      VDiskState = "SyncGuidRecovery"
	VDiskStateSyncGuidRecoveryError VDiskState = "SyncGuidRecoveryError"
	VDiskStateOK                    VDiskState = "OK"
	VDiskStatePDiskError            VDiskState = "PDiskError"
)

// SatisfactionRank reports how well a VDisk keeps up with its load.
type SatisfactionRank struct {
	FreshRank *Rank `json:"FreshRank,omitempty"`
	LevelRank *Rank `json:"LevelRank,omitempty"`
}

type Rank struct {
	RankPercent *float64      `json:"RankPercent,omitempty"`
	Flag        severity.Flag `json:"Flag,omitempty"`
}

// VDiskStateInfo is the live record of a virtual disk as reported by the
// node that hosts it.
//
// Donors may arrive in a degenerate shape carrying only NodeID, PDiskID and
// VSlotID.
type VDiskStateInfo struct {
	VDiskID     *diskid.VDiskID `json:"VDiskId,omitempty"`
	CreateTime  string          `json:"CreateTime,omitempty"`
	ChangeTime  string          `json:"ChangeTime,omitempty"`
	PDiskID     *uint32         `json:"PDiskId,omitempty"`
	PDisk       *PDiskStateInfo `json:"PDisk,omitempty"`
	VDiskSlotID *uint32         `json:"VDiskSlotId,omitempty"`
	VSlotID     *uint32         `json:"VSlotId,omitempty"`
	Guid        string          `json:"Guid,omitempty"`
	Kind        string          `json:"Kind,omitempty"`
	NodeID      *uint32         `json:"NodeId,omitempty"`

	Overall     severity.Flag `json:"Overall,omitempty"`
	VDiskState  VDiskState    `json:"VDiskState,omitempty"`
	DiskSpace   severity.Flag `json:"DiskSpace,omitempty"`
	FrontQueues severity.Flag `json:"FrontQueues,omitempty"`

	SatisfactionRank            *SatisfactionRank `json:"SatisfactionRank,omitempty"`
	Replicated                  *bool             `json:"Replicated,omitempty"`
	UnreplicatedPhantoms        *bool             `json:"UnreplicatedPhantoms,omitempty"`
	UnreplicatedNonPhantoms     *bool             `json:"UnreplicatedNonPhantoms,omitempty"`
	ReplicationProgress         *float64          `json:"ReplicationProgress,omitempty"`
	ReplicationSecondsRemaining *float64          `json:"ReplicationSecondsRemaining,omitempty"`
	UnsyncedVDisks              string            `json:"UnsyncedVDisks,omitempty"`
	HasUnreadableBlobs          *bool             `json:"HasUnreadableBlobs,omitempty"`

	AllocatedSize capacity.Numeric `json:"AllocatedSize,omitempty"`
	AvailableSize capacity.Numeric `json:"AvailableSize,omitempty"`

	IncarnationGuid string           `json:"IncarnationGuid,omitempty"`
	InstanceGuid    string           `json:"InstanceGuid,omitempty"`
	DonorMode       *bool            `json:"DonorMode,omitempty"`
	Donors          []VDiskStateInfo `json:"Donors,omitempty"`
	StoragePoolName string           `json:"StoragePoolName,omitempty"`

	ReadThroughput  capacity.Numeric `json:"ReadThroughput,omitempty"`
	WriteThroughput capacity.Numeric `json:"WriteThroughput,omitempty"`
}

// SlotKey returns the slot identity of the record. VSlotID is used when the
// record carries no VDiskSlotID.
func (v *VDiskStateInfo) SlotKey() diskid.VSlotKey {
	slot := v.VDiskSlotID
	if slot == nil {
		slot = v.VSlotID
	}
	return diskid.VSlotKey{NodeID: v.NodeID, PDiskID: v.PDiskID, VSlotID: slot}
}

// ControlVDisk is the record of a virtual disk kept by the cluster control
// plane. VDiskID is the five-part composite id.
type ControlVDisk struct {
	VDiskID     string  `json:"VDiskId,omitempty"`
	NodeID      *uint32 `json:"NodeId,omitempty"`
	PDiskID     *uint32 `json:"PDiskId,omitempty"`
	VDiskSlotID *uint32 `json:"VDiskSlotId,omitempty"`
	Kind        string  `json:"Kind,omitempty"`

	AllocatedSize capacity.Numeric `json:"AllocatedSize,omitempty"`
	AvailableSize capacity.Numeric `json:"AvailableSize,omitempty"`

	// Status is the slot lifecycle status: ERROR, INIT_PENDING, REPLICATING
	// or READY.
	Status          string        `json:"StatusV2,omitempty"`
	DiskSpace       severity.Flag `json:"DiskSpace,omitempty"`
	IsBeingDeleted  *bool         `json:"IsBeingDeleted,omitempty"`
	StoragePoolName string        `json:"StoragePoolName,omitempty"`

	PDisk  *ControlPDisk  `json:"PDisk,omitempty"`
	Donors []ControlVDisk `json:"Donors,omitempty"`
}

// Key returns the identity the record is stored under.
func (v *ControlVDisk) Key() string {
	if v.VDiskID != "" {
		return v.VDiskID
	}
	return diskid.VSlotKey{NodeID: v.NodeID, PDiskID: v.PDiskID, VSlotID: v.VDiskSlotID}.String()
}

// VSlotEntry is a VDisk slot as listed by the control plane for one PDisk.
type VSlotEntry struct {
	Key  *diskid.VSlotKey `json:"Key,omitempty"`
	Info *VSlotInfo       `json:"Info,omitempty"`
}

// VSlotInfo is the VDisk half of a slot entry.
type VSlotInfo struct {
	GroupID         *uint32          `json:"GroupId,omitempty"`
	GroupGeneration *uint32          `json:"GroupGeneration,omitempty"`
	FailRealm       *uint32          `json:"FailRealm,omitempty"`
	FailDomain      *uint32          `json:"FailDomain,omitempty"`
	VDisk           *uint32          `json:"VDisk,omitempty"`
	AllocatedSize   capacity.Numeric `json:"AllocatedSize,omitempty"`
	AvailableSize   capacity.Numeric `json:"AvailableSize,omitempty"`
	Status          string           `json:"StatusV2,omitempty"`
	Kind            string           `json:"Kind,omitempty"`
	IsBeingDeleted  *bool            `json:"IsBeingDeleted,omitempty"`
	DiskSpace       severity.Flag    `json:"DiskSpace,omitempty"`
	StoragePoolName string           `json:"StoragePoolName,omitempty"`
	PDisk           *ControlPDisk    `json:"PDisk,omitempty"`
	Donors          []ControlVDisk   `json:"Donors,omitempty"`
}

// Control converts the slot entry into a control VDisk record.
func (e VSlotEntry) Control() ControlVDisk {
	var rec ControlVDisk
	if e.Key != nil {
		rec.NodeID = e.Key.NodeID
		rec.PDiskID = e.Key.PDiskID
		rec.VDiskSlotID = e.Key.VSlotID
	}
	if e.Info != nil {
		rec.VDiskID = diskid.VDiskID{
			GroupID:         e.Info.GroupID,
			GroupGeneration: e.Info.GroupGeneration,
			Ring:            e.Info.FailRealm,
			Domain:          e.Info.FailDomain,
			VDisk:           e.Info.VDisk,
		}.Partial()
		rec.AllocatedSize = e.Info.AllocatedSize
		rec.AvailableSize = e.Info.AvailableSize
		rec.Status = e.Info.Status
		rec.Kind = e.Info.Kind
		rec.IsBeingDeleted = e.Info.IsBeingDeleted
		rec.DiskSpace = e.Info.DiskSpace
		rec.StoragePoolName = e.Info.StoragePoolName
		rec.PDisk = e.Info.PDisk
		rec.Donors = e.Info.Donors
	}
	return rec
}

// SlotEntry converts the control record into the slot entry shape the
// control plane lists per PDisk.
func (v *ControlVDisk) SlotEntry() VSlotEntry {
	id := diskid.ParseVDiskID(v.VDiskID)
	return VSlotEntry{
		Key: &diskid.VSlotKey{NodeID: v.NodeID, PDiskID: v.PDiskID, VSlotID: v.VDiskSlotID},
		Info: &VSlotInfo{
			GroupID:         id.GroupID,
			GroupGeneration: id.GroupGeneration,
			FailRealm:       id.Ring,
			FailDomain:      id.Domain,
			VDisk:           id.VDisk,
			AllocatedSize:   v.AllocatedSize,
			AvailableSize:   v.AvailableSize,
			Status:          v.Status,
			Kind:            v.Kind,
			IsBeingDeleted:  v.IsBeingDeleted,
			DiskSpace:       v.DiskSpace,
			StoragePoolName: v.StoragePoolName,
			PDisk:           v.PDisk,
			Donors:          v.Donors,
		},
	}
}
