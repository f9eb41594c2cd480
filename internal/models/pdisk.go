package models

import (
	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/severity"
)

// PDiskState is the lifecycle state reported by a node for a physical disk.
type PDiskState string

const (
	PDiskStateInitial                    PDiskState = "Initial"
	PDiskStateInitialFormatRead          PDiskState = "InitialFormatRead"
	PDiskStateInitialFormatReadError     PDiskState = "InitialFormatReadError"
	PDiskStateInitialSysLogRead          PDiskState = "InitialSysLogRead"
	PDiskStateInitialSysLogReadError     PDiskState = "InitialSysLogReadError"
	PDiskStateInitialSysLogParseError    PDiskState = "InitialSysLogParseError"
	PDiskStateInitialCommonLogRead       PDiskState = "InitialCommonLogRead"
	PDiskStateInitialCommonLogReadError  PDiskState = "InitialCommonLogReadError"
	PDiskStateInitialCommonLogParseError PDiskState = "InitialCommonLogParseError"
	PDiskStateCommonLoggerInitError      PDiskState = "CommonLoggerInitError"
	PDiskStateNormal                     PDiskState = "Normal"
	PDiskStateOpenFileError              PDiskState = "OpenFileError"
	PDiskStateChunkQuotaError            PDiskState = "ChunkQuotaError"
	PDiskStateDeviceIoError              PDiskState = "DeviceIoError"
	PDiskStateStopped                    PDiskState = "Stopped"
	PDiskStateMissing                    PDiskState = "Missing"
	PDiskStateTimeout                    PDiskState = "Timeout"
	PDiskStateNodeDisconnected           PDiskState = "NodeDisconnected"
	PDiskStateUnknown                    PDiskState = "Unknown"
)

// PDiskStateInfo is the live record of a physical disk as reported by the
// node that owns it.
type PDiskStateInfo struct {
	PDiskID    *uint32 `json:"PDiskId,omitempty"`
	NodeID     *uint32 `json:"NodeId,omitempty"`
	CreateTime string  `json:"CreateTime,omitempty"`
	ChangeTime string  `json:"ChangeTime,omitempty"`
	Path       string  `json:"Path,omitempty"`
	Guid       string  `json:"Guid,omitempty"`

	// Category is a numeric bitmask whose low byte encodes the media type.
	Category string `json:"Category,omitempty"`

	AvailableSize capacity.Numeric `json:"AvailableSize,omitempty"`
	TotalSize     capacity.Numeric `json:"TotalSize,omitempty"`
	State         PDiskState       `json:"State,omitempty"`

	Device       severity.Flag `json:"Device,omitempty"`
	Realtime     severity.Flag `json:"Realtime,omitempty"`
	StateFlag    severity.Flag `json:"StateFlag,omitempty"`
	Overall      severity.Flag `json:"Overall,omitempty"`
	SerialNumber string        `json:"SerialNumber,omitempty"`

	SystemSize              capacity.Numeric `json:"SystemSize,omitempty"`
	LogUsedSize             capacity.Numeric `json:"LogUsedSize,omitempty"`
	LogTotalSize            capacity.Numeric `json:"LogTotalSize,omitempty"`
	EnforcedDynamicSlotSize capacity.Numeric `json:"EnforcedDynamicSlotSize,omitempty"`
	ExpectedSlotCount       *int             `json:"ExpectedSlotCount,omitempty"`
	NumActiveSlots          *int             `json:"NumActiveSlots,omitempty"`
}

// ControlPDisk is the record of a physical disk kept by the cluster control
// plane. PDiskID is the "<nodeId>-<pDiskId>" composite.
type ControlPDisk struct {
	PDiskID  string  `json:"PDiskId,omitempty"`
	NodeID   *uint32 `json:"NodeId,omitempty"`
	Path     string  `json:"Path,omitempty"`
	Guid     string  `json:"Guid,omitempty"`
	Category string  `json:"Category,omitempty"`

	// Type is the media type name, e.g. "ssd" or "ROT".
	Type         string `json:"Type,omitempty"`
	Kind         string `json:"Kind,omitempty"`
	BoxID        string `json:"BoxId,omitempty"`
	SharedWithOs *bool  `json:"SharedWithOs,omitempty"`
	ReadCentric  *bool  `json:"ReadCentric,omitempty"`

	AvailableSize capacity.Numeric `json:"AvailableSize,omitempty"`
	TotalSize     capacity.Numeric `json:"TotalSize,omitempty"`
	State         PDiskState       `json:"State,omitempty"`

	// Status is the drive lifecycle status: ACTIVE, INACTIVE, BROKEN, FAULTY
	// or TO_BE_REMOVED.
	Status         string        `json:"StatusV2,omitempty"`
	DecommitStatus string        `json:"DecommitStatus,omitempty"`
	DiskSpace      severity.Flag `json:"DiskSpace,omitempty"`

	SlotSize                capacity.Numeric `json:"SlotSize,omitempty"`
	EnforcedDynamicSlotSize capacity.Numeric `json:"EnforcedDynamicSlotSize,omitempty"`
	ExpectedSlotCount       *int             `json:"ExpectedSlotCount,omitempty"`
	NumActiveSlots          *int             `json:"NumActiveSlots,omitempty"`
}
