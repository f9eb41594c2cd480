// Package disks reconciles live and control records of physical and virtual
// disks into normalized records and grades their health.
package disks

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/severity"
)

// MediaType is the storage medium of a physical disk.
type MediaType string

const (
	MediaRotational MediaType = "ROT"
	MediaSSD        MediaType = "SSD"
	MediaNVMe       MediaType = "NVME"
)

// MediaTypeFromCategory decodes the low byte of a category bitmask.
func MediaTypeFromCategory(category string) MediaType {
	v, err := strconv.ParseUint(strings.TrimSpace(category), 10, 64)
	if err != nil {
		return ""
	}
	switch v & 0xff {
	case 0:
		return MediaRotational
	case 1:
		return MediaSSD
	case 2:
		return MediaNVMe
	default:
		return ""
	}
}

// ParseMediaType normalizes a media type name such as "ssd".
func ParseMediaType(name string) MediaType {
	switch t := MediaType(strings.ToUpper(strings.TrimSpace(name))); t {
	case MediaRotational, MediaSSD, MediaNVMe:
		return t
	default:
		return ""
	}
}

var pDiskStateSeverity = map[models.PDiskState]severity.Severity{
	models.PDiskStateNormal: severity.Healthy,

	models.PDiskStateInitial:              severity.DegradedMinor,
	models.PDiskStateInitialFormatRead:    severity.DegradedMinor,
	models.PDiskStateInitialSysLogRead:    severity.DegradedMinor,
	models.PDiskStateInitialCommonLogRead: severity.DegradedMinor,

	models.PDiskStateInitialFormatReadError:     severity.Critical,
	models.PDiskStateInitialSysLogReadError:     severity.Critical,
	models.PDiskStateInitialSysLogParseError:    severity.Critical,
	models.PDiskStateInitialCommonLogReadError:  severity.Critical,
	models.PDiskStateInitialCommonLogParseError: severity.Critical,
	models.PDiskStateCommonLoggerInitError:      severity.Critical,
	models.PDiskStateOpenFileError:              severity.Critical,
	models.PDiskStateChunkQuotaError:            severity.Critical,
	models.PDiskStateDeviceIoError:              severity.Critical,
	models.PDiskStateStopped:                    severity.Critical,
}

// EvaluatePDiskSeverity grades a physical disk from its state and the share
// of its capacity in use. States outside the table, including Missing,
// Timeout and NodeDisconnected, are unavailable regardless of usage.
func EvaluatePDiskSeverity(state models.PDiskState, allocatedPercent float64) severity.Severity {
	base, ok := pDiskStateSeverity[state]
	if !ok {
		return severity.Unavailable
	}
	if math.IsNaN(allocatedPercent) {
		allocatedPercent = 0
	}
	return severity.Max(base, severity.ForSpaceUsage(allocatedPercent))
}

// PDisk is a physical disk after reconciling its live and control records.
type PDisk struct {
	NodeID        *uint32 `json:"NodeId,omitempty"`
	PDiskID       *uint32 `json:"PDiskId,omitempty"`
	StringifiedID string  `json:"StringifiedId,omitempty"`

	Type         MediaType `json:"Type,omitempty"`
	Category     string    `json:"Category,omitempty"`
	Path         string    `json:"Path,omitempty"`
	Guid         string    `json:"Guid,omitempty"`
	SerialNumber string    `json:"SerialNumber,omitempty"`
	CreateTime   string    `json:"CreateTime,omitempty"`
	ChangeTime   string    `json:"ChangeTime,omitempty"`

	State     models.PDiskState `json:"State,omitempty"`
	Device    severity.Flag     `json:"Device,omitempty"`
	Realtime  severity.Flag     `json:"Realtime,omitempty"`
	StateFlag severity.Flag     `json:"StateFlag,omitempty"`
	Overall   severity.Flag     `json:"Overall,omitempty"`

	Status         string        `json:"StatusV2,omitempty"`
	DecommitStatus string        `json:"DecommitStatus,omitempty"`
	DiskSpace      severity.Flag `json:"DiskSpace,omitempty"`

	AvailableSize    capacity.Value `json:"AvailableSize"`
	TotalSize        capacity.Value `json:"TotalSize"`
	AllocatedSize    capacity.Value `json:"AllocatedSize"`
	AllocatedPercent capacity.Value `json:"AllocatedPercent"`

	SystemSize              capacity.Value `json:"SystemSize"`
	LogUsedSize             capacity.Value `json:"LogUsedSize"`
	LogTotalSize            capacity.Value `json:"LogTotalSize"`
	EnforcedDynamicSlotSize capacity.Value `json:"EnforcedDynamicSlotSize"`
	ExpectedSlotCount       *int           `json:"ExpectedSlotCount,omitempty"`
	NumActiveSlots          *int           `json:"NumActiveSlots,omitempty"`

	Severity severity.Severity `json:"Severity"`
}

// UnmarshalJSON decodes p with every size the payload leaves out unknown.
func (p *PDisk) UnmarshalJSON(data []byte) error {
	type plain PDisk
	nan := capacity.Value(math.NaN())
	decoded := plain{
		AvailableSize:           nan,
		TotalSize:               nan,
		AllocatedSize:           nan,
		AllocatedPercent:        nan,
		SystemSize:              nan,
		LogUsedSize:             nan,
		LogTotalSize:            nan,
		EnforcedDynamicSlotSize: nan,
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = PDisk(decoded)
	return nil
}

// Key returns the structured identity of the disk.
func (p *PDisk) Key() diskid.PDiskKey {
	return diskid.PDiskKey{NodeID: p.NodeID, PDiskID: p.PDiskID}
}

// EvaluateSeverity grades the disk from its current fields.
func (p *PDisk) EvaluateSeverity() severity.Severity {
	return EvaluatePDiskSeverity(p.State, float64(p.AllocatedPercent))
}

// LiveRecord returns a live record that reconciles back to p.
func (p *PDisk) LiveRecord() *models.PDiskStateInfo {
	return &models.PDiskStateInfo{
		PDiskID:                 clone(p.PDiskID),
		NodeID:                  clone(p.NodeID),
		CreateTime:              p.CreateTime,
		ChangeTime:              p.ChangeTime,
		Path:                    p.Path,
		Guid:                    p.Guid,
		Category:                p.Category,
		AvailableSize:           p.AvailableSize.Numeric(),
		TotalSize:               p.TotalSize.Numeric(),
		State:                   p.State,
		Device:                  p.Device,
		Realtime:                p.Realtime,
		StateFlag:               p.StateFlag,
		Overall:                 p.Overall,
		SerialNumber:            p.SerialNumber,
		SystemSize:              p.SystemSize.Numeric(),
		LogUsedSize:             p.LogUsedSize.Numeric(),
		LogTotalSize:            p.LogTotalSize.Numeric(),
		EnforcedDynamicSlotSize: p.EnforcedDynamicSlotSize.Numeric(),
		ExpectedSlotCount:       clone(p.ExpectedSlotCount),
		NumActiveSlots:          clone(p.NumActiveSlots),
	}
}

// ControlRecord returns the control-only fields of p.
func (p *PDisk) ControlRecord() *models.ControlPDisk {
	return &models.ControlPDisk{
		PDiskID:        p.StringifiedID,
		NodeID:         clone(p.NodeID),
		Type:           string(p.Type),
		Status:         p.Status,
		DecommitStatus: p.DecommitStatus,
		DiskSpace:      p.DiskSpace,
	}
}

// ReconcilePDisk merges the live and control records of one physical disk.
// Either may be nil. Live fields win; control fills the gaps. Identity falls
// back to the control composite id.
func ReconcilePDisk(live *models.PDiskStateInfo, control *models.ControlPDisk) PDisk {
	var l models.PDiskStateInfo
	if live != nil {
		l = *live
	}
	var c models.ControlPDisk
	if control != nil {
		c = *control
	}
	key := diskid.ParsePDiskKey(c.PDiskID)

	p := PDisk{
		NodeID:       first(l.NodeID, c.NodeID, key.NodeID),
		PDiskID:      first(l.PDiskID, key.PDiskID),
		Category:     firstString(l.Category, c.Category),
		Path:         firstString(l.Path, c.Path),
		Guid:         firstString(l.Guid, c.Guid),
		SerialNumber: l.SerialNumber,
		CreateTime:   l.CreateTime,
		ChangeTime:   l.ChangeTime,

		State:     firstState(l.State, c.State),
		Device:    l.Device,
		Realtime:  l.Realtime,
		StateFlag: l.StateFlag,
		Overall:   l.Overall,

		Status:         c.Status,
		DecommitStatus: c.DecommitStatus,
		DiskSpace:      c.DiskSpace,

		SystemSize:              value(l.SystemSize),
		LogUsedSize:             value(l.LogUsedSize),
		LogTotalSize:            value(l.LogTotalSize),
		EnforcedDynamicSlotSize: value(firstNumeric(l.EnforcedDynamicSlotSize, c.EnforcedDynamicSlotSize, c.SlotSize)),
		ExpectedSlotCount:       first(l.ExpectedSlotCount, c.ExpectedSlotCount),
		NumActiveSlots:          first(l.NumActiveSlots, c.NumActiveSlots),
	}

	p.StringifiedID = p.Key().String()
	if p.StringifiedID == "" {
		p.StringifiedID = c.PDiskID
	}

	p.Type = MediaTypeFromCategory(p.Category)
	if p.Type == "" {
		p.Type = ParseMediaType(c.Type)
	}

	sizes := capacity.FromAvailableAndTotal(
		firstNumeric(l.AvailableSize, c.AvailableSize).Float(),
		firstNumeric(l.TotalSize, c.TotalSize).Float(),
	)
	p.AvailableSize = sizes.Available
	p.TotalSize = sizes.Total
	p.AllocatedSize = sizes.Allocated
	p.AllocatedPercent = sizes.Percent

	p.Severity = p.EvaluateSeverity()
	return p
}

func firstState(states ...models.PDiskState) models.PDiskState {
	for _, s := range states {
		if s != "" {
			return s
		}
	}
	return ""
}

// withKey fills identity parts that the records left unset.
func (p PDisk) withKey(nodeID, pDiskID *uint32) PDisk {
	if p.NodeID == nil && nodeID != nil {
		p.NodeID = clone(nodeID)
	}
	if p.PDiskID == nil && pDiskID != nil {
		p.PDiskID = clone(pDiskID)
	}
	if id := p.Key().String(); id != "" {
		p.StringifiedID = id
	}
	return p
}

func value(n capacity.Numeric) capacity.Value {
	return capacity.Value(n.Float())
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func first[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return clone(v)
		}
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNumeric(values ...capacity.Numeric) capacity.Numeric {
	for _, v := range values {
		if v.Present() {
			return v
		}
	}
	return ""
}
