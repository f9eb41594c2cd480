package disks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/severity"
)

func boolRef(b bool) *bool {
	return &b
}

func TestEvaluateVDiskSeverity(t *testing.T) {
	tests := []struct {
		name        string
		state       models.VDiskState
		diskSpace   severity.Flag
		frontQueues severity.Flag
		replicated  *bool
		donor       bool
		expected    severity.Severity
	}{
		{name: "absent state ignores flags", state: "", diskSpace: severity.FlagRed, frontQueues: severity.FlagRed, expected: severity.Unavailable},
		{name: "unknown state", state: "Rebooting", diskSpace: severity.FlagGreen, expected: severity.Unavailable},
		{name: "ok", state: models.VDiskStateOK, diskSpace: severity.FlagGreen, frontQueues: severity.FlagGreen, expected: severity.Healthy},
		{name: "ok without flags", state: models.VDiskStateOK, expected: severity.Healthy},
		{name: "disk space yellow", state: models.VDiskStateOK, diskSpace: severity.FlagYellow, expected: severity.DegradedMinor},
		{name: "disk space red", state: models.VDiskStateOK, diskSpace: severity.FlagRed, expected: severity.Critical},
		{name: "front queues capped", state: models.VDiskStateOK, frontQueues: severity.FlagRed, expected: severity.DegradedMajor},
		{name: "front queues orange", state: models.VDiskStateOK, frontQueues: severity.FlagOrange, expected: severity.DegradedMajor},
		{name: "initial", state: models.VDiskStateInitial, expected: severity.DegradedMinor},
		{name: "sync guid recovery", state: models.VDiskStateSyncGuidRecovery, expected: severity.DegradedMinor},
		{name: "pdisk error", state: models.VDiskStatePDiskError, expected: severity.Critical},
		{name: "local recovery error beats queues", state: models.VDiskStateLocalRecoveryError, frontQueues: severity.FlagRed, expected: severity.Critical},
		{name: "replicating", state: models.VDiskStateOK, replicated: boolRef(false), expected: severity.Replicating},
		{name: "replicating donor", state: models.VDiskStateOK, replicated: boolRef(false), donor: true, expected: severity.Donor},
		{name: "replicated", state: models.VDiskStateOK, replicated: boolRef(true), expected: severity.Healthy},
		{name: "replication unknown", state: models.VDiskStateOK, replicated: nil, expected: severity.Healthy},
		{name: "degraded not replicated", state: models.VDiskStateInitial, replicated: boolRef(false), expected: severity.DegradedMinor},
		{name: "full not replicated", state: models.VDiskStateOK, diskSpace: severity.FlagYellow, replicated: boolRef(false), expected: severity.DegradedMinor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvaluateVDiskSeverity(tt.state, tt.diskSpace, tt.frontQueues, tt.replicated, tt.donor))
		})
	}
}

func TestReconcileVDisk_LiveOnly(t *testing.T) {
	vdisk := ReconcileVDisk(&models.VDiskStateInfo{
		VDiskID:       &diskid.VDiskID{GroupID: u32(0), GroupGeneration: u32(1), Ring: u32(0), Domain: u32(0), VDisk: u32(0)},
		NodeID:        u32(1),
		PDiskID:       u32(1),
		VDiskSlotID:   u32(1000),
		AllocatedSize: "8996782080",
		AvailableSize: "188523479040",
		VDiskState:    models.VDiskStateOK,
		DiskSpace:     severity.FlagGreen,
		Replicated:    boolRef(true),
	}, nil)

	assert.Equal(t, "0-1-0-0-0", vdisk.StringifiedID)
	assert.Equal(t, capacity.Value(197520261120), vdisk.TotalSize)
	assert.Equal(t, capacity.Value(4), vdisk.AllocatedPercent)
	assert.Equal(t, severity.Healthy, vdisk.Severity)

	require.NotNil(t, vdisk.PDisk)
	assert.Equal(t, "1-1", vdisk.PDisk.StringifiedID)
	assert.Equal(t, severity.Unavailable, vdisk.PDisk.Severity)
}

func TestReconcileVDisk_ControlOnly(t *testing.T) {
	vdisk := ReconcileVDisk(nil, &models.ControlVDisk{
		VDiskID:       "2181038134-22-0-0-0",
		NodeID:        u32(224),
		AllocatedSize: "30943477760",
		AvailableSize: "234461593600",
		Status:        "READY",
	})

	require.NotNil(t, vdisk.VDiskID)
	require.NotNil(t, vdisk.VDiskID.GroupID)
	assert.Equal(t, uint32(2181038134), *vdisk.VDiskID.GroupID)
	assert.Equal(t, "2181038134-22-0-0-0", vdisk.StringifiedID)
	assert.Equal(t, "READY", vdisk.Status)
	assert.Equal(t, capacity.Value(265405071360), vdisk.TotalSize)
	assert.Equal(t, capacity.Value(11), vdisk.AllocatedPercent)
	assert.Equal(t, severity.Unavailable, vdisk.Severity)

	require.NotNil(t, vdisk.PDisk)
	require.NotNil(t, vdisk.PDisk.NodeID)
	assert.Equal(t, uint32(224), *vdisk.PDisk.NodeID)
	assertUnknown(t, vdisk.PDisk.TotalSize)
	assert.Equal(t, severity.Unavailable, vdisk.PDisk.Severity)
}

func TestReconcileVDisk_Absent(t *testing.T) {
	vdisk := ReconcileVDisk(nil, nil)

	assert.Nil(t, vdisk.PDisk)
	assert.Equal(t, "", vdisk.StringifiedID)
	assertUnknown(t, vdisk.TotalSize)
	assertUnknown(t, vdisk.AllocatedPercent)
	assert.Equal(t, severity.Unavailable, vdisk.Severity)
}

func TestReconcileVDisk_EmbeddedPDiskInheritsNode(t *testing.T) {
	vdisk := ReconcileVDisk(&models.VDiskStateInfo{
		NodeID:     u32(5),
		VDiskState: models.VDiskStateOK,
		PDisk: &models.PDiskStateInfo{
			PDiskID:       u32(3),
			State:         models.PDiskStateNormal,
			AvailableSize: "400",
			TotalSize:     "500",
		},
	}, nil)

	require.NotNil(t, vdisk.PDisk)
	assert.Equal(t, "5-3", vdisk.PDisk.StringifiedID)
	assert.Equal(t, severity.Healthy, vdisk.PDisk.Severity)
	require.NotNil(t, vdisk.PDiskID)
	assert.Equal(t, uint32(3), *vdisk.PDiskID)
}

func TestReconcileVDisk_SlotLimitFromPDisk(t *testing.T) {
	vdisk := ReconcileVDisk(&models.VDiskStateInfo{
		VDiskState:    models.VDiskStateOK,
		AllocatedSize: "800",
		AvailableSize: "0",
		PDisk:         &models.PDiskStateInfo{EnforcedDynamicSlotSize: "500"},
	}, nil)

	assert.Equal(t, capacity.Value(500), vdisk.TotalSize)
	assert.Equal(t, capacity.Value(160), vdisk.AllocatedPercent)
}

func TestReconcileVDisk_SlotLimitWithoutFreeSpace(t *testing.T) {
	vdisk := ReconcileVDisk(&models.VDiskStateInfo{
		AllocatedSize: "300",
		PDisk:         &models.PDiskStateInfo{EnforcedDynamicSlotSize: "500"},
	}, nil)

	assert.Equal(t, capacity.Value(0), vdisk.AvailableSize)
	assert.Equal(t, capacity.Value(500), vdisk.TotalSize)
	assert.Equal(t, capacity.Value(60), vdisk.AllocatedPercent)
}

func TestReconcileVDisk_LiveWins(t *testing.T) {
	vdisk := ReconcileVDisk(
		&models.VDiskStateInfo{AllocatedSize: "100", AvailableSize: "400", DiskSpace: severity.FlagYellow},
		&models.ControlVDisk{VDiskID: "1-0-0-0-0", AllocatedSize: "1", AvailableSize: "1", DiskSpace: severity.FlagRed, StoragePoolName: "pool"},
	)

	assert.Equal(t, capacity.Value(500), vdisk.TotalSize)
	assert.Equal(t, severity.FlagYellow, vdisk.DiskSpace)
	assert.Equal(t, "pool", vdisk.StoragePoolName)
	assert.Equal(t, "1-0-0-0-0", vdisk.StringifiedID)
}

func TestReconcileVDisk_Donors(t *testing.T) {
	vdisk := ReconcileVDisk(&models.VDiskStateInfo{
		VDiskID:    &diskid.VDiskID{GroupID: u32(1), GroupGeneration: u32(1), Ring: u32(0), Domain: u32(0), VDisk: u32(0)},
		VDiskState: models.VDiskStateOK,
		Replicated: boolRef(false),
		Donors: []models.VDiskStateInfo{
			{
				VDiskID:    &diskid.VDiskID{GroupID: u32(1), GroupGeneration: u32(0), Ring: u32(0), Domain: u32(0), VDisk: u32(0)},
				NodeID:     u32(4),
				VDiskState: models.VDiskStateOK,
				Replicated: boolRef(false),
			},
			{NodeID: u32(1), PDiskID: u32(2), VSlotID: u32(3)},
		},
	}, &models.ControlVDisk{
		VDiskID: "1-1-0-0-0",
		Donors: []models.ControlVDisk{
			{VDiskID: "1-0-0-0-0", Status: "REPLICATING"},
			{VDiskID: "9-1-0-0-0", Status: "READY"},
		},
	})

	assert.Equal(t, severity.Replicating, vdisk.Severity)
	require.Len(t, vdisk.Donors, 3)

	paired := vdisk.Donors[0]
	assert.Equal(t, "1-0-0-0-0", paired.StringifiedID)
	assert.True(t, paired.IsDonor())
	assert.Equal(t, "REPLICATING", paired.Status)
	assert.Equal(t, severity.Donor, paired.Severity)

	degenerate := vdisk.Donors[1]
	assert.Equal(t, "1-2-3", degenerate.StringifiedID)
	require.NotNil(t, degenerate.VDiskSlotID)
	assert.Equal(t, uint32(3), *degenerate.VDiskSlotID)
	assert.True(t, degenerate.IsDonor())
	assert.Equal(t, severity.Unavailable, degenerate.Severity)

	controlOnly := vdisk.Donors[2]
	assert.Equal(t, "9-1-0-0-0", controlOnly.StringifiedID)
	assert.Equal(t, "READY", controlOnly.Status)
	assert.True(t, controlOnly.IsDonor())
}

func TestVDisk_SetStoragePoolName(t *testing.T) {
	vdisk := VDisk{Donors: []VDisk{{}, {}}}
	vdisk.SetStoragePoolName("/Root/ssd")

	assert.Equal(t, "/Root/ssd", vdisk.StoragePoolName)
	for _, donor := range vdisk.Donors {
		assert.Equal(t, "/Root/ssd", donor.StoragePoolName)
	}
}

func TestReconcileVDisk_Idempotent(t *testing.T) {
	vdisk := ReconcileVDisk(&models.VDiskStateInfo{
		VDiskID:         &diskid.VDiskID{GroupID: u32(7), GroupGeneration: u32(2), Ring: u32(0), Domain: u32(1), VDisk: u32(0)},
		NodeID:          u32(3),
		PDiskID:         u32(1),
		VDiskSlotID:     u32(12),
		Kind:            "Default",
		Guid:            "777",
		VDiskState:      models.VDiskStateOK,
		DiskSpace:       severity.FlagGreen,
		FrontQueues:     severity.FlagGreen,
		Overall:         severity.FlagGreen,
		Replicated:      boolRef(true),
		AllocatedSize:   "1000",
		AvailableSize:   "3000",
		ReadThroughput:  "10",
		WriteThroughput: "20",
		StoragePoolName: "/Root/hdd",
		PDisk: &models.PDiskStateInfo{
			PDiskID:                 u32(1),
			Category:                "1",
			State:                   models.PDiskStateNormal,
			AvailableSize:           "60000",
			TotalSize:               "100000",
			SystemSize:              "100",
			LogUsedSize:             "10",
			LogTotalSize:            "1000",
			EnforcedDynamicSlotSize: "4000",
		},
	}, &models.ControlVDisk{
		VDiskID:        "7-2-0-1-0",
		Status:         "READY",
		IsBeingDeleted: boolRef(false),
		PDisk:          &models.ControlPDisk{Status: "ACTIVE"},
	})

	again := ReconcileVDisk(vdisk.LiveRecord(), vdisk.ControlRecord())
	assert.Equal(t, vdisk, again)
}

func TestReconcileVDisk_IdempotentSparse(t *testing.T) {
	tests := []struct {
		name    string
		live    *models.VDiskStateInfo
		control *models.ControlVDisk
		donors  int
		id      string
	}{
		{
			name: "slot key only",
			live: &models.VDiskStateInfo{NodeID: u32(1), PDiskID: u32(2), VSlotID: u32(3)},
			id:   "1-2-3",
		},
		{
			name: "malformed ids",
			control: &models.ControlVDisk{
				VDiskID: "abc",
				Donors:  []models.ControlVDisk{{VDiskID: "1-2-x-4-5"}},
			},
			donors: 1,
			id:     "abc",
		},
		{
			name: "slot-keyed donors",
			live: &models.VDiskStateInfo{
				VDiskID: &diskid.VDiskID{GroupID: u32(1), GroupGeneration: u32(1), Ring: u32(0), Domain: u32(0), VDisk: u32(0)},
				Donors:  []models.VDiskStateInfo{{NodeID: u32(1), PDiskID: u32(2), VSlotID: u32(3)}},
			},
			control: &models.ControlVDisk{
				VDiskID: "1-1-0-0-0",
				Donors:  []models.ControlVDisk{{VDiskID: "9-1-0-0-0"}},
			},
			donors: 2,
			id:     "1-1-0-0-0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vdisk := ReconcileVDisk(tt.live, tt.control)
			assert.Equal(t, tt.id, vdisk.StringifiedID)
			require.Len(t, vdisk.Donors, tt.donors)

			again := ReconcileVDisk(vdisk.LiveRecord(), vdisk.ControlRecord())
			first, err := json.Marshal(vdisk)
			require.NoError(t, err)
			second, err := json.Marshal(again)
			require.NoError(t, err)
			assert.JSONEq(t, string(first), string(second))
		})
	}
}

func TestReconcileVDisk_MalformedDonorID(t *testing.T) {
	vdisk := ReconcileVDisk(nil, &models.ControlVDisk{
		VDiskID: "abc",
		Donors:  []models.ControlVDisk{{VDiskID: "1-2-x-4-5", Status: "READY"}},
	})

	assert.Nil(t, vdisk.VDiskID)
	require.Len(t, vdisk.Donors, 1)
	donor := vdisk.Donors[0]
	assert.Equal(t, "1-2-x-4-5", donor.StringifiedID)
	require.NotNil(t, donor.VDiskID)
	assert.Nil(t, donor.VDiskID.Ring)
	assert.Equal(t, uint32(5), *donor.VDiskID.VDisk)
	assert.Equal(t, "1-2-x-4-5", vdisk.ControlRecord().Donors[0].VDiskID)
}
