package ingest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/diskhealth/internal/compression"
	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/disks"
	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/queue"
	"github.com/soltixdb/diskhealth/internal/severity"
)

var u32 = diskid.Uint32

func boolRef(b bool) *bool {
	return &b
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		ID:    "snap-1",
		Taken: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		PDisks: []models.PDiskSnapshot{{
			NodeID:  1,
			PDiskID: 1,
			PDiskInfoResponse: models.PDiskInfoResponse{
				Whiteboard: &models.PDiskWhiteboard{
					PDisk: &models.PDiskStateInfo{
						State:         models.PDiskStateNormal,
						AvailableSize: "100",
						TotalSize:     "1000",
					},
					VDisks: []models.VDiskStateInfo{{
						VDiskID:       &diskid.VDiskID{GroupID: u32(1), GroupGeneration: u32(0), Ring: u32(0), Domain: u32(0), VDisk: u32(0)},
						NodeID:        u32(1),
						PDiskID:       u32(1),
						VDiskSlotID:   u32(0),
						VDiskState:    models.VDiskStateOK,
						AllocatedSize: "10",
						AvailableSize: "90",
					}},
				},
			},
		}},
	}
}

func testStore(t *testing.T) *metadata.MemoryStore {
	t.Helper()
	store := metadata.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.PutPDisk(ctx, &models.ControlPDisk{PDiskID: "1-1", Status: "ACTIVE"}))
	require.NoError(t, store.PutVDisk(ctx, &models.ControlVDisk{
		VDiskID:     "1-0-0-0-0",
		NodeID:      u32(1),
		PDiskID:     u32(1),
		VDiskSlotID: u32(0),
		Status:      "READY",
	}))
	return store
}

func testIngestConfig(compression string) config.IngestConfig {
	return config.IngestConfig{
		Enabled:         true,
		SnapshotSubject: "diskhealth.snapshots",
		ResultSubject:   "diskhealth.results",
		Compression:     compression,
	}
}

func testWorker(t *testing.T, q queue.Queue, store metadata.ControlStore, compression string) (*Worker, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWorker(logging.NewWithWriter(&buf, zerolog.DebugLevel), q, store, testIngestConfig(compression))
	require.NoError(t, err)
	w.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 5, 0, time.UTC) }
	return w, &buf
}

// failingStore fails every PDisk lookup
type failingStore struct {
	*metadata.MemoryStore
}

func (failingStore) GetPDisk(context.Context, uint32, uint32) (*models.ControlPDisk, error) {
	return nil, errors.New("etcd unavailable")
}

func TestNewWorker(t *testing.T) {
	q := queue.NewMemoryQueue()
	defer func() { _ = q.Close() }()

	_, err := NewWorker(nil, nil, nil, testIngestConfig(""))
	assert.Error(t, err)

	_, err = NewWorker(nil, q, nil, testIngestConfig("zstd"))
	assert.Error(t, err)

	w, err := NewWorker(nil, q, nil, testIngestConfig("snappy"))
	require.NoError(t, err)
	assert.Equal(t, compression.Snappy, w.compressor.Algorithm())
}

func TestWorker_ProcessFillsControlRecords(t *testing.T) {
	w, _ := testWorker(t, queue.NewMemoryQueue(), testStore(t), "")

	results, err := w.Process(context.Background(), testSnapshot())
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "snap-1", r.SnapshotID)
	assert.Equal(t, uint32(1), r.NodeID)
	assert.Equal(t, uint32(1), r.PDiskID)
	assert.Equal(t, time.Date(2026, 10, 1, 12, 0, 5, 0, time.UTC), r.EvaluatedAt)

	assert.Equal(t, "1-1", r.Page.PDisk.StringifiedID)
	assert.Equal(t, "ACTIVE", r.Page.PDisk.Status)
	assert.Equal(t, severity.DegradedMinor, r.Page.PDisk.Severity)

	require.Len(t, r.Page.VDisks, 1)
	assert.Equal(t, "READY", r.Page.VDisks[0].Status)
	assert.Equal(t, severity.Healthy, r.Page.VDisks[0].Severity)

	assert.Equal(t, severity.DegradedMinor, r.Severity)
	assert.Equal(t, severity.DegradedMinor.Rank(), r.Rank)
}

func TestWorker_ProcessRankOrdersDonorBelowCritical(t *testing.T) {
	w, _ := testWorker(t, queue.NewMemoryQueue(), nil, "")

	snapshot := testSnapshot()
	donor := snapshot.PDisks[0]
	donor.PDiskID = 2
	donor.Whiteboard = &models.PDiskWhiteboard{
		PDisk: &models.PDiskStateInfo{State: models.PDiskStateNormal, AvailableSize: "900", TotalSize: "1000"},
		VDisks: []models.VDiskStateInfo{{
			VDiskID:    &diskid.VDiskID{GroupID: u32(2), GroupGeneration: u32(0), Ring: u32(0), Domain: u32(0), VDisk: u32(0)},
			NodeID:     u32(1),
			PDiskID:    u32(2),
			VDiskState: models.VDiskStateOK,
			Replicated: boolRef(false),
			DonorMode:  boolRef(true),
		}},
	}
	critical := snapshot.PDisks[0]
	critical.PDiskID = 3
	critical.Whiteboard = &models.PDiskWhiteboard{
		PDisk: &models.PDiskStateInfo{State: models.PDiskStateNormal, AvailableSize: "10", TotalSize: "1000"},
	}
	snapshot.PDisks = []models.PDiskSnapshot{donor, critical}

	results, err := w.Process(context.Background(), snapshot)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, severity.Donor, results[0].Severity)
	assert.Equal(t, severity.Critical, results[1].Severity)
	assert.Greater(t, int(results[0].Severity), int(results[1].Severity))
	assert.Less(t, results[0].Rank, results[1].Rank)
}

func TestWorker_ProcessKeepsSnapshotControl(t *testing.T) {
	w, _ := testWorker(t, queue.NewMemoryQueue(), testStore(t), "")

	snapshot := testSnapshot()
	snapshot.PDisks[0].BSC = &models.PDiskControl{PDisk: &models.ControlPDisk{PDiskID: "1-1", Status: "BROKEN"}}

	results, err := w.Process(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, "BROKEN", results[0].Page.PDisk.Status)
	assert.Equal(t, "READY", results[0].Page.VDisks[0].Status)
}

func TestWorker_ProcessWithoutStore(t *testing.T) {
	w, _ := testWorker(t, queue.NewMemoryQueue(), nil, "")

	results, err := w.Process(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Empty(t, results[0].Page.PDisk.Status)
	assert.Empty(t, results[0].Page.VDisks[0].Status)
}

func TestWorker_ProcessStoreError(t *testing.T) {
	w, _ := testWorker(t, queue.NewMemoryQueue(), failingStore{metadata.NewMemoryStore()}, "")

	_, err := w.Process(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdisk 1-1")
}

func TestWorker_HandleDropsMalformedSnapshot(t *testing.T) {
	q := queue.NewMemoryQueue()
	defer func() { _ = q.Close() }()
	w, logs := testWorker(t, q, nil, "")

	assert.NoError(t, w.handle([]byte("{not json")))
	assert.Contains(t, logs.String(), "Dropping malformed snapshot")
	assert.Zero(t, q.Pending("diskhealth.results"))
}

func TestWorker_HandleReturnsStoreError(t *testing.T) {
	q := queue.NewMemoryQueue()
	defer func() { _ = q.Close() }()
	w, _ := testWorker(t, q, failingStore{metadata.NewMemoryStore()}, "")

	data, err := EncodeSnapshot(w.compressor, testSnapshot())
	require.NoError(t, err)
	assert.Error(t, w.handle(data))
	assert.Zero(t, q.Pending("diskhealth.results"))
}

func TestWorker_EndToEnd(t *testing.T) {
	q := queue.NewMemoryQueue()
	defer func() { _ = q.Close() }()

	w, _ := testWorker(t, q, testStore(t), "snappy")
	require.NoError(t, w.Start())

	results := make(chan *Result, 1)
	require.NoError(t, q.Subscribe("diskhealth.results", func(data []byte) error {
		r, err := DecodeResult(w.compressor, data)
		if err != nil {
			return err
		}
		results <- r
		return nil
	}))

	data, err := EncodeSnapshot(w.compressor, testSnapshot())
	require.NoError(t, err)
	require.NoError(t, q.Publish(context.Background(), "diskhealth.snapshots", data))

	select {
	case r := <-results:
		assert.Equal(t, "snap-1", r.SnapshotID)
		assert.Equal(t, severity.DegradedMinor, r.Severity)
		assert.Equal(t, severity.DegradedMinor.Rank(), r.Rank)
		assert.Equal(t, "ACTIVE", r.Page.PDisk.Status)
		assert.Len(t, r.Page.Slots, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for result")
	}

	require.NoError(t, w.Stop())
	assert.Error(t, w.Stop())
}

func TestWorst(t *testing.T) {
	page := disks.PDiskPage{
		PDisk: disks.PDisk{Severity: severity.Healthy},
		VDisks: []disks.VDisk{
			{Severity: severity.Replicating},
			{Severity: severity.Donor},
		},
	}
	assert.Equal(t, severity.Replicating, Worst(page))

	page.VDisks = append(page.VDisks, disks.VDisk{Severity: severity.Critical})
	assert.Equal(t, severity.Critical, Worst(page))

	assert.Equal(t, severity.Unavailable, Worst(disks.PDiskPage{}))
}

func TestSnapshotEncoding(t *testing.T) {
	c, err := compression.New("snappy")
	require.NoError(t, err)

	data, err := EncodeSnapshot(c, testSnapshot())
	require.NoError(t, err)

	got, err := DecodeSnapshot(c, data)
	require.NoError(t, err)
	assert.Equal(t, "snap-1", got.ID)
	require.Len(t, got.PDisks, 1)
	assert.Equal(t, models.PDiskStateNormal, got.PDisks[0].Whiteboard.PDisk.State)

	_, err = DecodeSnapshot(compression.NoneCompressor{}, []byte("{"))
	assert.Error(t, err)
}
