// Package ingest evaluates disk snapshots arriving on the message queue and
// publishes one result per PDisk.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/soltixdb/diskhealth/internal/compression"
	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/disks"
	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/queue"
	"github.com/soltixdb/diskhealth/internal/severity"
	"github.com/soltixdb/diskhealth/internal/utils"
)

// Result is the evaluation of one PDisk of a snapshot. Severity is the wire
// level; consumers ordering results compare Rank.
type Result struct {
	SnapshotID  string            `json:"snapshot_id,omitempty"`
	Taken       time.Time         `json:"taken"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
	NodeID      uint32            `json:"node_id"`
	PDiskID     uint32            `json:"pdisk_id"`
	Severity    severity.Severity `json:"severity"`
	Rank        int               `json:"rank"`
	Page        disks.PDiskPage   `json:"page"`
}

// Worker consumes snapshots and publishes results
type Worker struct {
	logger     *logging.Logger
	queue      queue.Queue
	store      metadata.ControlStore
	compressor compression.Compressor
	cfg        config.IngestConfig
	now        func() time.Time
}

// NewWorker creates a worker. store may be nil, in which case snapshots
// must carry their own control records.
func NewWorker(logger *logging.Logger, q queue.Queue, store metadata.ControlStore, cfg config.IngestConfig) (*Worker, error) {
	if q == nil {
		return nil, fmt.Errorf("queue is nil")
	}
	if logger == nil {
		logger = logging.Global()
	}

	compressor, err := compression.New(cfg.Compression)
	if err != nil {
		return nil, err
	}

	return &Worker{
		logger:     logger.With("component", "ingest"),
		queue:      q,
		store:      store,
		compressor: compressor,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// Start subscribes to the snapshot subject
func (w *Worker) Start() error {
	if err := w.queue.Subscribe(w.cfg.SnapshotSubject, w.handle); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", w.cfg.SnapshotSubject, err)
	}
	w.logger.Info("Ingest worker started",
		"snapshot_subject", w.cfg.SnapshotSubject,
		"result_subject", w.cfg.ResultSubject,
		"compression", w.compressor.Algorithm().String())
	return nil
}

// Stop unsubscribes from the snapshot subject
func (w *Worker) Stop() error {
	if err := w.queue.Unsubscribe(w.cfg.SnapshotSubject); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", w.cfg.SnapshotSubject, err)
	}
	w.logger.Info("Ingest worker stopped")
	return nil
}

// handle never returns decode errors: a malformed snapshot is dropped since
// the next snapshot supersedes it. Store and publish errors are returned so
// the queue redelivers.
func (w *Worker) handle(data []byte) error {
	snapshot, err := DecodeSnapshot(w.compressor, data)
	if err != nil {
		w.logger.Warn("Dropping malformed snapshot",
			"error", err,
			"size", len(data))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.IngestTimeout)
	defer cancel()

	results, err := w.Process(ctx, snapshot)
	if err != nil {
		w.logger.Error("Failed to evaluate snapshot", "snapshot_id", snapshot.ID, "error", err)
		return err
	}

	if err := w.publish(results); err != nil {
		w.logger.Error("Failed to publish results", "snapshot_id", snapshot.ID, "error", err)
		return err
	}

	w.logger.Debug("Snapshot evaluated", "snapshot_id", snapshot.ID, "pdisks", len(results))
	return nil
}

// Process evaluates every PDisk of a snapshot
func (w *Worker) Process(ctx context.Context, snapshot *models.Snapshot) ([]Result, error) {
	evaluatedAt := w.now().UTC()
	results := make([]Result, 0, len(snapshot.PDisks))

	for i := range snapshot.PDisks {
		ps := snapshot.PDisks[i]
		resp, err := metadata.WithControl(ctx, w.store, ps.PDiskInfoResponse, ps.NodeID, ps.PDiskID)
		if err != nil {
			return nil, fmt.Errorf("pdisk %d-%d: %w", ps.NodeID, ps.PDiskID, err)
		}

		page := disks.PreparePDiskInfo(resp, &ps.NodeID, &ps.PDiskID)
		worst := Worst(page)
		results = append(results, Result{
			SnapshotID:  snapshot.ID,
			Taken:       snapshot.Taken,
			EvaluatedAt: evaluatedAt,
			NodeID:      ps.NodeID,
			PDiskID:     ps.PDiskID,
			Severity:    worst,
			Rank:        worst.Rank(),
			Page:        page,
		})
	}
	return results, nil
}

func (w *Worker) publish(results []Result) error {
	if len(results) == 0 {
		return nil
	}

	messages := make([]queue.BatchMessage, 0, len(results))
	for i := range results {
		data, err := EncodeResult(w.compressor, &results[i])
		if err != nil {
			return err
		}
		messages = append(messages, queue.BatchMessage{Subject: w.cfg.ResultSubject, Data: data})
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.IngestPublishTimeout)
	defer cancel()

	published, err := w.queue.PublishBatch(ctx, messages)
	if err != nil {
		return err
	}
	if published != len(messages) {
		return fmt.Errorf("published %d of %d results", published, len(messages))
	}
	return nil
}

// Worst returns the most severe state on a page: the PDisk or any of its
// VDisks.
func Worst(page disks.PDiskPage) severity.Severity {
	worst := page.PDisk.Severity
	for i := range page.VDisks {
		worst = severity.Max(worst, page.VDisks[i].Severity)
	}
	return worst
}

// EncodeSnapshot serializes and compresses a snapshot for publishing
func EncodeSnapshot(c compression.Compressor, snapshot *models.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return c.Compress(data)
}

func DecodeSnapshot(c compression.Compressor, data []byte) (*models.Snapshot, error) {
	raw, err := c.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func EncodeResult(c compression.Compressor, result *Result) ([]byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return c.Compress(data)
}

func DecodeResult(c compression.Compressor, data []byte) (*Result, error) {
	raw, err := c.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress result: %w", err)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}
