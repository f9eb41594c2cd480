package models

import "time"

// Snapshot is a batch of PDisk views published to the ingest subject.
type Snapshot struct {
	ID     string          `json:"id,omitempty"`
	Taken  time.Time       `json:"taken"`
	PDisks []PDiskSnapshot `json:"pdisks"`
}

// PDiskSnapshot is one PDisk view inside a Snapshot. Control data may be
// omitted, in which case it is looked up in the control store.
type PDiskSnapshot struct {
	NodeID  uint32 `json:"node_id"`
	PDiskID uint32 `json:"pdisk_id"`
	PDiskInfoResponse
}
