package models

import "github.com/soltixdb/diskhealth/internal/severity"

// PDiskInfoResponse is the combined live and control view of one PDisk and
// the VDisks placed on it.
type PDiskInfoResponse struct {
	Whiteboard *PDiskWhiteboard `json:"Whiteboard,omitempty"`
	BSC        *PDiskControl    `json:"BSC,omitempty"`
}

type PDiskWhiteboard struct {
	PDisk  *PDiskStateInfo  `json:"PDisk,omitempty"`
	VDisks []VDiskStateInfo `json:"VDisks,omitempty"`
}

type PDiskControl struct {
	PDisk  *ControlPDisk `json:"PDisk,omitempty"`
	VDisks []VSlotEntry  `json:"VDisks,omitempty"`
}

// NodeInfo is the live disk inventory of one storage node.
type NodeInfo struct {
	NodeID *uint32          `json:"NodeId,omitempty"`
	Host   string           `json:"Host,omitempty"`
	PDisks []PDiskStateInfo `json:"PDisks,omitempty"`
	VDisks []VDiskStateInfo `json:"VDisks,omitempty"`
}

// NodesInfo is a page of nodes. Counts and limits are decimal strings.
type NodesInfo struct {
	Nodes               []NodeInfo `json:"Nodes,omitempty"`
	TotalNodes          string     `json:"TotalNodes,omitempty"`
	FoundNodes          string     `json:"FoundNodes,omitempty"`
	MaximumSlotsPerDisk string     `json:"MaximumSlotsPerDisk,omitempty"`
	MaximumDisksPerNode string     `json:"MaximumDisksPerNode,omitempty"`
}

// StoragePoolInfo groups storage groups sharing a pool.
type StoragePoolInfo struct {
	Name      string             `json:"Name,omitempty"`
	Kind      string             `json:"Kind,omitempty"`
	MediaType string             `json:"MediaType,omitempty"`
	Groups    []StorageGroupInfo `json:"Groups,omitempty"`
}

// StorageGroupInfo is the live view of one storage group and its VDisks.
type StorageGroupInfo struct {
	GroupID         *uint32          `json:"GroupID,omitempty"`
	GroupGeneration *uint32          `json:"GroupGeneration,omitempty"`
	ErasureSpecies  string           `json:"ErasureSpecies,omitempty"`
	Overall         severity.Flag    `json:"Overall,omitempty"`
	DiskSpace       severity.Flag    `json:"DiskSpace,omitempty"`
	VDisks          []VDiskStateInfo `json:"VDisks,omitempty"`
}
