// Package cluster prepares node and storage group views from reconciled
// disks.
package cluster

import (
	"strconv"
	"strings"

	"github.com/soltixdb/diskhealth/internal/diskid"
	"github.com/soltixdb/diskhealth/internal/disks"
	"github.com/soltixdb/diskhealth/internal/models"
)

// Node is the reconciled disk inventory of one storage node.
type Node struct {
	NodeID              *uint32       `json:"NodeId,omitempty"`
	Host                string        `json:"Host,omitempty"`
	PDisks              []disks.PDisk `json:"PDisks"`
	VDisks              []disks.VDisk `json:"VDisks"`
	Missing             int           `json:"Missing"`
	MaximumSlotsPerDisk int           `json:"MaximumSlotsPerDisk"`
	MaximumDisksPerNode int           `json:"MaximumDisksPerNode"`
}

// Nodes is a prepared page of nodes.
type Nodes struct {
	Nodes               []Node `json:"Nodes"`
	TotalNodes          int    `json:"TotalNodes"`
	FoundNodes          int    `json:"FoundNodes"`
	MaximumSlotsPerDisk int    `json:"MaximumSlotsPerDisk"`
	MaximumDisksPerNode int    `json:"MaximumDisksPerNode"`
}

// PrepareNode reconciles the disks of one node. Every disk takes the node id
// of the node. Missing counts the PDisks whose state is not Normal.
func PrepareNode(node models.NodeInfo, maxSlotsPerDisk, maxDisksPerNode int) Node {
	prepared := Node{
		NodeID:              node.NodeID,
		Host:                node.Host,
		PDisks:              make([]disks.PDisk, 0, len(node.PDisks)),
		VDisks:              make([]disks.VDisk, 0, len(node.VDisks)),
		MaximumSlotsPerDisk: maxSlotsPerDisk,
		MaximumDisksPerNode: maxDisksPerNode,
	}

	for _, raw := range node.PDisks {
		if raw.State != models.PDiskStateNormal {
			prepared.Missing++
		}
		raw.NodeID = node.NodeID
		prepared.PDisks = append(prepared.PDisks, disks.ReconcilePDisk(&raw, nil))
	}
	for _, raw := range node.VDisks {
		raw.NodeID = node.NodeID
		prepared.VDisks = append(prepared.VDisks, disks.ReconcileVDisk(&raw, nil))
	}
	return prepared
}

// PrepareNodes reconciles a page of nodes. Limits reported by the source win
// over limits computed from the page.
func PrepareNodes(info models.NodesInfo) Nodes {
	maxSlots := MaximumSlotsPerDisk(info.Nodes, info.MaximumSlotsPerDisk)
	maxDisks := MaximumDisksPerNode(info.Nodes, info.MaximumDisksPerNode)

	nodes := make([]Node, 0, len(info.Nodes))
	for _, node := range info.Nodes {
		nodes = append(nodes, PrepareNode(node, maxSlots, maxDisks))
	}

	return Nodes{
		Nodes:               nodes,
		TotalNodes:          parseCount(info.TotalNodes, len(info.Nodes)),
		FoundNodes:          parseCount(info.FoundNodes, len(info.Nodes)),
		MaximumSlotsPerDisk: maxSlots,
		MaximumDisksPerNode: maxDisks,
	}
}

// MaximumSlotsPerDisk returns the provided limit when it parses, otherwise
// the largest number of VDisks placed on a single PDisk, at least 1.
func MaximumSlotsPerDisk(nodes []models.NodeInfo, provided string) int {
	if n, ok := parseLimit(provided); ok {
		return n
	}
	result := 1
	for _, node := range nodes {
		for _, pdisk := range node.PDisks {
			count := 0
			for _, vdisk := range node.VDisks {
				if diskid.Equal(vdisk.PDiskID, pdisk.PDiskID) {
					count++
				}
			}
			result = max(result, count)
		}
	}
	return result
}

// MaximumDisksPerNode returns the provided limit when it parses, otherwise
// the largest number of PDisks on a single node, at least 1.
func MaximumDisksPerNode(nodes []models.NodeInfo, provided string) int {
	if n, ok := parseLimit(provided); ok {
		return n
	}
	result := 1
	for _, node := range nodes {
		result = max(result, len(node.PDisks))
	}
	return result
}

func parseLimit(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func parseCount(s string, fallback int) int {
	if n, ok := parseLimit(s); ok {
		return n
	}
	return fallback
}
