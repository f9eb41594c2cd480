package cluster

import (
	"math"

	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/disks"
	"github.com/soltixdb/diskhealth/internal/models"
	"github.com/soltixdb/diskhealth/internal/severity"
)

// MediaMixed marks a group whose VDisks sit on different media types, or
// on a PDisk of unknown type.
const MediaMixed = "Mixed"

// usageStep is the granularity group usage is reported in.
const usageStep = 5

// Group is a storage group with aggregated capacity and health.
type Group struct {
	GroupID         *uint32        `json:"GroupId,omitempty"`
	GroupGeneration *uint32        `json:"GroupGeneration,omitempty"`
	PoolName        string         `json:"PoolName,omitempty"`
	ErasureSpecies  string         `json:"ErasureSpecies,omitempty"`
	MediaType       string         `json:"MediaType,omitempty"`
	Overall         severity.Flag  `json:"Overall,omitempty"`
	DiskSpace       severity.Flag  `json:"DiskSpace,omitempty"`
	Used            float64        `json:"Used"`
	Limit           float64        `json:"Limit"`
	Usage           capacity.Value `json:"Usage"`
	Read            float64        `json:"Read"`
	Write           float64        `json:"Write"`
	Degraded        int            `json:"Degraded"`
	VDisks          []disks.VDisk  `json:"VDisks"`
}

// PrepareGroup reconciles the VDisks of a group and aggregates them.
//
// A VDisk counts as degraded when it is not replicated, its PDisk is not
// Normal, or its own state is not OK. Usage is only known when the group
// has a limit and is floored to a multiple of usageStep. A media type set on
// the pool wins over the one derived from the PDisks.
func PrepareGroup(group models.StorageGroupInfo, pool models.StoragePoolInfo) Group {
	prepared := Group{
		GroupID:         group.GroupID,
		GroupGeneration: group.GroupGeneration,
		PoolName:        pool.Name,
		ErasureSpecies:  group.ErasureSpecies,
		Overall:         group.Overall,
		VDisks:          make([]disks.VDisk, 0, len(group.VDisks)),
		Usage:           capacity.Unknown(),
	}

	worstSpace := severity.Unavailable
	for i := range group.VDisks {
		vdisk := disks.ReconcileVDisk(&group.VDisks[i], nil)
		vdisk.SetStoragePoolName(pool.Name)

		var pdiskState models.PDiskState
		var media string
		pdiskAvailable := math.NaN()
		if vdisk.PDisk != nil {
			pdiskState = vdisk.PDisk.State
			pdiskAvailable = float64(vdisk.PDisk.AvailableSize)
			media = string(vdisk.PDisk.Type)
		}

		if (vdisk.Replicated != nil && !*vdisk.Replicated) ||
			pdiskState != models.PDiskStateNormal ||
			vdisk.VDiskState != models.VDiskStateOK {
			prepared.Degraded++
		}

		available := orZero(firstKnown(float64(vdisk.AvailableSize), pdiskAvailable))
		allocated := orZero(float64(vdisk.AllocatedSize))
		prepared.Used += allocated
		prepared.Limit += allocated + available
		prepared.Read += orZero(float64(vdisk.ReadThroughput))
		prepared.Write += orZero(float64(vdisk.WriteThroughput))

		if media != "" && (prepared.MediaType == "" || prepared.MediaType == media) {
			prepared.MediaType = media
		} else {
			prepared.MediaType = MediaMixed
		}

		worstSpace = severity.Max(worstSpace, severity.FromFlag(vdisk.DiskSpace))
		prepared.VDisks = append(prepared.VDisks, vdisk)
	}

	if pool.MediaType != "" {
		prepared.MediaType = pool.MediaType
	}

	if prepared.Limit > 0 {
		pct := math.Floor(capacity.UsagePercent(prepared.Used, prepared.Limit))
		prepared.Usage = capacity.Value(math.Floor(pct/usageStep) * usageStep)
	}

	prepared.DiskSpace = group.DiskSpace
	if prepared.DiskSpace == "" {
		prepared.DiskSpace = worstSpace.Color()
	}
	return prepared
}

// PrepareGroups flattens pools into prepared groups.
func PrepareGroups(pools []models.StoragePoolInfo) []Group {
	groups := make([]Group, 0)
	for _, pool := range pools {
		for _, group := range pool.Groups {
			groups = append(groups, PrepareGroup(group, pool))
		}
	}
	return groups
}

func firstKnown(values ...float64) float64 {
	for _, v := range values {
		if !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}

func orZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
