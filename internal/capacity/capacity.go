// Package capacity derives the size fields of disks from whichever raw
// fields a source reported.
//
// All arithmetic is done in float64. Missing inputs propagate as NaN and
// nothing here returns an error.
package capacity

import "math"

// Fields is the full set of size fields for a disk or slot.
type Fields struct {
	Available Value `json:"AvailableSize"`
	Allocated Value `json:"AllocatedSize"`
	Total     Value `json:"TotalSize"`
	Percent   Value `json:"AllocatedPercent"`
}

// FromAvailableAndAllocated derives the total from free and used bytes.
func FromAvailableAndAllocated(available, allocated float64) Fields {
	total := available + allocated
	return Fields{
		Available: Value(available),
		Allocated: Value(allocated),
		Total:     Value(total),
		Percent:   Value(percent(allocated, total)),
	}
}

// FromAvailableAndTotal derives the used bytes from free bytes and capacity.
func FromAvailableAndTotal(available, total float64) Fields {
	allocated := total - available
	return Fields{
		Available: Value(available),
		Allocated: Value(allocated),
		Total:     Value(total),
		Percent:   Value(percent(allocated, total)),
	}
}

// WithSlotLimit derives VDisk sizes when the owning PDisk enforces a fixed
// slot size. When no free space is reported the slot size becomes the total,
// so an overfull VDisk can exceed 100 percent and unreported free space reads
// as zero. With free space, or without a known slot size, it falls back to
// FromAvailableAndAllocated.
func WithSlotLimit(available, allocated, slotSize float64) Fields {
	if available > 0 || math.IsNaN(slotSize) {
		return FromAvailableAndAllocated(available, allocated)
	}
	if math.IsNaN(available) {
		available = 0
	}
	return Fields{
		Available: Value(available),
		Allocated: Value(allocated),
		Total:     Value(slotSize),
		Percent:   Value(percent(allocated, slotSize)),
	}
}

// UsagePercent is the unfloored share of total taken by used.
func UsagePercent(used, total float64) float64 {
	return used * 100 / total
}

func percent(allocated, total float64) float64 {
	return math.Floor(UsagePercent(allocated, total))
}
