// Package diskid holds the structured identities of physical disks, virtual
// disks and VDisk slots, with their canonical dash-joined string forms.
package diskid

import (
	"strconv"
	"strings"
)

// PDiskKey identifies a physical disk on a node.
type PDiskKey struct {
	NodeID  *uint32 `json:"NodeId,omitempty"`
	PDiskID *uint32 `json:"PDiskId,omitempty"`
}

// String renders "<nodeId>-<pDiskId>", or "" when either part is missing.
func (k PDiskKey) String() string {
	return join(k.NodeID, k.PDiskID)
}

// ParsePDiskKey parses a "<nodeId>-<pDiskId>" composite. Parts that are
// missing or malformed stay unset.
func ParsePDiskKey(s string) PDiskKey {
	parts := split(s, 2)
	return PDiskKey{NodeID: parts[0], PDiskID: parts[1]}
}

// VDiskID identifies a virtual disk within a storage group.
type VDiskID struct {
	GroupID         *uint32 `json:"GroupID,omitempty"`
	GroupGeneration *uint32 `json:"GroupGeneration,omitempty"`
	Ring            *uint32 `json:"Ring,omitempty"`
	Domain          *uint32 `json:"Domain,omitempty"`
	VDisk           *uint32 `json:"VDisk,omitempty"`
}

// String renders the five-part composite, or "" unless every part is set.
func (id VDiskID) String() string {
	return join(id.GroupID, id.GroupGeneration, id.Ring, id.Domain, id.VDisk)
}

// Empty reports whether no part of the id is set.
func (id VDiskID) Empty() bool {
	return id.GroupID == nil && id.GroupGeneration == nil && id.Ring == nil && id.Domain == nil && id.VDisk == nil
}

// Partial renders all five parts, leaving unset parts blank, or "" when the
// id is empty. Unlike String it tells partially parsed ids apart.
func (id VDiskID) Partial() string {
	if id.Empty() {
		return ""
	}
	parts := []*uint32{id.GroupID, id.GroupGeneration, id.Ring, id.Domain, id.VDisk}
	fields := make([]string, len(parts))
	for i, p := range parts {
		if p != nil {
			fields[i] = strconv.FormatUint(uint64(*p), 10)
		}
	}
	return strings.Join(fields, "-")
}

// ParseVDiskID parses a "<group>-<generation>-<ring>-<domain>-<vdisk>"
// composite. Parts that are missing or malformed stay unset.
func ParseVDiskID(s string) VDiskID {
	parts := split(s, 5)
	return VDiskID{
		GroupID:         parts[0],
		GroupGeneration: parts[1],
		Ring:            parts[2],
		Domain:          parts[3],
		VDisk:           parts[4],
	}
}

// VSlotKey identifies a VDisk slot on a physical disk.
type VSlotKey struct {
	NodeID  *uint32 `json:"NodeId,omitempty"`
	PDiskID *uint32 `json:"PDiskId,omitempty"`
	VSlotID *uint32 `json:"VSlotId,omitempty"`
}

// String renders "<nodeId>-<pDiskId>-<vSlotId>", or "" when any part is missing.
func (k VSlotKey) String() string {
	return join(k.NodeID, k.PDiskID, k.VSlotID)
}

// PDisk returns the key of the physical disk holding the slot.
func (k VSlotKey) PDisk() PDiskKey {
	return PDiskKey{NodeID: k.NodeID, PDiskID: k.PDiskID}
}

// Uint32 returns a pointer to v.
func Uint32(v uint32) *uint32 {
	return &v
}

// Equal reports whether both pointers are unset or hold the same value.
func Equal(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func join(parts ...*uint32) string {
	var b strings.Builder
	for i, p := range parts {
		if p == nil {
			return ""
		}
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.FormatUint(uint64(*p), 10))
	}
	return b.String()
}

func split(s string, n int) []*uint32 {
	result := make([]*uint32, n)
	fields := strings.Split(strings.TrimSpace(s), "-")
	if len(fields) != n {
		return result
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			continue
		}
		result[i] = Uint32(uint32(v))
	}
	return result
}
