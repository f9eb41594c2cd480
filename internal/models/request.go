package models

// ReconcilePDiskRequest carries either or both source records of a PDisk
type ReconcilePDiskRequest struct {
	Live    *PDiskStateInfo `json:"live,omitempty"`
	Control *ControlPDisk   `json:"control,omitempty"`
}

// ReconcileVDiskRequest carries either or both source records of a VDisk
type ReconcileVDiskRequest struct {
	Live    *VDiskStateInfo `json:"live,omitempty"`
	Control *ControlVDisk   `json:"control,omitempty"`
}

// GroupsRequest lists storage pools with their groups
type GroupsRequest struct {
	Pools []StoragePoolInfo `json:"pools"`
}

// ControlPutResponse acknowledges a stored control record
type ControlPutResponse struct {
	ID string `json:"id"`
}

// ControlPDiskListResponse lists stored control PDisk records
type ControlPDiskListResponse struct {
	PDisks []*ControlPDisk `json:"pdisks"`
	Count  int             `json:"count"`
}

// ControlVDiskListResponse lists stored control VDisk records
type ControlVDiskListResponse struct {
	VDisks []*ControlVDisk `json:"vdisks"`
	Count  int             `json:"count"`
}
