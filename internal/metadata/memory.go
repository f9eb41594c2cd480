package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/soltixdb/diskhealth/internal/models"
)

// MemoryStore is a ControlStore held in process memory. Records are stored
// as JSON so callers never share memory with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	pdisks map[string][]byte
	vdisks map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pdisks: make(map[string][]byte),
		vdisks: make(map[string][]byte),
	}
}

func (s *MemoryStore) PutPDisk(_ context.Context, rec *models.ControlPDisk) error {
	id, err := PDiskKey(rec)
	if err != nil {
		return err
	}
	return s.put(s.pdisks, id, rec)
}

func (s *MemoryStore) GetPDisk(_ context.Context, nodeID, pDiskID uint32) (*models.ControlPDisk, error) {
	var rec models.ControlPDisk
	if err := s.get(s.pdisks, PDiskID(nodeID, pDiskID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MemoryStore) ListPDisks(_ context.Context) ([]*models.ControlPDisk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.ControlPDisk, 0, len(s.pdisks))
	for _, id := range sortedKeys(s.pdisks) {
		var rec models.ControlPDisk
		if err := json.Unmarshal(s.pdisks[id], &rec); err != nil {
			return nil, fmt.Errorf("failed to decode pdisk %s: %w", id, err)
		}
		result = append(result, &rec)
	}
	return result, nil
}

func (s *MemoryStore) PutVDisk(_ context.Context, rec *models.ControlVDisk) error {
	id, err := VDiskKey(rec)
	if err != nil {
		return err
	}
	return s.put(s.vdisks, id, rec)
}

func (s *MemoryStore) GetVDisk(_ context.Context, id string) (*models.ControlVDisk, error) {
	var rec models.ControlVDisk
	if err := s.get(s.vdisks, id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MemoryStore) ListVDisks(_ context.Context) ([]*models.ControlVDisk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.ControlVDisk, 0, len(s.vdisks))
	for _, id := range sortedKeys(s.vdisks) {
		var rec models.ControlVDisk
		if err := json.Unmarshal(s.vdisks[id], &rec); err != nil {
			return nil, fmt.Errorf("failed to decode vdisk %s: %w", id, err)
		}
		result = append(result, &rec)
	}
	return result, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) put(bucket map[string][]byte, id string, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket[id] = data
	return nil
}

func (s *MemoryStore) get(bucket map[string][]byte, id string, out any) error {
	s.mu.RLock()
	data, ok := bucket[id]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
