package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/models"
)

const (
	defaultEtcdPrefix = "/diskhealth"
	pdisksDir         = "pdisks"
	vdisksDir         = "vdisks"
)

// EtcdStore is a ControlStore on etcd. Values are JSON records under
// <prefix>/pdisks/<id> and <prefix>/vdisks/<id>.
type EtcdStore struct {
	client *clientv3.Client
	cache  *KVCache
	prefix string
}

// NewEtcdStore connects to etcd. A non-positive cacheTTL disables the read
// cache.
func NewEtcdStore(cfg config.EtcdConfig, cacheTTL time.Duration) (*EtcdStore, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return newEtcdStoreWithClient(client, cfg.Prefix, cacheTTL), nil
}

func newEtcdStoreWithClient(client *clientv3.Client, prefix string, cacheTTL time.Duration) *EtcdStore {
	if prefix == "" {
		prefix = defaultEtcdPrefix
	}

	store := &EtcdStore{
		client: client,
		prefix: path.Clean("/" + prefix),
	}
	if cacheTTL > 0 {
		store.cache = NewKVCache(cacheTTL)
	}
	return store
}

func (s *EtcdStore) key(dir, id string) string {
	return path.Join(s.prefix, dir, id)
}

func (s *EtcdStore) PutPDisk(ctx context.Context, rec *models.ControlPDisk) error {
	id, err := PDiskKey(rec)
	if err != nil {
		return err
	}
	return s.put(ctx, s.key(pdisksDir, id), rec)
}

func (s *EtcdStore) GetPDisk(ctx context.Context, nodeID, pDiskID uint32) (*models.ControlPDisk, error) {
	var rec models.ControlPDisk
	if err := s.get(ctx, s.key(pdisksDir, PDiskID(nodeID, pDiskID)), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *EtcdStore) ListPDisks(ctx context.Context) ([]*models.ControlPDisk, error) {
	result := make([]*models.ControlPDisk, 0)
	err := s.list(ctx, pdisksDir, func(data []byte) error {
		var rec models.ControlPDisk
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		result = append(result, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EtcdStore) PutVDisk(ctx context.Context, rec *models.ControlVDisk) error {
	id, err := VDiskKey(rec)
	if err != nil {
		return err
	}
	return s.put(ctx, s.key(vdisksDir, id), rec)
}

func (s *EtcdStore) GetVDisk(ctx context.Context, id string) (*models.ControlVDisk, error) {
	var rec models.ControlVDisk
	if err := s.get(ctx, s.key(vdisksDir, id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *EtcdStore) ListVDisks(ctx context.Context) ([]*models.ControlVDisk, error) {
	result := make([]*models.ControlVDisk, 0)
	err := s.list(ctx, vdisksDir, func(data []byte) error {
		var rec models.ControlVDisk
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		result = append(result, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close stops the cache and closes the etcd client
func (s *EtcdStore) Close() error {
	if s.cache != nil {
		s.cache.Stop()
	}
	return s.client.Close()
}

func (s *EtcdStore) put(ctx context.Context, key string, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", key, err)
	}

	if _, err := s.client.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to store %s in etcd: %w", key, err)
	}

	if s.cache != nil {
		s.cache.Set(key, data)
	}
	return nil
}

func (s *EtcdStore) get(ctx context.Context, key string, out any) error {
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			if err := json.Unmarshal(data, out); err == nil {
				return nil
			}
			s.cache.Delete(key)
		}
	}

	resp, err := s.client.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get %s from etcd: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	data := resp.Kvs[0].Value
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}

	if s.cache != nil {
		s.cache.Set(key, data)
	}
	return nil
}

// list reads a directory in key order. Records that fail to decode abort the
// listing.
func (s *EtcdStore) list(ctx context.Context, dir string, decode func([]byte) error) error {
	prefix := s.key(dir, "") + "/"
	resp, err := s.client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return fmt.Errorf("failed to list %s from etcd: %w", prefix, err)
	}

	for _, kv := range resp.Kvs {
		if err := decode(kv.Value); err != nil {
			return fmt.Errorf("failed to decode %s: %w", strings.TrimPrefix(string(kv.Key), prefix), err)
		}
	}
	return nil
}
