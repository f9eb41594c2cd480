package metadata

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/server/v3/embed"

	"github.com/soltixdb/diskhealth/internal/config"
)

// setupTestEtcd starts an embedded etcd server and returns its client
// endpoints.
func setupTestEtcd(t *testing.T) []string {
	t.Helper()

	cfg := embed.NewConfig()
	cfg.Dir = t.TempDir()

	clientURL, _ := url.Parse("http://127.0.0.1:0")
	peerURL, _ := url.Parse("http://127.0.0.1:0")
	cfg.ListenClientUrls = []url.URL{*clientURL}
	cfg.ListenPeerUrls = []url.URL{*peerURL}
	cfg.LogLevel = "error"
	cfg.Logger = "zap"

	e, err := embed.StartEtcd(cfg)
	require.NoError(t, err)

	select {
	case <-e.Server.ReadyNotify():
	case <-time.After(10 * time.Second):
		e.Close()
		t.Fatal("etcd server took too long to start")
	}

	t.Cleanup(e.Close)
	return []string{e.Clients[0].Addr().String()}
}

func testEtcdStore(t *testing.T, cacheTTL time.Duration) *EtcdStore {
	t.Helper()

	store, err := NewEtcdStore(config.EtcdConfig{
		Endpoints:   setupTestEtcd(t),
		DialTimeout: 5 * time.Second,
		Prefix:      "/diskhealth-test",
	}, cacheTTL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEtcdStore(t *testing.T) {
	testControlStore(t, testEtcdStore(t, 0))
}

func TestEtcdStore_Cached(t *testing.T) {
	testControlStore(t, testEtcdStore(t, time.Minute))
}

func TestEtcdStore_KeyLayout(t *testing.T) {
	store := testEtcdStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.PutPDisk(ctx, testControlPDisk(1, 1000)))
	require.NoError(t, store.PutVDisk(ctx, testControlVDisk("2181038080-1-0-0-0", 1, 1000, 1)))

	resp, err := store.client.Get(ctx, "/diskhealth-test/", clientv3.WithPrefix(), clientv3.WithKeysOnly())
	require.NoError(t, err)

	keys := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keys = append(keys, string(kv.Key))
	}
	assert.ElementsMatch(t, []string{
		"/diskhealth-test/pdisks/1-1000",
		"/diskhealth-test/vdisks/2181038080-1-0-0-0",
	}, keys)
}

func TestEtcdStore_CacheServesReads(t *testing.T) {
	store := testEtcdStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.PutPDisk(ctx, testControlPDisk(5, 1)))

	// Remove the key behind the store's back; the cached copy still answers.
	_, err := store.client.Delete(ctx, "/diskhealth-test/pdisks/5-1")
	require.NoError(t, err)

	got, err := store.GetPDisk(ctx, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, "5-1", got.PDiskID)

	store.cache.Delete("/diskhealth-test/pdisks/5-1")
	_, err = store.GetPDisk(ctx, 5, 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewControlStore_Etcd(t *testing.T) {
	cfg := testConfig("etcd")
	cfg.Etcd.Endpoints = setupTestEtcd(t)

	store, err := NewControlStore(cfg)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok := store.(*EtcdStore)
	assert.True(t, ok)
}
