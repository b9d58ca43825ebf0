package contentcache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// exerciseCache runs the behaviour every Cache implementation shares.
func exerciseCache(t *testing.T, c Cache, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "acme", []byte(`{"companyContext":"x"}`)))
	got, ok, err := c.Get(ctx, "acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"companyContext":"x"}`, string(got))

	clock.Advance(DefaultTTL)
	_, ok, err = c.Get(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, ok, "entry exactly at the TTL is still valid")

	clock.Advance(time.Second)
	_, ok, err = c.Get(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, ok, "entry past the TTL expires")

	require.NoError(t, c.Set(ctx, "acme", []byte("v2")))
	require.NoError(t, c.Set(ctx, "other", []byte("v3")))
	require.NoError(t, c.Clear(ctx, "acme"))
	_, ok, _ = c.Get(ctx, "acme")
	assert.False(t, ok)
	got, ok, _ = c.Get(ctx, "other")
	assert.True(t, ok)
	assert.Equal(t, "v3", string(got))
}

func TestMemoryCache(t *testing.T) {
	clock := newClock()
	exerciseCache(t, NewMemory(0, WithClock(clock.Now)), clock)
}

func TestSQLiteCache(t *testing.T) {
	clock := newClock()
	c, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), 0, WithClock(clock.Now))
	require.NoError(t, err)
	defer c.Close()
	exerciseCache(t, c, clock)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	clock := newClock()
	c, err := NewSQLite(path, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "acme", []byte("kept")))
	require.NoError(t, c.Close())

	reopened, err := NewSQLite(path, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	defer reopened.Close()
	got, ok, err := reopened.Get(context.Background(), "acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", string(got))
}

func TestSQLitePurge(t *testing.T) {
	clock := newClock()
	c, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "old", []byte("1")))
	clock.Advance(2 * time.Hour)
	require.NoError(t, c.Set(ctx, "new", []byte("2")))

	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok, _ := c.Get(ctx, "new")
	assert.True(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory(time.Hour)
	payload := []byte("abc")
	require.NoError(t, m.Set(context.Background(), "k", payload))
	payload[0] = 'z'
	got, _, _ := m.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(got))
	got[1] = 'z'
	again, _, _ := m.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemorySnapshotRestore(t *testing.T) {
	clock := newClock()
	path := filepath.Join(t.TempDir(), "state", "cache.json")
	m := NewMemory(time.Hour, WithClock(clock.Now))
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "stale", []byte("old")))
	clock.Advance(30 * time.Minute)
	require.NoError(t, m.Set(ctx, "fresh", []byte("new")))
	clock.Advance(45 * time.Minute)

	require.NoError(t, m.Snapshot(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	restored := NewMemory(time.Hour, WithClock(clock.Now))
	require.NoError(t, restored.Restore(path))
	assert.Equal(t, 1, restored.Len())
	got, ok, err := restored.Get(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", string(got))
}

func TestMemoryRestoreMissingFile(t *testing.T) {
	m := NewMemory(0)
	require.NoError(t, m.Restore(filepath.Join(t.TempDir(), "absent.json")))
	assert.Equal(t, 0, m.Len())
}
