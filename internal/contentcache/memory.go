package contentcache

import (
	"context"
	"sync"
	"time"

	"github.com/joelkehle/transformation-dashboard/internal/jsonfile"
)

type entry struct {
	Payload  []byte    `json:"payload"`
	StoredAt time.Time `json:"stored_at"`
}

// Memory is an in-process Cache. Its contents can be snapshotted to a JSON file
// and restored on the next start.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	opts    options
}

func NewMemory(ttl time.Duration, opts ...Option) *Memory {
	return &Memory{
		entries: map[string]entry{},
		ttl:     normalizeTTL(ttl),
		opts:    buildOptions(opts),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		m.opts.metrics.CacheLookup("miss")
		return nil, false, nil
	}
	if expired(e.StoredAt, m.opts.now(), m.ttl) {
		delete(m.entries, key)
		m.opts.metrics.CacheLookup("expired")
		return nil, false, nil
	}
	m.opts.metrics.CacheLookup("hit")
	return append([]byte(nil), e.Payload...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{Payload: append([]byte(nil), payload...), StoredAt: m.opts.now()}
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type snapshot struct {
	Entries map[string]entry `json:"entries"`
}

// Snapshot writes every live entry to path, replacing it atomically.
func (m *Memory) Snapshot(path string) error {
	m.mu.Lock()
	state := snapshot{Entries: make(map[string]entry, len(m.entries))}
	now := m.opts.now()
	for k, e := range m.entries {
		if !expired(e.StoredAt, now, m.ttl) {
			state.Entries[k] = e
		}
	}
	m.mu.Unlock()

	return jsonfile.Write(path, state)
}

// Restore loads entries from a snapshot file. A missing file is not an error;
// expired entries are skipped.
func (m *Memory) Restore(path string) error {
	var state snapshot
	if ok, err := jsonfile.Read(path, &state); err != nil || !ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.opts.now()
	for k, e := range state.Entries {
		if !expired(e.StoredAt, now, m.ttl) {
			m.entries[k] = e
		}
	}
	return nil
}
