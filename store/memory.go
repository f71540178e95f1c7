package store

import (
	"context"
	"sync"

	"github.com/rushteam/cinekit/core"
)

// MemoryStore 是内存实现的 Store + InteractionStore，用于测试/开发/单机部署。
// 进程重启后数据丢失；需要持久化时换 RedisStore。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	rowMu sync.RWMutex
	rows  map[string]map[string]float64 // userID → itemID → strength
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
		rows: make(map[string]map[string]float64),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

var (
	_ core.Store            = (*MemoryStore)(nil)
	_ core.InteractionStore = (*MemoryStore)(nil)
)

// ========== core.Store ==========

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}

func (m *MemoryStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range kvs {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// ========== core.InteractionStore ==========

// Append 覆盖写同一 (user, item) 的强度：幂等，last-write-wins。
// 粗粒度行锁足够：单次写只改一个 map 槽位。
func (m *MemoryStore) Append(ctx context.Context, userID, itemID string, strength float64) error {
	if userID == "" || itemID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInternalError,
			"store: empty user or item id")
	}

	m.rowMu.Lock()
	defer m.rowMu.Unlock()

	row, ok := m.rows[userID]
	if !ok {
		row = make(map[string]float64)
		m.rows[userID] = row
	}
	row[itemID] = strength
	return nil
}

// Row 返回交互行的副本；无历史用户得到空 map，不报错。
func (m *MemoryStore) Row(ctx context.Context, userID string) (map[string]float64, error) {
	m.rowMu.RLock()
	defer m.rowMu.RUnlock()

	row := m.rows[userID]
	out := make(map[string]float64, len(row))
	for itemID, strength := range row {
		out[itemID] = strength
	}
	return out, nil
}

func (m *MemoryStore) Count(ctx context.Context, userID string) (int, error) {
	m.rowMu.RLock()
	defer m.rowMu.RUnlock()

	return len(m.rows[userID]), nil
}

func (m *MemoryStore) Users(ctx context.Context) ([]string, error) {
	m.rowMu.RLock()
	defer m.rowMu.RUnlock()

	users := make([]string, 0, len(m.rows))
	for userID, row := range m.rows {
		if len(row) == 0 {
			continue
		}
		users = append(users, userID)
	}
	return users, nil
}
