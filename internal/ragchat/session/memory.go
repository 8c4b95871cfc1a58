package session

import "sync"

// Op is one recorded write against a MemoryStore.
type Op struct {
	Kind  string // "set" or "delete"
	Key   string
	Value string
}

// MemoryStore is a KV held in memory. It records every write.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	ops    []Op
	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.values[key] = value
	m.ops = append(m.ops, Op{Kind: "set", Key: key, Value: value})
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.values, key)
	m.ops = append(m.ops, Op{Kind: "delete", Key: key})
	return nil
}

// Ops returns the writes made so far.
func (m *MemoryStore) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}
