package store

import (
	"errors"
	"sync"
)

var errPutFailed = errors.New("put failed")

// Memory is a map-backed adapter used in tests and as a stand-in tier. It
// is safe for use from the coordinator's mirror goroutine.
type Memory struct {
	mu      sync.Mutex
	data    map[string][]byte
	FailPut bool // when set, Put returns an error; used to simulate a failing tier
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut {
		return errPutFailed
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }
